package etl

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Run is one recorded ETL execution. The (tenant, idempotency key) pair is
// unique: repeating a load with the same key replays the recorded outcome
// instead of pushing to UKG again.
type Run struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenantId"`
	IdempotencyKey string     `json:"idempotencyKey"`
	Direction      string     `json:"direction"`
	Extracted      int        `json:"extracted"`
	Transformed    int        `json:"transformed"`
	Loaded         int        `json:"loaded"`
	Status         string     `json:"status"`
	Detail         []string   `json:"detail,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
}

// RunStore records ETL runs and answers idempotency lookups.
type RunStore interface {
	// Begin claims the (tenant, idempotency key) pair by inserting a
	// RUNNING row. When another run already holds the pair, claimed is
	// false and the existing row is returned.
	Begin(ctx context.Context, r Run) (claimed bool, existing Run, err error)
	// Record writes the terminal state of a previously claimed run.
	Record(ctx context.Context, r Run) error
	FindByKey(ctx context.Context, tenantID, key string) (Run, bool, error)
}

type pgRunStore struct {
	dbPool *pgxpool.Pool
}

func NewPostgresRunStore(dbPool *pgxpool.Pool) RunStore {
	return &pgRunStore{dbPool: dbPool}
}

func (s *pgRunStore) Begin(ctx context.Context, r Run) (bool, Run, error) {
	tag, err := s.dbPool.Exec(ctx, `INSERT INTO sync_runs(id, tenant_id, idempotency_key, direction, status, started_at)
	  VALUES ($1,$2,$3,$4,$5,$6)
	  ON CONFLICT (tenant_id, idempotency_key) DO NOTHING`,
		r.ID, r.TenantID, r.IdempotencyKey, r.Direction, r.Status, r.StartedAt)
	if err != nil {
		return false, Run{}, err
	}
	if tag.RowsAffected() == 0 {
		prev, ok, err := s.FindByKey(ctx, r.TenantID, r.IdempotencyKey)
		if err != nil {
			return false, Run{}, err
		}
		if !ok {
			return false, Run{}, errors.New("sync run key conflict but no row found")
		}
		return false, prev, nil
	}
	return true, r, nil
}

func (s *pgRunStore) Record(ctx context.Context, r Run) error {
	detail, _ := json.Marshal(r.Detail)
	_, err := s.dbPool.Exec(ctx, `UPDATE sync_runs
	  SET extracted=$2, transformed=$3, loaded=$4, status=$5, detail=$6, finished_at=$7
	  WHERE id=$1`,
		r.ID, r.Extracted, r.Transformed, r.Loaded, r.Status, detail, r.FinishedAt)
	return err
}

func (s *pgRunStore) FindByKey(ctx context.Context, tenantID, key string) (Run, bool, error) {
	var r Run
	var detail []byte
	err := s.dbPool.QueryRow(ctx, `SELECT id, tenant_id, idempotency_key, direction, extracted, transformed, loaded, status, detail, started_at, finished_at
	  FROM sync_runs WHERE tenant_id=$1 AND idempotency_key=$2`, tenantID, key).
		Scan(&r.ID, &r.TenantID, &r.IdempotencyKey, &r.Direction, &r.Extracted, &r.Transformed, &r.Loaded, &r.Status, &detail, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}
	_ = json.Unmarshal(detail, &r.Detail)
	return r, true, nil
}

type memRunStore struct {
	mu   sync.RWMutex
	runs map[string]Run // key: tenantID|idempotencyKey
}

func NewMemoryRunStore() RunStore {
	return &memRunStore{runs: map[string]Run{}}
}

func runKey(tenantID, key string) string { return tenantID + "|" + key }

func (s *memRunStore) Begin(ctx context.Context, r Run) (bool, Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	k := runKey(r.TenantID, r.IdempotencyKey)
	if prev, ok := s.runs[k]; ok {
		return false, prev, nil
	}
	s.runs[k] = r
	return true, r, nil
}

func (s *memRunStore) Record(ctx context.Context, r Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := runKey(r.TenantID, r.IdempotencyKey)
	if cur, ok := s.runs[k]; ok && cur.ID != r.ID {
		return nil
	}
	s.runs[k] = r
	return nil
}

func (s *memRunStore) FindByKey(ctx context.Context, tenantID, key string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runKey(tenantID, key)]
	return r, ok, nil
}
