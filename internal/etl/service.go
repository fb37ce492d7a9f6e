// internal/etl/service.go
package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"possync/internal/brink"
	"possync/internal/ukg"
)

const DirectionBrinkToUKG = "par-brink-to-ukg"

// Extractor is the slice of the Brink client the ETL needs.
type Extractor interface {
	GetEmployees(ctx context.Context) ([]brink.Employee, error)
}

// Loader is the slice of the UKG client the ETL needs.
type Loader interface {
	UpsertEmployees(ctx context.Context, creds ukg.Credentials, records []map[string]any) (ukg.BatchResult, error)
}

type Service struct {
	extractor Extractor
	loader    Loader
	runs      RunStore
	log       *zap.SugaredLogger
}

func NewService(extractor Extractor, loader Loader, runs RunStore, log *zap.SugaredLogger) *Service {
	return &Service{extractor: extractor, loader: loader, runs: runs, log: log}
}

// RunRequest describes one extract/transform/optional-load execution.
// Brink credentials must already be bound to ctx via brink.WithCredentials.
type RunRequest struct {
	TenantID       string
	IdempotencyKey string
	Load           bool
	Mappings       []FieldMapping
	UKGCreds       ukg.Credentials
}

type RunResult struct {
	Run
	Replayed bool             `json:"replayed,omitempty"`
	Records  []map[string]any `json:"records,omitempty"` // dry-run preview
}

// Execute runs the pipeline. Dry runs (Load=false) return the transformed
// records without touching UKG and are not recorded. Loads claim the
// (tenant, key) pair up front; a repeated or concurrent key replays the
// stored run instead of pushing to UKG again.
func (s *Service) Execute(ctx context.Context, req RunRequest) (RunResult, error) {
	run := Run{
		ID:             uuid.NewString(),
		TenantID:       req.TenantID,
		IdempotencyKey: req.IdempotencyKey,
		Direction:      DirectionBrinkToUKG,
		Status:         "RUNNING",
		StartedAt:      time.Now().UTC(),
	}
	if req.Load {
		if req.IdempotencyKey == "" {
			return RunResult{}, fmt.Errorf("idempotency key required when load is requested")
		}
		claimed, prev, err := s.runs.Begin(ctx, run)
		if err != nil {
			return RunResult{}, err
		}
		if !claimed {
			s.log.Infow("etl run replayed", "tenant", req.TenantID, "key", req.IdempotencyKey)
			return RunResult{Run: prev, Replayed: true}, nil
		}
	}

	mappings := req.Mappings
	if len(mappings) == 0 {
		mappings = DefaultEmployeeMappings
	}

	employees, err := s.extractor.GetEmployees(ctx)
	if err != nil {
		err = fmt.Errorf("extract: %w", err)
		if req.Load {
			s.recordFailure(ctx, run, err)
		}
		return RunResult{}, err
	}

	var records []map[string]any
	var detail []string
	for _, e := range employees {
		src, err := toMap(e)
		if err != nil {
			detail = append(detail, fmt.Sprintf("employee %s: %v", e.ID, err))
			continue
		}
		rec, err := Transform(src, mappings)
		if err != nil {
			detail = append(detail, fmt.Sprintf("employee %s: %v", e.ID, err))
			continue
		}
		records = append(records, rec)
	}

	run.Extracted = len(employees)
	run.Transformed = len(records)
	run.Detail = detail

	if !req.Load {
		run.Status = "DRY_RUN"
		return RunResult{Run: run, Records: records}, nil
	}

	batch, err := s.loader.UpsertEmployees(ctx, req.UKGCreds, records)
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Loaded = batch.Sent
	run.Detail = append(run.Detail, batch.Errors...)
	switch {
	case err != nil:
		run.Status = "FAILED"
		run.Detail = append(run.Detail, err.Error())
	case batch.Failed > 0:
		run.Status = "PARTIAL"
	default:
		run.Status = "SUCCEEDED"
	}
	if rerr := s.runs.Record(ctx, run); rerr != nil {
		s.log.Warnw("etl run record failed", "tenant", req.TenantID, "err", rerr)
	}
	if err != nil {
		return RunResult{Run: run}, err
	}
	return RunResult{Run: run}, nil
}

// recordFailure closes out a claimed run that died before reaching UKG,
// so the RUNNING row does not linger.
func (s *Service) recordFailure(ctx context.Context, run Run, cause error) {
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Status = "FAILED"
	run.Detail = append(run.Detail, cause.Error())
	if rerr := s.runs.Record(ctx, run); rerr != nil {
		s.log.Warnw("etl run record failed", "tenant", run.TenantID, "err", rerr)
	}
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
