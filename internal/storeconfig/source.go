package storeconfig

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("store config not found")

// Source is the authoritative backing store the cache reads through.
type Source interface {
	ListConfigs(ctx context.Context) ([]StoreConfig, error)
	UpsertConfig(ctx context.Context, c StoreConfig) error
}

type pgSource struct {
	dbPool *pgxpool.Pool
}

func NewPostgresSource(dbPool *pgxpool.Pool) Source {
	return &pgSource{dbPool: dbPool}
}

func (s *pgSource) ListConfigs(ctx context.Context) ([]StoreConfig, error) {
	rows, err := s.dbPool.Query(ctx, `SELECT location_token, name, store_id, timezone, state, address, hours FROM store_configs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StoreConfig
	for rows.Next() {
		var c StoreConfig
		var hours []byte
		if err := rows.Scan(&c.Token, &c.Name, &c.ID, &c.Timezone, &c.State, &c.Address, &hours); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(hours, &c.Hours)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *pgSource) UpsertConfig(ctx context.Context, c StoreConfig) error {
	hours, _ := json.Marshal(c.Hours)
	_, err := s.dbPool.Exec(ctx, `INSERT INTO store_configs(location_token, name, store_id, timezone, state, address, hours)
	  VALUES ($1,$2,$3,$4,$5,$6,$7)
	  ON CONFLICT (location_token) DO UPDATE SET
	    name=EXCLUDED.name, store_id=EXCLUDED.store_id, timezone=EXCLUDED.timezone,
	    state=EXCLUDED.state, address=EXCLUDED.address, hours=EXCLUDED.hours`,
		c.Token, c.Name, c.ID, c.Timezone, c.State, c.Address, hours)
	return err
}

type memSource struct {
	mu      sync.RWMutex
	configs map[string]StoreConfig
}

func NewMemorySource(seed ...StoreConfig) Source {
	m := &memSource{configs: map[string]StoreConfig{}}
	for _, c := range seed {
		m.configs[c.Token] = c
	}
	return m
}

func (m *memSource) ListConfigs(ctx context.Context) ([]StoreConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]StoreConfig, 0, len(m.configs))
	for _, c := range m.configs {
		out = append(out, c)
	}
	return out, nil
}

func (m *memSource) UpsertConfig(ctx context.Context, c StoreConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[c.Token] = c
	return nil
}
