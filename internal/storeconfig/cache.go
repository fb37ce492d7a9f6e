// internal/storeconfig/cache.go
package storeconfig

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// fallbackConfigs are the last-resort defaults when both the database and
// the file cache are unavailable.
var fallbackConfigs = []StoreConfig{
	{Token: "DEMO-TOKEN-001", Name: "Demo Store Downtown", ID: "1001", Timezone: "America/Chicago", State: "TX", Address: "100 Main St, Austin, TX"},
	{Token: "DEMO-TOKEN-002", Name: "Demo Store Airport", ID: "1002", Timezone: "America/Chicago", State: "TX", Address: "200 Terminal Dr, Austin, TX"},
}

type fileCache struct {
	FetchedAt time.Time     `json:"fetchedAt"`
	Configs   []StoreConfig `json:"configs"`
}

// Service is the read-through cache: memory copy, JSON file on disk, then
// the SQL source, with hardcoded data as final fallback. A single refresh
// is in flight at a time; concurrent callers wait on it rather than
// issuing duplicates.
type Service struct {
	source Source
	path   string
	ttl    time.Duration
	log    *zap.SugaredLogger

	mu        sync.Mutex
	configs   []StoreConfig
	fetchedAt time.Time
	refresh   chan struct{} // non-nil while a refresh is in flight
}

func NewService(source Source, path string, ttl time.Duration, log *zap.SugaredLogger) *Service {
	s := &Service{source: source, path: path, ttl: ttl, log: log}
	s.loadFile()
	return s
}

func (s *Service) loadFile() {
	if s.path == "" {
		return
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var fc fileCache
	if err := json.Unmarshal(raw, &fc); err != nil {
		s.log.Warnw("store config cache file unreadable", "path", s.path, "err", err)
		return
	}
	s.configs = fc.Configs
	s.fetchedAt = fc.FetchedAt
}

func (s *Service) writeFile(configs []StoreConfig, fetchedAt time.Time) {
	if s.path == "" {
		return
	}
	raw, err := json.Marshal(fileCache{FetchedAt: fetchedAt, Configs: configs})
	if err != nil {
		return
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		s.log.Warnw("store config cache write failed", "path", s.path, "err", err)
	}
}

// GetAll returns every store configuration, refreshing from the source
// when the cached copy is older than the TTL.
func (s *Service) GetAll(ctx context.Context) ([]StoreConfig, error) {
	for {
		s.mu.Lock()
		if len(s.configs) > 0 && time.Since(s.fetchedAt) < s.ttl {
			out := append([]StoreConfig(nil), s.configs...)
			s.mu.Unlock()
			return out, nil
		}
		if s.refresh != nil {
			ch := s.refresh
			s.mu.Unlock()
			select {
			case <-ch:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		ch := make(chan struct{})
		s.refresh = ch
		stale := append([]StoreConfig(nil), s.configs...)
		s.mu.Unlock()

		configs, err := s.source.ListConfigs(ctx)
		now := time.Now()

		s.mu.Lock()
		s.refresh = nil
		close(ch)
		if err == nil && len(configs) > 0 {
			s.configs = configs
			s.fetchedAt = now
			s.mu.Unlock()
			s.writeFile(configs, now)
			return append([]StoreConfig(nil), configs...), nil
		}
		s.mu.Unlock()

		if err != nil {
			s.log.Warnw("store config refresh failed", "err", err)
		}
		// stale file copy beats hardcoded data
		if len(stale) > 0 {
			return stale, nil
		}
		return append([]StoreConfig(nil), fallbackConfigs...), nil
	}
}

// GetByToken resolves one location by its opaque token.
func (s *Service) GetByToken(ctx context.Context, token string) (StoreConfig, error) {
	configs, err := s.GetAll(ctx)
	if err != nil {
		return StoreConfig{}, err
	}
	for _, c := range configs {
		if c.Token == token {
			return c, nil
		}
	}
	return StoreConfig{}, ErrNotFound
}

// Upsert writes through to the source and invalidates the cached copy.
func (s *Service) Upsert(ctx context.Context, c StoreConfig) error {
	if err := s.source.UpsertConfig(ctx, c); err != nil {
		return err
	}
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
	return nil
}

// Location returns the time.Location for a store, defaulting to UTC when
// the timezone is unset or unknown.
func (c StoreConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
