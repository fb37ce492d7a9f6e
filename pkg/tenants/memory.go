// pkg/tenants/memory.go
package tenants

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore keeps tenants and API registrations in process memory.
// Used for dev bring-up without a database and in handler tests.
type memStore struct {
	mu      sync.RWMutex
	tenants map[string]Tenant
	apis    map[string]ThirdPartyAPI
}

func NewMemoryStore() *memStore {
	return &memStore{tenants: map[string]Tenant{}, apis: map[string]ThirdPartyAPI{}}
}

func (m *memStore) Create(ctx context.Context, t Tenant) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.tenants {
		if e.TenantName == t.TenantName {
			return Tenant{}, ErrDuplicate
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	} else if _, ok := m.tenants[t.ID]; ok {
		return Tenant{}, ErrDuplicate
	}
	t.IsActive = true
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	m.tenants[t.ID] = t
	return t, nil
}

func (m *memStore) Get(ctx context.Context, id string) (Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tenants[id]; ok {
		return t, nil
	}
	return Tenant{}, ErrNotFound
}

func (m *memStore) GetByName(ctx context.Context, name string) (Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tenants {
		if t.TenantName == name {
			return t, nil
		}
	}
	return Tenant{}, ErrNotFound
}

func (m *memStore) List(ctx context.Context, f ListFilter) ([]Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		if f.ActiveOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantName < out[j].TenantName })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []Tenant{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) Update(ctx context.Context, t Tenant) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tenants[t.ID]
	if !ok {
		return Tenant{}, ErrNotFound
	}
	for id, e := range m.tenants {
		if id != t.ID && e.TenantName == t.TenantName {
			return Tenant{}, ErrDuplicate
		}
	}
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	m.tenants[t.ID] = t
	return t, nil
}

func (m *memStore) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return ErrNotFound
	}
	t.IsActive = false
	t.UpdatedAt = time.Now().UTC()
	m.tenants[id] = t
	return nil
}

func (m *memStore) CreateAPI(ctx context.Context, a ThirdPartyAPI) (ThirdPartyAPI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.apis {
		if e.Name == a.Name {
			return ThirdPartyAPI{}, ErrDuplicate
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.IsActive = true
	m.apis[a.ID] = a
	return a, nil
}

func (m *memStore) GetAPI(ctx context.Context, id string) (ThirdPartyAPI, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.apis[id]; ok {
		return a, nil
	}
	return ThirdPartyAPI{}, ErrNotFound
}

func (m *memStore) ListAPIs(ctx context.Context, activeOnly bool) ([]ThirdPartyAPI, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ThirdPartyAPI, 0, len(m.apis))
	for _, a := range m.apis {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) UpdateAPI(ctx context.Context, a ThirdPartyAPI) (ThirdPartyAPI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apis[a.ID]; !ok {
		return ThirdPartyAPI{}, ErrNotFound
	}
	m.apis[a.ID] = a
	return a, nil
}

func (m *memStore) DeleteAPI(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apis[id]; !ok {
		return ErrNotFound
	}
	delete(m.apis, id)
	return nil
}
