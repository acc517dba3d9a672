package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/servicepoller/internal/domain"
	"github.com/hamed0406/servicepoller/internal/repo"
)

type Store struct {
	mu       sync.RWMutex
	services map[domain.ServiceID]domain.Service
	lastID   domain.ServiceID
	now      func() time.Time
}

func New() *Store {
	return &Store{
		services: make(map[domain.ServiceID]domain.Service),
		now:      time.Now,
	}
}

func (m *Store) List(ctx context.Context) ([]domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Service, 0, len(m.services))
	for _, s := range m.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) Get(ctx context.Context, id domain.ServiceID) (domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.services[id]
	if !ok {
		return domain.Service{}, repo.ErrNotFound
	}
	return s, nil
}

func (m *Store) Upsert(ctx context.Context, s domain.Service) (domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == 0 {
		m.lastID++
		s.ID = m.lastID
		if s.Created.IsZero() {
			s.Created = m.now().UTC()
		}
		if s.LastUpdated.IsZero() {
			s.LastUpdated = s.Created
		}
		m.services[s.ID] = s
		return s, nil
	}

	cur, ok := m.services[s.ID]
	if !ok {
		return domain.Service{}, repo.ErrNotFound
	}
	s.Created = cur.Created
	s.LastUpdated = clampLastUpdated(s)
	m.services[s.ID] = s
	return s, nil
}

func (m *Store) Update(ctx context.Context, id domain.ServiceID, fn repo.UpdateFunc) (domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.services[id]
	if !ok {
		return domain.Service{}, repo.ErrNotFound
	}
	next := fn(cur)
	next.ID = cur.ID
	next.Created = cur.Created
	next.LastUpdated = clampLastUpdated(next)
	m.services[id] = next
	return next, nil
}

// clampLastUpdated keeps lastUpdated at or after created.
func clampLastUpdated(s domain.Service) time.Time {
	if s.LastUpdated.Before(s.Created) {
		return s.Created
	}
	return s.LastUpdated
}

func (m *Store) Delete(ctx context.Context, id domain.ServiceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.services, id)
	return nil
}

// Len reports how many records are held.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.services)
}

func (m *Store) Close() error { return nil }

var _ repo.ServiceStore = (*Store)(nil)
var _ repo.Closer = (*Store)(nil)
