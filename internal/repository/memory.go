package repository

import (
	"context"
	"sync"
	"time"

	"onboarding_portal/internal/model"
)

// MemoryStore keeps sessions in process. Stored values are copies, so a
// request mutating its session only persists through SaveSession.
type MemoryStore struct {
	Cache map[string]model.Session
	sync.Mutex
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Cache: make(map[string]model.Session),
		now:   time.Now,
	}
}

func (m *MemoryStore) SaveSession(ctx context.Context, s *model.Session) error {
	m.Lock()
	defer m.Unlock()
	m.Cache[s.ID] = copySession(s)
	return nil
}

func (m *MemoryStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	m.Lock()
	defer m.Unlock()

	s, ok := m.Cache[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired(m.now()) {
		delete(m.Cache, id)
		return nil, ErrNotFound
	}

	out := copySession(&s)
	return &out, nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	m.Lock()
	defer m.Unlock()
	delete(m.Cache, id)
	return nil
}

func (m *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	m.Lock()
	defer m.Unlock()

	var ids []string
	for id, s := range m.Cache {
		if s.Expired(now) {
			delete(m.Cache, id)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func copySession(s *model.Session) model.Session {
	out := *s
	if s.User != nil {
		user := *s.User
		out.User = &user
	}
	return out
}
