package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwrk-planet/meeting-service/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	meetings map[string]*domain.Meeting
}

func New() *Store {
	return &Store{meetings: make(map[string]*domain.Meeting)}
}

func (s *Store) Get(_ context.Context, id string) (*domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meetings[id]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	return m.Clone(), nil
}

func (s *Store) Create(_ context.Context, m *domain.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[m.ID]; ok {
		return fmt.Errorf("meeting %s: %w", m.ID, domain.ErrAlreadyExists)
	}
	s.meetings[m.ID] = m.Clone()
	return nil
}

func (s *Store) Update(_ context.Context, m *domain.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[m.ID]; !ok {
		return domain.ErrMeetingNotFound
	}
	s.meetings[m.ID] = m.Clone()
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
