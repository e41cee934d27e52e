package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"planner-service/internal/schedule"
)

// memStore is an in-memory EventStore for handler tests.
type memStore struct {
	mu              sync.Mutex
	events          map[string]Event
	categoryQueries int
	failWith        error
}

func newMemStore(events ...Event) *memStore {
	s := &memStore{events: make(map[string]Event)}
	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		s.events[e.ID] = e
	}
	return s
}

func (s *memStore) CreateEvent(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, ok := s.events[e.ID]; ok {
		return errors.New("duplicate id")
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	s.events[e.ID] = *e
	return nil
}

func (s *memStore) GetEvent(_ context.Context, userID, id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func (s *memStore) ListEventsForDay(_ context.Context, userID string, day int64) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.UserID == userID && e.Day == day })
}

func (s *memStore) ListEventsInRange(_ context.Context, userID string, from, to int64) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.UserID == userID && e.Day >= from && e.Day < to })
}

func (s *memStore) ListEventsByCategory(_ context.Context, userID, category string, from, to int64) ([]Event, error) {
	s.mu.Lock()
	s.categoryQueries++
	s.mu.Unlock()
	return s.filter(func(e Event) bool {
		return e.UserID == userID && e.Day >= from && e.Day < to && schedule.NormalizeCategory(e.Category) == category
	})
}

func (s *memStore) UpdateEvent(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.events[e.ID]
	if !ok || old.UserID != e.UserID {
		return ErrNotFound
	}
	s.events[e.ID] = *e
	return nil
}

func (s *memStore) DeleteEvent(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *memStore) SaveMove(_ context.Context, moved *Event, patches []schedule.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[moved.ID]; !ok {
		return ErrNotFound
	}
	s.events[moved.ID] = *moved
	for _, p := range patches {
		e, ok := s.events[p.ID]
		if !ok || e.Locked {
			continue
		}
		e.TimeStart, e.TimeEnd = p.TimeStart, p.TimeEnd
		s.events[p.ID] = e
	}
	return nil
}

func (s *memStore) get(id string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

func (s *memStore) queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categoryQueries
}

func (s *memStore) filter(keep func(Event) bool) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []Event
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		if out[i].TimeStart != out[j].TimeStart {
			return out[i].TimeStart < out[j].TimeStart
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
