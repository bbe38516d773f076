package eventmock

import (
	domain "asset-custody/internal/domain/event"
	"context"
	"sync"
)

var (
	_ domain.Repository = (*Repo)(nil)
	_ domain.Sink       = (*Sink)(nil)
)

// Repo is a function-backed mock that satisfies event.Repository.
type Repo struct {
	AppendFn             func(ctx context.Context, e *domain.Event) error
	ListByAssignmentIDFn func(ctx context.Context, assignmentID string) ([]domain.Event, error)
}

func (m *Repo) Append(ctx context.Context, e *domain.Event) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	return nil
}

func (m *Repo) ListByAssignmentID(ctx context.Context, assignmentID string) ([]domain.Event, error) {
	if m.ListByAssignmentIDFn != nil {
		return m.ListByAssignmentIDFn(ctx, assignmentID)
	}
	return nil, context.Canceled
}

// Sink records every published event. Err, when set, is returned from Publish.
type Sink struct {
	Err error

	mu     sync.Mutex
	events []domain.Event
}

func (s *Sink) Publish(_ context.Context, e domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.Err
}

func (s *Sink) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.events...)
}
