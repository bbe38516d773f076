package event

import "context"

type Repository interface {
	Append(ctx context.Context, e *Event) error
	ListByAssignmentID(ctx context.Context, assignmentID string) ([]Event, error)
}

// Sink receives committed events. Implementations must not block the caller for long.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}
