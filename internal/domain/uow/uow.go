package uow

import (
	"asset-custody/internal/domain/assignment"
	"asset-custody/internal/domain/event"
	"context"
)

type Repos struct {
	Assignments assignment.Repository
	Events      event.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: load the assignment with its logs first, then pass it in.
	// No row lock is taken; writes go through Repository.UpdateVersioned.
	WithinAssignmentTx(ctx context.Context, assignmentID string, fn func(r Repos, a *assignment.Assignment) error) error
}
