package uowmock

import (
	"context"
	"errors"

	"asset-custody/internal/domain/assignment"
	"asset-custody/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn           func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinAssignmentTxFn func(ctx context.Context, assignmentID string, fn func(r uow.Repos, a *assignment.Assignment) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinAssignmentTx(fn func(context.Context, string, func(uow.Repos, *assignment.Assignment) error) error) *UoW {
	m.WithinAssignmentTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough wires both funcs to run fn directly against r, loading the
// assignment through r.Assignments the way the gorm unit of work does.
func Passthrough(r uow.Repos) *UoW {
	return New().
		WithWithinTx(func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(r)
		}).
		WithWithinAssignmentTx(func(ctx context.Context, id string, fn func(uow.Repos, *assignment.Assignment) error) error {
			a, err := r.Assignments.GetByAssignmentID(ctx, id)
			if err != nil {
				return err
			}
			return fn(r, a)
		})
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinAssignmentTx(ctx context.Context, assignmentID string, fn func(r uow.Repos, a *assignment.Assignment) error) error {
	if m.WithinAssignmentTxFn != nil {
		return m.WithinAssignmentTxFn(ctx, assignmentID, fn)
	}
	return errUnimplemented
}
