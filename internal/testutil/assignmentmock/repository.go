package assignmentmock

import (
	domain "asset-custody/internal/domain/assignment"
	"context"
	"time"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error; reads default to context.Canceled.
type Repo struct {
	CreateFn            func(ctx context.Context, a *domain.Assignment) error
	GetByAssignmentIDFn func(ctx context.Context, assignmentID string) (*domain.Assignment, error)
	UpdateVersionedFn   func(ctx context.Context, a *domain.Assignment, expected uint64) error
	AppendMaintenanceFn func(ctx context.Context, m *domain.MaintenanceRecord) error
	AppendIncidentFn    func(ctx context.Context, in *domain.IncidentRecord) error
	ResolveIncidentFn   func(ctx context.Context, in *domain.IncidentRecord) error
	ListByEmployeeRefFn func(ctx context.Context, employeeRef string) ([]domain.Assignment, error)
	ListOverdueFn       func(ctx context.Context, today time.Time) ([]domain.Assignment, error)
	ListOpenFn          func(ctx context.Context) ([]domain.Assignment, error)
	CountByStatusFn     func(ctx context.Context) (map[domain.Status]int64, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Assignment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByAssignmentID(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	if m.GetByAssignmentIDFn != nil {
		return m.GetByAssignmentIDFn(ctx, assignmentID)
	}
	return nil, context.Canceled
}

// UpdateVersioned bumps the version like the real store when no func is set.
func (m *Repo) UpdateVersioned(ctx context.Context, a *domain.Assignment, expected uint64) error {
	if m.UpdateVersionedFn != nil {
		return m.UpdateVersionedFn(ctx, a, expected)
	}
	a.Version = expected + 1
	return nil
}

func (m *Repo) AppendMaintenance(ctx context.Context, rec *domain.MaintenanceRecord) error {
	if m.AppendMaintenanceFn != nil {
		return m.AppendMaintenanceFn(ctx, rec)
	}
	return nil
}

func (m *Repo) AppendIncident(ctx context.Context, in *domain.IncidentRecord) error {
	if m.AppendIncidentFn != nil {
		return m.AppendIncidentFn(ctx, in)
	}
	return nil
}

func (m *Repo) ResolveIncident(ctx context.Context, in *domain.IncidentRecord) error {
	if m.ResolveIncidentFn != nil {
		return m.ResolveIncidentFn(ctx, in)
	}
	return nil
}

func (m *Repo) ListByEmployeeRef(ctx context.Context, employeeRef string) ([]domain.Assignment, error) {
	if m.ListByEmployeeRefFn != nil {
		return m.ListByEmployeeRefFn(ctx, employeeRef)
	}
	return nil, context.Canceled
}

func (m *Repo) ListOverdue(ctx context.Context, today time.Time) ([]domain.Assignment, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, today)
	}
	return nil, context.Canceled
}

func (m *Repo) ListOpen(ctx context.Context) ([]domain.Assignment, error) {
	if m.ListOpenFn != nil {
		return m.ListOpenFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx)
	}
	return nil, context.Canceled
}
