package assignment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	// GetByAssignmentID loads the record with both logs in display order.
	GetByAssignmentID(ctx context.Context, assignmentID string) (*Assignment, error)
	// UpdateVersioned writes the scalar columns of a only if the stored version is
	// still expected, and sets a.Version to expected+1.
	UpdateVersioned(ctx context.Context, a *Assignment, expected uint64) error
	AppendMaintenance(ctx context.Context, m *MaintenanceRecord) error
	AppendIncident(ctx context.Context, in *IncidentRecord) error
	ResolveIncident(ctx context.Context, in *IncidentRecord) error

	ListByEmployeeRef(ctx context.Context, employeeRef string) ([]Assignment, error)
	ListOverdue(ctx context.Context, today time.Time) ([]Assignment, error)
	// ListOpen returns every non-terminal assignment with its logs.
	ListOpen(ctx context.Context) ([]Assignment, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
