package mysql

import (
	assignmentDomain "asset-custody/internal/domain/assignment"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	openStatuses = []string{
		string(assignmentDomain.StatusAssigned), string(assignmentDomain.StatusInUse),
		string(assignmentDomain.StatusMaintenance), string(assignmentDomain.StatusDamaged),
	}
	activeStatuses = []string{string(assignmentDomain.StatusAssigned), string(assignmentDomain.StatusInUse)}
)

type AssignmentRepository struct{ db *gorm.DB }

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *AssignmentRepository) Tx(ctx context.Context, fn func(repo assignmentDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AssignmentRepository{db: tx})
	})
}

func (r *AssignmentRepository) Create(ctx context.Context, a *assignmentDomain.Assignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

func (r *AssignmentRepository) GetByAssignmentID(ctx context.Context, assignmentID string) (*assignmentDomain.Assignment, error) {
	var out assignmentDomain.Assignment
	res := r.withLogs(ctx).Where("assignment_id = ?", assignmentID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, assignmentDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

// UpdateVersioned is a compare-and-set on the version column. Logs are written
// separately through AppendMaintenance/AppendIncident in the same transaction.
func (r *AssignmentRepository) UpdateVersioned(ctx context.Context, a *assignmentDomain.Assignment, expected uint64) error {
	a.Version = expected + 1
	res := r.db.WithContext(ctx).
		Model(a).
		Where("version = ?", expected).
		Select("*").
		Omit(clause.Associations, "ID", "AssignmentID", "AssignmentNumber", "CreatedAt", "CreatedBy").
		Updates(a)
	if res.Error != nil {
		a.Version = expected
		return res.Error
	}
	// Stored version stays unknown: a re-read in this tx may see the old snapshot.
	if res.RowsAffected == 0 {
		a.Version = expected
		return &assignmentDomain.ConflictError{AssignmentID: a.AssignmentID, Expected: expected}
	}
	return nil
}

func (r *AssignmentRepository) AppendMaintenance(ctx context.Context, m *assignmentDomain.MaintenanceRecord) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *AssignmentRepository) AppendIncident(ctx context.Context, in *assignmentDomain.IncidentRecord) error {
	return r.db.WithContext(ctx).Create(in).Error
}

// ResolveIncident only touches the resolution columns, and only once.
func (r *AssignmentRepository) ResolveIncident(ctx context.Context, in *assignmentDomain.IncidentRecord) error {
	res := r.db.WithContext(ctx).
		Model(in).
		Where("resolved = ?", false).
		Select("Resolved", "ResolvedAt", "ResolutionAction").
		Updates(in)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return assignmentDomain.ErrIncidentNotFound
	}
	return nil
}

func (r *AssignmentRepository) ListByEmployeeRef(ctx context.Context, employeeRef string) ([]assignmentDomain.Assignment, error) {
	var out []assignmentDomain.Assignment
	err := r.withLogs(ctx).
		Where("employee_ref = ?", employeeRef).
		Order("assigned_date DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListOverdue mirrors Assignment.ReturnOverdue in SQL.
func (r *AssignmentRepository) ListOverdue(ctx context.Context, today time.Time) ([]assignmentDomain.Assignment, error) {
	t := assignmentDomain.Day(today)
	var out []assignmentDomain.Assignment
	err := r.withLogs(ctx).
		Where("return_completed = ?", false).
		Where(
			r.db.Where("return_initiated = ? AND return_due_date < ? AND status IN ?", true, t, openStatuses).
				Or("return_initiated = ? AND indefinite_assignment = ? AND expected_return_date < ? AND status IN ?", false, false, t, activeStatuses),
		).
		Order("assigned_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *AssignmentRepository) ListOpen(ctx context.Context) ([]assignmentDomain.Assignment, error) {
	var out []assignmentDomain.Assignment
	err := r.withLogs(ctx).
		Where("status IN ?", openStatuses).
		Order("assigned_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *AssignmentRepository) CountByStatus(ctx context.Context) (map[assignmentDomain.Status]int64, error) {
	var rows []struct {
		Status assignmentDomain.Status
		N      int64
	}
	err := r.db.WithContext(ctx).
		Model(&assignmentDomain.Assignment{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[assignmentDomain.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *AssignmentRepository) withLogs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Maintenance", func(db *gorm.DB) *gorm.DB {
			return db.Order("maintenance_date ASC, seq ASC")
		}).
		Preload("Incidents", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		})
}
