package mysql

import (
	"asset-custody/internal/domain/assignment"
	"asset-custody/internal/domain/uow"
	"context"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Assignments: &AssignmentRepository{db: tx},
		Events:      &EventRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

// WithinAssignmentTx reads the record inside the tx; the write side is guarded by
// the version column rather than a row lock.
func (u *GormUoW) WithinAssignmentTx(ctx context.Context, assignmentID string, fn func(r uow.Repos, a *assignment.Assignment) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		a, err := r.Assignments.GetByAssignmentID(ctx, assignmentID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
