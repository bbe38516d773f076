package mysql

import (
	eventDomain "asset-custody/internal/domain/event"
	"context"

	"gorm.io/gorm"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Append(ctx context.Context, e *eventDomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// ListByAssignmentID returns the audit trail oldest first.
func (r *EventRepository) ListByAssignmentID(ctx context.Context, assignmentID string) ([]eventDomain.Event, error) {
	var out []eventDomain.Event
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
