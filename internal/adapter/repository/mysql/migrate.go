package mysql

import (
	"context"

	"asset-custody/internal/domain/assignment"
	"asset-custody/internal/domain/event"

	"gorm.io/gorm"
)

// Migrate creates or updates the custody tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&assignment.Assignment{},
		&assignment.MaintenanceRecord{},
		&assignment.IncidentRecord{},
		&event.Event{},
	)
}
