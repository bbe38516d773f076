package event

import "time"

// Table: custody_events. Append-only audit trail, one row per successful transition.
type Event struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"-"`
	EventID      string    `gorm:"size:36;not null;uniqueIndex:ux_events_event_id" json:"event_id"`
	AssignmentID string    `gorm:"size:32;not null;index:idx_events_assignment" json:"assignment_id"`
	FromStatus   string    `gorm:"size:16" json:"from_status"`
	ToStatus     string    `gorm:"size:16;not null" json:"to_status"`
	Operation    string    `gorm:"size:32;not null" json:"operation"`
	Actor        string    `gorm:"size:64" json:"actor,omitempty"`
	Version      uint64    `gorm:"not null" json:"version"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
	OccurredAt   time.Time `gorm:"not null" json:"timestamp"`
}

func (Event) TableName() string { return "custody_events" }
