package assignment

import (
	"testing"
	"time"
)

func TestNextServiceDue(t *testing.T) {
	d := func(day int) *time.Time { v := date(2025, 1, day); return &v }

	a := &Assignment{}
	if a.NextServiceDue() != nil {
		t.Fatalf("empty log should have no due date")
	}

	a.Maintenance = []MaintenanceRecord{
		{Seq: 1, MaintenanceDate: date(2025, 1, 5), NextServiceDue: d(20)},
		{Seq: 2, MaintenanceDate: date(2025, 1, 9)},
		{Seq: 3, MaintenanceDate: date(2025, 1, 7), NextServiceDue: d(28)},
		{Seq: 4, MaintenanceDate: date(2025, 1, 7), NextServiceDue: d(30)},
	}
	got := a.NextServiceDue()
	if got == nil || !got.Equal(date(2025, 1, 30)) {
		t.Fatalf("NextServiceDue = %v, want 2025-01-30", got)
	}
}
