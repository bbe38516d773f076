package custody

import (
	"context"
	"sort"
	"time"

	"asset-custody/internal/domain/assignment"
)

const (
	DefaultWindowDays = 30
	MaxWindowDays     = 365
)

func checkWindow(days int) error {
	if days < 0 || days > MaxWindowDays {
		return invalid("within_days", "must be between 0 and 365")
	}
	return nil
}

func daysBetween(from, to time.Time) int {
	return int(assignment.Day(to).Sub(assignment.Day(from)).Hours() / 24)
}

// ListMaintenanceDue returns open assignments whose next service date is on or before
// today+withinDays, soonest first. Services already past due are included.
func (u *Usecase) ListMaintenanceDue(ctx context.Context, withinDays int) ([]MaintenanceDue, error) {
	if err := checkWindow(withinDays); err != nil {
		return nil, err
	}
	open, err := u.assignments.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	today := u.now()
	out := make([]MaintenanceDue, 0)
	for i := range open {
		due := open[i].NextServiceDue()
		if due == nil {
			continue
		}
		n := daysBetween(today, *due)
		if n > withinDays {
			continue
		}
		out = append(out, MaintenanceDue{AssignmentDTO: u.view(&open[i]), NextServiceDue: *due, DaysUntilDue: n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NextServiceDue.Before(out[j].NextServiceDue) })
	return out, nil
}

// ListWarrantyExpiring returns open assignments whose asset warranty is still live and
// ends within withinDays of today, soonest first.
func (u *Usecase) ListWarrantyExpiring(ctx context.Context, withinDays int) ([]WarrantyExpiring, error) {
	if err := checkWindow(withinDays); err != nil {
		return nil, err
	}
	open, err := u.assignments.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	today := u.now()
	out := make([]WarrantyExpiring, 0)
	for i := range open {
		dto := u.view(&open[i])
		if !dto.Warranty.ExpiresWithin(today, withinDays) {
			continue
		}
		end := *dto.Warranty.EndDate
		out = append(out, WarrantyExpiring{AssignmentDTO: dto, WarrantyEndDate: end, DaysUntilExpiry: daysBetween(today, end)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WarrantyEndDate.Before(out[j].WarrantyEndDate) })
	return out, nil
}

func (u *Usecase) Stats(ctx context.Context) (*Stats, error) {
	counts, err := u.assignments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	open, err := u.assignments.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{ByStatus: make(map[assignment.Status]int64, len(counts))}
	for s, n := range counts {
		st.ByStatus[s] = n
		st.Total += n
	}
	st.Active = counts[assignment.StatusAssigned] + counts[assignment.StatusInUse]

	today := u.now()
	horizon := assignment.Day(today).AddDate(0, 0, DefaultWindowDays)
	for i := range open {
		a := &open[i]
		if a.Status == assignment.StatusAssigned && !a.Acknowledgment.Acknowledged {
			st.Unacknowledged++
		}
		if a.Return.Initiated && !a.Return.Completed {
			st.PendingReturns++
		}
		if a.ReturnOverdue(today) {
			st.OverdueReturns++
		}
		if due := a.NextServiceDue(); due != nil && !due.After(horizon) {
			st.MaintenanceDue++
		}
		for _, in := range a.Incidents {
			if !in.Resolved {
				st.OpenIncidents++
			}
		}
	}
	return st, nil
}
