package assignment

import "time"

// Warranty is derived on every read and never stored.
type Warranty struct {
	HasWarranty bool       `json:"has_warranty"`
	Expired     bool       `json:"expired"`
	EndDate     *time.Time `json:"warranty_end_date,omitempty"`
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeWarranty derives warranty validity from the purchase date and term.
// The warranty is valid through its end date inclusive. A zero purchase date or a
// non-positive term means the asset carries no warranty.
func ComputeWarranty(purchaseDate time.Time, warrantyPeriodMonths int, today time.Time) Warranty {
	if purchaseDate.IsZero() || warrantyPeriodMonths <= 0 {
		return Warranty{}
	}
	end := addMonths(Day(purchaseDate), warrantyPeriodMonths)
	return Warranty{
		HasWarranty: true,
		Expired:     Day(today).After(end),
		EndDate:     &end,
	}
}

// ExpiresWithin reports a live warranty whose end date falls within days of today.
func (w Warranty) ExpiresWithin(today time.Time, days int) bool {
	if !w.HasWarranty || w.Expired || w.EndDate == nil {
		return false
	}
	return !w.EndDate.After(Day(today).AddDate(0, 0, days))
}

// addMonths clamps to the last day of the target month (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
