package custody

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"asset-custody/internal/domain/assignment"

	"github.com/shopspring/decimal"
)

func dayOffset(days int) *time.Time {
	d := assignment.Day(fixedNow).AddDate(0, 0, days)
	return &d
}

// Scenario: transfer closes one record and opens its successor; clearance follows.
func TestScenario_TransferThenClearance(t *testing.T) {
	ctx := context.Background()
	u, sink := newStoreUsecase(t)
	a := createOne(t, u)
	id := a.AssignmentID

	if _, err := u.Acknowledge(ctx, id, AcknowledgeInput{Method: assignment.AckDigitalSignature}); err != nil {
		t.Fatal(err)
	}
	if _, err := u.MarkInUse(ctx, id, Meta{}); err != nil {
		t.Fatal(err)
	}

	res, err := u.Transfer(ctx, id, TransferInput{
		Meta:           Meta{Actor: "hr1"},
		NewEmployeeRef: "EMP-43", NewEmployeeName: "Sara",
		TransferDate: dayOffset(0), Condition: assignment.ConditionGood, Reason: "team change",
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	prev, cur := res.Previous, res.Current
	if prev.Status != assignment.StatusReturned || !prev.Return.Completed || prev.Return.Reason != assignment.ReasonTransfer {
		t.Fatalf("previous: status=%s return=%+v", prev.Status, prev.Return)
	}
	if prev.TransferredTo != cur.AssignmentID || cur.TransferredFrom != id {
		t.Fatalf("chain: to=%s from=%s", prev.TransferredTo, cur.TransferredFrom)
	}
	if cur.Status != assignment.StatusAssigned || cur.EmployeeRef != "EMP-43" || cur.AssetRef != "LAPTOP-7" || cur.Version != 1 {
		t.Fatalf("current: %+v", cur.Assignment)
	}
	checkInvariants(t, prev.Assignment)
	checkInvariants(t, cur.Assignment)

	evs, err := u.ListEvents(ctx, cur.AssignmentID)
	if err != nil || len(evs) != 1 || evs[0].Operation != string(assignment.OpCreate) ||
		!strings.Contains(evs[0].Notes, a.AssignmentNumber) {
		t.Fatalf("successor events: %+v err=%v", evs, err)
	}
	if n := len(sink.Events()); n != 5 {
		t.Fatalf("published %d events, want 5", n)
	}

	_, err = u.Transfer(ctx, id, TransferInput{NewEmployeeRef: "EMP-44", TransferDate: dayOffset(0), Condition: assignment.ConditionGood})
	var ite *assignment.InvalidTransitionError
	if !errors.As(err, &ite) || ite.Reason != "already returned" {
		t.Fatalf("second transfer: %v", err)
	}
	list, err := u.ListByEmployee(ctx, "EMP-43")
	if err != nil || len(list) != 1 {
		t.Fatalf("EMP-43 assignments: %d err=%v", len(list), err)
	}

	got, err := u.IssueClearance(ctx, id, StatusChangeInput{Meta: Meta{Actor: "hr1"}})
	if err != nil {
		t.Fatalf("IssueClearance: %v", err)
	}
	if !got.Clearance.Issued || got.Clearance.IssuedBy != "hr1" || got.Status != assignment.StatusReturned {
		t.Fatalf("clearance: %+v status=%s", got.Clearance, got.Status)
	}
	if _, err := u.IssueClearance(ctx, id, StatusChangeInput{}); !errors.As(err, &ite) || ite.Reason != "clearance already issued" {
		t.Fatalf("second clearance: %v", err)
	}
}

func TestUsecase_TransferValidation(t *testing.T) {
	ctx := context.Background()
	base := inUse()
	base.EmployeeRef = "EMP-1"
	base.AssignedDate = assignment.Day(fixedNow)

	tests := []struct {
		name  string
		in    TransferInput
		field string
	}{
		{"missing new holder", TransferInput{TransferDate: dayOffset(0), Condition: assignment.ConditionGood}, "new_employee_ref"},
		{"missing date", TransferInput{NewEmployeeRef: "EMP-2", Condition: assignment.ConditionGood}, "transfer_date"},
		{"bad condition", TransferInput{NewEmployeeRef: "EMP-2", TransferDate: dayOffset(0), Condition: "broken"}, "condition"},
		{"same holder", TransferInput{NewEmployeeRef: "EMP-1", TransferDate: dayOffset(0), Condition: assignment.ConditionGood}, "new_employee_ref"},
		{"before assignment", TransferInput{NewEmployeeRef: "EMP-2", TransferDate: dayOffset(-1), Condition: assignment.ConditionGood}, "transfer_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, f := newFixture(base)
			_, err := u.Transfer(ctx, base.AssignmentID, tt.in)
			var ve *assignment.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("want validation on %s, got %v", tt.field, err)
			}
			if len(f.updates) != 0 || len(f.sink.Events()) != 0 {
				t.Fatalf("rejected transfer wrote: updates=%v events=%d", f.updates, len(f.sink.Events()))
			}
		})
	}
}

func TestUsecase_ClearanceBlockedByOpenIncident(t *testing.T) {
	st := fresh()
	st.Status = assignment.StatusReturned
	st.Return = assignment.ReturnProcess{Initiated: true, Completed: true}
	st.Incidents = []assignment.IncidentRecord{{ID: 1, IncidentID: "inc-open"}}
	u, f := newFixture(st)

	_, err := u.IssueClearance(context.Background(), st.AssignmentID, StatusChangeInput{})
	var ite *assignment.InvalidTransitionError
	if !errors.As(err, &ite) || ite.Reason != "unresolved incident" {
		t.Fatalf("want unresolved incident, got %v", err)
	}
	if len(f.updates) != 0 {
		t.Fatalf("refused clearance must not write")
	}
}

// Scenario: maintenance-due, warranty-expiring and stats read the same open set.
func TestScenario_ReportQueries(t *testing.T) {
	ctx := context.Background()
	u, _ := newStoreUsecase(t)

	mk := func(emp string, purchase time.Time, months int) string {
		t.Helper()
		dto, err := u.Create(ctx, CreateInput{
			EmployeeRef: emp, AssetRef: "AST-" + emp, AssignedDate: fixedNow, IndefiniteAssignment: true,
			ConditionAtAssignment: assignment.ConditionGood, PurchaseDate: &purchase, WarrantyMonths: months,
		})
		if err != nil {
			t.Fatalf("Create %s: %v", emp, err)
		}
		return dto.AssignmentID
	}
	service := func(id string, next *time.Time) {
		t.Helper()
		if _, err := u.RecordMaintenance(ctx, id, RecordMaintenanceInput{
			Type: assignment.MaintenancePreventive, Date: fixedNow, PerformedBy: "internal",
			Cost: decimal.NewFromInt(20), NextServiceDue: next,
		}); err != nil {
			t.Fatalf("RecordMaintenance: %v", err)
		}
	}

	soon := mk("EMP-A", time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), 12)
	expired := mk("EMP-B", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 12)
	later := mk("EMP-C", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 12)
	lost := mk("EMP-D", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), 12)

	service(soon, dayOffset(5))
	service(expired, dayOffset(-2))
	service(later, dayOffset(60))
	if _, err := u.MarkLost(ctx, lost, StatusChangeInput{}); err != nil {
		t.Fatal(err)
	}
	service(lost, dayOffset(1))
	if _, err := u.ReportIncident(ctx, soon, ReportIncidentInput{
		Type: assignment.IncidentMalfunction, Date: fixedNow, Description: "fan noise", Severity: assignment.SeverityMinor,
	}); err != nil {
		t.Fatal(err)
	}

	due, err := u.ListMaintenanceDue(ctx, DefaultWindowDays)
	if err != nil {
		t.Fatalf("ListMaintenanceDue: %v", err)
	}
	if len(due) != 2 || due[0].AssignmentID != expired || due[0].DaysUntilDue != -2 ||
		due[1].AssignmentID != soon || due[1].DaysUntilDue != 5 {
		t.Fatalf("maintenance due: %+v", due)
	}

	exp, err := u.ListWarrantyExpiring(ctx, DefaultWindowDays)
	if err != nil {
		t.Fatalf("ListWarrantyExpiring: %v", err)
	}
	if len(exp) != 1 || exp[0].AssignmentID != soon || exp[0].DaysUntilExpiry != 10 {
		t.Fatalf("warranty expiring: %+v", exp)
	}
	if exp, _ = u.ListWarrantyExpiring(ctx, 120); len(exp) != 2 || exp[1].AssignmentID != later {
		t.Fatalf("120-day window: %+v", exp)
	}

	st, err := u.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 4 || st.ByStatus[assignment.StatusAssigned] != 3 || st.ByStatus[assignment.StatusLost] != 1 ||
		st.Active != 3 || st.Unacknowledged != 3 || st.MaintenanceDue != 2 || st.OpenIncidents != 1 ||
		st.PendingReturns != 0 || st.OverdueReturns != 0 {
		t.Fatalf("stats: %+v", st)
	}

	if _, err := u.ListMaintenanceDue(ctx, -1); !errors.Is(err, assignment.ErrValidation) {
		t.Fatalf("negative window: %v", err)
	}
	if _, err := u.ListWarrantyExpiring(ctx, MaxWindowDays+1); !errors.Is(err, assignment.ErrValidation) {
		t.Fatalf("oversized window: %v", err)
	}
}
