package custody

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"asset-custody/internal/adapter/repository/mysql"
	"asset-custody/internal/domain/assignment"
	"asset-custody/internal/testutil/eventmock"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newStoreUsecase wires the usecase to the gorm repositories over in-memory sqlite.
func newStoreUsecase(t *testing.T) (*Usecase, *eventmock.Sink) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := mysql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	sink := &eventmock.Sink{}
	u := NewUsecase(mysql.NewAssignmentRepository(db), mysql.NewEventRepository(db), mysql.NewGormUoW(db),
		WithSink(sink), WithClock(clock))
	return u, sink
}

func createOne(t *testing.T, u *Usecase) *AssignmentDTO {
	t.Helper()
	dto, err := u.Create(context.Background(), CreateInput{
		Actor: "hr1", EmployeeRef: "EMP-42", EmployeeName: "Ahmed", AssetRef: "LAPTOP-7",
		AssignedDate: fixedNow, IndefiniteAssignment: true, ConditionAtAssignment: assignment.ConditionGood,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return dto
}

func checkInvariants(t *testing.T, a *assignment.Assignment) {
	t.Helper()
	if a.Return.Completed && !a.Return.Initiated {
		t.Fatalf("return completed without initiation")
	}
	if a.Status == assignment.StatusReturned && !a.Return.Completed {
		t.Fatalf("returned without completed return")
	}
	if !a.Status.Valid() {
		t.Fatalf("status outside enum: %s", a.Status)
	}
}

// Scenario: ack gates in-use.
func TestScenario_AcknowledgeThenUse(t *testing.T) {
	ctx := context.Background()
	u, _ := newStoreUsecase(t)
	a := createOne(t, u)

	if _, err := u.MarkInUse(ctx, a.AssignmentID, Meta{}); !errors.Is(err, assignment.ErrInvalidTransition) {
		t.Fatalf("MarkInUse before ack: want invalid transition, got %v", err)
	}
	if _, err := u.Acknowledge(ctx, a.AssignmentID, AcknowledgeInput{Method: assignment.AckSystemAcceptance}); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	got, err := u.MarkInUse(ctx, a.AssignmentID, Meta{Actor: "emp42"})
	if err != nil {
		t.Fatalf("MarkInUse: %v", err)
	}
	if got.Status != assignment.StatusInUse || got.Version != 3 {
		t.Fatalf("status=%s version=%d", got.Status, got.Version)
	}
	checkInvariants(t, got.Assignment)
}

// Scenario: two-phase return, then a second completion is rejected.
func TestScenario_ReturnFlow(t *testing.T) {
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

	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	got, err := u.InitiateReturn(ctx, id, InitiateReturnInput{Reason: assignment.ReasonResignation, DueDate: &due})
	if err != nil {
		t.Fatalf("InitiateReturn: %v", err)
	}
	if !got.Return.Initiated || got.Status != assignment.StatusInUse {
		t.Fatalf("after initiate: %+v", got.Return)
	}

	// still usable while the return is pending
	if _, err := u.RecordMaintenance(ctx, id, RecordMaintenanceInput{
		Type: assignment.MaintenanceInspection, Date: fixedNow, PerformedBy: "it-desk", Cost: decimal.Zero,
	}); err != nil {
		t.Fatalf("RecordMaintenance during pending return: %v", err)
	}

	actual := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
	complete := CompleteReturnInput{
		ActualReturnDate: &actual, ReturnedBy: "Ahmed", Method: assignment.MethodHandDelivery,
		ReceivedBy: "hr1", ConditionAtReturn: assignment.ConditionGood, DataWiped: true,
	}
	got, err = u.CompleteReturn(ctx, id, complete)
	if err != nil {
		t.Fatalf("CompleteReturn: %v", err)
	}
	if got.Status != assignment.StatusReturned || !got.Return.Completed || !got.Return.ActualReturnDate.Equal(actual) {
		t.Fatalf("after complete: status=%s return=%+v", got.Status, got.Return)
	}
	if len(got.AvailableOperations) != 1 || got.AvailableOperations[0] != assignment.OpIssueClearance {
		t.Fatalf("returned record offers %v", got.AvailableOperations)
	}
	checkInvariants(t, got.Assignment)

	_, err = u.CompleteReturn(ctx, id, complete)
	var ite *assignment.InvalidTransitionError
	if !errors.As(err, &ite) || ite.Reason != "already returned" {
		t.Fatalf("second CompleteReturn: got %v", err)
	}

	if _, err := u.RecordMaintenance(ctx, id, RecordMaintenanceInput{
		Type: assignment.MaintenanceInspection, Date: fixedNow, PerformedBy: "it-desk",
	}); !errors.Is(err, assignment.ErrInvalidTransition) {
		t.Fatalf("maintenance on returned record: got %v", err)
	}

	evs, err := u.ListEvents(ctx, id)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	wantOps := []assignment.Op{
		assignment.OpCreate, assignment.OpAcknowledge, assignment.OpMarkInUse,
		assignment.OpInitiateReturn, assignment.OpRecordMaintenance, assignment.OpCompleteReturn,
	}
	if len(evs) != len(wantOps) || len(sink.Events()) != len(wantOps) {
		t.Fatalf("events stored=%d published=%d want %d", len(evs), len(sink.Events()), len(wantOps))
	}
	for i, e := range evs {
		if e.Operation != string(wantOps[i]) || e.Version != uint64(i+1) {
			t.Fatalf("event %d: %+v", i, e)
		}
	}
}

// Scenario: maintenance and incidents append without moving status.
func TestScenario_LogsAppendOnly(t *testing.T) {
	ctx := context.Background()
	u, _ := newStoreUsecase(t)
	a := createOne(t, u)
	id := a.AssignmentID

	got, err := u.RecordMaintenance(ctx, id, RecordMaintenanceInput{
		Type: assignment.MaintenancePreventive, Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PerformedBy: "vendor1", Description: "cleaning", Cost: decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("RecordMaintenance: %v", err)
	}
	if len(got.Maintenance) != 1 || got.Status != assignment.StatusAssigned {
		t.Fatalf("maintenance=%d status=%s", len(got.Maintenance), got.Status)
	}

	got, err = u.ReportIncident(ctx, id, ReportIncidentInput{
		Type: assignment.IncidentDamage, Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "screen crack", Severity: assignment.SeverityMajor,
	})
	if err != nil {
		t.Fatalf("ReportIncident: %v", err)
	}
	if len(got.Incidents) != 1 || got.Incidents[0].Resolved || got.Status != assignment.StatusAssigned {
		t.Fatalf("incident=%+v status=%s", got.Incidents, got.Status)
	}

	got, err = u.MarkDamaged(ctx, id, StatusChangeInput{Notes: "screen crack"})
	if err != nil {
		t.Fatalf("MarkDamaged: %v", err)
	}
	if got.Status != assignment.StatusDamaged || len(got.Maintenance) != 1 || len(got.Incidents) != 1 {
		t.Fatalf("after damaged: status=%s logs=%d/%d", got.Status, len(got.Maintenance), len(got.Incidents))
	}

	incID := got.Incidents[0].IncidentID
	got, err = u.ResolveIncident(ctx, id, ResolveIncidentInput{IncidentID: incID, ResolutionAction: "screen replaced"})
	if err != nil {
		t.Fatalf("ResolveIncident: %v", err)
	}
	v := got.Version
	again, err := u.ResolveIncident(ctx, id, ResolveIncidentInput{IncidentID: incID})
	if err != nil || again.Version != v || again.Incidents[0].ResolutionAction != "screen replaced" {
		t.Fatalf("second resolve: v=%d err=%v", again.Version, err)
	}

	back, err := u.ReturnToService(ctx, id, StatusChangeInput{})
	if err != nil || back.Status != assignment.StatusInUse {
		t.Fatalf("ReturnToService: status=%v err=%v", back, err)
	}
}

// Scenario: two writers holding the same version; exactly one wins.
func TestScenario_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	u, _ := newStoreUsecase(t)
	a := createOne(t, u)
	id := a.AssignmentID

	if _, err := u.Acknowledge(ctx, id, AcknowledgeInput{Method: assignment.AckSystemAcceptance}); err != nil {
		t.Fatal(err)
	}
	cur, err := u.RecordMaintenance(ctx, id, RecordMaintenanceInput{
		Type: assignment.MaintenanceInspection, Date: fixedNow, PerformedBy: "it-desk",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cur.Version != 3 {
		t.Fatalf("setup version=%d", cur.Version)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := u.MarkInUse(ctx, id, Meta{ExpectedVersion: 3})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, assignment.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected err: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || conflicts != 1 {
		t.Fatalf("ok=%d conflicts=%d", ok, conflicts)
	}

	final, err := u.GetAssignment(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if final.Version != 4 || final.Status != assignment.StatusInUse {
		t.Fatalf("final version=%d status=%s", final.Version, final.Status)
	}
}

func TestScenario_QueriesAndNotFound(t *testing.T) {
	ctx := context.Background()
	u, _ := newStoreUsecase(t)

	if _, err := u.GetAssignment(ctx, "ffffffffffffffffffffffffffffffff"); !errors.Is(err, assignment.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := u.ListEvents(ctx, "ffffffffffffffffffffffffffffffff"); !errors.Is(err, assignment.ErrNotFound) {
		t.Fatalf("ListEvents: want ErrNotFound, got %v", err)
	}

	a := createOne(t, u)
	due := fixedNow.AddDate(0, 0, 1)
	if _, err := u.InitiateReturn(ctx, a.AssignmentID, InitiateReturnInput{Reason: assignment.ReasonUpgrade, DueDate: &due}); err != nil {
		t.Fatal(err)
	}

	mine, err := u.ListByEmployee(ctx, "EMP-42")
	if err != nil || len(mine) != 1 || mine[0].AssignmentID != a.AssignmentID {
		t.Fatalf("ListByEmployee: %v %v", mine, err)
	}
	if _, err := u.ListByEmployee(ctx, ""); !errors.Is(err, assignment.ErrValidation) {
		t.Fatalf("empty ref: %v", err)
	}

	overdue, err := u.ListOverdueReturns(ctx)
	if err != nil || len(overdue) != 0 {
		t.Fatalf("nothing is overdue yet: %v %v", overdue, err)
	}

	// two days later the due date has passed
	later := fixedNow.AddDate(0, 0, 2)
	u.now = func() time.Time { return later }
	overdue, err = u.ListOverdueReturns(ctx)
	if err != nil || len(overdue) != 1 || !overdue[0].ReturnOverdue {
		t.Fatalf("overdue: %v %v", overdue, err)
	}
}
