package custody

import (
	"context"
	"errors"
	"sort"
	"time"

	"asset-custody/internal/domain/assignment"
	"asset-custody/internal/domain/event"
	"asset-custody/internal/domain/uow"
	"asset-custody/pkg/id"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Directory resolves display names from HR/asset master data.
type Directory interface {
	EmployeeName(ctx context.Context, ref string) (string, error)
	AssetName(ctx context.Context, ref string) (string, error)
}

// Observer records the outcome and latency of each operation.
type Observer interface {
	Observe(ctx context.Context, op string, success bool, d time.Duration)
}

type Usecase struct {
	assignments assignment.Repository
	events      event.Repository
	uow         uow.UnitOfWork

	sink event.Sink
	dir  Directory
	obs  Observer
	log  *zap.Logger
	now  func() time.Time
}

type Option func(*Usecase)

func WithSink(s event.Sink) Option { return func(u *Usecase) { u.sink = s } }
func WithDirectory(d Directory) Option { return func(u *Usecase) { u.dir = d } }
func WithObserver(o Observer) Option { return func(u *Usecase) { u.obs = o } }
func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// NewUsecase: reads go through the repos directly, every write through the UoW.
func NewUsecase(assignments assignment.Repository, events event.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{
		assignments: assignments,
		events:      events,
		uow:         tx,
		log:         zap.NewNop(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*AssignmentDTO, error) {
	start := u.now()
	if err := validateCreate(in); err != nil {
		u.done(ctx, assignment.OpCreate, "", start, err)
		return nil, err
	}

	now := u.now().UTC()
	in.EmployeeName = u.employeeName(ctx, in)
	in.AssetName = u.assetName(ctx, in)
	a := newAssignment(in, now)
	ev := createdEvent(a, in.Actor, "", now)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Assignments.Create(ctx, a); err != nil {
			return err
		}
		return r.Events.Append(ctx, &ev)
	})
	u.done(ctx, assignment.OpCreate, a.AssignmentID, start, err)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, ev)
	return u.view(a), nil
}

// newAssignment builds a fresh record from validated input; names are taken as given.
func newAssignment(in CreateInput, now time.Time) *assignment.Assignment {
	assigned := assignment.Day(in.AssignedDate)
	typ := in.AssignmentType
	if typ == "" {
		typ = assignment.TypePermanent
	}
	a := &assignment.Assignment{
		AssignmentID:          id.NewID32(),
		AssignmentNumber:      id.NewAssignmentNumber(assigned),
		EmployeeRef:           in.EmployeeRef,
		EmployeeName:          in.EmployeeName,
		AssetRef:              in.AssetRef,
		AssetName:             in.AssetName,
		AssignmentType:        typ,
		Status:                assignment.StatusAssigned,
		StatusUpdatedAt:       now,
		AssignedDate:          assigned,
		IndefiniteAssignment:  in.IndefiniteAssignment,
		ConditionAtAssignment: in.ConditionAtAssignment,
		WarrantyMonths:        in.WarrantyMonths,
		Version:               1,
		CreatedBy:             in.Actor,
	}
	if !in.IndefiniteAssignment {
		d := assignment.Day(*in.ExpectedReturnDate)
		a.ExpectedReturnDate = &d
	}
	if in.PurchaseDate != nil {
		d := assignment.Day(*in.PurchaseDate)
		a.PurchaseDate = &d
	}
	return a
}

func createdEvent(a *assignment.Assignment, actor, notes string, now time.Time) event.Event {
	return event.Event{
		EventID:      uuid.NewString(),
		AssignmentID: a.AssignmentID,
		ToStatus:     string(a.Status),
		Operation:    string(assignment.OpCreate),
		Actor:        actor,
		Version:      a.Version,
		Notes:        notes,
		OccurredAt:   now,
	}
}

// GetAssignment returns the record with warranty, overdue flag and available operations
// computed against the current clock.
func (u *Usecase) GetAssignment(ctx context.Context, assignmentID string) (*AssignmentDTO, error) {
	a, err := u.assignments.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return u.view(a), nil
}

func (u *Usecase) ListByEmployee(ctx context.Context, employeeRef string) ([]*AssignmentDTO, error) {
	if employeeRef == "" {
		return nil, invalid("employee_ref", "is required")
	}
	list, err := u.assignments.ListByEmployeeRef(ctx, employeeRef)
	if err != nil {
		return nil, err
	}
	return u.views(list), nil
}

func (u *Usecase) ListOverdueReturns(ctx context.Context) ([]*AssignmentDTO, error) {
	list, err := u.assignments.ListOverdue(ctx, u.now())
	if err != nil {
		return nil, err
	}
	return u.views(list), nil
}

func (u *Usecase) ListEvents(ctx context.Context, assignmentID string) ([]event.Event, error) {
	if _, err := u.assignments.GetByAssignmentID(ctx, assignmentID); err != nil {
		return nil, err
	}
	return u.events.ListByAssignmentID(ctx, assignmentID)
}

func (u *Usecase) view(a *assignment.Assignment) *AssignmentDTO {
	today := u.now()
	var w assignment.Warranty
	if a.PurchaseDate != nil {
		w = assignment.ComputeWarranty(*a.PurchaseDate, a.WarrantyMonths, today)
	}
	if a.Maintenance == nil {
		a.Maintenance = []assignment.MaintenanceRecord{}
	}
	if a.Incidents == nil {
		a.Incidents = []assignment.IncidentRecord{}
	}
	sort.SliceStable(a.Maintenance, func(i, j int) bool {
		mi, mj := a.Maintenance[i], a.Maintenance[j]
		if !mi.MaintenanceDate.Equal(mj.MaintenanceDate) {
			return mi.MaintenanceDate.Before(mj.MaintenanceDate)
		}
		return mi.Seq < mj.Seq
	})
	return &AssignmentDTO{
		Assignment:          a,
		Warranty:            w,
		ReturnOverdue:       a.ReturnOverdue(today),
		AvailableOperations: assignment.AvailableOps(a),
	}
}

func (u *Usecase) views(list []assignment.Assignment) []*AssignmentDTO {
	out := make([]*AssignmentDTO, 0, len(list))
	for i := range list {
		out = append(out, u.view(&list[i]))
	}
	return out
}

func (u *Usecase) employeeName(ctx context.Context, in CreateInput) string {
	if in.EmployeeName != "" || u.dir == nil {
		return in.EmployeeName
	}
	name, err := u.dir.EmployeeName(ctx, in.EmployeeRef)
	if err != nil {
		u.log.Warn("directory lookup failed", zap.String("employee_ref", in.EmployeeRef), zap.Error(err))
		return ""
	}
	return name
}

func (u *Usecase) assetName(ctx context.Context, in CreateInput) string {
	if in.AssetName != "" || u.dir == nil {
		return in.AssetName
	}
	name, err := u.dir.AssetName(ctx, in.AssetRef)
	if err != nil {
		u.log.Warn("directory lookup failed", zap.String("asset_ref", in.AssetRef), zap.Error(err))
		return ""
	}
	return name
}

// publish runs after commit. A sink failure never undoes a committed transition.
func (u *Usecase) publish(ctx context.Context, ev event.Event) {
	if u.sink == nil {
		return
	}
	if err := u.sink.Publish(ctx, ev); err != nil {
		u.log.Warn("event publish failed",
			zap.String("event_id", ev.EventID),
			zap.String("assignment_id", ev.AssignmentID),
			zap.String("op", ev.Operation),
			zap.Error(err))
	}
}

func (u *Usecase) done(ctx context.Context, op assignment.Op, assignmentID string, start time.Time, err error) {
	ok := err == nil || errors.Is(err, assignment.ErrAlreadyAcknowledged)
	if u.obs != nil {
		u.obs.Observe(ctx, string(op), ok, u.now().Sub(start))
	}
	if ok {
		return
	}
	fields := []zap.Field{zap.String("op", string(op)), zap.String("assignment_id", assignmentID), zap.Error(err)}
	switch {
	case errors.Is(err, assignment.ErrValidation),
		errors.Is(err, assignment.ErrInvalidTransition),
		errors.Is(err, assignment.ErrConflict),
		errors.Is(err, assignment.ErrNotFound),
		errors.Is(err, assignment.ErrIncidentNotFound):
		u.log.Info("custody operation rejected", fields...)
	default:
		u.log.Error("custody operation failed", fields...)
	}
}
