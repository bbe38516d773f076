package custody

import (
	"context"
	"errors"
	"time"

	"asset-custody/internal/domain/assignment"
	"asset-custody/internal/domain/event"
	"asset-custody/internal/domain/uow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// step describes one state-machine operation against a single assignment.
type step struct {
	op    assignment.Op
	id    string
	meta  Meta
	notes string
	// pre runs before the guard. skip=true commits nothing and returns the record as is.
	pre func(a *assignment.Assignment) (skip bool, err error)
	// apply mutates a and appends log rows through r. Status is moved afterwards from the table.
	apply func(ctx context.Context, r uow.Repos, a *assignment.Assignment, now time.Time) error
}

// run loads, checks, mutates and writes the record inside one transaction, then
// publishes the event once the transaction has committed.
func (u *Usecase) run(ctx context.Context, s step) (*AssignmentDTO, error) {
	start := u.now()
	var (
		out     *assignment.Assignment
		ev      event.Event
		skipped bool
	)
	err := u.uow.WithinAssignmentTx(ctx, s.id, func(r uow.Repos, a *assignment.Assignment) error {
		if s.meta.ExpectedVersion != 0 && s.meta.ExpectedVersion != a.Version {
			return &assignment.ConflictError{AssignmentID: a.AssignmentID, Expected: s.meta.ExpectedVersion, Actual: a.Version}
		}
		if s.pre != nil {
			skip, err := s.pre(a)
			if err != nil {
				return err
			}
			if skip {
				out, skipped = a, true
				return nil
			}
		}
		if err := assignment.Check(s.op, a); err != nil {
			return err
		}

		from := a.Status
		now := u.now().UTC()
		if s.apply != nil {
			if err := s.apply(ctx, r, a, now); err != nil {
				return err
			}
		}
		if to := assignment.Target(s.op, from); to != from {
			a.Status = to
			a.StatusUpdatedAt = now
		}
		if err := r.Assignments.UpdateVersioned(ctx, a, a.Version); err != nil {
			return err
		}

		ev = event.Event{
			EventID:      uuid.NewString(),
			AssignmentID: a.AssignmentID,
			FromStatus:   string(from),
			ToStatus:     string(a.Status),
			Operation:    string(s.op),
			Actor:        s.meta.Actor,
			Version:      a.Version,
			Notes:        s.notes,
			OccurredAt:   now,
		}
		if err := r.Events.Append(ctx, &ev); err != nil {
			return err
		}
		out = a
		return nil
	})
	u.done(ctx, s.op, s.id, start, err)
	if err != nil {
		return nil, err
	}
	if !skipped {
		u.log.Info("custody transition",
			zap.String("op", ev.Operation),
			zap.String("assignment_id", ev.AssignmentID),
			zap.String("from", ev.FromStatus),
			zap.String("to", ev.ToStatus),
			zap.Uint64("version", ev.Version),
			zap.String("actor", ev.Actor))
		u.publish(ctx, ev)
	}
	return u.view(out), nil
}

// Acknowledge records the one-time acceptance of custody. A repeated call returns the
// current record together with ErrAlreadyAcknowledged, which callers treat as a notice.
func (u *Usecase) Acknowledge(ctx context.Context, assignmentID string, in AcknowledgeInput) (*AssignmentDTO, error) {
	if !in.Method.Valid() {
		return nil, invalid("method", "must be one of digital_signature, physical_signature, email_confirmation, system_acceptance")
	}
	dto, err := u.run(ctx, step{
		op: assignment.OpAcknowledge, id: assignmentID, meta: in.Meta,
		apply: func(_ context.Context, _ uow.Repos, a *assignment.Assignment, now time.Time) error {
			a.Acknowledgment = assignment.Acknowledgment{Acknowledged: true, Method: in.Method, At: &now}
			return nil
		},
	})
	if errors.Is(err, assignment.ErrAlreadyAcknowledged) {
		cur, gerr := u.GetAssignment(ctx, assignmentID)
		if gerr != nil {
			return nil, gerr
		}
		return cur, err
	}
	return dto, err
}

func (u *Usecase) MarkInUse(ctx context.Context, assignmentID string, in Meta) (*AssignmentDTO, error) {
	return u.run(ctx, step{op: assignment.OpMarkInUse, id: assignmentID, meta: in})
}

func (u *Usecase) InitiateReturn(ctx context.Context, assignmentID string, in InitiateReturnInput) (*AssignmentDTO, error) {
	if !in.Reason.Valid() {
		return nil, invalid("return_reason", "is required and must be a known reason")
	}
	if in.DueDate == nil {
		return nil, invalid("return_due_date", "is required")
	}
	due := assignment.Day(*in.DueDate)
	if due.Before(assignment.Day(u.now())) {
		return nil, invalid("return_due_date", "must not be in the past")
	}
	return u.run(ctx, step{
		op: assignment.OpInitiateReturn, id: assignmentID, meta: in.Meta, notes: in.ReasonDetails,
		apply: func(_ context.Context, _ uow.Repos, a *assignment.Assignment, now time.Time) error {
			a.Return.Initiated = true
			a.Return.InitiatedAt = &now
			a.Return.InitiatedBy = in.Actor
			a.Return.Reason = in.Reason
			a.Return.ReasonDetails = in.ReasonDetails
			a.Return.DueDate = &due
			return nil
		},
	})
}

func (u *Usecase) CompleteReturn(ctx context.Context, assignmentID string, in CompleteReturnInput) (*AssignmentDTO, error) {
	switch {
	case in.ActualReturnDate == nil:
		return nil, invalid("actual_return_date", "is required")
	case in.ReturnedBy == "":
		return nil, invalid("returned_by", "is required")
	case !in.Method.Valid():
		return nil, invalid("return_method", "must be one of hand_delivery, courier, mail, pickup")
	case in.ReceivedBy == "":
		return nil, invalid("received_by", "is required")
	case !in.ConditionAtReturn.Valid():
		return nil, invalid("condition_at_return", "must be one of new, excellent, good, fair, poor")
	}
	actual := assignment.Day(*in.ActualReturnDate)
	return u.run(ctx, step{
		op: assignment.OpCompleteReturn, id: assignmentID, meta: in.Meta, notes: in.Notes,
		apply: func(_ context.Context, _ uow.Repos, a *assignment.Assignment, now time.Time) error {
			a.Return.Completed = true
			a.Return.CompletedAt = &now
			a.Return.ActualReturnDate = &actual
			a.Return.ReturnedBy = in.ReturnedBy
			a.Return.Method = in.Method
			a.Return.ReceivedBy = in.ReceivedBy
			a.Return.ConditionAtReturn = in.ConditionAtReturn
			a.Return.HasDamage = in.HasDamage
			a.Return.DataWiped = in.DataWiped
			a.Return.Notes = in.Notes
			return nil
		},
	})
}

func (u *Usecase) RecordMaintenance(ctx context.Context, assignmentID string, in RecordMaintenanceInput) (*AssignmentDTO, error) {
	switch {
	case !in.Type.Valid():
		return nil, invalid("maintenance_type", "must be one of preventive, corrective, inspection, upgrade")
	case in.Date.IsZero():
		return nil, invalid("maintenance_date", "is required")
	case in.PerformedBy == "":
		return nil, invalid("performed_by", "is required")
	case in.Cost.IsNegative():
		return nil, invalid("total_cost", "must not be negative")
	}
	return u.run(ctx, step{
		op: assignment.OpRecordMaintenance, id: assignmentID, meta: in.Meta, notes: in.Notes,
		apply: func(ctx context.Context, r uow.Repos, a *assignment.Assignment, now time.Time) error {
			rec := assignment.MaintenanceRecord{
				MaintenanceID:   uuid.NewString(),
				AssignmentPK:    a.ID,
				Seq:             a.NextMaintenanceSeq(),
				MaintenanceType: in.Type,
				MaintenanceDate: assignment.Day(in.Date),
				PerformedBy:     in.PerformedBy,
				Technician:      in.Technician,
				Description:     in.Description,
				TotalCost:       in.Cost.Round(2),
				Notes:           in.Notes,
				RecordedBy:      in.Actor,
				RecordedAt:      now,
			}
			if in.NextServiceDue != nil {
				d := assignment.Day(*in.NextServiceDue)
				rec.NextServiceDue = &d
			}
			if err := r.Assignments.AppendMaintenance(ctx, &rec); err != nil {
				return err
			}
			a.Maintenance = append(a.Maintenance, rec)
			return nil
		},
	})
}

// ReportIncident appends an unresolved incident. It never changes status, whatever the
// severity; MarkLost and MarkDamaged are separate calls.
func (u *Usecase) ReportIncident(ctx context.Context, assignmentID string, in ReportIncidentInput) (*AssignmentDTO, error) {
	switch {
	case !in.Type.Valid():
		return nil, invalid("incident_type", "is required and must be a known type")
	case in.Date.IsZero():
		return nil, invalid("incident_date", "is required")
	case in.Description == "":
		return nil, invalid("incident_description", "is required")
	case !in.Severity.Valid():
		return nil, invalid("severity", "must be one of minor, moderate, major, critical")
	case in.FinancialLoss.IsNegative():
		return nil, invalid("financial_loss", "must not be negative")
	}
	return u.run(ctx, step{
		op: assignment.OpReportIncident, id: assignmentID, meta: in.Meta, notes: in.Description,
		apply: func(ctx context.Context, r uow.Repos, a *assignment.Assignment, now time.Time) error {
			rec := assignment.IncidentRecord{
				IncidentID:    uuid.NewString(),
				AssignmentPK:  a.ID,
				Seq:           a.NextIncidentSeq(),
				IncidentType:  in.Type,
				IncidentDate:  assignment.Day(in.Date),
				Description:   in.Description,
				Severity:      in.Severity,
				Location:      in.Location,
				DataLoss:      in.DataLoss,
				FinancialLoss: in.FinancialLoss.Round(2),
				ReportedBy:    in.Actor,
				ReportedAt:    now,
			}
			if err := r.Assignments.AppendIncident(ctx, &rec); err != nil {
				return err
			}
			a.Incidents = append(a.Incidents, rec)
			return nil
		},
	})
}

// ResolveIncident is idempotent: resolving an already resolved incident returns the
// record unchanged, without a version bump or an event.
func (u *Usecase) ResolveIncident(ctx context.Context, assignmentID string, in ResolveIncidentInput) (*AssignmentDTO, error) {
	if in.IncidentID == "" {
		return nil, invalid("incident_id", "is required")
	}
	return u.run(ctx, step{
		op: assignment.OpResolveIncident, id: assignmentID, meta: in.Meta, notes: in.Notes,
		pre: func(a *assignment.Assignment) (bool, error) {
			inc := a.FindIncident(in.IncidentID)
			if inc == nil {
				return false, assignment.ErrIncidentNotFound
			}
			return inc.Resolved, nil
		},
		apply: func(ctx context.Context, r uow.Repos, a *assignment.Assignment, now time.Time) error {
			inc := a.FindIncident(in.IncidentID)
			inc.Resolved = true
			inc.ResolvedAt = &now
			inc.ResolutionAction = in.ResolutionAction
			return r.Assignments.ResolveIncident(ctx, inc)
		},
	})
}

func (u *Usecase) StartMaintenance(ctx context.Context, assignmentID string, in StatusChangeInput) (*AssignmentDTO, error) {
	return u.run(ctx, step{op: assignment.OpStartMaintenance, id: assignmentID, meta: in.Meta, notes: in.Notes})
}

func (u *Usecase) ReturnToService(ctx context.Context, assignmentID string, in StatusChangeInput) (*AssignmentDTO, error) {
	return u.run(ctx, step{op: assignment.OpReturnToService, id: assignmentID, meta: in.Meta, notes: in.Notes})
}

func (u *Usecase) MarkLost(ctx context.Context, assignmentID string, in StatusChangeInput) (*AssignmentDTO, error) {
	return u.run(ctx, step{op: assignment.OpMarkLost, id: assignmentID, meta: in.Meta, notes: in.Notes})
}

func (u *Usecase) MarkDamaged(ctx context.Context, assignmentID string, in StatusChangeInput) (*AssignmentDTO, error) {
	return u.run(ctx, step{op: assignment.OpMarkDamaged, id: assignmentID, meta: in.Meta, notes: in.Notes})
}

// Transfer closes the assignment as returned and opens its successor for the new
// holder in the same transaction. Both records carry the link to each other.
func (u *Usecase) Transfer(ctx context.Context, assignmentID string, in TransferInput) (*TransferResult, error) {
	switch {
	case in.NewEmployeeRef == "":
		return nil, invalid("new_employee_ref", "is required")
	case in.TransferDate == nil:
		return nil, invalid("transfer_date", "is required")
	case !in.Condition.Valid():
		return nil, invalid("condition", "must be one of new, excellent, good, fair, poor")
	}
	td := assignment.Day(*in.TransferDate)
	newName := u.employeeName(ctx, CreateInput{EmployeeRef: in.NewEmployeeRef, EmployeeName: in.NewEmployeeName})

	var (
		next   *assignment.Assignment
		nextEv event.Event
	)
	prev, err := u.run(ctx, step{
		op: assignment.OpTransfer, id: assignmentID, meta: in.Meta, notes: in.Notes,
		apply: func(ctx context.Context, r uow.Repos, a *assignment.Assignment, now time.Time) error {
			if in.NewEmployeeRef == a.EmployeeRef {
				return invalid("new_employee_ref", "must differ from the current holder")
			}
			if td.Before(assignment.Day(a.AssignedDate)) {
				return invalid("transfer_date", "must not precede assigned_date")
			}
			ci := CreateInput{
				Actor:                 in.Actor,
				EmployeeRef:           in.NewEmployeeRef,
				EmployeeName:          newName,
				AssetRef:              a.AssetRef,
				AssetName:             a.AssetName,
				AssignmentType:        a.AssignmentType,
				AssignedDate:          td,
				ExpectedReturnDate:    in.ExpectedReturnDate,
				IndefiniteAssignment:  a.IndefiniteAssignment,
				ConditionAtAssignment: in.Condition,
				PurchaseDate:          a.PurchaseDate,
				WarrantyMonths:        a.WarrantyMonths,
			}
			if err := validateCreate(ci); err != nil {
				return err
			}
			next = newAssignment(ci, now)
			next.TransferredFrom = a.AssignmentID
			if err := r.Assignments.Create(ctx, next); err != nil {
				return err
			}
			nextEv = createdEvent(next, in.Actor, "transferred from "+a.AssignmentNumber, now)
			if err := r.Events.Append(ctx, &nextEv); err != nil {
				return err
			}

			if !a.Return.Initiated {
				a.Return.Initiated = true
				a.Return.InitiatedAt = &now
				a.Return.InitiatedBy = in.Actor
				a.Return.DueDate = &td
			}
			a.Return.Reason = assignment.ReasonTransfer
			a.Return.ReasonDetails = in.Reason
			a.Return.Completed = true
			a.Return.CompletedAt = &now
			a.Return.ActualReturnDate = &td
			a.Return.ReturnedBy = a.EmployeeRef
			a.Return.Method = assignment.MethodHandDelivery
			a.Return.ReceivedBy = in.NewEmployeeRef
			a.Return.ConditionAtReturn = in.Condition
			a.Return.Notes = in.Notes
			a.TransferredTo = next.AssignmentID
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("custody transfer",
		zap.String("from_assignment_id", prev.AssignmentID),
		zap.String("to_assignment_id", next.AssignmentID),
		zap.String("employee_ref", next.EmployeeRef),
		zap.String("actor", in.Actor))
	u.publish(ctx, nextEv)
	return &TransferResult{Previous: prev, Current: u.view(next)}, nil
}

// IssueClearance records the post-return sign-off. It is refused while any incident
// on the record is unresolved.
func (u *Usecase) IssueClearance(ctx context.Context, assignmentID string, in StatusChangeInput) (*AssignmentDTO, error) {
	return u.run(ctx, step{
		op: assignment.OpIssueClearance, id: assignmentID, meta: in.Meta, notes: in.Notes,
		apply: func(_ context.Context, _ uow.Repos, a *assignment.Assignment, now time.Time) error {
			a.Clearance = assignment.Clearance{Issued: true, IssuedAt: &now, IssuedBy: in.Actor}
			return nil
		},
	})
}
