package assignment

// Op names a custody operation. Op values are also the event operation names.
type Op string

const (
	OpCreate            Op = "create"
	OpAcknowledge       Op = "acknowledge"
	OpMarkInUse         Op = "mark_in_use"
	OpInitiateReturn    Op = "initiate_return"
	OpCompleteReturn    Op = "complete_return"
	OpRecordMaintenance Op = "record_maintenance"
	OpStartMaintenance  Op = "start_maintenance"
	OpReturnToService   Op = "return_to_service"
	OpReportIncident    Op = "report_incident"
	OpResolveIncident   Op = "resolve_incident"
	OpMarkLost          Op = "mark_lost"
	OpMarkDamaged       Op = "mark_damaged"
	OpTransfer          Op = "transfer"
	OpIssueClearance    Op = "issue_clearance"
)

var (
	active      = []Status{StatusAssigned, StatusInUse}
	nonTerminal = []Status{StatusAssigned, StatusInUse, StatusMaintenance, StatusDamaged}
	anyStatus   = []Status{StatusAssigned, StatusInUse, StatusMaintenance, StatusDamaged, StatusLost, StatusReturned}
)

// rule is one row of the transition table. An empty to keeps the current status.
type rule struct {
	from  []Status
	to    Status
	guard func(a *Assignment) string
}

var transitions = map[Op]rule{
	OpAcknowledge: {from: []Status{StatusAssigned}},
	OpMarkInUse: {
		from: []Status{StatusAssigned},
		to:   StatusInUse,
		guard: func(a *Assignment) string {
			if !a.Acknowledgment.Acknowledged {
				return "acknowledgment required"
			}
			return ""
		},
	},
	OpInitiateReturn: {
		from: active,
		guard: func(a *Assignment) string {
			if a.Return.Initiated {
				return "return already initiated"
			}
			return ""
		},
	},
	OpCompleteReturn: {
		from: active,
		to:   StatusReturned,
		guard: func(a *Assignment) string {
			if !a.Return.Initiated {
				return "return not initiated"
			}
			if a.Return.Completed {
				return "return already completed"
			}
			return ""
		},
	},
	OpRecordMaintenance: {from: []Status{StatusAssigned, StatusInUse, StatusMaintenance, StatusDamaged, StatusLost}},
	OpStartMaintenance:  {from: []Status{StatusInUse}, to: StatusMaintenance},
	OpReturnToService:   {from: []Status{StatusMaintenance, StatusDamaged}, to: StatusInUse},
	OpReportIncident:    {from: nonTerminal},
	OpResolveIncident: {
		from: anyStatus,
		guard: func(a *Assignment) string {
			if !a.HasUnresolvedIncident() {
				return "no unresolved incident"
			}
			return ""
		},
	},
	OpMarkLost:    {from: nonTerminal, to: StatusLost},
	OpMarkDamaged: {from: []Status{StatusAssigned, StatusInUse, StatusMaintenance}, to: StatusDamaged},

	// Transfer closes this record as returned; the successor record is created alongside it.
	OpTransfer: {from: active, to: StatusReturned},
	OpIssueClearance: {
		from: []Status{StatusReturned},
		guard: func(a *Assignment) string {
			if a.Clearance.Issued {
				return "clearance already issued"
			}
			if a.HasUnresolvedIncident() {
				return "unresolved incident"
			}
			return ""
		},
	},
}

// opOrder fixes the order AvailableOps reports in.
var opOrder = []Op{
	OpAcknowledge, OpMarkInUse, OpInitiateReturn, OpCompleteReturn, OpTransfer, OpRecordMaintenance,
	OpStartMaintenance, OpReturnToService, OpReportIncident, OpResolveIncident, OpMarkLost, OpMarkDamaged,
	OpIssueClearance,
}

// Check evaluates op against the current snapshot of a. It returns nil when the
// transition is legal, ErrAlreadyAcknowledged for a repeated acknowledgment, and
// *InvalidTransitionError otherwise.
func Check(op Op, a *Assignment) error {
	if op == OpAcknowledge && a.Acknowledgment.Acknowledged {
		return ErrAlreadyAcknowledged
	}
	r, ok := transitions[op]
	if !ok {
		return &InvalidTransitionError{Op: op, Current: a.Status, Reason: "unknown operation"}
	}
	if !contains(r.from, a.Status) {
		reason := "not allowed from " + string(a.Status)
		if a.Status == StatusReturned {
			reason = "already returned"
		}
		return &InvalidTransitionError{Op: op, Current: a.Status, Reason: reason}
	}
	if r.guard != nil {
		if reason := r.guard(a); reason != "" {
			return &InvalidTransitionError{Op: op, Current: a.Status, Reason: reason}
		}
	}
	return nil
}

// Target is the status after a legal op from current.
func Target(op Op, current Status) Status {
	if r, ok := transitions[op]; ok && r.to != "" {
		return r.to
	}
	return current
}

// AvailableOps lists the operations whose guards pass right now.
func AvailableOps(a *Assignment) []Op {
	out := make([]Op, 0, len(opOrder))
	for _, op := range opOrder {
		if Check(op, a) == nil {
			out = append(out, op)
		}
	}
	return out
}

func contains(list []Status, s Status) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
