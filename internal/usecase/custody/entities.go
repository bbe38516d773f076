package custody

import (
	"time"

	"asset-custody/internal/domain/assignment"

	"github.com/shopspring/decimal"
)

// Meta travels with every command. ExpectedVersion 0 skips the caller-side version check.
type Meta struct {
	Actor           string
	ExpectedVersion uint64
}

type CreateInput struct {
	Actor                 string
	EmployeeRef           string
	EmployeeName          string
	AssetRef              string
	AssetName             string
	AssignmentType        assignment.AssignmentType
	AssignedDate          time.Time
	ExpectedReturnDate    *time.Time
	IndefiniteAssignment  bool
	ConditionAtAssignment assignment.Condition
	PurchaseDate          *time.Time
	WarrantyMonths        int
}

type AcknowledgeInput struct {
	Meta
	Method assignment.AckMethod
}

type InitiateReturnInput struct {
	Meta
	Reason        assignment.ReturnReason
	ReasonDetails string
	DueDate       *time.Time
}

type CompleteReturnInput struct {
	Meta
	ActualReturnDate  *time.Time
	ReturnedBy        string
	Method            assignment.ReturnMethod
	ReceivedBy        string
	ConditionAtReturn assignment.Condition
	HasDamage         bool
	DataWiped         bool
	Notes             string
}

type RecordMaintenanceInput struct {
	Meta
	Type           assignment.MaintenanceType
	Date           time.Time
	PerformedBy    string
	Technician     string
	Description    string
	Cost           decimal.Decimal
	NextServiceDue *time.Time
	Notes          string
}

type ReportIncidentInput struct {
	Meta
	Type          assignment.IncidentType
	Date          time.Time
	Description   string
	Severity      assignment.Severity
	Location      string
	DataLoss      bool
	FinancialLoss decimal.Decimal
}

type ResolveIncidentInput struct {
	Meta
	IncidentID       string
	ResolutionAction string
	Notes            string
}

// StatusChangeInput covers the plain status moves: lost, damaged, start maintenance, return to service.
type StatusChangeInput struct {
	Meta
	Notes string
}

// AssignmentDTO is the stored record plus the fields derived at read time.
type AssignmentDTO struct {
	*assignment.Assignment
	Warranty            assignment.Warranty `json:"warranty"`
	ReturnOverdue       bool                `json:"return_overdue"`
	AvailableOperations []assignment.Op     `json:"available_operations"`
}

// TransferInput hands the asset to another employee: the current record is closed as
// returned and a successor record opens for NewEmployeeRef on TransferDate.
type TransferInput struct {
	Meta
	NewEmployeeRef     string
	NewEmployeeName    string
	TransferDate       *time.Time
	ExpectedReturnDate *time.Time
	Condition          assignment.Condition
	Reason             string
	Notes              string
}

type TransferResult struct {
	Previous *AssignmentDTO `json:"previous"`
	Current  *AssignmentDTO `json:"current"`
}

// MaintenanceDue is an open assignment whose next scheduled service falls inside the
// requested window. DaysUntilDue is negative once the service date has passed.
type MaintenanceDue struct {
	*AssignmentDTO
	NextServiceDue time.Time `json:"next_service_due_date"`
	DaysUntilDue   int       `json:"days_until_due"`
}

type WarrantyExpiring struct {
	*AssignmentDTO
	WarrantyEndDate time.Time `json:"warranty_end_date"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
}

// Stats summarises the register. Everything except Total and ByStatus counts open
// (non-terminal) assignments only.
type Stats struct {
	Total          int64                       `json:"total_assignments"`
	ByStatus       map[assignment.Status]int64 `json:"by_status"`
	Active         int64                       `json:"active_assignments"`
	Unacknowledged int                         `json:"unacknowledged"`
	PendingReturns int                         `json:"pending_returns"`
	OverdueReturns int                         `json:"overdue_returns"`
	MaintenanceDue int                         `json:"maintenance_due"`
	OpenIncidents  int                         `json:"open_incidents"`
}
