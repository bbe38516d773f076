package assignment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAssigned    Status = "assigned"
	StatusInUse       Status = "in_use"
	StatusMaintenance Status = "maintenance"
	StatusDamaged     Status = "damaged"
	StatusLost        Status = "lost"
	StatusReturned    Status = "returned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAssigned, StatusInUse, StatusMaintenance, StatusDamaged, StatusLost, StatusReturned:
		return true
	}
	return false
}

// Terminal statuses have no outbound transitions.
func (s Status) Terminal() bool { return s == StatusReturned || s == StatusLost }

type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type AssignmentType string

const (
	TypePermanent    AssignmentType = "permanent"
	TypeTemporary    AssignmentType = "temporary"
	TypeProjectBased AssignmentType = "project_based"
	TypePool         AssignmentType = "pool"
)

func (t AssignmentType) Valid() bool {
	switch t {
	case TypePermanent, TypeTemporary, TypeProjectBased, TypePool:
		return true
	}
	return false
}

type AckMethod string

const (
	AckDigitalSignature  AckMethod = "digital_signature"
	AckPhysicalSignature AckMethod = "physical_signature"
	AckEmailConfirmation AckMethod = "email_confirmation"
	AckSystemAcceptance  AckMethod = "system_acceptance"
)

func (m AckMethod) Valid() bool {
	switch m {
	case AckDigitalSignature, AckPhysicalSignature, AckEmailConfirmation, AckSystemAcceptance:
		return true
	}
	return false
}

type ReturnReason string

const (
	ReasonResignation     ReturnReason = "resignation"
	ReasonTermination     ReturnReason = "termination"
	ReasonUpgrade         ReturnReason = "upgrade"
	ReasonEndOfAssignment ReturnReason = "end_of_assignment"
	ReasonProjectEnd      ReturnReason = "project_end"
	ReasonReplacement     ReturnReason = "replacement"
	ReasonNoLongerNeeded  ReturnReason = "no_longer_needed"
	ReasonDefective       ReturnReason = "defective"
	ReasonLeaseEnd        ReturnReason = "lease_end"

	// ReasonTransfer is recorded by Transfer only; it is not accepted by InitiateReturn.
	ReasonTransfer ReturnReason = "transfer"
)

func (r ReturnReason) Valid() bool {
	switch r {
	case ReasonResignation, ReasonTermination, ReasonUpgrade, ReasonEndOfAssignment, ReasonProjectEnd,
		ReasonReplacement, ReasonNoLongerNeeded, ReasonDefective, ReasonLeaseEnd:
		return true
	}
	return false
}

type ReturnMethod string

const (
	MethodHandDelivery ReturnMethod = "hand_delivery"
	MethodCourier      ReturnMethod = "courier"
	MethodMail         ReturnMethod = "mail"
	MethodPickup       ReturnMethod = "pickup"
)

func (m ReturnMethod) Valid() bool {
	switch m {
	case MethodHandDelivery, MethodCourier, MethodMail, MethodPickup:
		return true
	}
	return false
}

type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenanceInspection MaintenanceType = "inspection"
	MaintenanceUpgrade    MaintenanceType = "upgrade"
)

func (t MaintenanceType) Valid() bool {
	switch t {
	case MaintenancePreventive, MaintenanceCorrective, MaintenanceInspection, MaintenanceUpgrade:
		return true
	}
	return false
}

type IncidentType string

const (
	IncidentLoss               IncidentType = "loss"
	IncidentTheft              IncidentType = "theft"
	IncidentDamage             IncidentType = "damage"
	IncidentMalfunction        IncidentType = "malfunction"
	IncidentDataBreach         IncidentType = "data_breach"
	IncidentUnauthorizedAccess IncidentType = "unauthorized_access"
	IncidentMisuse             IncidentType = "misuse"
	IncidentAccident           IncidentType = "accident"
)

func (t IncidentType) Valid() bool {
	switch t {
	case IncidentLoss, IncidentTheft, IncidentDamage, IncidentMalfunction, IncidentDataBreach,
		IncidentUnauthorizedAccess, IncidentMisuse, IncidentAccident:
		return true
	}
	return false
}

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeverityMajor, SeverityCritical:
		return true
	}
	return false
}

// Acknowledgment is set at most once; At is the server time of acceptance.
type Acknowledgment struct {
	Acknowledged bool       `gorm:"column:acknowledged;not null;default:false" json:"acknowledged"`
	Method       AckMethod  `gorm:"column:method;size:32" json:"method,omitempty"`
	At           *time.Time `gorm:"column:at" json:"timestamp,omitempty"`
}

type ReturnProcess struct {
	Initiated         bool         `gorm:"column:initiated;not null;default:false" json:"return_initiated"`
	InitiatedAt       *time.Time   `gorm:"column:initiated_at" json:"return_initiated_at,omitempty"`
	InitiatedBy       string       `gorm:"column:initiated_by;size:64" json:"return_initiated_by,omitempty"`
	Reason            ReturnReason `gorm:"column:reason;size:32" json:"return_reason,omitempty"`
	ReasonDetails     string       `gorm:"column:reason_details;type:text" json:"return_reason_details,omitempty"`
	DueDate           *time.Time   `gorm:"column:due_date" json:"return_due_date,omitempty"`
	Completed         bool         `gorm:"column:completed;not null;default:false" json:"return_completed"`
	CompletedAt       *time.Time   `gorm:"column:completed_at" json:"return_completed_at,omitempty"`
	ActualReturnDate  *time.Time   `gorm:"column:actual_date" json:"actual_return_date,omitempty"`
	ReturnedBy        string       `gorm:"column:returned_by;size:200" json:"returned_by,omitempty"`
	Method            ReturnMethod `gorm:"column:method;size:32" json:"return_method,omitempty"`
	ReceivedBy        string       `gorm:"column:received_by;size:64" json:"received_by,omitempty"`
	ConditionAtReturn Condition    `gorm:"column:condition;size:16" json:"condition_at_return,omitempty"`
	HasDamage         bool         `gorm:"column:has_damage;not null;default:false" json:"has_damage"`
	DataWiped         bool         `gorm:"column:data_wiped;not null;default:false" json:"data_wiped"`
	Notes             string       `gorm:"column:notes;type:text" json:"notes,omitempty"`
}

// Clearance is the post-return sign-off that the employee holds no obligation for the asset.
type Clearance struct {
	Issued   bool       `gorm:"column:issued;not null;default:false" json:"issued"`
	IssuedAt *time.Time `gorm:"column:issued_at" json:"clearance_date,omitempty"`
	IssuedBy string     `gorm:"column:issued_by;size:64" json:"clearance_by,omitempty"`
}

// Table: asset_assignments. One row per employee-asset custody relationship; rows are never deleted.
type Assignment struct {
	ID               uint64 `gorm:"primaryKey;column:id" json:"-"`
	AssignmentID     string `gorm:"size:32;not null;uniqueIndex:ux_assignments_assignment_id" json:"assignment_id"`
	AssignmentNumber string `gorm:"size:32;not null;uniqueIndex:ux_assignments_number" json:"assignment_number"`

	// References into HR/asset master data. Names are display cache only.
	EmployeeRef  string `gorm:"size:64;not null;index:idx_assignments_employee" json:"employee_ref"`
	EmployeeName string `gorm:"size:200" json:"employee_name,omitempty"`
	AssetRef     string `gorm:"size:64;not null;index:idx_assignments_asset" json:"asset_ref"`
	AssetName    string `gorm:"size:200" json:"asset_name,omitempty"`

	AssignmentType        AssignmentType `gorm:"size:16;not null;default:permanent" json:"assignment_type"`
	Status                Status         `gorm:"size:16;not null;default:assigned;index:idx_assignments_status" json:"status"`
	StatusUpdatedAt       time.Time      `json:"status_updated_at"`
	AssignedDate          time.Time      `gorm:"not null" json:"assigned_date"`
	ExpectedReturnDate    *time.Time     `json:"expected_return_date,omitempty"`
	IndefiniteAssignment  bool           `gorm:"not null;default:false" json:"indefinite_assignment"`
	ConditionAtAssignment Condition      `gorm:"size:16;not null" json:"condition_at_assignment"`

	// Snapshot of the asset's purchase terms, input to the warranty calculation.
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	WarrantyMonths int        `gorm:"not null;default:0" json:"warranty_months"`

	Acknowledgment Acknowledgment `gorm:"embedded;embeddedPrefix:ack_" json:"acknowledgment"`
	Return         ReturnProcess  `gorm:"embedded;embeddedPrefix:return_" json:"return_process"`
	Clearance      Clearance      `gorm:"embedded;embeddedPrefix:clearance_" json:"clearance"`

	// Custody chain across transfers: assignment ids of the previous and next holder.
	TransferredFrom string `gorm:"size:32" json:"transferred_from,omitempty"`
	TransferredTo   string `gorm:"size:32" json:"transferred_to,omitempty"`

	Maintenance []MaintenanceRecord `gorm:"foreignKey:AssignmentPK;references:ID" json:"maintenance_history"`
	Incidents   []IncidentRecord    `gorm:"foreignKey:AssignmentPK;references:ID" json:"incidents"`

	Version   uint64    `gorm:"not null;default:1" json:"version"`
	CreatedBy string    `gorm:"size:64" json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Assignment) TableName() string { return "asset_assignments" }

// Table: assignment_maintenance. Append-only; Seq is assigned by the server per assignment.
type MaintenanceRecord struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	MaintenanceID   string          `gorm:"size:36;not null;uniqueIndex:ux_maintenance_public_id" json:"maintenance_id"`
	AssignmentPK    uint64          `gorm:"column:assignment_pk;not null;uniqueIndex:ux_maintenance_seq,priority:1" json:"-"`
	Seq             uint64          `gorm:"not null;uniqueIndex:ux_maintenance_seq,priority:2" json:"seq"`
	MaintenanceType MaintenanceType `gorm:"size:16;not null" json:"maintenance_type"`
	MaintenanceDate time.Time       `gorm:"not null" json:"maintenance_date"`
	PerformedBy     string          `gorm:"size:200;not null" json:"performed_by"`
	Technician      string          `gorm:"size:200" json:"technician,omitempty"`
	Description     string          `gorm:"type:text" json:"description"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_cost"`
	NextServiceDue  *time.Time      `json:"next_service_due,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy      string          `gorm:"size:64" json:"recorded_by,omitempty"`
	RecordedAt      time.Time       `gorm:"not null" json:"recorded_at"`
}

func (MaintenanceRecord) TableName() string { return "assignment_maintenance" }

// Table: assignment_incidents. Append-only except for the resolution columns.
type IncidentRecord struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	IncidentID       string          `gorm:"size:36;not null;uniqueIndex:ux_incidents_public_id" json:"incident_id"`
	AssignmentPK     uint64          `gorm:"column:assignment_pk;not null;uniqueIndex:ux_incidents_seq,priority:1" json:"-"`
	Seq              uint64          `gorm:"not null;uniqueIndex:ux_incidents_seq,priority:2" json:"seq"`
	IncidentType     IncidentType    `gorm:"size:32;not null" json:"incident_type"`
	IncidentDate     time.Time       `gorm:"not null" json:"incident_date"`
	Description      string          `gorm:"type:text" json:"incident_description"`
	Severity         Severity        `gorm:"size:16;not null" json:"severity"`
	Location         string          `gorm:"size:200" json:"location,omitempty"`
	DataLoss         bool            `gorm:"not null;default:false" json:"data_loss"`
	FinancialLoss    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"financial_loss"`
	Resolved         bool            `gorm:"not null;default:false" json:"resolved"`
	ResolvedAt       *time.Time      `json:"resolution_date,omitempty"`
	ResolutionAction string          `gorm:"type:text" json:"resolution_action,omitempty"`
	ReportedBy       string          `gorm:"size:64" json:"reported_by,omitempty"`
	ReportedAt       time.Time       `gorm:"not null" json:"reported_at"`
}

func (IncidentRecord) TableName() string { return "assignment_incidents" }

// FindIncident returns the incident with the given public id, or nil.
func (a *Assignment) FindIncident(incidentID string) *IncidentRecord {
	for i := range a.Incidents {
		if a.Incidents[i].IncidentID == incidentID {
			return &a.Incidents[i]
		}
	}
	return nil
}

// NextMaintenanceSeq hands out the per-assignment sequence for a new maintenance entry.
func (a *Assignment) NextMaintenanceSeq() uint64 {
	var max uint64
	for _, m := range a.Maintenance {
		if m.Seq > max {
			max = m.Seq
		}
	}
	return max + 1
}

func (a *Assignment) NextIncidentSeq() uint64 {
	var max uint64
	for _, in := range a.Incidents {
		if in.Seq > max {
			max = in.Seq
		}
	}
	return max + 1
}

func (a *Assignment) HasUnresolvedIncident() bool {
	for _, in := range a.Incidents {
		if !in.Resolved {
			return true
		}
	}
	return false
}

// ReturnOverdue reports whether an open assignment is past its return date as of today.
// An initiated return is measured against its due date; otherwise the expected return
// date applies to assigned and in_use records that are not indefinite.
func (a *Assignment) ReturnOverdue(today time.Time) bool {
	if a.Status.Terminal() || a.Return.Completed {
		return false
	}
	t := Day(today)
	if a.Return.Initiated {
		return a.Return.DueDate != nil && Day(*a.Return.DueDate).Before(t)
	}
	if a.IndefiniteAssignment || a.ExpectedReturnDate == nil {
		return false
	}
	return (a.Status == StatusAssigned || a.Status == StatusInUse) && Day(*a.ExpectedReturnDate).Before(t)
}

// NextServiceDue is the due date carried by the most recent maintenance entry that set one.
func (a *Assignment) NextServiceDue() *time.Time {
	var (
		due    *time.Time
		latest *MaintenanceRecord
	)
	for i := range a.Maintenance {
		m := &a.Maintenance[i]
		if m.NextServiceDue == nil {
			continue
		}
		if latest == nil || m.MaintenanceDate.After(latest.MaintenanceDate) ||
			(m.MaintenanceDate.Equal(latest.MaintenanceDate) && m.Seq > latest.Seq) {
			latest, due = m, m.NextServiceDue
		}
	}
	return due
}
