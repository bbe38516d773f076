package http

import (
	"errors"
	"net/http"
	"strings"

	"asset-custody/internal/adapter/middleware"
	"asset-custody/internal/domain/assignment"
	"asset-custody/internal/usecase/custody"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CustodyHandler struct {
	uc  *custody.Usecase
	log *zap.Logger
}

func NewCustodyHandler(uc *custody.Usecase, log *zap.Logger) *CustodyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustodyHandler{uc: uc, log: log}
}

// Register mounts every custody route on g; mw wraps the mutating ones only.
func (h *CustodyHandler) Register(g *echo.Group, mw ...echo.MiddlewareFunc) {
	g.GET("/assignments/overdue", h.ListOverdue)
	g.GET("/assignments/maintenance-due", h.ListMaintenanceDue)
	g.GET("/assignments/warranty-expiring", h.ListWarrantyExpiring)
	g.GET("/assignments/stats", h.Stats)
	g.GET("/assignments/:assignment_id", h.GetAssignment)
	g.GET("/assignments/:assignment_id/events", h.ListEvents)
	g.GET("/employees/:employee_ref/assignments", h.ListByEmployee)

	g.POST("/assignments", h.CreateAssignment, mw...)
	g.POST("/assignments/:assignment_id/acknowledge", h.Acknowledge, mw...)
	g.POST("/assignments/:assignment_id/in-use", h.MarkInUse, mw...)
	g.POST("/assignments/:assignment_id/return/initiate", h.InitiateReturn, mw...)
	g.POST("/assignments/:assignment_id/return/complete", h.CompleteReturn, mw...)
	g.POST("/assignments/:assignment_id/maintenance", h.RecordMaintenance, mw...)
	g.POST("/assignments/:assignment_id/maintenance/start", h.StartMaintenance, mw...)
	g.POST("/assignments/:assignment_id/return-to-service", h.ReturnToService, mw...)
	g.POST("/assignments/:assignment_id/incidents", h.ReportIncident, mw...)
	g.POST("/assignments/:assignment_id/incidents/:incident_id/resolve", h.ResolveIncident, mw...)
	g.POST("/assignments/:assignment_id/lost", h.MarkLost, mw...)
	g.POST("/assignments/:assignment_id/damaged", h.MarkDamaged, mw...)
	g.POST("/assignments/:assignment_id/transfer", h.Transfer, mw...)
	g.POST("/assignments/:assignment_id/clearance", h.IssueClearance, mw...)
}

// ---- request payloads ----

// AssignmentPath and Versioned are embedded in the command payloads and must stay
// exported: echo's binder skips fields it cannot set.
type AssignmentPath struct {
	AssignmentID string `param:"assignment_id" json:"-" validate:"required,hex32"`
}

type Versioned struct {
	ExpectedVersion uint64 `json:"expected_version"`
}

type createAssignmentReq struct {
	EmployeeRef           string `json:"employee_ref"            validate:"required,max=64"`
	EmployeeName          string `json:"employee_name"           validate:"max=200"`
	AssetRef              string `json:"asset_ref"               validate:"required,max=64"`
	AssetName             string `json:"asset_name"              validate:"max=200"`
	AssignmentType        string `json:"assignment_type"         validate:"omitempty,oneof=permanent temporary project_based pool"`
	AssignedDate          string `json:"assigned_date"           validate:"required,isodate"`
	ExpectedReturnDate    string `json:"expected_return_date"    validate:"omitempty,isodate"`
	IndefiniteAssignment  bool   `json:"indefinite_assignment"`
	ConditionAtAssignment string `json:"condition_at_assignment" validate:"required,oneof=new excellent good fair poor"`
	PurchaseDate          string `json:"purchase_date"           validate:"omitempty,isodate"`
	WarrantyMonths        int    `json:"warranty_months"         validate:"gte=0,lte=600"`
}

type acknowledgeReq struct {
	AssignmentPath
	Versioned
	Method string `json:"method" validate:"required,oneof=digital_signature physical_signature email_confirmation system_acceptance"`
}

type initiateReturnReq struct {
	AssignmentPath
	Versioned
	Reason        string `json:"return_reason"         validate:"required,oneof=resignation termination upgrade end_of_assignment project_end replacement no_longer_needed defective lease_end"`
	ReasonDetails string `json:"return_reason_details"`
	DueDate       string `json:"return_due_date"       validate:"required,isodate"`
}

type completeReturnReq struct {
	AssignmentPath
	Versioned
	ActualReturnDate  string `json:"actual_return_date"  validate:"required,isodate"`
	ReturnedBy        string `json:"returned_by"         validate:"required,max=200"`
	Method            string `json:"return_method"       validate:"required,oneof=hand_delivery courier mail pickup"`
	ReceivedBy        string `json:"received_by"         validate:"required,max=64"`
	ConditionAtReturn string `json:"condition_at_return" validate:"required,oneof=new excellent good fair poor"`
	HasDamage         bool   `json:"has_damage"`
	DataWiped         bool   `json:"data_wiped"`
	Notes             string `json:"notes"`
}

type recordMaintenanceReq struct {
	AssignmentPath
	Versioned
	Type           string          `json:"maintenance_type" validate:"required,oneof=preventive corrective inspection upgrade"`
	Date           string          `json:"maintenance_date" validate:"required,isodate"`
	PerformedBy    string          `json:"performed_by"     validate:"required,max=200"`
	Technician     string          `json:"technician"       validate:"max=200"`
	Description    string          `json:"description"`
	TotalCost      decimal.Decimal `json:"total_cost"       validate:"money"`
	NextServiceDue string          `json:"next_service_due" validate:"omitempty,isodate"`
	Notes          string          `json:"notes"`
}

type reportIncidentReq struct {
	AssignmentPath
	Versioned
	Type          string          `json:"incident_type"        validate:"required,oneof=loss theft damage malfunction data_breach unauthorized_access misuse accident"`
	Date          string          `json:"incident_date"        validate:"required,isodate"`
	Description   string          `json:"incident_description" validate:"required"`
	Severity      string          `json:"severity"             validate:"required,oneof=minor moderate major critical"`
	Location      string          `json:"location"             validate:"max=200"`
	DataLoss      bool            `json:"data_loss"`
	FinancialLoss decimal.Decimal `json:"financial_loss"       validate:"money"`
}

type resolveIncidentReq struct {
	AssignmentPath
	Versioned
	IncidentID       string `param:"incident_id" json:"-" validate:"required,uuid"`
	ResolutionAction string `json:"resolution_action" validate:"required"`
	Notes            string `json:"notes"`
}

type statusChangeReq struct {
	AssignmentPath
	Versioned
	Notes string `json:"notes"`
}

type transferReq struct {
	AssignmentPath
	Versioned
	NewEmployeeRef     string `json:"new_employee_ref"     validate:"required,max=64"`
	NewEmployeeName    string `json:"new_employee_name"    validate:"max=200"`
	TransferDate       string `json:"transfer_date"        validate:"required,isodate"`
	ExpectedReturnDate string `json:"expected_return_date" validate:"omitempty,isodate"`
	Condition          string `json:"condition"            validate:"required,oneof=new excellent good fair poor"`
	Reason             string `json:"transfer_reason"`
	Notes              string `json:"notes"`
}

// ackResponse carries the unchanged record when acknowledgment was already given.
type ackResponse struct {
	*custody.AssignmentDTO
	Notice string `json:"notice"`
}

// ---- helpers ----

// bindValid binds path + body into req and validates it; ok=false means a response was written.
func bindValid(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

func meta(c echo.Context, v Versioned) custody.Meta {
	actor := middleware.Actor(c)
	if actor == "" {
		actor = strings.TrimSpace(c.Request().Header.Get(middleware.HeaderActorID))
	}
	return custody.Meta{Actor: actor, ExpectedVersion: v.ExpectedVersion}
}

func (h *CustodyHandler) respond(c echo.Context, code int, dto any, err error) error {
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(code, dto)
}

// ---- queries ----

func (h *CustodyHandler) GetAssignment(c echo.Context) error {
	var req AssignmentPath
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.GetAssignment(c.Request().Context(), req.AssignmentID)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *CustodyHandler) ListEvents(c echo.Context) error {
	var req AssignmentPath
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	events, err := h.uc.ListEvents(c.Request().Context(), req.AssignmentID)
	return h.respond(c, http.StatusOK, map[string]any{"events": events}, err)
}

func (h *CustodyHandler) ListByEmployee(c echo.Context) error {
	ref := c.Param("employee_ref")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing employee_ref path param"})
	}
	list, err := h.uc.ListByEmployee(c.Request().Context(), ref)
	return h.respond(c, http.StatusOK, map[string]any{"assignments": list}, err)
}

func (h *CustodyHandler) ListOverdue(c echo.Context) error {
	list, err := h.uc.ListOverdueReturns(c.Request().Context())
	return h.respond(c, http.StatusOK, map[string]any{"assignments": list}, err)
}

// windowDays reads ?within_days, defaulting to the usecase's window.
func windowDays(c echo.Context) (int, error) {
	days := custody.DefaultWindowDays
	err := echo.QueryParamsBinder(c).Int("within_days", &days).BindError()
	return days, err
}

func (h *CustodyHandler) ListMaintenanceDue(c echo.Context) error {
	days, err := windowDays(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "within_days must be an integer"})
	}
	list, err := h.uc.ListMaintenanceDue(c.Request().Context(), days)
	return h.respond(c, http.StatusOK, map[string]any{"assignments": list}, err)
}

func (h *CustodyHandler) ListWarrantyExpiring(c echo.Context) error {
	days, err := windowDays(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "within_days must be an integer"})
	}
	list, err := h.uc.ListWarrantyExpiring(c.Request().Context(), days)
	return h.respond(c, http.StatusOK, map[string]any{"assignments": list}, err)
}

func (h *CustodyHandler) Stats(c echo.Context) error {
	st, err := h.uc.Stats(c.Request().Context())
	return h.respond(c, http.StatusOK, st, err)
}

// ---- commands ----

func (h *CustodyHandler) CreateAssignment(c echo.Context) error {
	var req createAssignmentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := custody.CreateInput{
		Actor:                 meta(c, Versioned{}).Actor,
		EmployeeRef:           req.EmployeeRef,
		EmployeeName:          req.EmployeeName,
		AssetRef:              req.AssetRef,
		AssetName:             req.AssetName,
		AssignmentType:        assignment.AssignmentType(req.AssignmentType),
		AssignedDate:          *parseDate(req.AssignedDate),
		ExpectedReturnDate:    parseDate(req.ExpectedReturnDate),
		IndefiniteAssignment:  req.IndefiniteAssignment,
		ConditionAtAssignment: assignment.Condition(req.ConditionAtAssignment),
		PurchaseDate:          parseDate(req.PurchaseDate),
		WarrantyMonths:        req.WarrantyMonths,
	}
	dto, err := h.uc.Create(c.Request().Context(), in)
	return h.respond(c, http.StatusCreated, dto, err)
}

func (h *CustodyHandler) Acknowledge(c echo.Context) error {
	var req acknowledgeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Acknowledge(c.Request().Context(), req.AssignmentID, custody.AcknowledgeInput{
		Meta:   meta(c, req.Versioned),
		Method: assignment.AckMethod(req.Method),
	})
	if errors.Is(err, assignment.ErrAlreadyAcknowledged) && dto != nil {
		return c.JSON(http.StatusOK, ackResponse{AssignmentDTO: dto, Notice: "already acknowledged"})
	}
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *CustodyHandler) MarkInUse(c echo.Context) error {
	var req statusChangeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.MarkInUse(c.Request().Context(), req.AssignmentID, meta(c, req.Versioned))
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *CustodyHandler) InitiateReturn(c echo.Context) error {
	var req initiateReturnReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.InitiateReturn(c.Request().Context(), req.AssignmentID, custody.InitiateReturnInput{
		Meta:          meta(c, req.Versioned),
		Reason:        assignment.ReturnReason(req.Reason),
		ReasonDetails: req.ReasonDetails,
		DueDate:       parseDate(req.DueDate),
	})
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *CustodyHandler) CompleteReturn(c echo.Context) error {
	var req completeReturnReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CompleteReturn(c.Request().Context(), req.AssignmentID, custody.CompleteReturnInput{
		Meta:              meta(c, req.Versioned),
		ActualReturnDate:  parseDate(req.ActualReturnDate),
		ReturnedBy:        req.ReturnedBy,
		Method:            assignment.ReturnMethod(req.Method),
		ReceivedBy:        req.ReceivedBy,
		ConditionAtReturn: assignment.Condition(req.ConditionAtReturn),
		HasDamage:         req.HasDamage,
		DataWiped:         req.DataWiped,
		Notes:             req.Notes,
	})
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *CustodyHandler) RecordMaintenance(c echo.Context) error {
	var req recordMaintenanceReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.RecordMaintenance(c.Request().Context(), req.AssignmentID, custody.RecordMaintenanceInput{
		Meta:           meta(c, req.Versioned),
		Type:           assignment.MaintenanceType(req.Type),
		Date:           *parseDate(req.Date),
		PerformedBy:    req.PerformedBy,
		Technician:     req.Technician,
		Description:    req.Description,
		Cost:           req.TotalCost,
		NextServiceDue: parseDate(req.NextServiceDue),
		Notes:          req.Notes,
	})
	return h.respond(c, http.StatusCreated, dto, err)
}

func (h *CustodyHandler) ReportIncident(c echo.Context) error {
	var req reportIncidentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ReportIncident(c.Request().Context(), req.AssignmentID, custody.ReportIncidentInput{
		Meta:          meta(c, req.Versioned),
		Type:          assignment.IncidentType(req.Type),
		Date:          *parseDate(req.Date),
		Description:   req.Description,
		Severity:      assignment.Severity(req.Severity),
		Location:      req.Location,
		DataLoss:      req.DataLoss,
		FinancialLoss: req.FinancialLoss,
	})
	return h.respond(c, http.StatusCreated, dto, err)
}

func (h *CustodyHandler) ResolveIncident(c echo.Context) error {
	var req resolveIncidentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ResolveIncident(c.Request().Context(), req.AssignmentID, custody.ResolveIncidentInput{
		Meta:             meta(c, req.Versioned),
		IncidentID:       req.IncidentID,
		ResolutionAction: req.ResolutionAction,
		Notes:            req.Notes,
	})
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *CustodyHandler) statusChange(c echo.Context, op assignment.Op) error {
	var req statusChangeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	in := custody.StatusChangeInput{Meta: meta(c, req.Versioned), Notes: req.Notes}

	var (
		dto *custody.AssignmentDTO
		err error
	)
	switch op {
	case assignment.OpStartMaintenance:
		dto, err = h.uc.StartMaintenance(ctx, req.AssignmentID, in)
	case assignment.OpReturnToService:
		dto, err = h.uc.ReturnToService(ctx, req.AssignmentID, in)
	case assignment.OpMarkLost:
		dto, err = h.uc.MarkLost(ctx, req.AssignmentID, in)
	case assignment.OpMarkDamaged:
		dto, err = h.uc.MarkDamaged(ctx, req.AssignmentID, in)
	case assignment.OpIssueClearance:
		dto, err = h.uc.IssueClearance(ctx, req.AssignmentID, in)
	}
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *CustodyHandler) StartMaintenance(c echo.Context) error {
	return h.statusChange(c, assignment.OpStartMaintenance)
}

func (h *CustodyHandler) ReturnToService(c echo.Context) error {
	return h.statusChange(c, assignment.OpReturnToService)
}

func (h *CustodyHandler) MarkLost(c echo.Context) error {
	return h.statusChange(c, assignment.OpMarkLost)
}

func (h *CustodyHandler) MarkDamaged(c echo.Context) error {
	return h.statusChange(c, assignment.OpMarkDamaged)
}

func (h *CustodyHandler) IssueClearance(c echo.Context) error {
	return h.statusChange(c, assignment.OpIssueClearance)
}

func (h *CustodyHandler) Transfer(c echo.Context) error {
	var req transferReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.Transfer(c.Request().Context(), req.AssignmentID, custody.TransferInput{
		Meta:               meta(c, req.Versioned),
		NewEmployeeRef:     req.NewEmployeeRef,
		NewEmployeeName:    req.NewEmployeeName,
		TransferDate:       parseDate(req.TransferDate),
		ExpectedReturnDate: parseDate(req.ExpectedReturnDate),
		Condition:          assignment.Condition(req.Condition),
		Reason:             req.Reason,
		Notes:              req.Notes,
	})
	return h.respond(c, http.StatusCreated, res, err)
}
