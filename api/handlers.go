/*
handlers.go - HTTP API handlers for the leave policy engine

PURPOSE:
  Exposes the evaluation engine and balance ledger via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                         List all employees
    POST   /api/employees                         Create employee
    GET    /api/employees/{id}                    Get employee details
    GET    /api/employees/{id}/balance            Balance (query: type)
    GET    /api/employees/{id}/history            Request history
    POST   /api/employees/{id}/requests/evaluate  Evaluate (advisory)
    POST   /api/employees/{id}/requests           Commit a reviewed request

  History:
    GET    /api/history                           Global history (query: limit)

  Blackouts:
    GET    /api/blackouts                         List blackout periods
    POST   /api/blackouts                         Create
    POST   /api/blackouts/defaults                Seed the standing windows
    DELETE /api/blackouts/{id}                    Delete

  Emails:
    POST   /api/emails/draft                      Draft request/approval email

  Admin:
    POST   /api/admin/seed                        Load sample data
    POST   /api/admin/reset                       Wipe all tables (dev only)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, ledger)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Employee not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - seed.go: Sample data loader
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/draft"
	"github.com/warp/leave-engine/engine"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence surface the API needs beyond the ledger:
// blackout management, seeding helpers, and reset.
type Store interface {
	ledger.Store

	ListBlackouts(ctx context.Context) ([]leave.BlackoutPeriod, error)
	SaveBlackout(ctx context.Context, b leave.BlackoutPeriod) error
	DeleteBlackout(ctx context.Context, id string) error
	SetBalance(ctx context.Context, employeeID string, t leave.Type, accrued, used leave.Hours) error
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Store
	Ledger  *ledger.Ledger
	Engine  *engine.Engine
	Drafter draft.Drafter
	Log     *zap.Logger
}

// NewHandler creates a handler. A nil drafter falls back to templates;
// a nil logger disables logging.
func NewHandler(store Store, ldg *ledger.Ledger, eng *engine.Engine, drafter draft.Drafter, log *zap.Logger) *Handler {
	if drafter == nil {
		drafter = draft.TemplateDrafter{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Store: store, Ledger: ldg, Engine: eng, Drafter: drafter, Log: log}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates a new employee with full initial balances.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	if req.AnnualQuotaDays <= 0 {
		writeError(w, http.StatusBadRequest, "annual_quota_days must be positive", nil)
		return
	}

	startDate := time.Now().UTC()
	if req.StartDate != "" {
		var err error
		startDate, err = parseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD", err)
			return
		}
	}

	emp := leave.Employee{
		ID:              req.ID,
		Name:            req.Name,
		Email:           req.Email,
		Department:      req.Department,
		Position:        req.Position,
		ManagerID:       req.ManagerID,
		StartDate:       startDate,
		AnnualQuotaDays: req.AnnualQuotaDays,
		IsManager:       req.IsManager,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// GetBalance returns the employee's balance for one leave type
// (?type=vacation|sick, default vacation).
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t := leave.Type(r.URL.Query().Get("type"))
	if t == "" {
		t = leave.TypeVacation
	}
	if !t.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid leave type", leave.ErrInvalidLeaveType)
		return
	}

	bal, err := h.Ledger.GetBalance(r.Context(), id, t)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(bal))
}

// GetHistory returns the employee's committed requests, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	requests, err := h.Ledger.History(r.Context(), id, parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get history", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// GlobalHistory returns recent requests across all employees.
func (h *Handler) GlobalHistory(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Ledger.History(r.Context(), "", parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get history", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// =============================================================================
// EVALUATION & COMMIT
// =============================================================================

// EvaluateRequest runs the policy pipeline and returns an advisory decision.
// Manager requests are auto-committed by the engine.
func (h *Handler) EvaluateRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req EvaluateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := toEvaluateInput(id, req.LeaveType, req.StartDate, req.EndDate, req.RequestDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	decision, err := h.Engine.Evaluate(r.Context(), in)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDecisionDTO(decision))
}

// CommitRequest records a reviewed request as approved or denied.
func (h *Handler) CommitRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CommitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := toEvaluateInput(id, req.LeaveType, req.StartDate, req.EndDate, req.RequestDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	recorded, err := h.Engine.Commit(r.Context(), engine.CommitRequest{
		EmployeeID:  in.EmployeeID,
		Type:        in.Type,
		Start:       in.Start,
		End:         in.End,
		RequestDate: in.RequestDate,
		Approve:     req.Approve,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(recorded))
}

func toEvaluateInput(id, leaveType, startDate, endDate, requestDate string) (engine.EvaluateRequest, error) {
	t := leave.Type(leaveType)
	if !t.Valid() {
		return engine.EvaluateRequest{}, leave.ErrInvalidLeaveType
	}
	start, err := parseDate(startDate)
	if err != nil {
		return engine.EvaluateRequest{}, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return engine.EvaluateRequest{}, err
	}
	in := engine.EvaluateRequest{EmployeeID: id, Type: t, Start: start, End: end}
	if requestDate != "" {
		in.RequestDate, err = parseDate(requestDate)
		if err != nil {
			return engine.EvaluateRequest{}, err
		}
	}
	return in, nil
}

// =============================================================================
// BLACKOUT HANDLERS
// =============================================================================

// ListBlackouts returns all blackout periods.
func (h *Handler) ListBlackouts(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.ListBlackouts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list blackout periods", err)
		return
	}
	dtos := make([]BlackoutDTO, len(periods))
	for i, b := range periods {
		dtos[i] = toBlackoutDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBlackout adds a blackout period.
func (h *Handler) CreateBlackout(w http.ResponseWriter, r *http.Request) {
	var req CreateBlackoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date before start_date", leave.ErrInvalidRange)
		return
	}

	b := leave.BlackoutPeriod{Name: req.Name, Start: start, End: end}
	if err := h.Store.SaveBlackout(r.Context(), b); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save blackout period", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBlackoutDTO(b))
}

// SeedDefaultBlackouts loads the standing quarter-end and year-end windows
// for the current year.
func (h *Handler) SeedDefaultBlackouts(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	periods := policy.DefaultBlackoutPeriods(year)
	for _, b := range periods {
		if err := h.Store.SaveBlackout(r.Context(), b); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed blackout periods", err)
			return
		}
	}

	saved, err := h.Store.ListBlackouts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list blackout periods", err)
		return
	}
	dtos := make([]BlackoutDTO, len(saved))
	for i, b := range saved {
		dtos[i] = toBlackoutDTO(b)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// DeleteBlackout removes a blackout period.
func (h *Handler) DeleteBlackout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteBlackout(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete blackout period", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EMAIL HANDLERS
// =============================================================================

// DraftEmail produces a request or approval email for a leave request.
func (h *Handler) DraftEmail(w http.ResponseWriter, r *http.Request) {
	var req DraftEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t := leave.Type(req.LeaveType)
	if !t.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid leave type", leave.ErrInvalidLeaveType)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}
	days, err := leave.DaysInclusive(start, end)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), req.EmployeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	bal, err := h.Ledger.GetBalance(r.Context(), emp.ID, t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get balance", err)
		return
	}

	in := draft.Input{
		Employee:    *emp,
		ManagerName: h.managerName(r, emp),
		LeaveType:   t,
		Start:       start,
		End:         end,
		Days:        days,
		Balance:     bal,
		Reason:      req.Reason,
	}

	var email draft.Email
	if req.Kind == "approval" {
		email, err = h.Drafter.ApprovalNotice(r.Context(), in)
	} else {
		email, err = h.Drafter.RequestEmail(r.Context(), in)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to draft email", err)
		return
	}
	writeJSON(w, http.StatusOK, EmailDTO{Subject: email.Subject, Body: email.Body})
}

func (h *Handler) managerName(r *http.Request, emp *leave.Employee) string {
	if emp.ManagerID == nil {
		return ""
	}
	mgr, err := h.Store.GetEmployee(r.Context(), *emp.ManagerID)
	if err != nil || mgr == nil {
		return ""
	}
	return mgr.Name
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase wipes all tables. Dev/demo only.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.Log.Info("database reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		Department:      e.Department,
		Position:        e.Position,
		ManagerID:       e.ManagerID,
		StartDate:       e.StartDate.Format("2006-01-02"),
		AnnualQuotaDays: e.AnnualQuotaDays,
		IsManager:       e.IsManager,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toRequestDTOs(requests []leave.Request) []RequestDTO {
	dtos := make([]RequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}

func parseLimit(r *http.Request) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}

// writeEngineError maps engine errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Employee not found", err)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Evaluation failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
