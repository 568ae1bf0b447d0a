/*
handlers.go - HTTP handlers for the leave API

PURPOSE:
  Thin translation between HTTP/JSON and the leave service. No business
  rules here: parsing, service call, DTO mapping, error -> status code.

ERROR MAPPING:
  leave.ErrValidation           -> 400
  leave.Err*NotFound            -> 404
  leave.ErrConflict             -> 409
  leave.ErrDuplicateEmployee    -> 409
  leave.ErrAlreadyDecided       -> 409
  leave.ErrInsufficientBalance  -> 422
  anything else                 -> 500

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: routing
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/holiday-ledger/leave"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *leave.Service
}

// NewHandler creates a handler over the leave service.
func NewHandler(svc *leave.Service) *Handler {
	return &Handler{Service: svc}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.Employees(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, emp := range employees {
		dtos[i] = toEmployeeDTO(emp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee registers an employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	emp, err := h.Service.RegisterEmployee(r.Context(), req.Name, leave.EmployeeID(req.EmployeeID))
	if err != nil {
		writeDomainError(w, "failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Service.Employee(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// GetBalance returns an employee's balance snapshot.
// GET /api/employees/{id}/balance?year=2024
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year", err)
			return
		}
		year = parsed
	}

	dto, err := h.balanceDTO(r, id, year)
	if err != nil {
		writeDomainError(w, "failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) balanceDTO(r *http.Request, id leave.EmployeeID, year int) (BalanceDTO, error) {
	ctx := r.Context()

	emp, err := h.Service.Employee(ctx, id)
	if err != nil {
		return BalanceDTO{}, err
	}
	snap, err := h.Service.Balance(ctx, id, year)
	if err != nil {
		return BalanceDTO{}, err
	}

	from := leave.NewDate(snap.Year, 1, 1)
	to := leave.NewDate(snap.Year, 12, 31)
	apps, err := h.Service.Applications(ctx, leave.Filter{EmployeeID: &id, From: &from, To: &to})
	if err != nil {
		return BalanceDTO{}, err
	}
	return toBalanceDTO(snap, emp.Name, apps), nil
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// Apply submits a leave application.
// POST /api/leave/apply
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "'employee_id' is required", nil)
		return
	}

	date, err := leave.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "'date' is required in YYYY-MM-DD format", err)
		return
	}

	app, err := h.Service.Apply(r.Context(),
		leave.EmployeeID(req.EmployeeID), date, leave.LeaveType(req.LeaveType),
		req.Reason, req.RequestedBy)
	if err != nil {
		writeDomainError(w, "failed to submit application", err)
		return
	}
	writeJSON(w, http.StatusCreated, toApplicationDTO(app))
}

// ListApplications lists applications with optional filters.
// GET /api/leave/applications?employee_id=&status=
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	var filter leave.Filter
	if raw := r.URL.Query().Get("employee_id"); raw != "" {
		id := leave.EmployeeID(raw)
		filter.EmployeeID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := leave.Status(raw)
		filter.Status = &status
	}

	apps, err := h.Service.Applications(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list applications", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTOs(apps))
}

// Decide approves or rejects a pending application.
// POST /api/leave/{id}/decision
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	id := leave.ApplicationID(chi.URLParam(r, "id"))

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	app, err := h.Service.Decide(r.Context(), id, req.Approver,
		leave.Status(req.Decision), req.Comment)
	if err != nil {
		writeDomainError(w, "failed to record decision", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(app))
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard returns the summary the UI renders: balances for the current
// year, the pending queue, and the ten most recent applications.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	employees, err := h.Service.Employees(ctx)
	if err != nil {
		writeDomainError(w, "failed to list employees", err)
		return
	}

	dto := DashboardDTO{
		Year:     h.Service.CurrentYear(),
		Balances: []BalanceDTO{},
	}
	for _, emp := range employees {
		balance, err := h.balanceDTO(r, emp.ID, 0)
		if err != nil {
			writeDomainError(w, "failed to compute balance", err)
			return
		}
		dto.Balances = append(dto.Balances, balance)
	}

	pending, err := h.Service.Applications(ctx, leave.StatusFilter(leave.StatusPending))
	if err != nil {
		writeDomainError(w, "failed to list pending applications", err)
		return
	}
	dto.Pending = toApplicationDTOs(pending)

	recent, err := h.Service.Applications(ctx, leave.Filter{})
	if err != nil {
		writeDomainError(w, "failed to list applications", err)
		return
	}
	if len(recent) > 10 {
		recent = recent[:10]
	}
	dto.RecentActivity = toApplicationDTOs(recent)

	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

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

// writeDomainError maps leave package errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, leave.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, leave.ErrConflict),
		errors.Is(err, leave.ErrDuplicateEmployee),
		errors.Is(err, leave.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, leave.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
