/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the wire contract. Day amounts are serialized as JSON numbers
  (decimal -> float64 at the edge only; the core never does float math).

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/holiday-ledger/leave"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// CreateEmployeeRequest is the request to register an employee.
type CreateEmployeeRequest struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// ApplyRequest is the request to submit a leave application.
type ApplyRequest struct {
	EmployeeID  string `json:"employee_id"`
	Date        string `json:"date"`
	LeaveType   string `json:"leave_type"`
	Reason      string `json:"reason,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// DecisionRequest is the request to decide a pending application.
type DecisionRequest struct {
	Approver string `json:"approver"`
	Decision string `json:"decision"`
	Comment  string `json:"comment,omitempty"`
}

// ApplicationDTO represents a leave application in API responses.
type ApplicationDTO struct {
	ID          string        `json:"id"`
	EmployeeID  string        `json:"employee_id"`
	Year        int           `json:"year"`
	Date        string        `json:"date"`
	LeaveType   string        `json:"leave_type"`
	Duration    float64       `json:"duration"`
	Reason      string        `json:"reason,omitempty"`
	RequestedBy string        `json:"requested_by,omitempty"`
	Status      string        `json:"status"`
	Breakdown   *BreakdownDTO `json:"allocation_breakdown,omitempty"`
	Decision    *DecisionDTO  `json:"decision,omitempty"`
	CreatedAt   string        `json:"created_at"`
}

// BreakdownDTO shows which buckets paid for an approval.
type BreakdownDTO struct {
	CarryOver float64 `json:"carry_over"`
	Annual    float64 `json:"current_year"`
}

// DecisionDTO records the terminal transition.
type DecisionDTO struct {
	ActedBy string `json:"acted_by"`
	Comment string `json:"comment,omitempty"`
	ActedAt string `json:"acted_at"`
}

// BalanceDTO represents a balance snapshot in API responses.
type BalanceDTO struct {
	EmployeeID         string  `json:"employee_id"`
	EmployeeName       string  `json:"employee_name"`
	Year               int     `json:"year"`
	AsOf               string  `json:"as_of"`
	Allocation         float64 `json:"allocation"`
	CarryOver          float64 `json:"carry_over"`
	CarryOverExpiry    string  `json:"carry_over_expiry"`
	CarryOverUsable    bool    `json:"carry_over_usable"`
	UsedAnnual         float64 `json:"used_current_year"`
	UsedCarryOver      float64 `json:"used_carry_over"`
	RemainingAnnual    float64 `json:"remaining_current_year"`
	RemainingCarryOver float64 `json:"remaining_carry_over"`

	Applications []ApplicationDTO `json:"applications"`
}

// DashboardDTO is the summary view: every employee's balance for the
// current year, the pending queue, and recent activity.
type DashboardDTO struct {
	Year           int              `json:"year"`
	Balances       []BalanceDTO     `json:"balances"`
	Pending        []ApplicationDTO `json:"pending"`
	RecentActivity []ApplicationDTO `json:"recent_activity"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(emp *leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        string(emp.ID),
		Name:      emp.Name,
		CreatedAt: emp.CreatedAt.String(),
	}
}

func toApplicationDTO(app *leave.Application) ApplicationDTO {
	dto := ApplicationDTO{
		ID:          string(app.ID),
		EmployeeID:  string(app.EmployeeID),
		Year:        app.Date.LeaveYear(),
		Date:        app.Date.String(),
		LeaveType:   string(app.Type),
		Duration:    decimalToFloat(app.Duration()),
		Reason:      app.Reason,
		RequestedBy: app.RequestedBy,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt.UTC().Format(time.RFC3339),
	}
	if app.Status == leave.StatusApproved {
		dto.Breakdown = &BreakdownDTO{
			CarryOver: decimalToFloat(app.Breakdown.CarryOver),
			Annual:    decimalToFloat(app.Breakdown.Annual),
		}
	}
	if app.Decision != nil {
		dto.Decision = &DecisionDTO{
			ActedBy: app.Decision.ActedBy,
			Comment: app.Decision.Comment,
			ActedAt: app.Decision.ActedAt.UTC().Format(time.RFC3339),
		}
	}
	return dto
}

func toApplicationDTOs(apps []*leave.Application) []ApplicationDTO {
	dtos := make([]ApplicationDTO, len(apps))
	for i, app := range apps {
		dtos[i] = toApplicationDTO(app)
	}
	return dtos
}

func toBalanceDTO(snap *leave.BalanceSnapshot, name string, apps []*leave.Application) BalanceDTO {
	return BalanceDTO{
		EmployeeID:         string(snap.EmployeeID),
		EmployeeName:       name,
		Year:               snap.Year,
		AsOf:               snap.AsOf.String(),
		Allocation:         decimalToFloat(snap.Allocation),
		CarryOver:          decimalToFloat(snap.CarryOver),
		CarryOverExpiry:    snap.CarryOverExpiry.String(),
		CarryOverUsable:    snap.CarryOverUsable,
		UsedAnnual:         decimalToFloat(snap.UsedAnnual),
		UsedCarryOver:      decimalToFloat(snap.UsedCarryOver),
		RemainingAnnual:    decimalToFloat(snap.RemainingAnnual),
		RemainingCarryOver: decimalToFloat(snap.RemainingCarryOver),
		Applications:       toApplicationDTOs(apps),
	}
}

func decimalToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
