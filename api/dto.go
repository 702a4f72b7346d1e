/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/decision.go: The domain decision these DTOs project
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/engine"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email,omitempty"`
	Department      string  `json:"department,omitempty"`
	Position        string  `json:"position,omitempty"`
	ManagerID       *string `json:"manager_id,omitempty"`
	StartDate       string  `json:"start_date"`
	AnnualQuotaDays int     `json:"annual_quota_days"`
	IsManager       bool    `json:"is_manager"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Department      string  `json:"department"`
	Position        string  `json:"position"`
	ManagerID       *string `json:"manager_id"`
	StartDate       string  `json:"start_date"`
	AnnualQuotaDays int     `json:"annual_quota_days"`
	IsManager       bool    `json:"is_manager"`
}

// =============================================================================
// BALANCES
// =============================================================================

// BalanceDTO represents one leave-type balance.
type BalanceDTO struct {
	EmployeeID     string  `json:"employee_id"`
	LeaveType      string  `json:"leave_type"`
	AccruedHours   float64 `json:"accrued_hours"`
	UsedHours      float64 `json:"used_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	RemainingDays  float64 `json:"remaining_days"`
	QuotaDays      int     `json:"annual_quota_days"`
}

func toBalanceDTO(b leave.Balance) BalanceDTO {
	remDays, _ := b.RemainingDays().Float64()
	return BalanceDTO{
		EmployeeID:     b.EmployeeID,
		LeaveType:      string(b.Type),
		AccruedHours:   b.AccruedHours.Float64(),
		UsedHours:      b.UsedHours.Float64(),
		RemainingHours: b.RemainingHours().Float64(),
		RemainingDays:  remDays,
		QuotaDays:      b.QuotaDays,
	}
}

// =============================================================================
// REQUESTS & DECISIONS
// =============================================================================

// EvaluateLeaveRequest asks for a policy evaluation without committing.
type EvaluateLeaveRequest struct {
	LeaveType   string `json:"leave_type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	RequestDate string `json:"request_date,omitempty"` // defaults to today
}

// CommitLeaveRequest records the caller's choice after review.
type CommitLeaveRequest struct {
	LeaveType   string `json:"leave_type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	RequestDate string `json:"request_date,omitempty"`
	Approve     bool   `json:"approve"`
}

// RequestDTO is a committed request in history responses.
type RequestDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	LeaveType     string `json:"leave_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DaysRequested int    `json:"days_requested"`
	Status        string `json:"status"`
	RequestDate   string `json:"request_date"`
}

func toRequestDTO(r leave.Request) RequestDTO {
	return RequestDTO{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		LeaveType:     string(r.Type),
		StartDate:     r.Start.Format("2006-01-02"),
		EndDate:       r.End.Format("2006-01-02"),
		DaysRequested: r.DaysRequested,
		Status:        string(r.Status),
		RequestDate:   r.RequestDate.Format("2006-01-02"),
	}
}

// ViolationDTO is one rule failure or warning.
type ViolationDTO struct {
	RuleID      string         `json:"rule_id"`
	Rule        string         `json:"rule"`
	Section     string         `json:"section,omitempty"`
	Description string         `json:"description"`
	Severity    string         `json:"severity"`
	Details     map[string]any `json:"details,omitempty"`
}

// OptionDTO is one remediation option.
type OptionDTO struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Consequence string `json:"consequence,omitempty"`
	Recommended bool   `json:"recommended"`
}

// CheckDTO is one analysis line shown alongside a decision.
type CheckDTO struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Section string `json:"section,omitempty"`
}

// DecisionDTO is the evaluation result crossing into presentation layers.
type DecisionDTO struct {
	Status         string         `json:"status"`
	EmployeeID     string         `json:"employee_id"`
	EmployeeName   string         `json:"employee_name"`
	LeaveType      string         `json:"leave_type"`
	RequestedDates DateRangeDTO   `json:"requested_dates"`
	BalanceInfo    BalanceDTO     `json:"balance_info"`
	Eligible       bool           `json:"eligible"`
	Violations     []ViolationDTO `json:"violations"`
	Warnings       []ViolationDTO `json:"warnings"`
	Checks         []CheckDTO     `json:"checks"`
	Options        []OptionDTO    `json:"options"`
	Message        string         `json:"message"`
	AutoCommitted  bool           `json:"auto_committed"`
	RequestID      string         `json:"request_id,omitempty"`
}

// DateRangeDTO is the requested interval.
type DateRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

func toDecisionDTO(d *engine.Decision) DecisionDTO {
	out := DecisionDTO{
		Status:       string(d.Status),
		EmployeeID:   d.EmployeeID,
		EmployeeName: d.EmployeeName,
		LeaveType:    string(d.LeaveType),
		RequestedDates: DateRangeDTO{
			Start: d.Start.Format("2006-01-02"),
			End:   d.End.Format("2006-01-02"),
			Days:  d.Days,
		},
		BalanceInfo:   toBalanceDTO(d.Balance),
		Eligible:      d.Eligible,
		Violations:    make([]ViolationDTO, 0, len(d.Violations)),
		Warnings:      make([]ViolationDTO, 0, len(d.Warnings)),
		Checks:        make([]CheckDTO, 0, len(d.Checks)),
		Options:       make([]OptionDTO, 0, len(d.Options)),
		Message:       d.Message,
		AutoCommitted: d.AutoCommitted,
		RequestID:     d.RequestID,
	}
	for _, v := range d.Violations {
		out.Violations = append(out.Violations, toViolationDTO(v))
	}
	for _, v := range d.Warnings {
		out.Warnings = append(out.Warnings, toViolationDTO(v))
	}
	for _, c := range d.Checks {
		out.Checks = append(out.Checks, CheckDTO{
			Name: c.Name, Status: string(c.Status), Message: c.Message, Section: c.Section,
		})
	}
	for _, o := range d.Options {
		out.Options = append(out.Options, OptionDTO{
			ID: o.ID, Kind: string(o.Kind), Title: o.Title,
			Description: o.Description, Consequence: o.Consequence, Recommended: o.Recommended,
		})
	}
	return out
}

func toViolationDTO(v leave.Violation) ViolationDTO {
	return ViolationDTO{
		RuleID:      v.RuleID,
		Rule:        v.Rule,
		Section:     v.Section,
		Description: v.Description,
		Severity:    string(v.Severity),
		Details:     v.Details,
	}
}

// =============================================================================
// BLACKOUTS
// =============================================================================

// BlackoutDTO is one blackout window.
type BlackoutDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CreateBlackoutRequest creates one blackout window.
type CreateBlackoutRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func toBlackoutDTO(b leave.BlackoutPeriod) BlackoutDTO {
	return BlackoutDTO{
		ID:        b.ID,
		Name:      b.Name,
		StartDate: b.Start.Format("2006-01-02"),
		EndDate:   b.End.Format("2006-01-02"),
	}
}

// =============================================================================
// EMAILS
// =============================================================================

// DraftEmailRequest asks for an email draft around a leave request.
type DraftEmailRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason,omitempty"`
	// Kind: "request" (employee to manager) or "approval" (manager notice).
	Kind string `json:"kind,omitempty"`
}

// EmailDTO is a drafted email.
type EmailDTO struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// parseDate parses a YYYY-MM-DD date in UTC.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
