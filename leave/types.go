/*
Package leave provides the core domain model for the leave policy engine.

PURPOSE:
  This package contains the types shared by every layer of the system:
  employees, leave requests, balances, policy violations, and remediation
  options. It has no dependencies on storage or transport.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: A quantity of leave time (decimal-backed, 8 hours = 1 day)
  - Employee: Identity plus annual quota configuration
  - Request: An immutable leave request record
  - Balance: Per-type accrued/used snapshot with clamped remaining
  - Violation / RemediationOption: Structured rule-check outputs

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift
  2. Immutability: Requests are never mutated after recording;
     corrections happen via compensating balance deltas
  3. One schema: balances are accrued/used pairs, remaining is derived

SEE ALSO:
  - errors.go: Error taxonomy for the engine
  - policy package: Rule evaluation over these types
  - ledger package: Balance mutation and request history
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// HoursPerDay converts between leave days and working hours.
	HoursPerDay = 8

	// SickQuotaDays is the fixed annual sick-leave allowance.
	// Sick accrual is a constant 64 hours, reset per policy cycle.
	SickQuotaDays = 8

	// LongVacationDays is the threshold above which a vacation request
	// is classified as a "long vacation" for frequency limiting.
	LongVacationDays = 7

	// ManagerIDPrefix marks employees whose requests bypass rule checks.
	ManagerIDPrefix = "MGR"
)

// =============================================================================
// LEAVE TYPE
// =============================================================================

type Type string

const (
	TypeVacation Type = "vacation"
	TypeSick     Type = "sick"
)

// Valid reports whether t is a known leave type.
func (t Type) Valid() bool { return t == TypeVacation || t == TypeSick }

// =============================================================================
// HOURS - Leave time quantity
// =============================================================================

// Hours is a quantity of leave time in working hours.
type Hours struct {
	Value decimal.Decimal
}

func HoursOf(v float64) Hours   { return Hours{Value: decimal.NewFromFloat(v)} }
func HoursFromInt(v int) Hours  { return Hours{Value: decimal.NewFromInt(int64(v))} }
func HoursFromDays(d int) Hours { return Hours{Value: decimal.NewFromInt(int64(d) * HoursPerDay)} }

func (h Hours) Add(o Hours) Hours      { return Hours{Value: h.Value.Add(o.Value)} }
func (h Hours) Sub(o Hours) Hours      { return Hours{Value: h.Value.Sub(o.Value)} }
func (h Hours) Neg() Hours             { return Hours{Value: h.Value.Neg()} }
func (h Hours) IsNegative() bool       { return h.Value.IsNegative() }
func (h Hours) IsZero() bool           { return h.Value.IsZero() }
func (h Hours) LessThan(o Hours) bool  { return h.Value.LessThan(o.Value) }
func (h Hours) GreaterThan(o Hours) bool { return h.Value.GreaterThan(o.Value) }
func (h Hours) Equal(o Hours) bool     { return h.Value.Equal(o.Value) }

// Days converts hours to days at 8 working hours per day.
func (h Hours) Days() decimal.Decimal {
	return h.Value.Div(decimal.NewFromInt(HoursPerDay))
}

// Float64 renders the quantity for display layers.
func (h Hours) Float64() float64 {
	f, _ := h.Value.Float64()
	return f
}

// Clamp bounds the quantity to [0, max].
func (h Hours) Clamp(max Hours) Hours {
	if h.IsNegative() {
		return Hours{Value: decimal.Zero}
	}
	if h.GreaterThan(max) {
		return max
	}
	return h
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is the ledger's view of a person. Department, position and the
// manager reference are display-only; the engine mutates balance fields only.
type Employee struct {
	ID              string
	Name            string
	Email           string
	Department      string
	Position        string
	ManagerID       *string
	StartDate       time.Time
	AnnualQuotaDays int // vacation quota; sick quota is the fixed SickQuotaDays
	IsManager       bool
	CreatedAt       time.Time
}

// Manager reports whether requests from this employee take the
// auto-approval fast path. The ID-prefix convention predates the explicit
// flag and is kept for existing employee records.
func (e Employee) Manager() bool {
	return e.IsManager || len(e.ID) >= len(ManagerIDPrefix) && e.ID[:len(ManagerIDPrefix)] == ManagerIDPrefix
}

// QuotaDays returns the annual allowance for the given leave type.
func (e Employee) QuotaDays(t Type) int {
	if t == TypeSick {
		return SickQuotaDays
	}
	return e.AnnualQuotaDays
}

// =============================================================================
// BALANCE - Computed accrued/used snapshot
// =============================================================================

// Balance is a per-employee, per-type snapshot. Remaining is always derived,
// never stored, so it cannot drift from the accrued/used pair.
type Balance struct {
	EmployeeID   string
	Type         Type
	AccruedHours Hours
	UsedHours    Hours
	QuotaDays    int
}

// QuotaHours is the annual ceiling in hours.
func (b Balance) QuotaHours() Hours { return HoursFromDays(b.QuotaDays) }

// RemainingHours is accrued minus used, clamped to [0, quota].
func (b Balance) RemainingHours() Hours {
	return b.AccruedHours.Sub(b.UsedHours).Clamp(b.QuotaHours())
}

// RemainingDays is the remaining balance expressed in days.
func (b Balance) RemainingDays() decimal.Decimal {
	return b.RemainingHours().Days()
}

// Sufficient reports whether the balance covers a request of n days.
func (b Balance) Sufficient(days int) bool {
	return !b.RemainingHours().LessThan(HoursFromDays(days))
}

// =============================================================================
// REQUEST - Immutable once recorded
// =============================================================================

type RequestStatus string

const (
	StatusApproved RequestStatus = "approved"
	StatusDenied   RequestStatus = "denied"
	// StatusPending is transient: it marks an advisory decision awaiting a
	// caller choice and is never persisted to request history.
	StatusPending RequestStatus = "pending"
)

// Request is a leave request. DaysRequested counts calendar days inclusive
// of both endpoints; HoursRequested is always DaysRequested * 8.
type Request struct {
	ID             string
	EmployeeID     string
	Type           Type
	Start          time.Time
	End            time.Time
	DaysRequested  int
	HoursRequested Hours
	Status         RequestStatus
	RequestDate    time.Time
	CreatedAt      time.Time
}

// NewRequest builds a request with derived fields populated.
// It returns ErrInvalidRange when end precedes start.
func NewRequest(employeeID string, t Type, start, end, requestDate time.Time) (Request, error) {
	days, err := DaysInclusive(start, end)
	if err != nil {
		return Request{}, err
	}
	return Request{
		EmployeeID:     employeeID,
		Type:           t,
		Start:          start,
		End:            end,
		DaysRequested:  days,
		HoursRequested: HoursFromDays(days),
		Status:         StatusPending,
		RequestDate:    requestDate,
	}, nil
}

// NoticeDays is the lead time between submission and leave start.
func (r Request) NoticeDays() int {
	return daysBetween(r.RequestDate, r.Start)
}

// LongVacation reports whether this request is frequency-limited.
func (r Request) LongVacation() bool {
	return r.Type == TypeVacation && r.DaysRequested > LongVacationDays
}

// DaysInclusive is the calendar day count of [start, end], both inclusive.
func DaysInclusive(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return daysBetween(start, end) + 1, nil
}

func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// Overlaps is the inclusive interval overlap test used by blackout and
// frequency checks: [aStart,aEnd] intersects [bStart,bEnd].
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// =============================================================================
// LONG VACATION - History entry for frequency analysis
// =============================================================================

// LongVacation is an approved vacation request spanning more than 7 days,
// as returned by the persistence layer for frequency checks.
type LongVacation struct {
	Start time.Time
	End   time.Time
	Days  int
}

// =============================================================================
// VIOLATIONS & REMEDIATION
// =============================================================================

type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
)

// Violation is a structured rule-check failure. It is constructed fresh on
// every evaluation and never persisted. Details carries rule-specific
// payload (maximum allowed days, notice shortfall, blackout window, count).
type Violation struct {
	RuleID      string
	Rule        string
	Section     string
	Description string
	Severity    Severity
	Details     map[string]any
}

// Blocking reports whether this violation prevents eligibility.
func (v Violation) Blocking() bool { return v.Severity == SeverityBlocking }

type OptionKind string

const (
	OptionApprove OptionKind = "approve-as-is"
	OptionReduce  OptionKind = "reduce-days"
	OptionShift   OptionKind = "shift-dates"
	OptionSplit   OptionKind = "split-request"
	OptionDelay   OptionKind = "delay"
	OptionDeny    OptionKind = "deny"
)

// RemediationOption is a concrete alternative offered when a request is not
// eligible as submitted.
type RemediationOption struct {
	ID          string
	Title       string
	Description string
	Consequence string
	Recommended bool
	Kind        OptionKind
}

// =============================================================================
// BLACKOUT PERIOD
// =============================================================================

// BlackoutPeriod is a calendar interval during which requests of 3 or more
// days are disallowed. Sourced from configuration or the blackout store.
type BlackoutPeriod struct {
	ID    string
	Name  string
	Start time.Time
	End   time.Time
}
