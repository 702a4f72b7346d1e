/*
decision.go - Decision object, analysis checks, and option assembly

PURPOSE:
  Defines the advisory decision the orchestrator returns and builds its
  presentation-facing pieces: the per-rule analysis checks, the
  human-readable message, and the deduplicated remediation options.

OPTION ASSEMBLY:
  Options are generated only for non-eligible decisions:
    1. reduce-to-available-balance (recommended) and wait-to-accrue when
       the balance was a blocking factor
    2. per-violation alternatives from the policy templates
    3. deny-with-reason, always present as the fallback
  Duplicates are removed by case-insensitive description match.
*/
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

// Decision is the orchestrator's output: advisory for non-managers,
// committed (AutoCommitted=true) on the manager fast-path. It is the only
// artifact crossing into the presentation and email layers.
type Decision struct {
	Status        leave.RequestStatus
	EmployeeID    string
	EmployeeName  string
	LeaveType     leave.Type
	Start         time.Time
	End           time.Time
	Days          int
	NoticeDays    int
	RequestDate   time.Time
	Balance       leave.Balance
	Eligible      bool
	Violations    []leave.Violation
	Warnings      []leave.Violation
	Checks        []Check
	Options       []leave.RemediationOption
	Message       string
	AutoCommitted bool
	RequestID     string // set only when auto-committed
}

// CheckStatus classifies one analysis line.
type CheckStatus string

const (
	CheckPass    CheckStatus = "pass"
	CheckFail    CheckStatus = "fail"
	CheckWarning CheckStatus = "warning"
	CheckInfo    CheckStatus = "info"
)

// Check is one line of the policy analysis shown alongside the decision.
type Check struct {
	Name    string
	Status  CheckStatus
	Message string
	Section string
}

// =============================================================================
// VIOLATIONS SYNTHESIZED BY THE ORCHESTRATOR
// =============================================================================

// RuleInsufficientBalance is the orchestrator-level rule ID for balance
// failures. It is not part of the policy rule set but is reported alongside
// policy violations so a decision always lists every applicable problem.
const RuleInsufficientBalance = "insufficient_balance"

func insufficientBalanceViolation(bal leave.Balance, daysRequested int) leave.Violation {
	remaining := bal.RemainingDays()
	remF, _ := remaining.Float64()
	return leave.Violation{
		RuleID:   RuleInsufficientBalance,
		Rule:     "Insufficient Balance",
		Severity: leave.SeverityBlocking,
		Description: fmt.Sprintf(
			"Insufficient %s balance: %v days remaining, %d requested",
			bal.Type, remaining, daysRequested),
		Details: map[string]any{
			"remaining_days": remF,
			"requested":      daysRequested,
		},
	}
}

// =============================================================================
// ANALYSIS CHECKS
// =============================================================================

func buildChecks(d *Decision, sufficient bool, blackoutV, frequencyV *leave.Violation, res policy.Result, emp leave.Employee) []Check {
	var checks []Check

	// Balance
	balStatus, balMsg := CheckPass, fmt.Sprintf(
		"%v days remaining, %d requested", d.Balance.RemainingDays(), d.Days)
	if !sufficient {
		balStatus = CheckFail
		balMsg = fmt.Sprintf(
			"Only %v days remaining, %d requested", d.Balance.RemainingDays(), d.Days)
	}
	checks = append(checks, Check{Name: "Balance", Status: balStatus, Message: balMsg})

	// 60% rule applies to vacation only.
	if d.LeaveType == leave.TypeVacation {
		c := Check{
			Name:    "60% Rule",
			Status:  CheckPass,
			Section: policy.SectionReference(policy.RuleQuotaPercentage),
			Message: fmt.Sprintf("%d days within the %v-day single-request maximum",
				d.Days, policy.MaxSingleRequestDays(emp.AnnualQuotaDays)),
		}
		if v := findViolation(res.Violations, policy.RuleQuotaPercentage); v != nil {
			c.Status = CheckFail
			c.Message = v.Description
		}
		checks = append(checks, c)
	}

	// Notice period
	notice := Check{
		Name:    "Notice Period",
		Status:  CheckPass,
		Section: policy.SectionReference(policy.RuleNoticePeriod),
		Message: fmt.Sprintf("%d days notice provided", d.NoticeDays),
	}
	if v := findViolation(res.Violations, policy.RuleNoticePeriod); v != nil {
		notice.Status = CheckFail
		notice.Message = v.Description
	} else if v := findViolation(res.Warnings, policy.RuleNoticePeriod); v != nil {
		notice.Status = CheckWarning
		notice.Message = v.Description
	}
	checks = append(checks, notice)

	// Blackout
	blackout := Check{
		Name:    "Blackout Period",
		Status:  CheckPass,
		Section: policy.SectionReference(policy.RuleBlackoutPeriod),
		Message: "No blackout conflict",
	}
	if blackoutV != nil {
		blackout.Status = CheckFail
		blackout.Message = blackoutV.Description
	}
	checks = append(checks, blackout)

	// Frequency, only meaningful for long vacations.
	if d.LeaveType == leave.TypeVacation && d.Days > leave.LongVacationDays {
		freq := Check{
			Name:    "Frequency Limits",
			Status:  CheckPass,
			Section: policy.SectionReference(policy.RuleFrequencyLimit),
			Message: "Within the long-vacation frequency limit",
		}
		if frequencyV != nil {
			freq.Status = CheckFail
			freq.Message = frequencyV.Description
		}
		checks = append(checks, freq)
	}

	if n := weekendDays(d.Start, d.End); n > 0 {
		checks = append(checks, Check{
			Name:   "Weekends",
			Status: CheckInfo,
			Message: fmt.Sprintf(
				"Range includes %d weekend day(s); calendar days count toward the total", n),
		})
	}
	return checks
}

func findViolation(vs []leave.Violation, ruleID string) *leave.Violation {
	for i := range vs {
		if vs[i].RuleID == ruleID {
			return &vs[i]
		}
	}
	return nil
}

func weekendDays(start, end time.Time) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			n++
		}
	}
	return n
}

// =============================================================================
// MESSAGES
// =============================================================================

func buildMessage(d *Decision) string {
	dates := fmt.Sprintf("%s to %s (%d days)",
		d.Start.Format("2006-01-02"), d.End.Format("2006-01-02"), d.Days)

	if d.Eligible {
		msg := fmt.Sprintf("%s leave request for %s meets all policy requirements and can be approved.",
			capitalize(string(d.LeaveType)), dates)
		if len(d.Warnings) > 0 {
			msg += fmt.Sprintf(" Note: %s", d.Warnings[0].Description)
		}
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s leave request for %s cannot be approved as submitted:\n",
		capitalize(string(d.LeaveType)), dates)
	for _, v := range d.Violations {
		fmt.Fprintf(&b, "- %s\n", v.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func managerMessage(d *Decision) string {
	return fmt.Sprintf(
		"Manager request auto-approved: %d days of %s leave from %s to %s.",
		d.Days, d.LeaveType,
		d.Start.Format("2006-01-02"), d.End.Format("2006-01-02"))
}

// =============================================================================
// OPTION ASSEMBLY
// =============================================================================

func buildOptions(d *Decision, sufficient bool) []leave.RemediationOption {
	var options []leave.RemediationOption

	if !sufficient {
		remaining := d.Balance.RemainingDays().IntPart()
		if remaining >= 1 {
			options = append(options, leave.RemediationOption{
				Kind:  leave.OptionReduce,
				Title: fmt.Sprintf("Reduce to %d days", remaining),
				Description: fmt.Sprintf(
					"Reduce the request to %d days to match the available balance", remaining),
				Consequence: "Uses the full remaining balance",
				Recommended: true,
			})
		}
		options = append(options, leave.RemediationOption{
			Kind:        leave.OptionDelay,
			Title:       "Wait for balance to accrue",
			Description: "Postpone the request until the next accrual cycle restores balance",
			Consequence: "No leave recorded now",
		})
	}

	for _, v := range d.Violations {
		options = append(options, policy.Alternatives(v)...)
	}

	options = append(options, leave.RemediationOption{
		Kind:        leave.OptionDeny,
		Title:       "Deny request",
		Description: "Deny the request as submitted",
		Consequence: "Recorded as denied; balance unchanged",
	})

	return dedupeOptions(options)
}

// dedupeOptions removes options whose descriptions match case-insensitively,
// keeping first occurrences, and assigns stable IDs.
func dedupeOptions(options []leave.RemediationOption) []leave.RemediationOption {
	seen := make(map[string]bool, len(options))
	out := options[:0]
	for _, o := range options {
		key := strings.ToLower(strings.TrimSpace(o.Description))
		if seen[key] {
			continue
		}
		seen[key] = true
		o.ID = fmt.Sprintf("opt-%d", len(out)+1)
		out = append(out, o)
	}
	return out
}
