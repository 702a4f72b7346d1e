/*
Package policy implements the corporate leave policy rule checks.

PURPOSE:
  Pure, stateless evaluation of a proposed leave request against the fixed
  rule set: the 60% quota rule, tiered notice periods, blackout windows, and
  the long-vacation frequency limit. Evaluation has no side effects;
  calling it twice with the same context yields identical results.

RULE SET:
  quota_percentage  A single vacation request may not exceed 60% of the
                    employee's annual quota. Blocking.
  notice_period     >3 days needs 14 days notice (blocking);
                    1-3 days wants 5 days notice (warning only).
  blackout_period   3+ day requests may not overlap a blackout window.
  frequency_limit   At most 2 long vacations per rolling 60-day window.

SECTION REFERENCES:
  Each rule maps to a section of the corporate policy document through an
  explicit lookup table rather than parsing section numbers out of rule
  names.

SEE ALSO:
  - blackout.go: Calendar overlap checks
  - frequency.go: Rolling-window long-vacation analysis
  - alternatives.go: Per-rule remediation templates
*/
package policy

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// RULE IDENTIFIERS
// =============================================================================

const (
	RuleQuotaPercentage = "quota_percentage"
	RuleNoticePeriod    = "notice_period"
	RuleBlackoutPeriod  = "blackout_period"
	RuleFrequencyLimit  = "frequency_limit"
)

// sectionReferences maps rule IDs to their policy document sections.
var sectionReferences = map[string]string{
	RuleQuotaPercentage: "Section 2.1",
	RuleFrequencyLimit:  "Section 2.2",
	RuleBlackoutPeriod:  "Section 2.3",
	RuleNoticePeriod:    "Section 2.4",
}

// ruleNames are the human-readable rule titles used in violations.
var ruleNames = map[string]string{
	RuleQuotaPercentage: "60% Rule",
	RuleFrequencyLimit:  "Frequency Limits",
	RuleBlackoutPeriod:  "Blackout Period",
	RuleNoticePeriod:    "Notice Period",
}

// SectionReference returns the policy document section for a rule ID.
func SectionReference(ruleID string) string { return sectionReferences[ruleID] }

// =============================================================================
// POLICY PARAMETERS
// =============================================================================

const (
	// QuotaPercentage caps a single vacation request at this fraction of
	// the annual quota.
	QuotaPercentage = 0.6

	// LongNoticeDays is the required notice for requests over 3 days.
	LongNoticeDays = 14
	// ShortNoticeDays is the recommended notice for 1-3 day requests.
	ShortNoticeDays = 5
	// NoticeTierDays separates the two notice tiers.
	NoticeTierDays = 3

	// FrequencyLimit is the maximum long vacations per rolling window.
	FrequencyLimit = 2
	// FrequencyWindowDays extends the analysis window on each side of the
	// candidate request.
	FrequencyWindowDays = 60

	// BlackoutExemptDays: requests shorter than this are allowed even
	// inside blackout windows.
	BlackoutExemptDays = 3
)

// =============================================================================
// REQUEST CONTEXT
// =============================================================================

// Context is the value object the evaluator sees. It carries everything a
// rule needs so that evaluation stays pure.
type Context struct {
	LeaveType       leave.Type
	DaysRequested   int
	AnnualQuotaDays int
	NoticeDays      int
}

// Result aggregates rule outcomes. Compliant considers blocking violations
// only; warnings never block.
type Result struct {
	Compliant  bool
	Violations []leave.Violation
	Warnings   []leave.Violation
}

// =============================================================================
// EVALUATION
// =============================================================================

// Evaluate runs the quota-percentage and notice-period rules over the
// request context. Blackout and frequency checks need calendar and history
// data and live in blackout.go and frequency.go.
func Evaluate(ctx Context) Result {
	res := Result{Compliant: true}

	if v := checkQuotaPercentage(ctx); v != nil {
		res.Violations = append(res.Violations, *v)
		res.Compliant = false
	}

	blocking, warning := checkNoticePeriod(ctx)
	if blocking != nil {
		res.Violations = append(res.Violations, *blocking)
		res.Compliant = false
	}
	if warning != nil {
		res.Warnings = append(res.Warnings, *warning)
	}

	return res
}

// MaxSingleRequestDays is the 60% ceiling for a single vacation request.
func MaxSingleRequestDays(annualQuotaDays int) decimal.Decimal {
	return decimal.NewFromInt(int64(annualQuotaDays)).
		Mul(decimal.NewFromFloat(QuotaPercentage))
}

func checkQuotaPercentage(ctx Context) *leave.Violation {
	if ctx.LeaveType != leave.TypeVacation {
		return nil // sick leave is quota-capped by the fixed allowance only
	}
	max := MaxSingleRequestDays(ctx.AnnualQuotaDays)
	requested := decimal.NewFromInt(int64(ctx.DaysRequested))
	if !requested.GreaterThan(max) {
		return nil
	}
	maxF, _ := max.Float64()
	return &leave.Violation{
		RuleID:   RuleQuotaPercentage,
		Rule:     ruleNames[RuleQuotaPercentage],
		Section:  sectionReferences[RuleQuotaPercentage],
		Severity: leave.SeverityBlocking,
		Description: fmt.Sprintf(
			"Cannot use more than 60%% of annual allowance (%v days) in a single request", max),
		Details: map[string]any{
			"requested": ctx.DaysRequested,
			"maximum":   maxF,
		},
	}
}

func checkNoticePeriod(ctx Context) (blocking, warning *leave.Violation) {
	switch {
	case ctx.DaysRequested > NoticeTierDays:
		if ctx.NoticeDays < LongNoticeDays {
			return &leave.Violation{
				RuleID:   RuleNoticePeriod,
				Rule:     ruleNames[RuleNoticePeriod],
				Section:  sectionReferences[RuleNoticePeriod],
				Severity: leave.SeverityBlocking,
				Description: fmt.Sprintf(
					"Minimum %d-day notice required for leaves longer than %d days",
					LongNoticeDays, NoticeTierDays),
				Details: map[string]any{
					"notice_provided": ctx.NoticeDays,
					"required":        LongNoticeDays,
				},
			}, nil
		}
	case ctx.DaysRequested >= 1:
		if ctx.NoticeDays < ShortNoticeDays {
			return nil, &leave.Violation{
				RuleID:   RuleNoticePeriod,
				Rule:     ruleNames[RuleNoticePeriod],
				Section:  sectionReferences[RuleNoticePeriod],
				Severity: leave.SeverityWarning,
				Description: fmt.Sprintf(
					"Recommended minimum %d business days notice for 1-%d day leaves",
					ShortNoticeDays, NoticeTierDays),
				Details: map[string]any{
					"notice_provided": ctx.NoticeDays,
					"required":        ShortNoticeDays,
				},
			}
		}
	}
	return nil, nil
}
