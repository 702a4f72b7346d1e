package policy

import (
	"fmt"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// REMEDIATION TEMPLATES - Per-rule alternatives for blocking violations
// =============================================================================

// Alternatives returns the remediation options that address a specific
// blocking violation. Text is template-based; a remediation-text
// collaborator may replace the wording, but the structured options stand
// on their own.
func Alternatives(v leave.Violation) []leave.RemediationOption {
	switch v.RuleID {
	case RuleQuotaPercentage:
		return quotaAlternatives(v)
	case RuleNoticePeriod:
		return noticeAlternatives(v)
	case RuleBlackoutPeriod:
		return blackoutAlternatives(v)
	case RuleFrequencyLimit:
		return frequencyAlternatives(v)
	}
	return nil
}

func quotaAlternatives(v leave.Violation) []leave.RemediationOption {
	max, _ := v.Details["maximum"].(float64)
	requested, _ := v.Details["requested"].(int)
	return []leave.RemediationOption{
		{
			Kind:        leave.OptionReduce,
			Title:       fmt.Sprintf("Reduce request to %.1f days", max),
			Description: fmt.Sprintf("Reduce request to %.1f days to comply with 60%% rule", max),
			Consequence: "Addresses: " + v.Rule,
			Recommended: true,
		},
		{
			Kind:  leave.OptionSplit,
			Title: "Split into two separate requests",
			Description: fmt.Sprintf(
				"Split into two separate requests (e.g. %.1f days now, %.1f days later)",
				max, float64(requested)-max),
			Consequence: "Addresses: " + v.Rule,
		},
	}
}

func noticeAlternatives(v leave.Violation) []leave.RemediationOption {
	required, _ := v.Details["required"].(int)
	provided, _ := v.Details["notice_provided"].(int)
	shortfall := required - provided
	return []leave.RemediationOption{
		{
			Kind:  leave.OptionShift,
			Title: fmt.Sprintf("Shift start date %d days later", shortfall),
			Description: fmt.Sprintf(
				"Shift start date %d days later to meet the %d-day notice requirement",
				shortfall, required),
			Consequence: "Addresses: " + v.Rule,
			Recommended: true,
		},
		{
			Kind:        leave.OptionShift,
			Title:       "Request manager override",
			Description: "Request manager override for emergency circumstances",
			Consequence: "Addresses: " + v.Rule,
		},
	}
}

func blackoutAlternatives(v leave.Violation) []leave.RemediationOption {
	return []leave.RemediationOption{
		{
			Kind:        leave.OptionShift,
			Title:       "Shift dates to avoid blackout",
			Description: "Shift dates to avoid the blackout period",
			Consequence: "Addresses: " + v.Rule,
			Recommended: true,
		},
		{
			Kind:  leave.OptionReduce,
			Title: "Reduce to under 3 days",
			Description: fmt.Sprintf(
				"Reduce request to fewer than %d days (allowed during blackout)",
				BlackoutExemptDays),
			Consequence: "Addresses: " + v.Rule,
		},
		{
			Kind:        leave.OptionShift,
			Title:       "Request manager override",
			Description: "Request manager override for special circumstances",
			Consequence: "Addresses: " + v.Rule,
		},
	}
}

func frequencyAlternatives(v leave.Violation) []leave.RemediationOption {
	return []leave.RemediationOption{
		{
			Kind:  leave.OptionDelay,
			Title: "Delay until window expires",
			Description: fmt.Sprintf(
				"Delay this request until the %d-day window expires", FrequencyWindowDays),
			Consequence: "Addresses: " + v.Rule,
			Recommended: true,
		},
		{
			Kind:  leave.OptionReduce,
			Title: fmt.Sprintf("Reduce to %d days or less", leave.LongVacationDays),
			Description: fmt.Sprintf(
				"Reduce duration to %d days or less to avoid the long-vacation classification",
				leave.LongVacationDays),
			Consequence: "Addresses: " + v.Rule,
		},
	}
}
