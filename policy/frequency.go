package policy

import (
	"fmt"
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// FREQUENCY ANALYZER - Long-vacation rolling-window limit
// =============================================================================

// CheckFrequency applies the long-vacation frequency limit to a candidate
// request. history must contain the employee's approved vacation requests
// longer than 7 days; the persistence layer pre-filters them.
//
// The analysis window spans 60 days before the candidate's start to 60 days
// after its end. If 2 or more existing long vacations overlap that window,
// adding the candidate would exceed the limit and a blocking violation is
// returned.
//
// Callers only invoke this when the candidate itself is long; short
// requests never trigger the check regardless of history.
func CheckFrequency(history []leave.LongVacation, start, end time.Time) *leave.Violation {
	windowStart := start.AddDate(0, 0, -FrequencyWindowDays)
	windowEnd := end.AddDate(0, 0, FrequencyWindowDays)

	count := 0
	for _, v := range history {
		if leave.Overlaps(v.Start, v.End, windowStart, windowEnd) {
			count++
		}
	}

	if count < FrequencyLimit {
		return nil
	}
	return &leave.Violation{
		RuleID:   RuleFrequencyLimit,
		Rule:     ruleNames[RuleFrequencyLimit],
		Section:  sectionReferences[RuleFrequencyLimit],
		Severity: leave.SeverityBlocking,
		Description: fmt.Sprintf(
			"Exceeds limit of %d long vacations (>%d days) within any %d-day period. "+
				"Found %d existing long vacations in the relevant window.",
			FrequencyLimit, leave.LongVacationDays, FrequencyWindowDays, count),
		Details: map[string]any{
			"existing_count": count,
			"limit":          FrequencyLimit,
		},
	}
}
