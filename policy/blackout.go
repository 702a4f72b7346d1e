package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// BLACKOUT CALENDAR
// =============================================================================

// Calendar holds the blackout periods in effect for one evaluation. The
// engine treats it as a static list per call; where the periods come from
// (configuration, database) is the caller's concern.
type Calendar struct {
	Periods []leave.BlackoutPeriod
}

// NewCalendar builds a calendar over the given periods.
func NewCalendar(periods []leave.BlackoutPeriod) Calendar {
	return Calendar{Periods: periods}
}

// Conflict returns a blocking violation when [start, end] overlaps any
// blackout window, unless the request is short enough to be exempt
// (fewer than 3 days). Overlap is inclusive on both ends.
func (c Calendar) Conflict(start, end time.Time, daysRequested int) *leave.Violation {
	if daysRequested < BlackoutExemptDays {
		return nil
	}
	for _, b := range c.Periods {
		if !leave.Overlaps(start, end, b.Start, b.End) {
			continue
		}
		return &leave.Violation{
			RuleID:   RuleBlackoutPeriod,
			Rule:     ruleNames[RuleBlackoutPeriod],
			Section:  sectionReferences[RuleBlackoutPeriod],
			Severity: leave.SeverityBlocking,
			Description: fmt.Sprintf(
				"Requested dates fall in %s blackout period (%s to %s)",
				b.Name, b.Start.Format("2006-01-02"), b.End.Format("2006-01-02")),
			Details: map[string]any{
				"blackout_name":  b.Name,
				"blackout_start": b.Start.Format("2006-01-02"),
				"blackout_end":   b.End.Format("2006-01-02"),
			},
		}
	}
	return nil
}

// DefaultBlackoutPeriods returns the corporate calendar's standing blackout
// windows: fiscal quarter ends and the year-end freeze. IDs are derived from
// name and year so re-seeding upserts the same rows instead of duplicating.
func DefaultBlackoutPeriods(year int) []leave.BlackoutPeriod {
	d := func(m time.Month, day int) time.Time {
		return time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
	}
	p := func(name string, start, end time.Time) leave.BlackoutPeriod {
		return leave.BlackoutPeriod{
			ID:    BlackoutID(name, start),
			Name:  name,
			Start: start,
			End:   end,
		}
	}
	return []leave.BlackoutPeriod{
		p("Q1 End", d(time.March, 18), d(time.March, 31)),
		p("Q2 End", d(time.June, 17), d(time.June, 30)),
		p("Q3 End", d(time.September, 16), d(time.September, 30)),
		p("Year-End", d(time.November, 15), d(time.December, 31)),
	}
}

// BlackoutID derives a stable identifier for a named blackout window, so
// seeding the same window twice targets the same stored row.
func BlackoutID(name string, start time.Time) string {
	slug := strings.ToLower(strings.Join(strings.Fields(name), "-"))
	return fmt.Sprintf("%s-%s", slug, start.Format("2006-01-02"))
}
