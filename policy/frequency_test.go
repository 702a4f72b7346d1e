package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

func longVacation(start time.Time, days int) leave.LongVacation {
	return leave.LongVacation{Start: start, End: start.AddDate(0, 0, days-1), Days: days}
}

func TestCheckFrequency_TwoExistingBlocks(t *testing.T) {
	// GIVEN: two approved long vacations (9 and 11 days) near the candidate
	start := date(2024, time.July, 1)
	end := date(2024, time.July, 9) // 9-day candidate
	history := []leave.LongVacation{
		longVacation(date(2024, time.May, 20), 9),
		longVacation(date(2024, time.August, 5), 11),
	}

	// WHEN: checking the candidate
	v := policy.CheckFrequency(history, start, end)

	// THEN: blocking violation with the count and limit
	require.NotNil(t, v)
	assert.Equal(t, policy.RuleFrequencyLimit, v.RuleID)
	assert.Equal(t, leave.SeverityBlocking, v.Severity)
	assert.Equal(t, 2, v.Details["existing_count"])
	assert.Equal(t, policy.FrequencyLimit, v.Details["limit"])
}

func TestCheckFrequency_OneExistingPasses(t *testing.T) {
	history := []leave.LongVacation{
		longVacation(date(2024, time.May, 20), 9),
	}
	v := policy.CheckFrequency(history, date(2024, time.July, 1), date(2024, time.July, 9))
	assert.Nil(t, v)
}

func TestCheckFrequency_OutsideWindowIgnored(t *testing.T) {
	// Both vacations end more than 60 days before the candidate starts.
	start := date(2024, time.September, 1)
	end := date(2024, time.September, 9)
	history := []leave.LongVacation{
		longVacation(date(2024, time.January, 5), 10),
		longVacation(date(2024, time.February, 10), 9),
	}
	assert.Nil(t, policy.CheckFrequency(history, start, end))
}

func TestCheckFrequency_WindowBoundaryInclusive(t *testing.T) {
	// A vacation ending exactly 60 days before the candidate start counts.
	start := date(2024, time.July, 1)
	end := date(2024, time.July, 9)
	boundary := start.AddDate(0, 0, -policy.FrequencyWindowDays)
	history := []leave.LongVacation{
		{Start: boundary.AddDate(0, 0, -8), End: boundary, Days: 9},
		longVacation(date(2024, time.June, 1), 10),
	}
	v := policy.CheckFrequency(history, start, end)
	require.NotNil(t, v)
	assert.Equal(t, 2, v.Details["existing_count"])
}
