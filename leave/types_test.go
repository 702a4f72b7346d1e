package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// DATE ARITHMETIC
// =============================================================================

func TestDaysInclusive_CountsBothEndpoints(t *testing.T) {
	days, err := leave.DaysInclusive(date(2024, time.March, 20), date(2024, time.March, 22))
	require.NoError(t, err)
	assert.Equal(t, 3, days)
}

func TestDaysInclusive_SingleDay(t *testing.T) {
	days, err := leave.DaysInclusive(date(2024, time.March, 20), date(2024, time.March, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, days)
}

func TestDaysInclusive_EndBeforeStart_Fails(t *testing.T) {
	_, err := leave.DaysInclusive(date(2024, time.March, 22), date(2024, time.March, 20))
	assert.ErrorIs(t, err, leave.ErrInvalidRange)
}

func TestOverlaps_InclusiveOnBothEnds(t *testing.T) {
	bStart, bEnd := date(2024, time.March, 18), date(2024, time.March, 31)

	// Touching the boundary counts as overlap.
	assert.True(t, leave.Overlaps(date(2024, time.March, 10), date(2024, time.March, 18), bStart, bEnd))
	assert.True(t, leave.Overlaps(date(2024, time.March, 31), date(2024, time.April, 5), bStart, bEnd))
	assert.True(t, leave.Overlaps(date(2024, time.March, 20), date(2024, time.March, 22), bStart, bEnd))

	// Fully outside does not.
	assert.False(t, leave.Overlaps(date(2024, time.March, 10), date(2024, time.March, 17), bStart, bEnd))
	assert.False(t, leave.Overlaps(date(2024, time.April, 1), date(2024, time.April, 3), bStart, bEnd))
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestNewRequest_DerivesDaysHoursAndNotice(t *testing.T) {
	r, err := leave.NewRequest("EMP001", leave.TypeVacation,
		date(2024, time.July, 1), date(2024, time.July, 10), date(2024, time.June, 10))
	require.NoError(t, err)

	assert.Equal(t, 10, r.DaysRequested)
	assert.True(t, r.HoursRequested.Equal(leave.HoursFromDays(10)))
	assert.Equal(t, 21, r.NoticeDays())
	assert.Equal(t, leave.StatusPending, r.Status)
}

func TestRequest_LongVacationClassification(t *testing.T) {
	short, err := leave.NewRequest("EMP001", leave.TypeVacation,
		date(2024, time.July, 1), date(2024, time.July, 7), date(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, 7, short.DaysRequested)
	assert.False(t, short.LongVacation(), "7 days is the boundary, not long")

	long, err := leave.NewRequest("EMP001", leave.TypeVacation,
		date(2024, time.July, 1), date(2024, time.July, 8), date(2024, time.June, 1))
	require.NoError(t, err)
	assert.True(t, long.LongVacation())

	sick, err := leave.NewRequest("EMP001", leave.TypeSick,
		date(2024, time.July, 1), date(2024, time.July, 8), date(2024, time.June, 1))
	require.NoError(t, err)
	assert.False(t, sick.LongVacation(), "sick leave is never frequency-limited")
}

// =============================================================================
// BALANCES
// =============================================================================

func TestBalance_RemainingClampedToQuota(t *testing.T) {
	b := leave.Balance{
		Type:         leave.TypeVacation,
		AccruedHours: leave.HoursFromDays(30), // over-accrued
		UsedHours:    leave.Hours{},
		QuotaDays:    20,
	}
	assert.True(t, b.RemainingHours().Equal(leave.HoursFromDays(20)),
		"remaining must cap at quota_days * 8")
}

func TestBalance_RemainingNeverNegative(t *testing.T) {
	b := leave.Balance{
		Type:         leave.TypeVacation,
		AccruedHours: leave.HoursFromDays(5),
		UsedHours:    leave.HoursFromDays(9),
		QuotaDays:    20,
	}
	assert.True(t, b.RemainingHours().IsZero())
}

func TestBalance_Sufficient(t *testing.T) {
	b := leave.Balance{
		Type:         leave.TypeVacation,
		AccruedHours: leave.HoursFromDays(10),
		UsedHours:    leave.HoursFromDays(3),
		QuotaDays:    10,
	}
	assert.True(t, b.Sufficient(7))
	assert.False(t, b.Sufficient(8))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployee_ManagerDetection(t *testing.T) {
	assert.True(t, leave.Employee{ID: "MGR001"}.Manager(), "ID prefix convention")
	assert.True(t, leave.Employee{ID: "EMP001", IsManager: true}.Manager(), "explicit flag")
	assert.False(t, leave.Employee{ID: "EMP001"}.Manager())
}

func TestEmployee_QuotaDaysPerType(t *testing.T) {
	e := leave.Employee{ID: "EMP001", AnnualQuotaDays: 20}
	assert.Equal(t, 20, e.QuotaDays(leave.TypeVacation))
	assert.Equal(t, leave.SickQuotaDays, e.QuotaDays(leave.TypeSick))
}

// =============================================================================
// HOURS
// =============================================================================

func TestHours_Clamp(t *testing.T) {
	max := leave.HoursFromDays(10)
	assert.True(t, leave.HoursFromDays(12).Clamp(max).Equal(max))
	assert.True(t, leave.HoursFromDays(-2).Clamp(max).IsZero())
	assert.True(t, leave.HoursFromDays(5).Clamp(max).Equal(leave.HoursFromDays(5)))
}
