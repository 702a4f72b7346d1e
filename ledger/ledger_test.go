package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger(t *testing.T) (*ledger.Ledger, *memory.Store) {
	t.Helper()
	store := memory.New()
	return ledger.New(store), store
}

func seedEmployee(t *testing.T, store *memory.Store, id string, quotaDays int) {
	t.Helper()
	err := store.SaveEmployee(context.Background(), leave.Employee{
		ID:              id,
		Name:            "Test Employee",
		StartDate:       time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		AnnualQuotaDays: quotaDays,
	})
	require.NoError(t, err)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// BALANCE READS
// =============================================================================

func TestGetBalance_FreshEmployeeHasFullQuota(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 20)

	bal, err := l.GetBalance(context.Background(), "EMP001", leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, bal.RemainingHours().Equal(leave.HoursFromDays(20)))
	assert.Equal(t, 20, bal.QuotaDays)

	sick, err := l.GetBalance(context.Background(), "EMP001", leave.TypeSick)
	require.NoError(t, err)
	assert.True(t, sick.RemainingHours().Equal(leave.HoursFromDays(leave.SickQuotaDays)))
}

func TestGetBalance_UnknownEmployee_NotFound(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.GetBalance(context.Background(), "NOPE", leave.TypeVacation)
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestGetBalance_InvalidType(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 20)

	_, err := l.GetBalance(context.Background(), "EMP001", leave.Type("unpaid"))
	assert.ErrorIs(t, err, leave.ErrInvalidLeaveType)
}

func TestHasSufficientBalance(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 10)

	ok, bal, err := l.HasSufficientBalance(context.Background(), "EMP001", 10, leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10, bal.QuotaDays)

	ok, _, err = l.HasSufficientBalance(context.Background(), "EMP001", 11, leave.TypeVacation)
	require.NoError(t, err)
	assert.False(t, ok)
}

// =============================================================================
// MUTATIONS
// =============================================================================

func TestApplyLeave_ConsumesAndRestores(t *testing.T) {
	// GIVEN: an employee with the full 20-day quota
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 20)
	ctx := context.Background()

	// WHEN: consuming 5 days then restoring them
	require.NoError(t, l.ApplyLeave(ctx, "EMP001", leave.TypeVacation, 5))

	bal, err := l.GetBalance(ctx, "EMP001", leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, bal.RemainingHours().Equal(leave.HoursFromDays(15)))

	require.NoError(t, l.ApplyLeave(ctx, "EMP001", leave.TypeVacation, -5))

	// THEN: the original balance is restored
	bal, err = l.GetBalance(ctx, "EMP001", leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, bal.RemainingHours().Equal(leave.HoursFromDays(20)))
}

func TestApplyLeave_ClampsSymmetrically(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 10)
	ctx := context.Background()

	// Over-consume: used clamps at the quota ceiling, remaining at zero.
	require.NoError(t, l.ApplyLeave(ctx, "EMP001", leave.TypeVacation, 15))
	bal, err := l.GetBalance(ctx, "EMP001", leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, bal.RemainingHours().IsZero())
	assert.True(t, bal.UsedHours.Equal(leave.HoursFromDays(10)))

	// Over-restore: used clamps at zero, remaining at the quota ceiling.
	require.NoError(t, l.ApplyLeave(ctx, "EMP001", leave.TypeVacation, -25))
	bal, err = l.GetBalance(ctx, "EMP001", leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, bal.UsedHours.IsZero())
	assert.True(t, bal.RemainingHours().Equal(leave.HoursFromDays(10)))
}

func TestApplyLeave_UnknownEmployee_BalanceMutationError(t *testing.T) {
	l, _ := newTestLedger(t)

	err := l.ApplyLeave(context.Background(), "NOPE", leave.TypeVacation, 3)
	assert.ErrorIs(t, err, leave.ErrBalanceMutation)
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestApplyLeave_TypesIndependent(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 20)
	ctx := context.Background()

	require.NoError(t, l.ApplyLeave(ctx, "EMP001", leave.TypeSick, 2))

	vac, err := l.GetBalance(ctx, "EMP001", leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, vac.RemainingHours().Equal(leave.HoursFromDays(20)),
		"sick consumption must not touch vacation")
}

// =============================================================================
// RECORDING REQUESTS
// =============================================================================

func TestRecord_ApprovedConsumesBalance(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 20)
	ctx := context.Background()

	r, err := leave.NewRequest("EMP001", leave.TypeVacation,
		date(2024, time.July, 1), date(2024, time.July, 5), date(2024, time.June, 1))
	require.NoError(t, err)
	r.Status = leave.StatusApproved

	recorded, err := l.Record(ctx, r)
	require.NoError(t, err)
	assert.NotEmpty(t, recorded.ID)
	assert.Equal(t, leave.StatusApproved, recorded.Status)

	bal, err := l.GetBalance(ctx, "EMP001", leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, bal.RemainingHours().Equal(leave.HoursFromDays(15)))

	history, err := l.History(ctx, "EMP001", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, recorded.ID, history[0].ID)
}

func TestRecord_DeniedRecordsWithoutMutation(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 20)
	ctx := context.Background()

	r, err := leave.NewRequest("EMP001", leave.TypeVacation,
		date(2024, time.July, 1), date(2024, time.July, 5), date(2024, time.June, 1))
	require.NoError(t, err)
	r.Status = leave.StatusDenied

	_, err = l.Record(ctx, r)
	require.NoError(t, err)

	bal, err := l.GetBalance(ctx, "EMP001", leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, bal.RemainingHours().Equal(leave.HoursFromDays(20)))

	history, err := l.History(ctx, "EMP001", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, leave.StatusDenied, history[0].Status)
}

func TestRecord_RejectsTransientStatus(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 20)

	r, err := leave.NewRequest("EMP001", leave.TypeVacation,
		date(2024, time.July, 1), date(2024, time.July, 5), date(2024, time.June, 1))
	require.NoError(t, err)
	// Status left as pending.

	_, err = l.Record(context.Background(), r)
	assert.Error(t, err)
}

// failingAppendStore simulates a store whose history writes fail.
type failingAppendStore struct {
	*memory.Store
}

func (s *failingAppendStore) AppendRequest(context.Context, leave.Request) error {
	return errors.New("append failed")
}

func TestRecord_FailedAppendLeavesBalanceUntouched(t *testing.T) {
	// GIVEN: a store that accepts balance updates but cannot append history
	store := memory.New()
	l := ledger.New(&failingAppendStore{Store: store})
	seedEmployee(t, store, "EMP001", 20)
	ctx := context.Background()

	r, err := leave.NewRequest("EMP001", leave.TypeVacation,
		date(2024, time.July, 1), date(2024, time.July, 5), date(2024, time.June, 1))
	require.NoError(t, err)
	r.Status = leave.StatusApproved

	// WHEN: recording an approved request
	_, err = l.Record(ctx, r)
	require.Error(t, err)

	// THEN: the failed commit left no deduction behind
	bal, err := l.GetBalance(ctx, "EMP001", leave.TypeVacation)
	require.NoError(t, err)
	assert.True(t, bal.RemainingHours().Equal(leave.HoursFromDays(20)))

	history, err := store.ListRequests(ctx, "EMP001", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRecord_UnknownEmployee(t *testing.T) {
	l, _ := newTestLedger(t)

	r, err := leave.NewRequest("NOPE", leave.TypeVacation,
		date(2024, time.July, 1), date(2024, time.July, 5), date(2024, time.June, 1))
	require.NoError(t, err)
	r.Status = leave.StatusApproved

	_, err = l.Record(context.Background(), r)
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

// =============================================================================
// LONG-VACATION HISTORY
// =============================================================================

func TestLongVacations_FiltersApprovedLongVacationsOnly(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 25)
	ctx := context.Background()

	record := func(t2 leave.Type, start, end time.Time, status leave.RequestStatus) {
		r, err := leave.NewRequest("EMP001", t2, start, end, start.AddDate(0, 0, -30))
		require.NoError(t, err)
		r.Status = status
		_, err = l.Record(ctx, r)
		require.NoError(t, err)
	}

	record(leave.TypeVacation, date(2024, time.May, 1), date(2024, time.May, 9), leave.StatusApproved)  // 9 days: long
	record(leave.TypeVacation, date(2024, time.June, 3), date(2024, time.June, 9), leave.StatusApproved) // 7 days: not long
	record(leave.TypeVacation, date(2024, time.July, 1), date(2024, time.July, 10), leave.StatusDenied)  // denied: excluded
	record(leave.TypeSick, date(2024, time.August, 1), date(2024, time.August, 8), leave.StatusApproved) // sick: excluded

	long, err := l.LongVacations(ctx, "EMP001")
	require.NoError(t, err)
	require.Len(t, long, 1)
	assert.Equal(t, 9, long[0].Days)
	assert.Equal(t, date(2024, time.May, 1), long[0].Start)
}

// =============================================================================
// INVARIANT: 0 <= remaining <= quota, across random-ish deltas
// =============================================================================

func TestBalanceInvariant_HoldsUnderRepeatedCorrections(t *testing.T) {
	l, store := newTestLedger(t)
	seedEmployee(t, store, "EMP001", 15)
	ctx := context.Background()
	quota := leave.HoursFromDays(15)

	for _, delta := range []int{7, -3, 20, -40, 15, -1, 2, -2} {
		require.NoError(t, l.ApplyLeave(ctx, "EMP001", leave.TypeVacation, delta))

		bal, err := l.GetBalance(ctx, "EMP001", leave.TypeVacation)
		require.NoError(t, err)
		rem := bal.RemainingHours()
		assert.False(t, rem.IsNegative(), "remaining went negative after delta %d", delta)
		assert.False(t, rem.GreaterThan(quota), "remaining exceeded quota after delta %d", delta)
	}
}
