/*
handlers_test.go - HTTP tests for the API layer

Exercises the full router against the in-memory store: employee CRUD,
balance and history reads, evaluation, commit, blackout management,
email drafting, and the admin endpoints.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/engine"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testEnv struct {
	router http.Handler
	store  *memory.Store
	ledger *ledger.Ledger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	ldg := ledger.New(store)
	eng := engine.New(ldg, store, nil)
	h := NewHandler(store, ldg, eng, nil, nil)
	return &testEnv{router: NewRouter(h), store: store, ledger: ldg}
}

func (e *testEnv) seedEmployee(t *testing.T, id, name string, quotaDays int) {
	t.Helper()
	err := e.store.SaveEmployee(context.Background(), leave.Employee{
		ID:              id,
		Name:            name,
		StartDate:       time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		AnnualQuotaDays: quotaDays,
	})
	require.NoError(t, err)
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestCreateAndGetEmployee(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID:              "EMP010",
		Name:            "Dana Lee",
		Email:           "dana@example.com",
		Department:      "Engineering",
		AnnualQuotaDays: 20,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/employees/EMP010", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	emp := decode[EmployeeDTO](t, rec)
	assert.Equal(t, "Dana Lee", emp.Name)
	assert.Equal(t, 20, emp.AnnualQuotaDays)

	// A new employee starts with the full quota.
	rec = env.do(t, http.MethodGet, "/api/employees/EMP010/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decode[BalanceDTO](t, rec)
	assert.Equal(t, "vacation", bal.LeaveType)
	assert.Equal(t, 160.0, bal.RemainingHours)
	assert.Equal(t, 20.0, bal.RemainingDays)
}

func TestCreateEmployee_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{Name: "No ID", AnnualQuotaDays: 20})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{ID: "X", Name: "Zero Quota"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEmployee_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/employees/GHOST", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/employees/GHOST/balance", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/employees/GHOST/history", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBalance_SickType(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "EMP001", "John Smith", 20)

	rec := env.do(t, http.MethodGet, "/api/employees/EMP001/balance?type=sick", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decode[BalanceDTO](t, rec)
	assert.Equal(t, "sick", bal.LeaveType)
	assert.Equal(t, 8, bal.QuotaDays)

	rec = env.do(t, http.MethodGet, "/api/employees/EMP001/balance?type=unpaid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// EVALUATION & COMMIT
// =============================================================================

func TestEvaluateRequest_Eligible(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "EMP001", "John Smith", 20)

	start := time.Now().UTC().AddDate(0, 0, 30)
	rec := env.do(t, http.MethodPost, "/api/employees/EMP001/requests/evaluate", EvaluateLeaveRequest{
		LeaveType: "vacation",
		StartDate: start.Format("2006-01-02"),
		EndDate:   start.AddDate(0, 0, 4).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	d := decode[DecisionDTO](t, rec)
	assert.Equal(t, "pending", d.Status)
	assert.True(t, d.Eligible)
	assert.Empty(t, d.Violations)
	assert.Equal(t, 5, d.RequestedDates.Days)
	assert.NotEmpty(t, d.Checks)
	assert.False(t, d.AutoCommitted)
}

func TestEvaluateRequest_ViolationsAndOptions(t *testing.T) {
	// GIVEN: quota 10 with only 7 days remaining
	env := newTestEnv(t)
	env.seedEmployee(t, "EMP100", "Casey Park", 10)
	require.NoError(t, env.store.SetBalance(context.Background(), "EMP100", leave.TypeVacation,
		leave.HoursFromDays(10), leave.HoursFromDays(3)))

	// WHEN: evaluating a 10-day request
	start := time.Now().UTC().AddDate(0, 0, 30)
	rec := env.do(t, http.MethodPost, "/api/employees/EMP100/requests/evaluate", EvaluateLeaveRequest{
		LeaveType: "vacation",
		StartDate: start.Format("2006-01-02"),
		EndDate:   start.AddDate(0, 0, 9).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: the decision lists every problem and offers remediation
	d := decode[DecisionDTO](t, rec)
	assert.False(t, d.Eligible)
	ruleIDs := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		ruleIDs[i] = v.RuleID
	}
	assert.Contains(t, ruleIDs, "insufficient_balance")
	assert.Contains(t, ruleIDs, "quota_percentage")
	assert.NotEmpty(t, d.Options)
	assert.NotEmpty(t, d.Message)
}

func TestEvaluateRequest_ErrorMapping(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "EMP001", "John Smith", 20)

	body := func(lt, start, end string) EvaluateLeaveRequest {
		return EvaluateLeaveRequest{LeaveType: lt, StartDate: start, EndDate: end}
	}

	rec := env.do(t, http.MethodPost, "/api/employees/GHOST/requests/evaluate",
		body("vacation", "2025-07-01", "2025-07-03"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/employees/EMP001/requests/evaluate",
		body("unpaid", "2025-07-01", "2025-07-03"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/employees/EMP001/requests/evaluate",
		body("vacation", "2025-07-03", "2025-07-01"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateRequest_ManagerAutoCommit(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "MGR001", "Robert Chen", 25)

	start := time.Now().UTC().AddDate(0, 0, 7)
	rec := env.do(t, http.MethodPost, "/api/employees/MGR001/requests/evaluate", EvaluateLeaveRequest{
		LeaveType: "vacation",
		StartDate: start.Format("2006-01-02"),
		EndDate:   start.AddDate(0, 0, 4).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	d := decode[DecisionDTO](t, rec)
	assert.Equal(t, "approved", d.Status)
	assert.True(t, d.AutoCommitted)
	assert.NotEmpty(t, d.RequestID)

	rec = env.do(t, http.MethodGet, "/api/employees/MGR001/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]RequestDTO](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, "approved", history[0].Status)
}

func TestCommitRequest_ApproveAndDeny(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "EMP001", "John Smith", 20)

	start := time.Now().UTC().AddDate(0, 0, 30)
	commit := func(approve bool, offset int) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPost, "/api/employees/EMP001/requests", CommitLeaveRequest{
			LeaveType: "vacation",
			StartDate: start.AddDate(0, offset, 0).Format("2006-01-02"),
			EndDate:   start.AddDate(0, offset, 4).Format("2006-01-02"),
			Approve:   approve,
		})
	}

	rec := commit(true, 0)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	approved := decode[RequestDTO](t, rec)
	assert.Equal(t, "approved", approved.Status)
	assert.NotEmpty(t, approved.ID)

	rec = commit(false, 1)
	require.Equal(t, http.StatusCreated, rec.Code)
	denied := decode[RequestDTO](t, rec)
	assert.Equal(t, "denied", denied.Status)

	// Only the approval consumed balance: 20 - 5 = 15 days.
	rec = env.do(t, http.MethodGet, "/api/employees/EMP001/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decode[BalanceDTO](t, rec)
	assert.Equal(t, 15.0, bal.RemainingDays)

	rec = env.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]RequestDTO](t, rec)
	assert.Len(t, history, 2)
}

// =============================================================================
// BLACKOUTS
// =============================================================================

func TestBlackoutLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/blackouts", CreateBlackoutRequest{
		Name:      "Quarter Close",
		StartDate: "2025-06-17",
		EndDate:   "2025-06-30",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/blackouts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	periods := decode[[]BlackoutDTO](t, rec)
	require.Len(t, periods, 1)
	assert.Equal(t, "Quarter Close", periods[0].Name)

	rec = env.do(t, http.MethodDelete, "/api/blackouts/"+periods[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/blackouts", nil)
	periods = decode[[]BlackoutDTO](t, rec)
	assert.Empty(t, periods)
}

func TestCreateBlackout_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/blackouts", CreateBlackoutRequest{
		StartDate: "2025-06-17", EndDate: "2025-06-30",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing name")

	rec = env.do(t, http.MethodPost, "/api/blackouts", CreateBlackoutRequest{
		Name: "Backwards", StartDate: "2025-06-30", EndDate: "2025-06-17",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "end before start")
}

func TestSeedDefaultBlackouts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/blackouts/defaults?year=2024", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	periods := decode[[]BlackoutDTO](t, rec)
	require.Len(t, periods, 4)

	names := make([]string, len(periods))
	for i, p := range periods {
		names[i] = p.Name
	}
	assert.Contains(t, names, "Q1 End")
	assert.Contains(t, names, "Year-End")
}

func TestSeedDefaultBlackouts_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	// Seeding the same year twice must upsert, not duplicate.
	rec := env.do(t, http.MethodPost, "/api/blackouts/defaults?year=2024", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/blackouts/defaults?year=2024", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	periods := decode[[]BlackoutDTO](t, rec)
	assert.Len(t, periods, 4)

	rec = env.do(t, http.MethodGet, "/api/blackouts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]BlackoutDTO](t, rec)
	assert.Len(t, listed, 4)
}

func TestEvaluateRequest_BlackoutFromStore(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "EMP001", "John Smith", 20)

	rec := env.do(t, http.MethodPost, "/api/blackouts", CreateBlackoutRequest{
		Name:      "Year-End",
		StartDate: "2025-11-15",
		EndDate:   "2025-12-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// A 4-day request inside the window is blocked without a restart.
	rec = env.do(t, http.MethodPost, "/api/employees/EMP001/requests/evaluate", EvaluateLeaveRequest{
		LeaveType:   "vacation",
		StartDate:   "2025-12-01",
		EndDate:     "2025-12-04",
		RequestDate: "2025-11-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[DecisionDTO](t, rec)
	assert.False(t, d.Eligible)

	found := false
	for _, v := range d.Violations {
		if v.RuleID == "blackout_period" {
			found = true
		}
	}
	assert.True(t, found, "expected a blackout violation, got %v", d.Violations)
}

// =============================================================================
// EMAIL DRAFTING
// =============================================================================

func TestDraftEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "MGR001", "Robert Chen", 25)
	mgrID := "MGR001"
	require.NoError(t, env.store.SaveEmployee(context.Background(), leave.Employee{
		ID:              "EMP001",
		Name:            "John Smith",
		ManagerID:       &mgrID,
		StartDate:       time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		AnnualQuotaDays: 20,
	}))

	rec := env.do(t, http.MethodPost, "/api/emails/draft", DraftEmailRequest{
		EmployeeID: "EMP001",
		LeaveType:  "vacation",
		StartDate:  "2025-07-01",
		EndDate:    "2025-07-05",
		Reason:     "family trip",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	email := decode[EmailDTO](t, rec)
	assert.Contains(t, email.Subject, "Leave Request")
	assert.Contains(t, email.Body, "Hi Robert Chen")
	assert.Contains(t, email.Body, "John Smith")

	rec = env.do(t, http.MethodPost, "/api/emails/draft", DraftEmailRequest{
		EmployeeID: "EMP001",
		LeaveType:  "vacation",
		StartDate:  "2025-07-01",
		EndDate:    "2025-07-05",
		Kind:       "approval",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	email = decode[EmailDTO](t, rec)
	assert.Contains(t, email.Subject, "Approved")

	rec = env.do(t, http.MethodPost, "/api/emails/draft", DraftEmailRequest{
		EmployeeID: "GHOST",
		LeaveType:  "vacation",
		StartDate:  "2025-07-01",
		EndDate:    "2025-07-05",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestSeedAndReset(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/admin/seed", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	seeded := decode[[]EmployeeDTO](t, rec)
	assert.Len(t, seeded, 5)

	// Seeded usage shows up in balances: EMP001 has 6 of 20 days used.
	rec = env.do(t, http.MethodGet, "/api/employees/EMP001/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decode[BalanceDTO](t, rec)
	assert.Equal(t, 14.0, bal.RemainingDays)

	rec = env.do(t, http.MethodGet, "/api/blackouts", nil)
	periods := decode[[]BlackoutDTO](t, rec)
	assert.Len(t, periods, 4)

	// Re-seeding upserts the same rows.
	rec = env.do(t, http.MethodPost, "/api/admin/seed", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/blackouts", nil)
	periods = decode[[]BlackoutDTO](t, rec)
	assert.Len(t, periods, 4)

	rec = env.do(t, http.MethodPost, "/api/admin/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/employees", nil)
	employees := decode[[]EmployeeDTO](t, rec)
	assert.Empty(t, employees)
}

// =============================================================================
// HISTORY ORDERING
// =============================================================================

func TestHistory_NewestFirstWithLimit(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "EMP001", "John Smith", 30)

	base := time.Now().UTC().AddDate(0, 1, 0)
	for i := 0; i < 3; i++ {
		start := base.AddDate(0, 0, i*10)
		rec := env.do(t, http.MethodPost, "/api/employees/EMP001/requests", CommitLeaveRequest{
			LeaveType:   "vacation",
			StartDate:   start.Format("2006-01-02"),
			EndDate:     start.AddDate(0, 0, 1).Format("2006-01-02"),
			RequestDate: time.Now().UTC().AddDate(0, 0, -i).Format("2006-01-02"),
			Approve:     true,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/employees/%s/history?limit=2", "EMP001"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]RequestDTO](t, rec)
	require.Len(t, history, 2)
	assert.True(t, history[0].RequestDate >= history[1].RequestDate,
		"history must be newest first")
}
