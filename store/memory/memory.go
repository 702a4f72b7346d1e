// Package memory provides an in-memory ledger.Store for tests and dev.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	employees map[string]leave.Employee
	balances  map[balanceKey]balanceRow
	requests  []leave.Request
	blackouts map[string]leave.BlackoutPeriod
}

type balanceKey struct {
	EmployeeID string
	Type       leave.Type
}

type balanceRow struct {
	Accrued leave.Hours
	Used    leave.Hours
}

func New() *Store {
	return &Store{
		employees: make(map[string]leave.Employee),
		balances:  make(map[balanceKey]balanceRow),
		blackouts: make(map[string]leave.BlackoutPeriod),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) GetEmployee(_ context.Context, id string) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// SaveEmployee stores the employee and initializes full balances for both
// leave types when none exist yet.
func (s *Store) SaveEmployee(_ context.Context, e leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.employees[e.ID] = e

	for _, t := range []leave.Type{leave.TypeVacation, leave.TypeSick} {
		k := balanceKey{EmployeeID: e.ID, Type: t}
		if _, ok := s.balances[k]; !ok {
			s.balances[k] = balanceRow{Accrued: leave.HoursFromDays(e.QuotaDays(t))}
		}
	}
	return nil
}

func (s *Store) ListEmployees(_ context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leave.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// BALANCES
// =============================================================================

func (s *Store) GetBalance(_ context.Context, employeeID string, t leave.Type) (leave.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked(employeeID, t)
}

func (s *Store) balanceLocked(employeeID string, t leave.Type) (leave.Balance, error) {
	e, ok := s.employees[employeeID]
	if !ok {
		return leave.Balance{}, &leave.NotFoundError{EmployeeID: employeeID}
	}
	row := s.balances[balanceKey{EmployeeID: employeeID, Type: t}]
	return leave.Balance{
		EmployeeID:   employeeID,
		Type:         t,
		AccruedHours: row.Accrued,
		UsedHours:    row.Used,
		QuotaDays:    e.QuotaDays(t),
	}, nil
}

// UpdateBalance adds deltaHours to used hours, clamped to [0, quota_hours].
func (s *Store) UpdateBalance(_ context.Context, employeeID string, t leave.Type, deltaHours leave.Hours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.employees[employeeID]
	if !ok {
		return &leave.NotFoundError{EmployeeID: employeeID}
	}
	k := balanceKey{EmployeeID: employeeID, Type: t}
	row := s.balances[k]
	row.Used = row.Used.Add(deltaHours).Clamp(leave.HoursFromDays(e.QuotaDays(t)))
	s.balances[k] = row
	return nil
}

// SetBalance overrides the stored accrued/used pair. Seeding only.
func (s *Store) SetBalance(_ context.Context, employeeID string, t leave.Type, accrued, used leave.Hours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[employeeID]; !ok {
		return &leave.NotFoundError{EmployeeID: employeeID}
	}
	s.balances[balanceKey{EmployeeID: employeeID, Type: t}] = balanceRow{Accrued: accrued, Used: used}
	return nil
}

// =============================================================================
// REQUEST HISTORY (append-only)
// =============================================================================

func (s *Store) AppendRequest(_ context.Context, r leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r)
	return nil
}

func (s *Store) ListRequests(_ context.Context, employeeID string, limit int) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []leave.Request
	for _, r := range s.requests {
		if employeeID != "" && r.EmployeeID != employeeID {
			continue
		}
		out = append(out, r)
	}
	// Newest first by submission date, then start date.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestDate.Equal(out[j].RequestDate) {
			return out[i].RequestDate.After(out[j].RequestDate)
		}
		return out[i].Start.After(out[j].Start)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListLongVacations(_ context.Context, employeeID string) ([]leave.LongVacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []leave.LongVacation
	for _, r := range s.requests {
		if r.EmployeeID != employeeID || r.Type != leave.TypeVacation {
			continue
		}
		if r.Status != leave.StatusApproved || r.DaysRequested <= leave.LongVacationDays {
			continue
		}
		out = append(out, leave.LongVacation{Start: r.Start, End: r.End, Days: r.DaysRequested})
	}
	return out, nil
}

// =============================================================================
// BLACKOUT PERIODS
// =============================================================================

func (s *Store) ListBlackouts(_ context.Context) ([]leave.BlackoutPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leave.BlackoutPeriod, 0, len(s.blackouts))
	for _, b := range s.blackouts {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *Store) SaveBlackout(_ context.Context, b leave.BlackoutPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.blackouts[b.ID] = b
	return nil
}

func (s *Store) DeleteBlackout(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blackouts, id)
	return nil
}

// Reset wipes all state. Dev/test only.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees = make(map[string]leave.Employee)
	s.balances = make(map[balanceKey]balanceRow)
	s.requests = nil
	s.blackouts = make(map[string]leave.BlackoutPeriod)
	return nil
}
