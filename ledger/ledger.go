/*
ledger.go - Per-employee leave balance ledger

PURPOSE:
  Owns balance reads and mutations for vacation and sick leave. Evaluation
  layers read through GetBalance/HasSufficientBalance; mutations happen
  only when a request is committed through Record.

INVARIANTS:
  1. 0 <= remaining_hours <= annual_quota_days * 8, always.
  2. Used hours clamp symmetrically: repeated corrections cannot drift the
     balance past zero or past the annual ceiling.
  3. Sick and vacation balances are independent; no cross-type borrowing.
  4. Mutations are local to one employee's record.

CONCURRENCY:
  HasSufficientBalance followed by ApplyLeave is not atomic as a pair, so
  commits for the same employee serialize on a per-employee mutex. Reads
  for unrelated employees proceed concurrently.

CORRECTIONS:
  A committed request is never edited. To cancel, apply a negative delta
  (ApplyLeave with -days) which credits the balance back, clamped to the
  quota ceiling.
*/
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/leave-engine/leave"
)

// Ledger mediates all balance access over a Store.
type Ledger struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-employee commit serialization
}

// New creates a ledger over the given store.
func New(store Store) *Ledger {
	return &Ledger{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Store exposes the underlying store for read-only collaborators.
func (l *Ledger) Store() Store { return l.store }

func (l *Ledger) employeeLock(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

// =============================================================================
// READS
// =============================================================================

// GetBalance returns the balance snapshot for one employee and leave type.
// Unknown employees fail with ErrEmployeeNotFound.
func (l *Ledger) GetBalance(ctx context.Context, employeeID string, t leave.Type) (leave.Balance, error) {
	if !t.Valid() {
		return leave.Balance{}, leave.ErrInvalidLeaveType
	}
	emp, err := l.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return leave.Balance{}, err
	}
	if emp == nil {
		return leave.Balance{}, &leave.NotFoundError{EmployeeID: employeeID}
	}
	return l.store.GetBalance(ctx, employeeID, t)
}

// HasSufficientBalance reports whether the employee can cover daysRequested,
// returning the snapshot used for the check so callers can display it.
func (l *Ledger) HasSufficientBalance(ctx context.Context, employeeID string, daysRequested int, t leave.Type) (bool, leave.Balance, error) {
	bal, err := l.GetBalance(ctx, employeeID, t)
	if err != nil {
		return false, leave.Balance{}, err
	}
	return bal.Sufficient(daysRequested), bal, nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// ApplyLeave applies a day delta to the employee's balance. Positive deltas
// consume leave (used goes up, remaining down); negative deltas restore it.
// Both directions clamp to [0, quota_hours] so repeated corrections cannot
// drift the stored balance. All-or-nothing per call.
func (l *Ledger) ApplyLeave(ctx context.Context, employeeID string, t leave.Type, daysDelta int) error {
	if !t.Valid() {
		return leave.ErrInvalidLeaveType
	}

	lock := l.employeeLock(employeeID)
	lock.Lock()
	defer lock.Unlock()

	return l.applyLocked(ctx, employeeID, t, daysDelta)
}

func (l *Ledger) applyLocked(ctx context.Context, employeeID string, t leave.Type, daysDelta int) error {
	emp, err := l.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	delta := leave.HoursFromDays(daysDelta)
	if emp == nil {
		return &leave.BalanceMutationError{
			EmployeeID: employeeID,
			Type:       t,
			DeltaHours: delta,
			Cause:      &leave.NotFoundError{EmployeeID: employeeID},
		}
	}

	if err := l.store.UpdateBalance(ctx, employeeID, t, delta); err != nil {
		return &leave.BalanceMutationError{
			EmployeeID: employeeID,
			Type:       t,
			DeltaHours: delta,
			Cause:      err,
		}
	}
	return nil
}

// Record appends a request to history. Approved requests consume balance in
// the same per-employee critical section; denied requests record history
// without touching the balance. The balance is mutated before the history
// append so an approved row never exists without its deduction; if the
// append fails the mutation is compensated with the reverse delta. The
// returned request carries the persisted ID and timestamps.
func (l *Ledger) Record(ctx context.Context, r leave.Request) (leave.Request, error) {
	if !r.Type.Valid() {
		return leave.Request{}, leave.ErrInvalidLeaveType
	}
	if r.DaysRequested <= 0 {
		return leave.Request{}, leave.ErrInvalidRange
	}
	if r.Status != leave.StatusApproved && r.Status != leave.StatusDenied {
		return leave.Request{}, fmt.Errorf("cannot record request with transient status %q", r.Status)
	}

	lock := l.employeeLock(r.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	emp, err := l.store.GetEmployee(ctx, r.EmployeeID)
	if err != nil {
		return leave.Request{}, err
	}
	if emp == nil {
		return leave.Request{}, &leave.NotFoundError{EmployeeID: r.EmployeeID}
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.HoursRequested = leave.HoursFromDays(r.DaysRequested)
	r.CreatedAt = time.Now().UTC()

	if r.Status == leave.StatusApproved {
		if err := l.applyLocked(ctx, r.EmployeeID, r.Type, r.DaysRequested); err != nil {
			return leave.Request{}, err
		}
	}

	if err := l.store.AppendRequest(ctx, r); err != nil {
		if r.Status == leave.StatusApproved {
			if restoreErr := l.applyLocked(ctx, r.EmployeeID, r.Type, -r.DaysRequested); restoreErr != nil {
				return leave.Request{}, fmt.Errorf(
					"failed to record request: %w (balance restore also failed: %v)", err, restoreErr)
			}
		}
		return leave.Request{}, fmt.Errorf("failed to record request: %w", err)
	}
	return r, nil
}

// History returns request history, newest first. Empty employeeID means all
// employees.
func (l *Ledger) History(ctx context.Context, employeeID string, limit int) ([]leave.Request, error) {
	return l.store.ListRequests(ctx, employeeID, limit)
}

// LongVacations returns the approved long-vacation history used by the
// frequency analyzer. Read-only; may run concurrently with unrelated
// employees' evaluations.
func (l *Ledger) LongVacations(ctx context.Context, employeeID string) ([]leave.LongVacation, error) {
	return l.store.ListLongVacations(ctx, employeeID)
}
