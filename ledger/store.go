/*
store.go - Persistence interface consumed by the Balance Ledger

PURPOSE:
  Defines the storage contract the ledger needs: employee lookup, balance
  reads, clamped balance updates, and append-only request history. The
  store owns the atomicity of each call; the ledger owns the sequencing.

IMPLEMENTATIONS:
  store/memory: In-memory (tests, dev)
  store/sqlite: SQLite-backed (production)

BALANCE UPDATE CONTRACT:
  UpdateBalance adds deltaHours to the employee's used-hours counter and
  clamps the result to [0, quota_hours] in the same operation. Positive
  deltas consume leave; negative deltas restore it. The call is
  all-or-nothing: on any failure the stored balance is unchanged.

HISTORY CONTRACT:
  AppendRequest is append-only. Recorded requests are never updated or
  deleted; corrections happen through compensating balance deltas.
*/
package ledger

import (
	"context"

	"github.com/warp/leave-engine/leave"
)

// Store is the persistence collaborator for the ledger.
type Store interface {
	// GetEmployee returns nil (no error) when the ID is unknown.
	GetEmployee(ctx context.Context, id string) (*leave.Employee, error)
	SaveEmployee(ctx context.Context, e leave.Employee) error
	ListEmployees(ctx context.Context) ([]leave.Employee, error)

	// GetBalance returns the stored accrued/used pair for one leave type.
	GetBalance(ctx context.Context, employeeID string, t leave.Type) (leave.Balance, error)

	// UpdateBalance applies a clamped delta to used hours. See the
	// balance update contract above.
	UpdateBalance(ctx context.Context, employeeID string, t leave.Type, deltaHours leave.Hours) error

	// AppendRequest persists a request record. Append-only.
	AppendRequest(ctx context.Context, r leave.Request) error

	// ListRequests returns request history, newest first, optionally
	// filtered by employee. limit <= 0 means no limit.
	ListRequests(ctx context.Context, employeeID string, limit int) ([]leave.Request, error)

	// ListLongVacations returns the employee's approved vacation requests
	// longer than 7 days, for frequency analysis.
	ListLongVacations(ctx context.Context, employeeID string) ([]leave.LongVacation, error)
}
