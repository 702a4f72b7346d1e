/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Higher layers wrap these errors with additional context.

ERROR CATEGORIES:
  1. Request errors   - Invalid input rejected before evaluation
  2. Lookup errors    - Unknown employees or records
  3. Mutation errors  - Balance updates that must not partially apply

Policy violations are NOT errors: a non-compliant request still produces a
fully populated decision with options. Only fatal conditions (unknown
employee, invalid date range, failed balance mutation) surface as errors.

USAGE:
  if errors.Is(err, leave.ErrEmployeeNotFound) {
      ...
  }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when an employee ID cannot be
	// resolved. Fatal to the whole request; no partial decision is produced.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidRange is returned when end precedes start or the request
	// spans zero or negative days. Rejected before any rule evaluation.
	ErrInvalidRange = errors.New("invalid date range: end before start")

	// ErrInvalidLeaveType is returned for leave types outside {vacation, sick}.
	ErrInvalidLeaveType = errors.New("invalid leave type")

	// ErrBalanceMutation is returned when a balance update would produce an
	// inconsistent state. The update is all-or-nothing per call.
	ErrBalanceMutation = errors.New("balance mutation failed")

	// ErrRequestNotFound is returned when a recorded request ID is unknown.
	ErrRequestNotFound = errors.New("request not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies the employee that could not be resolved.
type NotFoundError struct {
	EmployeeID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee %s not found", e.EmployeeID)
}

func (e *NotFoundError) Unwrap() error { return ErrEmployeeNotFound }

// BalanceMutationError reports a failed all-or-nothing balance update.
type BalanceMutationError struct {
	EmployeeID string
	Type       Type
	DeltaHours Hours
	Cause      error
}

func (e *BalanceMutationError) Error() string {
	return fmt.Sprintf("balance mutation for %s (%s, delta %v hours) failed: %v",
		e.EmployeeID, e.Type, e.DeltaHours.Value, e.Cause)
}

// Unwrap exposes both the sentinel and the underlying cause, so callers can
// match either with errors.Is.
func (e *BalanceMutationError) Unwrap() []error { return []error{ErrBalanceMutation, e.Cause} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrRequestNotFound)
}

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) || errors.Is(err, ErrInvalidLeaveType)
}
