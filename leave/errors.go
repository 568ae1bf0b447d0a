/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place. Every failure in this package is a
  per-request outcome, never fatal to the process: the ledger state
  stays consistent on every error path.

ERROR CATEGORIES:
  1. Validation errors - malformed input, unknown leave type
  2. Conflict errors   - overlapping applications on the same date
  3. Lookup errors     - unknown employee or application
  4. Decision errors   - already-decided application, insufficient balance

USAGE:
  Callers match with errors.Is/errors.As:

    if errors.Is(err, leave.ErrInsufficientBalance) { ... }

    var conflict *leave.ConflictError
    if errors.As(err, &conflict) { ... }
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when the referenced employee does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrApplicationNotFound is returned when the referenced application does not exist.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrDuplicateEmployee is returned when registering an already-taken employee id.
	ErrDuplicateEmployee = errors.New("employee id already exists")

	// ErrValidation is returned for malformed input (bad date, unknown leave type).
	ErrValidation = errors.New("invalid request")

	// ErrConflict is returned when an application overlaps an existing
	// non-rejected application on the same date.
	ErrConflict = errors.New("conflicting application on date")

	// ErrAlreadyDecided is returned when deciding an application that has
	// already reached a terminal status. Retries are not free.
	ErrAlreadyDecided = errors.New("application already decided")

	// ErrInsufficientBalance is returned when an approval would overdraw
	// the employee's balance. The application stays pending.
	ErrInsufficientBalance = errors.New("insufficient leave balance")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports malformed input with the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports an overlap with an existing non-rejected
// application on the same date.
type ConflictError struct {
	EmployeeID EmployeeID
	Date       Date
	Requested  LeaveType
	Existing   LeaveType
	ExistingID ApplicationID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot request %s leave on %s: %s application %s already covers that date",
		e.Requested, e.Date, e.Existing, e.ExistingID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// AlreadyDecidedError carries the existing terminal record so callers can
// distinguish an idempotent retry on a decided item from a fresh failure.
type AlreadyDecidedError struct {
	Application *Application
}

func (e *AlreadyDecidedError) Error() string {
	return fmt.Sprintf("application %s is already %s", e.Application.ID, e.Application.Status)
}

func (e *AlreadyDecidedError) Unwrap() error { return ErrAlreadyDecided }

// InsufficientBalanceError provides details about a balance shortage at
// approval time.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Year       int
	Available  decimal.Decimal
	Requested  decimal.Decimal
	Shortfall  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s in %d: available %s, requested %s, shortfall %s",
		e.EmployeeID, e.Year, e.Available, e.Requested, e.Shortfall)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrApplicationNotFound)
}

// IsClientError returns true if the error is due to invalid client input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyDecided) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrDuplicateEmployee)
}
