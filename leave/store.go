/*
store.go - Persistence interfaces for applications and the employee directory

PURPOSE:
  Defines the interface between the ledger core and whatever persists it.
  The core treats identifiers as opaque stable strings and never owns
  transport or file-format concerns.

IMPLEMENTATIONS:
  - leave/store:   in-memory, for tests and the dev server
  - store/sqlite:  SQLite, for production

MUTATION CONTRACT:
  Applications are inserted pending and updated exactly once, by the
  decision. Save is an upsert; the approval service guarantees the
  single-mutation discipline and serializes the balance-check + status
  write per employee (see service.go), so the store only needs each
  individual Save to be atomic.
*/
package leave

import "context"

// =============================================================================
// APPLICATION STORE
// =============================================================================

// Filter narrows application listings. Nil fields match everything.
type Filter struct {
	EmployeeID *EmployeeID
	Status     *Status
	From       *Date
	To         *Date
}

// Matches reports whether the application passes the filter.
// Shared by store implementations.
func (f Filter) Matches(a *Application) bool {
	if f.EmployeeID != nil && a.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.From != nil && a.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && a.Date.After(*f.To) {
		return false
	}
	return true
}

// StatusFilter is a convenience constructor for a status-only filter.
func StatusFilter(s Status) Filter { return Filter{Status: &s} }

// ApplicationStore persists leave applications.
type ApplicationStore interface {
	// Save inserts or updates an application.
	Save(ctx context.Context, app *Application) error

	// Get returns the application or ErrApplicationNotFound.
	Get(ctx context.Context, id ApplicationID) (*Application, error)

	// ListByEmployee returns the employee's applications matching the
	// filter, ordered by leave date ascending.
	ListByEmployee(ctx context.Context, id EmployeeID, filter Filter) ([]*Application, error)

	// List returns all applications matching the filter, newest
	// submission first.
	List(ctx context.Context, filter Filter) ([]*Application, error)
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// Directory supplies employee records. The core only needs identifier,
// display name, and registration date (the registration year anchors the
// carry-over chain).
type Directory interface {
	// CreateEmployee registers an employee. Returns ErrDuplicateEmployee
	// if the id is taken.
	CreateEmployee(ctx context.Context, emp *Employee) error

	// GetEmployee returns the employee or ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// ListEmployees returns all employees, ordered by id.
	ListEmployees(ctx context.Context) ([]*Employee, error)
}
