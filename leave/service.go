/*
service.go - Submission workflow and the approval state machine

PURPOSE:
  Orchestrates the application lifecycle:

    submit ──▶ pending ──▶ approved   (deducts balance atomically)
                      └──▶ rejected   (no ledger interaction)

  Both terminal states are irreversible. Deciding an already-decided
  application fails with AlreadyDecidedError carrying the terminal
  record, so a retry is detectable and never silently re-applied.

DECISION-TIME CHECKING:
  Submission only checks calendar conflicts. Balance sufficiency is
  re-checked inside the employee's critical section at approval time:
  the balance read, the deduction, and the status write happen under
  one per-employee lock, so a concurrent approval cannot double-spend.

SEE ALSO:
  - validator.go: the submission-time conflict rules
  - ledger.go: balance snapshots and tryConsume
*/
package leave

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service is the engine's entry point: employee registration, leave
// submission, balance queries, and decisions.
type Service struct {
	store     ApplicationStore
	directory Directory
	ledger    *Ledger
	clock     Clock
}

// NewService wires a service over the given store and directory.
func NewService(store ApplicationStore, directory Directory, clock Clock) *Service {
	return &Service{
		store:     store,
		directory: directory,
		ledger:    NewLedger(store, directory, clock),
		clock:     clock,
	}
}

// Ledger exposes the underlying ledger for balance queries.
func (s *Service) Ledger() *Ledger { return s.ledger }

// =============================================================================
// EMPLOYEE REGISTRATION
// =============================================================================

// RegisterEmployee creates a directory entry. An empty id gets a
// generated short identifier.
func (s *Service) RegisterEmployee(ctx context.Context, name string, id EmployeeID) (*Employee, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if id == "" {
		id = EmployeeID(uuid.NewString()[:8])
	}

	emp := &Employee{
		ID:        id,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.directory.CreateEmployee(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Employee returns a directory entry.
func (s *Service) Employee(ctx context.Context, id EmployeeID) (*Employee, error) {
	return s.directory.GetEmployee(ctx, id)
}

// Employees returns all directory entries.
func (s *Service) Employees(ctx context.Context) ([]*Employee, error) {
	return s.directory.ListEmployees(ctx)
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Apply validates and records a pending application.
//
// Conflict checking runs under the employee lock so two racing
// submissions cannot both slip past the overlap rules.
func (s *Service) Apply(ctx context.Context, employeeID EmployeeID, date Date, leaveType LeaveType, reason, requestedBy string) (*Application, error) {
	if !leaveType.Valid() {
		return nil, &ValidationError{
			Field:   "leave_type",
			Message: "must be one of 'full', 'first_half', or 'second_half'",
		}
	}
	if date.IsZero() {
		return nil, &ValidationError{Field: "date", Message: "date is required"}
	}

	emp, err := s.directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if requestedBy == "" {
		requestedBy = emp.Name
	}

	unlock := s.ledger.lockEmployee(employeeID)
	defer unlock()

	existing, err := s.store.ListByEmployee(ctx, employeeID, Filter{From: &date, To: &date})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing applications: %w", err)
	}
	if conflict := CheckConflict(employeeID, date, leaveType, existing); conflict != nil {
		return nil, conflict
	}

	app := &Application{
		ID:          ApplicationID(uuid.NewString()),
		EmployeeID:  employeeID,
		Date:        date,
		Type:        leaveType,
		Reason:      reason,
		RequestedBy: requestedBy,
		Status:      StatusPending,
		Breakdown:   ZeroBreakdown(),
		CreatedAt:   s.clock.Instant(),
	}
	if err := s.store.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	return app, nil
}

// =============================================================================
// DECISION - The approval state machine
// =============================================================================

// Decide moves a pending application to approved or rejected.
//
// On approval the ledger deduction and the status write form one
// critical section per employee; on insufficient balance the
// application stays pending, untouched. Rejection performs no ledger
// mutation.
func (s *Service) Decide(ctx context.Context, id ApplicationID, approver string, decision Status, comment string) (*Application, error) {
	if approver == "" {
		return nil, &ValidationError{Field: "approver", Message: "approver is required"}
	}
	if decision != StatusApproved && decision != StatusRejected {
		return nil, &ValidationError{
			Field:   "decision",
			Message: "must be either 'approved' or 'rejected'",
		}
	}

	// First read locates the employee; the authoritative read happens
	// inside the critical section.
	app, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.ledger.lockEmployee(app.EmployeeID)
	defer unlock()

	app, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status.Terminal() {
		return nil, &AlreadyDecidedError{Application: app}
	}

	if decision == StatusApproved {
		breakdown, err := s.ledger.tryConsume(ctx, app.EmployeeID, app.Date, app.Duration())
		if err != nil {
			return nil, err
		}
		app.Breakdown = breakdown
	}

	app.Status = decision
	app.Decision = &DecisionRecord{
		ActedBy: approver,
		Comment: comment,
		ActedAt: s.clock.Instant(),
	}
	if err := s.store.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to save decision: %w", err)
	}
	return app, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// CurrentYear returns the leave year at the injected clock.
func (s *Service) CurrentYear() int { return s.clock.Now().LeaveYear() }

// Application returns a single application.
func (s *Service) Application(ctx context.Context, id ApplicationID) (*Application, error) {
	return s.store.Get(ctx, id)
}

// Applications lists applications, newest submission first.
func (s *Service) Applications(ctx context.Context, filter Filter) ([]*Application, error) {
	return s.store.List(ctx, filter)
}

// Balance returns the employee's balance snapshot for the year,
// evaluated at the injected clock.
func (s *Service) Balance(ctx context.Context, id EmployeeID, year int) (*BalanceSnapshot, error) {
	if year == 0 {
		year = s.clock.Now().LeaveYear()
	}
	// Validate the employee before computing.
	if _, err := s.directory.GetEmployee(ctx, id); err != nil {
		return nil, err
	}
	return s.ledger.Balance(ctx, id, year)
}
