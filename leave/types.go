/*
Package leave implements the annual leave ledger and approval engine.

PURPOSE:
  Tracks annual leave entitlement per employee per calendar year:
  25 days a year, up to 5 unused days carried into the next year, and
  a hard carry-over expiry on 31 March. Applications are half-day
  granular and move through a pending -> approved/rejected state
  machine that deducts balance atomically at decision time.

KEY CONCEPTS IN THIS FILE (types.go):
  - LeaveType: closed variant {full, first_half, second_half}
  - Status: closed variant {pending, approved, rejected}
  - Application: a leave request and its (at most one) decision
  - Breakdown: how an approval was paid (carry-over vs annual bucket)
  - BalanceSnapshot: derived per-employee/per-year balance view

DESIGN PRINCIPLES:
  1. Precision: day amounts use decimal.Decimal, never float64
  2. Closed variants: leave types and statuses are typed constants,
     so the deduction and transition logic can be exhaustive
  3. Terminal immutability: an application is mutated exactly once,
     by the decision, and never again

SEE ALSO:
  - entitlement.go: allocation and carry-over computation
  - ledger.go: balance snapshots and consumption
  - service.go: submission and the approval state machine
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// POLICY CONSTANTS
// =============================================================================

var (
	// AnnualAllocation is the number of leave days granted each year.
	AnnualAllocation = decimal.NewFromInt(25)

	// MaxCarryOver caps how many unused days roll into the next year.
	MaxCarryOver = decimal.NewFromInt(5)
)

// CarryOverExpiry returns the last date on which carry-over brought into
// the given year can still be consumed. Leave dated after this draws from
// the annual allocation only; the unused remainder is forfeited.
func CarryOverExpiry(year int) Date {
	return NewDate(year, time.March, 31)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ApplicationID string

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is a directory entry. Immutable after registration; the core
// never deletes employees.
type Employee struct {
	ID        EmployeeID
	Name      string
	CreatedAt Date
}

// =============================================================================
// LEAVE TYPE - Closed variant with derived consumption amount
// =============================================================================

type LeaveType string

const (
	LeaveFull       LeaveType = "full"
	LeaveFirstHalf  LeaveType = "first_half"
	LeaveSecondHalf LeaveType = "second_half"
)

var halfDay = decimal.New(5, -1) // 0.5

// Duration returns the consumption amount in days for this leave type.
func (t LeaveType) Duration() decimal.Decimal {
	switch t {
	case LeaveFull:
		return decimal.NewFromInt(1)
	case LeaveFirstHalf, LeaveSecondHalf:
		return halfDay
	default:
		return decimal.Zero
	}
}

// Valid reports whether t is one of the three known leave types.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveFull, LeaveFirstHalf, LeaveSecondHalf:
		return true
	}
	return false
}

// =============================================================================
// STATUS - Closed variant
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status is final. Terminal applications are
// never mutated again.
func (s Status) Terminal() bool { return s == StatusApproved || s == StatusRejected }

// =============================================================================
// BREAKDOWN - How an approved application was paid
// =============================================================================

// Breakdown records the split of an approval across the two buckets.
// Zero until the application is approved; stays zero on rejection.
type Breakdown struct {
	CarryOver decimal.Decimal
	Annual    decimal.Decimal
}

func (b Breakdown) Total() decimal.Decimal { return b.CarryOver.Add(b.Annual) }

// ZeroBreakdown returns an explicit all-zero breakdown. decimal.Decimal's
// zero value marshals as 0, but constructing it explicitly keeps stored
// records uniform.
func ZeroBreakdown() Breakdown {
	return Breakdown{CarryOver: decimal.Zero, Annual: decimal.Zero}
}

// =============================================================================
// APPLICATION - A leave request and its decision
// =============================================================================

// DecisionRecord captures the terminal transition: who acted, when, and
// any comment. Populated exactly once.
type DecisionRecord struct {
	ActedBy string
	Comment string
	ActedAt time.Time
}

// Application is a leave request. Created pending; decided at most once.
type Application struct {
	ID          ApplicationID
	EmployeeID  EmployeeID
	Date        Date
	Type        LeaveType
	Reason      string
	RequestedBy string
	Status      Status

	// Breakdown is populated on approval and records which buckets paid
	// for the leave. It is the source for carry-over usage sums.
	Breakdown Breakdown

	// Decision is nil while pending.
	Decision *DecisionRecord

	CreatedAt time.Time
}

// Duration returns the days this application consumes if approved.
func (a *Application) Duration() decimal.Decimal { return a.Type.Duration() }

// CountsAgainstDate reports whether the application blocks other requests
// on its date. Rejected applications never conflict.
func (a *Application) CountsAgainstDate() bool { return a.Status != StatusRejected }

// =============================================================================
// BALANCE SNAPSHOT - Derived, never stored
// =============================================================================

// BalanceSnapshot is the computed balance for one employee and one leave
// year, as of an evaluation date.
type BalanceSnapshot struct {
	EmployeeID EmployeeID
	Year       int
	AsOf       Date

	Allocation      decimal.Decimal
	CarryOver       decimal.Decimal // carried in from the prior year, capped
	CarryOverExpiry Date
	CarryOverUsable bool // evaluation date within [Jan 1, Mar 31] of Year

	UsedAnnual    decimal.Decimal
	UsedCarryOver decimal.Decimal

	RemainingAnnual    decimal.Decimal
	RemainingCarryOver decimal.Decimal
}

// Remaining is allocation + carry-over - used, across both buckets.
// Expired carry-over is still included here; Available excludes it.
func (s *BalanceSnapshot) Remaining() decimal.Decimal {
	return s.RemainingAnnual.Add(s.RemainingCarryOver)
}

// Available is what a new approval evaluated at AsOf could actually spend.
func (s *BalanceSnapshot) Available() decimal.Decimal {
	if s.CarryOverUsable {
		return s.RemainingAnnual.Add(s.RemainingCarryOver)
	}
	return s.RemainingAnnual
}
