/*
entitlement.go - Allocation and carry-over computation

PURPOSE:
  Pure derivation of what an employee is entitled to in a target leave
  year: the fixed annual allocation, the carry-over brought in from the
  prior year, and whether that carry-over is still usable on the
  evaluation date.

CARRY-OVER CHAIN:
  carry(Y) = min(5, clamp0(25 + carry(Y-1) - used(Y-1)))

  where used(Y-1) sums the durations of all APPROVED applications dated
  in Y-1. Rejected and pending applications never count. The chain is
  anchored at the employee's first year of history (registration year,
  or the earliest approved application if older records exist); before
  the anchor, carry-over is zero. The recursion is evaluated as a single
  forward loop over the years, not as unbounded recursion.

EXPIRY:
  Carry-over into year Y is spendable only while the evaluation date is
  within [Jan 1 Y, Mar 31 Y]. After that it is forfeited - reported for
  transparency, never spendable.

No side effects. A fixed (employee, year, asOf) always yields the same
result for the same set of approved applications.
*/
package leave

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Entitlement is the computed grant for one employee and one leave year.
type Entitlement struct {
	Allocation      decimal.Decimal
	CarryOver       decimal.Decimal
	CarryOverUsable bool
}

// Calculator derives entitlements from the application store and the
// employee directory.
type Calculator struct {
	Store     ApplicationStore
	Directory Directory
}

// Entitlement returns the allocation, carry-over, and carry-over
// usability for the employee in the target year, evaluated at asOf.
func (c *Calculator) Entitlement(ctx context.Context, id EmployeeID, year int, asOf Date) (Entitlement, error) {
	emp, err := c.Directory.GetEmployee(ctx, id)
	if err != nil {
		return Entitlement{}, err
	}

	carry, err := c.carryOverInto(ctx, emp, year)
	if err != nil {
		return Entitlement{}, err
	}

	usable := asOf.LeaveYear() == year && !asOf.After(CarryOverExpiry(year))

	return Entitlement{
		Allocation:      AnnualAllocation,
		CarryOver:       carry,
		CarryOverUsable: usable,
	}, nil
}

// carryOverInto walks the carry-over chain from the employee's first year
// of history up to the target year.
func (c *Calculator) carryOverInto(ctx context.Context, emp *Employee, year int) (decimal.Decimal, error) {
	approved, err := c.approvedApplications(ctx, emp.ID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	start := historyStart(emp, approved)
	if start == 0 || year <= start {
		// No prior history: nothing to carry.
		return decimal.Zero, nil
	}

	usedByYear := make(map[int]decimal.Decimal)
	for _, app := range approved {
		y := app.Date.LeaveYear()
		usedByYear[y] = usedByYear[y].Add(app.Duration())
	}

	carry := decimal.Zero
	for y := start + 1; y <= year; y++ {
		unused := AnnualAllocation.Add(carry).Sub(usedByYear[y-1])
		if unused.IsNegative() {
			unused = decimal.Zero
		}
		carry = decimal.Min(MaxCarryOver, unused)
	}
	return carry, nil
}

func (c *Calculator) approvedApplications(ctx context.Context, id EmployeeID) ([]*Application, error) {
	apps, err := c.Store.ListByEmployee(ctx, id, StatusFilter(StatusApproved))
	if err != nil {
		return nil, fmt.Errorf("failed to load approved applications: %w", err)
	}
	return apps, nil
}

// historyStart returns the first leave year the employee has any history
// in, or 0 if there is none. Registration anchors the chain; an approved
// application older than the registration record extends it backwards.
func historyStart(emp *Employee, approved []*Application) int {
	start := 0
	if !emp.CreatedAt.IsZero() {
		start = emp.CreatedAt.LeaveYear()
	}
	for _, app := range approved {
		if y := app.Date.LeaveYear(); start == 0 || y < start {
			start = y
		}
	}
	return start
}
