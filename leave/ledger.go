/*
ledger.go - Authoritative balance view and consumption

PURPOSE:
  The Ledger is the single source of truth for balance snapshots and
  the only place that records consumption. It delegates entitlement
  arithmetic to the Calculator and owns the deduction order:

    1. carry-over bucket, while the LEAVE DATE is on or before 31 March
       of its year
    2. annual allocation for the remainder

  Rejections never touch the ledger.

CONCURRENCY:
  A per-employee mutex serializes every balance read-modify-write. Two
  concurrent approvals for the same employee could otherwise both read
  the same "remaining" and both succeed when only one should. Different
  employees' ledgers are independent and run in parallel.

INVARIANTS:
  - remaining >= 0 per employee/year, enforced at decision time
  - carry-over consumed never exceeds min(5, prior year's unused)
  - leave dated 1 April or later draws from the annual bucket only,
    even if carry-over remains unspent

SEE ALSO:
  - entitlement.go: the arithmetic behind CarryOver/Allocation
  - service.go: the approval state machine calling tryConsume
*/
package leave

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Ledger computes balance snapshots and performs deductions.
type Ledger struct {
	store ApplicationStore
	calc  *Calculator
	clock Clock

	mu    sync.Mutex
	locks map[EmployeeID]*sync.Mutex
}

// NewLedger creates a ledger over the given store and directory.
func NewLedger(store ApplicationStore, directory Directory, clock Clock) *Ledger {
	return &Ledger{
		store: store,
		calc:  &Calculator{Store: store, Directory: directory},
		clock: clock,
		locks: make(map[EmployeeID]*sync.Mutex),
	}
}

// lockEmployee acquires the employee's mutex and returns the unlock func.
// All balance reads and read-modify-writes for one employee serialize
// through this lock.
func (l *Ledger) lockEmployee(id EmployeeID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// =============================================================================
// BALANCE
// =============================================================================

// Balance returns the snapshot for the employee and year, evaluated at
// the injected clock's current date.
func (l *Ledger) Balance(ctx context.Context, id EmployeeID, year int) (*BalanceSnapshot, error) {
	return l.BalanceAt(ctx, id, year, l.clock.Now())
}

// BalanceAt returns the snapshot evaluated at an explicit date.
func (l *Ledger) BalanceAt(ctx context.Context, id EmployeeID, year int, asOf Date) (*BalanceSnapshot, error) {
	unlock := l.lockEmployee(id)
	defer unlock()
	return l.balanceLocked(ctx, id, year, asOf)
}

// balanceLocked computes the snapshot. Callers hold the employee lock.
func (l *Ledger) balanceLocked(ctx context.Context, id EmployeeID, year int, asOf Date) (*BalanceSnapshot, error) {
	ent, err := l.calc.Entitlement(ctx, id, year, asOf)
	if err != nil {
		return nil, err
	}

	from := NewDate(year, 1, 1)
	to := NewDate(year, 12, 31)
	status := StatusApproved
	approved, err := l.store.ListByEmployee(ctx, id, Filter{Status: &status, From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to load applications for %s/%d: %w", id, year, err)
	}

	usedCarry := decimal.Zero
	usedAnnual := decimal.Zero
	for _, app := range approved {
		usedCarry = usedCarry.Add(app.Breakdown.CarryOver)
		usedAnnual = usedAnnual.Add(app.Breakdown.Annual)
	}

	return &BalanceSnapshot{
		EmployeeID:         id,
		Year:               year,
		AsOf:               asOf,
		Allocation:         ent.Allocation,
		CarryOver:          ent.CarryOver,
		CarryOverExpiry:    CarryOverExpiry(year),
		CarryOverUsable:    ent.CarryOverUsable,
		UsedAnnual:         usedAnnual,
		UsedCarryOver:      usedCarry,
		RemainingAnnual:    clampZero(ent.Allocation.Sub(usedAnnual)),
		RemainingCarryOver: clampZero(ent.CarryOver.Sub(usedCarry)),
	}, nil
}

// =============================================================================
// CONSUMPTION
// =============================================================================

// tryConsume computes the breakdown for consuming amount days on the
// given leave date. Called only from the approval state machine, with
// the employee lock held. No state is written here; the caller persists
// the breakdown together with the status transition.
//
// Carry-over eligibility is decided by the leave date, not the decision
// date: leave dated past 31 March never spends carry-over.
func (l *Ledger) tryConsume(ctx context.Context, id EmployeeID, date Date, amount decimal.Decimal) (Breakdown, error) {
	year := date.LeaveYear()
	snap, err := l.balanceLocked(ctx, id, year, date)
	if err != nil {
		return Breakdown{}, err
	}

	breakdown := ZeroBreakdown()
	rest := amount

	if !date.After(snap.CarryOverExpiry) && snap.RemainingCarryOver.IsPositive() {
		breakdown.CarryOver = decimal.Min(rest, snap.RemainingCarryOver)
		rest = rest.Sub(breakdown.CarryOver)
	}

	if rest.GreaterThan(snap.RemainingAnnual) {
		available := snap.RemainingAnnual.Add(breakdown.CarryOver)
		return Breakdown{}, &InsufficientBalanceError{
			EmployeeID: id,
			Year:       year,
			Available:  available,
			Requested:  amount,
			Shortfall:  amount.Sub(available),
		}
	}
	breakdown.Annual = rest

	return breakdown, nil
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
