package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/holiday-ledger/leave"
	"github.com/warp/holiday-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(year int, month time.Month, day int) leave.Date {
	return leave.NewDate(year, month, day)
}

func seedEmployee(t *testing.T, store *sqlite.Store, id string) {
	t.Helper()
	err := store.CreateEmployee(context.Background(), &leave.Employee{
		ID:        leave.EmployeeID(id),
		Name:      "Employee " + id,
		CreatedAt: date(2023, time.January, 5),
	})
	require.NoError(t, err)
}

// =============================================================================
// EMPLOYEE TESTS
// =============================================================================

func TestEmployees_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp-1")

	emp, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Employee emp-1", emp.Name)
	assert.Equal(t, 2023, emp.CreatedAt.LeaveYear())
}

func TestEmployees_DuplicateRejected(t *testing.T) {
	store := newTestStore(t)

	seedEmployee(t, store, "emp-1")
	err := store.CreateEmployee(context.Background(), &leave.Employee{ID: "emp-1", Name: "Twin"})
	assert.ErrorIs(t, err, leave.ErrDuplicateEmployee)
}

func TestEmployees_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetEmployee(context.Background(), "ghost")
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestEmployees_ListOrderedByID(t *testing.T) {
	store := newTestStore(t)

	seedEmployee(t, store, "emp-b")
	seedEmployee(t, store, "emp-a")

	employees, err := store.ListEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, leave.EmployeeID("emp-a"), employees[0].ID)
	assert.Equal(t, leave.EmployeeID("emp-b"), employees[1].ID)
}

// =============================================================================
// APPLICATION TESTS
// =============================================================================

func TestApplications_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	app := &leave.Application{
		ID:          "app-1",
		EmployeeID:  "emp-1",
		Date:        date(2024, time.March, 15),
		Type:        leave.LeaveFirstHalf,
		Reason:      "dentist",
		RequestedBy: "Employee emp-1",
		Status:      leave.StatusPending,
		Breakdown:   leave.ZeroBreakdown(),
		CreatedAt:   time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, app))

	loaded, err := store.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveFirstHalf, loaded.Type)
	assert.Equal(t, "dentist", loaded.Reason)
	assert.Equal(t, leave.StatusPending, loaded.Status)
	assert.Nil(t, loaded.Decision)
	assert.True(t, loaded.Date.Equal(date(2024, time.March, 15)))
	assert.True(t, loaded.Breakdown.Total().IsZero())
}

func TestApplications_DecisionUpdatePersists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	app := &leave.Application{
		ID:         "app-1",
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 15),
		Type:       leave.LeaveFull,
		Status:     leave.StatusPending,
		Breakdown:  leave.ZeroBreakdown(),
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, app))

	app.Status = leave.StatusApproved
	app.Breakdown = leave.Breakdown{
		CarryOver: decimal.NewFromFloat(0.5),
		Annual:    decimal.NewFromFloat(0.5),
	}
	app.Decision = &leave.DecisionRecord{
		ActedBy: "manager",
		Comment: "ok",
		ActedAt: time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, app))

	loaded, err := store.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, loaded.Status)
	assert.True(t, loaded.Breakdown.CarryOver.Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, loaded.Breakdown.Annual.Equal(decimal.NewFromFloat(0.5)))
	require.NotNil(t, loaded.Decision)
	assert.Equal(t, "manager", loaded.Decision.ActedBy)
	assert.Equal(t, "ok", loaded.Decision.Comment)
	assert.True(t, loaded.Decision.ActedAt.Equal(time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC)))
}

func TestApplications_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, leave.ErrApplicationNotFound)
}

func TestApplications_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")
	seedEmployee(t, store, "emp-2")

	save := func(id, employee string, d leave.Date, status leave.Status, createdAt time.Time) {
		require.NoError(t, store.Save(ctx, &leave.Application{
			ID:         leave.ApplicationID(id),
			EmployeeID: leave.EmployeeID(employee),
			Date:       d,
			Type:       leave.LeaveFull,
			Status:     status,
			Breakdown:  leave.ZeroBreakdown(),
			CreatedAt:  createdAt,
		}))
	}

	base := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)
	save("app-1", "emp-1", date(2024, time.February, 1), leave.StatusApproved, base)
	save("app-2", "emp-1", date(2024, time.June, 10), leave.StatusPending, base.Add(time.Hour))
	save("app-3", "emp-2", date(2024, time.June, 10), leave.StatusApproved, base.Add(2*time.Hour))
	save("app-4", "emp-1", date(2025, time.January, 2), leave.StatusRejected, base.Add(3*time.Hour))

	// By employee, ordered by leave date.
	apps, err := store.ListByEmployee(ctx, "emp-1", leave.Filter{})
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, leave.ApplicationID("app-1"), apps[0].ID)
	assert.Equal(t, leave.ApplicationID("app-4"), apps[2].ID)

	// Status filter.
	apps, err = store.ListByEmployee(ctx, "emp-1", leave.StatusFilter(leave.StatusApproved))
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, leave.ApplicationID("app-1"), apps[0].ID)

	// Date range bounds the leave year.
	from := date(2024, time.January, 1)
	to := date(2024, time.December, 31)
	apps, err = store.ListByEmployee(ctx, "emp-1", leave.Filter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, apps, 2)

	// Global list, newest submission first.
	all, err := store.List(ctx, leave.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, leave.ApplicationID("app-4"), all[0].ID)

	// Global list filtered by status.
	pending, err := store.List(ctx, leave.StatusFilter(leave.StatusPending))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, leave.ApplicationID("app-2"), pending[0].ID)
}

func TestApplications_TiedTimestampsOrderByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	at := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"app-c", "app-a", "app-b"} {
		require.NoError(t, store.Save(ctx, &leave.Application{
			ID:         leave.ApplicationID(id),
			EmployeeID: "emp-1",
			Date:       date(2024, time.July, 1),
			Type:       leave.LeaveFull,
			Status:     leave.StatusPending,
			Breakdown:  leave.ZeroBreakdown(),
			CreatedAt:  at,
		}))
	}

	all, err := store.List(ctx, leave.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, leave.ApplicationID("app-a"), all[0].ID)
	assert.Equal(t, leave.ApplicationID("app-b"), all[1].ID)
	assert.Equal(t, leave.ApplicationID("app-c"), all[2].ID)
}

// =============================================================================
// WORKFLOW OVER SQLITE
// =============================================================================

func TestWorkflow_EndToEndOnSQLite(t *testing.T) {
	// The same lifecycle the memory-store tests cover, against the real
	// persistence layer: apply, approve, and verify the deduction.

	store := newTestStore(t)
	ctx := context.Background()

	clock := leave.FixedClock{Current: date(2024, time.March, 10)}
	svc := leave.NewService(store, store, clock)

	emp, err := svc.RegisterEmployee(ctx, "Sam", "sam-1")
	require.NoError(t, err)

	app, err := svc.Apply(ctx, emp.ID, date(2024, time.March, 15), leave.LeaveFull, "holiday", "")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, app.Status)

	decided, err := svc.Decide(ctx, app.ID, "manager", leave.StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, decided.Status)

	snap, err := svc.Balance(ctx, emp.ID, 2024)
	require.NoError(t, err)
	assert.True(t, snap.UsedAnnual.Equal(decimal.NewFromInt(1)), "registered this year, so no carry-over; the day comes from the annual pool")
	assert.True(t, snap.Remaining().Equal(decimal.NewFromInt(24)))
}
