package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warp/holiday-ledger/leave"
	"github.com/warp/holiday-ledger/leave/store"
)

func seedApp(t *testing.T, mem *store.Memory, id string, d leave.Date, createdAt time.Time) {
	t.Helper()
	require.NoError(t, mem.Save(context.Background(), &leave.Application{
		ID:         leave.ApplicationID(id),
		EmployeeID: "emp-1",
		Date:       d,
		Type:       leave.LeaveFull,
		Status:     leave.StatusPending,
		Breakdown:  leave.ZeroBreakdown(),
		CreatedAt:  createdAt,
	}))
}

func TestList_TiedTimestampsOrderByID(t *testing.T) {
	// Identical CreatedAt values must not produce a different order on
	// every call; id is the tie-breaker.

	mem := store.NewMemory()
	require.NoError(t, mem.CreateEmployee(context.Background(),
		&leave.Employee{ID: "emp-1", Name: "Alice", CreatedAt: leave.NewDate(2024, time.January, 5)}))

	at := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	seedApp(t, mem, "app-c", leave.NewDate(2024, time.July, 3), at)
	seedApp(t, mem, "app-a", leave.NewDate(2024, time.July, 1), at)
	seedApp(t, mem, "app-b", leave.NewDate(2024, time.July, 2), at)

	for i := 0; i < 5; i++ {
		all, err := mem.List(context.Background(), leave.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, leave.ApplicationID("app-a"), all[0].ID)
		require.Equal(t, leave.ApplicationID("app-b"), all[1].ID)
		require.Equal(t, leave.ApplicationID("app-c"), all[2].ID)
	}
}

func TestListByEmployee_TiedDatesOrderByCreationThenID(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.CreateEmployee(context.Background(),
		&leave.Employee{ID: "emp-1", Name: "Alice", CreatedAt: leave.NewDate(2024, time.January, 5)}))

	day := leave.NewDate(2024, time.July, 1)
	at := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	seedApp(t, mem, "app-b", day, at)
	seedApp(t, mem, "app-a", day, at)
	seedApp(t, mem, "app-early", day, at.Add(-time.Hour))

	apps, err := mem.ListByEmployee(context.Background(), "emp-1", leave.Filter{})
	require.NoError(t, err)
	require.Len(t, apps, 3)
	require.Equal(t, leave.ApplicationID("app-early"), apps[0].ID)
	require.Equal(t, leave.ApplicationID("app-a"), apps[1].ID)
	require.Equal(t, leave.ApplicationID("app-b"), apps[2].ID)
}
