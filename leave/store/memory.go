// Package store provides an in-memory implementation of the leave
// persistence interfaces, for tests and the dev server.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/holiday-ledger/leave"
)

// =============================================================================
// MEMORY STORE - ApplicationStore + Directory in one
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	applications map[leave.ApplicationID]leave.Application
	employees    map[leave.EmployeeID]leave.Employee
}

func NewMemory() *Memory {
	return &Memory{
		applications: make(map[leave.ApplicationID]leave.Application),
		employees:    make(map[leave.EmployeeID]leave.Employee),
	}
}

// Compile-time interface checks.
var (
	_ leave.ApplicationStore = (*Memory)(nil)
	_ leave.Directory        = (*Memory)(nil)
)

// =============================================================================
// APPLICATION STORE
// =============================================================================

// Save inserts or updates an application. Records are stored by value so
// callers cannot alias the store's copy.
func (m *Memory) Save(_ context.Context, app *leave.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *app
	if app.Decision != nil {
		decision := *app.Decision
		stored.Decision = &decision
	}
	m.applications[app.ID] = stored
	return nil
}

func (m *Memory) Get(_ context.Context, id leave.ApplicationID) (*leave.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.applications[id]
	if !ok {
		return nil, leave.ErrApplicationNotFound
	}
	return copyApplication(stored), nil
}

func (m *Memory) ListByEmployee(_ context.Context, id leave.EmployeeID, filter leave.Filter) ([]*leave.Application, error) {
	filter.EmployeeID = &id

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := m.collect(filter)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) List(_ context.Context, filter leave.Filter) ([]*leave.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := m.collect(filter)
	// Ties on CreatedAt break on id so listings are deterministic.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) collect(filter leave.Filter) []*leave.Application {
	var result []*leave.Application
	for _, stored := range m.applications {
		if filter.Matches(&stored) {
			result = append(result, copyApplication(stored))
		}
	}
	return result
}

func copyApplication(stored leave.Application) *leave.Application {
	out := stored
	if stored.Decision != nil {
		decision := *stored.Decision
		out.Decision = &decision
	}
	return &out
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (m *Memory) CreateEmployee(_ context.Context, emp *leave.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.employees[emp.ID]; exists {
		return leave.ErrDuplicateEmployee
	}
	m.employees[emp.ID] = *emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, leave.ErrEmployeeNotFound
	}
	out := emp
	return &out, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]*leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*leave.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		out := emp
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
