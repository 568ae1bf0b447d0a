/*
Package sqlite provides a SQLite-backed implementation of the leave
persistence interfaces.

PURPOSE:
  Implements leave.ApplicationStore and leave.Directory using SQLite.
  The same patterns apply to PostgreSQL - only minor dialect differences.

KEY TABLES:
  employees:    directory entries, immutable after insert
  applications: leave applications; each row is written at submission
                and updated exactly once, by the decision

DECIMALS:
  Day amounts are stored as TEXT and parsed with shopspring/decimal.
  Storing REAL would reintroduce the float drift the engine avoids.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the connection. The
  per-employee serialization required by the approval workflow lives in
  the leave package; the store only guarantees each statement is atomic.

WAL MODE:
  Opened with WAL so readers don't block and crash recovery is sane.

USAGE:
  store, err := sqlite.New("./holiday.db")   // or ":memory:"
  svc := leave.NewService(store, store, leave.SystemClock{})

SEE ALSO:
  - leave/store.go: interface definitions
  - leave/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/holiday-ledger/leave"
)

// Store implements leave.ApplicationStore and leave.Directory.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ leave.ApplicationStore = (*Store)(nil)
	_ leave.Directory        = (*Store)(nil)
)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS applications (
		id               TEXT PRIMARY KEY,
		employee_id      TEXT NOT NULL REFERENCES employees(id),
		leave_date       TEXT NOT NULL,
		leave_type       TEXT NOT NULL,
		reason           TEXT NOT NULL DEFAULT '',
		requested_by     TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		used_carry_over  TEXT NOT NULL DEFAULT '0',
		used_annual      TEXT NOT NULL DEFAULT '0',
		decided_by       TEXT,
		decision_comment TEXT,
		decided_at       TEXT,
		created_at       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_applications_employee_date
		ON applications(employee_id, leave_date);
	CREATE INDEX IF NOT EXISTS idx_applications_status
		ON applications(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// APPLICATION STORE
// =============================================================================

// Save inserts or updates an application.
func (s *Store) Save(ctx context.Context, app *leave.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var decidedBy, decisionComment, decidedAt sql.NullString
	if app.Decision != nil {
		decidedBy = sql.NullString{String: app.Decision.ActedBy, Valid: true}
		decisionComment = sql.NullString{String: app.Decision.Comment, Valid: true}
		decidedAt = sql.NullString{String: app.Decision.ActedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, employee_id, leave_date, leave_type, reason, requested_by,
			status, used_carry_over, used_annual,
			decided_by, decision_comment, decided_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			used_carry_over = excluded.used_carry_over,
			used_annual = excluded.used_annual,
			decided_by = excluded.decided_by,
			decision_comment = excluded.decision_comment,
			decided_at = excluded.decided_at`,
		string(app.ID), string(app.EmployeeID), app.Date.String(), string(app.Type),
		app.Reason, app.RequestedBy, string(app.Status),
		app.Breakdown.CarryOver.String(), app.Breakdown.Annual.String(),
		decidedBy, decisionComment, decidedAt,
		app.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save application %s: %w", app.ID, err)
	}
	return nil
}

// Get returns the application or leave.ErrApplicationNotFound.
func (s *Store) Get(ctx context.Context, id leave.ApplicationID) (*leave.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectApplication+` WHERE id = ?`, string(id))
	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, leave.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application %s: %w", id, err)
	}
	return app, nil
}

// ListByEmployee returns the employee's applications matching the filter,
// ordered by leave date.
func (s *Store) ListByEmployee(ctx context.Context, id leave.EmployeeID, filter leave.Filter) ([]*leave.Application, error) {
	filter.EmployeeID = &id
	return s.list(ctx, filter, "leave_date ASC, created_at ASC, id ASC")
}

// List returns applications matching the filter, newest submission first.
func (s *Store) List(ctx context.Context, filter leave.Filter) ([]*leave.Application, error) {
	return s.list(ctx, filter, "created_at DESC, id ASC")
}

func (s *Store) list(ctx context.Context, filter leave.Filter, order string) ([]*leave.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectApplication + ` WHERE 1=1`
	var args []any
	if filter.EmployeeID != nil {
		query += ` AND employee_id = ?`
		args = append(args, string(*filter.EmployeeID))
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.From != nil {
		query += ` AND leave_date >= ?`
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		query += ` AND leave_date <= ?`
		args = append(args, filter.To.String())
	}
	query += ` ORDER BY ` + order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var result []*leave.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

const selectApplication = `
	SELECT id, employee_id, leave_date, leave_type, reason, requested_by,
	       status, used_carry_over, used_annual,
	       decided_by, decision_comment, decided_at, created_at
	FROM applications`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*leave.Application, error) {
	var (
		id, employeeID, leaveDate, leaveType  string
		reason, requestedBy, status           string
		usedCarryOver, usedAnnual, createdAt  string
		decidedBy, decisionComment, decidedAt sql.NullString
	)
	err := row.Scan(&id, &employeeID, &leaveDate, &leaveType, &reason, &requestedBy,
		&status, &usedCarryOver, &usedAnnual,
		&decidedBy, &decisionComment, &decidedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	date, err := leave.ParseDate(leaveDate)
	if err != nil {
		return nil, fmt.Errorf("bad leave_date %q: %w", leaveDate, err)
	}
	carry, err := decimal.NewFromString(usedCarryOver)
	if err != nil {
		return nil, fmt.Errorf("bad used_carry_over %q: %w", usedCarryOver, err)
	}
	annual, err := decimal.NewFromString(usedAnnual)
	if err != nil {
		return nil, fmt.Errorf("bad used_annual %q: %w", usedAnnual, err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}

	app := &leave.Application{
		ID:          leave.ApplicationID(id),
		EmployeeID:  leave.EmployeeID(employeeID),
		Date:        date,
		Type:        leave.LeaveType(leaveType),
		Reason:      reason,
		RequestedBy: requestedBy,
		Status:      leave.Status(status),
		Breakdown:   leave.Breakdown{CarryOver: carry, Annual: annual},
		CreatedAt:   created,
	}
	if decidedBy.Valid {
		actedAt, err := time.Parse(time.RFC3339Nano, decidedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad decided_at %q: %w", decidedAt.String, err)
		}
		app.Decision = &leave.DecisionRecord{
			ActedBy: decidedBy.String,
			Comment: decisionComment.String,
			ActedAt: actedAt,
		}
	}
	return app, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

// CreateEmployee registers an employee. Returns leave.ErrDuplicateEmployee
// if the id is taken.
func (s *Store) CreateEmployee(ctx context.Context, emp *leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM employees WHERE id = ?`, string(emp.ID)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check employee %s: %w", emp.ID, err)
	}
	if exists > 0 {
		return leave.ErrDuplicateEmployee
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, created_at) VALUES (?, ?, ?)`,
		string(emp.ID), emp.Name, emp.CreatedAt.String())
	if err != nil {
		return fmt.Errorf("failed to create employee %s: %w", emp.ID, err)
	}
	return nil
}

// GetEmployee returns the employee or leave.ErrEmployeeNotFound.
func (s *Store) GetEmployee(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, created_at FROM employees WHERE id = ?`, string(id)).
		Scan(&name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, leave.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee %s: %w", id, err)
	}

	created, err := leave.ParseDate(createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	return &leave.Employee{ID: id, Name: name, CreatedAt: created}, nil
}

// ListEmployees returns all employees ordered by id.
func (s *Store) ListEmployees(ctx context.Context) ([]*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var result []*leave.Employee
	for rows.Next() {
		var id, name, createdAt string
		if err := rows.Scan(&id, &name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		created, err := leave.ParseDate(createdAt)
		if err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
		}
		result = append(result, &leave.Employee{
			ID:        leave.EmployeeID(id),
			Name:      name,
			CreatedAt: created,
		})
	}
	return result, rows.Err()
}
