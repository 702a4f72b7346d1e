/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists employees, leave balances, the request history, and blackout
  periods using SQLite. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:        Employee records including annual quota and manager flag
  balances:         One row per (employee, leave type): accrued and used hours
  leave_requests:   Append-only history of committed requests
  blackout_periods: Company-wide restricted date ranges

BALANCE ARITHMETIC:
  UpdateBalance performs the clamp inside the UPDATE statement so that a
  single SQL round trip both applies the delta and enforces the
  0 <= used <= quota_hours invariant. Hours are stored as TEXT decimals
  to avoid float drift.

APPEND-ONLY ENFORCEMENT:
  leave_requests never sees UPDATE or DELETE. Corrections are recorded as
  new entries.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ldg := ledger.New(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definition
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

// Store implements ledger.Store and the blackout/seed interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		department TEXT,
		position TEXT,
		manager_id TEXT,
		start_date TEXT NOT NULL,
		annual_quota_days INTEGER NOT NULL,
		is_manager BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Balances: one row per (employee, leave type).
	-- Hours stored as TEXT decimals; remaining is always derived.
	CREATE TABLE IF NOT EXISTS balances (
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		accrued_hours TEXT NOT NULL DEFAULT '0',
		used_hours TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (employee_id, leave_type),
		FOREIGN KEY (employee_id) REFERENCES employees(id)
	);

	-- Leave requests (append-only history)
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days_requested INTEGER NOT NULL,
		hours_requested TEXT NOT NULL,
		status TEXT NOT NULL,
		request_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id, request_date DESC);

	-- For long-vacation frequency checks (hot path)
	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee_type_status
		ON leave_requests(employee_id, leave_type, status);

	-- Blackout periods
	CREATE TABLE IF NOT EXISTS blackout_periods (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_blackouts_dates
		ON blackout_periods(start_date, end_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// SaveEmployee upserts an employee and seeds full balances for both leave
// types when the employee has none yet.
func (s *Store) SaveEmployee(ctx context.Context, e leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO employees
		(id, name, email, department, position, manager_id, start_date, annual_quota_days, is_manager, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			department = excluded.department,
			position = excluded.position,
			manager_id = excluded.manager_id,
			start_date = excluded.start_date,
			annual_quota_days = excluded.annual_quota_days,
			is_manager = excluded.is_manager
	`

	var managerID sql.NullString
	if e.ManagerID != nil {
		managerID = sql.NullString{String: *e.ManagerID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Email, e.Department, e.Position, managerID,
		e.StartDate.Format(time.RFC3339),
		e.AnnualQuotaDays, e.IsManager,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}

	for _, t := range []leave.Type{leave.TypeVacation, leave.TypeSick} {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO balances (employee_id, leave_type, accrued_hours, used_hours)
			 VALUES (?, ?, ?, '0')
			 ON CONFLICT(employee_id, leave_type) DO NOTHING`,
			e.ID, string(t), leave.HoursFromDays(e.QuotaDays(t)).Value.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to seed balance: %w", err)
		}
	}
	return nil
}

// GetEmployee retrieves an employee by ID. Returns (nil, nil) when unknown.
func (s *Store) GetEmployee(ctx context.Context, id string) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, department, position, manager_id, start_date, annual_quota_days, is_manager, created_at
		 FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEmployees returns all employees ordered by ID.
func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, department, position, manager_id, start_date, annual_quota_days, is_manager, created_at
		 FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []leave.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*leave.Employee, error) {
	var (
		e         leave.Employee
		email     sql.NullString
		dept      sql.NullString
		position  sql.NullString
		managerID sql.NullString
		startDate string
		createdAt string
	)

	err := row.Scan(&e.ID, &e.Name, &email, &dept, &position, &managerID,
		&startDate, &e.AnnualQuotaDays, &e.IsManager, &createdAt)
	if err != nil {
		return nil, err
	}

	e.Email = email.String
	e.Department = dept.String
	e.Position = position.String
	if managerID.Valid {
		e.ManagerID = &managerID.String
	}
	e.StartDate, _ = time.Parse(time.RFC3339, startDate)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

// =============================================================================
// BALANCE STORE
// =============================================================================

// GetBalance returns the stored balance for an employee and leave type.
func (s *Store) GetBalance(ctx context.Context, employeeID string, t leave.Type) (leave.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var quotaDays int
	err := s.db.QueryRowContext(ctx,
		"SELECT annual_quota_days FROM employees WHERE id = ?", employeeID,
	).Scan(&quotaDays)
	if err == sql.ErrNoRows {
		return leave.Balance{}, &leave.NotFoundError{EmployeeID: employeeID}
	}
	if err != nil {
		return leave.Balance{}, err
	}
	if t == leave.TypeSick {
		quotaDays = leave.SickQuotaDays
	}

	var accrued, used string
	err = s.db.QueryRowContext(ctx,
		"SELECT accrued_hours, used_hours FROM balances WHERE employee_id = ? AND leave_type = ?",
		employeeID, string(t),
	).Scan(&accrued, &used)
	if err == sql.ErrNoRows {
		// Employee exists without a balance row: treat as zero usage.
		return leave.Balance{EmployeeID: employeeID, Type: t, QuotaDays: quotaDays}, nil
	}
	if err != nil {
		return leave.Balance{}, err
	}

	return leave.Balance{
		EmployeeID:   employeeID,
		Type:         t,
		AccruedHours: parseHours(accrued),
		UsedHours:    parseHours(used),
		QuotaDays:    quotaDays,
	}, nil
}

// UpdateBalance adds deltaHours to used hours, clamped to [0, quota_hours]
// inside the UPDATE so the read-modify-write is a single statement.
func (s *Store) UpdateBalance(ctx context.Context, employeeID string, t leave.Type, deltaHours leave.Hours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotaHours, err := s.quotaHoursLocked(ctx, employeeID, t)
	if err != nil {
		return err
	}

	// TEXT decimal columns cast cleanly to REAL for arithmetic; results are
	// whole or half hours so the round trip through REAL is exact.
	query := `
		UPDATE balances
		SET used_hours = CAST(
			MAX(0, MIN(?, CAST(used_hours AS REAL) + ?)) AS TEXT)
		WHERE employee_id = ? AND leave_type = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		quotaHours.Float64(), deltaHours.Float64(), employeeID, string(t))
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO balances (employee_id, leave_type, accrued_hours, used_hours)
			 VALUES (?, ?, ?, ?)`,
			employeeID, string(t), quotaHours.Value.String(),
			deltaHours.Clamp(quotaHours).Value.String())
		if err != nil {
			return fmt.Errorf("failed to insert balance: %w", err)
		}
	}
	return nil
}

// SetBalance overrides the stored accrued/used pair. Seeding only.
func (s *Store) SetBalance(ctx context.Context, employeeID string, t leave.Type, accrued, used leave.Hours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.quotaHoursLocked(ctx, employeeID, t); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO balances (employee_id, leave_type, accrued_hours, used_hours)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(employee_id, leave_type) DO UPDATE SET
			accrued_hours = excluded.accrued_hours,
			used_hours = excluded.used_hours`,
		employeeID, string(t), accrued.Value.String(), used.Value.String())
	return err
}

func (s *Store) quotaHoursLocked(ctx context.Context, employeeID string, t leave.Type) (leave.Hours, error) {
	var quotaDays int
	err := s.db.QueryRowContext(ctx,
		"SELECT annual_quota_days FROM employees WHERE id = ?", employeeID,
	).Scan(&quotaDays)
	if err == sql.ErrNoRows {
		return leave.Hours{}, &leave.NotFoundError{EmployeeID: employeeID}
	}
	if err != nil {
		return leave.Hours{}, err
	}
	if t == leave.TypeSick {
		quotaDays = leave.SickQuotaDays
	}
	return leave.HoursFromDays(quotaDays), nil
}

// =============================================================================
// REQUEST HISTORY (append-only)
// =============================================================================

// AppendRequest records a committed request. No UPDATE or DELETE ever
// touches this table.
func (s *Store) AppendRequest(ctx context.Context, r leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leave_requests
		(id, employee_id, leave_type, start_date, end_date, days_requested, hours_requested, status, request_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.EmployeeID, string(r.Type),
		r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339),
		r.DaysRequested, r.HoursRequested.Value.String(),
		string(r.Status),
		r.RequestDate.Format(time.RFC3339),
		r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("request %s already recorded: %w", r.ID, err)
		}
		return fmt.Errorf("failed to append request: %w", err)
	}
	return nil
}

// ListRequests returns requests, newest first. Empty employeeID matches all
// employees; limit <= 0 means no limit.
func (s *Store) ListRequests(ctx context.Context, employeeID string, limit int) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, days_requested, hours_requested, status, request_date, created_at
		FROM leave_requests
	`
	var args []any
	if employeeID != "" {
		query += " WHERE employee_id = ?"
		args = append(args, employeeID)
	}
	query += " ORDER BY request_date DESC, start_date DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// ListLongVacations returns approved vacation stretches longer than the
// long-vacation threshold, for frequency checks.
func (s *Store) ListLongVacations(ctx context.Context, employeeID string) ([]leave.LongVacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT start_date, end_date, days_requested
		FROM leave_requests
		WHERE employee_id = ? AND leave_type = ? AND status = ? AND days_requested > ?
		ORDER BY start_date ASC
	`

	rows, err := s.db.QueryContext(ctx, query,
		employeeID, string(leave.TypeVacation), string(leave.StatusApproved), leave.LongVacationDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vacations []leave.LongVacation
	for rows.Next() {
		var v leave.LongVacation
		var start, end string
		if err := rows.Scan(&start, &end, &v.Days); err != nil {
			return nil, err
		}
		v.Start, _ = time.Parse(time.RFC3339, start)
		v.End, _ = time.Parse(time.RFC3339, end)
		vacations = append(vacations, v)
	}
	return vacations, rows.Err()
}

func scanRequest(rows *sql.Rows) (leave.Request, error) {
	var (
		r          leave.Request
		leaveType  string
		start, end string
		hours      string
		status     string
		reqDate    string
		createdAt  string
	)

	err := rows.Scan(&r.ID, &r.EmployeeID, &leaveType, &start, &end,
		&r.DaysRequested, &hours, &status, &reqDate, &createdAt)
	if err != nil {
		return r, fmt.Errorf("failed to scan request: %w", err)
	}

	r.Type = leave.Type(leaveType)
	r.Status = leave.RequestStatus(status)
	r.Start, _ = time.Parse(time.RFC3339, start)
	r.End, _ = time.Parse(time.RFC3339, end)
	r.HoursRequested = parseHours(hours)
	r.RequestDate, _ = time.Parse(time.RFC3339, reqDate)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return r, nil
}

// =============================================================================
// BLACKOUT PERIODS
// =============================================================================

// ListBlackouts returns all blackout periods ordered by start date.
func (s *Store) ListBlackouts(ctx context.Context) ([]leave.BlackoutPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, start_date, end_date FROM blackout_periods ORDER BY start_date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []leave.BlackoutPeriod
	for rows.Next() {
		var b leave.BlackoutPeriod
		var start, end string
		if err := rows.Scan(&b.ID, &b.Name, &start, &end); err != nil {
			return nil, err
		}
		b.Start, _ = time.Parse(time.RFC3339, start)
		b.End, _ = time.Parse(time.RFC3339, end)
		periods = append(periods, b)
	}
	return periods, rows.Err()
}

// SaveBlackout upserts a blackout period, assigning an ID when absent.
func (s *Store) SaveBlackout(ctx context.Context, b leave.BlackoutPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	query := `
		INSERT INTO blackout_periods (id, name, start_date, end_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`

	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.Name, b.Start.Format(time.RFC3339), b.End.Format(time.RFC3339))
	return err
}

// DeleteBlackout removes a blackout period.
func (s *Store) DeleteBlackout(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM blackout_periods WHERE id = ?", id)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"leave_requests", "balances", "blackout_periods", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func parseHours(v string) leave.Hours {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return leave.Hours{}
	}
	return leave.Hours{Value: d}
}
