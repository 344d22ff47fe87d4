package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"hrmpay/internal/platform/crypto"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLiteStore is the embedded StoreAPI backend used for local runs and tests.
// Writers are serialized with a mutex; the UNIQUE constraint still guards payslips.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	crypto *crypto.Service
	now    func() time.Time
}

// NewSQLiteStore opens path and applies the schema. Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string, cryptoSvc *crypto.Service) (*SQLiteStore, error) {
	dsn := path + "?_foreign_keys=on"
	if path != ":memory:" {
		dsn += "&_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db, crypto: cryptoSvc, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storageError("ping", err)
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		employee_code TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		department TEXT,
		designation TEXT,
		basic_salary TEXT,
		basic_salary_enc BLOB,
		date_of_joining TEXT,
		personal_email TEXT,
		phone TEXT
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		check_in TEXT,
		check_out TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_employee_date ON attendance(employee_id, date);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		leave_type TEXT,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee ON leave_requests(employee_id, status);

	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		year INTEGER NOT NULL,
		basic_salary TEXT NOT NULL,
		working_days INTEGER NOT NULL,
		present_days INTEGER NOT NULL,
		unpaid_leaves INTEGER NOT NULL,
		deduction TEXT NOT NULL,
		net_salary TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('DRAFT', 'PUBLISHED')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (employee_id, month, year)
	);
	CREATE INDEX IF NOT EXISTS idx_payslips_period ON payslips(year, month);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveEmployee inserts or replaces employee master data. The salary is written
// encrypted when a key is configured.
func (s *SQLiteStore) SaveEmployee(ctx context.Context, employee Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var plain any
	var encrypted []byte
	if s.crypto != nil && s.crypto.Configured() && !employee.BasicSalary.IsZero() {
		var err error
		encrypted, err = s.crypto.SealAmount(employee.BasicSalary)
		if err != nil {
			return storageError("save employee", err)
		}
	} else if !employee.BasicSalary.IsZero() {
		plain = employee.BasicSalary.String()
	}

	var joined any
	if employee.DateOfJoining != nil {
		joined = employee.DateOfJoining.Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, employee_code, full_name, department, designation,
			basic_salary, basic_salary_enc, date_of_joining, personal_email, phone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			employee_code = excluded.employee_code,
			full_name = excluded.full_name,
			department = excluded.department,
			designation = excluded.designation,
			basic_salary = excluded.basic_salary,
			basic_salary_enc = excluded.basic_salary_enc,
			date_of_joining = excluded.date_of_joining,
			personal_email = excluded.personal_email,
			phone = excluded.phone
	`, employee.ID, employee.EmployeeCode, employee.FullName, nullIfEmpty(employee.Department),
		nullIfEmpty(employee.Designation), plain, encrypted, joined,
		nullIfEmpty(employee.PersonalEmail), nullIfEmpty(employee.Phone))
	if err != nil {
		return storageError("save employee", err)
	}
	return nil
}

func (s *SQLiteStore) AddAttendance(ctx context.Context, record AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (employee_id, date, check_in, check_out) VALUES (?, ?, ?, ?)
	`, record.EmployeeID, record.Date.Format(dateLayout), formatOptionalTime(record.CheckIn), formatOptionalTime(record.CheckOut))
	if err != nil {
		return storageError("add attendance", err)
	}
	return nil
}

func (s *SQLiteStore) AddLeaveRequest(ctx context.Context, request LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, employee_id, leave_type, from_date, to_date, status) VALUES (?, ?, ?, ?, ?, ?)
	`, request.ID, request.EmployeeID, nullIfEmpty(request.LeaveType),
		request.FromDate.Format(dateLayout), request.ToDate.Format(dateLayout), strings.ToUpper(request.Status))
	if err != nil {
		return storageError("add leave request", err)
	}
	return nil
}

func (s *SQLiteStore) FindEmployee(ctx context.Context, employeeID string) (Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var employee Employee
	var salary decimal.NullDecimal
	var salaryEnc []byte
	var joined sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, employee_code, full_name, COALESCE(department, ''), COALESCE(designation, ''),
			basic_salary, basic_salary_enc, date_of_joining,
			COALESCE(personal_email, ''), COALESCE(phone, '')
		FROM employees WHERE id = ?
	`, employeeID).Scan(
		&employee.ID, &employee.EmployeeCode, &employee.FullName, &employee.Department, &employee.Designation,
		&salary, &salaryEnc, &joined, &employee.PersonalEmail, &employee.Phone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, storageError("find employee", err)
	}
	if joined.Valid {
		t, err := time.Parse(dateLayout, joined.String)
		if err != nil {
			return Employee{}, storageError("find employee", err)
		}
		employee.DateOfJoining = &t
	}
	employee.BasicSalary, err = resolveSalary(s.crypto, salary, salaryEnc)
	if err != nil {
		return Employee{}, storageError("find employee", err)
	}
	return employee, nil
}

func (s *SQLiteStore) ListAttendance(ctx context.Context, employeeID string, start, end time.Time) ([]AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, date, check_in, check_out
		FROM attendance
		WHERE employee_id = ? AND date BETWEEN ? AND ?
		ORDER BY date
	`, employeeID, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, storageError("list attendance", err)
	}
	defer rows.Close()

	var records []AttendanceRecord
	for rows.Next() {
		var record AttendanceRecord
		var date string
		var checkIn, checkOut sql.NullString
		if err := rows.Scan(&record.EmployeeID, &date, &checkIn, &checkOut); err != nil {
			return nil, storageError("list attendance", err)
		}
		if record.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, storageError("list attendance", err)
		}
		record.CheckIn = parseOptionalTime(checkIn)
		record.CheckOut = parseOptionalTime(checkOut)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list attendance", err)
	}
	return records, nil
}

func (s *SQLiteStore) ListApprovedLeaves(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, status, COALESCE(leave_type, ''), from_date, to_date
		FROM leave_requests
		WHERE employee_id = ? AND status = ? AND from_date <= ? AND to_date >= ?
		ORDER BY from_date
	`, employeeID, LeaveStatusApproved, end.Format(dateLayout), start.Format(dateLayout))
	if err != nil {
		return nil, storageError("list leaves", err)
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		var request LeaveRequest
		var from, to string
		if err := rows.Scan(&request.ID, &request.EmployeeID, &request.Status, &request.LeaveType, &from, &to); err != nil {
			return nil, storageError("list leaves", err)
		}
		if request.FromDate, err = time.Parse(dateLayout, from); err != nil {
			return nil, storageError("list leaves", err)
		}
		if request.ToDate, err = time.Parse(dateLayout, to); err != nil {
			return nil, storageError("list leaves", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list leaves", err)
	}
	return requests, nil
}

const sqlitePayslipSelect = `
	SELECT p.id, p.employee_id, p.month, p.year, p.basic_salary,
		p.working_days, p.present_days, p.unpaid_leaves, p.deduction, p.net_salary,
		p.status, p.created_at, p.updated_at,
		e.full_name, e.employee_code, COALESCE(e.department, ''), COALESCE(e.designation, '')
	FROM payslips p
	JOIN employees e ON e.id = p.employee_id
`

func (s *SQLiteStore) UpsertPayslip(ctx context.Context, payslip Payslip) (Payslip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Format(sqliteTimeLayout)
	var status, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO payslips (id, employee_id, month, year, basic_salary, working_days, present_days,
			unpaid_leaves, deduction, net_salary, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, month, year) DO UPDATE SET
			basic_salary = excluded.basic_salary,
			working_days = excluded.working_days,
			present_days = excluded.present_days,
			unpaid_leaves = excluded.unpaid_leaves,
			deduction = excluded.deduction,
			net_salary = excluded.net_salary,
			updated_at = excluded.updated_at
		RETURNING id, status, created_at, updated_at
	`, uuid.NewString(), payslip.EmployeeID, payslip.Month, payslip.Year, formatMoney(payslip.BasicSalary),
		payslip.WorkingDays, payslip.PresentDays, payslip.UnpaidLeaves,
		formatMoney(payslip.Deduction), formatMoney(payslip.NetSalary),
		StatusDraft.String(), now, now,
	).Scan(&payslip.ID, &status, &createdAt, &updatedAt)
	if err != nil {
		return Payslip{}, storageError("upsert payslip", err)
	}
	if err := fillPayslipMeta(&payslip, status, createdAt, updatedAt); err != nil {
		return Payslip{}, storageError("upsert payslip", err)
	}
	return payslip, nil
}

func (s *SQLiteStore) PublishPayslip(ctx context.Context, payslipID string) (Payslip, error) {
	s.mu.Lock()
	res, err := s.db.ExecContext(ctx, `UPDATE payslips SET status = ?, updated_at = ? WHERE id = ?`,
		StatusPublished.String(), s.now().UTC().Format(sqliteTimeLayout), payslipID)
	s.mu.Unlock()
	if err != nil {
		return Payslip{}, storageError("publish payslip", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Payslip{}, storageError("publish payslip", err)
	}
	if affected == 0 {
		return Payslip{}, ErrPayslipNotFound
	}
	return s.GetPayslip(ctx, payslipID)
}

func (s *SQLiteStore) GetPayslip(ctx context.Context, payslipID string) (Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payslip, err := scanSQLitePayslip(s.db.QueryRowContext(ctx, sqlitePayslipSelect+" WHERE p.id = ?", payslipID))
	if errors.Is(err, sql.ErrNoRows) {
		return Payslip{}, ErrPayslipNotFound
	}
	if err != nil {
		return Payslip{}, storageError("get payslip", err)
	}
	return payslip, nil
}

func (s *SQLiteStore) ListPayslips(ctx context.Context, filter Filter) ([]Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conditions []string
	var args []any
	if filter.Month != nil {
		conditions = append(conditions, "p.month = ?")
		args = append(args, *filter.Month)
	}
	if filter.Year != nil {
		conditions = append(conditions, "p.year = ?")
		args = append(args, *filter.Year)
	}
	if filter.EmployeeID != nil {
		conditions = append(conditions, "p.employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "p.status = ?")
		args = append(args, filter.Status.String())
	}
	query := sqlitePayslipSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.year DESC, p.month DESC, e.employee_code"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("list payslips", err)
	}
	defer rows.Close()

	out := []Payslip{}
	for rows.Next() {
		payslip, err := scanSQLitePayslip(rows)
		if err != nil {
			return nil, storageError("list payslips", err)
		}
		out = append(out, payslip)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list payslips", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePayslip(row rowScanner) (Payslip, error) {
	var payslip Payslip
	var status, createdAt, updatedAt string
	summary := &EmployeeSummary{}
	if err := row.Scan(
		&payslip.ID, &payslip.EmployeeID, &payslip.Month, &payslip.Year, &payslip.BasicSalary,
		&payslip.WorkingDays, &payslip.PresentDays, &payslip.UnpaidLeaves, &payslip.Deduction, &payslip.NetSalary,
		&status, &createdAt, &updatedAt,
		&summary.FullName, &summary.EmployeeCode, &summary.Department, &summary.Designation,
	); err != nil {
		return Payslip{}, err
	}
	if err := fillPayslipMeta(&payslip, status, createdAt, updatedAt); err != nil {
		return Payslip{}, err
	}
	payslip.Employee = summary
	return payslip, nil
}

func fillPayslipMeta(payslip *Payslip, status, createdAt, updatedAt string) error {
	var err error
	if payslip.Status, err = ParseStatus(status); err != nil {
		return err
	}
	if payslip.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return err
	}
	if payslip.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return err
	}
	return nil
}

func formatOptionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func parseOptionalTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	t, err := time.Parse(sqliteTimeLayout, value.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
