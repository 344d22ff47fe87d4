package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (s *Store) FindEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var employee Employee
	var salary decimal.NullDecimal
	var salaryEnc []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_code, full_name, COALESCE(department, ''), COALESCE(designation, ''),
           basic_salary, basic_salary_enc, date_of_joining,
           COALESCE(personal_email, ''), COALESCE(phone, '')
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(
		&employee.ID, &employee.EmployeeCode, &employee.FullName, &employee.Department, &employee.Designation,
		&salary, &salaryEnc, &employee.DateOfJoining,
		&employee.PersonalEmail, &employee.Phone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, storageError("find employee", err)
	}
	employee.BasicSalary, err = resolveSalary(s.Crypto, salary, salaryEnc)
	if err != nil {
		return Employee{}, storageError("find employee", err)
	}
	return employee, nil
}

func (s *Store) ListAttendance(ctx context.Context, employeeID string, start, end time.Time) ([]AttendanceRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, date, check_in, check_out
    FROM attendance
    WHERE employee_id = $1 AND date BETWEEN $2 AND $3
    ORDER BY date
  `, employeeID, start, end)
	if err != nil {
		return nil, storageError("list attendance", err)
	}
	defer rows.Close()

	var records []AttendanceRecord
	for rows.Next() {
		var record AttendanceRecord
		if err := rows.Scan(&record.EmployeeID, &record.Date, &record.CheckIn, &record.CheckOut); err != nil {
			return nil, storageError("list attendance", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list attendance", err)
	}
	return records, nil
}

func (s *Store) ListApprovedLeaves(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, employee_id, status, COALESCE(leave_type, ''), from_date, to_date
    FROM leave_requests
    WHERE employee_id = $1
      AND status = $2
      AND from_date <= $3
      AND to_date >= $4
    ORDER BY from_date
  `, employeeID, LeaveStatusApproved, end, start)
	if err != nil {
		return nil, storageError("list leaves", err)
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		var request LeaveRequest
		if err := rows.Scan(&request.ID, &request.EmployeeID, &request.Status, &request.LeaveType, &request.FromDate, &request.ToDate); err != nil {
			return nil, storageError("list leaves", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list leaves", err)
	}
	return requests, nil
}
