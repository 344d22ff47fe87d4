package payroll

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const payslipSelect = `
    SELECT p.id::text, p.employee_id, p.month, p.year, p.basic_salary,
           p.working_days, p.present_days, p.unpaid_leaves, p.deduction, p.net_salary,
           p.status, p.created_at, p.updated_at,
           e.full_name, e.employee_code, COALESCE(e.department, ''), COALESCE(e.designation, '')
    FROM payslips p
    JOIN employees e ON e.id = p.employee_id
`

// UpsertPayslip inserts a DRAFT payslip or refreshes the numeric fields of the
// existing row for the same employee and month. Status and id are preserved.
func (s *Store) UpsertPayslip(ctx context.Context, payslip Payslip) (Payslip, error) {
	var status string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payslips (id, employee_id, month, year, basic_salary, working_days, present_days,
                          unpaid_leaves, deduction, net_salary, status)
    VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9::numeric, $10::numeric, $11)
    ON CONFLICT (employee_id, month, year)
    DO UPDATE SET basic_salary = EXCLUDED.basic_salary,
                  working_days = EXCLUDED.working_days,
                  present_days = EXCLUDED.present_days,
                  unpaid_leaves = EXCLUDED.unpaid_leaves,
                  deduction = EXCLUDED.deduction,
                  net_salary = EXCLUDED.net_salary,
                  updated_at = now()
    RETURNING id::text, status, created_at, updated_at
  `, uuid.NewString(), payslip.EmployeeID, payslip.Month, payslip.Year, payslip.BasicSalary,
		payslip.WorkingDays, payslip.PresentDays, payslip.UnpaidLeaves, payslip.Deduction, payslip.NetSalary,
		StatusDraft.String(),
	).Scan(&payslip.ID, &status, &payslip.CreatedAt, &payslip.UpdatedAt)
	if err != nil {
		return Payslip{}, storageError("upsert payslip", err)
	}
	if payslip.Status, err = ParseStatus(status); err != nil {
		return Payslip{}, storageError("upsert payslip", err)
	}
	return payslip, nil
}

func (s *Store) PublishPayslip(ctx context.Context, payslipID string) (Payslip, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payslips SET status = $1, updated_at = now() WHERE id = $2::uuid
  `, StatusPublished.String(), payslipID)
	if err != nil {
		return Payslip{}, storageError("publish payslip", err)
	}
	if tag.RowsAffected() == 0 {
		return Payslip{}, ErrPayslipNotFound
	}
	return s.GetPayslip(ctx, payslipID)
}

func (s *Store) GetPayslip(ctx context.Context, payslipID string) (Payslip, error) {
	payslip, err := scanPayslip(s.DB.QueryRow(ctx, payslipSelect+" WHERE p.id = $1::uuid", payslipID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payslip{}, ErrPayslipNotFound
	}
	if err != nil {
		return Payslip{}, storageError("get payslip", err)
	}
	return payslip, nil
}

func (s *Store) ListPayslips(ctx context.Context, filter Filter) ([]Payslip, error) {
	var conditions []string
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.Month != nil {
		add("p.month = $%d", *filter.Month)
	}
	if filter.Year != nil {
		add("p.year = $%d", *filter.Year)
	}
	if filter.EmployeeID != nil {
		add("p.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Status != nil {
		add("p.status = $%d", filter.Status.String())
	}

	query := payslipSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.year DESC, p.month DESC, e.employee_code"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("list payslips", err)
	}
	defer rows.Close()

	out := []Payslip{}
	for rows.Next() {
		payslip, err := scanPayslip(rows)
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

func scanPayslip(row pgx.Row) (Payslip, error) {
	var payslip Payslip
	var status string
	summary := &EmployeeSummary{}
	if err := row.Scan(
		&payslip.ID, &payslip.EmployeeID, &payslip.Month, &payslip.Year, &payslip.BasicSalary,
		&payslip.WorkingDays, &payslip.PresentDays, &payslip.UnpaidLeaves, &payslip.Deduction, &payslip.NetSalary,
		&status, &payslip.CreatedAt, &payslip.UpdatedAt,
		&summary.FullName, &summary.EmployeeCode, &summary.Department, &summary.Designation,
	); err != nil {
		return Payslip{}, err
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return Payslip{}, err
	}
	payslip.Status = parsed
	payslip.Employee = summary
	return payslip, nil
}
