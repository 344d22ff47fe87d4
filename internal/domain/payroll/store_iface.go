package payroll

import (
	"context"
	"time"
)

// EmployeeReader resolves employee master data owned by the HR core.
type EmployeeReader interface {
	FindEmployee(ctx context.Context, employeeID string) (Employee, error)
}

// AttendanceReader lists attendance rows dated within [start, end].
type AttendanceReader interface {
	ListAttendance(ctx context.Context, employeeID string, start, end time.Time) ([]AttendanceRecord, error)
}

// LeaveReader lists approved leave requests overlapping [start, end].
type LeaveReader interface {
	ListApprovedLeaves(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error)
}

type PayslipRepository interface {
	UpsertPayslip(ctx context.Context, payslip Payslip) (Payslip, error)
	PublishPayslip(ctx context.Context, payslipID string) (Payslip, error)
	ListPayslips(ctx context.Context, filter Filter) ([]Payslip, error)
	GetPayslip(ctx context.Context, payslipID string) (Payslip, error)
}

type StoreAPI interface {
	EmployeeReader
	AttendanceReader
	LeaveReader
	PayslipRepository
	Ping(ctx context.Context) error
}
