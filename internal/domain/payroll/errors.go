package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPeriod = errors.New("invalid payroll period")
	ErrInvalidSalary = errors.New("employee basic salary not set")
	ErrInvalidInput  = errors.New("invalid payroll input")

	ErrNotFound         = errors.New("not found")
	ErrPayslipNotFound  = fmt.Errorf("payslip %w", ErrNotFound)
	ErrEmployeeNotFound = fmt.Errorf("employee %w", ErrNotFound)

	ErrUnauthorized = errors.New("administrative capability required")
	ErrForbidden    = errors.New("payslip belongs to another employee")

	ErrStorage = errors.New("storage failure")
)

// storageError tags err as a persistence failure while keeping the cause for logs.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
