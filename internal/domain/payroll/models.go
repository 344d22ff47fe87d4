package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID            string
	EmployeeCode  string
	FullName      string
	Department    string
	Designation   string
	BasicSalary   decimal.Decimal
	DateOfJoining *time.Time
	PersonalEmail string
	Phone         string
}

// Summary is the subset of employee fields shown alongside a payslip.
func (e Employee) Summary() *EmployeeSummary {
	return &EmployeeSummary{
		FullName:     e.FullName,
		EmployeeCode: e.EmployeeCode,
		Department:   e.Department,
		Designation:  e.Designation,
	}
}

type EmployeeSummary struct {
	FullName     string `json:"fullName"`
	EmployeeCode string `json:"employeeCode"`
	Department   string `json:"department"`
	Designation  string `json:"designation,omitempty"`
}

type AttendanceRecord struct {
	EmployeeID string
	Date       time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
}

type LeaveRequest struct {
	ID         string
	EmployeeID string
	Status     string
	LeaveType  string
	FromDate   time.Time
	ToDate     time.Time
}

type Payslip struct {
	ID           string           `json:"id"`
	EmployeeID   string           `json:"employeeId"`
	Month        int              `json:"month"`
	Year         int              `json:"year"`
	BasicSalary  decimal.Decimal  `json:"basicSalary"`
	WorkingDays  int              `json:"workingDays"`
	PresentDays  int              `json:"presentDays"`
	UnpaidLeaves int              `json:"unpaidLeaves"`
	Deduction    decimal.Decimal  `json:"deduction"`
	NetSalary    decimal.Decimal  `json:"netSalary"`
	Status       Status           `json:"status"`
	Employee     *EmployeeSummary `json:"employee,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// ApplyFigures overwrites the computed payroll fields. Status is never touched here.
func (p *Payslip) ApplyFigures(f Figures) {
	p.BasicSalary = f.BasicSalary
	p.WorkingDays = f.WorkingDays
	p.PresentDays = f.PresentDays
	p.UnpaidLeaves = f.UnpaidLeaves
	p.Deduction = f.Deduction
	p.NetSalary = f.NetSalary
}

// Filter narrows List. Nil fields are not applied.
type Filter struct {
	Month      *int
	Year       *int
	EmployeeID *string
	Status     *Status
}
