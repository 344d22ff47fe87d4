package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "Sheet1"

var registerHeader = []interface{}{
	"Employee Code", "Name", "Department", "Basic Salary", "Working Days",
	"Present Days", "Unpaid Leaves", "Deduction", "Net Salary", "Status",
}

func RegisterFilename(month, year int) string {
	return fmt.Sprintf("payslip-register-%d-%d.xlsx", month, year)
}

// BuildRegister writes one row per payslip of the period followed by a totals row.
func BuildRegister(period Period, payslips []Payslip) (Document, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(`{"font":{"bold":true},"fill":{"type":"pattern","color":["#E0E7FF"],"pattern":1}}`)
	if err != nil {
		return Document{}, fmt.Errorf("register style: %w", err)
	}
	moneyStyle, err := f.NewStyle(`{"number_format":2}`)
	if err != nil {
		return Document{}, fmt.Errorf("register style: %w", err)
	}

	if err := f.SetSheetRow(registerSheet, "A1", &registerHeader); err != nil {
		return Document{}, fmt.Errorf("register header: %w", err)
	}
	if err := f.SetCellStyle(registerSheet, "A1", "J1", headerStyle); err != nil {
		return Document{}, fmt.Errorf("register header: %w", err)
	}
	for _, col := range registerColumns {
		if err := f.SetColWidth(registerSheet, col.first, col.last, col.width); err != nil {
			return Document{}, fmt.Errorf("register column %s: %w", col.first, err)
		}
	}

	basicTotal, deductionTotal, netTotal := decimal.Zero, decimal.Zero, decimal.Zero
	for i, payslip := range payslips {
		summary := payslip.Employee
		if summary == nil {
			summary = &EmployeeSummary{}
		}
		row := []interface{}{
			summary.EmployeeCode,
			summary.FullName,
			summary.Department,
			payslip.BasicSalary.InexactFloat64(),
			payslip.WorkingDays,
			payslip.PresentDays,
			payslip.UnpaidLeaves,
			payslip.Deduction.InexactFloat64(),
			payslip.NetSalary.InexactFloat64(),
			payslip.Status.String(),
		}
		if err := writeRegisterRow(f, i+2, row, moneyStyle); err != nil {
			return Document{}, err
		}
		basicTotal = basicTotal.Add(payslip.BasicSalary)
		deductionTotal = deductionTotal.Add(payslip.Deduction)
		netTotal = netTotal.Add(payslip.NetSalary)
	}

	totals := []interface{}{
		"TOTAL", fmt.Sprintf("%d payslips", len(payslips)), period.String(),
		basicTotal.InexactFloat64(), nil, nil, nil,
		deductionTotal.InexactFloat64(), netTotal.InexactFloat64(), nil,
	}
	totalRow := len(payslips) + 2
	if err := writeRegisterRow(f, totalRow, totals, moneyStyle); err != nil {
		return Document{}, err
	}
	first, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return Document{}, fmt.Errorf("register totals: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(registerHeader), totalRow)
	if err != nil {
		return Document{}, fmt.Errorf("register totals: %w", err)
	}
	if err := f.SetCellStyle(registerSheet, first, last, headerStyle); err != nil {
		return Document{}, fmt.Errorf("register totals: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Document{}, fmt.Errorf("write register: %w", err)
	}
	return Document{
		Filename:    RegisterFilename(period.Month, period.Year),
		ContentType: ContentTypeXLSX,
		Body:        buf.Bytes(),
	}, nil
}

var registerColumns = []struct {
	first, last string
	width       float64
}{
	{"A", "A", 16},
	{"B", "C", 28},
	{"D", "J", 15},
}

func writeRegisterRow(f *excelize.File, row int, values []interface{}, moneyStyle int) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("register row %d: %w", row, err)
	}
	if err := f.SetSheetRow(registerSheet, cell, &values); err != nil {
		return fmt.Errorf("register row %d: %w", row, err)
	}
	for _, col := range []int{4, 8, 9} {
		money, _ := excelize.CoordinatesToCellName(col, row)
		if err := f.SetCellStyle(registerSheet, money, money, moneyStyle); err != nil {
			return fmt.Errorf("register row %d: %w", row, err)
		}
	}
	return nil
}
