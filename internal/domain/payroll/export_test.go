package payroll

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildRegisterRowsAndTotals(t *testing.T) {
	period, err := ResolvePeriod(2, 2024)
	require.NoError(t, err)

	first, _ := samplePayslip()
	first.Employee = &EmployeeSummary{FullName: "Asha Rao", EmployeeCode: "E001", Department: "Finance"}
	second := Payslip{
		EmployeeID: "emp-2", Month: 2, Year: 2024,
		BasicSalary: decimal.RequireFromString("12000.50"), WorkingDays: 29, PresentDays: 29,
		Deduction: decimal.Zero, NetSalary: decimal.RequireFromString("12000.50"),
		Status:   StatusDraft,
		Employee: &EmployeeSummary{FullName: "Ravi Iyer", EmployeeCode: "E002", Department: "Sales"},
	}

	doc, err := BuildRegister(period, []Payslip{first, second})
	require.NoError(t, err)
	assert.Equal(t, "payslip-register-2-2024.xlsx", doc.Filename)
	assert.Equal(t, ContentTypeXLSX, doc.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(doc.Body))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(registerSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Employee Code", rows[0][0])
	assert.Equal(t, "Status", rows[0][9])

	assert.Equal(t, []string{"E001", "Asha Rao", "Finance"}, rows[1][:3])
	assert.Equal(t, "PUBLISHED", rows[1][9])
	assert.Equal(t, "DRAFT", rows[2][9])
	assertMoneyCell(t, "2068.97", rows[1][7])

	assert.Equal(t, "TOTAL", rows[3][0])
	assert.Equal(t, "2/2024", rows[3][2])
	assertMoneyCell(t, "42000.50", rows[3][3])
	assertMoneyCell(t, "2068.97", rows[3][7])
	assertMoneyCell(t, "39931.53", rows[3][8])

	for col, want := range map[string]float64{"A": 16, "C": 28, "J": 15} {
		width, err := book.GetColWidth(registerSheet, col)
		require.NoError(t, err)
		assert.Equal(t, want, width, "column %s", col)
	}
}

func TestBuildRegisterEmptyMonth(t *testing.T) {
	period, err := ResolvePeriod(7, 2025)
	require.NoError(t, err)

	doc, err := BuildRegister(period, nil)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(doc.Body))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "0 payslips", rows[1][1])
}

func assertMoneyCell(t *testing.T, want, raw string) {
	t.Helper()
	got, err := decimal.NewFromString(raw)
	require.NoError(t, err, "cell %q", raw)
	assert.True(t, decimal.RequireFromString(want).Equal(got.Round(2)), "want %s got %s", want, raw)
}
