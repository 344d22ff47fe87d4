package payroll

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmpay/internal/platform/crypto"
)

func newTestSQLiteStore(t *testing.T, cryptoSvc *crypto.Service) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", cryptoSvc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedEmployee(t *testing.T, store *SQLiteStore, id, code, salary string) Employee {
	t.Helper()
	joined := day(2021, 6, 14)
	employee := Employee{
		ID:            id,
		EmployeeCode:  code,
		FullName:      "Employee " + code,
		Department:    "Engineering",
		Designation:   "Engineer",
		BasicSalary:   decimal.RequireFromString(salary),
		DateOfJoining: &joined,
		PersonalEmail: code + "@example.com",
	}
	require.NoError(t, store.SaveEmployee(context.Background(), employee))
	return employee
}

func TestSQLiteStoreEmployeeRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t, nil)
	seedEmployee(t, store, "emp-1", "E001", "30000.00")

	got, err := store.FindEmployee(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "E001", got.EmployeeCode)
	assert.True(t, got.BasicSalary.Equal(decimal.RequireFromString("30000")))
	require.NotNil(t, got.DateOfJoining)
	assert.Equal(t, day(2021, 6, 14), *got.DateOfJoining)
	assert.Empty(t, got.Phone)

	_, err = store.FindEmployee(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreEncryptedSalary(t *testing.T) {
	cryptoSvc, err := crypto.New(strings.Repeat("ab", 32))
	require.NoError(t, err)
	store := newTestSQLiteStore(t, cryptoSvc)
	seedEmployee(t, store, "emp-1", "E001", "45000.50")

	var plain *string
	var encrypted []byte
	require.NoError(t, store.db.QueryRow(`SELECT basic_salary, basic_salary_enc FROM employees WHERE id = ?`, "emp-1").Scan(&plain, &encrypted))
	assert.Nil(t, plain)
	assert.NotEmpty(t, encrypted)

	got, err := store.FindEmployee(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "45000.50", got.BasicSalary.StringFixed(2))
}

func TestSQLiteStoreAttendanceAndLeaveWindows(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t, nil)
	seedEmployee(t, store, "emp-1", "E001", "1000")

	for _, d := range []time.Time{day(2024, 1, 31), day(2024, 2, 1), day(2024, 2, 29), day(2024, 3, 1)} {
		require.NoError(t, store.AddAttendance(ctx, AttendanceRecord{EmployeeID: "emp-1", Date: d}))
	}
	require.NoError(t, store.AddLeaveRequest(ctx, LeaveRequest{EmployeeID: "emp-1", Status: LeaveStatusApproved, FromDate: day(2024, 1, 30), ToDate: day(2024, 2, 2)}))
	require.NoError(t, store.AddLeaveRequest(ctx, LeaveRequest{EmployeeID: "emp-1", Status: LeaveStatusApproved, FromDate: day(2024, 2, 10), ToDate: day(2024, 2, 10)}))
	require.NoError(t, store.AddLeaveRequest(ctx, LeaveRequest{EmployeeID: "emp-1", Status: LeaveStatusPending, FromDate: day(2024, 2, 12), ToDate: day(2024, 2, 12)}))
	require.NoError(t, store.AddLeaveRequest(ctx, LeaveRequest{EmployeeID: "emp-1", Status: LeaveStatusApproved, FromDate: day(2024, 3, 4), ToDate: day(2024, 3, 5)}))

	period, err := ResolvePeriod(2, 2024)
	require.NoError(t, err)

	records, err := store.ListAttendance(ctx, "emp-1", period.Start, period.End)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, day(2024, 2, 1), records[0].Date)
	assert.Equal(t, day(2024, 2, 29), records[1].Date)

	leaves, err := store.ListApprovedLeaves(ctx, "emp-1", period.Start, period.End)
	require.NoError(t, err)
	require.Len(t, leaves, 2, "overlapping approved requests only")
	assert.Equal(t, 1, CountUnpaidLeaves(leaves, period))
}

func TestSQLiteStoreUpsertKeepsIdentityAndStatus(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t, nil)
	seedEmployee(t, store, "emp-1", "E001", "30000")

	first, err := store.UpsertPayslip(ctx, Payslip{
		EmployeeID: "emp-1", Month: 2, Year: 2024,
		BasicSalary: decimal.RequireFromString("30000"), WorkingDays: 29, PresentDays: 20, UnpaidLeaves: 2,
		Deduction: decimal.RequireFromString("2068.97"), NetSalary: decimal.RequireFromString("27931.03"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, StatusDraft, first.Status)

	published, err := store.PublishPayslip(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, published.Status)
	require.NotNil(t, published.Employee)
	assert.Equal(t, "E001", published.Employee.EmployeeCode)

	second, err := store.UpsertPayslip(ctx, Payslip{
		EmployeeID: "emp-1", Month: 2, Year: 2024,
		BasicSalary: decimal.RequireFromString("30000"), WorkingDays: 29, PresentDays: 22, UnpaidLeaves: 0,
		Deduction: decimal.Zero, NetSalary: decimal.RequireFromString("30000"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, StatusPublished, second.Status)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	all, err := store.ListPayslips(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 22, all[0].PresentDays)
	assert.Equal(t, "30000.00", all[0].NetSalary.StringFixed(2))
}

func TestSQLiteStoreUniqueConstraint(t *testing.T) {
	store := newTestSQLiteStore(t, nil)
	seedEmployee(t, store, "emp-1", "E001", "30000")
	insert := `INSERT INTO payslips (id, employee_id, month, year, basic_salary, working_days, present_days,
		unpaid_leaves, deduction, net_salary, status, created_at, updated_at)
		VALUES (?, 'emp-1', 2, 2024, '1', 29, 0, 0, '0', '1', 'DRAFT', 'x', 'x')`
	_, err := store.db.Exec(insert, "a")
	require.NoError(t, err)
	_, err = store.db.Exec(insert, "b")
	assert.Error(t, err)
}

func TestSQLiteStoreListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t, nil)
	seedEmployee(t, store, "emp-1", "E001", "1000")
	seedEmployee(t, store, "emp-2", "E002", "2000")

	periods := []struct{ month, year int }{{12, 2023}, {1, 2024}, {2, 2024}}
	for _, p := range periods {
		for _, id := range []string{"emp-2", "emp-1"} {
			_, err := store.UpsertPayslip(ctx, Payslip{
				EmployeeID: id, Month: p.month, Year: p.year,
				BasicSalary: decimal.NewFromInt(1000), WorkingDays: 30,
				Deduction: decimal.Zero, NetSalary: decimal.NewFromInt(1000),
			})
			require.NoError(t, err)
		}
	}

	all, err := store.ListPayslips(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, [2]int{2, 2024}, [2]int{all[0].Month, all[0].Year})
	assert.Equal(t, "E001", all[0].Employee.EmployeeCode)
	assert.Equal(t, [2]int{12, 2023}, [2]int{all[5].Month, all[5].Year})

	year := 2024
	employee := "emp-2"
	filtered, err := store.ListPayslips(ctx, Filter{Year: &year, EmployeeID: &employee})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, 2, filtered[0].Month)
	assert.Equal(t, 1, filtered[1].Month)

	published := StatusPublished
	none, err := store.ListPayslips(ctx, Filter{Status: &published})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStoreMissingPayslip(t *testing.T) {
	store := newTestSQLiteStore(t, nil)
	_, err := store.GetPayslip(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPayslipNotFound)
	_, err = store.PublishPayslip(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPayslipNotFound)
}
