package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// currencyPlaces is the rounding precision for every stored money amount.
const currencyPlaces = 2

type Input struct {
	BasicSalary  decimal.Decimal
	WorkingDays  int
	PresentDays  int
	UnpaidLeaves int
}

type Figures struct {
	BasicSalary  decimal.Decimal
	WorkingDays  int
	PresentDays  int
	UnpaidLeaves int
	PerDayRate   decimal.Decimal
	Deduction    decimal.Decimal
	NetSalary    decimal.Decimal
}

// Calculate prices each unpaid leave at basicSalary/workingDays.
// Rounding (half-up, 2 places) happens once on the deduction and once on the net.
func Calculate(in Input) (Figures, error) {
	if !in.BasicSalary.IsPositive() {
		return Figures{}, ErrInvalidSalary
	}
	if in.WorkingDays <= 0 {
		return Figures{}, fmt.Errorf("%w: working days %d", ErrInvalidPeriod, in.WorkingDays)
	}
	if in.UnpaidLeaves < 0 || in.PresentDays < 0 {
		return Figures{}, fmt.Errorf("%w: negative day count", ErrInvalidInput)
	}

	days := decimal.NewFromInt(int64(in.WorkingDays))
	leaves := decimal.NewFromInt(int64(in.UnpaidLeaves))

	// Multiplying before dividing keeps the only inexact step last.
	deduction := roundCurrency(in.BasicSalary.Mul(leaves).Div(days))
	net := roundCurrency(in.BasicSalary.Sub(deduction))

	return Figures{
		BasicSalary:  in.BasicSalary,
		WorkingDays:  in.WorkingDays,
		PresentDays:  in.PresentDays,
		UnpaidLeaves: in.UnpaidLeaves,
		PerDayRate:   in.BasicSalary.Div(days),
		Deduction:    deduction,
		NetSalary:    net,
	}, nil
}

// roundCurrency rounds half away from zero, which is half-up for the non-negative amounts used here.
func roundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(currencyPlaces)
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(currencyPlaces)
}
