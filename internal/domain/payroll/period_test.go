package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriodLeapYear(t *testing.T) {
	leap, err := ResolvePeriod(2, 2024)
	require.NoError(t, err)
	assert.Equal(t, 29, leap.WorkingDays)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), leap.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), leap.End)

	common, err := ResolvePeriod(2, 2023)
	require.NoError(t, err)
	assert.Equal(t, 28, common.WorkingDays)

	century, err := ResolvePeriod(2, 1900)
	require.NoError(t, err)
	assert.Equal(t, 28, century.WorkingDays)
}

func TestResolvePeriodMonthLengths(t *testing.T) {
	want := map[int]int{1: 31, 3: 31, 4: 30, 6: 30, 9: 30, 11: 30, 12: 31}
	for month, days := range want {
		period, err := ResolvePeriod(month, 2025)
		require.NoError(t, err)
		assert.Equal(t, days, period.WorkingDays, "month %d", month)
		assert.Equal(t, 1, period.Start.Day())
		assert.Equal(t, days, period.End.Day())
	}
}

func TestResolvePeriodInvalid(t *testing.T) {
	cases := []struct{ month, year int }{
		{0, 2024}, {13, 2024}, {-1, 2024}, {6, 0}, {6, -2024}, {6, 10000},
	}
	for _, tc := range cases {
		_, err := ResolvePeriod(tc.month, tc.year)
		assert.ErrorIs(t, err, ErrInvalidPeriod, "%d/%d", tc.month, tc.year)
	}
}

func TestPeriodContainsIgnoresClock(t *testing.T) {
	period, err := ResolvePeriod(3, 2025)
	require.NoError(t, err)

	assert.True(t, period.Contains(time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, period.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))))
	assert.False(t, period.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC)))
}
