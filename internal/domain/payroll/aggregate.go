package payroll

import (
	"strings"
	"time"
)

// CountPresentDays returns the number of distinct calendar dates in the period
// with at least one attendance record. Several rows on one date count once.
func CountPresentDays(records []AttendanceRecord, period Period) int {
	seen := make(map[time.Time]struct{}, len(records))
	for _, record := range records {
		if !period.Contains(record.Date) {
			continue
		}
		seen[civilDate(record.Date)] = struct{}{}
	}
	return len(seen)
}

// CountUnpaidLeaves counts approved leave requests lying entirely inside the period.
// A request is one occurrence no matter how many days it spans, and requests that
// cross a month boundary are left out rather than prorated.
func CountUnpaidLeaves(requests []LeaveRequest, period Period) int {
	count := 0
	for _, request := range requests {
		if !strings.EqualFold(request.Status, LeaveStatusApproved) {
			continue
		}
		if civilDate(request.FromDate).Before(period.Start) || civilDate(request.ToDate).After(period.End) {
			continue
		}
		count++
	}
	return count
}
