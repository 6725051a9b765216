// Package istime implements calendar-day bucketing in the fixed IST offset
// (UTC+5:30). Every time-series query in the dashboard partitions rows into
// IST calendar days, so all boundaries are computed here against an explicit
// "now" instant and never against the server's local timezone.
package istime

import (
	"time"

	"mayadmin/internal/types"
)

// IST is the fixed UTC+5:30 offset. A fixed zone is used deliberately:
// Asia/Kolkata has no DST, and a fixed offset keeps results independent of
// the host's tzdata.
var IST = time.FixedZone("IST", 5*3600+30*60)

// StartOfDay returns the Unix timestamp (seconds) of IST midnight on the
// calendar day daysAgo days before now's IST date. daysAgo = 0 yields the
// start of the current IST day even at 23:59 IST. Month and year rollover is
// handled by time.Date's calendar normalization.
func StartOfDay(now time.Time, daysAgo int) int64 {
	y, m, d := now.In(IST).Date()
	return time.Date(y, m, d-daysAgo, 0, 0, 0, 0, IST).Unix()
}

// RangeStart maps a symbolic date-range tag to its lower-bound timestamp.
// DateRangeAll (and any unrecognized tag) returns nil, meaning no lower bound.
func RangeStart(now time.Time, r types.DateRange) *int64 {
	var daysAgo int
	switch r {
	case types.DateRangeToday:
		daysAgo = 0
	case types.DateRange7Days:
		daysAgo = 7
	case types.DateRange14Days:
		daysAgo = 14
	case types.DateRange30Days:
		daysAgo = 30
	default:
		return nil
	}
	ts := StartOfDay(now, daysAgo)
	return &ts
}

// DayLabel formats a Unix timestamp as a short IST date label for chart
// axes, e.g. "28 Aug".
func DayLabel(ts int64) string {
	return time.Unix(ts, 0).In(IST).Format("02 Jan")
}
