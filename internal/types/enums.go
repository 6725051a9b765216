package types

// DateRange is a symbolic time window tag used by list and stats queries.
// All ranges are anchored to calendar days in the fixed IST offset.
type DateRange string

const (
	DateRangeToday  DateRange = "today"
	DateRange7Days  DateRange = "7days"
	DateRange14Days DateRange = "14days"
	DateRange30Days DateRange = "30days"
	DateRangeAll    DateRange = "all"
)

// ParseDateRange maps a raw query value to a DateRange. Unknown or empty
// values fall back to DateRangeAll (no lower bound), matching the behavior
// of an absent filter.
func ParseDateRange(s string) DateRange {
	switch DateRange(s) {
	case DateRangeToday, DateRange7Days, DateRange14Days, DateRange30Days:
		return DateRange(s)
	default:
		return DateRangeAll
	}
}

// SortOrder is the direction of a list query's ORDER BY clause.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps a raw query value to a SortOrder, defaulting to
// descending (newest first).
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// Device user-tier tags. The only transition this system performs is
// free -> premium via the promote action; it is never reverted here.
const (
	UserTypeFree    = "free_user"
	UserTypePremium = "premium_user"
)

// Session status values accepted by the session list filter.
const (
	SessionStatusCompleted  = "completed"
	SessionStatusInProgress = "in_progress"
	SessionStatusFailed     = "failed"
)
