package entity

import "time"

// TimeRange selects the analysis period relative to "now"
type TimeRange string

const (
	TimeRangeToday   TimeRange = "today"
	TimeRangeWeek    TimeRange = "week"
	TimeRangeMonth   TimeRange = "month"
	TimeRangeQuarter TimeRange = "quarter"
	TimeRangeYear    TimeRange = "year"
)

// ParseTimeRange validates a raw range string, defaulting to week when empty
func ParseTimeRange(raw string) (TimeRange, error) {
	if raw == "" {
		return TimeRangeWeek, nil
	}
	r := TimeRange(raw)
	switch r {
	case TimeRangeToday, TimeRangeWeek, TimeRangeMonth, TimeRangeQuarter, TimeRangeYear:
		return r, nil
	}
	return "", ErrInvalidTimeRange
}

// Span returns the nominal length of the range
func (r TimeRange) Span() time.Duration {
	switch r {
	case TimeRangeToday:
		return 24 * time.Hour
	case TimeRangeWeek:
		return 7 * 24 * time.Hour
	case TimeRangeMonth:
		return 30 * 24 * time.Hour
	case TimeRangeQuarter:
		return 90 * 24 * time.Hour
	case TimeRangeYear:
		return 365 * 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

// Start returns the start-date cutoff for the range. "today" starts at
// midnight in loc; the rolling ranges start a fixed span before now.
func (r TimeRange) Start(now time.Time, loc *time.Location) time.Time {
	if r == TimeRangeToday {
		local := now.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	}
	return now.Add(-r.Span())
}

// PreviousPeriod returns the equivalent non-overlapping period immediately
// preceding the current one, as [start, end).
func (r TimeRange) PreviousPeriod(now time.Time, loc *time.Location) (time.Time, time.Time) {
	end := r.Start(now, loc)
	return end.Add(-r.Span()), end
}
