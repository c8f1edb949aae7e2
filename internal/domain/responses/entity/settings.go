package entity

import "time"

// Settings holds the analytics preferences for an account. All time
// bucketing is done in Timezone so results are deterministic regardless
// of the host clock's locale.
type Settings struct {
	MatchingWindowDays  int               `json:"matching_window_days"`
	ConfidenceThreshold float64           `json:"confidence_threshold"`
	WorkingHoursStart   int               `json:"working_hours_start"` // hour of day, inclusive
	WorkingHoursEnd     int               `json:"working_hours_end"`   // hour of day, exclusive
	WorkingDays         []time.Weekday    `json:"working_days"`
	Timezone            string            `json:"timezone"`
	ExpectedVolume      map[TimeRange]int `json:"expected_volume"`
	MinInsightSamples   int               `json:"min_insight_samples"`
}

// DefaultSettings returns the default analytics preferences
func DefaultSettings() Settings {
	return Settings{
		MatchingWindowDays:  7,
		ConfidenceThreshold: 0.7,
		WorkingHoursStart:   9,
		WorkingHoursEnd:     17,
		WorkingDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Timezone: "UTC",
		ExpectedVolume: map[TimeRange]int{
			TimeRangeToday:   5,
			TimeRangeWeek:    30,
			TimeRangeMonth:   120,
			TimeRangeQuarter: 360,
			TimeRangeYear:    1400,
		},
		MinInsightSamples: 5,
	}
}

// MatchingWindowSeconds returns the matching window converted to seconds
func (s Settings) MatchingWindowSeconds() float64 {
	return float64(s.MatchingWindowDays) * 86400
}

// Location resolves the configured timezone, falling back to UTC
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsWorkingTime reports whether t falls inside the configured working
// hours on a configured working day. t must already be in the settings'
// timezone.
func (s Settings) IsWorkingTime(t time.Time) bool {
	hour := t.Hour()
	if hour < s.WorkingHoursStart || hour >= s.WorkingHoursEnd {
		return false
	}
	day := t.Weekday()
	for _, wd := range s.WorkingDays {
		if wd == day {
			return true
		}
	}
	return false
}

// ExpectedVolumeFor returns the expected number of responses for a range,
// used by coverage scoring. Unknown ranges expect the weekly volume.
func (s Settings) ExpectedVolumeFor(r TimeRange) int {
	if v, ok := s.ExpectedVolume[r]; ok && v > 0 {
		return v
	}
	return 30
}
