package entity

// ResponseMetrics is a derived percentile/trend summary for a period.
// Recomputed on demand and never stored. A zero-sample period yields
// the zero value with all optional fields nil; that is not an error.
type ResponseMetrics struct {
	SampleCount   int     `json:"sample_count"`
	MedianSeconds float64 `json:"median_seconds"`
	MeanSeconds   float64 `json:"mean_seconds"`
	P90Seconds    float64 `json:"p90_seconds"`
	P95Seconds    float64 `json:"p95_seconds"`
	MinSeconds    float64 `json:"min_seconds"`
	MaxSeconds    float64 `json:"max_seconds"`

	WorkingHoursMedianSeconds    *float64 `json:"working_hours_median_seconds,omitempty"`
	NonWorkingHoursMedianSeconds *float64 `json:"non_working_hours_median_seconds,omitempty"`
	PreviousMedianSeconds        *float64 `json:"previous_median_seconds,omitempty"`
	TrendPercentage              *float64 `json:"trend_percentage,omitempty"`
}
