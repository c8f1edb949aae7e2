package entity

// InsightType tags the analyzer that produced an insight
type InsightType string

const (
	InsightTypeInsufficientData InsightType = "insufficient_data"
	InsightTypeTrend            InsightType = "trend"
	InsightTypeDayOfWeek        InsightType = "day_of_week"
	InsightTypeHourOfDay        InsightType = "hour_of_day"
	InsightTypeWorkingHours     InsightType = "working_hours"
	InsightTypeSpeedTier        InsightType = "speed_tier"
	InsightTypeConsistency      InsightType = "consistency"
	InsightTypeAnomaly          InsightType = "anomaly"
	InsightTypeContact          InsightType = "contact"
	InsightTypePrediction       InsightType = "prediction"
)

// Insight is a single natural-language finding mined from the window set
type Insight struct {
	Type        InsightType `json:"type"`
	Icon        string      `json:"icon"`
	Color       string      `json:"color"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Suggestion  string      `json:"suggestion,omitempty"`
	Confidence  float64     `json:"confidence"`
	SampleCount int         `json:"sample_count"`
}
