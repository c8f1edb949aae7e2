package entity

// ResponseScore is the composite 0-100 performance rating with its five
// weighted sub-scores. Recomputed on demand; the empty sentinel (overall 0,
// grade "--") is returned when there are no valid windows to score.
type ResponseScore struct {
	Overall     int    `json:"overall"`
	Speed       int    `json:"speed"`
	Consistency int    `json:"consistency"`
	Coverage    int    `json:"coverage"`
	Trend       int    `json:"trend"`
	Improvement int    `json:"improvement"`
	Grade       string `json:"grade"`
	Color       string `json:"color"`

	SampleCount   int     `json:"sample_count"`
	MedianSeconds float64 `json:"median_seconds"`

	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// EmptyScore is the sentinel returned for an empty window set
func EmptyScore() ResponseScore {
	return ResponseScore{Grade: "--", Color: "gray"}
}
