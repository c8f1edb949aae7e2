package analytics

import (
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// Sub-score weights. Speed dominates because reply latency is what the
// user feels; the remaining factors reward stability and sustained volume.
const (
	weightSpeed       = 0.40
	weightConsistency = 0.25
	weightCoverage    = 0.15
	weightTrend       = 0.10
	weightImprovement = 0.10
)

const neutralScore = 70

// ComputeScore rates the period's response performance on a 0-100 scale
// from five weighted sub-scores. The result depends only on the window
// set, filter, range, and now; permuting the input windows does not
// change it. An empty set returns the explicit sentinel (overall 0,
// grade "--").
func ComputeScore(
	windows []entity.ResponseWindow,
	platform string,
	timeRange entity.TimeRange,
	now time.Time,
	settings entity.Settings,
) entity.ResponseScore {
	loc := settings.Location()
	current := FilterWindows(windows, platform, timeRange.Start(now, loc), time.Time{})
	if len(current) == 0 {
		return entity.EmptyScore()
	}

	prevStart, prevEnd := timeRange.PreviousPeriod(now, loc)
	previous := FilterWindows(windows, platform, prevStart, prevEnd)

	sorted := sortedLatencies(current)
	medianLatency := median(sorted)
	p90Latency := nearestRank(sorted, 0.9)

	speed := speedScore(medianLatency, p90Latency)
	consistency := consistencyScore(sorted)
	coverage := coverageScore(len(current), settings.ExpectedVolumeFor(timeRange))
	trend := trendScore(dailyMedians(current, loc))
	improvement := improvementScore(medianLatency, previous)

	overall := int(speed*weightSpeed +
		consistency*weightConsistency +
		coverage*weightCoverage +
		trend*weightTrend +
		improvement*weightImprovement)

	grade := gradeFor(overall)
	score := entity.ResponseScore{
		Overall:       overall,
		Speed:         int(speed),
		Consistency:   int(consistency),
		Coverage:      int(coverage),
		Trend:         int(trend),
		Improvement:   int(improvement),
		Grade:         grade,
		Color:         colorFor(grade),
		SampleCount:   len(current),
		MedianSeconds: medianLatency,
	}
	score.Strengths, score.Weaknesses = describeScore(score)
	return score
}

// speedScore maps median and p90 latency through a threshold ladder and
// blends them 70/30 in favor of the median.
func speedScore(medianLatency, p90Latency float64) float64 {
	return 0.7*latencyPoints(medianLatency) + 0.3*latencyPoints(p90Latency)
}

func latencyPoints(latency float64) float64 {
	switch {
	case latency <= 1800:
		return 100
	case latency <= 3600:
		return 80
	case latency <= 7200:
		return 60
	case latency <= 14400:
		return 40
	default:
		// 5 points per hour beyond the 4h threshold, floored at 0.
		return clamp(40-5*(latency-14400)/3600, 0, 40)
	}
}

// consistencyScore rates the coefficient of variation through descending
// bands; low cv means predictable response behavior.
func consistencyScore(sorted []float64) float64 {
	if len(sorted) < 2 {
		return neutralScore
	}
	cv := coefficientOfVariation(sorted)
	switch {
	case cv < 0.3:
		return 95 + (0.3-cv)/0.3*5
	case cv < 0.5:
		return 80 + (0.5-cv)/0.2*15
	case cv < 1.0:
		return 60 + (1.0-cv)/0.5*20
	case cv < 1.5:
		return 40 + (1.5-cv)/0.5*20
	default:
		return clamp(40-(cv-1.5)*20, 0, 40)
	}
}

// coverageScore compares the valid-window count against the expected
// volume for the range.
func coverageScore(count, expected int) float64 {
	if expected <= 0 {
		return neutralScore
	}
	ratio := float64(count) / float64(expected)
	switch {
	case ratio >= 1:
		return 100
	case ratio >= 0.7:
		return 85
	case ratio >= 0.5:
		return 70
	case ratio >= 0.3:
		return 55
	case ratio >= 0.1:
		return 40
	default:
		return ratio * 400
	}
}

// trendScore rates the OLS slope of daily median latency in seconds per
// day. Fewer than five distinct days is no signal and scores neutral.
func trendScore(points []dailyPoint) float64 {
	if len(points) < 5 {
		return neutralScore
	}
	slope, _, _, ok := dailySlope(points)
	if !ok {
		return neutralScore
	}
	switch {
	case slope <= -300:
		return 100
	case slope < 0:
		return neutralScore + (-slope/300)*30
	case slope < 300:
		return neutralScore - (slope/300)*50
	default:
		return clamp(20-(slope-300)/100, 0, 20)
	}
}

// improvementScore rates the period-over-period median change. Negative
// change (replying faster) scores up; no previous data is neutral.
func improvementScore(currentMedian float64, previous []entity.ResponseWindow) float64 {
	if len(previous) == 0 {
		return neutralScore
	}
	prevMedian := medianOf(sortedLatencies(previous))
	if prevMedian <= 0 {
		return neutralScore
	}
	pct := (currentMedian - prevMedian) / prevMedian * 100
	switch {
	case pct <= -30:
		return 100
	case pct < -5:
		return neutralScore + (-pct-5)/25*30
	case pct <= 5:
		return neutralScore
	case pct < 30:
		return neutralScore - (pct-5)/25*30
	default:
		return 40
	}
}

var gradeBands = []struct {
	min   int
	grade string
}{
	{97, "A+"}, {93, "A"}, {90, "A-"},
	{87, "B+"}, {83, "B"}, {80, "B-"},
	{77, "C+"}, {73, "C"}, {70, "C-"},
	{67, "D+"}, {63, "D"}, {60, "D-"},
}

func gradeFor(overall int) string {
	for _, b := range gradeBands {
		if overall >= b.min {
			return b.grade
		}
	}
	return "F"
}

func colorFor(grade string) string {
	switch grade[0] {
	case 'A':
		return "green"
	case 'B':
		return "blue"
	case 'C':
		return "yellow"
	case 'D':
		return "orange"
	default:
		return "red"
	}
}

// describeScore derives threshold-triggered strength and weakness flags
func describeScore(s entity.ResponseScore) (strengths, weaknesses []string) {
	if s.Speed >= 85 {
		strengths = append(strengths, "Fast responder: median reply time is well under an hour")
	}
	if s.Consistency >= 85 {
		strengths = append(strengths, "Very consistent response times")
	}
	if s.Coverage >= 90 {
		strengths = append(strengths, "Strong response volume for the period")
	}
	if s.Trend >= 85 {
		strengths = append(strengths, "Response times are getting faster")
	}

	if s.Speed < 50 {
		weaknesses = append(weaknesses, "Slow median response time")
	}
	if s.Consistency < 60 {
		weaknesses = append(weaknesses, "High variability in response times")
	}
	if s.MedianSeconds > 7200 {
		weaknesses = append(weaknesses, "Median response time exceeds the 2 hour target")
	}
	if s.Trend < 50 {
		weaknesses = append(weaknesses, "Response times are trending slower")
	}
	return strengths, weaknesses
}
