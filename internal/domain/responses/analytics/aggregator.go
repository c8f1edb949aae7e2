package analytics

import (
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// FilterWindows returns the windows valid for analytics that match the
// platform filter (empty matches all) and fall inside [since, until).
// A zero until means no upper bound.
func FilterWindows(windows []entity.ResponseWindow, platform string, since, until time.Time) []entity.ResponseWindow {
	var out []entity.ResponseWindow
	for _, w := range windows {
		if !w.IsValidForAnalytics {
			continue
		}
		if platform != "" && w.Platform != platform {
			continue
		}
		if w.InboundAt.Before(since) {
			continue
		}
		if !until.IsZero() && !w.InboundAt.Before(until) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// ComputeMetrics aggregates the window set into percentile and trend
// statistics for the given period. An empty result set yields the zero
// sentinel with nil optional fields; that is not an error.
func ComputeMetrics(
	windows []entity.ResponseWindow,
	platform string,
	timeRange entity.TimeRange,
	now time.Time,
	settings entity.Settings,
) entity.ResponseMetrics {
	loc := settings.Location()
	current := FilterWindows(windows, platform, timeRange.Start(now, loc), time.Time{})
	if len(current) == 0 {
		return entity.ResponseMetrics{}
	}

	sorted := sortedLatencies(current)
	metrics := entity.ResponseMetrics{
		SampleCount:   len(sorted),
		MedianSeconds: median(sorted),
		MeanSeconds:   mean(sorted),
		P90Seconds:    nearestRank(sorted, 0.9),
		P95Seconds:    nearestRank(sorted, 0.95),
		MinSeconds:    sorted[0],
		MaxSeconds:    sorted[len(sorted)-1],
	}

	var working, offHours []float64
	for _, w := range current {
		if w.IsWorkingHours {
			working = append(working, w.LatencySeconds)
		} else {
			offHours = append(offHours, w.LatencySeconds)
		}
	}
	if len(working) > 0 {
		m := medianOf(working)
		metrics.WorkingHoursMedianSeconds = &m
	}
	if len(offHours) > 0 {
		m := medianOf(offHours)
		metrics.NonWorkingHoursMedianSeconds = &m
	}

	prevStart, prevEnd := timeRange.PreviousPeriod(now, loc)
	previous := FilterWindows(windows, platform, prevStart, prevEnd)
	if len(previous) > 0 {
		prevMedian := medianOf(sortedLatencies(previous))
		if prevMedian > 0 {
			trend := (metrics.MedianSeconds - prevMedian) / prevMedian * 100
			metrics.PreviousMedianSeconds = &prevMedian
			metrics.TrendPercentage = &trend
		}
	}

	return metrics
}
