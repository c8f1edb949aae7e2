// Package analytics turns response windows into metrics, a composite
// score, and ranked insights. Everything here is a pure function of its
// inputs: no storage, no clocks, no hidden state.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// sortedLatencies extracts latencies in ascending order
func sortedLatencies(windows []entity.ResponseWindow) []float64 {
	vals := make([]float64, 0, len(windows))
	for _, w := range windows {
		vals = append(vals, w.LatencySeconds)
	}
	sort.Float64s(vals)
	return vals
}

// nearestRank returns the value at index ⌊p·n⌋ of sorted values.
// No interpolation; exact indices matter for test parity.
func nearestRank(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// median returns the nearest-rank median of sorted values
func median(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)/2]
}

// medianOf sorts a copy and returns its median
func medianOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	return median(sorted)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64, avg float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		d := v - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}

// coefficientOfVariation is stddev/mean, the scale-free variability
// measure used by consistency scoring. Returns 0 when there is no signal.
func coefficientOfVariation(vals []float64) float64 {
	avg := mean(vals)
	if avg <= 0 {
		return 0
	}
	return stddev(vals, avg) / avg
}

// olsFit fits y = intercept + slope*x by ordinary least squares and
// reports the coefficient of determination. ok is false when the fit is
// degenerate (fewer than two points or zero x variance).
func olsFit(xs, ys []float64) (slope, intercept, r2 float64, ok bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, 0, 0, false
	}

	meanX := mean(xs)
	meanY := mean(ys)

	var sxx, sxy, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return 0, 0, 0, false
	}

	slope = sxy / sxx
	intercept = meanY - slope*meanX
	if syy == 0 {
		// Perfectly flat series: the fit explains everything trivially.
		return slope, intercept, 1, true
	}
	r2 = (sxy * sxy) / (sxx * syy)
	return slope, intercept, r2, true
}

// dailyPoint is one day's median latency
type dailyPoint struct {
	day    time.Time
	median float64
	count  int
}

// dailyMedians buckets windows by calendar day in loc and returns each
// day's median latency in chronological order.
func dailyMedians(windows []entity.ResponseWindow, loc *time.Location) []dailyPoint {
	buckets := make(map[time.Time][]float64)
	for _, w := range windows {
		local := w.InboundAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		buckets[day] = append(buckets[day], w.LatencySeconds)
	}

	points := make([]dailyPoint, 0, len(buckets))
	for day, vals := range buckets {
		points = append(points, dailyPoint{
			day:    day,
			median: medianOf(vals),
			count:  len(vals),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].day.Before(points[j].day) })
	return points
}

// dailySlope runs OLS over daily medians with x in days since the first
// point, yielding a slope in seconds per day.
func dailySlope(points []dailyPoint) (slope, intercept, r2 float64, ok bool) {
	if len(points) < 2 {
		return 0, 0, 0, false
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	first := points[0].day
	for i, p := range points {
		xs[i] = p.day.Sub(first).Hours() / 24
		ys[i] = p.median
	}
	return olsFit(xs, ys)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
