package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// testNow is a Monday noon; every analytics test anchors to it
var testNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

// validWindow builds a window that passes the analytics filter
func validWindow(inboundAt time.Time, latency float64) entity.ResponseWindow {
	s := entity.DefaultSettings()
	local := inboundAt.In(time.UTC)
	return entity.ResponseWindow{
		ID:                  "w-" + inboundAt.Format("20060102T150405"),
		AccountID:           "acc-1",
		ConversationID:      "conv-1",
		Platform:            "telegram",
		ParticipantID:       "p-1",
		InboundAt:           inboundAt,
		LatencySeconds:      latency,
		Confidence:          entity.Confidence(latency),
		Method:              entity.MatchMethodTimeWindow,
		DayOfWeek:           int(local.Weekday()),
		HourOfDay:           local.Hour(),
		IsWorkingHours:      s.IsWorkingTime(local),
		IsValidForAnalytics: true,
	}
}

func TestNearestRank(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	tests := []struct {
		p    float64
		want float64
	}{
		{0.5, 30},
		{0.9, 50},
		{0.95, 50},
		{0, 10},
	}
	for _, tt := range tests {
		if got := nearestRank(sorted, tt.p); got != tt.want {
			t.Errorf("nearestRank(p=%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if got := nearestRank(nil, 0.5); got != 0 {
		t.Errorf("nearestRank(empty) = %v, want 0", got)
	}
}

func TestMedianEvenCount(t *testing.T) {
	// Nearest-rank takes the upper of the two central values.
	if got := median([]float64{600, 7200}); got != 7200 {
		t.Errorf("median([600 7200]) = %v, want 7200", got)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if got := coefficientOfVariation([]float64{500, 500, 500}); got != 0 {
		t.Errorf("cv of identical values = %v, want 0", got)
	}
	if got := coefficientOfVariation(nil); got != 0 {
		t.Errorf("cv of empty = %v, want 0", got)
	}

	got := coefficientOfVariation([]float64{100, 300})
	// mean 200, population stddev 100
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("cv = %v, want 0.5", got)
	}
}

func TestOLSFit(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{1, 3, 5, 7, 9} // y = 1 + 2x

	slope, intercept, r2, ok := olsFit(xs, ys)
	if !ok {
		t.Fatal("fit should succeed")
	}
	if math.Abs(slope-2) > 1e-9 || math.Abs(intercept-1) > 1e-9 {
		t.Errorf("fit = (%v, %v), want (2, 1)", slope, intercept)
	}
	if math.Abs(r2-1) > 1e-9 {
		t.Errorf("r2 = %v, want 1", r2)
	}
}

func TestOLSFitFlatSeries(t *testing.T) {
	slope, _, r2, ok := olsFit([]float64{0, 1, 2}, []float64{5, 5, 5})
	if !ok {
		t.Fatal("flat series fit should succeed")
	}
	if slope != 0 || r2 != 1 {
		t.Errorf("flat fit = (slope %v, r2 %v), want (0, 1)", slope, r2)
	}
}

func TestOLSFitDegenerate(t *testing.T) {
	if _, _, _, ok := olsFit([]float64{1}, []float64{1}); ok {
		t.Error("single point fit should fail")
	}
	if _, _, _, ok := olsFit([]float64{2, 2, 2}, []float64{1, 2, 3}); ok {
		t.Error("zero x variance fit should fail")
	}
}

func TestDailyMedians(t *testing.T) {
	windows := []entity.ResponseWindow{
		validWindow(time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC), 100),
		validWindow(time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC), 300),
		validWindow(time.Date(2026, 8, 20, 16, 0, 0, 0, time.UTC), 200),
		validWindow(time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC), 900),
	}

	points := dailyMedians(windows, time.UTC)
	if len(points) != 2 {
		t.Fatalf("got %d daily points, want 2", len(points))
	}
	if !points[0].day.Before(points[1].day) {
		t.Error("daily points must be chronological")
	}
	if points[0].median != 200 || points[0].count != 3 {
		t.Errorf("first day = (median %v, count %d), want (200, 3)", points[0].median, points[0].count)
	}
	if points[1].median != 900 || points[1].count != 1 {
		t.Errorf("second day = (median %v, count %d), want (900, 1)", points[1].median, points[1].count)
	}
}
