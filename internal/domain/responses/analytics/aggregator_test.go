package analytics

import (
	"testing"
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

func TestFilterWindows(t *testing.T) {
	since := testNow.Add(-24 * time.Hour)

	invalid := validWindow(testNow.Add(-time.Hour), 600)
	invalid.IsValidForAnalytics = false

	otherPlatform := validWindow(testNow.Add(-time.Hour), 600)
	otherPlatform.Platform = "email"

	windows := []entity.ResponseWindow{
		validWindow(testNow.Add(-time.Hour), 600),
		invalid,
		otherPlatform,
		validWindow(testNow.Add(-48*time.Hour), 600), // before since
	}

	got := FilterWindows(windows, "telegram", since, time.Time{})
	if len(got) != 1 {
		t.Fatalf("got %d windows, want 1", len(got))
	}

	// Empty platform matches everything still inside the bounds.
	got = FilterWindows(windows, "", since, time.Time{})
	if len(got) != 2 {
		t.Fatalf("got %d windows with no platform filter, want 2", len(got))
	}

	// until is exclusive.
	got = FilterWindows(windows, "", time.Time{}, testNow.Add(-48*time.Hour))
	if len(got) != 0 {
		t.Fatalf("got %d windows before the exclusive until, want 0", len(got))
	}
}

func TestComputeMetricsPercentiles(t *testing.T) {
	var windows []entity.ResponseWindow
	for i, latency := range []float64{50, 30, 10, 40, 20} {
		windows = append(windows, validWindow(testNow.Add(-time.Duration(i+1)*time.Hour), latency))
	}

	m := ComputeMetrics(windows, "", entity.TimeRangeWeek, testNow, entity.DefaultSettings())

	if m.SampleCount != 5 {
		t.Fatalf("sample count = %d, want 5", m.SampleCount)
	}
	if m.MedianSeconds != 30 {
		t.Errorf("median = %v, want 30", m.MedianSeconds)
	}
	if m.MeanSeconds != 30 {
		t.Errorf("mean = %v, want 30", m.MeanSeconds)
	}
	if m.P90Seconds != 50 {
		t.Errorf("p90 = %v, want 50", m.P90Seconds)
	}
	if m.P95Seconds != 50 {
		t.Errorf("p95 = %v, want 50", m.P95Seconds)
	}
	if m.MinSeconds != 10 || m.MaxSeconds != 50 {
		t.Errorf("min/max = %v/%v, want 10/50", m.MinSeconds, m.MaxSeconds)
	}
	if m.PreviousMedianSeconds != nil || m.TrendPercentage != nil {
		t.Error("no previous-period data: trend fields must be nil")
	}
}

func TestComputeMetricsEvenSampleCount(t *testing.T) {
	windows := []entity.ResponseWindow{
		validWindow(testNow.Add(-time.Hour), 600),
		validWindow(testNow.Add(-2*time.Hour), 7200),
	}

	m := ComputeMetrics(windows, "", entity.TimeRangeWeek, testNow, entity.DefaultSettings())
	if m.MedianSeconds != 7200 {
		t.Errorf("median = %v, want upper central value 7200", m.MedianSeconds)
	}
	if m.MeanSeconds != 3900 {
		t.Errorf("mean = %v, want 3900", m.MeanSeconds)
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil, "", entity.TimeRangeWeek, testNow, entity.DefaultSettings())

	if m.SampleCount != 0 || m.MedianSeconds != 0 {
		t.Errorf("empty set metrics = %+v, want zero value", m)
	}
	if m.WorkingHoursMedianSeconds != nil || m.NonWorkingHoursMedianSeconds != nil {
		t.Error("optional medians must be nil for an empty set")
	}
	if m.PreviousMedianSeconds != nil || m.TrendPercentage != nil {
		t.Error("trend fields must be nil for an empty set")
	}
}

func TestComputeMetricsTrend(t *testing.T) {
	windows := []entity.ResponseWindow{
		// Current week.
		validWindow(testNow.Add(-time.Hour), 600),
		// Previous week.
		validWindow(testNow.Add(-8*24*time.Hour), 1200),
	}

	m := ComputeMetrics(windows, "", entity.TimeRangeWeek, testNow, entity.DefaultSettings())

	if m.SampleCount != 1 {
		t.Fatalf("sample count = %d, want 1; the previous-week window must not leak in", m.SampleCount)
	}
	if m.PreviousMedianSeconds == nil || *m.PreviousMedianSeconds != 1200 {
		t.Fatalf("previous median = %v, want 1200", m.PreviousMedianSeconds)
	}
	if m.TrendPercentage == nil || *m.TrendPercentage != -50 {
		t.Fatalf("trend = %v, want -50", m.TrendPercentage)
	}
}

func TestComputeMetricsWorkingHoursSplit(t *testing.T) {
	windows := []entity.ResponseWindow{
		validWindow(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC), 100), // Monday morning
		validWindow(time.Date(2026, 8, 23, 20, 0, 0, 0, time.UTC), 900), // Sunday evening
	}

	m := ComputeMetrics(windows, "", entity.TimeRangeWeek, testNow, entity.DefaultSettings())

	if m.WorkingHoursMedianSeconds == nil || *m.WorkingHoursMedianSeconds != 100 {
		t.Errorf("working-hours median = %v, want 100", m.WorkingHoursMedianSeconds)
	}
	if m.NonWorkingHoursMedianSeconds == nil || *m.NonWorkingHoursMedianSeconds != 900 {
		t.Errorf("off-hours median = %v, want 900", m.NonWorkingHoursMedianSeconds)
	}
}
