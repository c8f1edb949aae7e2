package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

func TestComputeInsightsInsufficientData(t *testing.T) {
	windows := []entity.ResponseWindow{
		validWindow(testNow.Add(-time.Hour), 600),
		validWindow(testNow.Add(-2*time.Hour), 700),
	}

	insights := ComputeInsights(windows, "", entity.TimeRangeWeek, testNow, entity.DefaultSettings())

	if len(insights) != 1 {
		t.Fatalf("got %d insights, want exactly 1", len(insights))
	}
	in := insights[0]
	if in.Type != entity.InsightTypeInsufficientData {
		t.Errorf("type = %v, want insufficient_data", in.Type)
	}
	if in.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", in.Confidence)
	}
	if in.SampleCount != 2 {
		t.Errorf("sample count = %d, want 2", in.SampleCount)
	}
}

func TestComputeInsightsFastConsistentSet(t *testing.T) {
	// Twelve fast replies over three working days, four per participant.
	participants := []string{"p-1", "p-2", "p-3"}
	var windows []entity.ResponseWindow
	for i := 0; i < 12; i++ {
		day := time.Date(2026, 8, 18+i%3, 10, 0, 0, 0, time.UTC) // Tue-Thu
		w := validWindow(day.Add(time.Duration(i)*time.Minute), 600)
		w.ParticipantID = participants[i%3]
		windows = append(windows, w)
	}

	insights := ComputeInsights(windows, "", entity.TimeRangeWeek, testNow, entity.DefaultSettings())

	byType := map[entity.InsightType]entity.Insight{}
	for _, in := range insights {
		byType[in.Type] = in
	}

	if _, ok := byType[entity.InsightTypeSpeedTier]; !ok {
		t.Error("expected a speed-tier insight for uniformly fast replies")
	}
	if _, ok := byType[entity.InsightTypeConsistency]; !ok {
		t.Error("expected a consistency insight for zero-variance replies")
	}
	if _, ok := byType[entity.InsightTypeContact]; !ok {
		t.Error("expected a contact insight for sub-30m per-contact medians")
	}

	for i := 1; i < len(insights); i++ {
		if insights[i].Confidence > insights[i-1].Confidence {
			t.Fatalf("insights not sorted by confidence: %v after %v",
				insights[i].Confidence, insights[i-1].Confidence)
		}
	}
	if len(insights) > 8 {
		t.Errorf("got %d insights, cap is 8", len(insights))
	}
}

func TestComputeInsightsDayOfWeekGap(t *testing.T) {
	// Fast Mondays, slow Fridays over the past month.
	var windows []entity.ResponseWindow
	for _, d := range []int{3, 10, 17} { // Mondays in August 2026
		windows = append(windows, validWindow(time.Date(2026, 8, d, 10, 0, 0, 0, time.UTC), 600))
	}
	for _, d := range []int{7, 14, 21} { // Fridays
		windows = append(windows, validWindow(time.Date(2026, 8, d, 10, 0, 0, 0, time.UTC), 7200))
	}

	insights := ComputeInsights(windows, "", entity.TimeRangeMonth, testNow, entity.DefaultSettings())

	var dow *entity.Insight
	for i := range insights {
		if insights[i].Type == entity.InsightTypeDayOfWeek {
			dow = &insights[i]
			break
		}
	}
	if dow == nil {
		t.Fatal("expected a day-of-week insight for a 12x weekday gap")
	}
	if dow.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8 for a >2x gap", dow.Confidence)
	}
	if !strings.Contains(dow.Title, "Friday") {
		t.Errorf("title %q should name the slow day", dow.Title)
	}
	if dow.SampleCount != 6 {
		t.Errorf("sample count = %d, want 6", dow.SampleCount)
	}
}

func TestComputeInsightsAnomaly(t *testing.T) {
	// Seven steady days, then one day with a 20x median spike.
	var windows []entity.ResponseWindow
	for d := 0; d < 7; d++ {
		day := time.Date(2026, 8, 17+d, 10, 0, 0, 0, time.UTC)
		windows = append(windows, validWindow(day, 600), validWindow(day.Add(time.Hour), 600))
	}
	spike := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	windows = append(windows, validWindow(spike, 12000), validWindow(spike.Add(time.Hour), 12000))

	insights := ComputeInsights(windows, "", entity.TimeRangeMonth, testNow, entity.DefaultSettings())

	var anomaly *entity.Insight
	for i := range insights {
		if insights[i].Type == entity.InsightTypeAnomaly {
			anomaly = &insights[i]
			break
		}
	}
	if anomaly == nil {
		t.Fatal("expected an anomaly insight for the spike day")
	}
	if !strings.Contains(anomaly.Title, "slow") {
		t.Errorf("title %q should flag the slow day", anomaly.Title)
	}
}
