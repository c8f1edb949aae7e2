package analytics

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

const maxInsights = 8

// analyzerInput is the shared, read-only view each analyzer works from
type analyzerInput struct {
	windows  []entity.ResponseWindow // valid, filtered, unordered
	sorted   []float64               // latencies ascending
	daily    []dailyPoint            // chronological daily medians
	loc      *time.Location
	settings entity.Settings
}

type analyzer func(in analyzerInput) (entity.Insight, bool)

// ComputeInsights runs the pattern analyzers over the period's window set
// and returns the top findings ranked by confidence. Below the minimum
// sample size a single "insufficient data" insight is returned. The
// analyzers have no data dependency on one another and run concurrently;
// the only combining step is the final sort.
func ComputeInsights(
	windows []entity.ResponseWindow,
	platform string,
	timeRange entity.TimeRange,
	now time.Time,
	settings entity.Settings,
) []entity.Insight {
	loc := settings.Location()
	current := FilterWindows(windows, platform, timeRange.Start(now, loc), time.Time{})

	if len(current) < settings.MinInsightSamples {
		return []entity.Insight{{
			Type:        entity.InsightTypeInsufficientData,
			Icon:        "hourglass",
			Color:       "gray",
			Title:       "Not enough data yet",
			Description: fmt.Sprintf("Only %d matched responses in this period; at least %d are needed for pattern analysis.", len(current), settings.MinInsightSamples),
			Suggestion:  "Keep replying to messages and check back later.",
			Confidence:  1.0,
			SampleCount: len(current),
		}}
	}

	in := analyzerInput{
		windows:  current,
		sorted:   sortedLatencies(current),
		daily:    dailyMedians(current, loc),
		loc:      loc,
		settings: settings,
	}

	analyzers := []analyzer{
		trendInsight,
		dayOfWeekInsight,
		hourOfDayInsight,
		workingHoursInsight,
		speedTierInsight,
		consistencyInsight,
		anomalyInsight,
		contactInsight,
		predictionInsight,
	}

	results := make([]entity.Insight, len(analyzers))
	found := make([]bool, len(analyzers))

	var wg sync.WaitGroup
	for i, run := range analyzers {
		wg.Add(1)
		go func(i int, run analyzer) {
			defer wg.Done()
			results[i], found[i] = run(in)
		}(i, run)
	}
	wg.Wait()

	var insights []entity.Insight
	for i, ok := range found {
		if ok {
			insights = append(insights, results[i])
		}
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Confidence > insights[j].Confidence
	})
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// trendInsight fits daily medians by OLS and flags a sustained direction
func trendInsight(in analyzerInput) (entity.Insight, bool) {
	if len(in.daily) < 5 {
		return entity.Insight{}, false
	}
	slope, intercept, r2, ok := dailySlope(in.daily)
	if !ok {
		return entity.Insight{}, false
	}

	span := in.daily[len(in.daily)-1].day.Sub(in.daily[0].day).Hours() / 24
	fittedStart := intercept
	fittedEnd := intercept + slope*span
	if fittedStart <= 0 {
		return entity.Insight{}, false
	}
	relChange := (fittedEnd - fittedStart) / fittedStart * 100
	confidence := clamp(0.5+r2/2, 0, 0.9)

	switch {
	case relChange < -15 && r2 > 0.3:
		return entity.Insight{
			Type:        entity.InsightTypeTrend,
			Icon:        "trending-down",
			Color:       "green",
			Title:       "Response times are improving",
			Description: fmt.Sprintf("Your daily median response time dropped about %.0f%% over this period.", -relChange),
			Confidence:  confidence,
			SampleCount: len(in.windows),
		}, true
	case relChange > 15 && r2 > 0.3:
		return entity.Insight{
			Type:        entity.InsightTypeTrend,
			Icon:        "trending-up",
			Color:       "red",
			Title:       "Response times are slipping",
			Description: fmt.Sprintf("Your daily median response time grew about %.0f%% over this period.", relChange),
			Suggestion:  "Set aside a fixed time each day to clear pending messages.",
			Confidence:  confidence,
			SampleCount: len(in.windows),
		}, true
	case r2 > 0.6:
		return entity.Insight{
			Type:        entity.InsightTypeTrend,
			Icon:        "minus",
			Color:       "blue",
			Title:       "Response times are stable",
			Description: "Your daily median response time has held steady through this period.",
			Confidence:  confidence,
			SampleCount: len(in.windows),
		}, true
	}
	return entity.Insight{}, false
}

// dayOfWeekInsight compares per-weekday medians for days with enough samples
func dayOfWeekInsight(in analyzerInput) (entity.Insight, bool) {
	byDay := make(map[int][]float64)
	for _, w := range in.windows {
		byDay[w.DayOfWeek] = append(byDay[w.DayOfWeek], w.LatencySeconds)
	}

	bestDay, worstDay := -1, -1
	var bestMedian, worstMedian float64
	samples := 0
	for day, vals := range byDay {
		if len(vals) < 3 {
			continue
		}
		m := medianOf(vals)
		samples += len(vals)
		if bestDay == -1 || m < bestMedian {
			bestDay, bestMedian = day, m
		}
		if worstDay == -1 || m > worstMedian {
			worstDay, worstMedian = day, m
		}
	}
	if bestDay == -1 || bestDay == worstDay || bestMedian <= 0 {
		return entity.Insight{}, false
	}

	ratio := worstMedian / bestMedian
	if ratio <= 1.5 {
		return entity.Insight{}, false
	}

	best := time.Weekday(bestDay).String()
	worst := time.Weekday(worstDay).String()
	title := fmt.Sprintf("%ss are your slower day", worst)
	confidence := 0.7
	if ratio > 2.0 {
		title = fmt.Sprintf("%ss drag your response time down", worst)
		confidence = 0.8
	}
	return entity.Insight{
		Type:        entity.InsightTypeDayOfWeek,
		Icon:        "calendar",
		Color:       "yellow",
		Title:       title,
		Description: fmt.Sprintf("You reply in about %s on %ss but %s on %ss.", FormatDuration(bestMedian), best, FormatDuration(worstMedian), worst),
		Suggestion:  fmt.Sprintf("Schedule a catch-up block on %ss.", worst),
		Confidence:  confidence,
		SampleCount: samples,
	}, true
}

// hourOfDayInsight finds the hour where replies are markedly faster
func hourOfDayInsight(in analyzerInput) (entity.Insight, bool) {
	byHour := make(map[int][]float64)
	for _, w := range in.windows {
		byHour[w.HourOfDay] = append(byHour[w.HourOfDay], w.LatencySeconds)
	}

	overall := median(in.sorted)
	if overall <= 0 {
		return entity.Insight{}, false
	}

	peakHour := -1
	var peakMedian float64
	peakSamples := 0
	for hour, vals := range byHour {
		if len(vals) < 3 {
			continue
		}
		m := medianOf(vals)
		if peakHour == -1 || m < peakMedian {
			peakHour, peakMedian, peakSamples = hour, m, len(vals)
		}
	}
	if peakHour == -1 || peakMedian <= 0 || overall/peakMedian < 1.8 {
		return entity.Insight{}, false
	}

	return entity.Insight{
		Type:        entity.InsightTypeHourOfDay,
		Icon:        "clock",
		Color:       "green",
		Title:       fmt.Sprintf("Peak hour: %02d:00", peakHour),
		Description: fmt.Sprintf("Around %02d:00 you reply in about %s, versus %s overall.", peakHour, FormatDuration(peakMedian), FormatDuration(overall)),
		Confidence:  0.65,
		SampleCount: peakSamples,
	}, true
}

// workingHoursInsight compares in-hours and off-hours medians
func workingHoursInsight(in analyzerInput) (entity.Insight, bool) {
	var working, offHours []float64
	for _, w := range in.windows {
		if w.IsWorkingHours {
			working = append(working, w.LatencySeconds)
		} else {
			offHours = append(offHours, w.LatencySeconds)
		}
	}
	if len(working) < 3 || len(offHours) < 3 {
		return entity.Insight{}, false
	}

	workMedian := medianOf(working)
	offMedian := medianOf(offHours)
	if workMedian <= 0 {
		return entity.Insight{}, false
	}

	ratio := offMedian / workMedian
	samples := len(working) + len(offHours)
	switch {
	case ratio > 2.0:
		return entity.Insight{
			Type:        entity.InsightTypeWorkingHours,
			Icon:        "briefcase",
			Color:       "yellow",
			Title:       "Off-hours messages wait much longer",
			Description: fmt.Sprintf("Median reply time is %s during working hours but %s outside them.", FormatDuration(workMedian), FormatDuration(offMedian)),
			Suggestion:  "Consider an auto-reply outside working hours to set expectations.",
			Confidence:  0.75,
			SampleCount: samples,
		}, true
	case ratio < 0.7:
		return entity.Insight{
			Type:        entity.InsightTypeWorkingHours,
			Icon:        "moon",
			Color:       "blue",
			Title:       "You reply faster outside working hours",
			Description: fmt.Sprintf("Median reply time is %s off-hours versus %s during working hours.", FormatDuration(offMedian), FormatDuration(workMedian)),
			Confidence:  0.75,
			SampleCount: samples,
		}, true
	}
	return entity.Insight{}, false
}

// speedTierInsight reports the share of replies under common latency tiers
func speedTierInsight(in analyzerInput) (entity.Insight, bool) {
	n := len(in.windows)
	if n == 0 {
		return entity.Insight{}, false
	}
	under := func(limit float64) float64 {
		count := 0
		for _, v := range in.sorted {
			if v < limit {
				count++
			}
		}
		return float64(count) / float64(n) * 100
	}

	under30m := under(1800)
	under1h := under(3600)

	if under30m > 70 {
		return entity.Insight{
			Type:        entity.InsightTypeSpeedTier,
			Icon:        "zap",
			Color:       "green",
			Title:       "Lightning fast",
			Description: fmt.Sprintf("%.0f%% of your replies land within 30 minutes.", under30m),
			Confidence:  0.85,
			SampleCount: n,
		}, true
	}
	if under1h < 30 {
		return entity.Insight{
			Type:        entity.InsightTypeSpeedTier,
			Icon:        "alert-circle",
			Color:       "orange",
			Title:       "Most replies take over an hour",
			Description: fmt.Sprintf("Only %.0f%% of your replies arrive within an hour.", under1h),
			Suggestion:  "Try triaging new messages twice a day to lift this share.",
			Confidence:  0.7,
			SampleCount: n,
		}, true
	}
	return entity.Insight{}, false
}

// consistencyInsight flags notably steady or erratic response behavior
func consistencyInsight(in analyzerInput) (entity.Insight, bool) {
	if len(in.sorted) < 10 {
		return entity.Insight{}, false
	}
	cv := coefficientOfVariation(in.sorted)
	switch {
	case cv < 0.5:
		return entity.Insight{
			Type:        entity.InsightTypeConsistency,
			Icon:        "check-circle",
			Color:       "green",
			Title:       "Highly consistent",
			Description: "Your response times cluster tightly; contacts know what to expect.",
			Confidence:  0.8,
			SampleCount: len(in.sorted),
		}, true
	case cv > 1.5:
		return entity.Insight{
			Type:        entity.InsightTypeConsistency,
			Icon:        "shuffle",
			Color:       "orange",
			Title:       "Response times vary widely",
			Description: "Some replies are instant while others wait much longer.",
			Suggestion:  "A regular inbox routine would narrow the spread.",
			Confidence:  0.75,
			SampleCount: len(in.sorted),
		}, true
	}
	return entity.Insight{}, false
}

// anomalyInsight reports the most recent day whose median falls outside
// the 1.5·IQR bounds of the daily series.
func anomalyInsight(in analyzerInput) (entity.Insight, bool) {
	if len(in.daily) < 7 {
		return entity.Insight{}, false
	}

	medians := make([]float64, len(in.daily))
	for i, p := range in.daily {
		medians[i] = p.median
	}
	sort.Float64s(medians)
	q1 := nearestRank(medians, 0.25)
	q3 := nearestRank(medians, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	for i := len(in.daily) - 1; i >= 0; i-- {
		p := in.daily[i]
		day := p.day.Format("Monday, Jan 2")
		if p.median > upper {
			return entity.Insight{
				Type:        entity.InsightTypeAnomaly,
				Icon:        "alert-triangle",
				Color:       "orange",
				Title:       fmt.Sprintf("Unusually slow day: %s", day),
				Description: fmt.Sprintf("Median reply time hit %s, far above your typical range.", FormatDuration(p.median)),
				Confidence:  0.8,
				SampleCount: p.count,
			}, true
		}
		if p.median < lower {
			return entity.Insight{
				Type:        entity.InsightTypeAnomaly,
				Icon:        "star",
				Color:       "green",
				Title:       fmt.Sprintf("Exceptionally fast day: %s", day),
				Description: fmt.Sprintf("Median reply time was just %s, well below your typical range.", FormatDuration(p.median)),
				Confidence:  0.8,
				SampleCount: p.count,
			}, true
		}
	}
	return entity.Insight{}, false
}

// contactInsight spots the contact who consistently gets the fastest replies
func contactInsight(in analyzerInput) (entity.Insight, bool) {
	byContact := make(map[string][]float64)
	for _, w := range in.windows {
		if w.ParticipantID == "" {
			continue
		}
		byContact[w.ParticipantID] = append(byContact[w.ParticipantID], w.LatencySeconds)
	}

	vip := ""
	var vipMedian float64
	vipSamples := 0
	for contact, vals := range byContact {
		if len(vals) < 3 {
			continue
		}
		m := medianOf(vals)
		if vip == "" || m < vipMedian {
			vip, vipMedian, vipSamples = contact, m, len(vals)
		}
	}
	if vip == "" || vipMedian >= 1800 {
		return entity.Insight{}, false
	}

	return entity.Insight{
		Type:        entity.InsightTypeContact,
		Icon:        "user-check",
		Color:       "blue",
		Title:       "You have a VIP contact",
		Description: fmt.Sprintf("One contact gets replies in about %s, faster than anyone else.", FormatDuration(vipMedian)),
		Confidence:  0.7,
		SampleCount: vipSamples,
	}, true
}

// predictionInsight projects the recent daily slope two weeks forward.
// Forecasts carry reduced confidence by construction.
func predictionInsight(in analyzerInput) (entity.Insight, bool) {
	points := in.daily
	if len(points) > 7 {
		points = points[len(points)-7:]
	}
	if len(points) < 5 {
		return entity.Insight{}, false
	}

	slope, _, _, ok := dailySlope(points)
	if !ok {
		return entity.Insight{}, false
	}

	currentMedian := points[len(points)-1].median
	projected := currentMedian + slope*14
	if projected < 0 {
		projected = 0
	}
	if currentMedian <= 0 {
		return entity.Insight{}, false
	}

	switch {
	case projected < currentMedian*0.85:
		return entity.Insight{
			Type:        entity.InsightTypePrediction,
			Icon:        "trending-down",
			Color:       "green",
			Title:       "On track to get faster",
			Description: fmt.Sprintf("At the current pace your median could reach %s within two weeks.", FormatDuration(projected)),
			Confidence:  0.55,
			SampleCount: len(in.windows),
		}, true
	case projected > currentMedian*1.15:
		return entity.Insight{
			Type:        entity.InsightTypePrediction,
			Icon:        "trending-up",
			Color:       "orange",
			Title:       "Headed toward slower replies",
			Description: fmt.Sprintf("At the current pace your median could reach %s within two weeks.", FormatDuration(projected)),
			Suggestion:  "Reverse the drift now with a short daily reply session.",
			Confidence:  0.55,
			SampleCount: len(in.windows),
		}, true
	}
	return entity.Insight{}, false
}
