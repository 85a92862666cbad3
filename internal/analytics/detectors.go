package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// healthScoreMetric is the RelevantMetrics entry for score-level insights
const healthScoreMetric = "health_score"

func (e *InsightEngine) detectTrends(ic InsightContext, _ []models.HealthInsight) []models.HealthInsight {
	var out []models.HealthInsight

	for _, key := range sortedKeys(ic.Statistics) {
		st := ic.Statistics[key]
		desc, ok := descriptorForKey(key)
		if !ok || !desc.Scorable() {
			continue
		}
		if st.TrendDirection == models.TrendStable || math.Abs(st.ChangePercentage) < e.cfg.InsightTrendPercent {
			continue
		}

		name := seriesName(ic, key, desc)
		verb, title := "risen", fmt.Sprintf("%s is trending up", name)
		if st.TrendDirection == models.TrendDecreasing {
			verb, title = "fallen", fmt.Sprintf("%s is trending down", name)
		}

		priority := models.PriorityLow
		if math.Abs(st.ChangePercentage) >= 2*e.cfg.InsightTrendPercent {
			priority = models.PriorityMedium
		}

		out = append(out, models.HealthInsight{
			Type:     models.InsightTypeTrend,
			Priority: priority,
			Title:    title,
			Description: fmt.Sprintf("Your %s has %s %s%% in the second half of this period compared with the first.",
				strings.ToLower(name), verb, formatFixed(math.Abs(st.ChangePercentage), 1)),
			Confidence:      confidenceScore(st.SampleSize, 14, math.Abs(st.ChangePercentage)/50),
			RelevantMetrics: []string{key},
		})
	}

	return out
}

func (e *InsightEngine) detectAchievements(ic InsightContext, _ []models.HealthInsight) []models.HealthInsight {
	var out []models.HealthInsight

	for _, s := range ic.Streaks {
		if !s.IsActive || s.CurrentStreak < e.cfg.AchievementStreakDays {
			continue
		}

		label := streakLabel(s.StreakKind)
		title := fmt.Sprintf("%s streak: %d days", label, s.CurrentStreak)
		description := fmt.Sprintf("You've kept your %s streak going for %d days in a row.", strings.ToLower(label), s.CurrentStreak)

		priority := models.PriorityLow
		if StreakPersonalBest(s) {
			priority = models.PriorityMedium
			description += " That's your longest streak yet!"
		}

		out = append(out, models.HealthInsight{
			Type:            models.InsightTypeAchievement,
			Priority:        priority,
			Title:           title,
			Description:     description,
			Confidence:      confidenceScore(s.CurrentStreak, 7, float64(s.CurrentStreak)/14),
			RelevantMetrics: []string{streakMetric(s.StreakKind)},
		})
	}

	for _, key := range sortedKeys(ic.Series) {
		series := ic.Series[key]
		desc, ok := descriptorForKey(key)
		if !ok || !desc.Scorable() {
			continue
		}

		run, ok := e.favorableRun(series, desc.Kind, ic.Period)
		if !ok {
			continue
		}

		name := seriesName(ic, key, desc)
		out = append(out, models.HealthInsight{
			Type:            models.InsightTypeAchievement,
			Priority:        models.PriorityLow,
			Title:           fmt.Sprintf("Consistently good %s", strings.ToLower(name)),
			Description:     fmt.Sprintf("Your %s has been in a healthy range for the last %d days.", strings.ToLower(name), run.Days()),
			Confidence:      confidenceScore(run.Days(), 14, 0.8),
			RelevantMetrics: []string{key},
			RelevancePeriod: run,
		})
	}

	return out
}

// favorableRun reports the trailing FavorableRunDays of series when they are
// consecutive, end at the period end (or the last point if the period is
// unset) and all score at least FavorableScore
func (e *InsightEngine) favorableRun(series models.MetricSeries, kind models.MetricKind, period models.DateRange) (models.DateRange, bool) {
	need := e.cfg.FavorableRunDays
	if need < 1 || series.Len() < need {
		return models.DateRange{}, false
	}

	tail := series.Points[series.Len()-need:]
	last := models.Day(tail[need-1].Date)
	if !period.IsZero() && !last.Equal(models.Day(period.End)) {
		return models.DateRange{}, false
	}

	for i, p := range tail {
		if i > 0 && !models.Day(tail[i-1].Date).AddDate(0, 0, 1).Equal(models.Day(p.Date)) {
			return models.DateRange{}, false
		}
		score, ok := NormalizeValue(kind, p.Value)
		if !ok || score < e.cfg.FavorableScore {
			return models.DateRange{}, false
		}
	}

	return models.NewDateRange(tail[0].Date, last), true
}

func (e *InsightEngine) detectPatterns(ic InsightContext, _ []models.HealthInsight) []models.HealthInsight {
	var out []models.HealthInsight

	for _, key := range sortedKeys(ic.Series) {
		series := ic.Series[key]
		if series.Len() < e.cfg.MinPatternPoints {
			continue
		}
		desc, ok := descriptorForKey(key)
		if !ok || !desc.Scorable() {
			continue
		}

		overall := stat.Mean(series.Values(), nil)
		if overall == 0 {
			continue
		}
		name := seriesName(ic, key, desc)

		if insight, ok := e.weekdayPattern(series, desc, name, overall); ok {
			insight.RelevantMetrics = []string{key}
			out = append(out, insight)
		}
		if insight, ok := e.weekendPattern(series, desc, name); ok {
			insight.RelevantMetrics = []string{key}
			out = append(out, insight)
		}
	}

	return out
}

// weekdayPattern looks for a day of the week that stands out in the
// unfavorable direction
func (e *InsightEngine) weekdayPattern(series models.MetricSeries, desc models.MetricDescriptor, name string, overall float64) (models.HealthInsight, bool) {
	byWeekday := make(map[time.Weekday][]float64)
	for _, p := range series.Points {
		wd := p.Date.Weekday()
		byWeekday[wd] = append(byWeekday[wd], p.Value)
	}

	var lowDay, highDay time.Weekday
	var low, high float64
	groups := 0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		values := byWeekday[wd]
		if len(values) < 2 {
			continue
		}
		avg := stat.Mean(values, nil)
		if groups == 0 || avg < low {
			low, lowDay = avg, wd
		}
		if groups == 0 || avg > high {
			high, highDay = avg, wd
		}
		groups++
	}
	if groups < 4 {
		return models.HealthInsight{}, false
	}

	spread := (high - low) / math.Abs(overall)
	if spread < e.cfg.PatternThreshold {
		return models.HealthInsight{}, false
	}

	day, avg, adjective := lowDay, low, "Lower"
	if !desc.HigherIsBetter() {
		day, avg, adjective = highDay, high, "Higher"
	}

	return models.HealthInsight{
		Type:     models.InsightTypePattern,
		Priority: models.PriorityLow,
		Title:    fmt.Sprintf("%s %s on %ss", adjective, strings.ToLower(name), day),
		Description: fmt.Sprintf("Your %s averages %s on %ss, compared with %s overall.",
			strings.ToLower(name), formatFixed(avg, 1), day, formatFixed(overall, 1)),
		Confidence: confidenceScore(series.Len(), 28, spread),
	}, true
}

// weekendPattern compares Saturday and Sunday against the rest of the week
func (e *InsightEngine) weekendPattern(series models.MetricSeries, desc models.MetricDescriptor, name string) (models.HealthInsight, bool) {
	var weekend, weekday []float64
	for _, p := range series.Points {
		switch p.Date.Weekday() {
		case time.Saturday, time.Sunday:
			weekend = append(weekend, p.Value)
		default:
			weekday = append(weekday, p.Value)
		}
	}
	if len(weekend) < 2 || len(weekday) < 2 {
		return models.HealthInsight{}, false
	}

	weekendAvg, weekdayAvg := stat.Mean(weekend, nil), stat.Mean(weekday, nil)
	if weekdayAvg == 0 {
		return models.HealthInsight{}, false
	}
	relative := (weekendAvg - weekdayAvg) / math.Abs(weekdayAvg)
	if math.Abs(relative) < e.cfg.PatternThreshold {
		return models.HealthInsight{}, false
	}

	direction := "higher"
	if relative < 0 {
		direction = "lower"
	}

	return models.HealthInsight{
		Type:     models.InsightTypePattern,
		Priority: models.PriorityLow,
		Title:    fmt.Sprintf("%s is %s on weekends", name, direction),
		Description: fmt.Sprintf("Your %s averages %s on weekends versus %s on weekdays.",
			strings.ToLower(name), formatFixed(weekendAvg, 1), formatFixed(weekdayAvg, 1)),
		Confidence: confidenceScore(series.Len(), 28, math.Abs(relative)),
	}, true
}

// detectCorrelation surfaces the strongest significant relationship
func (e *InsightEngine) detectCorrelation(ic InsightContext, _ []models.HealthInsight) []models.HealthInsight {
	results := make([]models.CorrelationResult, len(ic.Correlations))
	copy(results, ic.Correlations)
	SortCorrelations(results)

	for _, r := range results {
		if !r.IsSignificant {
			continue
		}

		priority := models.PriorityLow
		if math.Abs(r.Coefficient) >= e.cfg.StrengthBands[2] {
			priority = models.PriorityMedium
		}

		return []models.HealthInsight{{
			Type:            models.InsightTypeCorrelation,
			Priority:        priority,
			Title:           fmt.Sprintf("%s and %s are linked", r.PrimaryName, r.SecondaryName),
			Description:     strings.Join(r.InsightStrings, " "),
			Confidence:      confidenceWithSignificance(r.MatchedPointCount, 30, math.Abs(r.Coefficient), r.PValue),
			RelevantMetrics: []string{r.PrimaryMetric, r.SecondaryMetric},
			RelevancePeriod: r.TimeRange,
		}}
	}
	return nil
}

func (e *InsightEngine) detectWarnings(ic InsightContext, _ []models.HealthInsight) []models.HealthInsight {
	var out []models.HealthInsight

	if hs := ic.HealthScore; hs != nil && hs.Trend == models.ScoreDeclining && hs.PreviousScore != nil && *hs.PreviousScore > 0 {
		drop := (*hs.PreviousScore - hs.OverallScore) / *hs.PreviousScore * 100

		priority := models.PriorityHigh
		if hs.OverallScore < e.cfg.CriticalScore {
			priority = models.PriorityCritical
		}

		out = append(out, models.HealthInsight{
			Type:     models.InsightTypeWarning,
			Priority: priority,
			Title:    "Your health score is dropping",
			Description: fmt.Sprintf("Your health score fell from %s to %s over the last week.",
				formatFixed(*hs.PreviousScore, 0), formatFixed(hs.OverallScore, 0)),
			Confidence:      confidenceScore(len(hs.PerMetricScores), 5, drop/25),
			RelevantMetrics: []string{healthScoreMetric},
		})
	}

	for _, key := range sortedKeys(ic.Statistics) {
		st := ic.Statistics[key]
		desc, ok := descriptorForKey(key)
		if !ok || !desc.Scorable() || st.TrendDirection == models.TrendStable {
			continue
		}

		adverse := (st.TrendDirection == models.TrendDecreasing) == desc.HigherIsBetter()
		change := math.Abs(st.ChangePercentage)
		if !adverse || change < e.cfg.WarningPercent {
			continue
		}

		priority := models.PriorityHigh
		if change >= e.cfg.CriticalPercent {
			priority = models.PriorityCritical
		}

		name := seriesName(ic, key, desc)
		title := fmt.Sprintf("%s is declining", name)
		if !desc.HigherIsBetter() {
			title = fmt.Sprintf("%s is rising", name)
		}

		out = append(out, models.HealthInsight{
			Type:     models.InsightTypeWarning,
			Priority: priority,
			Title:    title,
			Description: fmt.Sprintf("Your %s changed by %s%% in the second half of this period, which is worth keeping an eye on.",
				strings.ToLower(name), formatFixed(st.ChangePercentage, 1)),
			Confidence:      confidenceScore(st.SampleSize, 14, change/50),
			RelevantMetrics: []string{key},
		})
	}

	return out
}

// detectRecommendations pairs warnings and patterns found earlier in the run
// with an actionable suggestion for the metric involved
func (e *InsightEngine) detectRecommendations(ic InsightContext, prior []models.HealthInsight) []models.HealthInsight {
	var out []models.HealthInsight

	for _, p := range prior {
		priority := models.PriorityLow
		switch p.Type {
		case models.InsightTypeWarning:
			priority = models.PriorityMedium
		case models.InsightTypePattern:
		default:
			continue
		}
		if len(p.RelevantMetrics) != 1 {
			continue
		}

		key := p.RelevantMetrics[0]
		if key == healthScoreMetric {
			weakest, ok := weakestMetric(ic.HealthScore)
			if !ok {
				continue
			}
			key = string(weakest)
		}
		desc, ok := descriptorForKey(key)
		if !ok || desc.Recommendation == "" {
			continue
		}

		out = append(out, models.HealthInsight{
			Type:            models.InsightTypeRecommendation,
			Priority:        priority,
			Title:           fmt.Sprintf("A suggestion for your %s", strings.ToLower(seriesName(ic, key, desc))),
			Description:     fmt.Sprintf("Based on: %s.", p.Title),
			ActionableText:  desc.Recommendation,
			Confidence:      p.Confidence * 0.9,
			RelevantMetrics: []string{key},
			RelevancePeriod: p.RelevancePeriod,
			IsActionable:    true,
		})
	}

	return out
}

// weakestMetric returns the lowest-scoring metric, ties broken by kind
func weakestMetric(hs *models.HealthScore) (models.MetricKind, bool) {
	if hs == nil || len(hs.PerMetricScores) == 0 {
		return "", false
	}
	kinds := make([]models.MetricKind, 0, len(hs.PerMetricScores))
	for kind := range hs.PerMetricScores {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	weakest := kinds[0]
	for _, kind := range kinds[1:] {
		if hs.PerMetricScores[kind] < hs.PerMetricScores[weakest] {
			weakest = kind
		}
	}
	return weakest, true
}

func descriptorForKey(key string) (models.MetricDescriptor, bool) {
	if _, ok := models.ParseSymptomKey(key); ok {
		return models.Descriptor(models.MetricSymptom)
	}
	return models.Descriptor(models.MetricKind(key))
}

func seriesName(ic InsightContext, key string, desc models.MetricDescriptor) string {
	if s, ok := ic.Series[key]; ok && s.Name != "" {
		return s.Name
	}
	return desc.DisplayName
}

func streakLabel(kind string) string {
	label := strings.ReplaceAll(kind, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func streakMetric(kind string) string {
	for _, def := range StandardStreaks {
		if def.Kind == kind {
			return string(def.Metric)
		}
	}
	return kind
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
