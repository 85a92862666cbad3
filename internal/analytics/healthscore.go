package analytics

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// Grades for the overall score
const (
	GradeExcellent      = "Excellent"
	GradeGood           = "Good"
	GradeFair           = "Fair"
	GradeNeedsAttention = "Needs Attention"
	GradeNoData         = "No Data"
)

// HealthScoreEngine combines per-metric sub-scores into one 0-100 score
type HealthScoreEngine struct {
	cfg Config
}

// NewHealthScoreEngine creates an engine using cfg's windows, weights and trend threshold
func NewHealthScoreEngine(cfg Config) *HealthScoreEngine {
	return &HealthScoreEngine{cfg: cfg}
}

// CalculateHealthScore scores the recent window (the RecentWindowDays ending
// on the latest logged day across all series) and compares it to the window
// before it. A nil weights map falls back to the configured weights; kinds
// missing from the map weigh 1. Metrics without data in a window are left out
// of that window's average entirely.
func (e *HealthScoreEngine) CalculateHealthScore(seriesByMetric map[models.MetricKind]models.MetricSeries, weights map[models.MetricKind]float64) models.HealthScore {
	if weights == nil {
		weights = e.cfg.Weights
	}

	score := models.HealthScore{
		PerMetricScores: make(map[models.MetricKind]float64),
		Trend:           models.ScoreStable,
		Grade:           GradeNoData,
		ComputedAt:      e.cfg.now(),
	}

	reference, ok := latestDay(seriesByMetric)
	if !ok {
		return score
	}

	window := e.cfg.RecentWindowDays
	if window < 1 {
		window = 1
	}
	recent := models.LastNDays(reference, window)
	prior := models.LastNDays(reference.AddDate(0, 0, -window), window)

	score.PerMetricScores = windowScores(seriesByMetric, recent)
	if len(score.PerMetricScores) == 0 {
		return score
	}

	overall, ok := weightedAverage(score.PerMetricScores, weights)
	if !ok {
		return score
	}
	score.OverallScore = clamp(overall, 0, 100)
	score.Grade = gradeFor(score.OverallScore)

	if previous, ok := weightedAverage(windowScores(seriesByMetric, prior), weights); ok {
		previous = clamp(previous, 0, 100)
		score.PreviousScore = &previous

		direction, _ := classifyChange(previous, score.OverallScore, e.cfg.TrendThreshold)
		switch direction {
		case models.TrendIncreasing:
			score.Trend = models.ScoreImproving
		case models.TrendDecreasing:
			score.Trend = models.ScoreDeclining
		}
	}

	return score
}

// NormalizeValue maps a raw value onto 0-100 so that higher is always better.
// The second result is false for kinds that are not scored.
func NormalizeValue(kind models.MetricKind, value float64) (float64, bool) {
	desc, ok := models.Descriptor(kind)
	if !ok || !desc.Scorable() {
		return 0, false
	}

	n := desc.Normalization
	span := n.Max - n.Min

	switch n.Rule {
	case models.NormalizeLinear:
		return clamp((value-n.Min)/span*100, 0, 100), true
	case models.NormalizeInverse:
		return clamp((n.Max-value)/span*100, 0, 100), true
	case models.NormalizeBand:
		switch {
		case value < n.OptimalLow:
			return clamp((value-n.Min)/(n.OptimalLow-n.Min)*100, 0, 100), true
		case value > n.OptimalHigh:
			return clamp((n.Max-value)/(n.Max-n.OptimalHigh)*100, 0, 100), true
		default:
			return 100, true
		}
	case models.NormalizePercentage:
		// Boolean kinds average to the fraction of days; scale to percent
		return clamp(value*100, 0, 100), true
	}
	return 0, false
}

// windowScores averages each scorable series inside dr and normalizes it
func windowScores(seriesByMetric map[models.MetricKind]models.MetricSeries, dr models.DateRange) map[models.MetricKind]float64 {
	scores := make(map[models.MetricKind]float64)
	for kind, series := range seriesByMetric {
		var values []float64
		for _, p := range series.Points {
			if dr.Contains(p.Date) {
				values = append(values, p.Value)
			}
		}
		if len(values) == 0 {
			continue
		}
		if s, ok := NormalizeValue(kind, stat.Mean(values, nil)); ok {
			scores[kind] = s
		}
	}
	return scores
}

// weightedAverage sums in sorted kind order so results are bit-identical
// across calls regardless of map iteration order. It reports false when no
// score carries a positive weight.
func weightedAverage(scores map[models.MetricKind]float64, weights map[models.MetricKind]float64) (float64, bool) {
	kinds := make([]models.MetricKind, 0, len(scores))
	for kind := range scores {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var sum, totalWeight float64
	for _, kind := range kinds {
		w, ok := weights[kind]
		if !ok {
			w = 1
		}
		if w <= 0 {
			continue
		}
		sum += scores[kind] * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0, false
	}
	return sum / totalWeight, true
}

func latestDay(seriesByMetric map[models.MetricKind]models.MetricSeries) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, series := range seriesByMetric {
		if n := len(series.Points); n > 0 {
			d := models.Day(series.Points[n-1].Date)
			if !found || d.After(latest) {
				latest, found = d, true
			}
		}
	}
	return latest, found
}

func gradeFor(score float64) string {
	switch {
	case score >= 80:
		return GradeExcellent
	case score >= 60:
		return GradeGood
	case score >= 40:
		return GradeFair
	default:
		return GradeNeedsAttention
	}
}
