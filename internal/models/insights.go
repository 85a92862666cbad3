package models

import "time"

// MetricDataPoint is one calendar day's value for one metric
type MetricDataPoint struct {
	Date       time.Time      `json:"date"`
	Value      float64        `json:"value"`
	MetricKind MetricKind     `json:"metric_kind"`
	Category   MetricCategory `json:"category"`
}

// MetricSeries is an ascending-by-date sequence with at most one point per day.
// Missing days are omitted, so dates are not necessarily contiguous.
type MetricSeries struct {
	Key    string            `json:"key"` // metric kind or "symptom:<id>"
	Kind   MetricKind        `json:"kind"`
	Name   string            `json:"name"`
	Range  DateRange         `json:"range"`
	Points []MetricDataPoint `json:"points"`
}

// Values returns the point values in date order
func (s MetricSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Len returns the number of points
func (s MetricSeries) Len() int {
	return len(s.Points)
}

// TrendDirection is the direction of a single series
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// ChartStatistics summarizes one series for charts and cards
type ChartStatistics struct {
	Mean             float64        `json:"mean"`
	Min              float64        `json:"min"`
	Max              float64        `json:"max"`
	TrendDirection   TrendDirection `json:"trend_direction"`
	ChangePercentage float64        `json:"change_percentage"`
	SampleSize       int            `json:"sample_size"`
	// Smoothed is a simple moving average of the series, empty when the
	// series is shorter than the smoothing period.
	Smoothed []float64 `json:"smoothed,omitempty"`
}

// CorrelationResult is the outcome of correlating two aligned series
type CorrelationResult struct {
	PrimaryMetric     string    `json:"primary_metric"`
	SecondaryMetric   string    `json:"secondary_metric"`
	PrimaryName       string    `json:"primary_name"`
	SecondaryName     string    `json:"secondary_name"`
	Coefficient       float64   `json:"coefficient"` // Pearson r (-1 to 1)
	PValue            float64   `json:"p_value"`     // two-tailed, Student-t
	IsSignificant     bool      `json:"is_significant"`
	MatchedPointCount int       `json:"matched_point_count"`
	LagDays           int       `json:"lag_days"` // 0 = same day
	TimeRange         DateRange `json:"time_range"`
	StrengthLabel     string    `json:"strength_label"`
	DirectionLabel    string    `json:"direction_label"`
	InsightStrings    []string  `json:"insight_strings"`
}

// ScoreTrend classifies a health score against the prior window
type ScoreTrend string

const (
	ScoreImproving ScoreTrend = "improving"
	ScoreDeclining ScoreTrend = "declining"
	ScoreStable    ScoreTrend = "stable"
)

// HealthScore is the weighted 0-100 aggregate over tracked metrics
type HealthScore struct {
	OverallScore    float64                `json:"overall_score"`
	PerMetricScores map[MetricKind]float64 `json:"per_metric_scores"`
	Trend           ScoreTrend             `json:"trend"`
	PreviousScore   *float64               `json:"previous_score,omitempty"`
	Grade           string                 `json:"grade"`
	ComputedAt      time.Time              `json:"computed_at"`
}

// StreakResult describes consecutive days satisfying a predicate
type StreakResult struct {
	StreakKind    string `json:"streak_kind"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	IsActive      bool   `json:"is_active"`
}

// InsightType represents the detector that produced an insight
type InsightType string

const (
	InsightTypeTrend          InsightType = "trend"
	InsightTypeAchievement    InsightType = "achievement"
	InsightTypePattern        InsightType = "pattern"
	InsightTypeCorrelation    InsightType = "correlation"
	InsightTypeWarning        InsightType = "warning"
	InsightTypeRecommendation InsightType = "recommendation"
)

// Priority orders insights for presentation
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank returns a sortable weight for the priority (critical highest)
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// HealthInsight is one generated, ranked observation
type HealthInsight struct {
	ID              string      `json:"id"`
	Type            InsightType `json:"type"`
	Priority        Priority    `json:"priority"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	ActionableText  string      `json:"actionable_text,omitempty"`
	Confidence      float64     `json:"confidence"` // heuristic 0-1
	RelevantMetrics []string    `json:"relevant_metrics"`
	RelevancePeriod DateRange   `json:"relevance_period"`
	GeneratedAt     time.Time   `json:"generated_at"`
	IsActionable    bool        `json:"is_actionable"`
}

// AnalysisReport bundles one pipeline run
type AnalysisReport struct {
	Period       DateRange                  `json:"period"`
	Statistics   map[string]ChartStatistics `json:"statistics"`
	Correlations []CorrelationResult        `json:"correlations"`
	HealthScore  HealthScore                `json:"health_score"`
	Streaks      []StreakResult             `json:"streaks"`
	Insights     []HealthInsight            `json:"insights"`
	TotalDays    int                        `json:"total_days"`
	GeneratedAt  time.Time                  `json:"generated_at"`
}
