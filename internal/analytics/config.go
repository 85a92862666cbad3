// Package analytics is the health analytics engine: it turns day-bucketed
// journal logs into series, summary statistics, correlations, a health score,
// streaks and a ranked list of insights.
//
// Every component is a pure function of its inputs and the Config it was built
// with. Nothing here performs I/O or keeps state between calls, so components
// may be shared freely across goroutines.
package analytics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

const (
	// DefaultMinimumSampleSize is the fewest aligned days a correlation accepts
	DefaultMinimumSampleSize = 3

	// DefaultTrendThreshold is the relative half-over-half change treated as a trend
	DefaultTrendThreshold = 0.05

	// DefaultSignificanceLevel is the p-value cutoff for IsSignificant
	DefaultSignificanceLevel = 0.05

	// DefaultMaxInsights caps GenerateInsights when the caller passes no limit
	DefaultMaxInsights = 10
)

// Config carries every tunable the engine consumes. Callers build one per
// request (or share one); there is no package-level mutable state.
type Config struct {
	MinimumSampleSize int
	TrendThreshold    float64
	SignificanceLevel float64
	// StrengthBands are the upper bounds of Very Weak, Weak, Moderate and Strong
	StrengthBands [4]float64
	MaxInsights   int

	// Health score windows
	RecentWindowDays int
	Weights          map[models.MetricKind]float64

	// SmoothingPeriod is the moving-average period for ChartStatistics.Smoothed
	SmoothingPeriod int

	// Workers bounds the goroutines used by ScanPairs
	Workers int

	// Insight detector thresholds
	InsightTrendPercent   float64 // |changePercentage| for a trend insight
	WarningPercent        float64 // adverse change for a high-priority warning
	CriticalPercent       float64 // adverse change for a critical warning
	CriticalScore         float64 // overall score under which a declining score is critical
	PatternThreshold      float64 // relative weekday spread for a pattern insight
	MinPatternPoints      int
	AchievementStreakDays int
	FavorableScore        float64 // normalized score counted as "good"
	FavorableRunDays      int

	// Now stamps ComputedAt/GeneratedAt; nil means time.Now. Numeric results
	// never depend on it.
	Now func() time.Time
}

// DefaultConfig returns the documented defaults
func DefaultConfig() Config {
	return Config{
		MinimumSampleSize:     DefaultMinimumSampleSize,
		TrendThreshold:        DefaultTrendThreshold,
		SignificanceLevel:     DefaultSignificanceLevel,
		StrengthBands:         [4]float64{0.2, 0.4, 0.6, 0.8},
		MaxInsights:           DefaultMaxInsights,
		RecentWindowDays:      7,
		Weights:               DefaultWeights(),
		SmoothingPeriod:       7,
		Workers:               runtime.NumCPU(),
		InsightTrendPercent:   10,
		WarningPercent:        20,
		CriticalPercent:       50,
		CriticalScore:         40,
		PatternThreshold:      0.15,
		MinPatternPoints:      14,
		AchievementStreakDays: 3,
		FavorableScore:        70,
		FavorableRunDays:      7,
	}
}

// DefaultWeights weights mood, sleep and pain above the rest
func DefaultWeights() map[models.MetricKind]float64 {
	return map[models.MetricKind]float64{
		models.MetricMood:            2,
		models.MetricEnergy:          1.5,
		models.MetricStress:          1.5,
		models.MetricAnxiety:         1,
		models.MetricPain:            2,
		models.MetricSleepHours:      1.5,
		models.MetricSleepQuality:    1.5,
		models.MetricSteps:           1,
		models.MetricWaterIntake:     0.5,
		models.MetricExerciseMinutes: 1,
		models.MetricExercised:       0.5,
		models.MetricMedicationTaken: 1,
	}
}

// Validate checks that thresholds are usable
func (c Config) Validate() error {
	if c.MinimumSampleSize < 3 {
		return fmt.Errorf("minimum sample size must be at least 3, got %d", c.MinimumSampleSize)
	}
	if c.TrendThreshold < 0 {
		return fmt.Errorf("trend threshold must not be negative, got %v", c.TrendThreshold)
	}
	if c.SignificanceLevel <= 0 || c.SignificanceLevel >= 1 {
		return fmt.Errorf("significance level must be in (0,1), got %v", c.SignificanceLevel)
	}
	prev := 0.0
	for i, b := range c.StrengthBands {
		if b <= prev || b > 1 {
			return fmt.Errorf("strength band %d (%v) must be increasing and within (0,1]", i, b)
		}
		prev = b
	}
	if c.RecentWindowDays < 1 {
		return fmt.Errorf("recent window must be at least 1 day, got %d", c.RecentWindowDays)
	}
	for kind, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("weight for %s must not be negative", kind)
		}
	}
	return nil
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Config) maxInsights(requested int) int {
	if requested > 0 {
		return requested
	}
	if c.MaxInsights > 0 {
		return c.MaxInsights
	}
	return DefaultMaxInsights
}
