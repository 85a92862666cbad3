package analytics

import (
	"sort"
	"time"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// StreakLogging is the kind label for the "logged anything today" streak
const StreakLogging = "logging"

// StreakDefinition derives a daily predicate from one metric series
type StreakDefinition struct {
	Kind      string
	Metric    models.MetricKind
	Predicate func(value float64) bool
}

// AtLeast returns a predicate satisfied by values >= threshold
func AtLeast(threshold float64) func(float64) bool {
	return func(v float64) bool { return v >= threshold }
}

// StandardStreaks are the streaks the app tracks besides logging
var StandardStreaks = []StreakDefinition{
	{Kind: "exercise", Metric: models.MetricExercised, Predicate: AtLeast(1)},
	{Kind: "medication", Metric: models.MetricMedicationTaken, Predicate: AtLeast(1)},
	{Kind: "good_sleep", Metric: models.MetricSleepHours, Predicate: AtLeast(7)},
	{Kind: "hydration", Metric: models.MetricWaterIntake, Predicate: AtLeast(8)},
}

// FlagsFromSeries evaluates predicate for every point in series
func FlagsFromSeries(series models.MetricSeries, predicate func(float64) bool) []models.DailyFlag {
	flags := make([]models.DailyFlag, len(series.Points))
	for i, p := range series.Points {
		flags[i] = models.DailyFlag{Date: p.Date, Value: predicate(p.Value)}
	}
	return flags
}

// StreakEngine scans daily flags for consecutive true days
type StreakEngine struct{}

// NewStreakEngine creates a streak engine
func NewStreakEngine() *StreakEngine {
	return &StreakEngine{}
}

// CalculateStreak walks the flags up to asOf. A missing day breaks a run the
// same way a false day does. The current streak is the run ending on the most
// recent flagged day, provided that day is asOf or the day before (today may
// simply not be logged yet); it is active only when it includes asOf itself.
func (e *StreakEngine) CalculateStreak(kind string, flags []models.DailyFlag, asOf time.Time) models.StreakResult {
	result := models.StreakResult{StreakKind: kind}
	asOfDay := models.Day(asOf)

	byDay := make(map[time.Time]bool, len(flags))
	for _, f := range flags {
		day := models.Day(f.Date)
		if day.After(asOfDay) {
			continue
		}
		byDay[day] = byDay[day] || f.Value
	}
	if len(byDay) == 0 {
		return result
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 0
	for i, day := range days {
		switch {
		case !byDay[day]:
			run = 0
		case i > 0 && byDay[days[i-1]] && days[i-1].AddDate(0, 0, 1).Equal(day):
			run++
		default:
			run = 1
		}
		if run > result.LongestStreak {
			result.LongestStreak = run
		}
	}

	// run now ends on the last flagged day
	anchor := days[len(days)-1]
	switch {
	case anchor.Equal(asOfDay):
		result.CurrentStreak = run
		result.IsActive = run > 0
	case anchor.AddDate(0, 0, 1).Equal(asOfDay):
		result.CurrentStreak = run
	}

	return result
}

// StreakPersonalBest reports whether the current run is the longest seen
func StreakPersonalBest(s models.StreakResult) bool {
	return s.CurrentStreak > 0 && s.CurrentStreak >= s.LongestStreak
}
