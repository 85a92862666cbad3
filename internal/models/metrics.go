package models

import (
	"strings"
	"time"
)

// MetricKind identifies a built-in tracked metric
type MetricKind string

const (
	MetricMood            MetricKind = "mood"
	MetricEnergy          MetricKind = "energy"
	MetricStress          MetricKind = "stress"
	MetricAnxiety         MetricKind = "anxiety"
	MetricPain            MetricKind = "pain"
	MetricSleepHours      MetricKind = "sleep_hours"
	MetricSleepQuality    MetricKind = "sleep_quality"
	MetricSteps           MetricKind = "steps"
	MetricWaterIntake     MetricKind = "water_intake"
	MetricExerciseMinutes MetricKind = "exercise_minutes"
	MetricExercised       MetricKind = "exercised"
	MetricMedicationTaken MetricKind = "medication_taken"
	MetricWeather         MetricKind = "weather"

	// MetricSymptom marks a series built from a user-defined symptom
	MetricSymptom MetricKind = "symptom"
)

// SymptomKeyPrefix prefixes symptom IDs in series keys ("symptom:<id>")
const SymptomKeyPrefix = "symptom:"

// MetricCategory groups metrics for presentation
type MetricCategory string

const (
	CategoryMental      MetricCategory = "mental"
	CategoryPhysical    MetricCategory = "physical"
	CategorySleep       MetricCategory = "sleep"
	CategoryActivity    MetricCategory = "activity"
	CategoryLifestyle   MetricCategory = "lifestyle"
	CategoryEnvironment MetricCategory = "environment"
	CategorySymptom     MetricCategory = "symptom"
)

// Encoding describes how a raw log field becomes a number
type Encoding string

const (
	EncodingNumeric     Encoding = "numeric"
	EncodingBoolean     Encoding = "boolean"     // yes/no -> 1.0/0.0
	EncodingCategorical Encoding = "categorical" // ordinal table
)

// NormalizationRule selects how a value maps onto the 0-100 score scale
type NormalizationRule string

const (
	NormalizeLinear     NormalizationRule = "linear"     // Min -> 0, Max -> 100
	NormalizeInverse    NormalizationRule = "inverse"    // Min -> 100, Max -> 0
	NormalizeBand       NormalizationRule = "band"       // 100 inside [OptimalLow, OptimalHigh]
	NormalizePercentage NormalizationRule = "percentage" // passthrough, clamped
	NormalizeNone       NormalizationRule = "none"       // not scored
)

// Normalization holds the per-kind scoring parameters
type Normalization struct {
	Rule        NormalizationRule `json:"rule"`
	Min         float64           `json:"min"`
	Max         float64           `json:"max"`
	OptimalLow  float64           `json:"optimal_low,omitempty"`
	OptimalHigh float64           `json:"optimal_high,omitempty"`
}

// MetricDescriptor is the per-kind row of the metric table
type MetricDescriptor struct {
	Kind           MetricKind     `json:"kind"`
	DisplayName    string         `json:"display_name"`
	Category       MetricCategory `json:"category"`
	Unit           string         `json:"unit"`
	Encoding       Encoding       `json:"encoding"`
	Normalization  Normalization  `json:"normalization"`
	Recommendation string         `json:"recommendation"`
}

// HigherIsBetter reports whether an increase in the raw value is favorable
func (d MetricDescriptor) HigherIsBetter() bool {
	return d.Normalization.Rule != NormalizeInverse
}

// Scorable reports whether the kind contributes to the health score
func (d MetricDescriptor) Scorable() bool {
	return d.Normalization.Rule != NormalizeNone
}

// WeatherScale is the ordinal encoding for weather categories
var WeatherScale = map[string]float64{
	"stormy":        1,
	"rainy":         2,
	"snowy":         3,
	"cloudy":        4,
	"partly_cloudy": 5,
	"sunny":         6,
}

// Descriptors is the closed metric table. Every MetricKind has exactly one row.
var Descriptors = map[MetricKind]MetricDescriptor{
	MetricMood: {
		Kind: MetricMood, DisplayName: "Mood", Category: CategoryMental, Unit: "scale", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeLinear, Min: 1, Max: 10},
		Recommendation: "Try scheduling one small activity you enjoy each day and note how it affects your mood.",
	},
	MetricEnergy: {
		Kind: MetricEnergy, DisplayName: "Energy", Category: CategoryMental, Unit: "scale", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeLinear, Min: 1, Max: 10},
		Recommendation: "Short walks and regular meal times can help keep your energy steady.",
	},
	MetricStress: {
		Kind: MetricStress, DisplayName: "Stress", Category: CategoryMental, Unit: "scale", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeInverse, Min: 1, Max: 10},
		Recommendation: "Consider a few minutes of breathing exercises or a break away from screens when stress builds up.",
	},
	MetricAnxiety: {
		Kind: MetricAnxiety, DisplayName: "Anxiety", Category: CategoryMental, Unit: "scale", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeInverse, Min: 1, Max: 10},
		Recommendation: "Grounding techniques and talking to someone you trust can help when anxiety rises.",
	},
	MetricPain: {
		Kind: MetricPain, DisplayName: "Pain Level", Category: CategoryPhysical, Unit: "scale", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeInverse, Min: 0, Max: 10},
		Recommendation: "If your pain keeps rising, consider discussing it with your healthcare provider.",
	},
	MetricSleepHours: {
		Kind: MetricSleepHours, DisplayName: "Sleep Duration", Category: CategorySleep, Unit: "hours", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeBand, Min: 4, Max: 12, OptimalLow: 7, OptimalHigh: 9},
		Recommendation: "Aim for a consistent bedtime and 7-9 hours of sleep.",
	},
	MetricSleepQuality: {
		Kind: MetricSleepQuality, DisplayName: "Sleep Quality", Category: CategorySleep, Unit: "scale", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeLinear, Min: 1, Max: 10},
		Recommendation: "Keeping your bedroom dark and cool and avoiding caffeine late in the day can improve sleep quality.",
	},
	MetricSteps: {
		Kind: MetricSteps, DisplayName: "Steps", Category: CategoryActivity, Unit: "steps", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeLinear, Min: 0, Max: 10000},
		Recommendation: "Adding a short walk after meals is an easy way to raise your daily step count.",
	},
	MetricWaterIntake: {
		Kind: MetricWaterIntake, DisplayName: "Water Intake", Category: CategoryLifestyle, Unit: "glasses", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeLinear, Min: 0, Max: 8},
		Recommendation: "Keep a water bottle nearby and aim for around 8 glasses a day.",
	},
	MetricExerciseMinutes: {
		Kind: MetricExerciseMinutes, DisplayName: "Exercise", Category: CategoryActivity, Unit: "min", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeLinear, Min: 0, Max: 30},
		Recommendation: "Even 20-30 minutes of movement most days makes a difference.",
	},
	MetricExercised: {
		Kind: MetricExercised, DisplayName: "Exercised", Category: CategoryActivity, Unit: "yes/no", Encoding: EncodingBoolean,
		Normalization:  Normalization{Rule: NormalizePercentage, Min: 0, Max: 1},
		Recommendation: "Pick a fixed time of day for exercise to make it a habit.",
	},
	MetricMedicationTaken: {
		Kind: MetricMedicationTaken, DisplayName: "Medication Taken", Category: CategoryPhysical, Unit: "yes/no", Encoding: EncodingBoolean,
		Normalization:  Normalization{Rule: NormalizePercentage, Min: 0, Max: 1},
		Recommendation: "Setting a daily reminder can help you take your medication consistently.",
	},
	MetricWeather: {
		Kind: MetricWeather, DisplayName: "Weather", Category: CategoryEnvironment, Unit: "scale", Encoding: EncodingCategorical,
		Normalization:  Normalization{Rule: NormalizeNone, Min: 1, Max: 6},
		Recommendation: "On gloomy days, try to get some daylight and plan something uplifting.",
	},
	MetricSymptom: {
		Kind: MetricSymptom, DisplayName: "Symptom", Category: CategorySymptom, Unit: "severity", Encoding: EncodingNumeric,
		Normalization:  Normalization{Rule: NormalizeInverse, Min: 0, Max: 10},
		Recommendation: "Keep noting what you did on days this symptom flares up; patterns often show up over a few weeks.",
	},
}

// AllMetricKinds lists the built-in kinds in a stable order (symptoms excluded)
var AllMetricKinds = []MetricKind{
	MetricMood, MetricEnergy, MetricStress, MetricAnxiety, MetricPain,
	MetricSleepHours, MetricSleepQuality, MetricSteps, MetricWaterIntake,
	MetricExerciseMinutes, MetricExercised, MetricMedicationTaken, MetricWeather,
}

// Descriptor returns the table row for kind
func Descriptor(kind MetricKind) (MetricDescriptor, bool) {
	d, ok := Descriptors[kind]
	return d, ok
}

// IsValidMetricKind reports whether s names a built-in metric kind
func IsValidMetricKind(s string) bool {
	kind := MetricKind(s)
	_, ok := Descriptors[kind]
	return ok && kind != MetricSymptom
}

// SymptomKey builds the series key for a symptom
func SymptomKey(symptomID string) string {
	return SymptomKeyPrefix + symptomID
}

// ParseSymptomKey extracts the symptom ID from a "symptom:<id>" key
func ParseSymptomKey(key string) (string, bool) {
	if !strings.HasPrefix(key, SymptomKeyPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(key, SymptomKeyPrefix)
	return id, id != ""
}

// Day truncates t to its calendar day, expressed as midnight UTC
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is a closed interval of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange normalizes both ends to calendar days
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// LastNDays returns the n-day range ending on asOf (inclusive)
func LastNDays(asOf time.Time, n int) DateRange {
	end := Day(asOf)
	return DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// Contains reports whether t falls on a day inside the range
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of calendar days covered (0 for an inverted range)
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// IsZero reports whether the range is unset
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}
