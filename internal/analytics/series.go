package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// SeriesProvider converts raw logs into per-metric day series. It indexes the
// logs once at construction and never mutates them.
type SeriesProvider struct {
	byDay        map[time.Time][]models.DailyLog
	days         []time.Time // ascending
	symptomNames map[string]string
}

// NewSeriesProvider buckets logs by calendar day
func NewSeriesProvider(logs []models.DailyLog, symptoms []models.Symptom) *SeriesProvider {
	p := &SeriesProvider{
		byDay:        make(map[time.Time][]models.DailyLog),
		symptomNames: make(map[string]string, len(symptoms)),
	}

	for _, log := range logs {
		day := models.Day(log.Date)
		if _, exists := p.byDay[day]; !exists {
			p.days = append(p.days, day)
		}
		p.byDay[day] = append(p.byDay[day], log)
	}
	sort.Slice(p.days, func(i, j int) bool { return p.days[i].Before(p.days[j]) })

	for _, s := range symptoms {
		p.symptomNames[s.ID] = s.Name
	}

	return p
}

// Span returns the range from the first to the last logged day
func (p *SeriesProvider) Span() models.DateRange {
	if len(p.days) == 0 {
		return models.DateRange{}
	}
	return models.DateRange{Start: p.days[0], End: p.days[len(p.days)-1]}
}

// SymptomIDs returns every symptom referenced by a log or a definition, sorted
func (p *SeriesProvider) SymptomIDs() []string {
	seen := make(map[string]bool)
	for id := range p.symptomNames {
		seen[id] = true
	}
	for _, logs := range p.byDay {
		for _, log := range logs {
			for _, entry := range log.Symptoms {
				seen[entry.SymptomID] = true
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuildSeries returns the day series for a built-in metric kind
func (p *SeriesProvider) BuildSeries(kind models.MetricKind, dr models.DateRange) (models.MetricSeries, error) {
	desc, ok := models.Descriptor(kind)
	if !ok || kind == models.MetricSymptom {
		return models.MetricSeries{}, fmt.Errorf("%w: %q", ErrUnknownMetric, kind)
	}

	series := models.MetricSeries{
		Key:    string(kind),
		Kind:   kind,
		Name:   desc.DisplayName,
		Range:  dr,
		Points: make([]models.MetricDataPoint, 0),
	}

	for _, day := range p.daysIn(dr) {
		value, ok := bucketValue(p.byDay[day], desc)
		if !ok {
			continue
		}
		series.Points = append(series.Points, models.MetricDataPoint{
			Date:       day,
			Value:      value,
			MetricKind: kind,
			Category:   desc.Category,
		})
	}

	return series, nil
}

// BuildSymptomSeries returns the severity series for one symptom. A day that
// has a log but no entry for the symptom counts as severity 0; days without
// any log are omitted.
func (p *SeriesProvider) BuildSymptomSeries(symptomID string, dr models.DateRange) models.MetricSeries {
	name := p.symptomNames[symptomID]
	if name == "" {
		name = models.Descriptors[models.MetricSymptom].DisplayName
	}

	series := models.MetricSeries{
		Key:    models.SymptomKey(symptomID),
		Kind:   models.MetricSymptom,
		Name:   name,
		Range:  dr,
		Points: make([]models.MetricDataPoint, 0),
	}

	for _, day := range p.daysIn(dr) {
		var sum float64
		var count int
		for _, log := range p.byDay[day] {
			for _, entry := range log.Symptoms {
				if entry.SymptomID == symptomID {
					sum += entry.Severity
					count++
				}
			}
		}
		value := 0.0
		if count > 0 {
			value = sum / float64(count)
		}
		series.Points = append(series.Points, models.MetricDataPoint{
			Date:       day,
			Value:      value,
			MetricKind: models.MetricSymptom,
			Category:   models.CategorySymptom,
		})
	}

	return series
}

// BuildSeriesByKey dispatches on a series key (metric kind or "symptom:<id>")
func (p *SeriesProvider) BuildSeriesByKey(key string, dr models.DateRange) (models.MetricSeries, error) {
	if id, ok := models.ParseSymptomKey(key); ok {
		return p.BuildSymptomSeries(id, dr), nil
	}
	return p.BuildSeries(models.MetricKind(key), dr)
}

// BuildAll returns every non-empty series in the range, keyed by series key
func (p *SeriesProvider) BuildAll(dr models.DateRange) map[string]models.MetricSeries {
	all := make(map[string]models.MetricSeries)
	for _, kind := range models.AllMetricKinds {
		series, err := p.BuildSeries(kind, dr)
		if err != nil || series.Len() == 0 {
			continue
		}
		all[series.Key] = series
	}
	for _, id := range p.SymptomIDs() {
		series := p.BuildSymptomSeries(id, dr)
		if !hasNonZero(series) {
			continue
		}
		all[series.Key] = series
	}
	return all
}

// LoggedDays returns one true flag per day that has at least one log
func (p *SeriesProvider) LoggedDays(dr models.DateRange) []models.DailyFlag {
	days := p.daysIn(dr)
	flags := make([]models.DailyFlag, len(days))
	for i, day := range days {
		flags[i] = models.DailyFlag{Date: day, Value: true}
	}
	return flags
}

func (p *SeriesProvider) daysIn(dr models.DateRange) []time.Time {
	if dr.IsZero() {
		return p.days
	}
	start := sort.Search(len(p.days), func(i int) bool { return !p.days[i].Before(dr.Start) })
	end := sort.Search(len(p.days), func(i int) bool { return p.days[i].After(dr.End) })
	if start >= end {
		return nil
	}
	return p.days[start:end]
}

// bucketValue collapses one day's logs into a single value for a kind
func bucketValue(logs []models.DailyLog, desc models.MetricDescriptor) (float64, bool) {
	switch desc.Encoding {
	case models.EncodingBoolean:
		seen := false
		for _, log := range logs {
			if b := boolField(log, desc.Kind); b != nil {
				if *b {
					return 1, true
				}
				seen = true
			}
		}
		return 0, seen

	case models.EncodingCategorical:
		// Latest log with a recognized category wins
		var value float64
		var at time.Time
		found := false
		for _, log := range logs {
			if log.Weather == nil {
				continue
			}
			v, ok := models.WeatherScale[*log.Weather]
			if !ok {
				continue
			}
			if !found || !log.CreatedAt.Before(at) {
				value, at, found = v, log.CreatedAt, true
			}
		}
		return value, found

	default:
		var sum float64
		var count int
		for _, log := range logs {
			if v := numericField(log, desc.Kind); v != nil {
				sum += *v
				count++
			}
		}
		if count == 0 {
			return 0, false
		}
		return sum / float64(count), true
	}
}

func numericField(log models.DailyLog, kind models.MetricKind) *float64 {
	switch kind {
	case models.MetricMood:
		return log.Mood
	case models.MetricEnergy:
		return log.Energy
	case models.MetricStress:
		return log.Stress
	case models.MetricAnxiety:
		return log.Anxiety
	case models.MetricPain:
		return log.Pain
	case models.MetricSleepHours:
		return log.SleepHours
	case models.MetricSleepQuality:
		return log.SleepQuality
	case models.MetricSteps:
		return log.Steps
	case models.MetricWaterIntake:
		return log.WaterIntake
	case models.MetricExerciseMinutes:
		return log.ExerciseMinutes
	}
	return nil
}

func boolField(log models.DailyLog, kind models.MetricKind) *bool {
	switch kind {
	case models.MetricExercised:
		return log.Exercised
	case models.MetricMedicationTaken:
		return log.MedicationTaken
	}
	return nil
}

func hasNonZero(series models.MetricSeries) bool {
	for _, p := range series.Points {
		if p.Value != 0 {
			return true
		}
	}
	return false
}
