package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

func sampleProvider() *SeriesProvider {
	logs := []models.DailyLog{
		{
			ID: "log-1", Date: day0.Add(8 * time.Hour), Mood: ptr(4.0), Exercised: ptr(false),
			Weather: ptr("rainy"), CreatedAt: day0.Add(8 * time.Hour),
			Symptoms: []models.SymptomEntry{{SymptomID: "s1", Severity: 4}},
		},
		{
			ID: "log-2", Date: day0.Add(20 * time.Hour), Mood: ptr(6.0), Exercised: ptr(true),
			Weather: ptr("sunny"), CreatedAt: day0.Add(20 * time.Hour),
		},
		{
			ID: "log-3", Date: dayN(1), Mood: ptr(7.0), Weather: ptr("hail"), CreatedAt: dayN(1),
		},
	}
	symptoms := []models.Symptom{{ID: "s1", Name: "Headache"}, {ID: "s2", Name: "Nausea"}}
	return NewSeriesProvider(logs, symptoms)
}

func TestBuildSeriesBucketsByDay(t *testing.T) {
	p := sampleProvider()

	mood, err := p.BuildSeries(models.MetricMood, models.DateRange{})
	require.NoError(t, err)
	require.Len(t, mood.Points, 2)
	assert.Equal(t, 5.0, mood.Points[0].Value)
	assert.True(t, mood.Points[0].Date.Equal(day0))
	assert.Equal(t, 7.0, mood.Points[1].Value)
	assert.Equal(t, "Mood", mood.Name)
	assert.Equal(t, models.CategoryMental, mood.Points[0].Category)

	exercised, err := p.BuildSeries(models.MetricExercised, models.DateRange{})
	require.NoError(t, err)
	require.Len(t, exercised.Points, 1)
	assert.Equal(t, 1.0, exercised.Points[0].Value)

	// the later log wins and unknown categories are skipped
	weather, err := p.BuildSeries(models.MetricWeather, models.DateRange{})
	require.NoError(t, err)
	require.Len(t, weather.Points, 1)
	assert.Equal(t, models.WeatherScale["sunny"], weather.Points[0].Value)
}

func TestBuildSeriesRange(t *testing.T) {
	p := sampleProvider()

	mood, err := p.BuildSeries(models.MetricMood, models.NewDateRange(dayN(1), dayN(5)))
	require.NoError(t, err)
	require.Len(t, mood.Points, 1)
	assert.Equal(t, 7.0, mood.Points[0].Value)

	empty, err := p.BuildSeries(models.MetricMood, models.NewDateRange(dayN(10), dayN(20)))
	require.NoError(t, err)
	assert.Empty(t, empty.Points)
}

func TestBuildSeriesUnknownMetric(t *testing.T) {
	p := sampleProvider()

	_, err := p.BuildSeries("bogus", models.DateRange{})
	assert.True(t, errors.Is(err, ErrUnknownMetric))

	_, err = p.BuildSeries(models.MetricSymptom, models.DateRange{})
	assert.True(t, errors.Is(err, ErrUnknownMetric))
}

func TestBuildSymptomSeries(t *testing.T) {
	p := sampleProvider()

	s, err := p.BuildSeriesByKey(models.SymptomKey("s1"), models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "Headache", s.Name)
	assert.Equal(t, models.MetricSymptom, s.Kind)
	require.Len(t, s.Points, 2)
	assert.Equal(t, 4.0, s.Points[0].Value)
	assert.Equal(t, 0.0, s.Points[1].Value)
}

func TestBuildAll(t *testing.T) {
	p := sampleProvider()

	all := p.BuildAll(models.DateRange{})
	assert.Contains(t, all, "mood")
	assert.Contains(t, all, "exercised")
	assert.Contains(t, all, "weather")
	assert.Contains(t, all, "symptom:s1")
	assert.NotContains(t, all, "symptom:s2")
	assert.NotContains(t, all, "steps")

	for key, series := range all {
		for i := 1; i < len(series.Points); i++ {
			assert.True(t, series.Points[i-1].Date.Before(series.Points[i].Date), "%s not ascending", key)
		}
	}
}

func TestSpanAndLoggedDays(t *testing.T) {
	p := sampleProvider()

	span := p.Span()
	assert.True(t, span.Start.Equal(day0))
	assert.True(t, span.End.Equal(dayN(1)))
	assert.Len(t, p.LoggedDays(models.DateRange{}), 2)
	assert.Equal(t, []string{"s1", "s2"}, p.SymptomIDs())

	assert.True(t, NewSeriesProvider(nil, nil).Span().IsZero())
}
