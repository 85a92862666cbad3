package analytics

import (
	"time"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// 2024-03-04 is a Monday
var (
	day0     = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.Now = func() time.Time { return fixedNow }
	return cfg
}

func dayN(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

// seriesOf builds a series with one point per consecutive day from start
func seriesOf(key string, start time.Time, values ...float64) models.MetricSeries {
	kind := models.MetricKind(key)
	if _, ok := models.ParseSymptomKey(key); ok {
		kind = models.MetricSymptom
	}
	s := models.MetricSeries{Key: key, Kind: kind, Name: key}
	for i, v := range values {
		s.Points = append(s.Points, models.MetricDataPoint{
			Date:       start.AddDate(0, 0, i),
			Value:      v,
			MetricKind: kind,
		})
	}
	return s
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
