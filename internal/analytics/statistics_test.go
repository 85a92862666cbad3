package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

func TestCalculateStatisticsTrend(t *testing.T) {
	calc := NewStatisticsCalculator(testConfig())
	tests := []struct {
		name       string
		values     []float64
		wantTrend  models.TrendDirection
		wantChange float64
	}{
		{name: "small rise is stable", values: []float64{5.0, 5.1}, wantTrend: models.TrendStable, wantChange: 2},
		{name: "rise past threshold", values: []float64{5.0, 6.0}, wantTrend: models.TrendIncreasing, wantChange: 20},
		{name: "fall past threshold", values: []float64{6.0, 5.0}, wantTrend: models.TrendDecreasing, wantChange: -100.0 / 6},
		{name: "odd middle joins second half", values: []float64{1, 2, 3}, wantTrend: models.TrendIncreasing, wantChange: 150},
		{name: "flat", values: []float64{4, 4, 4, 4}, wantTrend: models.TrendStable, wantChange: 0},
		{name: "zero baseline", values: []float64{0, 0, 5, 5}, wantTrend: models.TrendStable, wantChange: 0},
		{name: "zero baseline to negative", values: []float64{0, 0, -2, -2}, wantTrend: models.TrendStable, wantChange: 0},
		{name: "single point", values: []float64{7}, wantTrend: models.TrendStable, wantChange: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.CalculateStatistics(seriesOf("mood", day0, tt.values...))
			assert.Equal(t, tt.wantTrend, got.TrendDirection)
			assert.InDelta(t, tt.wantChange, got.ChangePercentage, 1e-9)
			assert.Equal(t, len(tt.values), got.SampleSize)
		})
	}
}

func TestCalculateStatisticsSummary(t *testing.T) {
	calc := NewStatisticsCalculator(testConfig())

	got := calc.CalculateStatistics(seriesOf("steps", day0, 2, 4, 6, 8))
	assert.InDelta(t, 5.0, got.Mean, 1e-12)
	assert.Equal(t, 2.0, got.Min)
	assert.Equal(t, 8.0, got.Max)
	assert.LessOrEqual(t, got.Min, got.Mean)
	assert.LessOrEqual(t, got.Mean, got.Max)
}

func TestCalculateStatisticsEmpty(t *testing.T) {
	calc := NewStatisticsCalculator(testConfig())

	got := calc.CalculateStatistics(models.MetricSeries{Key: "mood"})
	assert.Equal(t, models.TrendStable, got.TrendDirection)
	assert.Zero(t, got.Mean)
	assert.Zero(t, got.SampleSize)
	assert.Empty(t, got.Smoothed)
}

func TestCalculateStatisticsSmoothing(t *testing.T) {
	cfg := testConfig()
	cfg.SmoothingPeriod = 3
	calc := NewStatisticsCalculator(cfg)

	got := calc.CalculateStatistics(seriesOf("mood", day0, 1, 2, 3, 4, 5))
	if assert.NotEmpty(t, got.Smoothed) {
		assert.InDelta(t, 4.0, got.Smoothed[len(got.Smoothed)-1], 1e-9)
	}

	short := calc.CalculateStatistics(seriesOf("mood", day0, 1, 2))
	assert.Empty(t, short.Smoothed)
}
