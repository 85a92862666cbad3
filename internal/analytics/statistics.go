package analytics

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// StatisticsCalculator summarizes a single series
type StatisticsCalculator struct {
	cfg Config
}

// NewStatisticsCalculator creates a calculator using cfg's trend threshold and smoothing period
func NewStatisticsCalculator(cfg Config) *StatisticsCalculator {
	return &StatisticsCalculator{cfg: cfg}
}

// CalculateStatistics computes mean, min, max, half-over-half trend and change.
// An empty series yields all zeros with a stable trend.
func (c *StatisticsCalculator) CalculateStatistics(series models.MetricSeries) models.ChartStatistics {
	values := series.Values()
	if len(values) == 0 {
		return models.ChartStatistics{TrendDirection: models.TrendStable}
	}

	first, second := halfAverages(values)
	direction, change := classifyChange(first, second, c.cfg.TrendThreshold)

	return models.ChartStatistics{
		Mean:             stat.Mean(values, nil),
		Min:              floats.Min(values),
		Max:              floats.Max(values),
		TrendDirection:   direction,
		ChangePercentage: change,
		SampleSize:       len(values),
		Smoothed:         movingAverage(values, c.cfg.SmoothingPeriod),
	}
}

// halfAverages splits values by index; with an odd count the middle value
// belongs to the second half. Fewer than two values yield equal halves.
func halfAverages(values []float64) (first, second float64) {
	n := len(values)
	if n < 2 {
		if n == 1 {
			return values[0], values[0]
		}
		return 0, 0
	}
	mid := n / 2
	return stat.Mean(values[:mid], nil), stat.Mean(values[mid:], nil)
}

// classifyChange applies the relative-threshold rule shared by series trends
// and health score trends. A zero baseline has no relative change, so it is
// reported as stable with a change of 0.
func classifyChange(previous, current, threshold float64) (models.TrendDirection, float64) {
	if previous == 0 {
		return models.TrendStable, 0
	}

	change := (current - previous) / previous * 100
	relative := (current - previous) / math.Abs(previous)

	switch {
	case relative > threshold:
		return models.TrendIncreasing, change
	case relative < -threshold:
		return models.TrendDecreasing, change
	default:
		return models.TrendStable, change
	}
}

// movingAverage returns the simple moving average of values, or nil when
// there are fewer values than the period
func movingAverage(values []float64, period int) []float64 {
	if period < 2 || len(values) < period {
		return nil
	}
	sma := trend.NewSmaWithPeriod[float64](period)
	return helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
}
