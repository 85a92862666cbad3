package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// Strength labels, weakest first
const (
	StrengthVeryWeak   = "Very Weak"
	StrengthWeak       = "Weak"
	StrengthModerate   = "Moderate"
	StrengthStrong     = "Strong"
	StrengthVeryStrong = "Very Strong"
)

// Direction labels
const (
	DirectionPositive = "Positive"
	DirectionNegative = "Negative"
	DirectionNone     = "No"
)

// CorrelationEngine aligns two series on shared days and measures how they move together
type CorrelationEngine struct {
	cfg Config
}

// NewCorrelationEngine creates an engine using cfg's sample size, significance level and bands
func NewCorrelationEngine(cfg Config) *CorrelationEngine {
	return &CorrelationEngine{cfg: cfg}
}

// CalculateCorrelation correlates a and b over the days present in both.
// It fails with *InsufficientDataError below the minimum sample size and with
// *CalculationError when either side has zero variance.
func (e *CorrelationEngine) CalculateCorrelation(a, b models.MetricSeries) (*models.CorrelationResult, error) {
	return e.CalculateLaggedCorrelation(a, b, 0)
}

// CalculateLaggedCorrelation pairs a on day d with b on day d+lagDays
func (e *CorrelationEngine) CalculateLaggedCorrelation(a, b models.MetricSeries, lagDays int) (*models.CorrelationResult, error) {
	xs, ys, dates := alignSeries(a, b, lagDays)
	n := len(xs)

	if n < e.cfg.MinimumSampleSize {
		return nil, &InsufficientDataError{
			Required: e.cfg.MinimumSampleSize,
			Actual:   n,
			Metrics:  []string{a.Key, b.Key},
		}
	}

	if floats.Min(xs) == floats.Max(xs) {
		return nil, &CalculationError{Reason: "zero variance", Metric: a.Key}
	}
	if floats.Min(ys) == floats.Max(ys) {
		return nil, &CalculationError{Reason: "zero variance", Metric: b.Key}
	}

	// Fixed argument order keeps r(a,b) and r(b,a) bit-identical
	var r float64
	if lagDays == 0 && b.Key < a.Key {
		r = stat.Correlation(ys, xs, nil)
	} else {
		r = stat.Correlation(xs, ys, nil)
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, &CalculationError{Reason: "correlation coefficient is undefined"}
	}
	r = clamp(r, -1, 1)

	pValue := correlationPValue(r, n)

	result := &models.CorrelationResult{
		PrimaryMetric:     a.Key,
		SecondaryMetric:   b.Key,
		PrimaryName:       a.Name,
		SecondaryName:     b.Name,
		Coefficient:       r,
		PValue:            pValue,
		IsSignificant:     pValue < e.cfg.SignificanceLevel,
		MatchedPointCount: n,
		LagDays:           lagDays,
		TimeRange:         models.DateRange{Start: dates[0], End: dates[n-1]},
		StrengthLabel:     e.StrengthLabel(r),
		DirectionLabel:    DirectionLabel(r),
	}
	result.InsightStrings = describeCorrelation(result)

	return result, nil
}

// StrengthLabel buckets |r| into the configured strength bands
func (e *CorrelationEngine) StrengthLabel(r float64) string {
	absR := math.Abs(r)
	bands := e.cfg.StrengthBands
	switch {
	case absR < bands[0]:
		return StrengthVeryWeak
	case absR < bands[1]:
		return StrengthWeak
	case absR < bands[2]:
		return StrengthModerate
	case absR < bands[3]:
		return StrengthStrong
	default:
		return StrengthVeryStrong
	}
}

// DirectionLabel returns Positive, Negative or No
func DirectionLabel(r float64) string {
	switch {
	case r > 0:
		return DirectionPositive
	case r < 0:
		return DirectionNegative
	default:
		return DirectionNone
	}
}

// ScanPairs correlates every pair of series concurrently. Pairs that fail
// (too few shared days, zero variance) are dropped. Results are ordered by
// |r| descending. onProgress, if set, is called once per pair.
func (e *CorrelationEngine) ScanPairs(ctx context.Context, series []models.MetricSeries, onProgress func()) ([]models.CorrelationResult, error) {
	sorted := make([]models.MetricSeries, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]models.CorrelationResult, 0)
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(workers)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			p.Go(func() {
				if onProgress != nil {
					defer onProgress()
				}
				if ctx.Err() != nil {
					return
				}

				result, err := e.CalculateCorrelation(a, b)
				if err != nil {
					return
				}

				mu.Lock()
				results = append(results, *result)
				mu.Unlock()
			})
		}
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	SortCorrelations(results)
	return results, nil
}

// PairCount returns the number of pairs ScanPairs evaluates for n series
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// SortCorrelations orders by |r| descending with a stable key tiebreak
func SortCorrelations(results []models.CorrelationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := math.Abs(results[i].Coefficient), math.Abs(results[j].Coefficient)
		if ri != rj {
			return ri > rj
		}
		if results[i].PrimaryMetric != results[j].PrimaryMetric {
			return results[i].PrimaryMetric < results[j].PrimaryMetric
		}
		return results[i].SecondaryMetric < results[j].SecondaryMetric
	})
}

// alignSeries pairs values on shared days, in a's date order
func alignSeries(a, b models.MetricSeries, lagDays int) (xs, ys []float64, dates []time.Time) {
	byDay := make(map[time.Time]float64, len(b.Points))
	for _, p := range b.Points {
		byDay[models.Day(p.Date)] = p.Value
	}

	for _, p := range a.Points {
		day := models.Day(p.Date)
		if v, ok := byDay[day.AddDate(0, 0, lagDays)]; ok {
			xs = append(xs, p.Value)
			ys = append(ys, v)
			dates = append(dates, day)
		}
	}
	return xs, ys, dates
}

// correlationPValue is the two-tailed p-value of r under Student-t with n-2
// degrees of freedom
func correlationPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}

	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	return clamp(2*dist.CDF(-math.Abs(t)), 0, 1)
}

// describeCorrelation builds one to three plain-language sentences
func describeCorrelation(r *models.CorrelationResult) []string {
	nameA, nameB := r.PrimaryName, r.SecondaryName
	later := ""
	switch {
	case r.LagDays == 1:
		later = " the next day"
	case r.LagDays > 1:
		later = fmt.Sprintf(" %d days later", r.LagDays)
	case r.LagDays == -1:
		later = " the day before"
	case r.LagDays < -1:
		later = fmt.Sprintf(" %d days earlier", -r.LagDays)
	}

	var sentences []string
	switch r.DirectionLabel {
	case DirectionPositive:
		sentences = append(sentences, fmt.Sprintf("When %s increases, %s tends to increase%s too.", nameA, nameB, later))
	case DirectionNegative:
		sentences = append(sentences, fmt.Sprintf("When %s increases, %s tends to decrease%s.", nameA, nameB, later))
	default:
		sentences = append(sentences, fmt.Sprintf("%s and %s don't appear to move together.", nameA, nameB))
		return sentences
	}

	sentences = append(sentences, fmt.Sprintf("This is a %s %s relationship (r = %s) across %d days.",
		strings.ToLower(r.StrengthLabel), strings.ToLower(r.DirectionLabel),
		formatFixed(r.Coefficient, 2), r.MatchedPointCount))

	if r.IsSignificant {
		sentences = append(sentences, fmt.Sprintf("The pattern is statistically significant (p = %s).", formatFixed(r.PValue, 3)))
	} else {
		sentences = append(sentences, fmt.Sprintf("It could still be chance, so keep tracking to confirm it (p = %s).", formatFixed(r.PValue, 3)))
	}

	return sentences
}

func formatFixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
