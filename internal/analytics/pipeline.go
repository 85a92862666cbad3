package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// AnalyzeOptions tunes one pipeline run
type AnalyzeOptions struct {
	// Period limits the analysis; zero means the full span of the logs
	Period      models.DateRange
	MaxInsights int

	// OnScanStart receives the number of correlation pairs before the scan
	// begins and OnPairDone is called as each finishes. Both are optional.
	OnScanStart func(total int)
	OnPairDone  func()
}

// Pipeline wires the engines together the way the app consumes them
type Pipeline struct {
	cfg         Config
	statistics  *StatisticsCalculator
	correlation *CorrelationEngine
	healthScore *HealthScoreEngine
	streaks     *StreakEngine
	insights    *InsightEngine
}

// NewPipeline builds every engine from cfg
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		statistics:  NewStatisticsCalculator(cfg),
		correlation: NewCorrelationEngine(cfg),
		healthScore: NewHealthScoreEngine(cfg),
		streaks:     NewStreakEngine(),
		insights:    NewInsightEngine(cfg),
	}
}

// Analyze runs the full analysis over logs. Only an invalid config or a
// cancelled ctx produce an error; missing data just yields empty sections.
func (p *Pipeline) Analyze(ctx context.Context, logs []models.DailyLog, symptoms []models.Symptom, opts AnalyzeOptions) (*models.AnalysisReport, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analytics config: %w", err)
	}

	provider := NewSeriesProvider(logs, symptoms)
	period := opts.Period
	if period.IsZero() {
		period = provider.Span()
	}

	report := &models.AnalysisReport{
		Period:       period,
		Statistics:   make(map[string]models.ChartStatistics),
		Correlations: make([]models.CorrelationResult, 0),
		Streaks:      make([]models.StreakResult, 0),
		Insights:     make([]models.HealthInsight, 0),
		TotalDays:    len(provider.LoggedDays(period)),
		GeneratedAt:  p.cfg.now(),
	}

	all := provider.BuildAll(period)
	keys := sortedKeys(all)

	ordered := make([]models.MetricSeries, 0, len(keys))
	seriesByMetric := make(map[models.MetricKind]models.MetricSeries)
	for _, key := range keys {
		series := all[key]
		report.Statistics[key] = p.statistics.CalculateStatistics(series)
		ordered = append(ordered, series)
		if series.Kind != models.MetricSymptom {
			seriesByMetric[series.Kind] = series
		}
	}

	if opts.OnScanStart != nil {
		opts.OnScanStart(PairCount(len(ordered)))
	}
	correlations, err := p.correlation.ScanPairs(ctx, ordered, opts.OnPairDone)
	if err != nil {
		return nil, err
	}
	report.Correlations = correlations

	report.HealthScore = p.healthScore.CalculateHealthScore(seriesByMetric, nil)

	if !period.IsZero() {
		report.Streaks = p.standardStreaks(provider, all, period)
	}

	insights, err := p.insights.GenerateInsights(ctx, InsightContext{
		Series:       all,
		Statistics:   report.Statistics,
		Correlations: report.Correlations,
		HealthScore:  &report.HealthScore,
		Streaks:      report.Streaks,
		Period:       period,
	}, opts.MaxInsights)
	if err != nil {
		return nil, err
	}
	report.Insights = insights

	return report, nil
}

// standardStreaks computes the logging streak plus every StandardStreaks
// entry, as of the end of the period
func (p *Pipeline) standardStreaks(provider *SeriesProvider, all map[string]models.MetricSeries, period models.DateRange) []models.StreakResult {
	asOf := period.End
	results := []models.StreakResult{
		p.streaks.CalculateStreak(StreakLogging, provider.LoggedDays(period), asOf),
	}

	for _, def := range StandardStreaks {
		var flags []models.DailyFlag
		if series, ok := all[string(def.Metric)]; ok {
			flags = FlagsFromSeries(series, def.Predicate)
		}
		results = append(results, p.streaks.CalculateStreak(def.Kind, flags, asOf))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CurrentStreak > results[j].CurrentStreak
	})
	return results
}
