package analytics

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// InsightContext is everything the detectors look at. The engine only reads it.
type InsightContext struct {
	Series       map[string]models.MetricSeries
	Statistics   map[string]models.ChartStatistics
	Correlations []models.CorrelationResult
	HealthScore  *models.HealthScore
	Streaks      []models.StreakResult
	Period       models.DateRange
}

// detectFunc produces candidate insights. prior holds the candidates of the
// detectors that ran before it.
type detectFunc func(ic InsightContext, prior []models.HealthInsight) []models.HealthInsight

type detector struct {
	name string
	run  detectFunc
}

// InsightEngine runs the detectors in a fixed order, then deduplicates and
// ranks their candidates
type InsightEngine struct {
	cfg       Config
	detectors []detector
}

// NewInsightEngine creates an engine with the standard detector set
func NewInsightEngine(cfg Config) *InsightEngine {
	e := &InsightEngine{cfg: cfg}
	e.detectors = []detector{
		{name: "trend", run: e.detectTrends},
		{name: "achievement", run: e.detectAchievements},
		{name: "pattern", run: e.detectPatterns},
		{name: "correlation", run: e.detectCorrelation},
		{name: "warning", run: e.detectWarnings},
		{name: "recommendation", run: e.detectRecommendations},
	}
	return e
}

// GenerateInsights returns at most maxCount insights ordered by priority, then
// confidence. maxCount <= 0 uses the configured maximum. A detector that
// panics contributes nothing; the only error is ctx's when the caller gives up.
func (e *InsightEngine) GenerateInsights(ctx context.Context, ic InsightContext, maxCount int) ([]models.HealthInsight, error) {
	generatedAt := e.cfg.now()
	candidates := make([]models.HealthInsight, 0)

	for _, d := range e.detectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, insight := range runDetector(d, ic, candidates) {
			if insight.RelevancePeriod.IsZero() {
				insight.RelevancePeriod = ic.Period
			}
			insight.Confidence = clamp(insight.Confidence, 0, 1)
			insight.GeneratedAt = generatedAt
			insight.ID = insightID(insight)
			candidates = append(candidates, insight)
		}
	}

	return RankInsights(candidates, e.cfg.maxInsights(maxCount)), nil
}

// RankInsights collapses duplicates (same type, metric set and period) to the
// most confident one, orders by priority then confidence, and truncates
func RankInsights(insights []models.HealthInsight, maxCount int) []models.HealthInsight {
	best := make(map[string]int)
	deduped := make([]models.HealthInsight, 0, len(insights))

	for _, insight := range insights {
		key := dedupKey(insight)
		if idx, exists := best[key]; exists {
			if insight.Confidence > deduped[idx].Confidence {
				deduped[idx] = insight
			}
			continue
		}
		best[key] = len(deduped)
		deduped = append(deduped, insight)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		a, b := deduped[i], deduped[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Title < b.Title
	})

	if maxCount >= 0 && len(deduped) > maxCount {
		deduped = deduped[:maxCount]
	}
	return deduped
}

func runDetector(d detector, ic InsightContext, prior []models.HealthInsight) (out []models.HealthInsight) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return d.run(ic, prior)
}

func dedupKey(insight models.HealthInsight) string {
	metrics := make([]string, len(insight.RelevantMetrics))
	copy(metrics, insight.RelevantMetrics)
	sort.Strings(metrics)

	return strings.Join([]string{
		string(insight.Type),
		strings.Join(metrics, ","),
		insight.RelevancePeriod.Start.Format("2006-01-02"),
		insight.RelevancePeriod.End.Format("2006-01-02"),
	}, "|")
}

// insightID is derived from content so identical runs yield identical IDs
func insightID(insight models.HealthInsight) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(dedupKey(insight)+"|"+insight.Title)).String()
}

// confidenceScore blends sample size and effect size
func confidenceScore(samples, fullSamples int, effect float64) float64 {
	sample := clamp(float64(samples)/float64(fullSamples), 0, 1)
	return clamp(0.5*sample+0.5*clamp(effect, 0, 1), 0, 1)
}

// confidenceWithSignificance also rewards a small p-value
func confidenceWithSignificance(samples, fullSamples int, effect, pValue float64) float64 {
	sample := clamp(float64(samples)/float64(fullSamples), 0, 1)
	significance := clamp(1-pValue, 0, 1)
	return clamp(0.35*sample+0.35*clamp(effect, 0, 1)+0.3*significance, 0, 1)
}
