package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/JonnyWalker81/healthjournal/backend/internal/analytics"
	"github.com/JonnyWalker81/healthjournal/backend/internal/cache"
	"github.com/JonnyWalker81/healthjournal/backend/internal/logger"
	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
	"github.com/JonnyWalker81/healthjournal/backend/internal/repository"
)

// DefaultWindowDays is how far back reports look when no period is given
const DefaultWindowDays = 90

// IntelligenceConfig configures the intelligence service
type IntelligenceConfig struct {
	WindowDays int
	Engine     analytics.Config
}

type intelligenceService struct {
	logRepo     repository.DailyLogRepository
	symptomRepo repository.SymptomRepository
	reports     cache.ReportCache

	windowDays  int
	pipeline    *analytics.Pipeline
	statistics  *analytics.StatisticsCalculator
	correlation *analytics.CorrelationEngine
	now         func() time.Time
}

// NewIntelligenceService creates a new intelligence service. A nil cache
// disables report caching.
func NewIntelligenceService(
	logRepo repository.DailyLogRepository,
	symptomRepo repository.SymptomRepository,
	reports cache.ReportCache,
	cfg IntelligenceConfig,
) IntelligenceService {
	if reports == nil {
		reports = cache.NopReportCache{}
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultWindowDays
	}

	now := cfg.Engine.Now
	if now == nil {
		now = time.Now
	}

	return &intelligenceService{
		logRepo:     logRepo,
		symptomRepo: symptomRepo,
		reports:     reports,
		windowDays:  cfg.WindowDays,
		pipeline:    analytics.NewPipeline(cfg.Engine),
		statistics:  analytics.NewStatisticsCalculator(cfg.Engine),
		correlation: analytics.NewCorrelationEngine(cfg.Engine),
		now:         now,
	}
}

// GetStatistics summarizes one series over period
func (s *intelligenceService) GetStatistics(ctx context.Context, userID, metric string, period models.DateRange) (*models.ChartStatistics, error) {
	ctx = logger.WithMetrics(ctx, metric)
	period = s.periodOrWindow(period)

	provider, err := s.loadProvider(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	series, err := provider.BuildSeriesByKey(metric, period)
	if err != nil {
		return nil, err
	}

	stats := s.statistics.CalculateStatistics(series)
	return &stats, nil
}

// GetCorrelation correlates two series, optionally lagged
func (s *intelligenceService) GetCorrelation(ctx context.Context, userID string, req CorrelationRequest) (*models.CorrelationResult, error) {
	ctx = logger.WithMetrics(ctx, req.Primary, req.Secondary)
	period := s.periodOrWindow(req.Period)
	// widen the fetch so lagged pairs near the edge of the period still match
	fetch := period
	if req.LagDays > 0 {
		fetch.End = fetch.End.AddDate(0, 0, req.LagDays)
	} else {
		fetch.Start = fetch.Start.AddDate(0, 0, req.LagDays)
	}

	provider, err := s.loadProvider(ctx, userID, fetch)
	if err != nil {
		return nil, err
	}

	primary, err := provider.BuildSeriesByKey(req.Primary, period)
	if err != nil {
		return nil, err
	}
	secondary, err := provider.BuildSeriesByKey(req.Secondary, fetch)
	if err != nil {
		return nil, err
	}

	result, err := s.correlation.CalculateLaggedCorrelation(primary, secondary, req.LagDays)
	if err != nil {
		logger.Ctx(ctx).Debug("correlation not computed",
			logger.Int("lag_days", req.LagDays),
			logger.Err(err),
		)
		return nil, err
	}
	return result, nil
}

// GetHealthScore returns the score from the user's current report
func (s *intelligenceService) GetHealthScore(ctx context.Context, userID string) (*models.HealthScore, error) {
	report, err := s.GetReport(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &report.HealthScore, nil
}

// GetStreaks returns the standard streaks from the user's current report
func (s *intelligenceService) GetStreaks(ctx context.Context, userID string) ([]models.StreakResult, error) {
	report, err := s.GetReport(ctx, userID)
	if err != nil {
		return nil, err
	}
	return report.Streaks, nil
}

// GetInsights returns at most limit ranked insights; limit <= 0 returns all
// insights in the report
func (s *intelligenceService) GetInsights(ctx context.Context, userID string, limit int) ([]models.HealthInsight, error) {
	report, err := s.GetReport(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit >= len(report.Insights) {
		return report.Insights, nil
	}
	return analytics.RankInsights(report.Insights, limit), nil
}

// GetReport returns the cached report for userID, computing it on a miss
func (s *intelligenceService) GetReport(ctx context.Context, userID string) (*models.AnalysisReport, error) {
	if report, ok := s.reports.Get(ctx, userID); ok {
		logger.Ctx(ctx).Debug("analysis report cache hit", logger.String("user_id", userID))
		return report, nil
	}
	return s.computeReport(ctx, userID)
}

// RefreshInsights drops any cached report and recomputes it
func (s *intelligenceService) RefreshInsights(ctx context.Context, userID string) (*models.AnalysisReport, error) {
	if err := s.reports.Invalidate(ctx, userID); err != nil {
		logger.Ctx(ctx).Warn("failed to invalidate cached report", logger.String("user_id", userID), logger.Err(err))
	}
	return s.computeReport(ctx, userID)
}

func (s *intelligenceService) computeReport(ctx context.Context, userID string) (*models.AnalysisReport, error) {
	log := logger.Ctx(ctx).With(logger.String("user_id", userID))
	started := time.Now()

	period := s.window()
	logs, symptoms, err := s.load(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	report, err := s.pipeline.Analyze(ctx, logs, symptoms, analytics.AnalyzeOptions{Period: period})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze logs: %w", err)
	}

	log.Info("computed analysis report",
		logger.Int("logs", len(logs)),
		logger.Int("days", report.TotalDays),
		logger.Int("correlations", len(report.Correlations)),
		logger.Int("insights", len(report.Insights)),
		logger.Float64("health_score", report.HealthScore.OverallScore),
		logger.Duration("duration", time.Since(started)),
	)

	s.reports.Set(ctx, userID, report)
	return report, nil
}

func (s *intelligenceService) loadProvider(ctx context.Context, userID string, period models.DateRange) (*analytics.SeriesProvider, error) {
	logs, symptoms, err := s.load(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	return analytics.NewSeriesProvider(logs, symptoms), nil
}

// load fetches logs and symptom definitions concurrently
func (s *intelligenceService) load(ctx context.Context, userID string, period models.DateRange) ([]models.DailyLog, []models.Symptom, error) {
	var (
		logs     []models.DailyLog
		symptoms []models.Symptom
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		logs, err = s.logRepo.GetByUserIDAndDateRange(ctx, userID, period.Start, period.End)
		if err != nil {
			return fmt.Errorf("failed to get daily logs: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		symptoms, err = s.symptomRepo.GetByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get symptoms: %w", err)
		}
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, nil, err
	}
	return logs, symptoms, nil
}

func (s *intelligenceService) window() models.DateRange {
	return models.LastNDays(s.now(), s.windowDays)
}

func (s *intelligenceService) periodOrWindow(period models.DateRange) models.DateRange {
	if period.IsZero() {
		return s.window()
	}
	return models.NewDateRange(period.Start, period.End)
}
