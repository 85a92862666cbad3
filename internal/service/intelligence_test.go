package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/healthjournal/backend/internal/analytics"
	"github.com/JonnyWalker81/healthjournal/backend/internal/cache"
	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeLogRepo serves a fixed set of logs, filtered by date
type fakeLogRepo struct {
	logs  []models.DailyLog
	err   error
	calls atomic.Int32
}

func (r *fakeLogRepo) GetByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.DailyLog, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	dr := models.NewDateRange(start, end)
	var out []models.DailyLog
	for _, log := range r.logs {
		if log.UserID == userID && dr.Contains(log.Date) {
			out = append(out, log)
		}
	}
	return out, nil
}

type fakeSymptomRepo struct {
	symptoms []models.Symptom
	err      error
}

func (r *fakeSymptomRepo) GetByUserID(ctx context.Context, userID string) ([]models.Symptom, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.symptoms, nil
}

func ptr[T any](v T) *T {
	return &v
}

// linearLogs returns n daily logs ending on testNow where mood and sleep both
// rise by a fixed step each day
func linearLogs(n int) []models.DailyLog {
	logs := make([]models.DailyLog, 0, n)
	start := models.Day(testNow).AddDate(0, 0, -(n - 1))
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i)
		logs = append(logs, models.DailyLog{
			ID:         date.Format("2006-01-02"),
			UserID:     "user-1",
			Date:       date,
			Mood:       ptr(3 + float64(i)*0.2),
			SleepHours: ptr(5 + float64(i)*0.1),
			Exercised:  ptr(true),
			CreatedAt:  date.Add(9 * time.Hour),
		})
	}
	return logs
}

func testEngine() analytics.Config {
	cfg := analytics.DefaultConfig()
	cfg.Workers = 2
	cfg.Now = func() time.Time { return testNow }
	return cfg
}

func newTestService(logs *fakeLogRepo, reports cache.ReportCache) IntelligenceService {
	return NewIntelligenceService(logs, &fakeSymptomRepo{}, reports, IntelligenceConfig{
		WindowDays: 30,
		Engine:     testEngine(),
	})
}

func TestGetStatistics(t *testing.T) {
	svc := newTestService(&fakeLogRepo{logs: linearLogs(20)}, nil)

	stats, err := svc.GetStatistics(context.Background(), "user-1", "mood", models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 20, stats.SampleSize)
	assert.Equal(t, models.TrendIncreasing, stats.TrendDirection)
	assert.InDelta(t, 3.0, stats.Min, 1e-9)
}

func TestGetStatisticsUnknownMetric(t *testing.T) {
	svc := newTestService(&fakeLogRepo{logs: linearLogs(5)}, nil)

	_, err := svc.GetStatistics(context.Background(), "user-1", "caffeine", models.DateRange{})
	assert.ErrorIs(t, err, analytics.ErrUnknownMetric)
}

func TestGetCorrelation(t *testing.T) {
	svc := newTestService(&fakeLogRepo{logs: linearLogs(20)}, nil)

	result, err := svc.GetCorrelation(context.Background(), "user-1", CorrelationRequest{
		Primary:   "mood",
		Secondary: "sleep_hours",
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Coefficient, 1e-9)
	assert.Equal(t, 20, result.MatchedPointCount)
	assert.True(t, result.IsSignificant)
}

func TestGetCorrelationLagged(t *testing.T) {
	svc := newTestService(&fakeLogRepo{logs: linearLogs(20)}, nil)

	result, err := svc.GetCorrelation(context.Background(), "user-1", CorrelationRequest{
		Primary:   "mood",
		Secondary: "sleep_hours",
		LagDays:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.LagDays)
	assert.Equal(t, 19, result.MatchedPointCount)
}

func TestGetCorrelationInsufficientData(t *testing.T) {
	svc := newTestService(&fakeLogRepo{logs: linearLogs(2)}, nil)

	_, err := svc.GetCorrelation(context.Background(), "user-1", CorrelationRequest{
		Primary:   "mood",
		Secondary: "sleep_hours",
	})
	var insufficient *analytics.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Required)
	assert.Equal(t, 2, insufficient.Actual)
}

func TestGetReportUsesCache(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	reports := cache.NewRedisReportCache(client, time.Hour)
	repo := &fakeLogRepo{logs: linearLogs(20)}
	svc := newTestService(repo, reports)
	ctx := context.Background()

	first, err := svc.GetReport(ctx, "user-1")
	require.NoError(t, err)
	second, err := svc.GetReport(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), repo.calls.Load())
	assert.Equal(t, first.TotalDays, second.TotalDays)
	assert.Equal(t, int64(1), reports.Stats().Hits)

	score, err := svc.GetHealthScore(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.HealthScore.OverallScore, score.OverallScore)
	assert.Equal(t, int32(1), repo.calls.Load())

	_, err = svc.RefreshInsights(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.calls.Load())
}

func TestGetStreaks(t *testing.T) {
	svc := newTestService(&fakeLogRepo{logs: linearLogs(10)}, nil)

	streaks, err := svc.GetStreaks(context.Background(), "user-1")
	require.NoError(t, err)

	byKind := make(map[string]models.StreakResult)
	for _, s := range streaks {
		byKind[s.StreakKind] = s
	}
	require.Contains(t, byKind, analytics.StreakLogging)
	assert.Equal(t, 10, byKind[analytics.StreakLogging].CurrentStreak)
	assert.True(t, byKind[analytics.StreakLogging].IsActive)
}

func TestGetInsightsLimit(t *testing.T) {
	svc := newTestService(&fakeLogRepo{logs: linearLogs(30)}, nil)

	all, err := svc.GetInsights(context.Background(), "user-1", 0)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	one, err := svc.GetInsights(context.Background(), "user-1", 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, all[0].ID, one[0].ID)
}

func TestRepositoryErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newTestService(&fakeLogRepo{err: boom}, nil)

	_, err := svc.GetReport(context.Background(), "user-1")
	assert.ErrorIs(t, err, boom)

	svc = NewIntelligenceService(&fakeLogRepo{}, &fakeSymptomRepo{err: boom}, nil, IntelligenceConfig{Engine: testEngine()})
	_, err = svc.GetStatistics(context.Background(), "user-1", "mood", models.DateRange{})
	assert.ErrorIs(t, err, boom)
}
