package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

func sampleReport() *models.AnalysisReport {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.AnalysisReport{
		Period: models.DateRange{Start: start, End: start.AddDate(0, 0, 29)},
		Statistics: map[string]models.ChartStatistics{
			"mood": {Mean: 6.25, Min: 3, Max: 9, TrendDirection: models.TrendIncreasing, ChangePercentage: 12.5, SampleSize: 30},
			"pain": {Mean: 2, Min: 0, Max: 5, TrendDirection: models.TrendStable, SampleSize: 28},
		},
		Correlations: []models.CorrelationResult{
			{PrimaryMetric: "sleep_hours", SecondaryMetric: "mood", Coefficient: 0.71, PValue: 0.0004, IsSignificant: true, MatchedPointCount: 30, StrengthLabel: "Strong", DirectionLabel: "Positive"},
			{PrimaryMetric: "steps", SecondaryMetric: "pain", Coefficient: -0.1, PValue: 0.6, MatchedPointCount: 28, StrengthLabel: "Very Weak", DirectionLabel: "Negative"},
		},
		HealthScore: models.HealthScore{OverallScore: 72.44, Grade: "Good", Trend: models.ScoreImproving},
		Streaks: []models.StreakResult{
			{StreakKind: "logging", CurrentStreak: 30, LongestStreak: 30, IsActive: true},
		},
		Insights: []models.HealthInsight{
			{Type: models.InsightTypeWarning, Priority: models.PriorityHigh, Title: "Pain is rising", Description: "Pain rose 40% over the period."},
			{Type: models.InsightTypeRecommendation, Priority: models.PriorityMedium, Title: "A suggestion for your pain", Description: "Pain has been rising.", ActionableText: "Note what triggers pain.", IsActionable: true},
		},
		TotalDays: 30,
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("yaml"))
}

func TestRenderReportText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, sampleReport(), Options{Format: FormatText}))
	out := buf.String()

	assert.Contains(t, out, "Period: 2024-03-01 to 2024-03-30 (30 logged days)")
	assert.Contains(t, out, "Health score: 72.4 (Good), improving")
	assert.Contains(t, out, "6.25")
	assert.Contains(t, out, "+12.5%")
	assert.Contains(t, out, "sleep_hours")
	assert.Contains(t, out, "0.71")
	assert.Contains(t, out, "1. [HIGH] Pain is rising")
	assert.Contains(t, out, "-> Note what triggers pain.")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderReportLimitsCorrelations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, sampleReport(), Options{Format: FormatText, MaxCorrelations: 1}))

	assert.Contains(t, buf.String(), "sleep_hours")
	assert.NotContains(t, buf.String(), "steps")
}

func TestRenderReportEmptyInsights(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, &models.AnalysisReport{}, Options{Format: FormatText}))

	assert.Contains(t, buf.String(), "No insights yet")
}

func TestRenderReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, sampleReport(), Options{Format: FormatJSON}))

	var decoded models.AnalysisReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 30, decoded.TotalDays)
	assert.Len(t, decoded.Insights, 2)
}

func TestTracker(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker(&buf, "correlating", 3)
	for i := 0; i < 3; i++ {
		tracker.Tick()
	}
	tracker.Finish()
	assert.NotZero(t, buf.Len())
}
