package service

import (
	"context"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// IntelligenceService defines the interface for health analytics business logic.
// Methods taking a DateRange use the configured analysis window when it is zero.
type IntelligenceService interface {
	GetStatistics(ctx context.Context, userID, metric string, period models.DateRange) (*models.ChartStatistics, error)
	GetCorrelation(ctx context.Context, userID string, req CorrelationRequest) (*models.CorrelationResult, error)
	GetHealthScore(ctx context.Context, userID string) (*models.HealthScore, error)
	GetStreaks(ctx context.Context, userID string) ([]models.StreakResult, error)
	GetInsights(ctx context.Context, userID string, limit int) ([]models.HealthInsight, error)
	GetReport(ctx context.Context, userID string) (*models.AnalysisReport, error)
	RefreshInsights(ctx context.Context, userID string) (*models.AnalysisReport, error)
}

// CorrelationRequest selects two series and how to align them
type CorrelationRequest struct {
	Primary   string
	Secondary string
	LagDays   int
	Period    models.DateRange
}
