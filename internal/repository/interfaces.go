package repository

import (
	"context"
	"time"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// DailyLogRepository defines read access to journal logs
type DailyLogRepository interface {
	// GetByUserIDAndDateRange returns the user's logs with a date inside
	// [startDate, endDate], ordered by date ascending
	GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.DailyLog, error)
}

// SymptomRepository defines read access to user-defined symptoms
type SymptomRepository interface {
	GetByUserID(ctx context.Context, userID string) ([]models.Symptom, error)
}
