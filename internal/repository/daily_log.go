package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
	"github.com/JonnyWalker81/healthjournal/backend/pkg/supabase"
)

const dateLayout = "2006-01-02"

type dailyLogRepository struct {
	client *supabase.Client
}

// NewDailyLogRepository creates a new daily log repository
func NewDailyLogRepository(client *supabase.Client) DailyLogRepository {
	return &dailyLogRepository{client: client}
}

// dailyLogRow mirrors the daily_logs table, whose date column is a plain
// Postgres date rather than a timestamp
type dailyLogRow struct {
	models.DailyLog
	Date string `json:"date"`
}

func (r *dailyLogRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.DailyLog, error) {
	query := url.Values{}
	query.Set("user_id", fmt.Sprintf("eq.%s", userID))
	query.Add("date", fmt.Sprintf("gte.%s", startDate.Format(dateLayout)))
	query.Add("date", fmt.Sprintf("lte.%s", endDate.Format(dateLayout)))
	query.Set("select", "*")
	query.Set("order", "date.asc,created_at.asc")

	body, err := r.client.Query(ctx, "daily_logs", query, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get daily logs: %w", err)
	}

	return DecodeDailyLogs(body)
}

// DecodeDailyLogs parses a JSON array of daily_logs rows, as returned by
// PostgREST or exported from the app
func DecodeDailyLogs(data []byte) ([]models.DailyLog, error) {
	var rows []dailyLogRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode daily logs: %w", err)
	}

	logs := make([]models.DailyLog, 0, len(rows))
	for _, row := range rows {
		date, err := parseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("daily log %s: %w", row.ID, err)
		}
		log := row.DailyLog
		log.Date = date
		logs = append(logs, log)
	}

	return logs, nil
}

// parseDate accepts a bare date or a full RFC 3339 timestamp
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}
