package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JonnyWalker81/healthjournal/backend/internal/apierror"
	"github.com/JonnyWalker81/healthjournal/backend/internal/logger"
	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// requireUserID returns the authenticated user, writing a 401 when absent
func requireUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return "", false
	}
	return userID, true
}

// validateMetricKey accepts a built-in metric kind or "symptom:<uuid>",
// writing the matching problem when the key is invalid
func validateMetricKey(c *gin.Context, field, key string) bool {
	requestID := apierror.GetRequestID(c)

	if id, ok := models.ParseSymptomKey(key); ok {
		if _, err := uuid.Parse(id); err != nil {
			apierror.WriteProblem(c, apierror.NewInvalidUUIDError(requestID, field, id))
			return false
		}
		return true
	}

	if !models.IsValidMetricKind(key) {
		apierror.WriteProblem(c, apierror.NewInvalidMetricError(requestID, field, key))
		return false
	}
	return true
}

// parseDateParam parses an optional "2006-01-02" or RFC3339 query parameter
func parseDateParam(c *gin.Context, name string) (time.Time, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid %s format, expected YYYY-MM-DD or RFC3339", name)
	}
	return t, true, nil
}

// parsePeriod reads start/end. A missing start or end yields the zero range,
// which the service replaces with its analysis window.
func parsePeriod(c *gin.Context) (models.DateRange, bool) {
	requestID := apierror.GetRequestID(c)

	start, hasStart, err := parseDateParam(c, "start")
	if err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Please use dates like 2024-03-01."))
		return models.DateRange{}, false
	}
	end, hasEnd, err := parseDateParam(c, "end")
	if err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Please use dates like 2024-03-01."))
		return models.DateRange{}, false
	}

	if !hasStart && !hasEnd {
		return models.DateRange{}, true
	}
	if !hasEnd {
		end = time.Now()
	}
	if !hasStart {
		start = end.AddDate(0, 0, -29)
	}

	period := models.NewDateRange(start, end)
	if period.End.Before(period.Start) {
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: "end", Message: "must not be before start"},
		}))
		return models.DateRange{}, false
	}
	return period, true
}

// writeServiceError maps engine errors to 4xx problems, timeouts to 503 and
// everything else to 500
func writeServiceError(c *gin.Context, err error, msg string) {
	requestID := apierror.GetRequestID(c)

	if problem, ok := apierror.FromAnalysisError(requestID, err); ok {
		logger.Ctx(c.Request.Context()).Debug(msg, logger.Err(err))
		apierror.WriteProblem(c, problem)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Ctx(c.Request.Context()).Warn(msg, logger.Err(err))
		apierror.WriteProblem(c, apierror.NewServiceUnavailableError(requestID, 5))
		return
	}

	logger.Ctx(c.Request.Context()).Error(msg, logger.Err(err))
	apierror.WriteProblem(c, apierror.NewInternalError(requestID))
}
