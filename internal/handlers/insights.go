package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/healthjournal/backend/internal/analytics"
	"github.com/JonnyWalker81/healthjournal/backend/internal/apierror"
	"github.com/JonnyWalker81/healthjournal/backend/internal/logger"
	"github.com/JonnyWalker81/healthjournal/backend/internal/service"
)

// InsightsHandler handles insights-related HTTP requests
type InsightsHandler struct {
	intelligenceService service.IntelligenceService
	maxLimit            int
}

// NewInsightsHandler creates a new insights handler. maxLimit is the number
// of insights a report keeps, which bounds the limit query parameter; values
// below 1 use analytics.DefaultMaxInsights.
func NewInsightsHandler(intelligenceService service.IntelligenceService, maxLimit int) *InsightsHandler {
	if maxLimit < 1 {
		maxLimit = analytics.DefaultMaxInsights
	}
	return &InsightsHandler{
		intelligenceService: intelligenceService,
		maxLimit:            maxLimit,
	}
}

// GetInsights returns ranked insights for the authenticated user
// GET /api/v1/insights?limit=N
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > h.maxLimit {
			apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
				{Field: "limit", Message: fmt.Sprintf("must be an integer between 1 and %d", h.maxLimit), Code: "out_of_range"},
			}))
			return
		}
		limit = parsed
	}

	insights, err := h.intelligenceService.GetInsights(c.Request.Context(), userID, limit)
	if err != nil {
		writeServiceError(c, err, "failed to get insights")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"insights": insights,
		"count":    len(insights),
	})
}

// RefreshInsights forces recomputation of the user's report
// POST /api/v1/insights/refresh
func (h *InsightsHandler) RefreshInsights(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	report, err := h.intelligenceService.RefreshInsights(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "failed to refresh insights")
		return
	}

	logger.Ctx(c.Request.Context()).Info("insights refreshed", logger.Int("insights", len(report.Insights)))

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"insights":     report.Insights,
		"generated_at": report.GeneratedAt,
	})
}
