package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/healthjournal/backend/internal/apierror"
	"github.com/JonnyWalker81/healthjournal/backend/internal/service"
)

// MaxLagDays bounds the lag accepted by the correlation endpoint
const MaxLagDays = 14

// AnalyticsHandler exposes statistics, correlations, the health score and streaks
type AnalyticsHandler struct {
	intelligenceService service.IntelligenceService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(intelligenceService service.IntelligenceService) *AnalyticsHandler {
	return &AnalyticsHandler{
		intelligenceService: intelligenceService,
	}
}

// GetStatistics handles GET /api/v1/analytics/statistics/:metric
func (h *AnalyticsHandler) GetStatistics(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	metric := c.Param("metric")
	if !validateMetricKey(c, "metric", metric) {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	stats, err := h.intelligenceService.GetStatistics(c.Request.Context(), userID, metric, period)
	if err != nil {
		writeServiceError(c, err, "failed to get statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric":     metric,
		"statistics": stats,
	})
}

// GetCorrelation handles GET /api/v1/analytics/correlation
func (h *AnalyticsHandler) GetCorrelation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	requestID := apierror.GetRequestID(c)
	primary := c.Query("primary")
	secondary := c.Query("secondary")

	var missing []apierror.FieldError
	if primary == "" {
		missing = append(missing, apierror.FieldError{Field: "primary", Message: "is required", Code: "required"})
	}
	if secondary == "" {
		missing = append(missing, apierror.FieldError{Field: "secondary", Message: "is required", Code: "required"})
	}
	if len(missing) > 0 {
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, missing))
		return
	}
	if !validateMetricKey(c, "primary", primary) || !validateMetricKey(c, "secondary", secondary) {
		return
	}

	lag := 0
	if raw := c.Query("lag"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < -MaxLagDays || parsed > MaxLagDays {
			apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
				{Field: "lag", Message: "must be an integer between -14 and 14", Code: "out_of_range"},
			}))
			return
		}
		lag = parsed
	}
	if primary == secondary && lag == 0 {
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: "secondary", Message: "must differ from primary unless a lag is given", Code: "same_metric"},
		}))
		return
	}

	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	result, err := h.intelligenceService.GetCorrelation(c.Request.Context(), userID, service.CorrelationRequest{
		Primary:   primary,
		Secondary: secondary,
		LagDays:   lag,
		Period:    period,
	})
	if err != nil {
		writeServiceError(c, err, "failed to get correlation")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHealthScore handles GET /api/v1/analytics/health-score
func (h *AnalyticsHandler) GetHealthScore(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	score, err := h.intelligenceService.GetHealthScore(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "failed to get health score")
		return
	}

	c.JSON(http.StatusOK, score)
}

// GetStreaks handles GET /api/v1/analytics/streaks
func (h *AnalyticsHandler) GetStreaks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	streaks, err := h.intelligenceService.GetStreaks(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "failed to get streaks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streaks": streaks,
	})
}

// GetReport handles GET /api/v1/analytics/report
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	report, err := h.intelligenceService.GetReport(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "failed to get analysis report")
		return
	}

	c.JSON(http.StatusOK, report)
}
