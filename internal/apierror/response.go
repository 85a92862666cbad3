package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/healthjournal/backend/internal/analytics"
)

// ContentTypeProblemJSON is the MIME type for RFC 9457 Problem Details.
const ContentTypeProblemJSON = "application/problem+json"

// WriteProblem writes a ProblemDetails response to the gin context.
// It sets the correct Content-Type header and, if RetryAfter is set,
// also sets the Retry-After header.
func WriteProblem(c *gin.Context, problem *ProblemDetails) {
	c.Header("Content-Type", ContentTypeProblemJSON)

	if problem.RetryAfter != nil {
		c.Header("Retry-After", strconv.Itoa(*problem.RetryAfter))
	}
	if problem.Instance == "" && c.Request != nil {
		problem.Instance = c.Request.URL.Path
	}

	c.AbortWithStatusJSON(problem.Status, problem)
}

// GetRequestID extracts the request ID from the gin context.
// Returns empty string if not found.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return c.GetHeader("X-Request-ID")
}

// FromAnalysisError maps an engine error to a problem. The second result is
// false when err is not an analysis failure and should be treated as internal.
func FromAnalysisError(requestID string, err error) (*ProblemDetails, bool) {
	var insufficient *analytics.InsufficientDataError
	if errors.As(err, &insufficient) {
		return NewInsufficientDataError(requestID, insufficient.Required, insufficient.Actual), true
	}

	var calc *analytics.CalculationError
	if errors.As(err, &calc) {
		return NewCalculationError(requestID, calc.Error()), true
	}

	if errors.Is(err, analytics.ErrUnknownMetric) {
		return NewInvalidMetricError(requestID, "metric", err.Error()), true
	}

	return nil, false
}

// NewValidationError creates a 400 Bad Request response for validation failures.
func NewValidationError(requestID string, errors []FieldError) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeValidation,
		Title:       TitleValidation,
		Status:      http.StatusBadRequest,
		Detail:      "One or more fields failed validation",
		RequestID:   requestID,
		UserMessage: "Please check your input and try again",
		Errors:      errors,
	}
}

// NewNotFoundError creates a 404 Not Found response.
func NewNotFoundError(requestID, resource, id string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeNotFound,
		Title:       TitleNotFound,
		Status:      http.StatusNotFound,
		Detail:      fmt.Sprintf("%s with ID '%s' was not found", resource, id),
		RequestID:   requestID,
		UserMessage: fmt.Sprintf("The requested %s could not be found", resource),
	}
}

// NewRateLimitError creates a 429 Too Many Requests response.
// retryAfter specifies seconds until the client should retry.
func NewRateLimitError(requestID string, retryAfter int) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeRateLimit,
		Title:       TitleRateLimit,
		Status:      http.StatusTooManyRequests,
		Detail:      fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds", retryAfter),
		RequestID:   requestID,
		UserMessage: "Too many requests. Please wait before trying again.",
		RetryAfter:  &retryAfter,
	}
}

// NewInternalError creates a 500 Internal Server Error response.
// Internal details stay out of the body; log them server-side.
func NewInternalError(requestID string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeInternal,
		Title:       TitleInternal,
		Status:      http.StatusInternalServerError,
		Detail:      "An unexpected error occurred",
		RequestID:   requestID,
		UserMessage: "Something went wrong. Please try again later.",
	}
}

// NewBadRequestError creates a 400 Bad Request response for malformed requests.
func NewBadRequestError(requestID, detail, userMessage string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeBadRequest,
		Title:       TitleBadRequest,
		Status:      http.StatusBadRequest,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: userMessage,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized response.
func NewUnauthorizedError(requestID string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeUnauthorized,
		Title:       TitleUnauthorized,
		Status:      http.StatusUnauthorized,
		Detail:      "Authentication is required to access this resource",
		RequestID:   requestID,
		UserMessage: "Please sign in to continue",
		Action:      "authenticate",
	}
}

// NewInvalidUUIDError creates a 400 Bad Request response for invalid UUID format.
func NewInvalidUUIDError(requestID, field, value string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeInvalidUUID,
		Title:       TitleInvalidUUID,
		Status:      http.StatusBadRequest,
		Detail:      fmt.Sprintf("Invalid UUID format for field '%s': '%s'", field, value),
		RequestID:   requestID,
		UserMessage: "Invalid identifier format",
		Errors: []FieldError{
			{Field: field, Message: "must be a valid UUID", Code: "invalid_uuid"},
		},
	}
}

// NewInvalidMetricError creates a 400 response for a metric key that is
// neither a built-in kind nor a symptom key.
func NewInvalidMetricError(requestID, field, value string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeInvalidMetric,
		Title:       TitleInvalidMetric,
		Status:      http.StatusBadRequest,
		Detail:      fmt.Sprintf("'%s' is not a known metric", value),
		RequestID:   requestID,
		UserMessage: "That metric isn't something we track",
		Errors: []FieldError{
			{Field: field, Message: "must be a metric kind or symptom:<id>", Code: "invalid_metric"},
		},
	}
}

// NewInsufficientDataError creates a 422 response asking the user to keep tracking.
func NewInsufficientDataError(requestID string, required, actual int) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeInsufficientData,
		Title:       TitleInsufficientData,
		Status:      http.StatusUnprocessableEntity,
		Detail:      fmt.Sprintf("At least %d days with data for both metrics are required, found %d", required, actual),
		RequestID:   requestID,
		UserMessage: "Keep tracking for a few more days to see this analysis",
		Action:      "keep_tracking",
		Required:    &required,
		Actual:      &actual,
	}
}

// NewCalculationError creates a 422 response for inputs the analysis cannot
// handle, such as a metric that never changes.
func NewCalculationError(requestID, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeCalculation,
		Title:       TitleCalculation,
		Status:      http.StatusUnprocessableEntity,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: "These metrics can't be compared yet. Try a different pair.",
		Action:      "try_different_metrics",
	}
}

// NewServiceUnavailableError creates a 503 Service Unavailable response.
// retryAfter specifies seconds until the client should retry.
func NewServiceUnavailableError(requestID string, retryAfter int) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeInternal,
		Title:       "Service Unavailable",
		Status:      http.StatusServiceUnavailable,
		Detail:      "The service is temporarily unavailable",
		RequestID:   requestID,
		UserMessage: "Service is temporarily unavailable. Please try again later.",
		RetryAfter:  &retryAfter,
	}
}
