package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/healthjournal/backend/internal/analytics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestProblemDetailsJSON(t *testing.T) {
	retryAfter := 60
	problem := &ProblemDetails{
		Type:        TypeValidation,
		Title:       TitleValidation,
		Status:      http.StatusBadRequest,
		Detail:      "Field validation failed",
		Instance:    "/api/v1/analytics/correlation",
		RequestID:   "req-abc123",
		UserMessage: "Please fix the errors",
		RetryAfter:  &retryAfter,
		Action:      "fix_validation",
		Errors: []FieldError{
			{Field: "primary", Message: "is required", Code: "required"},
			{Field: "lag", Message: "must be a number", Code: "invalid_number"},
		},
	}

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, TypeValidation, result["type"])
	assert.Equal(t, TitleValidation, result["title"])
	assert.Equal(t, float64(http.StatusBadRequest), result["status"])
	assert.Equal(t, "/api/v1/analytics/correlation", result["instance"])
	assert.Equal(t, "req-abc123", result["request_id"])
	assert.Equal(t, float64(60), result["retry_after"])
	assert.Len(t, result["errors"], 2)
}

func TestProblemDetailsJSONOmitsEmpty(t *testing.T) {
	problem := &ProblemDetails{
		Type:   TypeInternal,
		Title:  TitleInternal,
		Status: http.StatusInternalServerError,
	}

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &result))

	for _, field := range []string{"detail", "instance", "request_id", "user_message", "retry_after", "action", "errors", "required_points", "actual_points"} {
		assert.NotContains(t, result, field)
	}
	for _, field := range []string{"type", "title", "status"} {
		assert.Contains(t, result, field)
	}
}

func TestWriteProblem(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/analytics/health-score", nil)

	WriteProblem(c, NewRateLimitError("req-456", 120))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	assert.Equal(t, "120", w.Header().Get("Retry-After"))
	assert.True(t, c.IsAborted())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "/api/v1/analytics/health-score", result["instance"])
}

func TestWriteProblemNoRetryAfterWhenNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteProblem(c, NewInternalError("req-789"))

	assert.Empty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFromAnalysisError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantType   string
		wantStatus int
		wantOK     bool
	}{
		{
			name:       "insufficient data",
			err:        &analytics.InsufficientDataError{Required: 3, Actual: 2, Metrics: []string{"mood", "stress"}},
			wantType:   TypeInsufficientData,
			wantStatus: http.StatusUnprocessableEntity,
			wantOK:     true,
		},
		{
			name:       "wrapped calculation error",
			err:        fmt.Errorf("correlating: %w", &analytics.CalculationError{Reason: "zero variance", Metric: "mood"}),
			wantType:   TypeCalculation,
			wantStatus: http.StatusUnprocessableEntity,
			wantOK:     true,
		},
		{
			name:       "unknown metric",
			err:        fmt.Errorf("%w: %q", analytics.ErrUnknownMetric, "bogus"),
			wantType:   TypeInvalidMetric,
			wantStatus: http.StatusBadRequest,
			wantOK:     true,
		},
		{
			name:   "other error",
			err:    fmt.Errorf("connection refused"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem, ok := FromAnalysisError("req-1", tt.err)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, problem)
				return
			}
			require.NotNil(t, problem)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, "req-1", problem.RequestID)
		})
	}
}

func TestNewInsufficientDataError(t *testing.T) {
	problem := NewInsufficientDataError("req-abc", 3, 1)

	assert.Equal(t, "keep_tracking", problem.Action)
	require.NotNil(t, problem.Required)
	require.NotNil(t, problem.Actual)
	assert.Equal(t, 3, *problem.Required)
	assert.Equal(t, 1, *problem.Actual)
	assert.NotEmpty(t, problem.UserMessage)
}

func TestNewInternalErrorHidesDetails(t *testing.T) {
	problem := NewInternalError("req-xyz")

	assert.Equal(t, "An unexpected error occurred", problem.Detail)
	assert.NotEmpty(t, problem.UserMessage)
}

func TestNewNotFoundError(t *testing.T) {
	problem := NewNotFoundError("req-123", "Symptom", "sym-456")

	assert.Equal(t, TypeNotFound, problem.Type)
	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, "Symptom with ID 'sym-456' was not found", problem.Detail)
}

func TestNewUnauthorizedError(t *testing.T) {
	problem := NewUnauthorizedError("req-abc")

	assert.Equal(t, TypeUnauthorized, problem.Type)
	assert.Equal(t, http.StatusUnauthorized, problem.Status)
	assert.Equal(t, "authenticate", problem.Action)
}

func TestNewInvalidUUIDError(t *testing.T) {
	problem := NewInvalidUUIDError("req-ghi", "symptom_id", "not-a-uuid")

	assert.Equal(t, TypeInvalidUUID, problem.Type)
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "symptom_id", problem.Errors[0].Field)
}

func TestNewValidationErrorMultipleFields(t *testing.T) {
	problem := NewValidationError("req-abc", []FieldError{
		{Field: "start", Message: "must be YYYY-MM-DD", Code: "invalid_date"},
		{Field: "end", Message: "must be YYYY-MM-DD", Code: "invalid_date"},
	})

	assert.Equal(t, TypeValidation, problem.Type)
	assert.Len(t, problem.Errors, 2)
}

func TestProblemDetailsError(t *testing.T) {
	assert.Equal(t, "Custom error message", (&ProblemDetails{Title: TitleValidation, Detail: "Custom error message"}).Error())
	assert.Equal(t, TitleValidation, (&ProblemDetails{Title: TitleValidation}).Error())
}

func TestGetRequestID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("request_id", "ctx-req-123")
	assert.Equal(t, "ctx-req-123", GetRequestID(c))

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	c2.Request.Header.Set("X-Request-ID", "header-req-456")
	assert.Equal(t, "header-req-456", GetRequestID(c2))

	c3, _ := gin.CreateTestContext(httptest.NewRecorder())
	c3.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	assert.Empty(t, GetRequestID(c3))
}

func TestNewServiceUnavailableError(t *testing.T) {
	problem := NewServiceUnavailableError("req-mno", 300)

	assert.Equal(t, http.StatusServiceUnavailable, problem.Status)
	require.NotNil(t, problem.RetryAfter)
	assert.Equal(t, 300, *problem.RetryAfter)
}
