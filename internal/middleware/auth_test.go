package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/healthjournal/backend/internal/logger"
	"github.com/JonnyWalker81/healthjournal/backend/pkg/supabase"
)

type fakeVerifier struct {
	users map[string]*supabase.User
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, token string) (*supabase.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func authRouter(buf *bytes.Buffer) *gin.Engine {
	base := logger.New(logger.Config{Level: logger.LevelDebug, Format: "json", Output: buf})
	verifier := &fakeVerifier{users: map[string]*supabase.User{
		"good-token": {ID: "user-1", Email: "a@example.com"},
	}}

	r := gin.New()
	r.Use(Logger(base))
	r.Use(Auth(verifier))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString("user_id"),
			"request_id": c.GetString("request_id"),
			"ctx_user":   logger.UserIDFromContext(c.Request.Context()),
		})
	})
	return r
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer good-token", wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good-token", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := authRouter(&buf)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
				assert.Contains(t, w.Body.String(), `"ctx_user":"user-1"`)
			} else {
				assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
				assert.Contains(t, w.Body.String(), "urn:healthjournal:error:unauthorized")
			}
		})
	}
}

func TestLoggerPropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := authRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), "request completed")
}

func TestLoggerGeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := authRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestLoggerReplacesOversizedRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := authRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.NotContains(t, buf.String(), strings.Repeat("x", 500))
}

func TestSecurityHeaders(t *testing.T) {
	for _, production := range []bool{false, true} {
		r := gin.New()
		r.Use(SecurityHeaders(production))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, production, w.Header().Get("Strict-Transport-Security") != "")
	}
}
