package logger

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
	metricsKey
	loggerKey
)

// maxRequestIDLen bounds client-supplied X-Request-ID values
const maxRequestIDLen = 128

// WithRequestID stores a request ID on ctx. Client-supplied IDs are trimmed;
// an empty, oversized or non-printable ID is replaced with a new UUID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if !validRequestID(requestID) {
		requestID = uuid.New().String()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// RequestIDFromContext returns the request ID, or "" outside a request
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithUserID stores the authenticated user's ID on ctx
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user's ID, or ""
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// WithMetrics records the metric keys an analysis request is about, so every
// log line for that request carries them
func WithMetrics(ctx context.Context, keys ...string) context.Context {
	var kept []string
	for _, k := range keys {
		if k != "" {
			kept = append(kept, k)
		}
	}
	if len(kept) == 0 {
		return ctx
	}
	return context.WithValue(ctx, metricsKey, strings.Join(kept, ","))
}

// MetricsFromContext returns the comma-separated metric keys set by WithMetrics
func MetricsFromContext(ctx context.Context) string {
	keys, _ := ctx.Value(metricsKey).(string)
	return keys
}

// WithLogger attaches l to ctx
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or the default logger
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

func extractContextFields(ctx context.Context) []Field {
	var fields []Field
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, String("request_id", id))
	}
	if id := UserIDFromContext(ctx); id != "" {
		fields = append(fields, String("user_id", id))
	}
	if keys := MetricsFromContext(ctx); keys != "" {
		fields = append(fields, String("metrics", keys))
	}
	return fields
}

// Ctx is FromContext(ctx) enriched with the request, user and metric fields on ctx
func Ctx(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
