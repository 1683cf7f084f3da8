package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	traceIDBytes = 16
	spanIDBytes  = 8
)

// Context keys, in the order they are attached to log lines.
const (
	TraceIDKey   contextKey = "trace_id"
	SpanIDKey    contextKey = "span_id"
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	ProviderKey  contextKey = "provider"
	ModelKey     contextKey = "model"
)

//nolint:gochecknoglobals // fixed key order for log enrichment
var loggedKeys = []contextKey{TraceIDKey, SpanIDKey, RequestIDKey, UserIDKey, ProviderKey, ModelKey}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func value(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// WithTraceID stores the trace id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return withValue(ctx, TraceIDKey, id)
}

// WithSpanID stores the span id.
func WithSpanID(ctx context.Context, id string) context.Context {
	return withValue(ctx, SpanIDKey, id)
}

// WithRequestID stores the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, RequestIDKey, id)
}

// WithUserID stores the caller's user id.
func WithUserID(ctx context.Context, id string) context.Context {
	return withValue(ctx, UserIDKey, id)
}

// WithProvider tags the context with the provider currently being called.
func WithProvider(ctx context.Context, id string) context.Context {
	return withValue(ctx, ProviderKey, id)
}

// WithModel stores the requested model.
func WithModel(ctx context.Context, model string) context.Context {
	return withValue(ctx, ModelKey, model)
}

// GetTraceID returns the trace id or "".
func GetTraceID(ctx context.Context) string { return value(ctx, TraceIDKey) }

// GetSpanID returns the span id or "".
func GetSpanID(ctx context.Context) string { return value(ctx, SpanIDKey) }

// GetRequestID returns the request id or "".
func GetRequestID(ctx context.Context) string { return value(ctx, RequestIDKey) }

// GetUserID returns the user id or "".
func GetUserID(ctx context.Context) string { return value(ctx, UserIDKey) }

// GetProvider returns the provider id or "".
func GetProvider(ctx context.Context) string { return value(ctx, ProviderKey) }

// GetModel returns the model or "".
func GetModel(ctx context.Context) string { return value(ctx, ModelKey) }

// GenerateTraceID returns 32 lowercase hex characters.
func GenerateTraceID() string {
	return randomHex(traceIDBytes)
}

// GenerateSpanID returns 16 lowercase hex characters.
func GenerateSpanID() string {
	return randomHex(spanIDBytes)
}

// GenerateRequestID returns a random UUID.
func GenerateRequestID() string {
	return uuid.NewString()
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:2*n]
	}
	return hex.EncodeToString(b)
}

// ParseTraceparent extracts the trace and parent span ids from a W3C
// traceparent header ("00-<32 hex>-<16 hex>-<2 hex>").
func ParseTraceparent(header string) (traceID, parentID string, ok bool) {
	parts := strings.Split(strings.TrimSpace(header), "-")
	if len(parts) != 4 || parts[0] != "00" {
		return "", "", false
	}
	traceID, parentID = parts[1], parts[2]
	if !isHex(traceID, 2*traceIDBytes) || !isHex(parentID, 2*spanIDBytes) || !isHex(parts[3], 2) {
		return "", "", false
	}
	if strings.Trim(traceID, "0") == "" || strings.Trim(parentID, "0") == "" {
		return "", "", false
	}
	return traceID, parentID, true
}

// Traceparent formats the context's trace and span ids for outbound calls.
// It returns "" when the context carries no trace.
func Traceparent(ctx context.Context) string {
	traceID, spanID := GetTraceID(ctx), GetSpanID(ctx)
	if !isHex(traceID, 2*traceIDBytes) || !isHex(spanID, 2*spanIDBytes) {
		return ""
	}
	return fmt.Sprintf("00-%s-%s-01", traceID, spanID)
}

func isHex(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
