package middleware

import (
	"net/http"
	"time"

	"github.com/davidbz/relay/internal/observability"
)

const (
	// UserIDHeader carries the caller's user identifier.
	UserIDHeader = "X-User-Id"
	// RequestIDHeader carries a caller-chosen request id, echoed back.
	RequestIDHeader = "X-Request-Id"

	traceparentHeader = "traceparent"
)

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Trace puts trace, span, request and user ids into the request context and
// logs one line per finished request. An incoming W3C traceparent header
// continues the caller's trace.
func Trace() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			traceID, _, ok := observability.ParseTraceparent(r.Header.Get(traceparentHeader))
			if !ok {
				traceID = observability.GenerateTraceID()
			}
			ctx = observability.WithTraceID(ctx, traceID)
			ctx = observability.WithSpanID(ctx, observability.GenerateSpanID())

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = observability.GenerateRequestID()
			}
			ctx = observability.WithRequestID(ctx, requestID)

			if userID := r.Header.Get(UserIDHeader); userID != "" {
				ctx = observability.WithUserID(ctx, userID)
			}

			w.Header().Set("X-Trace-Id", traceID)
			w.Header().Set(RequestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			observability.FromContext(ctx).Info("request finished",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.Int("status", rec.status),
				observability.Duration("duration", time.Since(start)),
			)
		})
	}
}
