package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"

	"github.com/davidbz/relay/internal/config"
)

// Response headers that browser callers may read.
//
//nolint:gochecknoglobals // read-only list
var exposedHeaders = []string{
	RequestIDHeader,
	"X-Trace-Id",
	"X-Relay-Provider",
	"X-Relay-Cache",
	"X-Relay-Cache-Similarity",
}

// CORS answers preflight requests and decorates responses. The trace and
// identity headers read by Trace are always allowed so browser callers can
// continue a trace.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	allowed := merge(cfg.AllowedHeaders, traceparentHeader, UserIDHeader, RequestIDHeader)

	opts := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   allowed,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	// Browsers refuse a literal "*" on credentialed requests; echo the origin.
	if cfg.AllowCredentials && slices.Contains(cfg.AllowedOrigins, "*") {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(string) bool { return true }
	}

	return cors.New(opts).Handler
}

func merge(base []string, extra ...string) []string {
	out := slices.Clone(base)
	for _, h := range extra {
		if !slices.ContainsFunc(out, func(s string) bool { return http.CanonicalHeaderKey(s) == http.CanonicalHeaderKey(h) }) {
			out = append(out, h)
		}
	}
	return out
}
