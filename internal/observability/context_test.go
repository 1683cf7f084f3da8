package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/observability"
)

func TestParseTraceparent(t *testing.T) {
	tests := []struct {
		name   string
		header string
		trace  string
		parent string
		ok     bool
	}{
		{
			name:   "should accept a valid header",
			header: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			trace:  "4bf92f3577b34da6a3ce929d0e0e4736",
			parent: "00f067aa0ba902b7",
			ok:     true,
		},
		{name: "should reject an unknown version", header: "01-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
		{name: "should reject an all-zero trace id", header: "00-00000000000000000000000000000000-00f067aa0ba902b7-01"},
		{name: "should reject uppercase hex", header: "00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01"},
		{name: "should reject a short span id", header: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa-01"},
		{name: "should reject an empty header", header: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace, parent, ok := observability.ParseTraceparent(tt.header)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.trace, trace)
			require.Equal(t, tt.parent, parent)
		})
	}
}

func TestTraceparent(t *testing.T) {
	t.Run("should round trip generated ids", func(t *testing.T) {
		ctx := observability.WithTraceID(context.Background(), observability.GenerateTraceID())
		ctx = observability.WithSpanID(ctx, observability.GenerateSpanID())

		trace, parent, ok := observability.ParseTraceparent(observability.Traceparent(ctx))
		require.True(t, ok)
		require.Equal(t, observability.GetTraceID(ctx), trace)
		require.Equal(t, observability.GetSpanID(ctx), parent)
	})

	t.Run("should be empty without a trace", func(t *testing.T) {
		require.Empty(t, observability.Traceparent(context.Background()))
	})
}

func TestContextValues(t *testing.T) {
	t.Run("should read back stored ids", func(t *testing.T) {
		ctx := observability.WithRequestID(context.Background(), "req-1")
		ctx = observability.WithUserID(ctx, "alice")
		ctx = observability.WithProvider(ctx, "openai")
		ctx = observability.WithModel(ctx, "gpt-4o")

		require.Equal(t, "req-1", observability.GetRequestID(ctx))
		require.Equal(t, "alice", observability.GetUserID(ctx))
		require.Equal(t, "openai", observability.GetProvider(ctx))
		require.Equal(t, "gpt-4o", observability.GetModel(ctx))
		require.Empty(t, observability.GetTraceID(ctx))
		require.NotNil(t, observability.FromContext(ctx))
	})
}
