package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/relay/internal/domain"
)

const (
	hitsStream     = "relay:cache_hits"
	outcomesStream = "relay:provider_outcomes"
)

// StreamSink implements domain.MetricsSink by appending to capped streams.
type StreamSink struct {
	client *redis.Client
	maxLen int64
}

// NewStreamSink creates a metrics sink. maxLen caps each stream approximately.
func NewStreamSink(client *redis.Client, maxLen int64) *StreamSink {
	return &StreamSink{client: client, maxLen: maxLen}
}

// RecordHit appends a cache hit.
func (s *StreamSink) RecordHit(ctx context.Context, record domain.HitRecord) error {
	return s.add(ctx, hitsStream, hitValues(record))
}

// RecordOutcome appends a provider call outcome.
func (s *StreamSink) RecordOutcome(ctx context.Context, record domain.OutcomeRecord) error {
	return s.add(ctx, outcomesStream, outcomeValues(record))
}

func (s *StreamSink) add(ctx context.Context, stream string, values map[string]any) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", stream, err)
	}
	return nil
}

func hitValues(record domain.HitRecord) map[string]any {
	return map[string]any{
		"cache_item_id": record.CacheItemID,
		"user_id":       record.UserID,
		"timestamp":     record.Timestamp.UnixMilli(),
	}
}

func outcomeValues(record domain.OutcomeRecord) map[string]any {
	return map[string]any{
		"provider_id": record.ProviderID,
		"success":     boolFlag(record.Success),
		"fallback":    boolFlag(record.Fallback),
		"latency_ms":  record.Latency.Milliseconds(),
		"timestamp":   record.Timestamp.UnixMilli(),
	}
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
