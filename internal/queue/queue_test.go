package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/queue"
)

func echoHandler(calls *atomic.Int32) queue.HandlerFunc {
	return func(_ context.Context, req *domain.Request) (*domain.Response, error) {
		calls.Add(1)
		return &domain.Response{ID: req.ID, Content: req.Prompt}, nil
	}
}

func TestQueue_Submit(t *testing.T) {
	t.Run("should process requests and return results", func(t *testing.T) {
		var calls atomic.Int32
		q := queue.New(echoHandler(&calls), &queue.Config{Capacity: 4})
		q.Start(context.Background())
		defer q.Close()

		resp, err := q.Submit(context.Background(), &domain.Request{ID: "1", Prompt: "hello"})
		require.NoError(t, err)
		require.Equal(t, "hello", resp.Content)
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("should process requests in FIFO order on one worker", func(t *testing.T) {
		var (
			mu       sync.Mutex
			order    []string
			inFlight atomic.Int32
			maxSeen  atomic.Int32
		)
		release := make(chan struct{})

		handler := queue.HandlerFunc(func(_ context.Context, req *domain.Request) (*domain.Response, error) {
			n := inFlight.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			<-release
			mu.Lock()
			order = append(order, req.ID)
			mu.Unlock()
			inFlight.Add(-1)
			return &domain.Response{ID: req.ID}, nil
		})

		q := queue.New(handler, &queue.Config{Capacity: 8})

		ids := []string{"a", "b", "c", "d"}
		errs := make(chan error, len(ids))
		for i, id := range ids {
			go func() {
				_, err := q.Submit(context.Background(), &domain.Request{ID: id})
				errs <- err
			}()
			require.Eventually(t, func() bool { return q.Len() == i+1 }, time.Second, time.Millisecond)
		}

		q.Start(context.Background())
		close(release)
		for range ids {
			require.NoError(t, <-errs)
		}
		q.Close()

		require.Equal(t, ids, order)
		require.Equal(t, int32(1), maxSeen.Load())
	})

	t.Run("should reject requests when full", func(t *testing.T) {
		var calls atomic.Int32
		q := queue.New(echoHandler(&calls), &queue.Config{Capacity: 1})

		errs := make(chan error, 1)
		go func() {
			_, err := q.Submit(context.Background(), &domain.Request{ID: "1"})
			errs <- err
		}()
		require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)

		_, err := q.Submit(context.Background(), &domain.Request{ID: "2"})
		require.ErrorIs(t, err, domain.ErrQueueFull)

		q.Close()
		require.ErrorIs(t, <-errs, domain.ErrQueueClosed)
		require.Zero(t, calls.Load())
	})

	t.Run("should reject requests after close", func(t *testing.T) {
		var calls atomic.Int32
		q := queue.New(echoHandler(&calls), &queue.Config{Capacity: 1})
		q.Start(context.Background())
		q.Close()

		_, err := q.Submit(context.Background(), &domain.Request{ID: "1"})
		require.ErrorIs(t, err, domain.ErrQueueClosed)
	})

	t.Run("should drop requests whose context expired while queued", func(t *testing.T) {
		var calls atomic.Int32
		q := queue.New(echoHandler(&calls), &queue.Config{Capacity: 2})

		ctx, cancel := context.WithCancel(context.Background())
		errs := make(chan error, 1)
		go func() {
			_, err := q.Submit(ctx, &domain.Request{ID: "1"})
			errs <- err
		}()
		require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)

		cancel()
		require.ErrorIs(t, <-errs, context.Canceled)

		q.Start(context.Background())
		require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, time.Millisecond)

		resp, err := q.Submit(context.Background(), &domain.Request{ID: "2", Prompt: "next"})
		require.NoError(t, err)
		require.Equal(t, "next", resp.Content)
		require.Equal(t, int32(1), calls.Load())
		q.Close()
	})

	t.Run("should count time spent queued against the request timeout", func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		handler := queue.HandlerFunc(func(_ context.Context, req *domain.Request) (*domain.Response, error) {
			calls.Add(1)
			if req.ID == "slow" {
				<-release
			}
			return &domain.Response{ID: req.ID}, nil
		})

		q := queue.New(handler, &queue.Config{Capacity: 4}, queue.WithRequestTimeout(50*time.Millisecond))
		q.Start(context.Background())
		defer q.Close()

		slow := make(chan error, 1)
		go func() {
			_, err := q.Submit(context.Background(), &domain.Request{ID: "slow"})
			slow <- err
		}()
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

		start := time.Now()
		_, err := q.Submit(context.Background(), &domain.Request{ID: "waiting"})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Less(t, time.Since(start), 500*time.Millisecond)

		close(release)
		require.ErrorIs(t, <-slow, context.DeadlineExceeded)

		resp, err := q.Submit(context.Background(), &domain.Request{ID: "next"})
		require.NoError(t, err)
		require.Equal(t, "next", resp.ID)
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("should keep a deadline set by the caller", func(t *testing.T) {
		var calls atomic.Int32
		q := queue.New(echoHandler(&calls), &queue.Config{Capacity: 1}, queue.WithRequestTimeout(time.Nanosecond))
		q.Start(context.Background())
		defer q.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		resp, err := q.Submit(ctx, &domain.Request{ID: "1", Prompt: "hi"})
		require.NoError(t, err)
		require.Equal(t, "hi", resp.Content)
	})

	t.Run("should propagate handler errors", func(t *testing.T) {
		q := queue.New(queue.HandlerFunc(func(context.Context, *domain.Request) (*domain.Response, error) {
			return nil, domain.ErrNoAvailableProvider
		}), &queue.Config{Capacity: 1})
		q.Start(context.Background())
		defer q.Close()

		_, err := q.Submit(context.Background(), &domain.Request{ID: "1"})
		require.True(t, errors.Is(err, domain.ErrNoAvailableProvider))
	})

	t.Run("should close when the start context is cancelled", func(t *testing.T) {
		var calls atomic.Int32
		q := queue.New(echoHandler(&calls), &queue.Config{Capacity: 1})

		ctx, cancel := context.WithCancel(context.Background())
		q.Start(ctx)
		cancel()

		require.Eventually(t, func() bool {
			_, err := q.Submit(context.Background(), &domain.Request{ID: "1"})
			return errors.Is(err, domain.ErrQueueClosed)
		}, time.Second, time.Millisecond)
		q.Close()
	})
}
