package ratelimit_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/ratelimit"
)

func newLimiter(maxRequests int) (*ratelimit.Limiter, *clock.FakeClock) {
	clk := clock.Fake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return ratelimit.NewLimiter(clk, &ratelimit.Config{MaxRequests: maxRequests, Window: time.Minute}), clk
}

func TestLimiter_Allow(t *testing.T) {
	t.Run("should block the request after the limit within a window", func(t *testing.T) {
		limiter, _ := newLimiter(3)

		for range 3 {
			require.True(t, limiter.Allow("openai"))
		}
		require.False(t, limiter.Allow("openai"))
		require.False(t, limiter.Allowed("openai"))
		require.Zero(t, limiter.Remaining("openai"))
	})

	t.Run("should admit again after the window resets", func(t *testing.T) {
		limiter, clk := newLimiter(2)

		require.True(t, limiter.Allow("openai"))
		require.True(t, limiter.Allow("openai"))
		require.False(t, limiter.Allow("openai"))

		clk.Advance(59 * time.Second)
		require.False(t, limiter.Allow("openai"))

		clk.Advance(time.Second)
		require.True(t, limiter.Allow("openai"))
		require.Equal(t, 1, limiter.Remaining("openai"))
	})

	t.Run("should track providers independently", func(t *testing.T) {
		limiter, _ := newLimiter(1)

		require.True(t, limiter.Allow("a"))
		require.False(t, limiter.Allow("a"))
		require.True(t, limiter.Allow("b"))
	})

	t.Run("should honor per-provider limits", func(t *testing.T) {
		limiter, _ := newLimiter(1)
		limiter.SetLimit("big", 3)

		require.Equal(t, 3, limiter.Remaining("big"))
		for range 3 {
			require.True(t, limiter.Allow("big"))
		}
		require.False(t, limiter.Allow("big"))

		limiter.SetLimit("big", 0)
		require.Zero(t, limiter.Remaining("big"))
	})
}

func TestLimiter_SetLimit(t *testing.T) {
	t.Run("should clamp the window count when the limit drops mid-window", func(t *testing.T) {
		limiter, clk := newLimiter(10)

		for range 8 {
			require.True(t, limiter.Allow("openai"))
		}

		limiter.SetLimit("openai", 3)
		require.Equal(t, 3, limiter.Count("openai"))
		require.Zero(t, limiter.Remaining("openai"))
		require.False(t, limiter.Allow("openai"))

		clk.Advance(time.Minute)
		require.Zero(t, limiter.Count("openai"))
		require.Equal(t, 3, limiter.Remaining("openai"))
	})

	t.Run("should keep the count when the limit rises", func(t *testing.T) {
		limiter, _ := newLimiter(2)

		require.True(t, limiter.Allow("openai"))
		require.True(t, limiter.Allow("openai"))

		limiter.SetLimit("openai", 5)
		require.Equal(t, 2, limiter.Count("openai"))
		require.Equal(t, 3, limiter.Remaining("openai"))
	})

	t.Run("should clamp to the default when an override is removed", func(t *testing.T) {
		limiter, _ := newLimiter(2)
		limiter.SetLimit("openai", 6)

		for range 5 {
			require.True(t, limiter.Allow("openai"))
		}

		limiter.SetLimit("openai", 0)
		require.Equal(t, 2, limiter.Count("openai"))
		require.False(t, limiter.Allowed("openai"))
	})
}

func TestLimiter_Allowed(t *testing.T) {
	t.Run("should peek without consuming", func(t *testing.T) {
		limiter, _ := newLimiter(1)

		for range 10 {
			require.True(t, limiter.Allowed("a"))
		}
		require.True(t, limiter.Allow("a"))
		require.False(t, limiter.Allowed("a"))
	})
}

func TestLimiter_Concurrent(t *testing.T) {
	t.Run("should never admit more than the limit", func(t *testing.T) {
		limiter, _ := newLimiter(50)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			granted int
		)
		for range 200 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("a") {
					mu.Lock()
					granted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 50, granted)
	})
}
