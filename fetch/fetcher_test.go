package fetch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/linkmeta"
	"github.com/fwojciec/linkmeta/fetch"
	"github.com/fwojciec/linkmeta/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sleepRecorder records requested delays without sleeping.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *sleepRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delays)
}

// statusGetter answers each call with the next status; 200 returns body.
func statusGetter(body string, statuses ...int) (*mock.Getter, *int) {
	calls := 0
	return &mock.Getter{
		GetFn: func(_ context.Context, url string) (string, error) {
			status := statuses[min(calls, len(statuses)-1)]
			calls++
			if status == 200 {
				return body, nil
			}
			return "", &linkmeta.StatusError{Code: status, URL: url}
		},
	}, &calls
}

func noJitter() float64 { return 0 }

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body after retrying retryable statuses", func(t *testing.T) {
		t.Parallel()

		getter, calls := statusGetter("<html>ok</html>", 429, 503, 200)
		sleeps := &sleepRecorder{}
		f := &fetch.Fetcher{Getter: getter, Sleep: sleeps.Sleep, Jitter: noJitter}

		html, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com", MaxAttempts: 3})

		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", html)
		assert.Equal(t, 3, *calls)
		assert.Equal(t, []time.Duration{600 * time.Millisecond, 1200 * time.Millisecond}, sleeps.delays)
	})

	t.Run("fails with bad status after exhausting attempts", func(t *testing.T) {
		t.Parallel()

		getter, calls := statusGetter("", 500, 500, 500)
		sleeps := &sleepRecorder{}
		f := &fetch.Fetcher{Getter: getter, Sleep: sleeps.Sleep, Jitter: noJitter}

		_, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com", MaxAttempts: 3})

		require.Error(t, err)
		var statusErr *linkmeta.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 500, statusErr.Code)
		assert.Equal(t, 3, *calls)
		assert.Equal(t, 2, sleeps.count())
	})

	t.Run("does not retry non-retryable status", func(t *testing.T) {
		t.Parallel()

		getter, calls := statusGetter("", 404)
		sleeps := &sleepRecorder{}
		f := &fetch.Fetcher{Getter: getter, Sleep: sleeps.Sleep, Jitter: noJitter}

		_, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com"})

		require.Error(t, err)
		assert.Equal(t, 404, linkmeta.StatusCode(err))
		assert.Equal(t, 1, *calls)
		assert.Zero(t, sleeps.count())
	})

	t.Run("defaults to three attempts", func(t *testing.T) {
		t.Parallel()

		getter, calls := statusGetter("", 503)
		f := &fetch.Fetcher{Getter: getter, Sleep: (&sleepRecorder{}).Sleep, Jitter: noJitter}

		_, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com"})

		require.Error(t, err)
		assert.Equal(t, linkmeta.DefaultMaxAttempts, *calls)
	})

	t.Run("retries transport errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		getter := &mock.Getter{
			GetFn: func(_ context.Context, _ string) (string, error) {
				calls++
				if calls == 1 {
					return "", errors.New("connection reset")
				}
				return "<html>ok</html>", nil
			},
		}
		sleeps := &sleepRecorder{}
		f := &fetch.Fetcher{Getter: getter, Sleep: sleeps.Sleep, Jitter: noJitter}

		html, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com"})

		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", html)
		assert.Equal(t, 1, sleeps.count())
	})

	t.Run("propagates transport error when attempts run out", func(t *testing.T) {
		t.Parallel()

		netErr := errors.New("no route to host")
		getter := &mock.Getter{
			GetFn: func(_ context.Context, _ string) (string, error) {
				return "", netErr
			},
		}
		f := &fetch.Fetcher{Getter: getter, Sleep: (&sleepRecorder{}).Sleep, Jitter: noJitter}

		_, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com", MaxAttempts: 2})

		assert.ErrorIs(t, err, netErr)
	})

	t.Run("consults throttle before every static attempt", func(t *testing.T) {
		t.Parallel()

		getter, _ := statusGetter("<html>ok</html>", 503, 200)
		var waited []string
		throttle := &mock.Throttle{
			WaitFn: func(_ context.Context, url string) error {
				waited = append(waited, url)
				return nil
			},
		}
		f := &fetch.Fetcher{Getter: getter, Throttle: throttle, Sleep: (&sleepRecorder{}).Sleep, Jitter: noJitter}

		_, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com/a"})

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/a"}, waited)
	})

	t.Run("returns rendered markup when rendering is preferred", func(t *testing.T) {
		t.Parallel()

		var gotWait time.Duration
		renderer := &mock.Renderer{
			RenderFn: func(_ context.Context, _ string, wait time.Duration) (string, error) {
				gotWait = wait
				return "<html>rendered</html>", nil
			},
		}
		getter := &mock.Getter{
			GetFn: func(context.Context, string) (string, error) {
				t.Fatal("static fetch should not run")
				return "", nil
			},
		}
		f := &fetch.Fetcher{Getter: getter, Renderer: renderer}

		html, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com", PreferRendering: true})

		require.NoError(t, err)
		assert.Equal(t, "<html>rendered</html>", html)
		assert.Equal(t, linkmeta.DefaultRenderWait, gotWait)
	})

	t.Run("skips renderer when rendering is not preferred", func(t *testing.T) {
		t.Parallel()

		renderer := &mock.Renderer{
			RenderFn: func(context.Context, string, time.Duration) (string, error) {
				t.Fatal("renderer should not run")
				return "", nil
			},
		}
		getter, _ := statusGetter("<html>static</html>", 200)
		f := &fetch.Fetcher{Getter: getter, Renderer: renderer}

		html, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com"})

		require.NoError(t, err)
		assert.Equal(t, "<html>static</html>", html)
	})

	t.Run("falls back silently when rendering is unavailable", func(t *testing.T) {
		t.Parallel()

		getter, _ := statusGetter("", 404)
		f := &fetch.Fetcher{Getter: getter, Renderer: linkmeta.NopRenderer{}}

		_, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com", PreferRendering: true})

		require.Error(t, err)
		assert.NotErrorIs(t, err, linkmeta.ErrRenderingUnavailable)
		assert.Equal(t, 404, linkmeta.StatusCode(err))
	})

	t.Run("falls back to static when rendered markup is blank", func(t *testing.T) {
		t.Parallel()

		renderer := &mock.Renderer{
			RenderFn: func(context.Context, string, time.Duration) (string, error) {
				return "   \n", nil
			},
		}
		getter, _ := statusGetter("<html>static</html>", 200)
		f := &fetch.Fetcher{Getter: getter, Renderer: renderer}

		html, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com", PreferRendering: true})

		require.NoError(t, err)
		assert.Equal(t, "<html>static</html>", html)
	})

	t.Run("surfaces rendering error when both strategies fail", func(t *testing.T) {
		t.Parallel()

		renderErr := errors.New("navigation timed out")
		renderer := &mock.Renderer{
			RenderFn: func(context.Context, string, time.Duration) (string, error) {
				return "", renderErr
			},
		}
		getter, _ := statusGetter("", 404)
		f := &fetch.Fetcher{Getter: getter, Renderer: renderer}

		_, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{URL: "https://example.com", PreferRendering: true})

		assert.ErrorIs(t, err, renderErr)
	})

	t.Run("stops retrying when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		getter := &mock.Getter{
			GetFn: func(_ context.Context, url string) (string, error) {
				calls++
				cancel()
				return "", &linkmeta.StatusError{Code: 503, URL: url}
			},
		}
		f := &fetch.Fetcher{Getter: getter, Jitter: noJitter}

		_, err := f.Fetch(ctx, &linkmeta.FetchRequest{URL: "https://example.com"})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("rejects empty URL", func(t *testing.T) {
		t.Parallel()

		f := &fetch.Fetcher{}
		_, err := f.Fetch(context.Background(), &linkmeta.FetchRequest{})

		assert.Equal(t, linkmeta.EINVALID, linkmeta.ErrorCode(err))
	})
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	t.Run("doubles from 0.6s per attempt", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 600*time.Millisecond, fetch.Backoff(1, 0))
		assert.Equal(t, 1200*time.Millisecond, fetch.Backoff(2, 0))
		assert.Equal(t, 2400*time.Millisecond, fetch.Backoff(3, 0))
	})

	t.Run("applies jitter", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, float64(450*time.Millisecond), float64(fetch.Backoff(1, -0.15)), float64(time.Millisecond))
		assert.InDelta(t, float64(750*time.Millisecond), float64(fetch.Backoff(1, 0.15)), float64(time.Millisecond))
	})

	t.Run("never drops below 0.3s", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 300*time.Millisecond, fetch.Backoff(1, -0.5))
	})

	t.Run("jitter stays within bounds", func(t *testing.T) {
		t.Parallel()

		for range 1000 {
			j := fetch.Jitter()
			assert.GreaterOrEqual(t, j, -0.15)
			assert.LessOrEqual(t, j, 0.15)
		}
	})
}
