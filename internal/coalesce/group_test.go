package coalesce

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("single caller", func(t *testing.T) {
		var sut Group[string]

		got, shared, err := sut.Resolve(context.Background(), "key", func(ctx context.Context) (string, error) {
			return "value", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "value", got)
		assert.False(t, shared)
	})

	t.Run("concurrent callers share one resolution", func(t *testing.T) {
		const callers = 10
		var (
			sut     Group[string]
			calls   atomic.Int32
			once    sync.Once
			started = make(chan struct{})
			release = make(chan struct{})
			wg      sync.WaitGroup
			results = make([]string, callers)
		)
		resolve := func(ctx context.Context) (string, error) {
			calls.Add(1)
			once.Do(func() { close(started) })
			<-release
			return "value", nil
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			results[0], _, _ = sut.Resolve(context.Background(), "key", resolve)
		}()
		<-started

		for i := 1; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _, _ = sut.Resolve(context.Background(), "key", resolve)
			}(i)
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, got := range results {
			assert.Equal(t, "value", got)
		}
	})

	t.Run("different keys resolve independently", func(t *testing.T) {
		var (
			sut   Group[string]
			calls atomic.Int32
		)
		resolve := func(ctx context.Context) (string, error) {
			calls.Add(1)
			return "value", nil
		}

		_, _, err := sut.Resolve(context.Background(), "a", resolve)
		require.NoError(t, err)
		_, _, err = sut.Resolve(context.Background(), "b", resolve)
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("key is resolved again after completion", func(t *testing.T) {
		var (
			sut   Group[int]
			calls atomic.Int32
		)
		resolve := func(ctx context.Context) (int, error) {
			return int(calls.Add(1)), nil
		}

		first, _, err := sut.Resolve(context.Background(), "key", resolve)
		require.NoError(t, err)
		second, _, err := sut.Resolve(context.Background(), "key", resolve)
		require.NoError(t, err)

		assert.Equal(t, 1, first)
		assert.Equal(t, 2, second)
	})

	t.Run("error is propagated and key is retryable", func(t *testing.T) {
		var sut Group[string]
		wantErr := errors.New("store is unavailable")

		_, _, err := sut.Resolve(context.Background(), "key", func(ctx context.Context) (string, error) {
			return "", wantErr
		})

		assert.ErrorIs(t, err, wantErr)

		got, _, err := sut.Resolve(context.Background(), "key", func(ctx context.Context) (string, error) {
			return "value", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "value", got)
	})

	t.Run("cancelled waiter does not cancel resolution", func(t *testing.T) {
		var sut Group[string]
		release := make(chan struct{})
		done := make(chan error, 1)
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			_, _, err := sut.Resolve(ctx, "key", func(ctx context.Context) (string, error) {
				<-release
				done <- ctx.Err()
				return "value", nil
			})
			assert.ErrorIs(t, err, context.Canceled)
		}()
		time.Sleep(10 * time.Millisecond)
		cancel()
		go func() {
			time.Sleep(20 * time.Millisecond)
			close(release)
		}()

		got, _, err := sut.Resolve(context.Background(), "key", func(ctx context.Context) (string, error) {
			return "other", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "value", got)
		assert.NoError(t, <-done)
	})
}

func TestForget(t *testing.T) {
	var (
		sut     Group[string]
		started = make(chan struct{})
		release = make(chan struct{})
		done    = make(chan string)
	)
	go func() {
		v, _, _ := sut.Resolve(context.Background(), "key", func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
		done <- v
	}()
	<-started

	sut.Forget("key")
	got, shared, err := sut.Resolve(context.Background(), "key", func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	close(release)

	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.False(t, shared)
	assert.Equal(t, "stale", <-done)
}
