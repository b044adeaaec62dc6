package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibakshay/nest.land/pkg/async"
)

func TestAsync(t *testing.T) {
	ctx := context.Background()

	t.Run("returns result", func(t *testing.T) {
		f := async.Async(ctx, 21, func(_ context.Context, v int) (int, error) {
			return v * 2, nil
		})
		res, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, res)
	})

	t.Run("returns error", func(t *testing.T) {
		wantErr := errors.New("upload failed")
		f := async.Async(ctx, "x", func(_ context.Context, _ string) (string, error) {
			return "", wantErr
		})
		_, err := f.Await()
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("pre-canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		f := async.Async(canceled, 0, func(_ context.Context, _ int) (int, error) {
			t.Error("function should not run")
			return 0, nil
		})
		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("await with timeout", func(t *testing.T) {
		f := async.Async(ctx, 0, func(_ context.Context, _ int) (int, error) {
			time.Sleep(time.Second)
			return 0, nil
		})
		_, err := f.AwaitWithTimeout(10 * time.Millisecond)
		assert.ErrorIs(t, err, async.ErrTimeout)
	})
}

func TestWaitAll(t *testing.T) {
	ctx := context.Background()

	t.Run("collects all results", func(t *testing.T) {
		futures := make([]*async.Future[int], 5)
		for i := range futures {
			futures[i] = async.Async(ctx, i, func(_ context.Context, v int) (int, error) {
				return v * v, nil
			})
		}

		results, err := async.WaitAll(futures...)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 4, 9, 16}, results)
	})

	t.Run("returns error from any future", func(t *testing.T) {
		wantErr := errors.New("boom")
		ok := async.Async(ctx, 0, func(_ context.Context, _ int) (int, error) { return 1, nil })
		bad := async.Async(ctx, 0, func(_ context.Context, _ int) (int, error) { return 0, wantErr })

		_, err := async.WaitAll(ok, bad)
		assert.ErrorIs(t, err, wantErr)
	})
}
