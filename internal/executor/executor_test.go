package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestPoolRunsAllTasks(t *testing.T) {
	var count atomic.Int32
	tasks := make([]*Task, 20)
	for i := range tasks {
		tasks[i] = &Task{
			ID: fmt.Sprintf("task-%d", i),
			Run: func(ctx context.Context) error {
				count.Add(1)
				return nil
			},
		}
	}

	pool := New(4)
	require.NoError(t, pool.Run(testCtx(), tasks))
	assert.Equal(t, int32(20), count.Load())
}

func TestPoolEmptyTaskList(t *testing.T) {
	pool := New(4)
	require.NoError(t, pool.Run(testCtx(), nil))
}

func TestPoolFirstFailureWins(t *testing.T) {
	boom := errors.New("boom")
	var ran atomic.Int32
	tasks := []*Task{
		{ID: "bad", Run: func(ctx context.Context) error { return boom }},
	}
	// Many tasks behind the failure; most should be skipped once the
	// context is cancelled.
	for i := 0; i < 50; i++ {
		tasks = append(tasks, &Task{
			ID: fmt.Sprintf("ok-%d", i),
			Run: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		})
	}

	pool := New(1)
	err := pool.Run(testCtx(), tasks)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
	assert.Zero(t, ran.Load(), "tasks after the failure should be skipped on a single worker")
}

func TestPoolWorkerCountFallback(t *testing.T) {
	pool := New(0)
	ran := false
	err := pool.Run(testCtx(), []*Task{{ID: "x", Run: func(ctx context.Context) error {
		ran = true
		return nil
	}}})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestBlocks(t *testing.T) {
	t.Run("splits by weight", func(t *testing.T) {
		items := []int{1, 1, 1, 1, 1, 1}
		blocks := Blocks(items, func(int) float64 { return 1 }, 2)
		require.Len(t, blocks, 3)
		for _, b := range blocks {
			assert.Len(t, b, 2)
		}
	})

	t.Run("oversized item gets its own block", func(t *testing.T) {
		items := []int{10, 1, 1}
		blocks := Blocks(items, func(i int) float64 { return float64(i) }, 3)
		require.Len(t, blocks, 2)
		assert.Equal(t, []int{10}, blocks[0])
		assert.Equal(t, []int{1, 1}, blocks[1])
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, Blocks(nil, func(int) float64 { return 1 }, 2))
	})

	t.Run("block weight target", func(t *testing.T) {
		assert.Equal(t, 5.0, BlockWeight(20, 4))
		assert.Equal(t, 20.0, BlockWeight(20, 0))
	})
}
