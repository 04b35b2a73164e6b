package queue_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/internal/adapters/queue"
)

func TestQueue_ExecuteShellCommand_Success(t *testing.T) {
	q := queue.New(context.Background(), 1)

	var stdout bytes.Buffer
	ok := q.ExecuteShellCommand(context.Background(), ".", "echo hello", &stdout, io.Discard)
	assert.True(t, ok)
	assert.Contains(t, stdout.String(), "hello")
}

func TestQueue_ExecuteShellCommand_Failure(t *testing.T) {
	q := queue.New(context.Background(), 1)

	var stderr bytes.Buffer
	ok := q.ExecuteShellCommand(context.Background(), ".", "exit 7", io.Discard, &stderr)
	assert.False(t, ok)
	assert.NotEmpty(t, stderr.String(), "a launch/exit failure should be reported on stderr")
}

func TestQueue_ExecuteShellCommand_RunsInWorkDir(t *testing.T) {
	q := queue.New(context.Background(), 1)
	tmpDir := t.TempDir()

	var stdout bytes.Buffer
	ok := q.ExecuteShellCommand(context.Background(), tmpDir, "pwd", &stdout, io.Discard)
	require.True(t, ok)
	assert.Contains(t, stdout.String(), tmpDir)
}

func TestQueue_AddJob_RunsConcurrentlyUpToLimit(t *testing.T) {
	q := queue.New(context.Background(), 4)

	var running int32
	var maxObserved int32
	var mu sync.Mutex

	for i := 0; i < 8; i++ {
		q.AddJob(func(ctx context.Context) {
			n := atomic.AddInt32(&running, 1)
			mu.Lock()
			if n > maxObserved {
				maxObserved = n
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		})
	}

	require.NoError(t, q.Wait())
	assert.LessOrEqual(t, maxObserved, int32(4))
	assert.Positive(t, maxObserved)
}

func TestQueue_Wait_BlocksUntilJobsComplete(t *testing.T) {
	q := queue.New(context.Background(), 0)

	var done atomic.Bool
	q.AddJob(func(ctx context.Context) {
		time.Sleep(20 * time.Millisecond)
		done.Store(true)
	})

	require.NoError(t, q.Wait())
	assert.True(t, done.Load())
}
