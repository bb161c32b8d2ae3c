package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskQueue implements TaskQueueReader for testing
type mockTaskQueue struct {
	ch chan Task
}

func newMockTaskQueue() *mockTaskQueue {
	return &mockTaskQueue{ch: make(chan Task, 10)}
}

func (m *mockTaskQueue) Tasks() <-chan Task {
	return m.ch
}

func TestNewWorkerPool(t *testing.T) {
	taskQueue := newMockTaskQueue()

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 5}, setupTestLogger())
	assert.Equal(t, 5, pool.workerCount)
	assert.Nil(t, pool.errorHandler)

	for _, n := range []int{0, -5} {
		pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: n}, nil)
		assert.Equal(t, 1, pool.workerCount)
	}

	assert.Equal(t, 2, DefaultWorkerPoolConfig().WorkerCount)
}

func TestWorkerPool_StartStopIdempotent(t *testing.T) {
	pool := NewWorkerPool(newMockTaskQueue(), WorkerPoolConfig{WorkerCount: 3}, setupTestLogger())
	pool.Start()
	pool.Start()
	pool.Stop()
	pool.Stop()
}

func TestWorkerPool_ProcessesTasks(t *testing.T) {
	taskQueue := newMockTaskQueue()
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 2}, setupTestLogger())
	pool.Start()
	defer pool.Stop()

	var done atomic.Int32
	finished := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		task := newMockTask()
		task.execFn = func(ctx context.Context) error {
			done.Add(1)
			finished <- struct{}{}
			return nil
		}
		taskQueue.ch <- task
	}

	for i := 0; i < 5; i++ {
		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}
	assert.Equal(t, int32(5), done.Load())
}

func TestWorkerPool_ErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		execFn  func(ctx context.Context) error
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "returned error",
			execFn: func(ctx context.Context) error { return errors.New("test error") },
			checkFn: func(t *testing.T, err error) {
				assert.EqualError(t, err, "test error")
			},
		},
		{
			name:   "panic",
			execFn: func(ctx context.Context) error { panic("test panic") },
			checkFn: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "panic")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskQueue := newMockTaskQueue()
			errorHandled := make(chan error, 1)

			pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
			pool.SetErrorHandler(func(task Task, err error) { errorHandled <- err })
			pool.Start()
			defer pool.Stop()

			task := newMockTask()
			task.execFn = tt.execFn
			taskQueue.ch <- task

			select {
			case err := <-errorHandled:
				tt.checkFn(t, err)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for error handler")
			}
		})
	}
}

func TestWorkerPool_StopCancelsRunningTask(t *testing.T) {
	taskQueue := newMockTaskQueue()
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()

	started := make(chan struct{})
	var cancelled atomic.Bool
	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}
	taskQueue.ch <- task

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task to start")
	}

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for worker pool to stop")
	}
	require.True(t, cancelled.Load())
}

func TestWorkerPool_ExitsWhenQueueCloses(t *testing.T) {
	queue := NewTaskQueue(1, setupTestLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, setupTestLogger())
	pool.Start()

	queue.Close()

	done := make(chan struct{})
	go func() {
		pool.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not exit after queue close")
	}
	pool.Stop()
}
