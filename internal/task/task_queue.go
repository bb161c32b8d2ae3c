package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is an in-memory bounded queue. Tasks still buffered when the
// process exits are lost; a set whose generation never ran keeps only its
// manual cards.
type TaskQueue struct {
	logger *slog.Logger

	mu     sync.RWMutex
	ch     chan Task
	closed bool
}

var (
	_ TaskQueueReader = (*TaskQueue)(nil)
	_ TaskQueueWriter = (*TaskQueue)(nil)
)

// NewTaskQueue creates a queue holding at most size pending tasks.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{
		ch:     make(chan Task, size),
		logger: logger.With(slog.String("component", "task_queue")),
	}
}

// Enqueue adds task without blocking.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- task:
		q.logger.Debug("task enqueued",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.Int("pending", len(q.ch)))
		return nil
	default:
		return fmt.Errorf("%w: %d tasks pending", ErrQueueFull, cap(q.ch))
	}
}

// Close stops accepting tasks. Calling it more than once is a no-op.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
	q.logger.Info("task queue closed", slog.Int("pending", len(q.ch)))
}

// Tasks returns the channel workers receive from. It is closed by Close.
func (q *TaskQueue) Tasks() <-chan Task {
	return q.ch
}
