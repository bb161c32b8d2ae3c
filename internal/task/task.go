package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle stage of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeSetGeneration fills a newly created set with AI generated cards.
const TaskTypeSetGeneration = "set_generation"

// Task is a unit of background work run by the WorkerPool.
type Task interface {
	ID() uuid.UUID
	Type() string
	// Payload is the JSON form of the task input, used in logs.
	Payload() []byte
	Status() TaskStatus
	// Execute runs the task. ctx is canceled when the pool stops.
	Execute(ctx context.Context) error
}

// TaskQueueReader is the consumer side of a queue.
type TaskQueueReader interface {
	Tasks() <-chan Task
}

// TaskQueueWriter is the producer side of a queue.
type TaskQueueWriter interface {
	// Enqueue never blocks. It fails with ErrQueueFull or ErrQueueClosed.
	Enqueue(task Task) error
	Close()
}
