package task

import (
	"context"
	"fmt"

	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/service"
	"github.com/google/uuid"
)

// SetGenerationScheduler enqueues SetGenerationTasks. It implements
// service.GenerationScheduler.
type SetGenerationScheduler struct {
	queue TaskQueueWriter
	deps  SetGenerationDeps
}

var _ service.GenerationScheduler = (*SetGenerationScheduler)(nil)

// NewSetGenerationScheduler creates a scheduler that writes to queue.
func NewSetGenerationScheduler(queue TaskQueueWriter, deps SetGenerationDeps) (*SetGenerationScheduler, error) {
	if queue == nil {
		return nil, fmt.Errorf("%w: task queue", service.ErrNilDependency)
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &SetGenerationScheduler{queue: queue, deps: deps}, nil
}

// ScheduleSetGeneration implements service.GenerationScheduler. It never
// blocks; a full queue is reported as ErrQueueFull.
func (s *SetGenerationScheduler) ScheduleSetGeneration(ctx context.Context, userID, setID uuid.UUID, count int) error {
	deps := s.deps
	deps.Logger = logger.FromContextOrDefault(ctx, deps.Logger)

	t, err := NewSetGenerationTask(SetGenerationPayload{UserID: userID, SetID: setID, Count: count}, deps)
	if err != nil {
		return err
	}
	return s.queue.Enqueue(t)
}
