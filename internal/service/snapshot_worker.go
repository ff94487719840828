package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

// SnapshotJobType identifies publish snapshot jobs on the queue.
const SnapshotJobType = "timetable.snapshot"

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type snapshotGenerator interface {
	GenerateSnapshot(ctx context.Context, key models.GroupKey, version int) (string, error)
}

// SnapshotPayload is carried by a snapshot job.
type SnapshotPayload struct {
	Key     models.GroupKey
	Version int
}

// SnapshotWorker renders a PDF snapshot of every published version in the background.
type SnapshotWorker struct {
	queue     jobEnqueuer
	generator snapshotGenerator
	logger    *zap.Logger
}

// NewSnapshotWorker constructs a worker. The queue may be attached later with
// AttachQueue since the queue itself needs the worker's Handle.
func NewSnapshotWorker(generator snapshotGenerator, logger *zap.Logger) *SnapshotWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotWorker{generator: generator, logger: logger}
}

// AttachQueue sets the queue used by ScheduleSnapshot.
func (w *SnapshotWorker) AttachQueue(queue jobEnqueuer) {
	w.queue = queue
}

// ScheduleSnapshot enqueues the snapshot of a freshly published version.
func (w *SnapshotWorker) ScheduleSnapshot(key models.GroupKey, version int) error {
	if w.queue == nil {
		return fmt.Errorf("snapshot queue not attached")
	}
	return w.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    SnapshotJobType,
		Key:     fmt.Sprintf("%s/v%d", key.String(), version),
		Payload: SnapshotPayload{Key: key, Version: version},
	})
}

// Handle processes a queue job.
func (w *SnapshotWorker) Handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(SnapshotPayload)
	if !ok {
		w.logger.Sugar().Errorw("dropping malformed snapshot job", "job_id", job.ID, "type", job.Type)
		return nil
	}
	key, err := w.generator.GenerateSnapshot(ctx, payload.Key, payload.Version)
	if err != nil {
		w.logger.Sugar().Warnw("snapshot generation failed", "job_id", job.ID, "timetable", payload.Key.String(), "version", payload.Version, "attempt", job.Attempt, "error", err)
		return err
	}
	w.logger.Sugar().Debugw("snapshot generated", "job_id", job.ID, "key", key)
	return nil
}
