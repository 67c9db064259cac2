package task

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tidyhome/backend/domain"
	"github.com/tidyhome/backend/repository"
	"github.com/tidyhome/backend/usecase"
)

// UseCase implements the task lifecycle: list, create, update, complete,
// delete, default-catalog seeding and the recurrence reset entry point.
type UseCase struct {
	tasks       repository.TaskRepository
	events      usecase.EventSink
	attachments usecase.AttachmentStore
	logger      *zap.Logger
	clock       func() time.Time
}

func New(tasks repository.TaskRepository, events usecase.EventSink, attachments usecase.AttachmentStore, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:       tasks,
		events:      events,
		attachments: attachments,
		logger:      logger,
		clock:       time.Now,
	}
}

// List returns the owner's tasks ordered by type priority (daily, weekly,
// monthly, custom, unknown last) and incomplete-before-complete within each
// type.
func (uc *UseCase) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	tasks, err := uc.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := tasks[i].Type.SortRank(), tasks[j].Type.SortRank()
		if ri != rj {
			return ri < rj
		}
		return !tasks[i].IsCompleted && tasks[j].IsCompleted
	})
	return tasks, nil
}

// Get loads a single task and enforces ownership.
func (uc *UseCase) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, domain.ErrNotTaskOwner
	}
	return task, nil
}

// Create validates the input against the per-type schedule rules, persists the
// task and broadcasts task.created on the owner's topic.
func (uc *UseCase) Create(ctx context.Context, ownerID string, in CreateInput) (*domain.Task, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	task := &domain.Task{
		OwnerID:       ownerID,
		Title:         in.Title,
		Type:          in.Type,
		ScheduledAt:   in.ScheduledAt,
		ScheduledTime: in.ScheduledTime,
		DayOfWeek:     in.DayOfWeek,
		DayOfMonth:    in.DayOfMonth,
		Frequency:     in.Frequency,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.NewTaskEvent(domain.EventTaskCreated, created))
	return created, nil
}

// Update applies a partial edit. Only supplied fields are merged; the merged
// type decides which schedule fields are required. A supplied is_completed
// flag derives completed_at (set to now / cleared) regardless of any value the
// caller sent, and a supplied image is stored before the record is persisted.
func (uc *UseCase) Update(ctx context.Context, ownerID, taskID string, in UpdateInput) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, domain.ErrNotTaskOwner
	}

	if err := validateUpdate(in); err != nil {
		return nil, err
	}

	merge(task, in)
	if err := validateSchedule(task); err != nil {
		return nil, err
	}

	if in.IsCompleted != nil {
		task.SetCompleted(*in.IsCompleted, uc.clock())
	}

	if in.Image != nil {
		path, err := uc.attachments.Save(ctx, ownerID, in.Image.Name, in.Image.Data)
		if err != nil {
			return nil, err
		}
		task.ImagePath = path
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.NewTaskEvent(domain.EventTaskUpdated, task))
	return task, nil
}

// Delete permanently removes the task after the ownership check. The broadcast
// carries only the identifiers since the record is gone.
func (uc *UseCase) Delete(ctx context.Context, ownerID, taskID string) error {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.OwnerID != ownerID {
		return domain.ErrNotTaskOwner
	}

	if err := uc.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	uc.publish(ctx, domain.NewTaskDeletedEvent(taskID, ownerID))
	return nil
}

// SeedDefaults creates the starter chore catalog for a new account. The seed
// rows carry no schedule fields, so they go straight to the repository instead
// of through Create. Not idempotent: the caller invokes it exactly once per
// account.
func (uc *UseCase) SeedDefaults(ctx context.Context, ownerID string) ([]domain.Task, error) {
	catalog := DefaultCatalog()
	created := make([]domain.Task, 0, len(catalog))

	for _, seed := range catalog {
		task := &domain.Task{
			OwnerID: ownerID,
			Title:   seed.Title,
			Type:    seed.Type,
		}
		if _, err := uc.tasks.Create(ctx, task); err != nil {
			return created, err
		}
		created = append(created, *task)
	}

	uc.logger.Info("default tasks seeded",
		zap.String("owner_id", ownerID),
		zap.Int("count", len(created)))
	return created, nil
}

// ResetRecurring is the entry point the scheduler calls once per cadence. It
// clears completion for every task of the given type in a single bulk update.
// Matching is by type only; schedule fields inform reminders, not the reset.
// Re-running it is a no-op for rows that are already pending.
func (uc *UseCase) ResetRecurring(ctx context.Context, taskType domain.TaskType) (int64, error) {
	if !taskType.Recurring() {
		return 0, domain.Validationf("type %q is not auto-reset", taskType)
	}

	count, err := uc.tasks.ResetCompletion(ctx, taskType)
	if err != nil {
		return 0, err
	}

	uc.logger.Info("recurring tasks reset",
		zap.String("type", string(taskType)),
		zap.Int64("count", count))
	return count, nil
}

func (uc *UseCase) publish(ctx context.Context, evt domain.TaskEvent) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, domain.TaskTopic(evt.OwnerID), evt); err != nil {
		uc.logger.Warn("task event dropped",
			zap.String("event", evt.Name),
			zap.String("task_id", evt.TaskID),
			zap.Error(err))
	}
}

func merge(task *domain.Task, in UpdateInput) {
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Type != nil {
		task.Type = *in.Type
	}
	if in.ScheduledAt != nil {
		task.ScheduledAt = in.ScheduledAt
	}
	if in.ScheduledTime != nil {
		task.ScheduledTime = *in.ScheduledTime
	}
	if in.DayOfWeek != nil {
		task.DayOfWeek = in.DayOfWeek
	}
	if in.DayOfMonth != nil {
		task.DayOfMonth = in.DayOfMonth
	}
	if in.Frequency != nil {
		task.Frequency = *in.Frequency
	}
}
