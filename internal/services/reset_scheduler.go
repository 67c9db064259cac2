package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tidyhome/backend/domain"
)

// RecurrenceResetter is the slice of the task use case the scheduler needs.
type RecurrenceResetter interface {
	ResetRecurring(ctx context.Context, taskType domain.TaskType) (int64, error)
}

// ResetSchedule carries the cron specs for the three cadences.
type ResetSchedule struct {
	Daily   string
	Weekly  string
	Monthly string
}

// ResetScheduler triggers the recurrence resets: daily tasks once per day,
// weekly once per week, monthly once per month. Each run is a single bulk
// update and is safe to re-run; a missed or failed run is simply covered by
// the next cadence.
type ResetScheduler struct {
	tasks   RecurrenceResetter
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
}

func NewResetScheduler(tasks RecurrenceResetter, schedule ResetSchedule, logger *zap.Logger) (*ResetScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule.Daily == "" {
		schedule.Daily = "@daily"
	}
	if schedule.Weekly == "" {
		schedule.Weekly = "@weekly"
	}
	if schedule.Monthly == "" {
		schedule.Monthly = "@monthly"
	}

	rs := &ResetScheduler{
		tasks:   tasks,
		cron:    cron.New(),
		logger:  logger,
		timeout: time.Minute,
	}

	entries := []struct {
		spec     string
		taskType domain.TaskType
	}{
		{schedule.Daily, domain.TypeDaily},
		{schedule.Weekly, domain.TypeWeekly},
		{schedule.Monthly, domain.TypeMonthly},
	}
	for _, entry := range entries {
		taskType := entry.taskType
		if _, err := rs.cron.AddFunc(entry.spec, func() {
			rs.run(taskType)
		}); err != nil {
			return nil, err
		}
	}

	return rs, nil
}

// Start launches the cadences.
func (rs *ResetScheduler) Start() {
	if rs == nil || rs.cron == nil {
		return
	}
	rs.cron.Start()
	rs.logger.Info("recurrence reset scheduler started")
}

// Stop waits for any in-flight reset to finish.
func (rs *ResetScheduler) Stop(ctx context.Context) {
	if rs == nil || rs.cron == nil {
		return
	}
	stopCtx := rs.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rs.logger.Info("recurrence reset scheduler stopped")
}

func (rs *ResetScheduler) run(taskType domain.TaskType) {
	ctx, cancel := context.WithTimeout(context.Background(), rs.timeout)
	defer cancel()

	if _, err := rs.tasks.ResetRecurring(ctx, taskType); err != nil {
		rs.logger.Error("recurrence reset failed",
			zap.String("type", string(taskType)),
			zap.Error(err))
	}
}
