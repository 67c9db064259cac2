// Package reminder computes which tasks fall due within a lookahead window.
// The evaluation is a pure function of (now, window, tasks); the surrounding
// client polls it and owns any already-alerted bookkeeping.
package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidyhome/backend/domain"
	"github.com/tidyhome/backend/repository"
)

// DefaultWindow is the lookahead used when the caller does not supply one.
const DefaultWindow = 15 * time.Minute

// UseCase exposes the evaluator over the task repository for polling clients.
type UseCase struct {
	tasks repository.TaskRepository
}

func New(tasks repository.TaskRepository) *UseCase {
	return &UseCase{tasks: tasks}
}

// Due returns the owner's tasks whose next occurrence falls inside
// [now, now+window] and which are not completed.
func (uc *UseCase) Due(ctx context.Context, ownerID string, now time.Time, window time.Duration) ([]domain.Task, error) {
	tasks, err := uc.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return Filter(tasks, now, window), nil
}

// Filter applies Upcoming over a task set.
func Filter(tasks []domain.Task, now time.Time, window time.Duration) []domain.Task {
	var due []domain.Task
	for _, task := range tasks {
		if Upcoming(task, now, window) {
			due = append(due, task)
		}
	}
	return due
}

// Upcoming reports whether a single task is due within the window. A completed
// task is never upcoming. Recurring occurrences that have already passed today
// do not roll forward; they reappear after the next recurrence reset.
func Upcoming(task domain.Task, now time.Time, window time.Duration) bool {
	if task.IsCompleted {
		return false
	}
	if window <= 0 {
		window = DefaultWindow
	}

	occurrence, ok := nextOccurrence(task, now)
	if !ok {
		return false
	}
	return !occurrence.Before(now) && !occurrence.After(now.Add(window))
}

// nextOccurrence resolves the task's schedule to a concrete timestamp
// relative to now, or reports that the task has no occurrence today.
func nextOccurrence(task domain.Task, now time.Time) (time.Time, bool) {
	switch task.Type {
	case domain.TypeCustom:
		if task.ScheduledAt == nil {
			return time.Time{}, false
		}
		return *task.ScheduledAt, true

	case domain.TypeDaily:
		return todayAt(now, task.ScheduledTime)

	case domain.TypeWeekly:
		if task.DayOfWeek == nil || isoWeekday(now) != *task.DayOfWeek {
			return time.Time{}, false
		}
		return todayAt(now, task.ScheduledTime)

	case domain.TypeMonthly:
		if task.DayOfMonth == nil {
			return time.Time{}, false
		}
		// Days 29-31 clamp to the month's last day so the task still fires
		// in shorter months.
		day := *task.DayOfMonth
		if last := lastDayOfMonth(now); day > last {
			day = last
		}
		if now.Day() != day {
			return time.Time{}, false
		}
		return todayAt(now, task.ScheduledTime)
	}
	return time.Time{}, false
}

// todayAt combines now's date with an "HH:MM" wall-clock time.
func todayAt(now time.Time, hhmm string) (time.Time, bool) {
	hour, minute, err := parseClock(hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), true
}

func parseClock(hhmm string) (int, int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return hour, minute, nil
}

// isoWeekday maps Go's Sunday-based weekday to ISO numbering (1=Monday .. 7=Sunday).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func lastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
