package domain

import "time"

// TaskType governs recurrence and which schedule fields a task requires.
type TaskType string

const (
	TypeDaily   TaskType = "daily"
	TypeWeekly  TaskType = "weekly"
	TypeMonthly TaskType = "monthly"
	TypeCustom  TaskType = "custom"
)

// Valid reports whether the type is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeCustom:
		return true
	}
	return false
}

// Recurring reports whether tasks of this type are reset on a calendar cadence.
func (t TaskType) Recurring() bool {
	switch t {
	case TypeDaily, TypeWeekly, TypeMonthly:
		return true
	}
	return false
}

// SortRank orders types for listing: daily < weekly < monthly < custom < unknown.
func (t TaskType) SortRank() int {
	switch t {
	case TypeDaily:
		return 1
	case TypeWeekly:
		return 2
	case TypeMonthly:
		return 3
	case TypeCustom:
		return 4
	}
	return 5
}

// Task represents a household chore owned by exactly one user.
//
// ScheduledAt is set for custom (one-off) tasks. ScheduledTime ("HH:MM"),
// DayOfWeek (1=Monday .. 7=Sunday) and DayOfMonth (1-31) drive reminders for
// the recurring types. Frequency is reserved for future custom-recurrence
// logic and is not interpreted anywhere yet.
type Task struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Type          TaskType   `json:"type"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	ScheduledTime string     `json:"scheduled_time,omitempty"`
	DayOfWeek     *int       `json:"day_of_week,omitempty"`
	DayOfMonth    *int       `json:"day_of_month,omitempty"`
	Frequency     string     `json:"frequency,omitempty"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ImagePath     string     `json:"image_path,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SetCompleted toggles completion and keeps CompletedAt consistent:
// CompletedAt is non-nil iff IsCompleted.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	if t == nil {
		return
	}
	t.IsCompleted = completed
	if completed {
		t.CompletedAt = &now
		return
	}
	t.CompletedAt = nil
}
