package task

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tidyhome/backend/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateInput carries the caller-supplied fields for a new task.
// ScheduledTime uses the wall-clock "HH:MM" layout; DayOfWeek is ISO
// (1=Monday .. 7=Sunday).
type CreateInput struct {
	Title         string          `json:"title" validate:"required,max=255"`
	Type          domain.TaskType `json:"type" validate:"required,oneof=daily weekly monthly custom"`
	ScheduledAt   *time.Time      `json:"scheduled_at"`
	ScheduledTime string          `json:"scheduled_time" validate:"omitempty,datetime=15:04"`
	DayOfWeek     *int            `json:"day_of_week" validate:"omitempty,min=1,max=7"`
	DayOfMonth    *int            `json:"day_of_month" validate:"omitempty,min=1,max=31"`
	Frequency     string          `json:"frequency"`
}

// Attachment is an uploaded image blob stored alongside a task update.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// UpdateInput carries a partial edit; nil fields are left untouched.
// CompletedAt is never accepted from callers: it is derived from IsCompleted.
type UpdateInput struct {
	Title         *string          `json:"title" validate:"omitempty,max=255"`
	Type          *domain.TaskType `json:"type" validate:"omitempty,oneof=daily weekly monthly custom"`
	ScheduledAt   *time.Time       `json:"scheduled_at"`
	ScheduledTime *string          `json:"scheduled_time" validate:"omitempty,datetime=15:04"`
	DayOfWeek     *int             `json:"day_of_week" validate:"omitempty,min=1,max=7"`
	DayOfMonth    *int             `json:"day_of_month" validate:"omitempty,min=1,max=31"`
	Frequency     *string          `json:"frequency"`
	IsCompleted   *bool            `json:"is_completed"`
	Image         *Attachment      `json:"-"`
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Validationf("title is required")
	}
	if err := validate.Struct(in); err != nil {
		return asDomainError(err)
	}
	return validateSchedule(&domain.Task{
		Type:          in.Type,
		ScheduledAt:   in.ScheduledAt,
		ScheduledTime: in.ScheduledTime,
		DayOfWeek:     in.DayOfWeek,
		DayOfMonth:    in.DayOfMonth,
	})
}

func validateUpdate(in UpdateInput) error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return domain.Validationf("title cannot be empty")
	}
	if err := validate.Struct(in); err != nil {
		return asDomainError(err)
	}
	return nil
}

// validateSchedule enforces the per-type conditional requirements. It runs
// against the full (merged) record so an update that switches the type is
// checked against the rules of the type it ends up with.
func validateSchedule(task *domain.Task) error {
	switch task.Type {
	case domain.TypeCustom:
		if task.ScheduledAt == nil {
			return domain.Validationf("scheduled_at is required for custom tasks")
		}
	case domain.TypeDaily, domain.TypeWeekly, domain.TypeMonthly:
		if task.ScheduledTime == "" {
			return domain.Validationf("scheduled_time is required for %s tasks", task.Type)
		}
	default:
		return domain.Validationf("unknown task type %q", task.Type)
	}

	if task.Type == domain.TypeWeekly && task.DayOfWeek == nil {
		return domain.Validationf("day_of_week is required for weekly tasks")
	}
	if task.Type == domain.TypeMonthly && task.DayOfMonth == nil {
		return domain.Validationf("day_of_month is required for monthly tasks")
	}
	return nil
}

func asDomainError(err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.Validationf("%s failed %s validation", fe.Field(), fe.Tag())
	}
	return domain.WrapError(domain.ErrCodeInvalid, "invalid input", err)
}
