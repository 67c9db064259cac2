package repository

import (
	"context"

	"github.com/tidyhome/backend/domain"
)

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListByOwner returns the owner's full task set in creation order.
	// No pagination: a household task list stays small.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// ResetCompletion clears is_completed/completed_at for every task of the
	// given type in one bulk statement and returns the number of rows touched.
	ResetCompletion(ctx context.Context, taskType domain.TaskType) (int64, error)
}
