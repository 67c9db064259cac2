package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidyhome/backend/domain"
	"github.com/tidyhome/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, owner_id, title, type, scheduled_at, scheduled_time,
	day_of_week, day_of_month, frequency, is_completed, completed_at,
	image_path, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE owner_id = $1
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, owner_id, title, type, scheduled_at, scheduled_time,
		day_of_week, day_of_month, frequency, is_completed, completed_at, image_path)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Type,
		task.ScheduledAt,
		nullString(task.ScheduledTime),
		task.DayOfWeek,
		task.DayOfMonth,
		nullString(task.Frequency),
		task.IsCompleted,
		task.CompletedAt,
		nullString(task.ImagePath),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		type = $3,
		scheduled_at = $4,
		scheduled_time = $5,
		day_of_week = $6,
		day_of_month = $7,
		frequency = $8,
		is_completed = $9,
		completed_at = $10,
		image_path = $11,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Type,
		task.ScheduledAt,
		nullString(task.ScheduledTime),
		task.DayOfWeek,
		task.DayOfMonth,
		nullString(task.Frequency),
		task.IsCompleted,
		task.CompletedAt,
		nullString(task.ImagePath),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ResetCompletion(ctx context.Context, taskType domain.TaskType) (int64, error) {
	const query = `
	UPDATE tasks
	SET is_completed = FALSE, completed_at = NULL, updated_at = NOW()
	WHERE type = $1
	`
	tag, err := r.pool.Exec(ctx, query, taskType)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		scheduledTime *string
		frequency     *string
		imagePath     *string
	)

	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Type,
		&task.ScheduledAt,
		&scheduledTime,
		&task.DayOfWeek,
		&task.DayOfMonth,
		&frequency,
		&task.IsCompleted,
		&task.CompletedAt,
		&imagePath,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if scheduledTime != nil {
		task.ScheduledTime = *scheduledTime
	}
	if frequency != nil {
		task.Frequency = *frequency
	}
	if imagePath != nil {
		task.ImagePath = *imagePath
	}

	return &task, nil
}
