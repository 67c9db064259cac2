package task

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidyhome/backend/domain"
	"github.com/tidyhome/backend/repository"
)

// memTaskRepo is an in-memory TaskRepository preserving creation order,
// mirroring what the Postgres implementation returns.
type memTaskRepo struct {
	seq   int
	tasks []*domain.Task
}

var _ repository.TaskRepository = (*memTaskRepo)(nil)

func (m *memTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	for _, task := range m.tasks {
		if task.ID == id {
			found := *task
			return &found, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (m *memTaskRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range m.tasks {
		if task.OwnerID == ownerID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *memTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	m.seq++
	if task.ID == "" {
		task.ID = fmt.Sprintf("task-%d", m.seq)
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	stored := *task
	m.tasks = append(m.tasks, &stored)
	return task, nil
}

func (m *memTaskRepo) Update(_ context.Context, task *domain.Task) error {
	for i, existing := range m.tasks {
		if existing.ID == task.ID {
			task.UpdatedAt = time.Now()
			stored := *task
			m.tasks[i] = &stored
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (m *memTaskRepo) Delete(_ context.Context, id string) error {
	for i, existing := range m.tasks {
		if existing.ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (m *memTaskRepo) ResetCompletion(_ context.Context, taskType domain.TaskType) (int64, error) {
	var count int64
	for _, task := range m.tasks {
		if task.Type == taskType {
			task.IsCompleted = false
			task.CompletedAt = nil
			count++
		}
	}
	return count, nil
}

type mockEventSink struct {
	published []publishedEvent
	err       error
}

type publishedEvent struct {
	topic   string
	payload interface{}
}

func (m *mockEventSink) Publish(_ context.Context, topic string, payload interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, publishedEvent{topic: topic, payload: payload})
	return nil
}

type mockAttachmentStore struct {
	saveFunc func(ctx context.Context, ownerID, filename string, data []byte) (string, error)
}

func (m *mockAttachmentStore) Save(ctx context.Context, ownerID, filename string, data []byte) (string, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, ownerID, filename, data)
	}
	return "stored/" + filename, nil
}

func newTestUseCase() (*UseCase, *memTaskRepo, *mockEventSink) {
	repo := &memTaskRepo{}
	sink := &mockEventSink{}
	uc := New(repo, sink, &mockAttachmentStore{}, nil)
	return uc, repo, sink
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func TestCreateValidation(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()
	at := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		input   CreateInput
		wantErr bool
	}{
		{
			name:    "missing title",
			input:   CreateInput{Type: domain.TypeCustom, ScheduledAt: &at},
			wantErr: true,
		},
		{
			name:    "title too long",
			input:   CreateInput{Title: strings.Repeat("x", 256), Type: domain.TypeCustom, ScheduledAt: &at},
			wantErr: true,
		},
		{
			name:    "invalid type",
			input:   CreateInput{Title: "Water plants", Type: domain.TaskType("yearly")},
			wantErr: true,
		},
		{
			name:    "custom without scheduled_at",
			input:   CreateInput{Title: "Wash the car", Type: domain.TypeCustom},
			wantErr: true,
		},
		{
			name:    "custom with scheduled_at",
			input:   CreateInput{Title: "Wash the car", Type: domain.TypeCustom, ScheduledAt: &at},
			wantErr: false,
		},
		{
			name:    "daily without scheduled_time",
			input:   CreateInput{Title: "Make bed", Type: domain.TypeDaily},
			wantErr: true,
		},
		{
			name:    "daily with scheduled_time",
			input:   CreateInput{Title: "Make bed", Type: domain.TypeDaily, ScheduledTime: "08:30"},
			wantErr: false,
		},
		{
			name:    "weekly without day_of_week",
			input:   CreateInput{Title: "Dust surfaces", Type: domain.TypeWeekly, ScheduledTime: "10:00"},
			wantErr: true,
		},
		{
			name:    "weekly day_of_week zero",
			input:   CreateInput{Title: "Dust surfaces", Type: domain.TypeWeekly, ScheduledTime: "10:00", DayOfWeek: intPtr(0)},
			wantErr: true,
		},
		{
			name:    "weekly day_of_week eight",
			input:   CreateInput{Title: "Dust surfaces", Type: domain.TypeWeekly, ScheduledTime: "10:00", DayOfWeek: intPtr(8)},
			wantErr: true,
		},
		{
			name:    "weekly valid",
			input:   CreateInput{Title: "Dust surfaces", Type: domain.TypeWeekly, ScheduledTime: "10:00", DayOfWeek: intPtr(6)},
			wantErr: false,
		},
		{
			name:    "monthly without day_of_month",
			input:   CreateInput{Title: "Wash windows", Type: domain.TypeMonthly, ScheduledTime: "12:00"},
			wantErr: true,
		},
		{
			name:    "monthly valid",
			input:   CreateInput{Title: "Wash windows", Type: domain.TypeMonthly, ScheduledTime: "12:00", DayOfMonth: intPtr(15)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := uc.Create(ctx, "owner-1", tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "expected INVALID, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "owner-1", created.OwnerID)
			assert.False(t, created.IsCompleted)
			assert.Nil(t, created.CompletedAt)
		})
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	uc, _, sink := newTestUseCase()
	at := time.Now().Add(time.Hour)

	created, err := uc.Create(context.Background(), "owner-1", CreateInput{
		Title: "Wash the car", Type: domain.TypeCustom, ScheduledAt: &at,
	})
	require.NoError(t, err)

	require.Len(t, sink.published, 1)
	assert.Equal(t, domain.TaskTopic("owner-1"), sink.published[0].topic)

	evt, ok := sink.published[0].payload.(domain.TaskEvent)
	require.True(t, ok)
	assert.Equal(t, domain.EventTaskCreated, evt.Name)
	assert.Equal(t, created.ID, evt.TaskID)
	require.NotNil(t, evt.Task)
}

func TestCreateSucceedsWhenPublishFails(t *testing.T) {
	repo := &memTaskRepo{}
	sink := &mockEventSink{err: fmt.Errorf("broker down")}
	uc := New(repo, sink, &mockAttachmentStore{}, nil)

	at := time.Now().Add(time.Hour)
	_, err := uc.Create(context.Background(), "owner-1", CreateInput{
		Title: "Wash the car", Type: domain.TypeCustom, ScheduledAt: &at,
	})
	require.NoError(t, err)
}

func TestUpdateOwnership(t *testing.T) {
	uc, repo, _ := newTestUseCase()
	ctx := context.Background()

	at := time.Now().Add(time.Hour)
	created, err := uc.Create(ctx, "alice", CreateInput{Title: "Wash the car", Type: domain.TypeCustom, ScheduledAt: &at})
	require.NoError(t, err)

	_, err = uc.Update(ctx, "bob", created.ID, UpdateInput{IsCompleted: boolPtr(true)})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	// the record is untouched
	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)

	_, err = uc.Update(ctx, "bob", "no-such-task", UpdateInput{IsCompleted: boolPtr(true)})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	err = uc.Delete(ctx, "bob", created.ID)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestUpdateDerivesCompletedAt(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	fixed := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	uc.clock = func() time.Time { return fixed }

	at := time.Now().Add(time.Hour)
	created, err := uc.Create(ctx, "alice", CreateInput{Title: "Wash the car", Type: domain.TypeCustom, ScheduledAt: &at})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, "alice", created.ID, UpdateInput{IsCompleted: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, fixed, *updated.CompletedAt)

	updated, err = uc.Update(ctx, "alice", created.ID, UpdateInput{IsCompleted: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsCompleted)
	assert.Nil(t, updated.CompletedAt)
}

func TestUpdateMergedTypeValidation(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	created, err := uc.Create(ctx, "alice", CreateInput{Title: "Make bed", Type: domain.TypeDaily, ScheduledTime: "08:00"})
	require.NoError(t, err)

	// switching to weekly without a weekday violates the merged type's rules
	weekly := domain.TypeWeekly
	_, err = uc.Update(ctx, "alice", created.ID, UpdateInput{Type: &weekly})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	updated, err := uc.Update(ctx, "alice", created.ID, UpdateInput{Type: &weekly, DayOfWeek: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeWeekly, updated.Type)
}

func TestUpdateStoresAttachment(t *testing.T) {
	repo := &memTaskRepo{}
	sink := &mockEventSink{}
	store := &mockAttachmentStore{
		saveFunc: func(_ context.Context, ownerID, filename string, data []byte) (string, error) {
			assert.Equal(t, "alice", ownerID)
			assert.Equal(t, "fridge.jpg", filename)
			assert.NotEmpty(t, data)
			return "alice/abc.jpg", nil
		},
	}
	uc := New(repo, sink, store, nil)
	ctx := context.Background()

	created, err := uc.Create(ctx, "alice", CreateInput{Title: "Make bed", Type: domain.TypeDaily, ScheduledTime: "08:00"})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, "alice", created.ID, UpdateInput{
		Image: &Attachment{Name: "fridge.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice/abc.jpg", updated.ImagePath)
}

func TestDeleteRemovesFromList(t *testing.T) {
	uc, _, sink := newTestUseCase()
	ctx := context.Background()

	at := time.Now().Add(time.Hour)
	created, err := uc.Create(ctx, "alice", CreateInput{Title: "Wash the car", Type: domain.TypeCustom, ScheduledAt: &at})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, "alice", created.ID))

	tasks, err := uc.List(ctx, "alice")
	require.NoError(t, err)
	for _, task := range tasks {
		assert.NotEqual(t, created.ID, task.ID)
	}

	last := sink.published[len(sink.published)-1]
	evt, ok := last.payload.(domain.TaskEvent)
	require.True(t, ok)
	assert.Equal(t, domain.EventTaskDeleted, evt.Name)
	assert.Equal(t, created.ID, evt.TaskID)
	assert.Equal(t, "alice", evt.OwnerID)
	assert.Nil(t, evt.Task, "deleted event carries identifiers only")
}

func TestListOrdering(t *testing.T) {
	uc, repo, _ := newTestUseCase()
	ctx := context.Background()

	seed := func(title string, taskType domain.TaskType, completed bool) {
		task := &domain.Task{OwnerID: "alice", Title: title, Type: taskType}
		if completed {
			now := time.Now()
			task.SetCompleted(true, now)
		}
		_, err := repo.Create(ctx, task)
		require.NoError(t, err)
	}

	seed("custom done", domain.TypeCustom, true)
	seed("monthly open", domain.TypeMonthly, false)
	seed("daily done", domain.TypeDaily, true)
	seed("weekly open", domain.TypeWeekly, false)
	seed("daily open", domain.TypeDaily, false)
	seed("custom open", domain.TypeCustom, false)

	tasks, err := uc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 6)

	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{
		"daily open", "daily done",
		"weekly open",
		"monthly open",
		"custom open", "custom done",
	}, titles)
}

func TestSeedDefaults(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	created, err := uc.SeedDefaults(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, created, 14)

	counts := map[domain.TaskType]int{}
	for _, task := range created {
		counts[task.Type]++
		assert.Equal(t, "alice", task.OwnerID)
		assert.False(t, task.IsCompleted)
		assert.Nil(t, task.CompletedAt)
		assert.Empty(t, task.ScheduledTime)
		assert.Nil(t, task.DayOfWeek)
		assert.Nil(t, task.DayOfMonth)
	}
	assert.Equal(t, 5, counts[domain.TypeDaily])
	assert.Equal(t, 5, counts[domain.TypeWeekly])
	assert.Equal(t, 4, counts[domain.TypeMonthly])
}

func TestResetRecurring(t *testing.T) {
	uc, repo, _ := newTestUseCase()
	ctx := context.Background()
	now := time.Now()

	mk := func(taskType domain.TaskType) string {
		task := &domain.Task{OwnerID: "alice", Title: string(taskType), Type: taskType}
		task.SetCompleted(true, now)
		_, err := repo.Create(ctx, task)
		require.NoError(t, err)
		return task.ID
	}

	dailyID := mk(domain.TypeDaily)
	weeklyID := mk(domain.TypeWeekly)
	customID := mk(domain.TypeCustom)

	count, err := uc.ResetRecurring(ctx, domain.TypeDaily)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	daily, err := repo.GetByID(ctx, dailyID)
	require.NoError(t, err)
	assert.False(t, daily.IsCompleted)
	assert.Nil(t, daily.CompletedAt)

	weekly, err := repo.GetByID(ctx, weeklyID)
	require.NoError(t, err)
	assert.True(t, weekly.IsCompleted, "weekly untouched by the daily reset")

	// custom tasks are never auto-reset
	_, err = uc.ResetRecurring(ctx, domain.TypeCustom)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	custom, err := repo.GetByID(ctx, customID)
	require.NoError(t, err)
	assert.True(t, custom.IsCompleted)
	require.NotNil(t, custom.CompletedAt)
}
