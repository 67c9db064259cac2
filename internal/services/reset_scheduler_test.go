package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidyhome/backend/domain"
)

type mockResetter struct {
	mu    sync.Mutex
	calls []domain.TaskType
	err   error
}

func (m *mockResetter) ResetRecurring(_ context.Context, taskType domain.TaskType) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, taskType)
	return 1, m.err
}

func (m *mockResetter) snapshot() []domain.TaskType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TaskType(nil), m.calls...)
}

func TestNewResetSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewResetScheduler(&mockResetter{}, ResetSchedule{Daily: "not a spec"}, nil)
	require.Error(t, err)
}

func TestResetSchedulerDefaults(t *testing.T) {
	rs, err := NewResetScheduler(&mockResetter{}, ResetSchedule{}, nil)
	require.NoError(t, err)
	require.NotNil(t, rs)
	assert.Len(t, rs.cron.Entries(), 3)
}

func TestResetSchedulerRunPerType(t *testing.T) {
	resetter := &mockResetter{}
	rs, err := NewResetScheduler(resetter, ResetSchedule{}, nil)
	require.NoError(t, err)

	rs.run(domain.TypeDaily)
	rs.run(domain.TypeWeekly)
	rs.run(domain.TypeMonthly)

	assert.Equal(t, []domain.TaskType{
		domain.TypeDaily, domain.TypeWeekly, domain.TypeMonthly,
	}, resetter.snapshot())
}

func TestResetSchedulerRunSwallowsErrors(t *testing.T) {
	resetter := &mockResetter{err: fmt.Errorf("db down")}
	rs, err := NewResetScheduler(resetter, ResetSchedule{}, nil)
	require.NoError(t, err)

	// a failed run logs and waits for the next cadence
	rs.run(domain.TypeDaily)
	assert.Len(t, resetter.snapshot(), 1)
}

func TestResetSchedulerStartStop(t *testing.T) {
	resetter := &mockResetter{}
	rs, err := NewResetScheduler(resetter, ResetSchedule{}, nil)
	require.NoError(t, err)

	rs.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rs.Stop(ctx)
}
