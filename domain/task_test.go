package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetCompleted(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	var task Task
	task.SetCompleted(true, now)
	assert.True(t, task.IsCompleted)
	if assert.NotNil(t, task.CompletedAt) {
		assert.Equal(t, now, *task.CompletedAt)
	}

	task.SetCompleted(false, now.Add(time.Hour))
	assert.False(t, task.IsCompleted)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskTypeValid(t *testing.T) {
	for _, valid := range []TaskType{TypeDaily, TypeWeekly, TypeMonthly, TypeCustom} {
		assert.True(t, valid.Valid(), valid)
	}
	assert.False(t, TaskType("yearly").Valid())
	assert.False(t, TaskType("").Valid())
}

func TestTaskTypeRecurring(t *testing.T) {
	assert.True(t, TypeDaily.Recurring())
	assert.True(t, TypeWeekly.Recurring())
	assert.True(t, TypeMonthly.Recurring())
	assert.False(t, TypeCustom.Recurring())
	assert.False(t, TaskType("yearly").Recurring())
}

func TestTaskTypeSortRank(t *testing.T) {
	assert.Less(t, TypeDaily.SortRank(), TypeWeekly.SortRank())
	assert.Less(t, TypeWeekly.SortRank(), TypeMonthly.SortRank())
	assert.Less(t, TypeMonthly.SortRank(), TypeCustom.SortRank())
	assert.Less(t, TypeCustom.SortRank(), TaskType("yearly").SortRank())
}

func TestTaskTopic(t *testing.T) {
	assert.Equal(t, "tasks.u-1", TaskTopic("u-1"))
}
