package domain

import "fmt"

// Task event names published to the owner's private topic.
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// TaskTopic returns the per-owner topic task events are published on.
// Clients subscribe only to their own topic.
func TaskTopic(ownerID string) string {
	return fmt.Sprintf("tasks.%s", ownerID)
}

// TaskEvent is the payload broadcast after a lifecycle operation.
// Task is present for created/updated; deleted carries only the identifiers
// since the record no longer exists.
type TaskEvent struct {
	Name    string `json:"name"`
	TaskID  string `json:"task_id"`
	OwnerID string `json:"owner_id"`
	Task    *Task  `json:"task,omitempty"`
}

// NewTaskEvent builds an event for a surviving task record.
func NewTaskEvent(name string, task *Task) TaskEvent {
	evt := TaskEvent{Name: name}
	if task != nil {
		evt.TaskID = task.ID
		evt.OwnerID = task.OwnerID
		evt.Task = task
	}
	return evt
}

// NewTaskDeletedEvent builds the deletion event from bare identifiers.
func NewTaskDeletedEvent(taskID, ownerID string) TaskEvent {
	return TaskEvent{Name: EventTaskDeleted, TaskID: taskID, OwnerID: ownerID}
}
