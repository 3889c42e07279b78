// Package models contains the shared data model for taskweave.
package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task completed successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a terminal state.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task represents one unit of work inside a task list.
type Task struct {
	// ID is the unique identifier for this task. It is stable for the
	// lifetime of the owning TaskList.
	ID string `json:"id"`
	// Title is the short human-readable description of the task.
	Title string `json:"title"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// StartedAt is when the task entered in_progress, if it has.
	StartedAt *time.Time `json:"started_at,omitempty"`
	// CompletedAt is when the task reached a terminal state, if it has.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// Error contains the failure message when Status is failed.
	Error string `json:"error,omitempty"`
}

// TaskListStatus represents the current state of a task list.
type TaskListStatus string

const (
	// TaskListActive indicates the list is being executed.
	TaskListActive TaskListStatus = "active"
	// TaskListCompleted indicates the cursor passed the last task.
	TaskListCompleted TaskListStatus = "completed"
	// TaskListInterrupted indicates the list was abandoned before finishing.
	TaskListInterrupted TaskListStatus = "interrupted"
)

// Valid returns true if the status is a known value.
func (s TaskListStatus) Valid() bool {
	switch s {
	case TaskListActive, TaskListCompleted, TaskListInterrupted:
		return true
	default:
		return false
	}
}

// TaskList is the ordered set of tasks produced by decomposing one user
// request. Insertion order is execution order.
type TaskList struct {
	// ID is the unique identifier for this list.
	ID string `json:"id"`
	// Prompt is the original user request that produced this list.
	Prompt string `json:"prompt"`
	// Tasks holds the tasks in execution order.
	Tasks []*Task `json:"tasks"`
	// CurrentTaskIndex is the cursor into Tasks. It only ever advances.
	CurrentTaskIndex int `json:"current_task_index"`
	// Status is the current state of the list.
	Status TaskListStatus `json:"status"`
	// CreatedAt is when the list was created.
	CreatedAt time.Time `json:"created_at"`
}

// CompletedCount returns the number of tasks in a completed state.
func (l *TaskList) CompletedCount() int {
	count := 0
	for _, t := range l.Tasks {
		if t.Status == TaskStatusCompleted {
			count++
		}
	}
	return count
}
