// Package tasklist owns the task list state machine for one session.
package tasklist

import (
	"time"

	"github.com/taskweave/taskweave/pkg/models"
)

// EventType represents the type of task list lifecycle event.
type EventType string

const (
	// EventCreated indicates a new task list was created.
	EventCreated EventType = "created"
	// EventTaskStarted indicates the current task entered in_progress.
	EventTaskStarted EventType = "started"
	// EventTaskCompleted indicates the current task completed.
	EventTaskCompleted EventType = "completed"
	// EventTaskFailed indicates the current task failed.
	EventTaskFailed EventType = "failed"
	// EventListCompleted indicates the cursor passed the last task.
	EventListCompleted EventType = "list_completed"
	// EventListUpdated indicates tasks were inserted or appended.
	EventListUpdated EventType = "list_updated"
	// EventCleared indicates the active list was archived as interrupted.
	EventCleared EventType = "cleared"
)

// Event is a task list lifecycle notification. Events are dispatched
// synchronously, strictly after the mutation that produced them, so a
// listener reading service state inside the handler observes a consistent
// snapshot.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// ListID is the ID of the affected list.
	ListID string
	// Task is the affected task, if any.
	Task *models.Task
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Listener receives lifecycle events. Listeners must not block.
type Listener func(Event)
