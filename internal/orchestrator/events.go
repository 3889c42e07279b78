package orchestrator

import "time"

// EventType classifies run progress events.
type EventType string

const (
	// EventInfo is a free-form progress note.
	EventInfo EventType = "info"
	// EventPlan reports the accepted action plan.
	EventPlan EventType = "plan"
	// EventStepStart fires before a plan step executes.
	EventStepStart EventType = "step_start"
	// EventStepResult fires after a plan step executes.
	EventStepResult EventType = "step_result"
	// EventVerify fires when a verification pass begins.
	EventVerify EventType = "verify"
	// EventVerifyResult reports a verification outcome.
	EventVerifyResult EventType = "verify_result"
	// EventComplete fires when the task finishes successfully.
	EventComplete EventType = "complete"
	// EventError reports a failure.
	EventError EventType = "error"
)

// Event is one progress notification from a task run.
type Event struct {
	Type      EventType
	Message   string
	Step      int
	Action    string
	Err       error
	Timestamp time.Time
}

// EventFunc receives run events. A nil EventFunc disables reporting.
type EventFunc func(Event)

func emit(onEvent EventFunc, ev Event) {
	if onEvent == nil {
		return
	}
	ev.Timestamp = time.Now()
	onEvent(ev)
}
