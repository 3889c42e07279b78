package models

import (
	"fmt"
	"strings"
)

// PlanStep is a single action inside an action plan.
type PlanStep struct {
	// Action is the name of the action to invoke. It must come from the
	// step action safelist.
	Action string `json:"action"`
	// Args holds the key/value arguments for the action.
	Args map[string]any `json:"args"`
	// Description optionally explains what the step is for.
	Description string `json:"description,omitempty"`
}

// ActionPlan is a short ordered list of steps proposed for one task.
type ActionPlan struct {
	// Steps are executed strictly in order.
	Steps []PlanStep `json:"steps"`
	// Rationale is a free-text explanation. It is never used for
	// control flow.
	Rationale string `json:"rationale,omitempty"`
}

// Observation records the outcome of one executed step. Observations
// accumulate across a task's execution, including repair attempts, and feed
// subsequent repair-plan requests. They are not persisted beyond the task.
type Observation struct {
	// StepIndex is the position of the step in execution order.
	StepIndex int `json:"step_index"`
	// Action is the action that was executed.
	Action string `json:"action"`
	// Result holds the action output when it succeeded.
	Result string `json:"result,omitempty"`
	// Error holds the failure message when it did not.
	Error string `json:"error,omitempty"`
}

// String renders the observation as a single log line.
func (o Observation) String() string {
	if o.Error != "" {
		return fmt.Sprintf("step %d (%s): ERROR: %s", o.StepIndex, o.Action, o.Error)
	}
	return fmt.Sprintf("step %d (%s): %s", o.StepIndex, o.Action, o.Result)
}

// ObservationLog joins observations into a prompt-ready block.
func ObservationLog(obs []Observation) string {
	lines := make([]string, len(obs))
	for i, o := range obs {
		lines[i] = o.String()
	}
	return strings.Join(lines, "\n")
}
