// Package orchestrator runs one task through a plan, execute, verify, repair
// cycle against a step executor.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/taskweave/taskweave/internal/generator"
	"github.com/taskweave/taskweave/internal/manifest"
	"github.com/taskweave/taskweave/internal/step"
	"github.com/taskweave/taskweave/pkg/models"
)

const (
	// MaxPlanSteps bounds the initial action plan.
	MaxPlanSteps = 5
	// MaxRepairSteps bounds each repair plan.
	MaxRepairSteps = 3
	// MaxVerifySteps bounds generator-proposed verification.
	MaxVerifySteps = 2
	// DefaultMaxRepairs is the repair cycle budget when the caller does not
	// set one.
	DefaultMaxRepairs = 2
)

// Orchestrator executes tasks. A nil manifest means the project declares no
// verification scripts and checks fall back to generator-proposed commands.
type Orchestrator struct {
	gen   generator.Generator
	steps step.Executor

	mu       sync.RWMutex
	manifest *manifest.Manifest
}

// New creates an orchestrator.
func New(gen generator.Generator, steps step.Executor, m *manifest.Manifest) *Orchestrator {
	return &Orchestrator{gen: gen, steps: steps, manifest: m}
}

// SetManifest swaps the project manifest, typically after a reload. The new
// manifest takes effect from the next verification pass.
func (o *Orchestrator) SetManifest(m *manifest.Manifest) {
	o.mu.Lock()
	o.manifest = m
	o.mu.Unlock()
}

func (o *Orchestrator) currentManifest() *manifest.Manifest {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.manifest
}

// RunTask plans, executes, and verifies one task, repairing on verification
// failure up to maxRepairs times. Returns true when verification ultimately
// passes. A negative maxRepairs selects DefaultMaxRepairs. Context
// cancellation stops the run immediately.
func (o *Orchestrator) RunTask(ctx context.Context, request, title string, onEvent EventFunc, maxRepairs int) bool {
	if maxRepairs < 0 {
		maxRepairs = DefaultMaxRepairs
	}

	emit(onEvent, Event{Type: EventInfo, Message: fmt.Sprintf("planning: %s", title)})

	plan, err := o.buildPlan(ctx, fmt.Sprintf(planPrompt, request, title, MaxPlanSteps), MaxPlanSteps)
	if err != nil {
		emit(onEvent, Event{Type: EventError, Message: "planning failed", Err: err})
		return false
	}
	if len(plan.Steps) == 0 {
		emit(onEvent, Event{Type: EventError, Message: "planner produced no executable steps"})
		return false
	}
	emit(onEvent, Event{Type: EventPlan, Message: planSummary(plan)})

	observations, err := o.executePlan(ctx, plan, 0, onEvent)
	if err != nil {
		emit(onEvent, Event{Type: EventError, Message: "execution aborted", Err: err})
		return false
	}

	for attempt := 0; ; attempt++ {
		passed, output := o.verify(ctx, title, observations, onEvent)
		if passed {
			emit(onEvent, Event{Type: EventComplete, Message: fmt.Sprintf("task verified: %s", title)})
			return true
		}
		if ctx.Err() != nil {
			emit(onEvent, Event{Type: EventError, Message: "run cancelled", Err: ctx.Err()})
			return false
		}
		if attempt >= maxRepairs {
			emit(onEvent, Event{Type: EventError, Message: fmt.Sprintf("verification still failing after %d repair(s)", attempt)})
			return false
		}

		emit(onEvent, Event{Type: EventInfo, Message: fmt.Sprintf("repair attempt %d/%d", attempt+1, maxRepairs)})
		prompt := fmt.Sprintf(repairPrompt, title, models.ObservationLog(observations), output, MaxRepairSteps)
		repairPlan, err := o.buildPlan(ctx, prompt, MaxRepairSteps)
		if err != nil {
			emit(onEvent, Event{Type: EventError, Message: "repair planning failed", Err: err})
			return false
		}
		if len(repairPlan.Steps) == 0 {
			emit(onEvent, Event{Type: EventError, Message: "repair planner produced no executable steps"})
			return false
		}

		repairObs, err := o.executePlan(ctx, repairPlan, len(observations), onEvent)
		if err != nil {
			emit(onEvent, Event{Type: EventError, Message: "repair aborted", Err: err})
			return false
		}
		observations = append(observations, repairObs...)
	}
}

// buildPlan asks the generator for a plan and parses it. The context is
// checked first so cancellation never reaches the generator.
func (o *Orchestrator) buildPlan(ctx context.Context, prompt string, maxSteps int) (*models.ActionPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	response, err := o.gen.Complete(ctx, prompt, generator.ProfileDefault)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	return ParsePlan(response, maxSteps)
}

// executePlan runs every step of the plan. Step failures are recorded as
// observations and execution continues; only context cancellation aborts.
func (o *Orchestrator) executePlan(ctx context.Context, plan *models.ActionPlan, indexBase int, onEvent EventFunc) ([]models.Observation, error) {
	var observations []models.Observation
	for i, s := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return observations, err
		}
		idx := indexBase + i
		emit(onEvent, Event{Type: EventStepStart, Step: idx, Action: s.Action, Message: s.Description})

		result := o.steps.Execute(ctx, s.Action, s.Args)
		obs := models.Observation{StepIndex: idx, Action: s.Action, Result: result.Output}
		if !result.OK {
			obs.Error = result.Error
		}
		observations = append(observations, obs)

		ev := Event{Type: EventStepResult, Step: idx, Action: s.Action, Message: result.Output}
		if !result.OK {
			ev.Err = fmt.Errorf("%s", result.Error)
		}
		emit(onEvent, ev)
	}
	return observations, nil
}

func planSummary(plan *models.ActionPlan) string {
	var b strings.Builder
	if plan.Rationale != "" {
		b.WriteString(plan.Rationale)
		b.WriteString("\n")
	}
	for i, s := range plan.Steps {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, s.Action, s.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
