// Package continuation chains task turns together: after each turn it
// schedules a verification pass, then advances the task list and resubmits
// the next task as a fresh turn.
package continuation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/taskweave/taskweave/internal/planner"
	"github.com/taskweave/taskweave/internal/tasklist"
)

// State tracks where the controller is in the per-task cycle.
type State string

const (
	// StateIdle means a task turn is running (or nothing is in flight).
	StateIdle State = "idle"
	// StateAwaitingVerification means the verification turn was submitted.
	StateAwaitingVerification State = "awaiting_verification"
	// StateAwaitingNextTask means verification passed and the next task turn
	// is about to be submitted.
	StateAwaitingNextTask State = "awaiting_next_task"
	// StateDone means the task list finished and the chain stopped.
	StateDone State = "done"
)

// FinishReason says how a turn ended.
type FinishReason string

const (
	// FinishNatural is a turn that ran to completion.
	FinishNatural FinishReason = "stop"
	// FinishTruncated is a turn cut off by output limits.
	FinishTruncated FinishReason = "truncated"
	// FinishCancelled is a turn stopped by the user.
	FinishCancelled FinishReason = "cancelled"
)

// resubmitDelay spaces automatic turn submissions apart so a broken chain
// cannot spin.
const resubmitDelay = 300 * time.Millisecond

// Submitter sends a prompt as a new turn. The controller never calls it
// while holding its lock.
type Submitter func(ctx context.Context, prompt string) error

// Notifier surfaces chain status messages to the user.
type Notifier func(message string)

// Controller drives the verification-then-next-task chain. One controller
// serves one session.
type Controller struct {
	planner *planner.Planner
	tasks   *tasklist.Service
	submit  Submitter
	notify  Notifier
	delay   time.Duration

	mu    sync.Mutex
	state State
}

// NewController creates a controller in the idle state.
func NewController(p *planner.Planner, tasks *tasklist.Service, submit Submitter, notify Notifier) *Controller {
	return &Controller{
		planner: p,
		tasks:   tasks,
		submit:  submit,
		notify:  notify,
		delay:   resubmitDelay,
		state:   StateIdle,
	}
}

// State returns the current chain state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset returns the controller to idle, abandoning any pending verification.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}

// HandleTurnFinished advances the chain after a turn ends. Natural finishes
// drive the cycle; anything else pauses the chain with a notice. A cancelled
// context stops the chain without resubmitting.
func (c *Controller) HandleTurnFinished(ctx context.Context, reason FinishReason) error {
	if err := ctx.Err(); err != nil {
		c.Reset()
		c.say("request cancelled; task chain stopped")
		return nil
	}
	if reason != FinishNatural {
		c.say(fmt.Sprintf("turn ended early (%s); task chain paused", reason))
		return nil
	}

	if c.tasks.CurrentTask() == nil && c.State() != StateAwaitingVerification {
		// No active task list, nothing to chain.
		return nil
	}

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case StateIdle:
		return c.submitVerification(ctx)
	case StateAwaitingVerification:
		return c.advance(ctx)
	default:
		return nil
	}
}

// submitVerification sends the verification turn for the task that just ran.
func (c *Controller) submitVerification(ctx context.Context) error {
	c.setState(StateAwaitingVerification)

	var b strings.Builder
	b.WriteString("The task turn just finished. Before moving on, verify the work:\n")
	b.WriteString("1. Run the project's checks (build, lint, tests) if any exist.\n")
	b.WriteString("2. If anything fails, fix it now. Never weaken or skip the checks.\n")
	b.WriteString("3. Stop once the checks pass.\n\n")
	b.WriteString(c.tasks.TaskContext())

	if err := c.submit(ctx, b.String()); err != nil {
		c.setState(StateIdle)
		return fmt.Errorf("submit verification turn: %w", err)
	}
	return nil
}

// advance marks the verified task complete and submits the next one, or
// finishes the chain.
func (c *Controller) advance(ctx context.Context) error {
	prompt, ok := c.planner.HandleTaskCompletion()
	if !ok {
		c.setState(StateDone)
		c.say("all tasks complete")
		return nil
	}
	c.setState(StateAwaitingNextTask)

	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		c.Reset()
		c.say("request cancelled; task chain stopped")
		return nil
	}

	c.setState(StateIdle)
	if err := c.submit(ctx, prompt); err != nil {
		return fmt.Errorf("submit next task turn: %w", err)
	}
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) say(message string) {
	if c.notify != nil {
		c.notify(message)
	}
}
