package continuation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/taskweave/taskweave/internal/generator"
	"github.com/taskweave/taskweave/internal/planner"
	"github.com/taskweave/taskweave/internal/tasklist"
)

type nullGen struct{}

func (nullGen) Complete(ctx context.Context, prompt string, profile generator.Profile) (string, error) {
	return "", nil
}

type harness struct {
	ctrl     *Controller
	tasks    *tasklist.Service
	submits  []string
	notices  []string
	submitFn func(ctx context.Context, prompt string) error
}

func newHarness(t *testing.T, titles []string) *harness {
	t.Helper()
	h := &harness{tasks: tasklist.NewService()}
	p := planner.New(nullGen{}, h.tasks)
	h.ctrl = NewController(p, h.tasks,
		func(ctx context.Context, prompt string) error {
			if h.submitFn != nil {
				return h.submitFn(ctx, prompt)
			}
			h.submits = append(h.submits, prompt)
			return nil
		},
		func(msg string) { h.notices = append(h.notices, msg) },
	)
	h.ctrl.delay = time.Millisecond

	if len(titles) > 0 {
		if _, err := h.tasks.CreateTaskList("original request", titles); err != nil {
			t.Fatalf("CreateTaskList: %v", err)
		}
		h.tasks.StartCurrentTask()
	}
	return h
}

func TestNaturalFinishSubmitsVerification(t *testing.T) {
	h := newHarness(t, []string{"A", "B"})

	if err := h.ctrl.HandleTurnFinished(context.Background(), FinishNatural); err != nil {
		t.Fatalf("HandleTurnFinished: %v", err)
	}

	if h.ctrl.State() != StateAwaitingVerification {
		t.Errorf("state = %v, want awaiting_verification", h.ctrl.State())
	}
	if len(h.submits) != 1 {
		t.Fatalf("submits = %d, want 1", len(h.submits))
	}
	prompt := h.submits[0]
	if !strings.Contains(prompt, "verify the work") {
		t.Errorf("verification prompt missing instructions:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Never weaken or skip the checks") {
		t.Errorf("verification prompt missing guardrail:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Current task: A") {
		t.Errorf("verification prompt missing task context:\n%s", prompt)
	}
}

func TestVerificationFinishAdvancesToNextTask(t *testing.T) {
	h := newHarness(t, []string{"A", "B"})

	// Task turn ends, then the verification turn ends.
	if err := h.ctrl.HandleTurnFinished(context.Background(), FinishNatural); err != nil {
		t.Fatal(err)
	}
	if err := h.ctrl.HandleTurnFinished(context.Background(), FinishNatural); err != nil {
		t.Fatal(err)
	}

	if h.ctrl.State() != StateIdle {
		t.Errorf("state = %v, want idle", h.ctrl.State())
	}
	if len(h.submits) != 2 {
		t.Fatalf("submits = %d, want 2", len(h.submits))
	}
	if !strings.Contains(h.submits[1], "next task: B") {
		t.Errorf("next-task prompt:\n%s", h.submits[1])
	}
	cur := h.tasks.CurrentTask()
	if cur == nil || cur.Title != "B" {
		t.Errorf("CurrentTask() = %v, want B", cur)
	}
}

func TestVerificationFinishOnLastTaskEndsChain(t *testing.T) {
	h := newHarness(t, []string{"only"})

	h.ctrl.HandleTurnFinished(context.Background(), FinishNatural)
	submitsBefore := len(h.submits)
	h.ctrl.HandleTurnFinished(context.Background(), FinishNatural)

	if h.ctrl.State() != StateDone {
		t.Errorf("state = %v, want done", h.ctrl.State())
	}
	if len(h.submits) != submitsBefore {
		t.Errorf("no further turns should be submitted, got %d new", len(h.submits)-submitsBefore)
	}
	found := false
	for _, n := range h.notices {
		if n == "all tasks complete" {
			found = true
		}
	}
	if !found {
		t.Errorf("notices = %v, want completion notice", h.notices)
	}
	if h.tasks.Active() != nil {
		t.Error("task list should be archived")
	}
}

func TestNonNaturalFinishPausesChain(t *testing.T) {
	h := newHarness(t, []string{"A"})

	if err := h.ctrl.HandleTurnFinished(context.Background(), FinishTruncated); err != nil {
		t.Fatal(err)
	}

	if len(h.submits) != 0 {
		t.Errorf("submits = %v, want none", h.submits)
	}
	if h.ctrl.State() != StateIdle {
		t.Errorf("state = %v, want idle", h.ctrl.State())
	}
	if len(h.notices) != 1 || !strings.Contains(h.notices[0], "paused") {
		t.Errorf("notices = %v", h.notices)
	}
}

func TestCancelledContextStopsChain(t *testing.T) {
	h := newHarness(t, []string{"A", "B"})
	h.ctrl.HandleTurnFinished(context.Background(), FinishNatural)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.ctrl.HandleTurnFinished(ctx, FinishNatural); err != nil {
		t.Fatal(err)
	}

	if h.ctrl.State() != StateIdle {
		t.Errorf("state = %v, want idle after cancel", h.ctrl.State())
	}
	if len(h.submits) != 1 {
		t.Errorf("cancelled chain must not resubmit, submits = %d", len(h.submits))
	}
	found := false
	for _, n := range h.notices {
		if strings.Contains(n, "cancelled") {
			found = true
		}
	}
	if !found {
		t.Errorf("notices = %v, want cancellation notice", h.notices)
	}
}

func TestNoActiveListDoesNothing(t *testing.T) {
	h := newHarness(t, nil)

	if err := h.ctrl.HandleTurnFinished(context.Background(), FinishNatural); err != nil {
		t.Fatal(err)
	}
	if len(h.submits) != 0 || len(h.notices) != 0 {
		t.Errorf("submits = %v, notices = %v, want none", h.submits, h.notices)
	}
}
