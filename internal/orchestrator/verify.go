package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskweave/taskweave/internal/generator"
	"github.com/taskweave/taskweave/internal/manifest"
	"github.com/taskweave/taskweave/internal/step"
	"github.com/taskweave/taskweave/pkg/models"
)

// verify runs the verification pass for one task and returns whether it
// passed plus the combined check output for repair prompts. Manifest scripts
// take precedence; without them the generator proposes shell-only checks,
// and proposing zero checks counts as a failure.
func (o *Orchestrator) verify(ctx context.Context, title string, observations []models.Observation, onEvent EventFunc) (bool, string) {
	if m := o.currentManifest(); m != nil {
		if cmds := m.VerificationCommands(); len(cmds) > 0 {
			return o.runManifestChecks(ctx, cmds, onEvent)
		}
	}
	return o.runProposedChecks(ctx, title, observations, onEvent)
}

func (o *Orchestrator) runManifestChecks(ctx context.Context, cmds []manifest.Command, onEvent EventFunc) (bool, string) {
	emit(onEvent, Event{Type: EventVerify, Message: fmt.Sprintf("running %d project check(s)", len(cmds))})

	var output strings.Builder
	passed := true
	for _, cmd := range cmds {
		if ctx.Err() != nil {
			return false, output.String()
		}
		result := o.steps.Execute(ctx, step.ActionShell, map[string]any{"command": cmd.Run})
		fmt.Fprintf(&output, "[%s] %s\n%s\n", cmd.Name, cmd.Run, result.Output)
		if !result.OK {
			fmt.Fprintf(&output, "FAILED: %s\n", result.Error)
			passed = false
			break
		}
	}

	ev := Event{Type: EventVerifyResult, Message: "checks passed"}
	if !passed {
		ev.Message = "checks failed"
		ev.Err = fmt.Errorf("project checks failed")
	}
	emit(onEvent, ev)
	return passed, output.String()
}

// runProposedChecks asks the generator for verification commands when the
// project declares none.
func (o *Orchestrator) runProposedChecks(ctx context.Context, title string, observations []models.Observation, onEvent EventFunc) (bool, string) {
	emit(onEvent, Event{Type: EventVerify, Message: "no project checks declared, proposing verification"})

	if err := ctx.Err(); err != nil {
		return false, ""
	}
	prompt := fmt.Sprintf(verifyPlanPrompt, title, models.ObservationLog(observations), MaxVerifySteps)
	response, err := o.gen.Complete(ctx, prompt, generator.ProfileDefault)
	if err != nil {
		emit(onEvent, Event{Type: EventVerifyResult, Message: "verification planning failed", Err: err})
		return false, ""
	}
	plan, err := parseShellOnlyPlan(response, MaxVerifySteps)
	if err != nil || len(plan.Steps) == 0 {
		emit(onEvent, Event{Type: EventVerifyResult, Message: "no usable verification proposed", Err: err})
		return false, ""
	}

	var output strings.Builder
	passed := true
	for _, s := range plan.Steps {
		if ctx.Err() != nil {
			return false, output.String()
		}
		result := o.steps.Execute(ctx, step.ActionShell, s.Args)
		fmt.Fprintf(&output, "[check] %s\n%s\n", s.Description, result.Output)
		if !result.OK {
			fmt.Fprintf(&output, "FAILED: %s\n", result.Error)
			passed = false
			break
		}
	}

	ev := Event{Type: EventVerifyResult, Message: "checks passed"}
	if !passed {
		ev.Message = "checks failed"
		ev.Err = fmt.Errorf("proposed checks failed")
	}
	emit(onEvent, ev)
	return passed, output.String()
}
