package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taskweave/taskweave/internal/step"
	"github.com/taskweave/taskweave/pkg/models"
)

// ParsePlan extracts an ActionPlan from a generator response. The JSON object
// is taken between the first '{' and last '}' so surrounding prose does not
// break parsing. Steps whose action is not on the safelist are dropped
// silently, and the plan is truncated to maxSteps.
func ParsePlan(response string, maxSteps int) (*models.ActionPlan, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var plan models.ActionPlan
	if err := json.Unmarshal([]byte(response[start:end+1]), &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	filtered := plan.Steps[:0]
	for _, s := range plan.Steps {
		if !step.Allowed(s.Action) {
			continue
		}
		filtered = append(filtered, s)
	}
	plan.Steps = filtered

	if len(plan.Steps) > maxSteps {
		plan.Steps = plan.Steps[:maxSteps]
	}
	return &plan, nil
}

// parseShellOnlyPlan is ParsePlan restricted to the shell action, used for
// generator-proposed verification.
func parseShellOnlyPlan(response string, maxSteps int) (*models.ActionPlan, error) {
	plan, err := ParsePlan(response, maxSteps)
	if err != nil {
		return nil, err
	}
	shell := plan.Steps[:0]
	for _, s := range plan.Steps {
		if s.Action == step.ActionShell {
			shell = append(shell, s)
		}
	}
	plan.Steps = shell
	return plan, nil
}
