package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/taskweave/taskweave/internal/generator"
)

// simpleQuestionPrefixes mark requests that are questions, not work.
var simpleQuestionPrefixes = []string{"what", "why", "explain", "describe"}

// atomicCommandPattern matches short single-verb commands that never need
// decomposition.
var atomicCommandPattern = regexp.MustCompile(`(?i)^(run\s+\w+|test|tests|build|lint|compile|deploy|install|format)$`)

// multiStepIndicators suggest the request contains more than one piece of
// work. Known to over-match: a genuinely simple request containing "and" is
// still treated as multi-step. That boundary is a product decision and is
// kept as-is.
var multiStepIndicators = []string{
	" and ",
	" then ",
	" after ",
	"first",
	"create",
	"implement",
	"add ",
	"set up",
	"setup",
	"refactor",
	"migrate",
	"integrate",
}

// multiStepWordThreshold is the word count above which a request is assumed
// to be multi-step without consulting the generator.
const multiStepWordThreshold = 8

// ShouldDecompose decides whether the request needs decomposition. The local
// heuristic answers most cases without a generator call; only genuinely
// ambiguous requests reach the generator, and any generator failure defaults
// to NO so the request still runs as a single turn.
func (p *Planner) ShouldDecompose(ctx context.Context, request string) bool {
	trimmed := strings.TrimSpace(request)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)

	if isSimpleQuestion(lower) {
		return false
	}
	if atomicCommandPattern.MatchString(trimmed) {
		return false
	}
	if hasMultiStepIndicator(lower) {
		return true
	}
	if len(strings.Fields(trimmed)) > multiStepWordThreshold {
		return true
	}

	return p.askShouldDecompose(ctx, trimmed)
}

// isSimpleQuestion matches question-shaped requests: a question-word prefix,
// or a "?" with no coordinating "and".
func isSimpleQuestion(lower string) bool {
	for _, prefix := range simpleQuestionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	if strings.Contains(lower, "?") && !strings.Contains(lower, " and ") {
		return true
	}
	return false
}

func hasMultiStepIndicator(lower string) bool {
	for _, indicator := range multiStepIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// askShouldDecompose delegates the ambiguous case to the generator with a
// strict forced-choice prompt.
func (p *Planner) askShouldDecompose(ctx context.Context, request string) bool {
	response, err := p.gen.Complete(ctx, fmt.Sprintf(decidePrompt, request), generator.ProfileFast)
	if err != nil {
		// Favor not decomposing on failure.
		return false
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(response)), "YES")
}
