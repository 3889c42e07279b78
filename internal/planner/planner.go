// Package planner decides whether a request needs decomposition, produces
// the ordered task titles, and composes the per-task prompts injected into
// the conversation.
package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/taskweave/taskweave/internal/generator"
	"github.com/taskweave/taskweave/internal/tasklist"
	"github.com/taskweave/taskweave/pkg/models"
)

// numberedLine matches "1. Task title" list entries.
var numberedLine = regexp.MustCompile(`^\d+\.\s+(.+)$`)

// Planner is the decomposition planner for one session.
type Planner struct {
	gen   generator.Generator
	tasks *tasklist.Service
}

// New creates a planner backed by the given generator and task list service.
func New(gen generator.Generator, tasks *tasklist.Service) *Planner {
	return &Planner{gen: gen, tasks: tasks}
}

// GenerateTaskList asks the generator for an ordered list of task titles.
// The call uses the fast profile; passing the profile per call means there
// is no shared model state to restore afterward. An empty title list is a
// valid outcome meaning "nothing to decompose into", and callers must
// short-circuit before creating a task list.
func (p *Planner) GenerateTaskList(ctx context.Context, request string) ([]string, error) {
	response, err := p.gen.Complete(ctx, fmt.Sprintf(taskListPrompt, request), generator.ProfileFast)
	if err != nil {
		return nil, fmt.Errorf("generate task list: %w", err)
	}
	return ParseTitles(response), nil
}

// ParseTitles extracts task titles from a generator response. Only numbered
// lines ("1. Title") and bulleted lines ("- Title") count; everything else
// is ignored rather than treated as an error. Titles come back in document
// order.
func ParseTitles(response string) []string {
	var titles []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			titles = append(titles, strings.TrimSpace(m[1]))
			continue
		}
		if rest, ok := strings.CutPrefix(line, "- "); ok {
			if title := strings.TrimSpace(rest); title != "" {
				titles = append(titles, title)
			}
		}
	}
	return titles
}

// BuildContinuationPrompt composes the text injected as the next
// conversational turn for the given task.
func (p *Planner) BuildContinuationPrompt(task *models.Task, originalRequest string) string {
	list := p.tasks.Active()
	total := 0
	if list != nil {
		total = len(list.Tasks)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Original request: %s\n\n", originalRequest)
	fmt.Fprintf(&b, "This request was broken into %d tasks. Tasks execute strictly one at a time, with a verification pass after each.\n", total)
	b.WriteString("If any input is missing, substitute a sensible default instead of asking the user.\n\n")
	b.WriteString(p.tasks.TaskContext())
	fmt.Fprintf(&b, "\nExecute ONLY this task now: %s\nStop when it is done.\n", task.Title)
	return b.String()
}

// HandleTaskCompletion completes the current task and, if the list is not
// finished, starts the next task and returns the prompt for it. The second
// return value is false when the automated chain should stop.
func (p *Planner) HandleTaskCompletion() (string, bool) {
	completed, _ := p.tasks.CompleteCurrentTask()

	next := p.tasks.CurrentTask()
	if next == nil {
		return "", false
	}
	p.tasks.StartCurrentTask()

	var b strings.Builder
	if completed != nil {
		fmt.Fprintf(&b, "Task complete: %s\n\n", completed.Title)
	}
	fmt.Fprintf(&b, "Now execute the next task: %s\n\n", next.Title)
	b.WriteString(p.tasks.TaskContext())
	return b.String(), true
}
