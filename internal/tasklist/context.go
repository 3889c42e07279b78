package tasklist

import (
	"fmt"
	"strings"

	"github.com/taskweave/taskweave/pkg/models"
)

// TaskContext renders a prompt fragment describing list progress and the
// execution rules for the current task. Returns "" when no task is current.
func (s *Service) TaskContext() string {
	s.mu.Lock()
	list := s.active
	current := s.currentLocked()
	s.mu.Unlock()

	if current == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Task progress: %d/%d completed\n\n", list.CompletedCount(), len(list.Tasks))

	var done []string
	for _, t := range list.Tasks[:list.CurrentTaskIndex] {
		if t.Status == models.TaskStatusCompleted {
			done = append(done, t.Title)
		}
	}
	if len(done) > 0 {
		b.WriteString("Already completed:\n")
		for _, title := range done {
			fmt.Fprintf(&b, "- %s\n", title)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Current task: %s\n\n", current.Title)

	upcoming := list.Tasks[list.CurrentTaskIndex+1:]
	if len(upcoming) > 0 {
		b.WriteString("Upcoming tasks (do not execute yet):\n")
		for _, t := range upcoming {
			fmt.Fprintf(&b, "- %s\n", t.Title)
		}
		b.WriteString("\n")
	}

	b.WriteString("Rules:\n")
	b.WriteString("- Work ONLY on the current task.\n")
	b.WriteString("- Use non-interactive flags and sensible defaults; never ask the user questions.\n")
	b.WriteString("- Stop after the current task is done so a verification pass can run.\n")

	return b.String()
}

// Summary renders a flat progress listing with status glyphs. Display only;
// nothing reads it for control flow.
func (s *Service) Summary() string {
	s.mu.Lock()
	list := s.active
	if list == nil && len(s.history) > 0 {
		list = s.history[len(s.history)-1]
	}
	s.mu.Unlock()

	if list == nil {
		return "no task list"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tasks (%d/%d completed):\n", list.CompletedCount(), len(list.Tasks))
	for _, t := range list.Tasks {
		fmt.Fprintf(&b, "  %s %s\n", glyph(t.Status), t.Title)
	}
	return b.String()
}

func glyph(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusCompleted:
		return "✓"
	case models.TaskStatusInProgress:
		return "→"
	case models.TaskStatusFailed:
		return "✗"
	default:
		return "○"
	}
}
