package tasklist

import (
	"strings"
	"testing"
)

func TestTaskContextEmptyWithoutActiveTask(t *testing.T) {
	s := NewService()
	if got := s.TaskContext(); got != "" {
		t.Errorf("TaskContext() = %q, want empty", got)
	}

	s.CreateTaskList("x", []string{"only"})
	s.StartCurrentTask()
	s.CompleteCurrentTask()
	if got := s.TaskContext(); got != "" {
		t.Errorf("TaskContext() after completion = %q, want empty", got)
	}
}

func TestTaskContextContents(t *testing.T) {
	s := NewService()
	s.CreateTaskList("x", []string{"A", "B", "C"})
	s.StartCurrentTask()
	s.CompleteCurrentTask()
	s.StartCurrentTask()

	ctx := s.TaskContext()

	if !strings.Contains(ctx, "1/3 completed") {
		t.Errorf("missing progress count:\n%s", ctx)
	}
	if !strings.Contains(ctx, "Already completed:\n- A") {
		t.Errorf("missing completed section:\n%s", ctx)
	}
	if !strings.Contains(ctx, "Current task: B") {
		t.Errorf("missing current task:\n%s", ctx)
	}
	if !strings.Contains(ctx, "do not execute yet") || !strings.Contains(ctx, "- C") {
		t.Errorf("missing upcoming section:\n%s", ctx)
	}
	if !strings.Contains(ctx, "Work ONLY on the current task") {
		t.Errorf("missing single-task directive:\n%s", ctx)
	}
	if !strings.Contains(ctx, "never ask the user questions") {
		t.Errorf("missing non-interactive directive:\n%s", ctx)
	}
	if !strings.Contains(ctx, "Stop after the current task") {
		t.Errorf("missing stop directive:\n%s", ctx)
	}
}

func TestSummary(t *testing.T) {
	s := NewService()

	if got := s.Summary(); got != "no task list" {
		t.Errorf("Summary() = %q, want 'no task list'", got)
	}

	s.CreateTaskList("x", []string{"A", "B"})
	s.StartCurrentTask()
	s.CompleteCurrentTask()
	s.StartCurrentTask()
	s.FailCurrentTask("err")

	summary := s.Summary()
	if !strings.Contains(summary, "✓ A") {
		t.Errorf("missing completed glyph:\n%s", summary)
	}
	if !strings.Contains(summary, "✗ B") {
		t.Errorf("missing failed glyph:\n%s", summary)
	}
}
