package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/taskweave/taskweave/internal/tasklist"
)

func TestParseTitles(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected []string
	}{
		{
			name:     "numbered list",
			response: "1. Set up project\n2. Add endpoints\n3. Write tests",
			expected: []string{"Set up project", "Add endpoints", "Write tests"},
		},
		{
			name:     "mixed bullets and numbers in document order",
			response: "- First thing\n- Second thing\n1. Third thing",
			expected: []string{"First thing", "Second thing", "Third thing"},
		},
		{
			name:     "noise ignored",
			response: "Here is the plan:\n\n1. Do the work\nSome commentary.\n2. Verify it\nThanks!",
			expected: []string{"Do the work", "Verify it"},
		},
		{
			name:     "indented entries",
			response: "  1. Indented task\n\t- Tabbed bullet",
			expected: []string{"Indented task", "Tabbed bullet"},
		},
		{
			name:     "nothing parseable",
			response: "I cannot break this down.",
			expected: nil,
		},
		{
			name:     "empty response",
			response: "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTitles(tt.response)
			if len(got) != len(tt.expected) {
				t.Fatalf("ParseTitles() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("titles[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestGenerateTaskList(t *testing.T) {
	gen := &fakeGen{response: "1. Alpha\n2. Beta"}
	p := New(gen, tasklist.NewService())

	titles, err := p.GenerateTaskList(context.Background(), "do stuff")
	if err != nil {
		t.Fatalf("GenerateTaskList() error = %v", err)
	}
	if len(titles) != 2 || titles[0] != "Alpha" || titles[1] != "Beta" {
		t.Errorf("titles = %v", titles)
	}
}

func TestGenerateTaskListError(t *testing.T) {
	gen := &fakeGen{err: errors.New("boom")}
	p := New(gen, tasklist.NewService())

	if _, err := p.GenerateTaskList(context.Background(), "do stuff"); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildContinuationPrompt(t *testing.T) {
	svc := tasklist.NewService()
	svc.CreateTaskList("build the thing", []string{"A", "B"})
	task, _ := svc.StartCurrentTask()

	p := New(&fakeGen{}, svc)
	prompt := p.BuildContinuationPrompt(task, "build the thing")

	for _, want := range []string{
		"Original request: build the thing",
		"broken into 2 tasks",
		"one at a time",
		"verification pass after each",
		"substitute a sensible default instead of asking",
		"Current task: A",
		"Execute ONLY this task now: A",
		"Stop when it is done.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestHandleTaskCompletionAdvances(t *testing.T) {
	svc := tasklist.NewService()
	list, _ := svc.CreateTaskList("x", []string{"A", "B"})
	svc.StartCurrentTask()

	p := New(&fakeGen{}, svc)
	prompt, ok := p.HandleTaskCompletion()
	if !ok {
		t.Fatal("HandleTaskCompletion() = false, want next prompt")
	}

	if !strings.Contains(prompt, "Task complete: A") {
		t.Errorf("prompt missing completion line:\n%s", prompt)
	}
	if !strings.Contains(prompt, "next task: B") {
		t.Errorf("prompt missing next task:\n%s", prompt)
	}
	if list.CurrentTaskIndex != 1 {
		t.Errorf("CurrentTaskIndex = %d, want 1", list.CurrentTaskIndex)
	}
	if got := svc.CurrentTask(); got == nil || got.Title != "B" {
		t.Errorf("CurrentTask() = %v, want B in progress", got)
	}
}

func TestHandleTaskCompletionStopsAtEnd(t *testing.T) {
	svc := tasklist.NewService()
	svc.CreateTaskList("x", []string{"only"})
	svc.StartCurrentTask()

	p := New(&fakeGen{}, svc)
	if prompt, ok := p.HandleTaskCompletion(); ok {
		t.Errorf("HandleTaskCompletion() = (%q, true), want stop signal", prompt)
	}
}
