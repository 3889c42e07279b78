package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/taskweave/taskweave/internal/generator"
	"github.com/taskweave/taskweave/internal/tasklist"
)

// fakeGen is a scripted Generator for tests.
type fakeGen struct {
	response string
	err      error
	calls    int
	profiles []generator.Profile
}

func (f *fakeGen) Complete(ctx context.Context, prompt string, profile generator.Profile) (string, error) {
	f.calls++
	f.profiles = append(f.profiles, profile)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.response, f.err
}

func TestShouldDecomposeLocalHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		request  string
		expected bool
	}{
		{"question word prefix", "What is React?", false},
		{"why prefix", "why does the build fail", false},
		{"explain prefix", "Explain the auth flow", false},
		{"question mark without and", "is the cache warm?", false},
		{"atomic run command", "run tests", false},
		{"atomic test", "test", false},
		{"atomic build", "build", false},
		{"multi-step indicators", "Create a REST API with auth and tests", true},
		{"then indicator", "fix the bug then deploy", true},
		{"long request", "update the nine separate module readme files to match house style", true},
		{"empty", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGen{}
			p := New(gen, tasklist.NewService())

			got := p.ShouldDecompose(context.Background(), tt.request)
			if got != tt.expected {
				t.Errorf("ShouldDecompose(%q) = %v, want %v", tt.request, got, tt.expected)
			}
			// The listed cases must resolve locally.
			if gen.calls != 0 {
				t.Errorf("generator called %d times, want 0", gen.calls)
			}
		})
	}
}

func TestShouldDecomposeDelegatesAmbiguous(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		expected bool
	}{
		{"generator says yes", "YES", nil, true},
		{"generator says yes lowercase", "  yes", nil, true},
		{"generator says no", "NO", nil, false},
		{"generator rambles", "Probably not", nil, false},
		{"generator error defaults to no", "", errors.New("rate limited"), false},
	}

	// Short, no indicators, no question shape: forces delegation.
	const ambiguous = "tidy the workspace"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGen{response: tt.response, err: tt.err}
			p := New(gen, tasklist.NewService())

			got := p.ShouldDecompose(context.Background(), ambiguous)
			if got != tt.expected {
				t.Errorf("ShouldDecompose() = %v, want %v", got, tt.expected)
			}
			if gen.calls != 1 {
				t.Errorf("generator called %d times, want 1", gen.calls)
			}
			if len(gen.profiles) == 1 && gen.profiles[0] != generator.ProfileFast {
				t.Errorf("profile = %v, want fast", gen.profiles[0])
			}
		})
	}
}
