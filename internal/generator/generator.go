// Package generator abstracts the text completion backend used for
// decomposition, planning, and verification prompts.
package generator

import "context"

// Profile selects the generation profile for a single call. Passing the
// profile per call means no shared model configuration is ever mutated.
type Profile string

const (
	// ProfileDefault is the standard model used for the main conversation
	// and for plan generation.
	ProfileDefault Profile = "default"
	// ProfileFast is the cheapest/fastest model, used for classification
	// and title-list generation.
	ProfileFast Profile = "fast"
)

// Generator turns a text prompt into completion text. Implementations must
// honor context cancellation promptly and must not retry after it fires.
type Generator interface {
	Complete(ctx context.Context, prompt string, profile Profile) (string, error)
}
