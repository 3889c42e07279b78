// Package step defines the action execution capability used by plan steps,
// plus a local implementation of the action safelist.
package step

import "context"

// Action names form a fixed safelist. Plans referencing anything else are
// filtered before execution ever reaches an Executor.
const (
	ActionReadFile  = "read_file"
	ActionWriteFile = "write_file"
	ActionEditFile  = "edit_file"
	ActionListDir   = "list_dir"
	ActionGlob      = "glob"
	ActionGrep      = "grep"
	ActionShell     = "shell"
	ActionFetchURL  = "fetch_url"
)

// allowedActions is the authoritative safelist.
var allowedActions = map[string]bool{
	ActionReadFile:  true,
	ActionWriteFile: true,
	ActionEditFile:  true,
	ActionListDir:   true,
	ActionGlob:      true,
	ActionGrep:      true,
	ActionShell:     true,
	ActionFetchURL:  true,
}

// Allowed reports whether the action name is on the safelist.
func Allowed(action string) bool {
	return allowedActions[action]
}

// Result is the structured outcome of executing one action.
type Result struct {
	// OK is true when the action succeeded.
	OK bool
	// Output holds the action output on success (may be empty).
	Output string
	// Error holds the failure message when OK is false.
	Error string
}

// Executor runs one named action with arguments. Implementations must honor
// context cancellation and must reject actions outside the safelist.
type Executor interface {
	Execute(ctx context.Context, action string, args map[string]any) Result
}
