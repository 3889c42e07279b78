package step

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// maxOutputBytes caps the output carried back from any single action.
	maxOutputBytes = 30000
	// defaultShellTimeout bounds shell commands without an explicit timeout.
	defaultShellTimeout = 2 * time.Minute
	// fetchTimeout bounds URL fetches.
	fetchTimeout = 30 * time.Second
	// maxFetchBytes caps the body read from a fetched URL.
	maxFetchBytes = 100 * 1024
)

// LocalExecutor executes safelisted actions against the local filesystem,
// shell, and network.
type LocalExecutor struct {
	workDir string
	client  *http.Client
}

// NewLocalExecutor creates an executor rooted at the given working directory.
func NewLocalExecutor(workDir string) *LocalExecutor {
	return &LocalExecutor{
		workDir: workDir,
		client:  &http.Client{Timeout: fetchTimeout},
	}
}

// Execute runs an action by name. Unknown actions fail without side effects.
func (e *LocalExecutor) Execute(ctx context.Context, action string, args map[string]any) Result {
	if ctx.Err() != nil {
		return Result{Error: ctx.Err().Error()}
	}

	switch action {
	case ActionReadFile:
		return e.readFile(args)
	case ActionWriteFile:
		return e.writeFile(args)
	case ActionEditFile:
		return e.editFile(args)
	case ActionListDir:
		return e.listDir(args)
	case ActionGlob:
		return e.glob(args)
	case ActionGrep:
		return e.grep(ctx, args)
	case ActionShell:
		return e.shell(ctx, args)
	case ActionFetchURL:
		return e.fetchURL(ctx, args)
	default:
		return Result{Error: fmt.Sprintf("unknown action: %s", action)}
	}
}

func (e *LocalExecutor) readFile(args map[string]any) Result {
	path, ok := stringArg(args, "path")
	if !ok {
		return Result{Error: "read_file requires a path argument"}
	}

	content, err := os.ReadFile(e.resolvePath(path))
	if err != nil {
		return Result{Error: fmt.Sprintf("read file: %v", err)}
	}

	return Result{OK: true, Output: truncate(string(content))}
}

func (e *LocalExecutor) writeFile(args map[string]any) Result {
	path, ok := stringArg(args, "path")
	if !ok {
		return Result{Error: "write_file requires a path argument"}
	}
	content, _ := stringArg(args, "content")

	resolved := e.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return Result{Error: fmt.Sprintf("create directory: %v", err)}
	}
	if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
		return Result{Error: fmt.Sprintf("write file: %v", err)}
	}

	return Result{OK: true, Output: fmt.Sprintf("wrote %d bytes to %s", len(content), path)}
}

func (e *LocalExecutor) editFile(args map[string]any) Result {
	path, ok := stringArg(args, "path")
	if !ok {
		return Result{Error: "edit_file requires a path argument"}
	}
	oldStr, ok := stringArg(args, "old")
	if !ok || oldStr == "" {
		return Result{Error: "edit_file requires a non-empty old argument"}
	}
	newStr, _ := stringArg(args, "new")

	resolved := e.resolvePath(path)
	content, err := os.ReadFile(resolved)
	if err != nil {
		return Result{Error: fmt.Sprintf("read file: %v", err)}
	}

	contentStr := string(content)
	count := strings.Count(contentStr, oldStr)
	if count == 0 {
		return Result{Error: "old text not found in file"}
	}
	if count > 1 {
		return Result{Error: fmt.Sprintf("old text found %d times; it must be unique", count)}
	}

	updated := strings.Replace(contentStr, oldStr, newStr, 1)
	if err := os.WriteFile(resolved, []byte(updated), 0644); err != nil {
		return Result{Error: fmt.Sprintf("write file: %v", err)}
	}

	return Result{OK: true, Output: "edit applied"}
}

func (e *LocalExecutor) listDir(args map[string]any) Result {
	path, ok := stringArg(args, "path")
	if !ok {
		path = "."
	}

	entries, err := os.ReadDir(e.resolvePath(path))
	if err != nil {
		return Result{Error: fmt.Sprintf("read directory: %v", err)}
	}

	var b strings.Builder
	for _, entry := range entries {
		if entry.IsDir() {
			fmt.Fprintf(&b, "%s/\n", entry.Name())
		} else {
			fmt.Fprintf(&b, "%s\n", entry.Name())
		}
	}

	return Result{OK: true, Output: truncate(b.String())}
}

func (e *LocalExecutor) glob(args map[string]any) Result {
	pattern, ok := stringArg(args, "pattern")
	if !ok {
		return Result{Error: "glob requires a pattern argument"}
	}

	root := e.workDir
	if path, ok := stringArg(args, "path"); ok {
		root = e.resolvePath(path)
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}

		matched, _ := filepath.Match(filepath.Base(pattern), d.Name())
		if matched {
			relPath, _ := filepath.Rel(root, path)
			matches = append(matches, relPath)
		}
		return nil
	})
	if err != nil {
		return Result{Error: fmt.Sprintf("glob: %v", err)}
	}

	if len(matches) == 0 {
		return Result{OK: true, Output: "no files matched"}
	}
	return Result{OK: true, Output: truncate(strings.Join(matches, "\n"))}
}

func (e *LocalExecutor) grep(ctx context.Context, args map[string]any) Result {
	pattern, ok := stringArg(args, "pattern")
	if !ok {
		return Result{Error: "grep requires a pattern argument"}
	}

	cmdArgs := []string{"--color=never", "-n", pattern}
	searchPath := e.workDir
	if path, ok := stringArg(args, "path"); ok {
		searchPath = e.resolvePath(path)
	}
	cmdArgs = append(cmdArgs, searchPath)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "rg", cmdArgs...)
	output, _ := cmd.CombinedOutput() // rg returns non-zero on no match

	if len(output) == 0 {
		return Result{OK: true, Output: "no matches found"}
	}
	return Result{OK: true, Output: truncate(string(output))}
}

func (e *LocalExecutor) shell(ctx context.Context, args map[string]any) Result {
	command, ok := stringArg(args, "command")
	if !ok || command == "" {
		return Result{Error: "shell requires a command argument"}
	}

	timeout := defaultShellTimeout
	if ms, ok := intArg(args, "timeout_ms"); ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = e.workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Result{Error: fmt.Sprintf("command timed out after %v:\n%s", timeout, truncate(string(output)))}
		}
		return Result{Error: fmt.Sprintf("%s\n%v", truncate(string(output)), err)}
	}

	return Result{OK: true, Output: truncate(string(output))}
}

func (e *LocalExecutor) fetchURL(ctx context.Context, args map[string]any) Result {
	url, ok := stringArg(args, "url")
	if !ok || url == "" {
		return Result{Error: "fetch_url requires a url argument"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Error: fmt.Sprintf("build request: %v", err)}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{Error: fmt.Sprintf("fetch: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return Result{Error: fmt.Sprintf("read body: %v", err)}
	}

	if resp.StatusCode >= 400 {
		return Result{Error: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body)))}
	}
	return Result{OK: true, Output: truncate(string(body))}
}

// resolvePath makes relative paths relative to the working directory.
func (e *LocalExecutor) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.workDir, path)
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case float64: // JSON numbers decode as float64
		return int(v), true
	default:
		return 0, false
	}
}

func truncate(s string) string {
	if len(s) > maxOutputBytes {
		return s[:maxOutputBytes] + "\n... (output truncated)"
	}
	return s
}

// Verify LocalExecutor implements Executor at compile time.
var _ Executor = (*LocalExecutor)(nil)
