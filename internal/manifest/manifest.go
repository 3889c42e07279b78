// Package manifest discovers project verification scripts from package.json
// or taskweave.yaml and watches them for changes.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ErrNoManifest is returned by Load when the directory carries neither a
// package.json nor a taskweave.yaml.
var ErrNoManifest = errors.New("no project manifest found")

// Source identifies which manifest file the scripts came from.
type Source string

const (
	SourcePackageJSON Source = "package.json"
	SourceTaskweave   Source = "taskweave.yaml"
)

// Script names checked during verification, in priority order. A preflight
// script supersedes the rest.
const (
	ScriptPreflight = "preflight"
)

// verificationOrder is the fallback sequence when no preflight script exists.
var verificationOrder = []string{"build", "typecheck", "lint", "test"}

// Command is a single runnable verification step.
type Command struct {
	// Name is the script name as declared in the manifest.
	Name string
	// Run is the shell command line to execute.
	Run string
}

// Manifest holds the scripts declared by a project.
type Manifest struct {
	// Source is the file the scripts were read from.
	Source Source
	// Path is the absolute path of that file.
	Path string

	scripts map[string]string
}

// packageJSON is the subset of package.json we care about.
type packageJSON struct {
	Scripts map[string]string `json:"scripts"`
}

// taskweaveYAML is the subset of taskweave.yaml we care about.
type taskweaveYAML struct {
	Scripts map[string]string `yaml:"scripts"`
}

// Load reads the manifest for dir. package.json wins when both files exist.
// Returns ErrNoManifest when neither is present.
func Load(dir string) (*Manifest, error) {
	pkgPath := filepath.Join(dir, "package.json")
	if data, err := os.ReadFile(pkgPath); err == nil {
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", pkgPath, err)
		}
		return &Manifest{Source: SourcePackageJSON, Path: pkgPath, scripts: pkg.Scripts}, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", pkgPath, err)
	}

	yamlPath := filepath.Join(dir, "taskweave.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		var tw taskweaveYAML
		if err := yaml.Unmarshal(data, &tw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
		}
		return &Manifest{Source: SourceTaskweave, Path: yamlPath, scripts: tw.Scripts}, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", yamlPath, err)
	}

	return nil, ErrNoManifest
}

// HasScript reports whether the manifest declares the named script.
func (m *Manifest) HasScript(name string) bool {
	_, ok := m.scripts[name]
	return ok
}

// Script returns the command line for the named script.
func (m *Manifest) Script(name string) (string, bool) {
	cmd, ok := m.scripts[name]
	return cmd, ok
}

// VerificationCommands returns the commands a verification pass should run.
// A preflight script supersedes everything else. Otherwise build, typecheck,
// lint, and test run in that order, each preferring its ":ci" variant when
// one is declared.
func (m *Manifest) VerificationCommands() []Command {
	if run, ok := m.scripts[ScriptPreflight]; ok {
		return []Command{{Name: ScriptPreflight, Run: m.commandLine(ScriptPreflight, run)}}
	}

	var cmds []Command
	for _, name := range verificationOrder {
		ci := name + ":ci"
		if run, ok := m.scripts[ci]; ok {
			cmds = append(cmds, Command{Name: ci, Run: m.commandLine(ci, run)})
			continue
		}
		if run, ok := m.scripts[name]; ok {
			cmds = append(cmds, Command{Name: name, Run: m.commandLine(name, run)})
		}
	}
	return cmds
}

// commandLine maps a script entry to the shell line that runs it. package.json
// scripts go through npm so that node_modules binaries resolve; taskweave.yaml
// entries are taken verbatim.
func (m *Manifest) commandLine(name, raw string) string {
	if m.Source == SourcePackageJSON {
		return "npm run " + name
	}
	return raw
}

// Watcher reloads the manifest when its file changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching the manifest's directory and invokes onChange with
// the freshly loaded manifest after each write to the manifest file. Load
// errors during reload are ignored; the previous manifest stays in effect.
func (m *Manifest) Watch(onChange func(*Manifest)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save and
	// a file watch dies with the old inode.
	if err := fw.Add(filepath.Dir(m.Path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(m.Path), err)
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	go w.loop(m.Path, onChange)
	return w, nil
}

func (w *Watcher) loop(path string, onChange func(*Manifest)) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if reloaded, err := Load(filepath.Dir(path)); err == nil {
				onChange(reloaded)
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
