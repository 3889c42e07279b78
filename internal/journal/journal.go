// Package journal is an append-only sqlite log of task and run events. It is
// written for later inspection and never read back at runtime, so session
// state stays in memory.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taskweave/taskweave/internal/orchestrator"
	"github.com/taskweave/taskweave/internal/tasklist"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TEXT NOT NULL,
	source TEXT NOT NULL,
	event_type TEXT NOT NULL,
	list_id TEXT,
	task_title TEXT,
	detail TEXT
);
`

// Journal appends events to a sqlite database.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// RecordTaskEvent appends one task list event.
func (j *Journal) RecordTaskEvent(ev tasklist.Event) error {
	title := ""
	if ev.Task != nil {
		title = ev.Task.Title
	}
	return j.insert("tasklist", string(ev.Type), ev.ListID, title, "")
}

// RecordRunEvent appends one orchestrator run event.
func (j *Journal) RecordRunEvent(ev orchestrator.Event) error {
	detail := ev.Message
	if ev.Err != nil {
		detail = fmt.Sprintf("%s: %v", ev.Message, ev.Err)
	}
	return j.insert("run", string(ev.Type), "", ev.Action, detail)
}

func (j *Journal) insert(source, eventType, listID, taskTitle, detail string) error {
	_, err := j.db.Exec(
		`INSERT INTO events (recorded_at, source, event_type, list_id, task_title, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), source, eventType, listID, taskTitle, detail,
	)
	if err != nil {
		return fmt.Errorf("append journal event: %w", err)
	}
	return nil
}

// Listener adapts the journal to the task list event stream. Write failures
// are ignored; journaling never interferes with the session.
func (j *Journal) Listener() tasklist.Listener {
	return func(ev tasklist.Event) {
		_ = j.RecordTaskEvent(ev)
	}
}

// RunListener adapts the journal to the orchestrator event stream.
func (j *Journal) RunListener() orchestrator.EventFunc {
	return func(ev orchestrator.Event) {
		_ = j.RecordRunEvent(ev)
	}
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
