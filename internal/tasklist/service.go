package tasklist

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskweave/taskweave/pkg/models"
)

// Service owns the single active task list for one session and is its sole
// mutator. It is an instance, not a process-wide singleton, so concurrent
// sessions each carry their own Service.
//
// All mutating operations are silent no-ops on precondition violations:
// multiple call sites may legitimately race to advance the same list, so
// callers check returned values and events instead of relying on errors for
// control flow.
type Service struct {
	mu        sync.Mutex
	active    *models.TaskList
	history   []*models.TaskList
	listeners []Listener
}

// NewService creates an empty task list service.
func NewService() *Service {
	return &Service{}
}

// Subscribe registers a listener for lifecycle events. Events are dispatched
// synchronously in registration order.
func (s *Service) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// emit dispatches an event to all listeners. Callers must not hold the mutex:
// the mutation is already applied, so listeners see consistent state.
func (s *Service) emit(event Event) {
	event.Timestamp = time.Now()
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// CreateTaskList creates a new active task list from the given request and
// task titles. Any existing active list is demoted to interrupted and
// archived first: only one list is ever active per service.
func (s *Service) CreateTaskList(prompt string, titles []string) (*models.TaskList, error) {
	if len(titles) == 0 {
		return nil, fmt.Errorf("task list requires at least one title")
	}
	for i, title := range titles {
		if strings.TrimSpace(title) == "" {
			return nil, fmt.Errorf("task title %d is empty", i)
		}
	}

	s.mu.Lock()
	var interrupted *models.TaskList
	if s.active != nil {
		s.active.Status = models.TaskListInterrupted
		s.history = append(s.history, s.active)
		interrupted = s.active
	}

	now := time.Now()
	list := &models.TaskList{
		ID:        uuid.New().String(),
		Prompt:    prompt,
		Tasks:     newTasks(titles, now),
		Status:    models.TaskListActive,
		CreatedAt: now,
	}
	s.active = list
	s.mu.Unlock()

	if interrupted != nil {
		s.emit(Event{Type: EventCleared, ListID: interrupted.ID})
	}
	s.emit(Event{Type: EventCreated, ListID: list.ID})
	return list, nil
}

// Active returns the active task list, or nil if there is none.
func (s *Service) Active() *models.TaskList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// History returns the archived task lists, oldest first.
func (s *Service) History() []*models.TaskList {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.TaskList, len(s.history))
	copy(out, s.history)
	return out
}

// CurrentTask returns the task at the cursor while the list is active.
// Once the list is terminal no task is current.
func (s *Service) CurrentTask() *models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Service) currentLocked() *models.Task {
	if s.active == nil || s.active.Status != models.TaskListActive {
		return nil
	}
	if s.active.CurrentTaskIndex >= len(s.active.Tasks) {
		return nil
	}
	return s.active.Tasks[s.active.CurrentTaskIndex]
}

// StartCurrentTask transitions the current task from pending to in_progress.
// It is a no-op when there is no current task or it is not pending.
func (s *Service) StartCurrentTask() (*models.Task, bool) {
	s.mu.Lock()
	task := s.currentLocked()
	if task == nil || task.Status != models.TaskStatusPending {
		s.mu.Unlock()
		return nil, false
	}

	now := time.Now()
	task.Status = models.TaskStatusInProgress
	task.StartedAt = &now
	listID := s.active.ID
	s.mu.Unlock()

	s.emit(Event{Type: EventTaskStarted, ListID: listID, Task: task})
	return task, true
}

// CompleteCurrentTask transitions the current task from in_progress to
// completed and advances the cursor. When the cursor passes the last task
// the list becomes completed. No-op when the current task is not in_progress.
func (s *Service) CompleteCurrentTask() (*models.Task, bool) {
	return s.finishCurrent(models.TaskStatusCompleted, "")
}

// FailCurrentTask transitions the current task from in_progress to failed
// with the given error message, and advances the cursor like
// CompleteCurrentTask.
func (s *Service) FailCurrentTask(errMsg string) (*models.Task, bool) {
	return s.finishCurrent(models.TaskStatusFailed, errMsg)
}

func (s *Service) finishCurrent(status models.TaskStatus, errMsg string) (*models.Task, bool) {
	s.mu.Lock()
	task := s.currentLocked()
	if task == nil || task.Status != models.TaskStatusInProgress {
		s.mu.Unlock()
		return nil, false
	}

	now := time.Now()
	task.Status = status
	task.CompletedAt = &now
	task.Error = errMsg
	s.active.CurrentTaskIndex++

	listID := s.active.ID
	listDone := s.active.CurrentTaskIndex >= len(s.active.Tasks)
	if listDone {
		s.active.Status = models.TaskListCompleted
		s.history = append(s.history, s.active)
		s.active = nil
	}
	s.mu.Unlock()

	eventType := EventTaskCompleted
	if status == models.TaskStatusFailed {
		eventType = EventTaskFailed
	}
	s.emit(Event{Type: eventType, ListID: listID, Task: task})
	if listDone {
		s.emit(Event{Type: EventListCompleted, ListID: listID})
	}
	return task, true
}

// InsertTasksAfterCurrent inserts new pending tasks immediately after the
// cursor, so the task currently in progress is never displaced. No-op on an
// empty title list or when no list is active.
func (s *Service) InsertTasksAfterCurrent(titles []string) bool {
	return s.addTasks(titles, false)
}

// AppendTasks appends new pending tasks at the end of the active list.
// No-op on an empty title list or when no list is active.
func (s *Service) AppendTasks(titles []string) bool {
	return s.addTasks(titles, true)
}

func (s *Service) addTasks(titles []string, atEnd bool) bool {
	kept := titles[:0:0]
	for _, title := range titles {
		if strings.TrimSpace(title) != "" {
			kept = append(kept, title)
		}
	}
	if len(kept) == 0 {
		return false
	}

	s.mu.Lock()
	if s.active == nil || s.active.Status != models.TaskListActive {
		s.mu.Unlock()
		return false
	}

	added := newTasks(kept, time.Now())
	if atEnd {
		s.active.Tasks = append(s.active.Tasks, added...)
	} else {
		at := s.active.CurrentTaskIndex + 1
		if at > len(s.active.Tasks) {
			at = len(s.active.Tasks)
		}
		rest := append([]*models.Task{}, s.active.Tasks[at:]...)
		s.active.Tasks = append(append(s.active.Tasks[:at], added...), rest...)
	}
	listID := s.active.ID
	s.mu.Unlock()

	s.emit(Event{Type: EventListUpdated, ListID: listID})
	return true
}

// ClearTaskList archives the active list as interrupted. No-op when no list
// is active.
func (s *Service) ClearTaskList() bool {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return false
	}

	s.active.Status = models.TaskListInterrupted
	s.history = append(s.history, s.active)
	listID := s.active.ID
	s.active = nil
	s.mu.Unlock()

	s.emit(Event{Type: EventCleared, ListID: listID})
	return true
}

// newTasks builds pending tasks from titles.
func newTasks(titles []string, now time.Time) []*models.Task {
	tasks := make([]*models.Task, len(titles))
	for i, title := range titles {
		tasks[i] = &models.Task{
			ID:        uuid.New().String(),
			Title:     title,
			Status:    models.TaskStatusPending,
			CreatedAt: now,
		}
	}
	return tasks
}
