// Package store holds the client-side task snapshot and reconciles it with the remote service.
//
// The Store is the only owner of the cached task list, the filter/sort settings
// and the last error. Every operation calls the gateway, then applies its
// reconciliation step under the store lock. Operations may run concurrently;
// apart from fetch (see FetchTasks) the last one to complete wins.
package store

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"todo/internal/service"
)

// Snapshot is the observable state of the store.
type Snapshot struct {
	Tasks    []service.Task
	Err      string // "" when the last operation succeeded
	Settings service.Settings
}

// Store is the authoritative holder of the cached tasks, settings and last error.
type Store struct {
	gw  service.Gateway
	log *slog.Logger

	mu        sync.Mutex
	tasks     []service.Task
	err       string
	settings  service.Settings
	fetchSeq  uint64 // last fetch token issued
	observers map[int]chan Snapshot
	nextObs   int
}

// New creates a store with the given starting settings.
func New(gw service.Gateway, settings service.Settings, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		gw:        gw,
		log:       log,
		tasks:     []service.Task{},
		settings:  settings,
		observers: make(map[int]chan Snapshot),
	}
}

// Tasks returns a copy of the cached tasks.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Err returns the last failure message, or "" if the last completed operation succeeded.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Settings returns the current filter and sort settings.
func (s *Store) Settings() service.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Snapshot returns the full observable state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Lookup returns the cached task with id.
func (s *Store) Lookup(id string) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// ApplySettings replaces all settings at once. It does not refetch.
func (s *Store) ApplySettings(settings service.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == settings {
		return
	}
	s.settings = settings
	s.publishLocked()
}

// FetchTasks lists tasks with the current settings and replaces the cache.
// Each call takes a token; a response for a fetch that is no longer the
// latest issued is dropped, so an older slow fetch cannot overwrite a newer one.
func (s *Store) FetchTasks(ctx context.Context) error {
	s.mu.Lock()
	settings := s.settings
	s.fetchSeq++
	token := s.fetchSeq
	s.mu.Unlock()

	out := s.gw.ListTasks(ctx, settings.Completed(), settings.SortSpec())

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.fetchSeq {
		s.log.Debug("dropping stale fetch", "token", token, "latest", s.fetchSeq)
		_, err := out.Get()
		return err
	}

	tasks, err := out.Get()
	if err != nil {
		s.failLocked("fetch", out.Failure())
		return err
	}
	s.tasks = cloneTasks(tasks)
	s.err = ""
	s.log.Debug("fetched tasks", "count", len(tasks), "sort", settings.SortSpec())
	s.publishLocked()
	return nil
}

// CreateTask creates a task, appends it to the cache and then refetches so the
// list reflects server-side filter and sort order. The returned error covers the
// create call only; a failed refetch is reported through Err.
func (s *Store) CreateTask(ctx context.Context, draft service.Draft) (service.Task, error) {
	out := s.gw.CreateTask(ctx, draft)
	task, err := out.Get()

	s.mu.Lock()
	if err != nil {
		s.failLocked("create", out.Failure())
		s.mu.Unlock()
		return service.Task{}, err
	}
	s.tasks = append(cloneTasks(s.tasks), task)
	s.err = ""
	s.publishLocked()
	s.mu.Unlock()

	_ = s.FetchTasks(ctx)
	return task, nil
}

// UpdateTask updates a task and replaces the cached entry with the server's copy.
func (s *Store) UpdateTask(ctx context.Context, id string, draft service.Draft) (service.Task, error) {
	out := s.gw.UpdateTask(ctx, id, draft)
	task, err := out.Get()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failLocked("update", out.Failure())
		return service.Task{}, err
	}
	s.replaceLocked(id, func(service.Task) service.Task { return task })
	s.err = ""
	s.publishLocked()
	return task, nil
}

// DeleteTask deletes a task and drops it from the cache.
// Deleting an id that is not cached still counts as success.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	out := s.gw.DeleteTask(ctx, id)
	deleted, err := out.Get()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failLocked("delete", out.Failure())
		return err
	}
	if deleted {
		kept := make([]service.Task, 0, len(s.tasks))
		for _, t := range s.tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.tasks = kept
		s.err = ""
		s.publishLocked()
	}
	return nil
}

// ToggleCompletion sends task with its completion flag inverted. On success only
// the cached entry's flag is flipped; the rest of the server response is not adopted.
func (s *Store) ToggleCompletion(ctx context.Context, task service.Task) error {
	draft := service.DraftFrom(task)
	draft.Completed = !task.Completed

	out := s.gw.UpdateTask(ctx, task.ID, draft)
	_, err := out.Get()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failLocked("toggle", out.Failure())
		return err
	}
	s.replaceLocked(task.ID, func(t service.Task) service.Task {
		t.Completed = !t.Completed
		return t
	})
	s.err = ""
	s.publishLocked()
	return nil
}

// RefreshTask reloads a single task and replaces its cached entry. A task that
// is not cached is returned but not inserted, since it may not match the filter.
func (s *Store) RefreshTask(ctx context.Context, id string) (service.Task, error) {
	out := s.gw.GetTask(ctx, id)
	task, err := out.Get()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failLocked("refresh", out.Failure())
		return service.Task{}, err
	}
	s.replaceLocked(id, func(service.Task) service.Task { return task })
	s.err = ""
	s.publishLocked()
	return task, nil
}

// replaceLocked swaps every cached task with id for fn(task).
func (s *Store) replaceLocked(id string, fn func(service.Task) service.Task) {
	next := make([]service.Task, len(s.tasks))
	for i, t := range s.tasks {
		if t.ID == id {
			t = fn(t)
		}
		next[i] = t
	}
	s.tasks = next
}

func (s *Store) failLocked(op string, f *service.Failure) {
	s.err = f.Message
	s.log.Warn("task operation failed", "op", op, "kind", f.Kind.String(), "error", f.Message)
	s.publishLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Tasks:    cloneTasks(s.tasks),
		Err:      s.err,
		Settings: s.settings,
	}
}

func cloneTasks(tasks []service.Task) []service.Task {
	out := make([]service.Task, len(tasks))
	copy(out, tasks)
	return out
}
