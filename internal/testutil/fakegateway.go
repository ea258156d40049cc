// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"todo/internal/service"
)

// FakeGateway is an in-memory implementation of service.Gateway for testing.
type FakeGateway struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID int

	// Now stamps created tasks; defaults to a fixed date.
	Now func() time.Time

	// Failure injection for testing
	ListErr   *service.Failure
	GetErr    *service.Failure
	CreateErr *service.Failure
	UpdateErr *service.Failure
	DeleteErr *service.Failure

	// UpdateSideEffect lets a test simulate the server changing other fields on update.
	UpdateSideEffect func(service.Task) service.Task

	// BeforeListReturn runs after a list result is computed and before it is
	// returned; call is 1-based. Used to reorder concurrent fetches.
	BeforeListReturn func(call int)

	// Recorded list criteria
	ListCalls     int
	LastCompleted *bool
	LastSortSpec  string
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Now: func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) },
	}
}

// AddTask stores a task as given.
func (f *FakeGateway) AddTask(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// Stored returns a copy of the stored tasks.
func (f *FakeGateway) Stored() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// ListTasks implements service.Gateway. Results are in insertion order.
func (f *FakeGateway) ListTasks(ctx context.Context, completed *bool, sortSpec string) service.Outcome[[]service.Task] {
	f.mu.Lock()
	f.ListCalls++
	call := f.ListCalls
	f.LastCompleted = completed
	f.LastSortSpec = sortSpec
	result := []service.Task{}
	for _, t := range f.tasks {
		if completed == nil || t.Completed == *completed {
			result = append(result, t)
		}
	}
	f.mu.Unlock()

	if f.BeforeListReturn != nil {
		f.BeforeListReturn(call)
	}
	if f.ListErr != nil {
		return service.Fail[[]service.Task](f.ListErr)
	}
	return service.Succeed(result)
}

// GetTask implements service.Gateway.
func (f *FakeGateway) GetTask(ctx context.Context, id string) service.Outcome[service.Task] {
	if f.GetErr != nil {
		return service.Fail[service.Task](f.GetErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexOf(id); i >= 0 {
		return service.Succeed(f.tasks[i])
	}
	return service.Fail[service.Task](service.StatusFailure("fetching task", "Not Found", nil))
}

// CreateTask implements service.Gateway.
func (f *FakeGateway) CreateTask(ctx context.Context, draft service.Draft) service.Outcome[service.Task] {
	if f.CreateErr != nil {
		return service.Fail[service.Task](f.CreateErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	task := service.Task{
		ID:          fmt.Sprintf("task-%d", f.nextID),
		Description: draft.Description,
		CreatedDate: f.Now(),
		DueDate:     draft.DueDate,
		Completed:   draft.Completed,
	}
	f.tasks = append(f.tasks, task)
	return service.Succeed(task)
}

// UpdateTask implements service.Gateway.
func (f *FakeGateway) UpdateTask(ctx context.Context, id string, draft service.Draft) service.Outcome[service.Task] {
	if f.UpdateErr != nil {
		return service.Fail[service.Task](f.UpdateErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return service.Fail[service.Task](service.StatusFailure("updating task", "Not Found", nil))
	}
	t := f.tasks[i]
	t.Description = draft.Description
	t.DueDate = draft.DueDate
	t.Completed = draft.Completed
	if f.UpdateSideEffect != nil {
		t = f.UpdateSideEffect(t)
	}
	f.tasks[i] = t
	return service.Succeed(t)
}

// DeleteTask implements service.Gateway. Unknown ids succeed.
func (f *FakeGateway) DeleteTask(ctx context.Context, id string) service.Outcome[bool] {
	if f.DeleteErr != nil {
		return service.Fail[bool](f.DeleteErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexOf(id); i >= 0 {
		f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	}
	return service.Succeed(true)
}

func (f *FakeGateway) indexOf(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
