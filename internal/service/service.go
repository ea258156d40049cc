// Package service defines the backend-agnostic task model and gateway contract.
package service

import "context"

// Gateway defines the remote task operations.
// Every call returns an Outcome; gateways never panic or return bare errors.
// Commands and the store never import the transport directly.
type Gateway interface {
	// ListTasks returns tasks matching the criteria in server order.
	// completed == nil means no completion constraint; an empty sortSpec means
	// server default order.
	ListTasks(ctx context.Context, completed *bool, sortSpec string) Outcome[[]Task]

	// GetTask returns a single task.
	GetTask(ctx context.Context, id string) Outcome[Task]

	// CreateTask creates a task and returns the server's representation.
	CreateTask(ctx context.Context, draft Draft) Outcome[Task]

	// UpdateTask replaces the mutable fields of a task.
	UpdateTask(ctx context.Context, id string, draft Draft) Outcome[Task]

	// DeleteTask deletes a task. Success carries true even when nothing was deleted.
	DeleteTask(ctx context.Context, id string) Outcome[bool]
}
