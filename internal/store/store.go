package store

import (
	"context"

	"icstask/internal/task"
)

// Store is the persistence collaborator the import engine writes
// through. Implementations must tolerate tasks whose ParentUID refers
// to a task created later in the same import (forward references) or
// to no stored task at all (dangling cross-calendar references).
type Store interface {
	// ListNames returns the names of all non-deleted lists.
	ListNames(ctx context.Context) ([]string, error)

	// CreateList creates a list with the given name and returns its UID.
	// Name uniqueness is the caller's job; the store does not reject
	// duplicates.
	CreateList(ctx context.Context, name string) (string, error)

	// CreateTask persists one task and returns its UID.
	CreateTask(ctx context.Context, t task.Task) (string, error)

	// GenerateID mints an identifier unique across the whole store.
	GenerateID() string
}

// Error reports a store operation that failed to apply.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }
