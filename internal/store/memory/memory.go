// Package memory provides an in-memory Store used by tests and dry
// runs. It mirrors the file store's semantics without touching disk.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"icstask/internal/task"
)

type Store struct {
	mu    sync.Mutex
	lists []task.List
	tasks []task.Task
}

func New() *Store {
	return &Store{}
}

func (s *Store) ListNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.lists))
	for _, l := range s.lists {
		if !l.Deleted {
			names = append(names, l.Name)
		}
	}
	return names, nil
}

func (s *Store) CreateList(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := uuid.NewString()
	s.lists = append(s.lists, task.List{UID: uid, Name: name})
	return uid, nil
}

func (s *Store) CreateTask(ctx context.Context, t task.Task) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
	return t.UID, nil
}

func (s *Store) GenerateID() string {
	return uuid.NewString()
}

// Lists returns a snapshot copy of all lists, including deleted ones.
func (s *Store) Lists() []task.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task.List(nil), s.lists...)
}

// TasksInList returns a snapshot copy of the tasks in listUID, in
// creation order.
func (s *Store) TasksInList(listUID string) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []task.Task
	for _, t := range s.tasks {
		if t.ListUID == listUID {
			out = append(out, t)
		}
	}
	return out
}

// DeleteList marks the named list deleted, freeing its name for reuse.
func (s *Store) DeleteList(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lists {
		if s.lists[i].UID == uid {
			s.lists[i].Deleted = true
		}
	}
}
