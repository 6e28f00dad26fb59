// Package file implements the task store as a single JSON document on
// disk. Every mutation rewrites the file atomically (temp file in the
// same directory, fsync, rename) with 0600 permissions, so a crash
// mid-write never leaves a torn store behind.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"icstask/internal/store"
	"icstask/internal/task"
)

type document struct {
	Lists []task.List `json:"lists"`
	Tasks []task.Task `json:"tasks"`
}

type Store struct {
	path string

	mu  sync.Mutex
	doc document
}

// Open loads the store at path, creating an empty one when the file
// does not exist yet.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, &store.Error{Op: "open", Err: err}
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, &store.Error{Op: "open", Err: err}
	}
	return s, nil
}

func (s *Store) ListNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.doc.Lists))
	for _, l := range s.doc.Lists {
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
	s.doc.Lists = append(s.doc.Lists, task.List{UID: uid, Name: name})
	if err := s.save(); err != nil {
		s.doc.Lists = s.doc.Lists[:len(s.doc.Lists)-1]
		return "", &store.Error{Op: "create list", Err: err}
	}
	return uid, nil
}

func (s *Store) CreateTask(ctx context.Context, t task.Task) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.UID == "" {
		t.UID = uuid.NewString()
	}
	s.doc.Tasks = append(s.doc.Tasks, t)
	if err := s.save(); err != nil {
		s.doc.Tasks = s.doc.Tasks[:len(s.doc.Tasks)-1]
		return "", &store.Error{Op: "create task", Err: err}
	}
	return t.UID, nil
}

func (s *Store) GenerateID() string {
	return uuid.NewString()
}

// DeleteList marks the list deleted, keeping the record around as a
// tombstone while freeing its name for reuse.
func (s *Store) DeleteList(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Lists {
		if s.doc.Lists[i].UID != uid {
			continue
		}
		s.doc.Lists[i].Deleted = true
		if err := s.save(); err != nil {
			s.doc.Lists[i].Deleted = false
			return &store.Error{Op: "delete list", Err: err}
		}
		return nil
	}
	return &store.Error{Op: "delete list", Err: errors.New("no such list: " + uid)}
}

// Lists returns a snapshot copy of all lists, including deleted ones.
func (s *Store) Lists() []task.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task.List(nil), s.doc.Lists...)
}

// TasksInList returns a snapshot copy of the tasks in listUID, in
// creation order.
func (s *Store) TasksInList(listUID string) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []task.Task
	for _, t := range s.doc.Tasks {
		if t.ListUID == listUID {
			out = append(out, t)
		}
	}
	return out
}

// save writes the document atomically. Callers hold s.mu.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icstask-store-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
