package file

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icstask/internal/task"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)

	names, err := s.ListNames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCreateAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := Open(path)
	require.NoError(t, err)

	listUID, err := s.CreateList(ctx, "Groceries")
	require.NoError(t, err)
	require.NotEmpty(t, listUID)

	_, err = s.CreateTask(ctx, task.Task{
		UID:     "milk",
		Text:    "Buy milk",
		Tags:    []string{"errands"},
		ListUID: listUID,
	})
	require.NoError(t, err)

	// A fresh handle sees the committed state.
	s2, err := Open(path)
	require.NoError(t, err)

	names, err := s2.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Groceries"}, names)

	tasks := s2.TasksInList(listUID)
	require.Len(t, tasks, 1)
	assert.Equal(t, "milk", tasks[0].UID)
	assert.Equal(t, "Buy milk", tasks[0].Text)
	assert.Equal(t, []string{"errands"}, tasks[0].Tags)
}

func TestListNamesSkipDeleted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := Open(path)
	require.NoError(t, err)

	uid, err := s.CreateList(ctx, "Old")
	require.NoError(t, err)
	_, err = s.CreateList(ctx, "Current")
	require.NoError(t, err)

	require.NoError(t, s.DeleteList(ctx, uid))

	names, err := s.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Current"}, names)

	// The record itself survives as a tombstone.
	assert.Len(t, s.Lists(), 2)
}

func TestStoreFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.CreateList(ctx, "Groceries")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestGenerateIDUnique(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := s.GenerateID()
		require.NotEmpty(t, id)
		require.False(t, seen[id])
		seen[id] = true
	}
}
