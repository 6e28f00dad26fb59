package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icstask/internal/task"
)

func TestListLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	uid, err := s.CreateList(ctx, "Groceries")
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	names, err := s.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Groceries"}, names)

	s.DeleteList(uid)

	names, err = s.ListNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Len(t, s.Lists(), 1)
}

func TestTasksInListFiltersByList(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.CreateList(ctx, "A")
	require.NoError(t, err)
	b, err := s.CreateList(ctx, "B")
	require.NoError(t, err)

	_, err = s.CreateTask(ctx, task.Task{UID: "t1", ListUID: a})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, task.Task{UID: "t2", ListUID: b})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, task.Task{UID: "t3", ListUID: a})
	require.NoError(t, err)

	got := s.TasksInList(a)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].UID)
	assert.Equal(t, "t3", got[1].UID)
	assert.Empty(t, s.TasksInList("nope"))
}
