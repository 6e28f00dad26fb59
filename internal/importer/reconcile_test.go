package importer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icstask/internal/task"
)

// sequentialIDs returns a generator producing "gen-1", "gen-2", ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestReconcileAssignsListAndMissingUIDs(t *testing.T) {
	batch := Batch{Tasks: []task.Task{
		{UID: "keep", Text: "has uid"},
		{Text: "needs uid"},
	}}

	muts := reconcile(batch, "list-1", map[string]bool{}, sequentialIDs())

	require.Len(t, muts, 2)
	for _, m := range muts {
		assert.Equal(t, task.OpCreateTask, m.Op)
		assert.Equal(t, "list-1", m.Task.ListUID)
	}
	assert.Equal(t, "keep", muts[0].Task.UID)
	assert.Equal(t, "gen-1", muts[1].Task.UID)
}

func TestReconcileParentForwardReference(t *testing.T) {
	// The child precedes its parent in document order, and the parent's
	// UID is taken in the store, forcing a remap. The child must point
	// at the parent's persisted UID, not the source one.
	batch := Batch{Tasks: []task.Task{
		{UID: "child", Text: "child", ParentUID: "parent"},
		{UID: "parent", Text: "parent"},
	}}

	muts := reconcile(batch, "list-1", map[string]bool{"parent": true}, sequentialIDs())

	require.Len(t, muts, 2)
	assert.Equal(t, "gen-1", muts[1].Task.UID)
	assert.Equal(t, "gen-1", muts[0].Task.ParentUID)
}

func TestReconcilePreservesDanglingParent(t *testing.T) {
	batch := Batch{Tasks: []task.Task{
		{UID: "a", ParentUID: "not-in-this-batch"},
	}}

	muts := reconcile(batch, "list-1", map[string]bool{}, sequentialIDs())

	require.Len(t, muts, 1)
	assert.Equal(t, "not-in-this-batch", muts[0].Task.ParentUID)
}

func TestReconcileKeepsDocumentOrder(t *testing.T) {
	batch := Batch{Tasks: []task.Task{
		{UID: "c"}, {UID: "a"}, {UID: "b"},
	}}

	muts := reconcile(batch, "list-1", map[string]bool{}, sequentialIDs())

	require.Len(t, muts, 3)
	assert.Equal(t, "c", muts[0].Task.UID)
	assert.Equal(t, "a", muts[1].Task.UID)
	assert.Equal(t, "b", muts[2].Task.UID)
}

func TestReconcileRerollsCollidingGeneratedID(t *testing.T) {
	batch := Batch{Tasks: []task.Task{{Text: "no uid"}}}

	muts := reconcile(batch, "list-1", map[string]bool{"gen-1": true}, sequentialIDs())

	require.Len(t, muts, 1)
	assert.Equal(t, "gen-2", muts[0].Task.UID)
}

func TestReconcileEmptyBatch(t *testing.T) {
	muts := reconcile(Batch{}, "list-1", map[string]bool{}, sequentialIDs())
	assert.Empty(t, muts)
}
