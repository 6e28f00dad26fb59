package importer

import "icstask/internal/task"

// reconcile computes the store mutations for one normalized batch
// targeting listUID.
//
// A task keeps its source UID unless it is empty or already taken in
// the store snapshot; then it gets a fresh identifier from newID.
// Parent references are rewritten from source-document UIDs to
// persisted UIDs; a reference to a UID outside the batch is kept as a
// dangling raw reference rather than dropped.
//
// Mutations come out in the batch's document order, so a child may
// precede its parent. The store contract is that forward parent
// references are tolerated when materializing the tree.
func reconcile(batch Batch, listUID string, existingUIDs map[string]bool, newID func() string) []task.Mutation {
	assigned := make([]task.Task, len(batch.Tasks))
	persisted := make(map[string]string, len(batch.Tasks))

	for i, t := range batch.Tasks {
		sourceUID := t.UID
		if t.UID == "" || existingUIDs[t.UID] {
			t.UID = newID()
			for existingUIDs[t.UID] {
				t.UID = newID()
			}
		}
		t.ListUID = listUID
		if sourceUID != "" {
			persisted[sourceUID] = t.UID
		}
		assigned[i] = t
	}

	muts := make([]task.Mutation, 0, len(assigned))
	for _, t := range assigned {
		if t.ParentUID != "" {
			if mapped, ok := persisted[t.ParentUID]; ok {
				t.ParentUID = mapped
			}
		}
		muts = append(muts, task.Mutation{Op: task.OpCreateTask, Task: t})
	}
	return muts
}
