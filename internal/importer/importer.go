// Package importer turns iCalendar documents into task-list mutations:
// parse, normalize, resolve the list name, reconcile UIDs and parent
// links, then apply through the store.
package importer

import (
	"context"
	"path/filepath"
	"strings"

	"icstask/internal/ics"
	appLog "icstask/internal/log"
	"icstask/internal/notify"
	"icstask/internal/store"
)

// fallbackListName names a list imported from a document with no
// declared calendar name and no usable file name.
const fallbackListName = "imported"

// SyncTrigger propagates committed changes to a remote counterpart.
// Called exactly once after a successful import, never after a failed
// one. A sync failure does not fail the import: the local commit
// already happened.
type SyncTrigger interface {
	Sync(ctx context.Context) error
}

// NopSync is the SyncTrigger for stores with no remote counterpart.
type NopSync struct{}

func (NopSync) Sync(context.Context) error { return nil }

// ImportError wraps the failure that aborted an import. Cause is a
// *ics.ParseError (nothing was committed) or a *store.Error (mutations
// applied before the failure remain committed; there is no rollback).
type ImportError struct {
	Cause error
}

func (e *ImportError) Error() string { return "import: " + e.Cause.Error() }

func (e *ImportError) Unwrap() error { return e.Cause }

// Result reports what one import committed.
type Result struct {
	ListUID  string
	ListName string
	Created  int
	// Renamed is true when the declared name collided with an existing
	// list and a suffix was appended.
	Renamed bool
}

// Importer runs imports against its injected collaborators. One
// Importer must not run two imports concurrently against the same
// store: reconciliation assumes a stable snapshot for the duration of
// an import.
type Importer struct {
	store    store.Store
	notifier notify.Notifier
	sync     SyncTrigger
}

// New creates an Importer. A nil notifier or sync falls back to a
// no-op implementation.
func New(st store.Store, notifier notify.Notifier, sync SyncTrigger) *Importer {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if sync == nil {
		sync = NopSync{}
	}
	return &Importer{store: st, notifier: notifier, sync: sync}
}

// ImportCalendar imports one ICS document into a newly created list.
//
// The list name is the document's declared calendar name, else
// displayName with its extension stripped, resolved against the
// existing list names so it never collides. Every import targets a
// fresh list; re-importing the same document yields a second,
// suffix-named list rather than merging into the first.
//
// On failure it returns *ImportError and emits one failure event. A
// parse failure commits nothing. A store failure mid-apply stops
// immediately and leaves earlier mutations committed.
func (imp *Importer) ImportCalendar(ctx context.Context, body []byte, displayName string) (*Result, error) {
	doc, err := ics.Parse(body)
	if err != nil {
		return nil, imp.fail("", err)
	}

	batch := newBatch(doc, displayName)

	names, err := imp.store.ListNames(ctx)
	if err != nil {
		return nil, imp.fail(batch.Name, err)
	}
	existing := make(map[string]bool, len(names))
	for _, n := range names {
		existing[n] = true
	}
	resolved := resolveListName(batch.Name, existing)

	listUID, err := imp.store.CreateList(ctx, resolved)
	if err != nil {
		return nil, imp.fail(resolved, err)
	}

	// Imports always target the list just created, so the
	// existing-UID-in-list snapshot is empty.
	muts := reconcile(batch, listUID, map[string]bool{}, imp.store.GenerateID)

	res := &Result{ListUID: listUID, ListName: resolved, Renamed: resolved != batch.Name}
	for _, m := range muts {
		if _, err := imp.store.CreateTask(ctx, m.Task); err != nil {
			appLog.Debug("import aborted mid-apply", "err", err, "list", resolved, "committed", res.Created)
			return nil, imp.fail(resolved, err)
		}
		res.Created++
	}

	appLog.Debug("import committed", "list", resolved, "list_uid", listUID, "created", res.Created, "renamed", res.Renamed)
	imp.notifier.Notify(notify.Event{Kind: notify.ImportCompleted, ListName: resolved, Created: res.Created})

	if err := imp.sync.Sync(ctx); err != nil {
		appLog.Error("post-import sync failed", err, "list", resolved)
	}

	return res, nil
}

func (imp *Importer) fail(listName string, cause error) error {
	err := &ImportError{Cause: cause}
	imp.notifier.Notify(notify.Event{Kind: notify.ImportFailed, ListName: listName, Err: err})
	return err
}

// baseName strips the directory and the extension from a display name,
// so "lists/Groceries.ics" proposes "Groceries".
func baseName(displayName string) string {
	base := filepath.Base(strings.TrimSpace(displayName))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
