package importer

import (
	"strconv"
	"strings"

	"icstask/internal/ics"
	"icstask/internal/task"
)

// completedStatus is the interchange format's completed token. The
// comparison is case-sensitive: "completed" is not a completed task.
const completedStatus = "COMPLETED"

// Batch is an ordered normalized task batch plus the originating
// calendar's candidate list name. The name is not yet
// collision-resolved; that happens against the store snapshot.
type Batch struct {
	Name  string
	Tasks []task.Task
}

// newBatch normalizes every parsed record and derives the batch's
// candidate list name: the document's declared calendar name, else
// displayName with its extension stripped, else a fixed fallback.
func newBatch(doc ics.Document, displayName string) Batch {
	name := doc.Name
	if name == "" {
		name = baseName(displayName)
	}
	if name == "" {
		name = fallbackListName
	}

	b := Batch{Name: name, Tasks: make([]task.Task, 0, len(doc.Todos))}
	for _, rec := range doc.Todos {
		b.Tasks = append(b.Tasks, normalizeRecord(rec))
	}
	return b
}

// normalizeRecord maps one raw calendar record onto the task schema.
// It is total: malformed fields default rather than fail, so any record
// that parsed will normalize. It never assigns identifiers or a list;
// UID is passed through raw (possibly empty) and ParentUID keeps the
// source document's reference untouched for reconciliation to remap.
func normalizeRecord(rec ics.Record) task.Task {
	end := rec.Due
	if end == "" {
		end = rec.End
	}

	return task.Task{
		UID:             rec.UID,
		Text:            rec.Summary,
		Notes:           rec.Description,
		Completed:       rec.Status == completedStatus,
		Tags:            append([]string(nil), rec.Categories...),
		StartDate:       trimUTCMarker(rec.Start),
		EndDate:         trimUTCMarker(end),
		Priority:        parseCount(rec.Priority),
		PercentComplete: parseCount(rec.PercentComplete),
		Color:           rec.Color,
		ParentUID:       rec.RelatedTo,
	}
}

// trimUTCMarker strips a trailing "Z" designator from a raw interchange
// date value, leaving the rest of the value as the document wrote it.
func trimUTCMarker(v string) string {
	return strings.TrimSuffix(strings.TrimSpace(v), "Z")
}

// parseCount parses a raw integer field, failing closed: absent,
// non-numeric or negative values all become 0.
func parseCount(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
