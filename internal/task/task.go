package task

// Task is the canonical representation of one to-do item, ready for
// storage. Date fields are kept as strings in the interchange format's
// own notation (trailing UTC designator stripped) rather than time.Time,
// because the store round-trips them verbatim and never does date math.
type Task struct {
	UID             string   `json:"uid"`
	Text            string   `json:"text"`
	Notes           string   `json:"notes"`
	Completed       bool     `json:"completed"`
	Tags            []string `json:"tags,omitempty"`
	StartDate       string   `json:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty"`
	Priority        int      `json:"priority"`
	PercentComplete int      `json:"percent_complete"`
	Color           string   `json:"color,omitempty"`

	// ParentUID links a subtask to its parent task. After reconciliation
	// it refers to a persisted UID, except for references that pointed
	// outside the imported document, which are kept as-is.
	ParentUID string `json:"parent_uid,omitempty"`

	// ListUID is the owning list. Assigned during reconciliation, never
	// by normalization.
	ListUID string `json:"list_uid"`
}

// List is a named collection of tasks. Deleted lists keep their record
// around (for sync tombstones) but give up their name: name uniqueness
// is enforced only among non-deleted lists.
type List struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Op discriminates Mutation variants.
type Op string

// OpCreateTask is the only mutation an import produces: imports are
// non-destructive and never update tasks that already share a UID.
const OpCreateTask Op = "create-task"

// Mutation is one store change computed by reconciliation. The engine
// owns no persistent state; it returns these for the store to apply.
type Mutation struct {
	Op   Op
	Task Task
}
