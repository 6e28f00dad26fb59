// Package notify carries import outcomes to whatever surface the host
// application shows them on. The engine emits exactly one event per
// import attempt.
package notify

import appLog "icstask/internal/log"

type Kind string

const (
	ImportCompleted Kind = "import-completed"
	ImportFailed    Kind = "import-failed"
)

// Event is one import outcome.
type Event struct {
	Kind     Kind
	ListName string // resolved list name, empty when the import failed before naming
	Created  int    // tasks created
	Err      error  // non-nil only for ImportFailed
}

type Notifier interface {
	Notify(Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(Event) {}

// Logger reports events through the application log. The default sink
// for the CLI, where there is no toast to show.
type Logger struct{}

func (Logger) Notify(ev Event) {
	switch ev.Kind {
	case ImportCompleted:
		appLog.Info("import completed", "list", ev.ListName, "created", ev.Created)
	case ImportFailed:
		appLog.Error("import failed", ev.Err, "list", ev.ListName)
	}
}
