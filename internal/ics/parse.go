package ics

import (
	"bytes"
	"errors"
	"strings"

	ical "github.com/arran4/golang-ical"

	appLog "icstask/internal/log"
)

// calNameProperty is the calendar-level display name extension
// (X-WR-CALNAME). Not part of RFC 5545 but emitted by every major
// calendar producer.
const calNameProperty = "X-WR-CALNAME"

// colorProperty is the vendor extension carrying a per-task accent
// color. Unknown X- properties are still collected into
// Record.Extensions so nothing is lost on round-trip.
const colorProperty = "X-ERRANDS-COLOR"

// ParseError reports a byte stream that is not well-formed iCalendar
// syntax. Field semantics are never validated here; a document that
// parses always normalizes.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "ics: parse: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Record is one VTODO component with its fields read into a typed
// optional-field form. String fields hold the raw property value; the
// empty string means the property was absent. Nothing here is
// normalized: numeric fields stay unparsed and dates keep the
// document's own notation.
type Record struct {
	UID         string
	Summary     string
	Description string

	// Status is the raw STATUS token, e.g. "COMPLETED" or
	// "NEEDS-ACTION".
	Status string

	// Categories preserves document order across repeated CATEGORIES
	// properties and within one comma-separated value. Nil when absent.
	Categories []string

	// Start, Due and End are raw DTSTART/DUE/DTEND values.
	Start string
	Due   string
	End   string

	// Priority and PercentComplete are raw, possibly non-numeric.
	Priority        string
	PercentComplete string

	// RelatedTo is the raw RELATED-TO value, a UID reference in the
	// source document's namespace.
	RelatedTo string

	// Color is the vendor color extension, empty when absent.
	Color string

	// Extensions holds every X- property of the component, keyed by
	// property name, for forward compatibility with fields this engine
	// does not interpret.
	Extensions map[string]string
}

// Document is the parsed form of one interchange document: the declared
// calendar name (empty when the document declares none) and its
// task-like components in document order.
type Document struct {
	Name  string
	Todos []Record
}

// Parse parses a raw ICS payload into a Document.
//
// It fails with *ParseError when the stream is not well-formed
// iCalendar syntax. It does not judge field contents, and it skips
// component types other than VTODO (a VCALENDAR mixing events and
// todos imports only the todos).
func Parse(body []byte) (Document, error) {
	var doc Document

	if len(body) == 0 {
		return doc, &ParseError{Err: errors.New("empty document")}
	}
	if err := checkDelimiters(body); err != nil {
		return doc, &ParseError{Err: err}
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return doc, &ParseError{Err: err}
	}

	doc.Name = calendarName(cal)

	for _, comp := range cal.Components {
		todo, ok := comp.(*ical.VTodo)
		if !ok {
			continue
		}
		doc.Todos = append(doc.Todos, parseVTodo(todo))
	}

	appLog.Debug("ics parse completed", "calendar_name", doc.Name, "todo_count", len(doc.Todos))
	return doc, nil
}

// checkDelimiters verifies BEGIN/END balance of the component blocks.
// The underlying library tolerates a stream that ends before
// END:VCALENDAR, so a truncated document has to be rejected here.
// Folded continuation lines start with whitespace and never match a
// delimiter prefix, so no unfolding is needed for this check.
func checkDelimiters(body []byte) error {
	var stack []string

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case hasPrefixFold(line, "BEGIN:"):
			stack = append(stack, strings.TrimSpace(line[len("BEGIN:"):]))
		case hasPrefixFold(line, "END:"):
			name := strings.TrimSpace(line[len("END:"):])
			if len(stack) == 0 {
				return errors.New("END:" + name + " without matching BEGIN")
			}
			top := stack[len(stack)-1]
			if !strings.EqualFold(top, name) {
				return errors.New("END:" + name + " does not close BEGIN:" + top)
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		return errors.New("unterminated component BEGIN:" + stack[len(stack)-1])
	}
	return nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func calendarName(cal *ical.Calendar) string {
	for _, p := range cal.CalendarProperties {
		if p.IANAToken == calNameProperty {
			return p.Value
		}
	}
	return ""
}

func parseVTodo(vt *ical.VTodo) Record {
	var rec Record

	if p := vt.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		rec.UID = p.Value
	}
	if p := vt.GetProperty(ical.ComponentPropertySummary); p != nil {
		rec.Summary = p.Value
	}
	if p := vt.GetProperty(ical.ComponentPropertyDescription); p != nil {
		rec.Description = p.Value
	}
	// Use raw property names for the VTODO-specific fields to avoid
	// depending on constant variants across library versions.
	if p := vt.GetProperty(ical.ComponentProperty("STATUS")); p != nil {
		rec.Status = p.Value
	}
	if p := vt.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		rec.Start = p.Value
	}
	if p := vt.GetProperty(ical.ComponentProperty("DUE")); p != nil {
		rec.Due = p.Value
	}
	if p := vt.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		rec.End = p.Value
	}
	if p := vt.GetProperty(ical.ComponentProperty("PRIORITY")); p != nil {
		rec.Priority = p.Value
	}
	if p := vt.GetProperty(ical.ComponentProperty("PERCENT-COMPLETE")); p != nil {
		rec.PercentComplete = p.Value
	}
	if p := vt.GetProperty(ical.ComponentProperty("RELATED-TO")); p != nil {
		rec.RelatedTo = p.Value
	}

	// CATEGORIES can appear multiple times, each holding a
	// comma-separated list. Collect in document order.
	for _, p := range vt.GetProperties(ical.ComponentProperty("CATEGORIES")) {
		rec.Categories = append(rec.Categories, splitList(p.Value)...)
	}

	// Vendor extensions: keep every X- property verbatim.
	for _, p := range vt.Properties {
		name := strings.ToUpper(p.IANAToken)
		if !strings.HasPrefix(name, "X-") {
			continue
		}
		if rec.Extensions == nil {
			rec.Extensions = make(map[string]string)
		}
		rec.Extensions[name] = p.Value
	}
	rec.Color = rec.Extensions[colorProperty]

	return rec
}

// splitList splits a comma-separated property value, honoring
// backslash-escaped commas (RFC 5545 TEXT escaping). Empty elements are
// dropped.
func splitList(v string) []string {
	var out []string
	var cur strings.Builder
	escaped := false

	flush := func() {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for _, r := range v {
		switch {
		case escaped:
			if r != ',' && r != '\\' && r != ';' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	flush()

	return out
}
