// Package diag defines the diagnostic value type threaded through every
// pipeline stage. Diagnostics are accumulated, never used as Go errors.
package diag

import "fmt"

// Severity classifies a Diagnostic. Only Error affects the exit status.
type Severity int

const (
	// Error suppresses output emission at the end of the pipeline.
	Error Severity = iota
	// Warning never affects exit status.
	Warning
	// Note never affects exit status.
	Note
)

// String renders the severity the way it appears in a diagnostic line.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem, with optional source position and hint.
type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int
	Col      int
	Hint     string
	File     string
}

// String formats the diagnostic as "file:line[:col]: SEV: message  (hint: H)".
func (d Diagnostic) String() string {
	var loc string
	if d.File != "" {
		loc += d.File + ":"
	}
	if d.Line > 0 {
		loc += fmt.Sprintf("%d", d.Line)
		if d.Col > 0 {
			loc += fmt.Sprintf(":%d", d.Col)
		}
	}
	if loc != "" {
		loc += ": "
	}
	core := fmt.Sprintf("%s: %s", d.Severity, d.Message)
	if d.Hint != "" {
		core += fmt.Sprintf("  (hint: %s)", d.Hint)
	}
	return loc + core
}

// Errorf builds an error-severity diagnostic at the given position.
func Errorf(line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}

// Warningf builds a warning-severity diagnostic at the given position.
func Warningf(line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}

// Notef builds a note-severity diagnostic at the given position.
func Notef(line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Note, Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}

// WithHint attaches a hint to a diagnostic and returns the updated value.
func WithHint(d Diagnostic, hint string) Diagnostic {
	d.Hint = hint
	return d
}

// List is an accumulated diagnostic list. Stages return one alongside their
// result; the driver concatenates lists from every stage.
type List []Diagnostic

// HasErrors reports whether any diagnostic in the list is error-severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// WithFile returns a copy of the list with File set on every entry that
// doesn't already have one.
func (l List) WithFile(file string) List {
	out := make(List, len(l))
	for i, d := range l {
		if d.File == "" {
			d.File = file
		}
		out[i] = d
	}
	return out
}
