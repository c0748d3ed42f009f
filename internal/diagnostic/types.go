package diagnostic

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"macrokit/internal/common"
)

// Diagnostics holds all diagnostic information from an expansion.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code classifies the failure.
	Code Code
	// Message is the human-readable description, already labelled by the reporting macro.
	Message string
	// Prefix is the label of the macro instance that raised the diagnostic (if any).
	Prefix string
	// Pos is the source position the diagnostic is attached to (may be invalid).
	Pos token.Position
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
	DiagnosticFatal
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	case DiagnosticFatal:
		return "fatal"
	default:
		return common.UnknownStr
	}
}

// Code classifies diagnostics.
type Code string

const (
	// CodeConfiguration marks malformed or unrecognized macro arguments.
	CodeConfiguration Code = "configuration"
	// CodeResolution marks an implementation file that is missing, unreadable or unparseable.
	CodeResolution Code = "resolution"
	// CodeSchema marks a configuration record that is absent or has an unsupported shape.
	CodeSchema Code = "schema"
	// CodeUnsupported marks a syntax shape outside the closed set a macro handles.
	CodeUnsupported Code = "unsupported"
)

// Add records a diagnostic according to its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticInfo:
		d.Infos = append(d.Infos, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Errors = append(d.Errors, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code Code, message string, pos token.Position) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Pos: pos})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code Code, message string, pos token.Position) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Pos: pos})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code Code, message string, pos token.Position) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Pos: pos})
}

// Report implements the diagnostic sink used by logr.
func (d *Diagnostics) Report(diag Diagnostic) {
	d.Add(diag)
}

// HasErrors returns true if there are any error or fatal diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// HasFatal returns true if any diagnostic aborted an expansion.
func (d *Diagnostics) HasFatal() bool {
	for _, e := range d.Errors {
		if e.Severity == DiagnosticFatal {
			return true
		}
	}

	return false
}

// Len returns the total number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String lists every diagnostic, errors first, one per line.
func (d Diagnostics) String() string {
	var sb strings.Builder

	for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range group {
			sb.WriteString(diag.String())
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if d.Pos.IsValid() {
		return d.Pos.String() + ": " + msg
	}

	if d.Pos.Filename != "" {
		return d.Pos.Filename + ": " + msg
	}

	return msg
}
