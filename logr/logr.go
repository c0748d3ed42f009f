// Package logr is the diagnostic channel handed to macro implementations.
//
// A Logr labels every message with the macro instance that raised it
// (#[<prefix>] <message>) and either records it in a Sink (Emit*) or stops
// the current expansion (Abort*). Aborts unwind with a panic carrying an
// *Abort value; the expander recovers it with Catch at the invocation
// boundary, so an abort never crosses into other invocations.
package logr

import (
	"fmt"
	"go/token"

	"macrokit/internal/diagnostic"
)

// Sink records recoverable diagnostics.
type Sink interface {
	Report(d diagnostic.Diagnostic)
}

// Logr is a labelled diagnostic channel.
type Logr struct {
	prefix   string
	callSite token.Position
	code     diagnostic.Code
	sink     Sink
}

// New returns a Logr labelled with prefix, reporting into sink.
// callSite is used by the *CallSite* variants.
func New(prefix string, callSite token.Position, sink Sink) *Logr {
	return &Logr{prefix: prefix, callSite: callSite, sink: sink}
}

// Prefix returns the label of the channel.
func (l *Logr) Prefix() string {
	return l.prefix
}

// CallSite returns the position of the invocation the channel is bound to.
func (l *Logr) CallSite() token.Position {
	return l.callSite
}

// WithCode returns a copy of l whose diagnostics carry code.
func (l *Logr) WithCode(code diagnostic.Code) *Logr {
	c := *l
	c.code = code

	return &c
}

// Format wraps msg with the channel prefix.
func (l *Logr) Format(msg string) string {
	return fmt.Sprintf("#[%s] %s", l.prefix, msg)
}

func (l *Logr) diagnostic(sev diagnostic.DiagnosticSeverity, span token.Position, msg string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Severity: sev,
		Code:     l.code,
		Message:  l.Format(msg),
		Prefix:   l.prefix,
		Pos:      span,
	}
}

func (l *Logr) emit(sev diagnostic.DiagnosticSeverity, span token.Position, msg string) {
	if l.sink == nil {
		return
	}

	l.sink.Report(l.diagnostic(sev, span, msg))
}

// EmitError records a recoverable error at span.
func (l *Logr) EmitError(span token.Position, msg string) {
	l.emit(diagnostic.DiagnosticError, span, msg)
}

// EmitWarning records a warning at span.
func (l *Logr) EmitWarning(span token.Position, msg string) {
	l.emit(diagnostic.DiagnosticWarning, span, msg)
}

// EmitCallSiteError records a recoverable error at the invocation.
func (l *Logr) EmitCallSiteError(msg string) {
	l.emit(diagnostic.DiagnosticError, l.callSite, msg)
}

// EmitCallSiteWarning records a warning at the invocation.
func (l *Logr) EmitCallSiteWarning(msg string) {
	l.emit(diagnostic.DiagnosticWarning, l.callSite, msg)
}

// Abort stops the current expansion with a fatal diagnostic at span.
// It does not return.
func (l *Logr) Abort(span token.Position, msg string) {
	panic(&Abort{Diagnostic: l.diagnostic(diagnostic.DiagnosticFatal, span, msg)})
}

// AbortCallSite stops the current expansion with a fatal diagnostic at the invocation.
// It does not return.
func (l *Logr) AbortCallSite(msg string) {
	l.Abort(l.callSite, msg)
}

// Abortf is Abort with a format string.
func (l *Logr) Abortf(span token.Position, format string, args ...any) {
	l.Abort(span, fmt.Sprintf(format, args...))
}
