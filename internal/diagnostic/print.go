package diagnostic

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	fatalColor   = color.New(color.FgRed, color.Bold)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

func severityLabel(s DiagnosticSeverity) string {
	switch s {
	case DiagnosticFatal:
		return fatalColor.Sprint(s.String())
	case DiagnosticError:
		return errorColor.Sprint(s.String())
	case DiagnosticWarning:
		return warningColor.Sprint(s.String())
	default:
		return infoColor.Sprint(s.String())
	}
}

// Fprint writes every diagnostic to w, errors first, one per line.
// Colouring follows color.NoColor.
func Fprint(w io.Writer, d Diagnostics) error {
	for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range group {
			if _, err := fmt.Fprintf(w, "%s: %s\n", severityLabel(diag.Severity), diag.String()); err != nil {
				return err
			}
		}
	}

	return nil
}
