// Package diagnostic provides structured warnings, errors and fatal reports
// produced while expanding macros.
//
// Key capabilities:
//   - Severity levels, including fatal aborts that stop a generation pass
//   - Codes classifying failures (configuration, resolution, schema, unsupported)
//   - Source positions and the label of the macro instance that raised them
//   - Coloured terminal rendering of a diagnostic set
package diagnostic
