// Package analyze reads Go source for the expander.
//
// It has two halves:
//   - Loader finds the template files of a set of packages, using
//     golang.org/x/tools/go/packages with the template build tag enabled.
//   - ExtractFields walks the configuration record of a macro implementation
//     and returns one FieldDoc per documented field.
//
// Key types:
//   - Template: one parsed template file and the package it belongs to
//   - FieldDoc: field identifier, documentation line and type expression
package analyze
