// Package gen expands macro directives in template files.
//
// A template is a Go file guarded by the template build tag. Directives are
// line comments of the form //macro:<name> <args>:
//   - free-standing: a function-like macro, replaced by its output
//   - in the doc comment of a declaration: an attribute macro, whose output
//     replaces the declaration
//   - //macro:derive A, B in a type's doc comment: derive macros, whose
//     output is appended after the type
//
// The expanded file is written next to the template with the build
// constraint removed, a generated-code header, merged imports and go/format
// applied.
package gen
