// Package macros holds the macros shipped with macrokit.
//
// Importing it registers them in macro.Default:
//
//   - megamac (Func) generates the entry point and registration of a macro
//     from its implementation module.
//   - wrap (Attr) wraps the type of every field of a struct in a generic type.
//   - edoc (Attr) documents struct fields with text assembled from constants.
//   - Seanum (Derive) adds database enum methods to a type from its constants.
//   - mirror (Attr) adds one field per file of a folder to a struct.
//
// Entry points other than megamac are generated from macros.go by
//
//	macrokit expand ./macros
package macros
