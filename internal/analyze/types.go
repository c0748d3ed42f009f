package analyze

import (
	"go/ast"
	"go/token"
	"path/filepath"
	"strings"
)

// Template is a template file: a Go file whose build constraint requires
// the template tag.
type Template struct {
	PkgPath string // import path of the package, e.g. "macrokit/macros"
	PkgName string
	Path    string // absolute file path
	Fset    *token.FileSet
	File    *ast.File
	Src     []byte
}

// Dir returns the directory holding the template.
func (t *Template) Dir() string {
	return filepath.Dir(t.Path)
}

// Base returns the file name without the .go extension.
func (t *Template) Base() string {
	return strings.TrimSuffix(filepath.Base(t.Path), ".go")
}

// FieldDoc describes one documentation entry of a configuration field.
type FieldDoc struct {
	Ident string
	// Key is the argument name bound by the field's macro tag, if any.
	Key string
	// Doc is one line of the field's documentation, nil when there is none.
	Doc  *string
	Type ast.Expr
}

// Name is the argument name users write: the tag key, or the field name.
func (f FieldDoc) Name() string {
	if f.Key != "" {
		return f.Key
	}

	return f.Ident
}

// TypeString returns the field type with all whitespace removed.
func (f FieldDoc) TypeString() string {
	return TypeString(f.Type)
}
