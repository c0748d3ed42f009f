package macro

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strconv"

	"github.com/dave/jennifer/jen"
)

// Import is an import required by a Fragment.
type Import struct {
	Name string // explicit name, empty for the default
	Path string
}

// Fragment is generated Go source for top-level declarations, together with
// the imports it needs. It is what a macro substitutes for its invocation.
type Fragment struct {
	Source  []byte
	Imports []Import
}

// Empty reports whether the fragment produces no code.
func (f Fragment) Empty() bool {
	return len(bytes.TrimSpace(f.Source)) == 0
}

// String returns the fragment source.
func (f Fragment) String() string {
	return string(f.Source)
}

// Join concatenates fragments, separating their sources by a blank line and
// merging imports by path.
func Join(frags ...Fragment) Fragment {
	var out Fragment

	seen := make(map[string]bool)

	for _, f := range frags {
		if !f.Empty() {
			if len(out.Source) > 0 {
				out.Source = append(out.Source, '\n', '\n')
			}

			out.Source = append(out.Source, bytes.TrimSpace(f.Source)...)
		}

		for _, imp := range f.Imports {
			if seen[imp.Path] {
				continue
			}

			seen[imp.Path] = true
			out.Imports = append(out.Imports, imp)
		}
	}

	return out
}

// FromSource splits a complete Go file into a Fragment: its imports, and
// everything after them.
func FromSource(src []byte) (Fragment, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "fragment.go", src, parser.ParseComments)
	if err != nil {
		return Fragment{}, fmt.Errorf("parsing generated source: %w", err)
	}

	start := file.Name.End()
	for _, decl := range file.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.IMPORT {
			start = gd.End()
		}
	}

	var imports []Import
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return Fragment{}, fmt.Errorf("import path %s: %w", spec.Path.Value, err)
		}

		imp := Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}

		imports = append(imports, imp)
	}

	offset := fset.Position(start).Offset

	return Fragment{
		Source:  bytes.TrimSpace(src[offset:]),
		Imports: imports,
	}, nil
}

// FromJen renders a jennifer file into a Fragment.
func FromJen(f *jen.File) (Fragment, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return Fragment{}, fmt.Errorf("rendering generated code: %w", err)
	}

	return FromSource(buf.Bytes())
}

// Print prints node, with the comments of the template file that fall inside
// it, as a Fragment. A *ast.TypeSpec is printed as a type declaration.
func Print(env *Env, node ast.Node) (Fragment, error) {
	var comments []*ast.CommentGroup
	if env.File != nil {
		comments = env.File.Comments
	}

	return PrintWithComments(env, node, comments)
}

// PrintWithComments is Print with an explicit comment list, for macros that
// rewrite comments.
func PrintWithComments(env *Env, node ast.Node, comments []*ast.CommentGroup) (Fragment, error) {
	if spec, ok := node.(*ast.TypeSpec); ok {
		node = typeDecl(env.File, spec)
	}

	var buf bytes.Buffer

	cfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	if err := cfg.Fprint(&buf, env.Fset, &printer.CommentedNode{Node: node, Comments: comments}); err != nil {
		return Fragment{}, fmt.Errorf("printing %T: %w", node, err)
	}

	return Fragment{Source: buf.Bytes()}, nil
}

// typeDecl wraps spec in an undocumented type declaration positioned like
// the declaration that holds it in file.
func typeDecl(file *ast.File, spec *ast.TypeSpec) *ast.GenDecl {
	decl := &ast.GenDecl{Tok: token.TYPE, TokPos: spec.Pos(), Specs: []ast.Spec{spec}}
	if file == nil {
		return decl
	}

	for _, d := range file.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}

		for _, s := range gd.Specs {
			if s == spec {
				decl.TokPos = gd.TokPos
				return decl
			}
		}
	}

	return decl
}
