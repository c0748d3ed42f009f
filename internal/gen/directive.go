package gen

import (
	"go/ast"
	"go/token"
	"strings"
	"unicode"
)

// DirectivePrefix starts every macro directive.
const DirectivePrefix = "//macro:"

// DeriveDirective is the directive name that invokes derive macros.
const DeriveDirective = "derive"

// Directive is one //macro:<name> <args> comment.
type Directive struct {
	Name    string
	Args    string
	Comment *ast.Comment
	// ArgsPos is the position of the first byte of Args.
	ArgsPos token.Pos
	// Decl is the declaration whose doc comment holds the directive, nil
	// for a free-standing directive.
	Decl ast.Decl
	Doc  *ast.CommentGroup
}

// ParseDirective parses c, reporting false when it is not a directive.
func ParseDirective(c *ast.Comment) (Directive, bool) {
	rest, ok := strings.CutPrefix(c.Text, DirectivePrefix)
	if !ok {
		return Directive{}, false
	}

	name, args := rest, ""
	argsStart := len(c.Text)

	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		name = rest[:i]
		tail := rest[i:]
		args = strings.TrimLeftFunc(tail, unicode.IsSpace)
		argsStart = len(DirectivePrefix) + i + len(tail) - len(args)
		args = strings.TrimRightFunc(args, unicode.IsSpace)
	}

	if name == "" {
		return Directive{}, false
	}

	return Directive{
		Name:    name,
		Args:    args,
		Comment: c,
		ArgsPos: c.Slash + token.Pos(argsStart),
	}, true
}

// DeriveNames splits the arguments of a derive directive.
func (d Directive) DeriveNames() []string {
	var names []string
	for _, n := range strings.Split(d.Args, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	return names
}

// Scan returns the directives of file in source order. Directives in the
// doc comment of a top-level declaration are attached to it; directives in
// other comments inside declarations are ignored.
func Scan(file *ast.File) []Directive {
	owners := make(map[*ast.CommentGroup]ast.Decl)
	for _, decl := range file.Decls {
		if doc := declDoc(decl); doc != nil {
			owners[doc] = decl
		}
	}

	var out []Directive
	for _, cg := range file.Comments {
		decl, attached := owners[cg]
		if !attached && insideDecl(file, cg) {
			continue
		}

		for _, c := range cg.List {
			d, ok := ParseDirective(c)
			if !ok {
				continue
			}

			if attached {
				d.Decl, d.Doc = decl, cg
			}

			out = append(out, d)
		}
	}

	return out
}

func declDoc(decl ast.Decl) *ast.CommentGroup {
	switch d := decl.(type) {
	case *ast.GenDecl:
		return d.Doc
	case *ast.FuncDecl:
		return d.Doc
	default:
		return nil
	}
}

func insideDecl(file *ast.File, cg *ast.CommentGroup) bool {
	for _, decl := range file.Decls {
		if cg.Pos() >= decl.Pos() && cg.End() <= decl.End() {
			return true
		}
	}

	return false
}
