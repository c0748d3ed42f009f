// Package edoc documents struct fields with text assembled from constants.
//
// Every field comment of the form
//
//	//edoc:(Prefix, "-", Version)
//
// is replaced by the concatenation of its elements. String literals are used
// as is, identifiers are looked up among the single-line constant
// declarations of the file named by the from argument.
package edoc

import (
	"bufio"
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"macrokit/internal/diagnostic"
	"macrokit/macro"
)

// FieldDirective introduces an evaluated field comment.
const FieldDirective = "//edoc:"

// Args configures edoc.
type Args struct {
	// Constants file relative to the template directory, without the .go extension.
	From string `macro:"from" validate:"required"`
}

// Exec rewrites the field comments of the struct declared by item.
func Exec(args Args, item *ast.TypeSpec, env *macro.Env) macro.Fragment {
	st, ok := item.Type.(*ast.StructType)
	if !ok {
		env.Logr.WithCode(diagnostic.CodeUnsupported).
			Abort(env.Position(item.Type.Pos()), "Only named struct supported")
	}

	consts := ResolveConsts(env, ConstsPath(env.Dir, args.From))

	replaced := make(map[*ast.Comment]*ast.Comment)

	for _, field := range st.Fields.List {
		if field.Doc == nil {
			continue
		}

		for _, c := range field.Doc.List {
			body, ok := strings.CutPrefix(c.Text, FieldDirective)
			if !ok {
				continue
			}

			text := Concat(env, c.Slash+token.Pos(len(FieldDirective)), body, consts)
			replaced[c] = &ast.Comment{Slash: c.Slash, Text: "// " + text}
		}
	}

	frag, err := macro.PrintWithComments(env, item, rewrite(env.File.Comments, replaced))
	if err != nil {
		env.Logr.AbortCallSite(err.Error())
	}

	return frag
}

// ConstsPath returns the file a from argument refers to.
func ConstsPath(dir, from string) string {
	return filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(from, ".", "/"))+".go")
}

// Concat evaluates the tuple src, found at pos. Unknown identifiers are
// reported and contribute nothing.
func Concat(env *macro.Env, pos token.Pos, src string, consts map[string]string) string {
	lg := env.Logr.WithCode(diagnostic.CodeUnsupported)

	value, err := macro.ParseValue(src)
	if err != nil || value.Kind != macro.TupleValue || len(value.Elems) < 2 {
		lg.Abort(env.Position(pos), "Only tuple supported, maybe you are missing a second element")
	}

	var sb strings.Builder

	for _, elem := range value.Elems {
		switch elem.Kind {
		case macro.StringValue:
			sb.WriteString(elem.Text)
		case macro.IdentValue:
			v, ok := consts[elem.Text]
			if !ok {
				env.Logr.EmitError(env.Position(pos+token.Pos(elem.Offset)),
					fmt.Sprintf("Unresolved const ident %s", elem.Text))
				continue
			}

			sb.WriteString(v)
		default:
			lg.Abort(env.Position(pos+token.Pos(elem.Offset)),
				"Unsupported tuple element, only string literal or ident of a const string")
		}
	}

	return sb.String()
}

// ResolveConsts reads path and evaluates every single-line constant
// declaration in it. Values may be string, bool or rune literals; a rune
// renders as its UTF-8 bytes.
func ResolveConsts(env *macro.Env, path string) map[string]string {
	lg := env.Logr.WithCode(diagnostic.CodeResolution)

	src, err := afero.ReadFile(env.FS, path)
	if err != nil {
		lg.AbortCallSite(fmt.Sprintf("cannot read constants from %s: %v", path, err))
	}

	consts := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(src))
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "const ") {
			continue
		}

		at := token.Position{Filename: path, Line: lineNo, Column: 1}

		name, value, err := evalConst(line)
		if err != nil {
			lg.Abort(at, err.Error())
		}

		consts[name] = value
	}

	if err := scanner.Err(); err != nil {
		lg.AbortCallSite(fmt.Sprintf("reading %s: %v", path, err))
	}

	return consts
}

func evalConst(line string) (string, string, error) {
	if strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(line, "const")), "(") {
		return "", "", fmt.Errorf("grouped const declarations are not supported: `%s`", line)
	}

	file, err := parser.ParseFile(token.NewFileSet(), "", "package p\n"+line, 0)
	if err != nil {
		return "", "", fmt.Errorf("cannot parse `%s`: %w", line, err)
	}

	decl := file.Decls[0].(*ast.GenDecl)
	spec := decl.Specs[0].(*ast.ValueSpec)

	if len(spec.Names) != 1 || len(spec.Values) != 1 {
		return "", "", fmt.Errorf("expected a single constant, received `%s`", line)
	}

	name := spec.Names[0].Name

	switch v := spec.Values[0].(type) {
	case *ast.BasicLit:
		switch v.Kind {
		case token.STRING:
			s, err := strconv.Unquote(v.Value)
			if err != nil {
				return "", "", fmt.Errorf("constant %s: %w", name, err)
			}

			return name, s, nil
		case token.CHAR:
			s, err := strconv.Unquote(v.Value)
			if err != nil {
				return "", "", fmt.Errorf("constant %s: %w", name, err)
			}

			return name, fmt.Sprint([]byte(s)), nil
		}
	case *ast.Ident:
		if v.Name == "true" || v.Name == "false" {
			return name, v.Name, nil
		}
	}

	return "", "", fmt.Errorf("unexpected const expression, expected a string, bool or rune literal, received `%s`", line)
}

func rewrite(groups []*ast.CommentGroup, replaced map[*ast.Comment]*ast.Comment) []*ast.CommentGroup {
	if len(replaced) == 0 {
		return groups
	}

	out := make([]*ast.CommentGroup, 0, len(groups))

	for _, g := range groups {
		changed := false
		list := make([]*ast.Comment, len(g.List))

		for i, c := range g.List {
			list[i] = c
			if r, ok := replaced[c]; ok {
				list[i] = r
				changed = true
			}
		}

		if changed {
			g = &ast.CommentGroup{List: list}
		}

		out = append(out, g)
	}

	return out
}
