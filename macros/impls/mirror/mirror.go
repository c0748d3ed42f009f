// Package mirror extends a struct with one string field per file of a folder
// and generates a loader filling them from an fs.FS.
package mirror

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dave/jennifer/jen"
	"github.com/iancoleman/strcase"
	"github.com/spf13/afero"

	"macrokit/internal/diagnostic"
	"macrokit/macro"
)

// FieldTag is the struct tag key naming the file a field mirrors.
const FieldTag = "mirror"

// Args configures mirror.
type Args struct {
	// Folder to mirror, relative to the template directory.
	Folder string `macro:"folder" validate:"required"`
	// Glob pattern file names must match.
	Pattern string `macro:"pattern"`
}

// File is a mirrored file and the field holding it.
type File struct {
	Name  string
	Field string
}

// Exec adds the fields of args.Folder to the struct declared by item.
func Exec(args Args, item *ast.TypeSpec, env *macro.Env) macro.Fragment {
	st, ok := item.Type.(*ast.StructType)
	if !ok || item.TypeParams != nil {
		env.Logr.WithCode(diagnostic.CodeUnsupported).
			Abort(env.Position(item.Type.Pos()), "Only named struct supported")
	}

	files := Scan(env, args)

	taken := make(map[string]bool)
	for _, f := range st.Fields.List {
		for _, n := range f.Names {
			taken[n.Name] = true
		}
	}

	fields := *st.Fields
	fields.List = append([]*ast.Field(nil), st.Fields.List...)

	var mirrored []File

	for _, f := range files {
		if taken[f.Field] {
			env.Logr.EmitCallSiteError(fmt.Sprintf("field %s of %s already exists", f.Field, f.Name))
			continue
		}

		taken[f.Field] = true
		mirrored = append(mirrored, f)

		fields.List = append(fields.List, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(f.Field)},
			Type:  ast.NewIdent("string"),
			Tag:   &ast.BasicLit{Kind: token.STRING, Value: "`" + FieldTag + ":" + strconv.Quote(f.Name) + "`"},
		})
	}

	structType := *st
	structType.Fields = &fields

	spec := *item
	spec.Type = &structType

	decl, err := macro.Print(env, &spec)
	if err != nil {
		env.Logr.AbortCallSite(err.Error())
	}

	loader, err := macro.FromJen(generate(jen.NewFilePathName(env.ModulePath, env.PackageName()), item.Name.Name, mirrored))
	if err != nil {
		env.Logr.AbortCallSite(fmt.Sprintf("generating loader of %s: %v", item.Name.Name, err))
	}

	return macro.Join(decl, loader)
}

// Scan lists the files of args.Folder matching args.Pattern, sorted by name.
// Subdirectories and names that do not form an identifier are reported and
// skipped.
func Scan(env *macro.Env, args Args) []File {
	dir := filepath.Join(env.Dir, filepath.FromSlash(args.Folder))

	entries, err := afero.ReadDir(env.FS, dir)
	if err != nil {
		env.Logr.WithCode(diagnostic.CodeResolution).
			AbortCallSite(fmt.Sprintf("cannot read folder %s: %v", dir, err))
	}

	pattern := args.Pattern
	if pattern == "" {
		pattern = "*"
	}

	if !doublestar.ValidatePattern(pattern) {
		env.Logr.WithCode(diagnostic.CodeConfiguration).
			AbortCallSite(fmt.Sprintf("pattern: invalid glob %q", pattern))
	}

	var files []File

	for _, e := range entries {
		name := e.Name()

		if e.IsDir() {
			env.Logr.EmitCallSiteWarning(fmt.Sprintf("skipping %s: only flat folders are mirrored", name))
			continue
		}

		if ok, _ := doublestar.Match(pattern, name); !ok {
			continue
		}

		field := FieldName(name)
		if !token.IsIdentifier(field) || !ast.IsExported(field) {
			env.Logr.EmitCallSiteWarning(fmt.Sprintf("skipping %s: no field name can be derived", name))
			continue
		}

		files = append(files, File{Name: name, Field: field})
	}

	return files
}

// FieldName derives the field of a file name: "user-list.sql" is UserList.
func FieldName(name string) string {
	return strcase.ToCamel(strings.TrimSuffix(name, filepath.Ext(name)))
}

func generate(f *jen.File, name string, files []File) *jen.File {
	fn := "Load" + name

	f.Comment(fmt.Sprintf("%s reads the mirrored files of %s from fsys.", fn, name))
	f.Func().Id(fn).Params(jen.Id("fsys").Qual("io/fs", "FS")).Params(jen.Op("*").Id(name), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Var().Id("out").Id(name)
		g.Line()

		if len(files) > 0 {
			g.Var().Defs(
				jen.Id("data").Index().Byte(),
				jen.Err().Error(),
			)
			g.Line()
		}

		for _, file := range files {
			g.List(jen.Id("data"), jen.Err()).Op("=").Qual("io/fs", "ReadFile").Call(jen.Id("fsys"), jen.Lit(file.Name))
			g.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("loading "+name+": %w"), jen.Err())),
			)
			g.Line()
			g.Id("out").Dot(file.Field).Op("=").String().Call(jen.Id("data"))
			g.Line()
		}

		g.Return(jen.Op("&").Id("out"), jen.Nil())
	})

	return f
}
