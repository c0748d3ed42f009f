// Package seanum derives database enum support for a type over string or an
// integer type from the constants declared with it.
//
//	//macro:derive Seanum
//	//seanum:args storage = int
//	type Status int
//
//	const (
//		StatusActive Status = iota
//		StatusArchived
//	)
//
// generates DBEnumName, DBType, String, IsValid, Value and Scan methods, plus
// StatusValues and ParseStatus. Constants sharing a value are rejected.
package seanum

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/iancoleman/strcase"

	"macrokit/internal/diagnostic"
	"macrokit/macro"
)

// HelperDirective introduces the arguments of seanum in the doc of the
// derived type.
const HelperDirective = "//seanum:args"

const (
	StorageString = "string"
	StorageInt    = "int"

	DefaultDBType = "Enum"
)

const driverPkg = "database/sql/driver"

// Args configures seanum.
type Args struct {
	// How values are stored: string stores constant names, int stores numeric values.
	Storage string `macro:"storage" validate:"omitempty,oneof=string int"`
	// Database type reported by DBType.
	DBType string `macro:"db_type"`
}

var integers = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
}

// Exec derives the enum methods of item.
func Exec(item *ast.TypeSpec, env *macro.Env) macro.Fragment {
	lg := env.Logr.WithCode(diagnostic.CodeUnsupported)
	name := item.Name.Name

	base, ok := item.Type.(*ast.Ident)
	if !ok || (base.Name != "string" && !integers[base.Name]) {
		lg.Abort(env.Position(item.Type.Pos()),
			fmt.Sprintf("%s must be defined over string or an integer type, found %s", name, typeKind(item.Type)))
	}

	if item.TypeParams != nil {
		lg.Abort(env.Position(item.TypeParams.Pos()), "generic types are not supported")
	}

	args, ok := helperArgs(env, item)
	if !ok {
		return macro.Fragment{}
	}

	if args.Storage == StorageInt && !integers[base.Name] {
		env.Logr.WithCode(diagnostic.CodeConfiguration).
			EmitError(env.Position(item.Pos()), fmt.Sprintf("storage int requires an integer type, %s is defined over %s", name, base.Name))

		return macro.Fragment{}
	}

	variants := Variants(env.File, name)
	if len(variants) == 0 {
		env.Logr.EmitWarning(env.Position(item.Pos()), fmt.Sprintf("no constants of type %s declared in %s", name, env.Position(item.Pos()).Filename))
	}

	if aliases := Aliases(env.Fset, env.File, variants); len(aliases) > 0 {
		for _, a := range aliases {
			lg.EmitError(env.Position(a.Pos), fmt.Sprintf("constant %s repeats the value of %s", a.Name, a.Of))
		}

		return macro.Fragment{}
	}

	frag, err := macro.FromJen(generate(jen.NewFilePathName(env.ModulePath, env.PackageName()), name, base.Name, args, variants))
	if err != nil {
		env.Logr.AbortCallSite(fmt.Sprintf("generating %s: %v", name, err))
	}

	return frag
}

// helperArgs parses the helper directive of item. Argument problems are
// reported and ok is false.
func helperArgs(env *macro.Env, item *ast.TypeSpec) (Args, bool) {
	var (
		found *ast.Comment
		body  string
	)

	for _, cg := range []*ast.CommentGroup{parentDoc(env.File, item), item.Doc} {
		if cg == nil {
			continue
		}

		for _, c := range cg.List {
			b, ok := strings.CutPrefix(c.Text, HelperDirective)
			if !ok {
				continue
			}

			if found != nil {
				env.Logr.EmitError(env.Position(c.Pos()), "duplicate "+HelperDirective+" directive")
				return Args{}, false
			}

			found, body = c, b
		}
	}

	args := Args{}

	if found != nil {
		parsed, err := macro.ParseArgs[Args](body)
		if err != nil {
			report(env, found.Pos()+token.Pos(len(HelperDirective)), err)
			return Args{}, false
		}

		args = parsed
	}

	if args.Storage == "" {
		args.Storage = StorageString
	}

	if args.DBType == "" {
		args.DBType = DefaultDBType
	}

	return args, true
}

func report(env *macro.Env, at token.Pos, err error) {
	lg := env.Logr.WithCode(diagnostic.CodeConfiguration)

	cerr, ok := err.(*macro.ConfigError)
	if !ok {
		lg.EmitError(env.Position(at), err.Error())
		return
	}

	for _, v := range cerr.Violations {
		pos := at
		if v.Offset > 0 {
			pos += token.Pos(v.Offset)
		}

		lg.EmitError(env.Position(pos), v.Message)
	}
}

func parentDoc(file *ast.File, spec *ast.TypeSpec) *ast.CommentGroup {
	if file == nil {
		return nil
	}

	for _, d := range file.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}

		for _, s := range gd.Specs {
			if s == spec {
				return gd.Doc
			}
		}
	}

	return nil
}

// Variants returns, in declaration order, the constants of file whose type
// is typeName, including those inheriting it through an implicit repetition
// inside a const group.
func Variants(file *ast.File, typeName string) []string {
	var out []string

	for _, d := range file.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}

		current := false

		for _, s := range gd.Specs {
			vs := s.(*ast.ValueSpec)

			switch {
			case vs.Type != nil:
				current = isIdent(vs.Type, typeName)
			case len(vs.Values) > 0:
				current = isConversion(vs.Values[0], typeName)
			}

			if !current {
				continue
			}

			for _, n := range vs.Names {
				if n.Name != "_" {
					out = append(out, n.Name)
				}
			}
		}
	}

	return out
}

// Alias is a variant sharing its value with an earlier one.
type Alias struct {
	Name string
	Of   string
	Pos  token.Pos
}

// Aliases returns the variants whose value repeats an earlier variant.
// Values come from type checking file on its own; variants whose value
// cannot be computed are skipped.
func Aliases(fset *token.FileSet, file *ast.File, variants []string) []Alias {
	conf := types.Config{Error: func(error) {}}

	pkg, _ := conf.Check(file.Name.Name, fset, []*ast.File{file}, nil)
	if pkg == nil {
		return nil
	}

	var (
		out  []Alias
		seen = make(map[string]string)
	)

	for _, v := range variants {
		c, ok := pkg.Scope().Lookup(v).(*types.Const)
		if !ok || c.Val().Kind() == constant.Unknown {
			continue
		}

		key := c.Val().ExactString()
		if first, dup := seen[key]; dup {
			out = append(out, Alias{Name: v, Of: first, Pos: c.Pos()})
			continue
		}

		seen[key] = v
	}

	return out
}

func isIdent(expr ast.Expr, name string) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == name
}

func isConversion(expr ast.Expr, name string) bool {
	call, ok := expr.(*ast.CallExpr)
	return ok && len(call.Args) == 1 && isIdent(call.Fun, name)
}

func typeKind(expr ast.Expr) string {
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}

	return strings.TrimPrefix(fmt.Sprintf("%T", expr), "*ast.")
}

func generate(f *jen.File, name, base string, args Args, variants []string) *jen.File {
	recv := jen.Id("e").Id(name)
	known := make([]jen.Code, len(variants))

	for i, v := range variants {
		known[i] = jen.Id(v)
	}

	invalid := func(value jen.Code) jen.Code {
		return jen.Qual("fmt", "Errorf").Call(jen.Lit("invalid "+name+" %v"), value)
	}

	f.Comment(fmt.Sprintf("DBEnumName returns the name of the database enum backing %s.", name))
	f.Func().Params(jen.Id(name)).Id("DBEnumName").Params().String().Block(
		jen.Return(jen.Lit(strcase.ToSnake(name))),
	)

	f.Comment(fmt.Sprintf("DBType returns the database type of %s.", name))
	f.Func().Params(jen.Id(name)).Id("DBType").Params().String().Block(
		jen.Return(jen.Lit(args.DBType)),
	)

	f.Comment(fmt.Sprintf("%sValues returns every %s in declaration order.", name, name))
	f.Func().Id(name + "Values").Params().Index().Id(name).Block(
		jen.Return(jen.Index().Id(name).Values(known...)),
	)

	f.Comment(fmt.Sprintf("IsValid reports whether e is a declared %s.", name))
	f.Func().Params(recv.Clone()).Id("IsValid").Params().Bool().BlockFunc(func(g *jen.Group) {
		if len(known) > 0 {
			g.Switch(jen.Id("e")).Block(jen.Case(known...).Block(jen.Return(jen.True())))
			g.Line()
		}

		g.Return(jen.False())
	})

	f.Comment("String returns the name of the constant e equals.")
	f.Func().Params(recv.Clone()).Id("String").Params().String().BlockFunc(func(g *jen.Group) {
		if len(variants) > 0 {
			g.Switch(jen.Id("e")).BlockFunc(func(g *jen.Group) {
				for _, v := range variants {
					g.Case(jen.Id(v)).Block(jen.Return(jen.Lit(v)))
				}
			})
			g.Line()
		}

		g.Return(jen.Qual("fmt", "Sprintf").Call(jen.Lit(name+"(%v)"), jen.Id(base).Call(jen.Id("e"))))
	})

	f.Comment(fmt.Sprintf("Parse%s returns the %s named s.", name, name))
	f.Func().Id("Parse"+name).Params(jen.Id("s").String()).Params(jen.Id(name), jen.Error()).Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Id(name+"Values").Call()).Block(
			jen.If(jen.Id("v").Dot("String").Call().Op("==").Id("s")).Block(
				jen.Return(jen.Id("v"), jen.Nil()),
			),
		),
		jen.Line(),
		jen.Var().Id("zero").Id(name),
		jen.Line(),
		jen.Return(jen.Id("zero"), invalid(jen.Qual("strconv", "Quote").Call(jen.Id("s")))),
	)

	stored := jen.Id("e").Dot("String").Call()
	if args.Storage == StorageInt {
		stored = jen.Id("int64").Call(jen.Id("e"))
	}

	f.Comment("Value implements driver.Valuer.")
	f.Func().Params(recv.Clone()).Id("Value").Params().Params(jen.Qual(driverPkg, "Value"), jen.Error()).Block(
		jen.If(jen.Op("!").Id("e").Dot("IsValid").Call()).Block(
			jen.Return(jen.Nil(), invalid(jen.Id(base).Call(jen.Id("e")))),
		),
		jen.Line(),
		jen.Return(stored, jen.Nil()),
	)

	f.Comment("Scan implements sql.Scanner.")
	f.Func().Params(jen.Id("e").Op("*").Id(name)).Id("Scan").Params(jen.Id("src").Any()).Error().BlockFunc(func(g *jen.Group) {
		g.Switch(jen.Id("v").Op(":=").Id("src").Assert(jen.Type())).BlockFunc(func(g *jen.Group) {
			if args.Storage == StorageInt {
				g.Case(jen.Int64()).Block(
					jen.Id("parsed").Op(":=").Id(name).Call(jen.Id("v")),
					jen.If(jen.Op("!").Id("parsed").Dot("IsValid").Call()).Block(
						jen.Return(invalid(jen.Id("v"))),
					),
					jen.Line(),
					jen.Op("*").Id("e").Op("=").Id("parsed"),
					jen.Line(),
					jen.Return(jen.Nil()),
				)

				return
			}

			g.Case(jen.String()).Block(
				jen.List(jen.Id("parsed"), jen.Err()).Op(":=").Id("Parse"+name).Call(jen.Id("v")),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
				jen.Line(),
				jen.Op("*").Id("e").Op("=").Id("parsed"),
				jen.Line(),
				jen.Return(jen.Nil()),
			)
			g.Case(jen.Index().Byte()).Block(
				jen.Return(jen.Id("e").Dot("Scan").Call(jen.String().Call(jen.Id("v")))),
			)
		})
		g.Line()
		g.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("cannot scan %T into "+name), jen.Id("src")))
	})

	return f
}
