// Package dispatch generates the entry point and registration of a macro
// from its implementation module.
//
// For a macro named wrap it reads <impls>/wrap/wrap.go next to the
// invocation, documents the configuration record found there and emits,
// with jennifer, an exported entry function that parses the invocation and
// forwards to wrap.Exec, plus an init function registering it in
// macro.Default.
package dispatch

import (
	"fmt"
	"go/token"
	"path"

	"github.com/dave/jennifer/jen"
	"github.com/iancoleman/strcase"

	"macrokit/internal/analyze"
	"macrokit/internal/diagnostic"
	"macrokit/internal/docs"
	"macrokit/internal/resolve"
	"macrokit/macro"
)

const (
	macroPkg = "macrokit/macro"
	astPkg   = "go/ast"
)

// Registration selects the macro to generate.
type Registration struct {
	Kind macro.Kind
	// Name is the implementation module, e.g. "wrap".
	Name string
	// Receiver is the go/ast node type an Attr macro receives, e.g. "TypeSpec".
	Receiver string
}

// EntryName is the name of the generated entry function, which is also the
// name Derive macros are registered under.
func (r Registration) EntryName() string {
	return strcase.ToCamel(r.Name)
}

// RegisteredName is the name directives use to invoke the macro.
func (r Registration) RegisteredName() string {
	if r.Kind == macro.Derive {
		return r.EntryName()
	}

	return r.Name
}

// Dispatch generates the entry point of reg. Resolution and schema problems
// abort through env.Logr.
func Dispatch(reg Registration, env *macro.Env) macro.Fragment {
	lg := env.Logr.WithCode(diagnostic.CodeConfiguration)

	if !token.IsIdentifier(reg.Name) {
		lg.AbortCallSite(fmt.Sprintf("macro name %q is not a valid identifier", reg.Name))
	}

	if reg.Kind == macro.Attr && reg.Receiver == "" {
		lg.AbortCallSite(fmt.Sprintf("attribute macro %s needs a receiver", reg.Name))
	}

	module := path.Join(env.ImplsModule, reg.Name)

	file := resolve.Resolve(env, env.ImplsModule, reg.Name)
	fields := analyze.ExtractFields(env.Fset, file, env.ArgsIdent, module, env.Logr)
	block := docs.Render(reg.Name, reg.Kind, fields)

	f := jen.NewFilePathName(env.ModulePath, env.PackageName())
	implPkg := path.Join(env.ModulePath, module)
	f.ImportName(macroPkg, "macro")
	f.ImportName(implPkg, reg.Name)

	for _, line := range block.Lines() {
		if line == "" {
			line = "//"
		}

		f.Comment(line)
	}

	f.Add(entry(reg, implPkg, env.ArgsIdent))
	f.Line()

	values := jen.Dict{
		jen.Id("Name"):  jen.Lit(reg.RegisteredName()),
		jen.Id("Ident"): jen.Lit(reg.Name),
		jen.Id("Kind"):  jen.Qual(macroPkg, reg.Kind.String()),
		jen.Id("Doc"):   jen.Lit(block.String()),
	}
	values[jen.Id(reg.Kind.String())] = jen.Id(reg.EntryName())

	f.Func().Id("init").Params().Block(
		jen.Qual(macroPkg, "Register").Call(jen.Qual(macroPkg, "Registration").Values(values)),
	)

	frag, err := macro.FromJen(f)
	if err != nil {
		lg.AbortCallSite(fmt.Sprintf("generating entry point of %s: %v", reg.Name, err))
	}

	return frag
}

func entry(reg Registration, implPkg, argsIdent string) *jen.Statement {
	fragment := jen.Qual(macroPkg, "Fragment")
	env := jen.Id("env").Op("*").Qual(macroPkg, "Env")
	fail := jen.If(jen.Err().Op("!=").Nil()).Block(
		jen.Return(jen.Qual(macroPkg, "Fragment").Values(), jen.Err()),
	)

	parseArgs := func(src string) jen.Code {
		return jen.List(jen.Id("cfg"), jen.Err()).Op(":=").
			Qual(macroPkg, "ParseArgs").Types(jen.Qual(implPkg, argsIdent)).Call(jen.Id(src))
	}
	parseItem := func(receiver string) jen.Code {
		return jen.List(jen.Id("node"), jen.Err()).Op(":=").
			Qual(macroPkg, "ParseItem").Types(jen.Op("*").Qual(astPkg, receiver)).Call(jen.Id("item"))
	}

	fn := jen.Func().Id(reg.EntryName())

	switch reg.Kind {
	case macro.Func:
		return fn.Params(jen.Id("args").String(), env).Params(fragment, jen.Error()).Block(
			parseArgs("args"),
			fail,
			jen.Line(),
			jen.Return(jen.Qual(implPkg, "Exec").Call(jen.Id("cfg"), jen.Id("env")), jen.Nil()),
		)
	case macro.Attr:
		return fn.Params(jen.Id("attr").String(), jen.Id("item").Qual(astPkg, "Decl"), env).Params(fragment, jen.Error()).Block(
			parseArgs("attr"),
			fail,
			jen.Line(),
			parseItem(reg.Receiver),
			fail,
			jen.Line(),
			jen.Return(jen.Qual(implPkg, "Exec").Call(jen.Id("cfg"), jen.Id("node"), jen.Id("env")), jen.Nil()),
		)
	default:
		return fn.Params(jen.Id("item").Qual(astPkg, "Decl"), env).Params(fragment, jen.Error()).Block(
			parseItem("TypeSpec"),
			fail,
			jen.Line(),
			jen.Return(jen.Qual(implPkg, "Exec").Call(jen.Id("node"), jen.Id("env")), jen.Nil()),
		)
	}
}
