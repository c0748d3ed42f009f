// Package wrap wraps the type of every field of a struct in a generic type.
//
//	//macro:wrap with = Option
//	type User struct {
//		Name string
//	}
//
// expands to
//
//	type User struct {
//		Name Option[string]
//	}
package wrap

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"macrokit/internal/diagnostic"
	"macrokit/macro"
)

// Args configures wrap.
type Args struct {
	// Generic type every field is wrapped in, e.g. Option or sql.Null.
	With string `macro:"with" validate:"required"`
}

// Exec rewrites the struct declared by item.
func Exec(args Args, item *ast.TypeSpec, env *macro.Env) macro.Fragment {
	lg := env.Logr.WithCode(diagnostic.CodeUnsupported)

	st, ok := item.Type.(*ast.StructType)
	if !ok {
		lg.Abort(env.Position(item.Type.Pos()), "Only named struct supported")
	}

	wrapper, ok := typeName(args.With)
	if !ok {
		env.Logr.WithCode(diagnostic.CodeConfiguration).
			AbortCallSite(fmt.Sprintf("with: %q is not a type name", args.With))
	}

	fields := *st.Fields
	fields.List = make([]*ast.Field, 0, len(st.Fields.List))

	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			lg.Abort(env.Position(field.Pos()), "Only named struct supported")
		}

		wrapped := *field
		if Supported(field.Type) {
			wrapped.Type = &ast.IndexExpr{X: wrapper(), Index: field.Type}
		} else {
			lg.EmitError(env.Position(field.Type.Pos()),
				fmt.Sprintf("Field type not supported: %s", strings.TrimPrefix(fmt.Sprintf("%T", field.Type), "*ast.")))
		}

		fields.List = append(fields.List, &wrapped)
	}

	structType := *st
	structType.Fields = &fields

	spec := *item
	spec.Type = &structType

	frag, err := macro.Print(env, &spec)
	if err != nil {
		env.Logr.AbortCallSite(err.Error())
	}

	return frag
}

// Supported reports whether a field of type expr can be wrapped: named,
// qualified, instantiated, pointer, slice, array and map types.
func Supported(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr,
		*ast.StarExpr, *ast.ArrayType, *ast.MapType:
		return true
	default:
		return false
	}
}

// typeName returns a constructor of fresh expressions for a type name of the
// form T or pkg.T.
func typeName(s string) (func() ast.Expr, bool) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) > 2 {
		return nil, false
	}

	for _, p := range parts {
		if !token.IsIdentifier(p) {
			return nil, false
		}
	}

	if len(parts) == 1 {
		return func() ast.Expr { return ast.NewIdent(parts[0]) }, true
	}

	return func() ast.Expr {
		return &ast.SelectorExpr{X: ast.NewIdent(parts[0]), Sel: ast.NewIdent(parts[1])}
	}, true
}
