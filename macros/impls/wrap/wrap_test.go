package wrap

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrokit/internal/diagnostic"
	"macrokit/logr"
	"macrokit/macro"
)

func parse(t *testing.T, src string) (*macro.Env, *ast.TypeSpec, *diagnostic.Diagnostics) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "/app/models/models.go", src, parser.ParseComments)
	require.NoError(t, err)

	var spec *ast.TypeSpec

	ast.Inspect(file, func(n ast.Node) bool {
		if ts, ok := n.(*ast.TypeSpec); ok && spec == nil {
			spec = ts
		}

		return spec == nil
	})
	require.NotNil(t, spec)

	diags := &diagnostic.Diagnostics{}
	env := macro.NewEnv(macro.CallSite{
		ModulePath: "example.com/app/models",
		Dir:        "/app/models",
		Pos:        fset.Position(file.Decls[0].Pos()),
		Fset:       fset,
		File:       file,
		FS:         afero.NewMemMapFs(),
		Sink:       diags,
	}, "impls", "Args", "wrap")

	return env, spec, diags
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestExec(t *testing.T) {
	env, spec, diags := parse(t, `package models

//macro:wrap with = Option
type User struct {
	// Name of the user.
	Name string
	Tags []string
	Ref  *Other
	Meta map[string]any
	Page pkg.Page[int]
}
`)

	frag := Exec(Args{With: "Option"}, spec, env)

	out := squash(frag.String())
	assert.True(t, strings.HasPrefix(out, "type User struct {"), out)
	assert.Contains(t, out, "// Name of the user. Name Option[string]")
	assert.Contains(t, out, "Tags Option[[]string]")
	assert.Contains(t, out, "Ref Option[*Other]")
	assert.Contains(t, out, "Meta Option[map[string]any]")
	assert.Contains(t, out, "Page Option[pkg.Page[int]]")
	assert.NotContains(t, out, "macro:wrap")
	assert.Equal(t, 0, diags.Len())
}

func TestExec_QualifiedWrapperKeepsItem(t *testing.T) {
	env, spec, _ := parse(t, "package models\n\ntype Row struct {\n\tID int64\n}\n")

	frag := Exec(Args{With: "sql.Null"}, spec, env)

	assert.Contains(t, squash(frag.String()), "ID sql.Null[int64]")
	assert.Equal(t, "int64", spec.Type.(*ast.StructType).Fields.List[0].Type.(*ast.Ident).Name)
}

func TestExec_UnsupportedFieldType(t *testing.T) {
	env, spec, diags := parse(t, "package models\n\ntype Hooks struct {\n\tName string\n\tOnSave func() error\n}\n")

	frag := Exec(Args{With: "Option"}, spec, env)

	assert.Contains(t, squash(frag.String()), "Name Option[string]")
	assert.Contains(t, squash(frag.String()), "OnSave func() error")
	require.Len(t, diags.Errors, 1)
	assert.Equal(t, "#[example.com/app/models.wrap] Field type not supported: FuncType", diags.Errors[0].Message)
	assert.Equal(t, 5, diags.Errors[0].Pos.Line)
}

func TestExec_Aborts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		with string
		want string
	}{
		{"not a struct", "package models\n\ntype ID int\n", "Option", "Only named struct supported"},
		{"embedded field", "package models\n\ntype User struct {\n\tBase\n}\n", "Option", "Only named struct supported"},
		{"bad wrapper", "package models\n\ntype User struct {\n\tName string\n}\n", "a.b.c", `with: "a.b.c" is not a type name`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, spec, _ := parse(t, tt.src)

			err := logr.Run(func() { Exec(Args{With: tt.with}, spec, env) })

			var abort *logr.Abort
			require.ErrorAs(t, err, &abort)
			assert.Contains(t, abort.Diagnostic.Message, tt.want)
		})
	}
}

func TestSupported(t *testing.T) {
	tests := map[string]bool{
		"string":          true,
		"time.Time":       true,
		"*User":           true,
		"[]byte":          true,
		"[4]int":          true,
		"map[string]int":  true,
		"List[int]":       true,
		"Pair[int, bool]": true,
		"func()":          false,
		"chan int":        false,
		"struct{}":        false,
		"interface{}":     false,
	}

	for src, want := range tests {
		expr, err := parser.ParseExpr(src)
		require.NoError(t, err, src)
		assert.Equal(t, want, Supported(expr), src)
	}
}
