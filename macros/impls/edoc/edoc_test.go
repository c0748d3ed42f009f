package edoc

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrokit/internal/diagnostic"
	"macrokit/logr"
	"macrokit/macro"
)

const consts = `package models

const A = "foo"
const B bool = true
const R = 'a'

// not a constant: const Z = "z"
var V = "v"
`

func parse(t *testing.T, src string, files map[string]string) (*macro.Env, *ast.TypeSpec, *diagnostic.Diagnostics) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

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
		FS:         fs,
		Sink:       diags,
	}, "impls", "Args", "edoc")

	return env, spec, diags
}

func TestExec(t *testing.T) {
	env, spec, diags := parse(t, `package models

//macro:edoc from = consts
type Info struct {
	//edoc:(A, "-", B)
	Version string
	// Name stays as written.
	Name string
}
`, map[string]string{"/app/models/consts.go": consts})

	frag := Exec(Args{From: "consts"}, spec, env)

	out := frag.String()
	assert.Contains(t, out, "// foo-true\n")
	assert.Contains(t, out, "// Name stays as written.\n")
	assert.NotContains(t, out, "edoc:")
	assert.NotContains(t, out, "macro:edoc")
	assert.Equal(t, 0, diags.Len())

	// The template keeps its comments.
	assert.Equal(t, `//edoc:(A, "-", B)`, spec.Type.(*ast.StructType).Fields.List[0].Doc.List[0].Text)
}

func TestExec_UnresolvedIdent(t *testing.T) {
	env, spec, diags := parse(t, `package models

type Info struct {
	//edoc:(A, "-", C)
	Version string
}
`, map[string]string{"/app/models/sub/consts.go": consts})

	frag := Exec(Args{From: "sub.consts"}, spec, env)

	assert.Contains(t, frag.String(), "// foo-\n")
	require.Len(t, diags.Errors, 1)
	assert.Equal(t, "#[example.com/app/models.edoc] Unresolved const ident C", diags.Errors[0].Message)
	assert.Equal(t, 4, diags.Errors[0].Pos.Line)
}

func TestExec_Aborts(t *testing.T) {
	files := map[string]string{"/app/models/consts.go": consts}

	tests := []struct {
		name string
		src  string
		from string
		want string
	}{
		{
			name: "not a struct",
			src:  "package models\n\ntype ID string\n",
			from: "consts",
			want: "Only named struct supported",
		},
		{
			name: "missing constants file",
			src:  "package models\n\ntype Info struct{}\n",
			from: "nope",
			want: "cannot read constants from " + filepath.Join("/app/models", "nope.go"),
		},
		{
			name: "single element",
			src:  "package models\n\ntype Info struct {\n\t//edoc:(A)\n\tV string\n}\n",
			from: "consts",
			want: "Only tuple supported, maybe you are missing a second element",
		},
		{
			name: "not a tuple",
			src:  "package models\n\ntype Info struct {\n\t//edoc:A\n\tV string\n}\n",
			from: "consts",
			want: "Only tuple supported",
		},
		{
			name: "number element",
			src:  "package models\n\ntype Info struct {\n\t//edoc:(A, 1)\n\tV string\n}\n",
			from: "consts",
			want: "Unsupported tuple element, only string literal or ident of a const string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, spec, _ := parse(t, tt.src, files)

			err := logr.Run(func() { Exec(Args{From: tt.from}, spec, env) })

			var abort *logr.Abort
			require.ErrorAs(t, err, &abort)
			assert.Contains(t, abort.Diagnostic.Message, tt.want)
		})
	}
}

func TestResolveConsts(t *testing.T) {
	env, _, _ := parse(t, "package models\n\ntype T struct{}\n", map[string]string{"/app/models/consts.go": consts})

	got := ResolveConsts(env, "/app/models/consts.go")

	assert.Equal(t, map[string]string{"A": "foo", "B": "true", "R": "[97]"}, got)
}

func TestResolveConsts_Rejects(t *testing.T) {
	tests := map[string]string{
		"grouped":   "const (\n\tA = \"a\"\n)\n",
		"integer":   "const N = 3\n",
		"two names": "const A, B = \"a\", \"b\"\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			env, _, _ := parse(t, "package models\n\ntype T struct{}\n",
				map[string]string{"/app/models/consts.go": "package models\n\n" + content})

			err := logr.Run(func() { ResolveConsts(env, "/app/models/consts.go") })

			var abort *logr.Abort
			require.ErrorAs(t, err, &abort)
			assert.Equal(t, 3, abort.Diagnostic.Pos.Line)
			assert.True(t, strings.HasPrefix(abort.Diagnostic.Message, "#[example.com/app/models.edoc] "))
		})
	}
}

func TestConcat(t *testing.T) {
	env, _, _ := parse(t, "package models\n\ntype T struct{}\n", nil)

	got := Concat(env, token.NoPos, `(A, "-", B)`, map[string]string{"A": "foo", "B": "true"})

	assert.Equal(t, "foo-true", got)
}

func TestConstsPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/app", "consts.go"), ConstsPath("/app", "consts"))
	assert.Equal(t, filepath.Join("/app", "docs", "consts.go"), ConstsPath("/app", "docs.consts"))
}
