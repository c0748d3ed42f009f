package docs

import (
	"go/ast"
	"go/format"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrokit/internal/analyze"
	"macrokit/macro"
)

func strPtr(s string) *string { return &s }

func TestRender(t *testing.T) {
	fields := []analyze.FieldDoc{
		{Ident: "with", Doc: strPtr("Wrapper type."), Type: ast.NewIdent("string")},
		{Ident: "limit", Type: &ast.ArrayType{Elt: ast.NewIdent("int")}},
	}

	got := Render("wrap", macro.Attr, fields).String()

	want := strings.Join([]string{
		"wrap procedural macro (Attr).",
		"",
		"# Parameters",
		"",
		"  - `with` - Wrapper type.",
		"    type: `string`",
		"  - `limit` - Not documented",
		"    type: `[]int`",
		"",
		"# Examples",
	}, "\n")

	assert.Equal(t, want, got)
}

func TestRender_Summary(t *testing.T) {
	assert.Equal(t, "wrap procedural macro (Attr).", Render("wrap", macro.Attr, nil).Summary)
	assert.Equal(t, "Seanum procedural macro (Derive).", Render("Seanum", macro.Derive, nil).Summary)
}

func TestRender_NoFields(t *testing.T) {
	b := Render("greet", macro.Func, nil)

	assert.Empty(t, b.Params)
	assert.Equal(t, []string{"greet procedural macro (Func).", "", "# Parameters", "", "# Examples"}, b.Lines())
}

func TestRender_Deterministic(t *testing.T) {
	fields := []analyze.FieldDoc{{Ident: "a", Type: ast.NewIdent("int")}}

	assert.Equal(t, Render("x", macro.Derive, fields), Render("x", macro.Derive, fields))
}

func TestLines_StableUnderGofmt(t *testing.T) {
	fields := []analyze.FieldDoc{
		{Ident: "with", Doc: strPtr("Wrapper type."), Type: ast.NewIdent("string")},
	}

	var src strings.Builder
	src.WriteString("package p\n\n")

	for _, line := range Render("wrap", macro.Attr, fields).Lines() {
		if line == "" {
			src.WriteString("//\n")
		} else {
			src.WriteString("// " + line + "\n")
		}
	}

	src.WriteString("func Wrap() {}\n")

	formatted, err := format.Source([]byte(src.String()))
	require.NoError(t, err)
	assert.Equal(t, src.String(), string(formatted))
}
