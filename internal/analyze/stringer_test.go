package analyze

import (
	"go/ast"
	"go/parser"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"string", "string"},
		{"*pkg.Name", "*pkg.Name"},
		{"map[string][]int", "map[string][]int"},
		{"func(a int, b string) error", "func(aint,bstring)error"},
		{"struct{ X int }", "struct{Xint}"},
		{"chan<- int", "chan<-int"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := parser.ParseExpr(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, TypeString(expr))
		})
	}

	assert.Equal(t, "<nil>", TypeString(nil))
}

func TestDocLines(t *testing.T) {
	cg := &ast.CommentGroup{List: []*ast.Comment{
		{Text: "// First."},
		{Text: "//"},
		{Text: "//go:generate stringer"},
		{Text: "//macro:wrap with = Box"},
		{Text: "/* Block\n   comment */"},
		{Text: "//   Indented."},
	}}

	assert.Equal(t, []string{"First.", "Block comment", "Indented."}, DocLines(cg))
	assert.Nil(t, DocLines(nil))
}

func TestIsDirective(t *testing.T) {
	assert.True(t, IsDirective("go:build x"))
	assert.True(t, IsDirective("macro:wrap"))
	assert.True(t, IsDirective("nolint:all"))
	assert.False(t, IsDirective(" go:build x"))
	assert.False(t, IsDirective("plain text"))
}
