package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		text     string
		ok       bool
		name     string
		args     string
		argsFrom int
	}{
		{`//macro:greet name = "x"`, true, "greet", `name = "x"`, 14},
		{"//macro:greet", true, "greet", "", 13},
		{"//macro:wrap \t with = Box  ", true, "wrap", "with = Box", 15},
		{"//macro: greet", false, "", "", 0},
		{"// macro:greet", false, "", "", 0},
		{"//go:generate x", false, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c := &ast.Comment{Slash: 100, Text: tt.text}

			d, ok := ParseDirective(c)
			require.Equal(t, tt.ok, ok)

			if !ok {
				return
			}

			assert.Equal(t, tt.name, d.Name)
			assert.Equal(t, tt.args, d.Args)
			assert.Equal(t, token.Pos(100+tt.argsFrom), d.ArgsPos)
		})
	}
}

func TestDirective_DeriveNames(t *testing.T) {
	d := Directive{Args: "Seanum, Other ,, "}
	assert.Equal(t, []string{"Seanum", "Other"}, d.DeriveNames())
	assert.Empty(t, Directive{}.DeriveNames())
}

func TestScan(t *testing.T) {
	src := `package demo

//macro:free a = 1

// T is documented.
//macro:attr
type T struct {
	//macro:ignored
	X int
}

func F() {
	//macro:ignored
}

//macro:derive Stringer, Other
type (
	U int
)
`
	file, err := parser.ParseFile(token.NewFileSet(), "demo.go", src, parser.ParseComments)
	require.NoError(t, err)

	ds := Scan(file)
	require.Len(t, ds, 3)

	assert.Equal(t, "free", ds[0].Name)
	assert.Nil(t, ds[0].Decl)

	assert.Equal(t, "attr", ds[1].Name)
	assert.Same(t, file.Decls[0], ds[1].Decl)
	assert.NotNil(t, ds[1].Doc)

	assert.Equal(t, DeriveDirective, ds[2].Name)
	assert.Same(t, file.Decls[2], ds[2].Decl)
	assert.Equal(t, []string{"Stringer", "Other"}, ds[2].DeriveNames())
}
