package analyze

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrokit/internal/diagnostic"
	"macrokit/logr"
)

const implSrc = `package wrap

// Args configures wrap.
type Args struct {
	// With is the wrapper type.
	With string ` + "`macro:\"with\" validate:\"required\"`" + `

	// Limit first line.
	// Limit second line.
	//nolint:revive
	Limit int

	Lo, Hi float64

	Tags []string // trailing doc
}

type (
	Other struct{ X int }
	NotStruct int
)
`

func parseImpl(t *testing.T, src string) (*token.FileSet, func() []FieldDoc) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "wrap.go", src, parser.ParseComments)
	require.NoError(t, err)

	return fset, func() []FieldDoc {
		return ExtractFields(fset, file, "Args", "impls/wrap", logr.New("wrap", token.Position{}, nil))
	}
}

type flatDoc struct {
	Ident, Doc, Type string
}

func flatten(docs []FieldDoc) []flatDoc {
	out := make([]flatDoc, len(docs))
	for i, d := range docs {
		out[i] = flatDoc{Ident: d.Ident, Type: d.TypeString()}
		if d.Doc != nil {
			out[i].Doc = *d.Doc
		} else {
			out[i].Doc = "<nil>"
		}
	}

	return out
}

func TestExtractFields(t *testing.T) {
	_, extract := parseImpl(t, implSrc)

	got := flatten(extract())
	want := []flatDoc{
		{"With", "With is the wrapper type.", "string"},
		{"Limit", "Limit first line.", "int"},
		{"Limit", "Limit second line.", "int"},
		{"Lo", "<nil>", "float64"},
		{"Hi", "<nil>", "float64"},
		{"Tags", "trailing doc", "[]string"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractFields mismatch (-want +got):\n%s\n%s", diff, spew.Sdump(got))
	}
}

func TestExtractFields_Idempotent(t *testing.T) {
	_, extract := parseImpl(t, implSrc)

	first := flatten(extract())
	second := flatten(extract())
	assert.Empty(t, cmp.Diff(first, second))
}

func TestExtractFields_GroupedDeclaration(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "x.go", implSrc, parser.ParseComments)
	require.NoError(t, err)

	docs := ExtractFields(fset, file, "Other", "impls/x", logr.New("x", token.Position{}, nil))
	require.Len(t, docs, 1)
	assert.Equal(t, "X", docs[0].Ident)
	assert.Nil(t, docs[0].Doc)
}

func TestExtractFields_Aborts(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		record string
		want   string
	}{
		{
			name:   "embedded field",
			src:    "package p\n\ntype Args struct {\n\tstring\n\tName string\n}\n",
			record: "Args",
			want:   "only named fields supported",
		},
		{
			name:   "record not found",
			src:    "package p\n\ntype Other struct{}\n",
			record: "Args",
			want:   "type Args not found in module impls/p",
		},
		{
			name:   "not a struct",
			src:    implSrc,
			record: "NotStruct",
			want:   "must be a struct, found int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fset := token.NewFileSet()
			file, err := parser.ParseFile(fset, "p.go", tt.src, parser.ParseComments)
			require.NoError(t, err)

			err = logr.Run(func() {
				ExtractFields(fset, file, tt.record, "impls/p", logr.New("p", token.Position{}, nil))
			})

			var abort *logr.Abort
			require.ErrorAs(t, err, &abort)
			assert.Contains(t, abort.Diagnostic.Message, tt.want)
			assert.Equal(t, diagnostic.CodeSchema, abort.Diagnostic.Code)
			assert.Equal(t, diagnostic.DiagnosticFatal, abort.Diagnostic.Severity)
		})
	}
}

func TestExtractFields_EmbeddedPosition(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", "package p\n\ntype Args struct {\n\tName string\n\t*Base\n}\n", parser.ParseComments)
	require.NoError(t, err)

	err = logr.Run(func() { ExtractFields(fset, file, "Args", "impls/p", logr.New("p", token.Position{}, nil)) })

	var abort *logr.Abort
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, 5, abort.Diagnostic.Pos.Line)
	assert.Contains(t, abort.Diagnostic.Message, "embedded *Base field")
}

func TestExtractFields_TagKey(t *testing.T) {
	_, extract := parseImpl(t, implSrc)

	docs := extract()
	require.NotEmpty(t, docs)
	assert.Equal(t, "with", docs[0].Key)
	assert.Equal(t, "with", docs[0].Name())
	assert.Equal(t, "Limit", docs[1].Name())
}
