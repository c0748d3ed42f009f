// Package docs renders the documentation block of a generated macro entry
// point from the fields of its configuration record.
//
// Lines are laid out as canonical doc comment text, so gofmt leaves the
// generated comment untouched:
//
//	wrap procedural macro (Attr).
//
//	# Parameters
//
//	  - `with` - Wrapper type.
//	    type: `string`
//
//	# Examples
package docs

import (
	"fmt"
	"strings"

	"macrokit/internal/analyze"
	"macrokit/macro"
)

// NotDocumented replaces the documentation of undocumented fields.
const NotDocumented = "Not documented"

// Param is one bullet of the parameters section.
type Param struct {
	Ident string
	Doc   string
	Type  string
}

// Block is the documentation of one macro.
type Block struct {
	Summary string
	Params  []Param
}

// Render builds the block of macro name of the given kind.
func Render(name string, kind macro.Kind, fields []analyze.FieldDoc) Block {
	b := Block{Summary: fmt.Sprintf("%s procedural macro (%s).", name, kind)}

	for _, f := range fields {
		doc := NotDocumented
		if f.Doc != nil {
			doc = *f.Doc
		}

		b.Params = append(b.Params, Param{Ident: f.Name(), Doc: doc, Type: f.TypeString()})
	}

	return b
}

// Lines returns the block one comment line at a time, without comment markers.
func (b Block) Lines() []string {
	lines := []string{b.Summary, "", "# Parameters", ""}

	for _, p := range b.Params {
		lines = append(lines,
			fmt.Sprintf("  - `%s` - %s", p.Ident, p.Doc),
			fmt.Sprintf("    type: `%s`", p.Type),
		)
	}

	if len(b.Params) > 0 {
		lines = append(lines, "")
	}

	return append(lines, "# Examples")
}

func (b Block) String() string {
	return strings.Join(b.Lines(), "\n")
}
