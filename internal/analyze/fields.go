package analyze

import (
	"fmt"
	"go/ast"
	"go/token"
	"reflect"
	"strconv"
	"strings"

	"macrokit/internal/diagnostic"
	"macrokit/logr"
	"macrokit/macro"
)

// ExtractFields returns the documentation entries of the struct recordIdent
// declared in file. module names the implementation in diagnostics.
//
// Each documentation line of a field yields its own entry; a field without
// documentation yields one entry with a nil Doc. A field declaring several
// names yields entries for each name. A missing record, a record that is not
// a struct and embedded fields abort through lg.
func ExtractFields(fset *token.FileSet, file *ast.File, recordIdent, module string, lg *logr.Logr) []FieldDoc {
	lg = lg.WithCode(diagnostic.CodeSchema)

	spec := findType(file, recordIdent)
	if spec == nil {
		lg.AbortCallSite(fmt.Sprintf("type %s not found in module %s", recordIdent, module))
	}

	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		lg.Abort(fset.Position(spec.Pos()),
			fmt.Sprintf("type %s in module %s must be a struct, found %s", recordIdent, module, TypeString(spec.Type)))
	}

	var out []FieldDoc
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			lg.Abort(fset.Position(field.Pos()),
				fmt.Sprintf("only named fields supported: %s has an embedded %s field", recordIdent, TypeString(field.Type)))
		}

		lines := append(DocLines(field.Doc), DocLines(field.Comment)...)
		key := tagKey(field.Tag)

		for _, name := range field.Names {
			if len(lines) == 0 {
				out = append(out, FieldDoc{Ident: name.Name, Key: key, Type: field.Type})
				continue
			}

			for _, line := range lines {
				doc := line
				out = append(out, FieldDoc{Ident: name.Name, Key: key, Doc: &doc, Type: field.Type})
			}
		}
	}

	return out
}

// tagKey returns the name bound by the macro tag of a field.
func tagKey(tag *ast.BasicLit) string {
	if tag == nil {
		return ""
	}

	raw, err := strconv.Unquote(tag.Value)
	if err != nil {
		return ""
	}

	key, _, _ := strings.Cut(reflect.StructTag(raw).Get(macro.ArgsTag), ",")
	if key == "-" {
		return ""
	}

	return key
}

func findType(file *ast.File, ident string) *ast.TypeSpec {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}

		for _, spec := range gd.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.Name == ident {
				return ts
			}
		}
	}

	return nil
}
