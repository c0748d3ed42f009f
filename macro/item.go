package macro

import (
	"fmt"
	"go/ast"
	"reflect"
	"strings"
)

// ParseItem converts the declaration a directive decorates into the node
// type the macro receives. Declarations, their single spec and the type
// expression of a single type spec are all candidates, in that order.
// A mismatch is a *ConfigError.
func ParseItem[T ast.Node](decl ast.Decl) (T, error) {
	var zero T

	if decl == nil {
		return zero, itemError[T]("nothing")
	}

	if n, ok := any(decl).(T); ok {
		return n, nil
	}

	gd, ok := decl.(*ast.GenDecl)
	if !ok {
		return zero, itemError[T](nodeName(decl))
	}

	if len(gd.Specs) != 1 {
		return zero, itemError[T](fmt.Sprintf("%s declaration with %d specs", gd.Tok, len(gd.Specs)))
	}

	spec := gd.Specs[0]
	if n, ok := any(spec).(T); ok {
		return n, nil
	}

	if ts, ok := spec.(*ast.TypeSpec); ok {
		if n, ok := any(ts.Type).(T); ok {
			return n, nil
		}

		return zero, itemError[T](fmt.Sprintf("type %s (%s)", ts.Name.Name, nodeName(ts.Type)))
	}

	return zero, itemError[T](nodeName(spec))
}

func itemError[T ast.Node](found string) error {
	want := strings.TrimPrefix(reflect.TypeFor[T]().String(), "*ast.")

	return &ConfigError{Violations: []Violation{{
		Offset:  -1,
		Message: fmt.Sprintf("macro must decorate a %s, found %s", want, found),
	}}}
}

func nodeName(n ast.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}
