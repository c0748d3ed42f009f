package macro

import "fmt"

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind selects the shape of a macro entry point.
type Kind int

const (
	_ Kind = iota // zero value is not a valid kind

	Func   // function-like: a free-standing directive
	Attr   // attribute: a directive decorating a declaration
	Derive // derive: output appended after a type declaration
)

// ParseKind parses the textual kind used in megamac arguments.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "Func":
		return Func, nil
	case "Attr":
		return Attr, nil
	case "Derive":
		return Derive, nil
	default:
		return 0, fmt.Errorf("unsupported macro kind %q (expected Func, Attr or Derive)", s)
	}
}
