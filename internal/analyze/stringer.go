package analyze

import (
	"go/ast"
	"go/types"
	"strings"
	"unicode"
)

// TypeString renders a type expression without whitespace, e.g.
// "map[string]func(int)error".
func TypeString(expr ast.Expr) string {
	if expr == nil {
		return "<nil>"
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, types.ExprString(expr))
}

// DocLines returns the documentation lines of a comment group, one entry
// per // comment or /* */ block. Blank lines and directive comments
// (//go:..., //macro:..., //nolint...) are not documentation.
func DocLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}

	var lines []string
	for _, c := range cg.List {
		text, ok := commentText(c.Text)
		if !ok {
			continue
		}

		lines = append(lines, text)
	}

	return lines
}

func commentText(raw string) (string, bool) {
	if body, ok := strings.CutPrefix(raw, "//"); ok {
		if IsDirective(body) {
			return "", false
		}

		text := strings.TrimSpace(body)

		return text, text != ""
	}

	body := strings.TrimSuffix(strings.TrimPrefix(raw, "/*"), "*/")
	fields := strings.Fields(body)

	return strings.Join(fields, " "), len(fields) > 0
}

// IsDirective reports whether the text of a // comment (without the
// slashes) is a tool directive rather than prose.
func IsDirective(body string) bool {
	for _, p := range []string{"go:", "macro:", "nolint", "line "} {
		if strings.HasPrefix(body, p) {
			return true
		}
	}

	return false
}
