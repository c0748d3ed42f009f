package match

import (
	"strings"
	"unicode"
)

// Normalize folds a name to lower case and drops the separators _, - and
// spaces: "db_type", "DBType" and "db-type" all become "dbtype".
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}
