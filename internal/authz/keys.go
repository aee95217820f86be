package authz

import (
	"strings"

	"golang.org/x/text/cases"
)

var keyFolder = cases.Fold()

// NormalizeKey folds a module, action, or role name into its comparison
// form: case folded with all separator conventions collapsed to underscores.
// "Sick-Leave", "sick leave" and "SICK_LEAVE" all compare equal.
func NormalizeKey(name string) string {
	folded := keyFolder.String(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(folded))
	lastSep := true
	for _, r := range folded {
		switch r {
		case ' ', '-', '.', '\t':
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		case '_':
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		default:
			b.WriteRune(r)
			lastSep = false
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
