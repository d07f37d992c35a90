// Package normalize canonicalizes user-supplied text before it is stored
// or compared.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Name returns the canonical form of a tag or ingredient name: Unicode NFC,
// surrounding whitespace trimmed, inner whitespace runs collapsed to one
// space. Case is preserved; "Vegan" and "vegan" are different names.
//
//	"  Café  au   lait " → "Café au lait"
func Name(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Names normalizes every entry and drops blanks and duplicates, keeping the
// first occurrence order.
func Names(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		n := Name(raw)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Text applies NFC and trims surrounding whitespace, leaving inner
// formatting alone. Used for titles and descriptions.
func Text(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
