package dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain decomposes, strips combining marks, recomposes, and lowercases.
// It turns "João da Conceição" and "JOAO DA CONCEICAO" into the same key.
var foldChain = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
	runes.Map(unicode.ToLower),
)

// FoldKey produces the accent-insensitive, case-insensitive identity key
// used for person names, areas, and header matching.
func FoldKey(s string) string {
	out, _, err := transform.String(foldChain, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// foldHeader normalizes a raw column header to its canonical spelling:
// accent-folded, lowercased, with space and hyphen runs collapsed to a
// single underscore.
func foldHeader(s string) string {
	k := FoldKey(s)
	var b strings.Builder
	b.Grow(len(k))
	lastUnderscore := false
	for _, r := range k {
		switch {
		case r == ' ' || r == '-' || r == '_':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
