package proposals

import (
	"strings"
	"unicode"

	"github.com/da-upm/participa/src/api/types"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases and strips combining diacritics via canonical
// decomposition, so "Café" matches "cafe". A transformer chain is built per
// call because transformers are not safe for concurrent reuse.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func matchesSearch(p types.Proposal, folded string) bool {
	return strings.Contains(Fold(p.Title), folded) ||
		strings.Contains(Fold(p.Description), folded)
}

// filterSearch applies the diacritic-insensitive substring search. It runs
// after the database stage: folding cannot be expressed in the store's query
// language, so a paginated result can come back under-full when some page
// members fail the text filter.
func filterSearch(ps []types.Proposal, search string) []types.Proposal {
	folded := Fold(strings.TrimSpace(search))
	if folded == "" {
		return ps
	}
	out := ps[:0]
	for _, p := range ps {
		if matchesSearch(p, folded) {
			out = append(out, p)
		}
	}
	return out
}
