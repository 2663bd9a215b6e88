// Package normalize canonicalizes country names so that the population and
// case datasets join on the same key even when they spell countries
// differently.
package normalize

import (
	"strings"
	"unicode"

	"covidetl/domain/core"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CanonicalKey is a normalized country-name string used as the join key
// between datasets. Deriving it is deterministic and idempotent.
type CanonicalKey string

// String returns the string representation
func (k CanonicalKey) String() string {
	return string(k)
}

// AliasTable maps known alternate spellings to a single preferred display
// form. It is read-only once handed to a Normalizer.
type AliasTable map[string]string

// DefaultAliases returns the built-in country-name corrections observed
// across the population and Johns Hopkins case exports.
func DefaultAliases() AliasTable {
	return AliasTable{
		"US":                       "United States",
		"USA":                      "United States",
		"United States of America": "United States",
		"Korea, South":             "South Korea",
		"Burma":                    "Myanmar",
		"Czechia":                  "Czech Republic",
		"Taiwan*":                  "Taiwan",
		"Cote d'Ivoire":            "Ivory Coast",
		"Congo (Brazzaville)":      "Republic of the Congo",
		"Congo (Kinshasa)":         "DR Congo",
		"West Bank and Gaza":       "Palestine",
		"Cape Verde":               "Cabo Verde",
	}
}

// Merge returns a copy of the table with entries from other layered on top.
func (a AliasTable) Merge(other AliasTable) AliasTable {
	merged := make(AliasTable, len(a)+len(other))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// scrub applies the mechanical normalization steps: trim, collapse internal
// whitespace, case-fold, strip diacritical marks. Alias substitution happens
// separately so aliases match regardless of the raw spelling's casing.
func scrub(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.ToLower(s)
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		// Transform failures leave the case-folded form; still deterministic.
		return s
	}
	return out
}

type aliasEntry struct {
	key     CanonicalKey
	display string
}

// Normalizer derives canonical keys from raw country-name cells. It holds an
// immutable alias set; construct one per run (or per test) rather than
// sharing mutable state.
type Normalizer struct {
	aliases map[string]aliasEntry // scrubbed variant -> canonical target
}

// NewNormalizer builds a Normalizer from the given alias table. Pass
// DefaultAliases() unless the caller loaded overrides.
func NewNormalizer(table AliasTable) *Normalizer {
	aliases := make(map[string]aliasEntry, len(table))
	for variant, preferred := range table {
		aliases[scrub(variant)] = aliasEntry{
			key:     CanonicalKey(scrub(preferred)),
			display: preferred,
		}
	}
	return &Normalizer{aliases: aliases}
}

// Normalize canonicalizes a raw country name. Empty or whitespace-only input
// yields core.ErrInvalidName.
func (n *Normalizer) Normalize(raw string) (CanonicalKey, error) {
	key, _, err := n.Canonical(raw)
	return key, err
}

// Canonical returns both the canonical key and the preferred display name for
// a raw country name. The display name is the alias table's preferred form
// when the input matches a registered variant, otherwise the cleaned-up raw
// spelling.
func (n *Normalizer) Canonical(raw string) (CanonicalKey, string, error) {
	display := strings.Join(strings.Fields(raw), " ")
	if display == "" {
		return "", "", core.NewInvalidNameError(raw)
	}
	scrubbed := scrub(raw)
	if entry, ok := n.aliases[scrubbed]; ok {
		return entry.key, entry.display, nil
	}
	return CanonicalKey(scrubbed), display, nil
}
