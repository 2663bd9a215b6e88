// Package resolve locates the country and numeric columns in a loaded table.
// Input files carry no guaranteed schema, so resolution is heuristic: header
// aliases first, value-shape analysis as a fallback, and a typed ambiguity
// error when neither produces a single confident candidate.
package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"covidetl/domain/table"
)

// Role identifies which column a resolution request is looking for.
type Role string

const (
	// RoleKey is the country-identifying column
	RoleKey Role = "key"
	// RoleValue is the numeric quantity column (population or case count)
	RoleValue Role = "value"
)

// AmbiguousColumnError reports that no single column could be chosen with
// confidence. Candidates lists the plausible columns so a caller can prompt
// the user or consult configuration and retry with an explicit override.
type AmbiguousColumnError struct {
	Table      string
	Role       Role
	Candidates []string
}

func (e *AmbiguousColumnError) Error() string {
	return fmt.Sprintf("cannot resolve %s column for table %q, candidates: %s",
		e.Role, e.Table, strings.Join(e.Candidates, ", "))
}

// keyAliases are checked in rank order; the first header match wins.
var keyAliases = []string{
	"country",
	"country/territory",
	"country_name",
	"country name",
	"location",
	"nation",
	"region",
}

// valueHints rank numeric columns when more than one qualifies.
var valueHints = []string{
	"population",
	"pop",
	"confirmed",
	"cases",
	"total",
}

// countryShape matches values that look like country names: starts with a
// letter, no digits, allows the punctuation seen in real exports
// ("Cote d'Ivoire", "Korea, South", "Taiwan*").
var countryShape = regexp.MustCompile(`^[\p{L}][\p{L} .,'()*&-]*$`)

// uniqueRatioThreshold is the share of distinct values a column must reach
// for the key fallback heuristic.
const uniqueRatioThreshold = 0.9

// Resolver determines key and value columns for schema-free tables.
type Resolver struct{}

// NewResolver creates a column resolver with the built-in alias rankings.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the name of the column filling the requested role.
// For RoleValue the key column must be resolvable too, since the value
// column is defined as numeric-and-not-the-key.
func (r *Resolver) Resolve(t *table.Table, role Role) (string, error) {
	switch role {
	case RoleKey:
		return r.resolveKey(t)
	case RoleValue:
		key, err := r.resolveKey(t)
		if err != nil {
			return "", err
		}
		return r.resolveValue(t, key)
	default:
		return "", fmt.Errorf("unknown resolution role: %s", role)
	}
}

// ResolveValue locates the numeric column when the key column is already
// known (resolved earlier or supplied as an override).
func (r *Resolver) ResolveValue(t *table.Table, keyColumn string) (string, error) {
	return r.resolveValue(t, keyColumn)
}

func (r *Resolver) resolveKey(t *table.Table) (string, error) {
	// Pass 1: ranked header aliases, case-insensitive.
	for _, alias := range keyAliases {
		for _, header := range t.Headers {
			if strings.EqualFold(strings.TrimSpace(header), alias) {
				return header, nil
			}
		}
	}

	// Pass 2: value-shape heuristic. A key column holds mostly-unique,
	// country-shaped strings.
	var candidates []string
	for _, header := range t.Headers {
		if looksLikeCountryColumn(t.Column(header)) {
			candidates = append(candidates, header)
		}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	if len(candidates) == 0 {
		candidates = append(candidates, t.Headers...)
	}
	return "", &AmbiguousColumnError{Table: t.Name, Role: RoleKey, Candidates: candidates}
}

func (r *Resolver) resolveValue(t *table.Table, keyColumn string) (string, error) {
	var numeric []string
	for _, header := range t.Headers {
		if header == keyColumn {
			continue
		}
		if isNumericColumn(t.Column(header)) {
			numeric = append(numeric, header)
		}
	}

	if len(numeric) == 0 {
		candidates := make([]string, 0, len(t.Headers))
		for _, header := range t.Headers {
			if header != keyColumn {
				candidates = append(candidates, header)
			}
		}
		return "", &AmbiguousColumnError{Table: t.Name, Role: RoleValue, Candidates: candidates}
	}

	// Prefer columns whose header hints at the quantity of interest.
	for _, hint := range valueHints {
		for _, header := range numeric {
			if strings.Contains(strings.ToLower(header), hint) {
				return header, nil
			}
		}
	}

	// Otherwise the first numeric column in file order wins.
	return numeric[0], nil
}

// looksLikeCountryColumn reports whether the column's non-empty values are
// at least 90% unique and shaped like country names.
func looksLikeCountryColumn(values []string) bool {
	seen := make(map[string]struct{})
	nonEmpty := 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonEmpty++
		if !countryShape.MatchString(v) {
			return false
		}
		seen[strings.ToLower(v)] = struct{}{}
	}
	if nonEmpty == 0 {
		return false
	}
	return float64(len(seen))/float64(nonEmpty) >= uniqueRatioThreshold
}

// isNumericColumn reports whether every non-empty cell parses as a number
// and the column has at least one value.
func isNumericColumn(values []string) bool {
	nonEmpty := 0
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		nonEmpty++
		if _, ok := table.NumericCell(v); !ok {
			return false
		}
	}
	return nonEmpty > 0
}
