package usecase

import "strings"

// NameMatcher decides whether two specification names refer to the same
// underlying attribute. Commutative: Match(a, b) == Match(b, a).
type NameMatcher struct {
	normalizer *NameNormalizer
	tables     *Tables
}

// NewNameMatcher creates a name matcher over the given table set.
func NewNameMatcher(normalizer *NameNormalizer, tables *Tables) *NameMatcher {
	if tables == nil {
		tables = DefaultTables()
	}
	if normalizer == nil {
		normalizer = NewNameNormalizer(tables)
	}
	return &NameMatcher{normalizer: normalizer, tables: tables}
}

// Match reports whether the two names denote the same attribute, applying
// the rules in order and short-circuiting on the first hit:
//  1. normalized forms are equal
//  2. one normalized form is a substring of the other (non-empty)
//  3. singular-form equality when both normalized forms are single tokens
//  4. both names contain a word from the same synonym group
func (m *NameMatcher) Match(a, b string) bool {
	na := m.normalizer.Normalize(a)
	nb := m.normalizer.Normalize(b)
	return m.matchNormalized(na, nb)
}

// MatchNormalized is Match over already-normalized names, letting callers
// that memoize normalization skip recomputing it.
func (m *NameMatcher) MatchNormalized(na, nb string) bool {
	return m.matchNormalized(na, nb)
}

func (m *NameMatcher) matchNormalized(na, nb string) bool {
	if na == "" || nb == "" {
		return false
	}

	if na == nb {
		return true
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	// Residual plurals the normalizer's stemming missed.
	if !strings.Contains(na, " ") && !strings.Contains(nb, " ") {
		if singularize(na) == singularize(nb) {
			return true
		}
	}

	for _, group := range m.tables.SynonymGroups {
		if groupWordIn(group, na) && groupWordIn(group, nb) {
			return true
		}
	}

	return false
}

// groupWordIn reports whether any word of the group appears as a substring
// of the normalized name.
func groupWordIn(group []string, normalized string) bool {
	for _, word := range group {
		if strings.Contains(normalized, word) {
			return true
		}
	}
	return false
}
