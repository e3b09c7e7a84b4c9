package usecase

import (
	"regexp"
	"strings"
)

// nameDelimiterRegex matches the punctuation treated as token separators in
// spec names, e.g. "Thickness (mm)" or "Width, in mm".
var nameDelimiterRegex = regexp.MustCompile(`[()\-_,.;/]`)

// NameNormalizer canonicalizes a free-text specification name into a
// comparable token sequence: lower-cased, punctuation-split, singularized,
// synonym-folded, de-duplicated and filler-filtered. Pure function of its
// input; safe for concurrent use.
type NameNormalizer struct {
	tables *Tables
}

// NewNameNormalizer creates a normalizer over the given table set.
func NewNameNormalizer(tables *Tables) *NameNormalizer {
	if tables == nil {
		tables = DefaultTables()
	}
	return &NameNormalizer{tables: tables}
}

// Normalize canonicalizes a specification name. An empty result is valid
// (it simply never matches anything).
func (n *NameNormalizer) Normalize(name string) string {
	lowered := strings.ToLower(name)
	lowered = nameDelimiterRegex.ReplaceAllString(lowered, " ")

	words := strings.Fields(lowered)

	tokens := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, word := range words {
		token := n.foldSynonym(singularize(word))
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		if n.tables.isFiller(token) {
			continue
		}
		tokens = append(tokens, token)
	}

	return strings.Join(tokens, " ")
}

// foldSynonym maps a token to its canonical form. Exact dictionary hits win;
// otherwise substring containment against dictionary keys (both directions)
// adopts the value on first hit, in sorted key order for determinism.
func (n *NameNormalizer) foldSynonym(token string) string {
	if canonical, ok := n.tables.Synonyms[token]; ok {
		return canonical
	}
	for _, key := range n.tables.sortedSynonymKeys {
		// Substring checks on short keys produce junk folds (e.g. "wt"
		// inside random tokens), so require at least 3 characters.
		if len(key) < 3 || len(token) < 3 {
			continue
		}
		if strings.Contains(token, key) || strings.Contains(key, token) {
			return n.tables.Synonyms[key]
		}
	}
	return token
}

// singularize strips English plural suffixes: "...ies" -> "...y",
// "...es" -> stem when the stem ends in ss/x/ch/sh, and a plain trailing
// "s" (but never "ss").
func singularize(token string) string {
	if strings.HasSuffix(token, "ies") && len(token) > 3 {
		return token[:len(token)-3] + "y"
	}
	if strings.HasSuffix(token, "es") && len(token) > 2 {
		stem := token[:len(token)-2]
		if strings.HasSuffix(stem, "ss") || strings.HasSuffix(stem, "x") ||
			strings.HasSuffix(stem, "ch") || strings.HasSuffix(stem, "sh") {
			return stem
		}
	}
	if strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") {
		return token[:len(token)-1]
	}
	return token
}
