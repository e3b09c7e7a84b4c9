package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	numberRegex    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	letterRunRegex = regexp.MustCompile(`[a-z]+`)

	// rangeConnectorRegex matches the connector words/symbols that mark a
	// numeric range: "0.1mm to 6mm", "2-8 mm", "from 1 to 5", "~".
	// Connector presence alone is not enough; see optionValue.isRange.
	rangeConnectorRegex = regexp.MustCompile(`(?i)\b(?:up\s*to|upto|from|to)\b|~|\d\s*-\s*\d`)

	allWhitespaceRegex = regexp.MustCompile(`\s+`)
)

// optionValue is the parsed numeric/unit shape of one option string.
type optionValue struct {
	numbers []float64 // distinct numeric tokens, in appearance order
	unit    string    // canonical unit, "" when no known unit is stated
	isRange bool      // connector present and >= 2 distinct numeric tokens
}

func (v optionValue) isSingle() bool {
	return !v.isRange && len(v.numbers) == 1
}

func (v optionValue) bounds() (float64, float64) {
	lo, hi := v.numbers[0], v.numbers[0]
	for _, n := range v.numbers[1:] {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return lo, hi
}

// OptionMatcher decides whether two option strings denote the same
// real-world value, across exact/unit/numeric-range/equivalence-table rules.
type OptionMatcher struct {
	tables *Tables
}

// NewOptionMatcher creates an option matcher over the given table set.
func NewOptionMatcher(tables *Tables) *OptionMatcher {
	if tables == nil {
		tables = DefaultTables()
	}
	return &OptionMatcher{tables: tables}
}

// Match applies the equivalence rules in priority order:
//  1. exact (case/whitespace-insensitive) equality
//  2. range containment: a single value inside the other side's [min, max]
//  3. range-range interval overlap
//  4. single-value numeric: exact numeric equality, no tolerance
//  5. domain equivalence tables (grades, materials, brands, finishes,
//     shapes, size words)
//
// Rules 2-3 tolerate a missing unit on one side (the unstated side inherits
// the stated unit); rule 4 requires the same unit family on both sides, or
// both sides unit-less. A rule that does not apply simply falls through;
// unparseable numeric content never errors.
func (m *OptionMatcher) Match(a, b string) bool {
	return m.match(a, b, true)
}

// MatchDirect applies every rule except range-vs-discrete containment. The option-set reconciler defers
// range-vs-discrete pairs to its measure-gated augmentation pass, which
// emits the discrete value instead of the range string.
func (m *OptionMatcher) MatchDirect(a, b string) bool {
	return m.match(a, b, false)
}

func (m *OptionMatcher) match(a, b string, includeRangeDiscrete bool) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}

	if m.ExactMatch(a, b) {
		return true
	}

	va := m.parseValue(a)
	vb := m.parseValue(b)

	switch {
	case va.isRange && vb.isSingle():
		if includeRangeDiscrete && m.rangeContains(va, vb) {
			return true
		}
	case vb.isRange && va.isSingle():
		if includeRangeDiscrete && m.rangeContains(vb, va) {
			return true
		}
	case va.isRange && vb.isRange:
		if m.rangesOverlap(va, vb) {
			return true
		}
	case va.isSingle() && vb.isSingle():
		// Stricter than the range rules: a stated unit on one side only is
		// not a match ("25mm" vs a bare "25" may be a different quantity).
		if va.numbers[0] == vb.numbers[0] && va.unit == vb.unit {
			return true
		}
	}

	return m.tableMatch(a, b)
}

// ExactMatch is rule 1 alone: case-insensitive trimmed equality, or
// equality after removing all internal whitespace. Exposed separately so
// the option-set reconciler can run its exact-first pass.
func (m *OptionMatcher) ExactMatch(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	squashedA := allWhitespaceRegex.ReplaceAllString(a, "")
	squashedB := allWhitespaceRegex.ReplaceAllString(b, "")
	return strings.EqualFold(squashedA, squashedB)
}

// RangeContains reports whether exactly one of the two strings is a range
// and the other a single value inside it (inclusive), units permitting.
// Used by the reconciler's range-augmentation pass; the discrete side's
// original string is returned so the caller can emit it.
func (m *OptionMatcher) RangeContains(rng, single string) bool {
	vr := m.parseValue(rng)
	vs := m.parseValue(single)
	if !vr.isRange || !vs.isSingle() {
		return false
	}
	return m.rangeContains(vr, vs)
}

// IsRange reports whether the string parses as a numeric range: a connector
// word/symbol plus at least two distinct numeric tokens. A documented
// heuristic; free text containing "to" or "-" without two numbers (e.g. a
// brand name "A-to-Z Tools") is not classified as a range.
func (m *OptionMatcher) IsRange(s string) bool {
	return m.parseValue(s).isRange
}

// IsSingleNumeric reports whether the string carries exactly one numeric
// token and no range connector.
func (m *OptionMatcher) IsSingleNumeric(s string) bool {
	return m.parseValue(s).isSingle()
}

func (m *OptionMatcher) rangeContains(rng, single optionValue) bool {
	if !m.unitsCompatible(rng.unit, single.unit) {
		return false
	}
	lo, hi := rng.bounds()
	v := single.numbers[0]
	return v >= lo && v <= hi
}

func (m *OptionMatcher) rangesOverlap(a, b optionValue) bool {
	if !m.unitsCompatible(a.unit, b.unit) {
		return false
	}
	aLo, aHi := a.bounds()
	bLo, bHi := b.bounds()
	return aLo <= bHi && bLo <= aHi
}

// unitsCompatible serves the range rules: same unit family, or at least one
// side unit-less (the unstated side inherits the stated unit, e.g. "5"
// inside a "2-8 mm" span). The single-value rule does not use it.
func (m *OptionMatcher) unitsCompatible(ua, ub string) bool {
	if ua == "" || ub == "" {
		return true
	}
	return ua == ub
}

// parseValue extracts the numeric tokens and canonical unit of an option
// string. Unparseable tokens are skipped, never fatal.
func (m *OptionMatcher) parseValue(s string) optionValue {
	lowered := strings.ToLower(s)

	var numbers []float64
	seen := make(map[float64]bool)
	for _, tok := range numberRegex.FindAllString(lowered, -1) {
		n, err := strconv.ParseFloat(tok, 64)
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}

	unit := ""
	for _, run := range letterRunRegex.FindAllString(lowered, -1) {
		if canonical, ok := m.tables.lookupUnit(run); ok {
			unit = canonical
			break
		}
	}
	if unit == "" {
		// Inch/feet symbols carry no letters.
		if strings.Contains(lowered, `"`) {
			unit, _ = m.tables.lookupUnit(`"`)
		} else if strings.Contains(lowered, "'") {
			unit, _ = m.tables.lookupUnit("'")
		}
	}

	return optionValue{
		numbers: numbers,
		unit:    unit,
		isRange: len(numbers) >= 2 && rangeConnectorRegex.MatchString(lowered),
	}
}

// tableMatch is rule 5: the domain equivalence tables. A group matches when
// some member is contained in each side. Grade groups additionally require
// the numeric grade digits to agree when both sides carry one.
func (m *OptionMatcher) tableMatch(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	for _, group := range m.tables.GradeGroups {
		if groupMemberIn(group, la) && groupMemberIn(group, lb) {
			if gradeDigitsAgree(la, lb) {
				return true
			}
		}
	}

	for _, table := range m.tables.equivalenceGroups() {
		for _, group := range table {
			if groupMemberIn(group, la) && groupMemberIn(group, lb) {
				return true
			}
		}
	}

	return false
}

// groupMemberIn reports whether any group member appears in the lowered
// option string. Members of one or two characters ("s", "ms", "gi") only
// match as whole tokens; substring containment on them is pure noise.
func groupMemberIn(group []string, lowered string) bool {
	for _, member := range group {
		if len(member) <= 2 {
			for _, tok := range strings.Fields(lowered) {
				if tok == member {
					return true
				}
			}
			continue
		}
		if strings.Contains(lowered, member) {
			return true
		}
	}
	return false
}

// gradeDigitsAgree requires the three-digit grade numbers to be equal when
// both sides state one ("SS304" vs "316" must not match).
func gradeDigitsAgree(la, lb string) bool {
	ga := firstGradeDigits(la)
	gb := firstGradeDigits(lb)
	if ga == "" || gb == "" {
		return true
	}
	return ga == gb
}

func firstGradeDigits(lowered string) string {
	for _, run := range numberRegex.FindAllString(lowered, -1) {
		if len(run) == 3 && !strings.Contains(run, ".") {
			return run
		}
	}
	return ""
}
