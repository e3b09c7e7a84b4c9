package usecase

import "strings"

// OptionSetReconciler computes, for a matched spec pair, the common option
// subset and the blended buyer-facing option list. Stateless; consumed-index
// bookkeeping is scoped to each call.
type OptionSetReconciler struct {
	matcher *OptionMatcher
	tables  *Tables
}

// NewOptionSetReconciler creates a reconciler over the given table set.
func NewOptionSetReconciler(matcher *OptionMatcher, tables *Tables) *OptionSetReconciler {
	if tables == nil {
		tables = DefaultTables()
	}
	if matcher == nil {
		matcher = NewOptionMatcher(tables)
	}
	return &OptionSetReconciler{matcher: matcher, tables: tables}
}

// CommonOptions returns the order-preserving, de-duplicated subset of source
// options that the target options corroborate. normalizedName is the
// owning spec's normalized name; it gates the range-augmentation pass.
// Three passes, each target index consumable at most once:
//  1. exact matches only
//  2. full option-matcher rules for the remainder
//  3. range-vs-discrete augmentation in both directions, only for
//     measurable-quantity specs, emitting the discrete value
//
// An empty result is valid and meaningful ("no common options"), not an
// error.
func (r *OptionSetReconciler) CommonOptions(normalizedName string, source, target []string) []string {
	source = cleanOptions(source)
	target = cleanOptions(target)

	out := make([]string, 0, len(source))
	emitted := make(map[string]bool) // case-insensitive values already in out
	matched := make([]bool, len(source))
	consumed := make([]bool, len(target))

	emit := func(value string) {
		key := strings.ToLower(strings.TrimSpace(value))
		if emitted[key] {
			return
		}
		emitted[key] = true
		out = append(out, value)
	}

	// Pass 1: exact matches claim their targets before fuzzier rules can.
	for i, src := range source {
		for j, tgt := range target {
			if consumed[j] || !r.matcher.ExactMatch(src, tgt) {
				continue
			}
			matched[i] = true
			consumed[j] = true
			emit(src)
			break
		}
	}

	// Pass 2: full matcher rules for whatever pass 1 left behind.
	// Range-vs-discrete pairs are deferred to pass 3 so the discrete value
	// gets emitted (and only for measurable specs).
	for i, src := range source {
		if matched[i] {
			continue
		}
		for j, tgt := range target {
			if consumed[j] || !r.matcher.MatchDirect(src, tgt) {
				continue
			}
			matched[i] = true
			consumed[j] = true
			emit(src)
			break
		}
	}

	if !r.isMeasurableSpec(normalizedName) {
		return out
	}

	// Pass 3: range-vs-discrete in both directions, emitting the discrete
	// value so buyers see a concrete number rather than a span.
	for i, src := range source {
		if matched[i] {
			continue
		}
		srcIsRange := r.matcher.IsRange(src)
		srcIsSingle := r.matcher.IsSingleNumeric(src)
		if !srcIsRange && !srcIsSingle {
			continue
		}
		for j, tgt := range target {
			if consumed[j] {
				continue
			}
			if srcIsRange && r.matcher.RangeContains(src, tgt) {
				matched[i] = true
				consumed[j] = true
				emit(tgt)
				break
			}
			if srcIsSingle && r.matcher.RangeContains(tgt, src) {
				matched[i] = true
				consumed[j] = true
				emit(src)
				break
			}
		}
	}

	return out
}

// BuyerOptions returns the buyer-facing option list for a spec pair, capped
// at limit entries: matched (common) values first, then unconsumed source
// options, then unconsumed target options. Preferring common-then-source
// anchors the list to buyer-validated values while keeping the seller
// catalog authoritative.
func (r *OptionSetReconciler) BuyerOptions(source, target []string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}

	source = cleanOptions(source)
	target = cleanOptions(target)

	out := make([]string, 0, limit)
	emitted := make(map[string]bool)
	usedSource := make([]bool, len(source))
	consumed := make([]bool, len(target))

	emit := func(value string) bool {
		key := strings.ToLower(strings.TrimSpace(value))
		if emitted[key] {
			return false
		}
		emitted[key] = true
		out = append(out, value)
		return len(out) >= limit
	}

	// Phase 1: matched pairs, source value wins, each target once.
	for i, src := range source {
		for j, tgt := range target {
			if consumed[j] || !r.matcher.Match(src, tgt) {
				continue
			}
			usedSource[i] = true
			consumed[j] = true
			if emit(src) {
				return out
			}
			break
		}
	}

	// Phase 2: remaining source options in catalog order.
	for i, src := range source {
		if usedSource[i] {
			continue
		}
		if emit(src) {
			return out
		}
	}

	// Phase 3: remaining target options.
	for j, tgt := range target {
		if consumed[j] {
			continue
		}
		if emit(tgt) {
			return out
		}
	}

	return out
}

// isMeasurableSpec reports whether the normalized spec name names a
// measurable quantity (thickness, width, length, diameter, size...).
func (r *OptionSetReconciler) isMeasurableSpec(normalizedName string) bool {
	for _, tok := range strings.Fields(normalizedName) {
		if r.tables.isMeasureWord(tok) {
			return true
		}
	}
	return false
}

// cleanOptions drops malformed option values: empty or whitespace-only
// strings never participate in matching.
func cleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			continue
		}
		out = append(out, opt)
	}
	return out
}
