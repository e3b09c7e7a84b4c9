package usecase

import (
	"log"
	"strings"

	"github.com/speclens/backend/internal/domain"
)

// MatchPolicy selects how the reconciler pairs a source spec with a target
// candidate.
type MatchPolicy string

const (
	// PolicyFirstMatch consumes the first not-yet-consumed target whose
	// name matches, in fixed scan order. Deterministic; the default.
	PolicyFirstMatch MatchPolicy = "first"

	// PolicyBestMatch scores every not-yet-consumed matching target and
	// consumes the strongest (exact normalized equality beats substring
	// beats synonym group), ties broken by scan order.
	PolicyBestMatch MatchPolicy = "best"
)

// MatchedSpec is one reconciled pair: the derived CommonSpec plus the
// original option lists of both sides, kept so the buyer-ISQ selector can
// recompute the blended option list from the full pair.
type MatchedSpec struct {
	Common        domain.CommonSpec
	SourceOptions []string
	TargetOptions []string
}

// ReconcilerConfig holds configuration for the spec reconciler.
type ReconcilerConfig struct {
	Policy             MatchPolicy
	Tables             *Tables
	EnableDebugLogging bool
}

// SpecReconciler walks all Stage 1 specs against all Stage 2 specs, pairs
// them by name, and reconciles each pair's option lists. Pure computation
// over in-memory lists; no shared state between invocations.
type SpecReconciler struct {
	normalizer       *NameNormalizer
	nameMatcher      *NameMatcher
	optionReconciler *OptionSetReconciler
	policy           MatchPolicy
	debug            bool
}

// NewSpecReconciler creates a reconciler with the given configuration.
func NewSpecReconciler(config ReconcilerConfig) *SpecReconciler {
	tables := config.Tables
	if tables == nil {
		tables = DefaultTables()
	}

	policy := config.Policy
	if policy != PolicyBestMatch {
		policy = PolicyFirstMatch
	}

	normalizer := NewNameNormalizer(tables)
	return &SpecReconciler{
		normalizer:       normalizer,
		nameMatcher:      NewNameMatcher(normalizer, tables),
		optionReconciler: NewOptionSetReconciler(NewOptionMatcher(tables), tables),
		policy:           policy,
		debug:            config.EnableDebugLogging,
	}
}

// Reconcile pairs source (Stage 1) specs with target (Stage 2) specs and
// returns one MatchedSpec per pair, in source order. Rules:
//   - only Primary/Secondary source specs participate
//   - zero-option source specs are excluded from the candidate pool
//   - each target spec is consumed by at most one pair
//   - a matched pair with no common options is still reported (the match
//     itself is informative), with an empty option list
//   - output is de-duplicated by exact source name, first occurrence kept
func (r *SpecReconciler) Reconcile(source, target []domain.Spec) []MatchedSpec {
	out := make([]MatchedSpec, 0, len(source))
	consumed := make([]bool, len(target))
	seenNames := make(map[string]bool, len(source))

	// Normalization memo for the duration of this run.
	memo := make(map[string]string, len(source)+len(target))
	normalize := func(name string) string {
		if cached, ok := memo[name]; ok {
			return cached
		}
		norm := r.normalizer.Normalize(name)
		memo[name] = norm
		return norm
	}

	for _, src := range source {
		if src.Tier != domain.TierPrimary && src.Tier != domain.TierSecondary {
			continue
		}
		if strings.TrimSpace(src.Name) == "" || len(cleanOptions(src.Options)) == 0 {
			continue
		}
		if seenNames[src.Name] {
			continue
		}

		j := r.findCandidate(normalize, src, target, consumed)
		if j < 0 {
			continue
		}
		consumed[j] = true
		seenNames[src.Name] = true

		common := r.optionReconciler.CommonOptions(normalize(src.Name), src.Options, target[j].Options)

		if r.debug {
			log.Printf("[RECONCILE] %q ~ %q: %d common option(s)", src.Name, target[j].Name, len(common))
		}

		out = append(out, MatchedSpec{
			Common: domain.CommonSpec{
				Name:    src.Name,
				Options: common,
				Tier:    src.Tier,
			},
			SourceOptions: src.Options,
			TargetOptions: target[j].Options,
		})
	}

	return out
}

// findCandidate returns the target index to pair with src, or -1.
func (r *SpecReconciler) findCandidate(normalize func(string) string, src domain.Spec, target []domain.Spec, consumed []bool) int {
	srcNorm := normalize(src.Name)

	if r.policy == PolicyFirstMatch {
		for j, tgt := range target {
			if consumed[j] {
				continue
			}
			if r.nameMatcher.MatchNormalized(srcNorm, normalize(tgt.Name)) {
				return j
			}
		}
		return -1
	}

	best := -1
	bestScore := 0
	for j, tgt := range target {
		if consumed[j] {
			continue
		}
		tgtNorm := normalize(tgt.Name)
		if !r.nameMatcher.MatchNormalized(srcNorm, tgtNorm) {
			continue
		}
		score := matchStrength(srcNorm, tgtNorm)
		if score > bestScore {
			bestScore = score
			best = j
		}
	}
	return best
}

// matchStrength ranks how a pair of normalized names matched: exact
// equality over substring over anything weaker (synonym group / residual
// plural).
func matchStrength(na, nb string) int {
	switch {
	case na == nb:
		return 3
	case strings.Contains(na, nb) || strings.Contains(nb, na):
		return 2
	default:
		return 1
	}
}

// CommonSpecs extracts the CommonSpec list from reconciled pairs.
func CommonSpecs(matched []MatchedSpec) []domain.CommonSpec {
	out := make([]domain.CommonSpec, 0, len(matched))
	for _, m := range matched {
		out = append(out, m.Common)
	}
	return out
}
