package usecase

import (
	"log"
	"sort"
	"strings"

	"github.com/speclens/backend/internal/domain"
)

// Scoring weights for buyer-ISQ selection
const (
	tierWeightPrimary   = 10.0
	tierWeightSecondary = 5.0
	importanceBonus     = 3.0 // normalized name hits the high-value attribute list

	defaultBuyerISQCount  = 2
	defaultOptionCap      = 8
	defaultOptionCapacity = 5 // option-richness reward ceiling
)

// SelectorConfig holds configuration for the buyer-ISQ selector.
type SelectorConfig struct {
	BuyerISQCount      int // top-K specs promoted to buyer ISQs
	OptionCap          int // hard cap on options per buyer ISQ
	OptionCapacity     int // option count rewarded by the score, at most
	Tables             *Tables
	EnableDebugLogging bool
}

// BuyerISQSelector scores reconciled specs by tier, option richness and
// attribute importance, and promotes a bounded top-K to buyer-facing ISQs
// with blended option lists.
type BuyerISQSelector struct {
	normalizer       *NameNormalizer
	optionReconciler *OptionSetReconciler
	tables           *Tables
	count            int
	optionCap        int
	capacity         int
	debug            bool
}

// NewBuyerISQSelector creates a selector with the given configuration.
func NewBuyerISQSelector(config SelectorConfig) *BuyerISQSelector {
	tables := config.Tables
	if tables == nil {
		tables = DefaultTables()
	}

	count := config.BuyerISQCount
	if count <= 0 {
		count = defaultBuyerISQCount
	}
	optionCap := config.OptionCap
	if optionCap <= 0 {
		optionCap = defaultOptionCap
	}
	capacity := config.OptionCapacity
	if capacity <= 0 {
		capacity = defaultOptionCapacity
	}

	return &BuyerISQSelector{
		normalizer:       NewNameNormalizer(tables),
		optionReconciler: NewOptionSetReconciler(NewOptionMatcher(tables), tables),
		tables:           tables,
		count:            count,
		optionCap:        optionCap,
		capacity:         capacity,
		debug:            config.EnableDebugLogging,
	}
}

// Select returns at most min(K, len(matched)) buyer ISQs, ordered by
// descending score (stable on ties). Each promoted spec's option list is
// recomputed from its original source/target pair via the blended
// buyer-options treatment, so buyers see the full capped list rather than
// just the common subset.
func (s *BuyerISQSelector) Select(matched []MatchedSpec) []domain.BuyerISQ {
	ranked := make([]MatchedSpec, len(matched))
	copy(ranked, matched)

	sort.SliceStable(ranked, func(i, j int) bool {
		return s.score(ranked[i]) > s.score(ranked[j])
	})

	count := s.count
	if count > len(ranked) {
		count = len(ranked)
	}

	out := make([]domain.BuyerISQ, 0, count)
	for _, m := range ranked[:count] {
		options := s.optionReconciler.BuyerOptions(m.SourceOptions, m.TargetOptions, s.optionCap)
		if s.debug {
			log.Printf("[SELECT] %q score=%.1f options=%d", m.Common.Name, s.score(m), len(options))
		}
		out = append(out, domain.BuyerISQ{
			Name:    m.Common.Name,
			Options: options,
			Tier:    m.Common.Tier,
		})
	}

	return out
}

// score is tierWeight + min(option count, capacity) + importance bonus.
// Every matched spec already appears in the Stage 2 vocabulary by
// construction, so the bonus discriminates on the curated attribute list.
func (s *BuyerISQSelector) score(m MatchedSpec) float64 {
	score := 0.0
	switch m.Common.Tier {
	case domain.TierPrimary:
		score += tierWeightPrimary
	case domain.TierSecondary:
		score += tierWeightSecondary
	}

	richness := len(m.Common.Options)
	if richness > s.capacity {
		richness = s.capacity
	}
	score += float64(richness)

	if s.isImportantAttribute(m.Common.Name) {
		score += importanceBonus
	}

	return score
}

func (s *BuyerISQSelector) isImportantAttribute(name string) bool {
	normalized := s.normalizer.Normalize(name)
	for _, attr := range s.tables.ImportantAttributes {
		if strings.Contains(normalized, attr) {
			return true
		}
	}
	return false
}
