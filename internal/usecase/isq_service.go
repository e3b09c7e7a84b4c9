package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/speclens/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// ISQServiceConfig holds configuration for the ISQ service.
type ISQServiceConfig struct {
	CacheTTL           time.Duration
	Reconciler         ReconcilerConfig
	Selector           SelectorConfig
	EnableDebugLogging bool
}

// ISQService orchestrates a category run: cache check, the two LLM
// extraction stages, reconciliation, and buyer-ISQ selection.
type ISQService struct {
	cache      domain.CacheRepository
	stages     domain.StageClient
	reconciler *SpecReconciler
	selector   *BuyerISQSelector
	cacheTTL   time.Duration
	debug      bool
}

// NewISQService creates an ISQ service with dependencies.
func NewISQService(
	cache domain.CacheRepository,
	stages domain.StageClient,
	config ISQServiceConfig,
) *ISQService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &ISQService{
		cache:      cache,
		stages:     stages,
		reconciler: NewSpecReconciler(config.Reconciler),
		selector:   NewBuyerISQSelector(config.Selector),
		cacheTTL:   cacheTTL,
		debug:      config.EnableDebugLogging,
	}
}

// Reconcile runs the engine over already-extracted stage records. Pure
// computation: no I/O, no blocking, safe to call concurrently. The result's
// slices are always non-nil; empty lists are the valid "no matches found"
// state.
func (s *ISQService) Reconcile(stage1 *domain.Stage1Record, stage2 *domain.Stage2Record) *domain.ReconcileResult {
	source := flattenStage1(stage1)
	target := flattenStage2(stage2)

	if s.debug {
		log.Printf("[ISQ] Reconciling %d source spec(s) against %d target spec(s)", len(source), len(target))
	}

	matched := s.reconciler.Reconcile(source, target)

	return &domain.ReconcileResult{
		CommonSpecs: CommonSpecs(matched),
		BuyerISQs:   s.selector.Select(matched),
	}
}

// Generate runs the full pipeline for a category.
// Flow: check cache -> extract Stage 1 + Stage 2 -> reconcile -> cache.
// A failed stage degrades to an empty record and the run continues; only
// when both stages come back empty after a failure is ErrStagesUnavailable
// returned (alongside the still-valid empty result).
func (s *ISQService) Generate(ctx context.Context, category string, urls []string) (*domain.ReconcileResult, error) {
	if strings.TrimSpace(category) == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := s.generateCacheKey(category)

	cached, err := s.getFromCache(ctx, cacheKey)
	if err == nil && cached != nil {
		if s.debug {
			log.Printf("[ISQ] Cache hit for category %q", category)
		}
		return cached, nil
	}

	stage1, err := s.stages.GenerateStage1(ctx, category)
	if err != nil {
		log.Printf("[ISQ] Stage 1 extraction failed for %q, degrading to empty record: %v", category, err)
		stage1 = &domain.Stage1Record{}
	}

	stage2, err := s.stages.GenerateStage2(ctx, category, urls)
	if err != nil {
		log.Printf("[ISQ] Stage 2 extraction failed for %q, degrading to empty record: %v", category, err)
		stage2 = &domain.Stage2Record{}
	}

	result := s.Reconcile(stage1, stage2)

	if stage1.IsEmpty() && stage2.IsEmpty() {
		return result, domain.ErrStagesUnavailable
	}

	if err := s.setInCache(ctx, cacheKey, result); err != nil && s.debug {
		log.Printf("[ISQ] Failed to cache result for %q: %v", category, err)
	}

	return result, nil
}

// generateCacheKey creates a normalized cache key for a category.
// Format: "isq:{normalized_category}"
func (s *ISQService) generateCacheKey(category string) string {
	normalized := strings.ToLower(category)
	normalized = nonAlphanumericRegex.ReplaceAllString(normalized, "")
	normalized = multipleSpacesRegex.ReplaceAllString(normalized, " ")
	return fmt.Sprintf("isq:%s", strings.TrimSpace(normalized))
}

// getFromCache retrieves a reconcile result from cache. Cached values come
// back as generic JSON structures, so they are re-marshalled into the
// domain type.
func (s *ISQService) getFromCache(ctx context.Context, key string) (*domain.ReconcileResult, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if result, ok := value.(*domain.ReconcileResult); ok {
		return result, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	var result domain.ReconcileResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, domain.ErrCacheMiss
	}
	if result.CommonSpecs == nil {
		result.CommonSpecs = []domain.CommonSpec{}
	}
	if result.BuyerISQs == nil {
		result.BuyerISQs = []domain.BuyerISQ{}
	}
	return &result, nil
}

// setInCache stores a reconcile result in cache.
func (s *ISQService) setInCache(ctx context.Context, key string, result *domain.ReconcileResult) error {
	return s.cache.Set(ctx, key, result, s.cacheTTL)
}

// flattenStage1 flattens the bucketed Stage 1 record into a Spec list,
// assigning each spec its bucket's tier. Bucket order (primary before
// secondary before tertiary) fixes the scan order for matching.
func flattenStage1(record *domain.Stage1Record) []domain.Spec {
	if record == nil {
		return nil
	}

	var out []domain.Spec
	appendBucket := func(bucket []domain.Stage1Spec, tier domain.Tier) {
		for _, spec := range bucket {
			out = append(out, domain.Spec{
				Name:      spec.SpecName,
				Options:   spec.Options,
				Tier:      tier,
				InputType: spec.InputType,
			})
		}
	}

	for _, sc := range record.SubCategories {
		appendBucket(sc.Primary, domain.TierPrimary)
		appendBucket(sc.Secondary, domain.TierSecondary)
		appendBucket(sc.Tertiary, domain.TierTertiary)
	}
	return out
}

// flattenStage2 flattens the Stage 2 record into a Spec list: the config
// spec first (highest priority), then keys, then any pre-selected buyer
// specs. Tier is left unset; target specs adopt the matched source tier.
func flattenStage2(record *domain.Stage2Record) []domain.Spec {
	if record == nil {
		return nil
	}

	var out []domain.Spec
	if record.Config != nil && strings.TrimSpace(record.Config.Name) != "" {
		out = append(out, domain.Spec{Name: record.Config.Name, Options: record.Config.Options})
	}
	for _, spec := range record.Keys {
		out = append(out, domain.Spec{Name: spec.Name, Options: spec.Options})
	}
	for _, spec := range record.Buyers {
		out = append(out, domain.Spec{Name: spec.Name, Options: spec.Options})
	}
	return out
}
