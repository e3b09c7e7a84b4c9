package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/speclens/backend/internal/domain"
)

type stageClientStub struct {
	stage1 func(ctx context.Context, category string) (*domain.Stage1Record, error)
	stage2 func(ctx context.Context, category string, urls []string) (*domain.Stage2Record, error)

	stage1Calls int
	stage2Calls int
}

func (s *stageClientStub) GenerateStage1(ctx context.Context, category string) (*domain.Stage1Record, error) {
	s.stage1Calls++
	if s.stage1 == nil {
		return &domain.Stage1Record{}, nil
	}
	return s.stage1(ctx, category)
}

func (s *stageClientStub) GenerateStage2(ctx context.Context, category string, urls []string) (*domain.Stage2Record, error) {
	s.stage2Calls++
	if s.stage2 == nil {
		return &domain.Stage2Record{}, nil
	}
	return s.stage2(ctx, category, urls)
}

type cacheStub struct {
	values   map[string]interface{}
	getErr   error
	setErr   error
	setCalls int
	lastKey  string
	lastTTL  time.Duration
}

func newCacheStub() *cacheStub {
	return &cacheStub{values: make(map[string]interface{})}
}

func (c *cacheStub) Get(ctx context.Context, key string) (interface{}, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	value, ok := c.values[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.setCalls++
	c.lastKey = key
	c.lastTTL = ttl
	c.values[key] = value
	return nil
}

func (c *cacheStub) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func (c *cacheStub) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.values[key]
	return ok, nil
}

func sampleStage1() *domain.Stage1Record {
	return &domain.Stage1Record{
		Category: "Steel Sheets",
		SubCategories: []domain.SubCategory{
			{
				Name: "Stainless Steel Sheets",
				Primary: []domain.Stage1Spec{
					{SpecName: "Material", Options: []string{"SS304", "MS"}},
				},
				Secondary: []domain.Stage1Spec{
					{SpecName: "Thickness", Options: []string{"2mm", "3mm"}},
				},
				Tertiary: []domain.Stage1Spec{
					{SpecName: "Packaging", Options: []string{"Box"}},
				},
			},
		},
	}
}

func sampleStage2() *domain.Stage2Record {
	return &domain.Stage2Record{
		Config: &domain.Stage2Spec{Name: "Material Type", Options: []string{"304", "Mild Steel"}},
		Keys: []domain.Stage2Spec{
			{Name: "Thk (mm)", Options: []string{"2 mm"}},
		},
		Buyers: []domain.Stage2Spec{
			{Name: "Packaging", Options: []string{"Box"}},
		},
	}
}

func newTestService(cache domain.CacheRepository, stages domain.StageClient) *ISQService {
	return NewISQService(cache, stages, ISQServiceConfig{})
}

func TestServiceReconcile(t *testing.T) {
	svc := newTestService(newCacheStub(), &stageClientStub{})

	t.Run("full pipeline over stage records", func(t *testing.T) {
		result := svc.Reconcile(sampleStage1(), sampleStage2())

		wantCommon := []domain.CommonSpec{
			{Name: "Material", Options: []string{"SS304", "MS"}, Tier: domain.TierPrimary},
			{Name: "Thickness", Options: []string{"2mm"}, Tier: domain.TierSecondary},
		}
		if !reflect.DeepEqual(result.CommonSpecs, wantCommon) {
			t.Errorf("CommonSpecs = %v, want %v", result.CommonSpecs, wantCommon)
		}

		if len(result.BuyerISQs) != 2 {
			t.Fatalf("len(BuyerISQs) = %d, want 2", len(result.BuyerISQs))
		}
		if result.BuyerISQs[0].Name != "Material" || result.BuyerISQs[1].Name != "Thickness" {
			t.Errorf("BuyerISQs order = [%q, %q], want [Material, Thickness]",
				result.BuyerISQs[0].Name, result.BuyerISQs[1].Name)
		}
		if !reflect.DeepEqual(result.BuyerISQs[0].Options, []string{"SS304", "MS"}) {
			t.Errorf("BuyerISQs[0].Options = %v, want %v", result.BuyerISQs[0].Options, []string{"SS304", "MS"})
		}
		if !reflect.DeepEqual(result.BuyerISQs[1].Options, []string{"2mm", "3mm"}) {
			t.Errorf("BuyerISQs[1].Options = %v, want %v", result.BuyerISQs[1].Options, []string{"2mm", "3mm"})
		}
	})

	t.Run("tertiary stage1 specs never reconcile", func(t *testing.T) {
		result := svc.Reconcile(sampleStage1(), sampleStage2())
		for _, cs := range result.CommonSpecs {
			if cs.Name == "Packaging" {
				t.Error("tertiary spec leaked into CommonSpecs")
			}
		}
	})

	t.Run("nil records yield empty non-nil result", func(t *testing.T) {
		result := svc.Reconcile(nil, nil)
		if result.CommonSpecs == nil || result.BuyerISQs == nil {
			t.Fatal("result slices must be non-nil")
		}
		if len(result.CommonSpecs) != 0 || len(result.BuyerISQs) != 0 {
			t.Errorf("Reconcile(nil, nil) = %+v, want empty lists", result)
		}
	})
}

func TestServiceGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("blank category rejected", func(t *testing.T) {
		svc := newTestService(newCacheStub(), &stageClientStub{})
		_, err := svc.Generate(ctx, "   ", nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("Generate() error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("successful run stores the result in cache", func(t *testing.T) {
		cache := newCacheStub()
		stages := &stageClientStub{
			stage1: func(ctx context.Context, category string) (*domain.Stage1Record, error) {
				return sampleStage1(), nil
			},
			stage2: func(ctx context.Context, category string, urls []string) (*domain.Stage2Record, error) {
				return sampleStage2(), nil
			},
		}
		svc := NewISQService(cache, stages, ISQServiceConfig{CacheTTL: time.Hour})

		result, err := svc.Generate(ctx, "Steel Sheets", nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(result.CommonSpecs) != 2 {
			t.Errorf("len(CommonSpecs) = %d, want 2", len(result.CommonSpecs))
		}
		if cache.setCalls != 1 {
			t.Errorf("cache Set called %d times, want 1", cache.setCalls)
		}
		if cache.lastKey != "isq:steel sheets" {
			t.Errorf("cache key = %q, want %q", cache.lastKey, "isq:steel sheets")
		}
		if cache.lastTTL != time.Hour {
			t.Errorf("cache TTL = %v, want %v", cache.lastTTL, time.Hour)
		}
	})

	t.Run("cache hit skips the extraction stages", func(t *testing.T) {
		cache := newCacheStub()
		cache.values["isq:steel sheets"] = &domain.ReconcileResult{
			CommonSpecs: []domain.CommonSpec{{Name: "Material", Options: []string{"MS"}, Tier: domain.TierPrimary}},
			BuyerISQs:   []domain.BuyerISQ{},
		}
		stages := &stageClientStub{}
		svc := newTestService(cache, stages)

		result, err := svc.Generate(ctx, "Steel, Sheets!", nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if stages.stage1Calls != 0 || stages.stage2Calls != 0 {
			t.Error("stage clients must not be called on a cache hit")
		}
		if len(result.CommonSpecs) != 1 || result.CommonSpecs[0].Name != "Material" {
			t.Errorf("CommonSpecs = %v, want the cached spec", result.CommonSpecs)
		}
	})

	t.Run("cached generic JSON value rehydrated", func(t *testing.T) {
		cache := newCacheStub()
		cache.values["isq:steel sheets"] = map[string]interface{}{
			"commonSpecs": []interface{}{
				map[string]interface{}{"name": "Material", "options": []interface{}{"MS"}, "tier": "primary"},
			},
		}
		svc := newTestService(cache, &stageClientStub{})

		result, err := svc.Generate(ctx, "Steel Sheets", nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(result.CommonSpecs) != 1 || result.CommonSpecs[0].Name != "Material" {
			t.Errorf("CommonSpecs = %v, want rehydrated cached spec", result.CommonSpecs)
		}
		if result.BuyerISQs == nil {
			t.Error("BuyerISQs must be rehydrated to a non-nil slice")
		}
	})

	t.Run("failed stage degrades to empty record", func(t *testing.T) {
		cache := newCacheStub()
		stages := &stageClientStub{
			stage1: func(ctx context.Context, category string) (*domain.Stage1Record, error) {
				return nil, domain.ErrLLMAPIFailure
			},
			stage2: func(ctx context.Context, category string, urls []string) (*domain.Stage2Record, error) {
				return sampleStage2(), nil
			},
		}
		svc := newTestService(cache, stages)

		result, err := svc.Generate(ctx, "Steel Sheets", nil)
		if err != nil {
			t.Fatalf("Generate() error = %v, want nil (degraded run)", err)
		}
		if len(result.CommonSpecs) != 0 {
			t.Errorf("CommonSpecs = %v, want empty with no stage1 specs", result.CommonSpecs)
		}
		if cache.setCalls != 1 {
			t.Errorf("cache Set called %d times, want 1", cache.setCalls)
		}
	})

	t.Run("both stages empty reports stages unavailable", func(t *testing.T) {
		cache := newCacheStub()
		stages := &stageClientStub{
			stage1: func(ctx context.Context, category string) (*domain.Stage1Record, error) {
				return nil, domain.ErrLLMAPIFailure
			},
			stage2: func(ctx context.Context, category string, urls []string) (*domain.Stage2Record, error) {
				return nil, domain.ErrLLMAPIFailure
			},
		}
		svc := newTestService(cache, stages)

		result, err := svc.Generate(ctx, "Steel Sheets", nil)
		if !errors.Is(err, domain.ErrStagesUnavailable) {
			t.Fatalf("Generate() error = %v, want ErrStagesUnavailable", err)
		}
		if result == nil || result.CommonSpecs == nil || result.BuyerISQs == nil {
			t.Fatal("Generate() must still return a valid empty result")
		}
		if cache.setCalls != 0 {
			t.Errorf("cache Set called %d times, want 0 for an unavailable run", cache.setCalls)
		}
	})

	t.Run("cache failures never fail the run", func(t *testing.T) {
		cache := newCacheStub()
		cache.getErr = errors.New("cache down")
		cache.setErr = errors.New("cache down")
		stages := &stageClientStub{
			stage1: func(ctx context.Context, category string) (*domain.Stage1Record, error) {
				return sampleStage1(), nil
			},
			stage2: func(ctx context.Context, category string, urls []string) (*domain.Stage2Record, error) {
				return sampleStage2(), nil
			},
		}
		svc := newTestService(cache, stages)

		result, err := svc.Generate(ctx, "Steel Sheets", nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(result.CommonSpecs) != 2 {
			t.Errorf("len(CommonSpecs) = %d, want 2", len(result.CommonSpecs))
		}
	})
}

func TestGenerateCacheKey(t *testing.T) {
	svc := newTestService(newCacheStub(), &stageClientStub{})

	tests := []struct {
		category string
		want     string
	}{
		{"Steel Sheets", "isq:steel sheets"},
		{"Steel, Sheets!", "isq:steel sheets"},
		{"  PVC   Pipes  ", "isq:pvc pipes"},
		{"M-Seal", "isq:mseal"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			if got := svc.generateCacheKey(tt.category); got != tt.want {
				t.Errorf("generateCacheKey(%q) = %q, want %q", tt.category, got, tt.want)
			}
		})
	}
}
