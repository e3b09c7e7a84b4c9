package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching completed
// reconciliation results between requests.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// StageClient defines the interface for the LLM-backed extraction stages.
// Implementations must never surface raw fetch failures into the engine:
// on exhausted retries they return an error the caller degrades to an
// empty record.
type StageClient interface {
	GenerateStage1(ctx context.Context, category string) (*Stage1Record, error)
	GenerateStage2(ctx context.Context, category string, urls []string) (*Stage2Record, error)
}
