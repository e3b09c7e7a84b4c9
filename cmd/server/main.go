package main

import (
	"fmt"
	"log"
	"os"

	"github.com/speclens/backend/config"
	httpDelivery "github.com/speclens/backend/internal/delivery/http"
	"github.com/speclens/backend/internal/infrastructure/cache"
	"github.com/speclens/backend/internal/infrastructure/llm"
	"github.com/speclens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting SpecLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Matching tables: defaults, optionally overridden from file
	tables, err := usecase.LoadTables(cfg.Reconcile.TablesPath)
	if err != nil {
		log.Fatalf("Failed to load matching tables: %v", err)
	}
	if cfg.Reconcile.TablesPath != "" {
		log.Printf("Matching tables overridden from %s", cfg.Reconcile.TablesPath)
	}

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	llmClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.RateLimit.LLMPerHour)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		llmClient.SetDebug(true)
		log.Printf("LLM client debug mode enabled")
	}

	if cfg.LLM.APIKey != "" {
		log.Printf("LLM API configured: %s model=%s", cfg.LLM.BaseURL, cfg.LLM.Model)
	} else {
		log.Printf("WARNING: LLM API key NOT CONFIGURED - generate endpoint will fail!")
	}

	// Initialize usecase layer
	isqService := usecase.NewISQService(
		memoryCache,
		llmClient,
		usecase.ISQServiceConfig{
			CacheTTL: cfg.Cache.TTL,
			Reconciler: usecase.ReconcilerConfig{
				Policy:             usecase.MatchPolicy(cfg.Reconcile.MatchPolicy),
				Tables:             tables,
				EnableDebugLogging: cfg.Reconcile.EnableDebugLogging,
			},
			Selector: usecase.SelectorConfig{
				BuyerISQCount:      cfg.Reconcile.BuyerISQCount,
				OptionCap:          cfg.Reconcile.OptionCap,
				OptionCapacity:     cfg.Reconcile.OptionCapacity,
				Tables:             tables,
				EnableDebugLogging: cfg.Reconcile.EnableDebugLogging,
			},
			EnableDebugLogging: cfg.Reconcile.EnableDebugLogging,
		},
	)

	log.Printf("Reconcile: policy=%s, buyer_isqs=%d, option_cap=%d",
		cfg.Reconcile.MatchPolicy,
		cfg.Reconcile.BuyerISQCount,
		cfg.Reconcile.OptionCap)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(isqService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
