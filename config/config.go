package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Reconcile ReconcileConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMConfig holds extraction API configuration
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP      int `mapstructure:"per_ip"`
	LLMPerHour int `mapstructure:"llm_per_hour"`
}

// ReconcileConfig holds reconciliation engine configuration
type ReconcileConfig struct {
	MatchPolicy        string `mapstructure:"match_policy"`
	BuyerISQCount      int    `mapstructure:"buyer_isq_count"`
	OptionCap          int    `mapstructure:"option_cap"`
	OptionCapacity     int    `mapstructure:"option_capacity"`
	TablesPath         string `mapstructure:"tables_path"`
	EnableDebugLogging bool   `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/speclens/")

	// Environment variable settings
	v.SetEnvPrefix("SPECLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// LLM defaults. The api_key default registers the key with viper;
	// AutomaticEnv only surfaces env values through Unmarshal for known keys.
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.llm_per_hour", 500)

	// Reconcile defaults
	v.SetDefault("reconcile.match_policy", "first")
	v.SetDefault("reconcile.buyer_isq_count", 2)
	v.SetDefault("reconcile.option_cap", 8)
	v.SetDefault("reconcile.option_capacity", 5)
	v.SetDefault("reconcile.tables_path", "")
	v.SetDefault("reconcile.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required (set SPECLENS_LLM_API_KEY)")
	}

	if config.Reconcile.MatchPolicy != "first" && config.Reconcile.MatchPolicy != "best" {
		return fmt.Errorf("match policy must be 'first' or 'best', got: %s", config.Reconcile.MatchPolicy)
	}

	if config.Reconcile.BuyerISQCount < 1 {
		return fmt.Errorf("buyer ISQ count must be at least 1, got: %d", config.Reconcile.BuyerISQCount)
	}

	if config.Reconcile.OptionCap < 1 {
		return fmt.Errorf("option cap must be at least 1, got: %d", config.Reconcile.OptionCap)
	}

	return nil
}
