// Package config handles configuration loading for MediaLens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"    yaml:"storage"`
	Collection CollectionConfig `mapstructure:"collection" yaml:"collection"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"   yaml:"analysis"`
	LLM        LLMConfig        `mapstructure:"llm"        yaml:"llm"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	Path      string `mapstructure:"path"       yaml:"path"`
	MediaSeed string `mapstructure:"media_seed" yaml:"media_seed"` // YAML file with media-source profiles
}

// CollectionConfig holds RSS collection settings.
type CollectionConfig struct {
	LookbackHours int            `mapstructure:"lookback_hours" yaml:"lookback_hours"`
	MinDelaySec   int            `mapstructure:"min_delay_sec"  yaml:"min_delay_sec"`
	MaxDelaySec   int            `mapstructure:"max_delay_sec"  yaml:"max_delay_sec"`
	Sources       []SourceConfig `mapstructure:"sources"        yaml:"sources"`
}

// SourceConfig configures one news publisher.
type SourceConfig struct {
	Name    string       `mapstructure:"name"    yaml:"name"`
	Variant string       `mapstructure:"variant" yaml:"variant"` // parser variant; defaults to name
	Enabled bool         `mapstructure:"enabled" yaml:"enabled"`
	Feeds   []FeedConfig `mapstructure:"feeds"   yaml:"feeds"`

	// Per-source overrides for the inter-fetch delay. Zero means use the
	// collection-level value.
	MinDelaySec int `mapstructure:"min_delay_sec" yaml:"min_delay_sec"`
	MaxDelaySec int `mapstructure:"max_delay_sec" yaml:"max_delay_sec"`
}

// FeedConfig is one named RSS feed URL.
type FeedConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url"  yaml:"url"`
}

// AnalysisConfig holds AI analysis settings.
type AnalysisConfig struct {
	TargetDay           string  `mapstructure:"target_day"             yaml:"target_day"` // "previous_day" or "current_day"
	ChunkSize           int     `mapstructure:"chunk_size"             yaml:"chunk_size"`
	ChunkDelaySec       int     `mapstructure:"chunk_delay_sec"        yaml:"chunk_delay_sec"`
	InterSourceDelaySec int     `mapstructure:"inter_source_delay_sec" yaml:"inter_source_delay_sec"`
	Temperature         float64 `mapstructure:"temperature"            yaml:"temperature"`
	MaxTokens           int     `mapstructure:"max_tokens"             yaml:"max_tokens"`
}

// LLMConfig holds DeepSeek API configuration.
type LLMConfig struct {
	APIKey     string  `mapstructure:"api_key"     yaml:"api_key"`
	Model      string  `mapstructure:"model"       yaml:"model"`
	BaseURL    string  `mapstructure:"base_url"    yaml:"base_url"`
	TimeoutSec int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	RateLimit  float64 `mapstructure:"rate_limit"  yaml:"rate_limit"` // requests per second
	RateBurst  int     `mapstructure:"rate_burst"  yaml:"rate_burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// FeedMap converts the feed list into the name→URL map the parsers take.
func (s SourceConfig) FeedMap() map[string]string {
	feeds := make(map[string]string, len(s.Feeds))
	for _, f := range s.Feeds {
		feeds[f.Name] = f.URL
	}
	return feeds
}

// MinDelay returns the effective inter-fetch minimum for a source.
func (s SourceConfig) MinDelay(c CollectionConfig) time.Duration {
	if s.MinDelaySec > 0 {
		return time.Duration(s.MinDelaySec) * time.Second
	}
	return time.Duration(c.MinDelaySec) * time.Second
}

// MaxDelay returns the effective inter-fetch maximum for a source.
func (s SourceConfig) MaxDelay(c CollectionConfig) time.Duration {
	if s.MaxDelaySec > 0 {
		return time.Duration(s.MaxDelaySec) * time.Second
	}
	return time.Duration(c.MaxDelaySec) * time.Second
}

// EnabledSources filters the configured sources down to the enabled ones.
func (c CollectionConfig) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources))
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.medialens/config.yaml (home directory)
//  3. /etc/medialens/config.yaml (system)
//
// Environment variables override config file values.
// Format: MEDIALENS_<SECTION>_<KEY>, e.g., MEDIALENS_LLM_API_KEY
func Load() (*Config, error) {
	// Credentials may live in a .env file next to the binary.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".medialens"))
	v.AddConfigPath("/etc/medialens")

	// Environment variable settings
	v.SetEnvPrefix("MEDIALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if len(cfg.Collection.Sources) == 0 {
		cfg.Collection.Sources = DefaultSources()
	}

	// Override sensitive values from environment
	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("MEDIALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if len(cfg.Collection.Sources) == 0 {
		cfg.Collection.Sources = DefaultSources()
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.path", "news_analysis.db")
	v.SetDefault("storage.media_seed", "data/media_sources.yaml")

	// Collection defaults
	v.SetDefault("collection.lookback_hours", 20)
	v.SetDefault("collection.min_delay_sec", 1)
	v.SetDefault("collection.max_delay_sec", 5)

	// Analysis defaults
	v.SetDefault("analysis.target_day", "previous_day")
	v.SetDefault("analysis.chunk_size", 60)
	v.SetDefault("analysis.chunk_delay_sec", 120)
	v.SetDefault("analysis.inter_source_delay_sec", 120)
	v.SetDefault("analysis.temperature", 0.1)
	v.SetDefault("analysis.max_tokens", 1200)

	// LLM defaults
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("llm.timeout_sec", 180)
	v.SetDefault("llm.rate_limit", 1.0)
	v.SetDefault("llm.rate_burst", 2)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// DEEPSEEK_API_KEY is accepted as the conventional name alongside the
// prefixed form.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("MEDIALENS_LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
