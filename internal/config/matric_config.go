package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the cold startup configuration: everything read from the
// environment or config.yaml before any database connection exists. It is
// loaded once at process start and never mutated afterward — operational
// state that changes at runtime (pause/resume, the default-archive
// pointer) lives in the system_config table instead, read through
// internal/schemactx and internal/jobs, not through this struct.
type Config struct {
	DatabaseURL string `mapstructure:"database_url"`

	RedisEnabled  bool          `mapstructure:"redis_enabled"`
	RedisURL      string        `mapstructure:"redis_url"`
	RedisCacheTTL time.Duration `mapstructure:"redis_cache_ttl"`

	OllamaURL       string `mapstructure:"ollama_url"`
	OllamaModel     string `mapstructure:"ollama_model"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	AnthropicModel  string `mapstructure:"anthropic_model"`

	PoolMaxConns      int32         `mapstructure:"pool_max_conns"`
	PoolMinConns      int32         `mapstructure:"pool_min_conns"`
	WorkerConcurrency int           `mapstructure:"worker_concurrency"`
	StallThreshold    time.Duration `mapstructure:"stall_threshold"`

	ChunkMaxTokens int `mapstructure:"chunk_max_tokens"`

	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`
}

// envOnlyKeys lists the daemon's cold settings: these are the keys
// LoadConfig binds as environment variables, in MATRIC_-prefixed
// SCREAMING_SNAKE form, alongside their config.yaml equivalent.
var envOnlyKeys = []string{
	"database_url",
	"redis_enabled",
	"redis_url",
	"redis_cache_ttl",
	"ollama_url",
	"ollama_model",
	"anthropic_api_key",
	"anthropic_model",
	"pool_max_conns",
	"pool_min_conns",
	"worker_concurrency",
	"stall_threshold",
	"chunk_max_tokens",
	"log_format",
	"log_level",
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("redis_enabled", false)
	v.SetDefault("redis_cache_ttl", 5*time.Minute)
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("ollama_model", "llama3")
	v.SetDefault("anthropic_model", "claude-haiku-4-5")
	v.SetDefault("pool_max_conns", int32(10))
	v.SetDefault("pool_min_conns", int32(2))
	v.SetDefault("worker_concurrency", 4)
	v.SetDefault("stall_threshold", 5*time.Minute)
	v.SetDefault("chunk_max_tokens", 1000)
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("matric")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		_ = v.BindEnv(key)
	}

	return v
}

// LoadConfig reads config.yaml (if present at configPath) and environment
// variables (MATRIC_DATABASE_URL, MATRIC_REDIS_URL, ...), env taking
// precedence, and decodes the result into a Config. A missing configPath is
// not an error — the daemon can run on environment variables alone.
func LoadConfig(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: database_url is required (set MATRIC_DATABASE_URL or database_url in config.yaml)")
	}

	return &cfg, nil
}
