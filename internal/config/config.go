package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultGenerationTimeout = 25 * time.Second
	defaultMaxTokens         = 4000
	defaultTemperature       = 0.7
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// text generation
	LLMProvider           string        `toml:"llm_provider"` // openai | gemini
	LLMBaseURL            string        `toml:"llm_base_url"`
	LLMModel              string        `toml:"llm_model"`
	LLMTemperature        float64       `toml:"llm_temperature"`
	LLMMaxTokens          int           `toml:"llm_max_tokens"`
	GenerationTimeout     time.Duration `toml:"generation_timeout"`
	GenerateAllowedPerMin int           `toml:"generate_allowed_per_min"`
	// catalog
	CatalogCacheSizeMB int           `toml:"catalog_cache_size_mb"`
	CatalogCacheTTL    time.Duration `toml:"catalog_cache_ttl"`
	// allowed CORS origins for the web client
	AllowedOrigins []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the config for the given env,
// with defaults applied for the unset text generation and cache fields.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] not found in [%s]", env, path)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LLMProvider == "" {
		c.LLMProvider = "openai"
	}
	if c.LLMTemperature == 0 {
		c.LLMTemperature = defaultTemperature
	}
	if c.LLMMaxTokens <= 0 {
		c.LLMMaxTokens = defaultMaxTokens
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = defaultGenerationTimeout
	}
	if c.GenerateAllowedPerMin <= 0 {
		c.GenerateAllowedPerMin = 5
	}
	if c.CatalogCacheSizeMB <= 0 {
		c.CatalogCacheSizeMB = 8
	}
	if c.CatalogCacheTTL <= 0 {
		c.CatalogCacheTTL = 30 * time.Second
	}
}
