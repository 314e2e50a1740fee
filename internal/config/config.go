// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Search  SearchConfig  `mapstructure:"search"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	LLM     LLMConfig     `mapstructure:"llm"`
	DB      DBConfig      `mapstructure:"db"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Ops     OpsConfig     `mapstructure:"ops"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SearchConfig configures the search-provider client and query.
type SearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	EngineID string `mapstructure:"engine_id"`
	Query    string `mapstructure:"query"`
	Count    int    `mapstructure:"count"`
	Recency  string `mapstructure:"recency"`
}

// ScrapeConfig governs extraction and batching behavior.
type ScrapeConfig struct {
	Concurrency       int     `mapstructure:"concurrency"`
	BatchPauseSeconds int     `mapstructure:"batch_pause_seconds"`
	NavTimeoutSec     int     `mapstructure:"nav_timeout_seconds"`
	MaxAttempts       int     `mapstructure:"max_attempts"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds"`
	DomainQPS         float64 `mapstructure:"domain_qps"`
	UserAgent         string  `mapstructure:"user_agent"`
	SeenCapacity      int     `mapstructure:"seen_capacity"`
}

// LLMConfig configures the generative providers.
type LLMConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	Endpoint        string `mapstructure:"endpoint"`
	FallbackAPIKey  string `mapstructure:"fallback_api_key"`
	FallbackModel   string `mapstructure:"fallback_model"`
	MaxAttempts     int    `mapstructure:"max_attempts"`
	BackoffBaseSecs int    `mapstructure:"backoff_base_seconds"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// NotifyConfig configures the templated messaging transport. Leaving the
// endpoint empty disables delivery.
type NotifyConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Token      string `mapstructure:"token"`
	TemplateID string `mapstructure:"template_id"`
}

// OpsConfig controls the health/metrics HTTP server.
type OpsConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only surfaces keys viper already knows about during
	// Unmarshal, so keys without defaults (the secrets) are bound explicitly
	// to keep env-only deployments working.
	for key, env := range map[string]string{
		"search.api_key":       "NEWSBRIEF_SEARCH_API_KEY",
		"search.engine_id":     "NEWSBRIEF_SEARCH_ENGINE_ID",
		"llm.api_key":          "NEWSBRIEF_LLM_API_KEY",
		"llm.endpoint":         "NEWSBRIEF_LLM_ENDPOINT",
		"llm.fallback_api_key": "NEWSBRIEF_LLM_FALLBACK_API_KEY",
		"db.dsn":               "NEWSBRIEF_DB_DSN",
		"notify.endpoint":      "NEWSBRIEF_NOTIFY_ENDPOINT",
		"notify.token":         "NEWSBRIEF_NOTIFY_TOKEN",
		"notify.template_id":   "NEWSBRIEF_NOTIFY_TEMPLATE_ID",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.query", "주요 뉴스")
	v.SetDefault("search.count", 20)
	v.SetDefault("search.recency", "d1")
	v.SetDefault("scrape.concurrency", 3)
	v.SetDefault("scrape.batch_pause_seconds", 2)
	v.SetDefault("scrape.nav_timeout_seconds", 25)
	v.SetDefault("scrape.max_attempts", 3)
	v.SetDefault("scrape.retry_delay_seconds", 2)
	v.SetDefault("scrape.domain_qps", 0.5)
	v.SetDefault("scrape.user_agent", "newsbrief/1.0 (+https://github.com/newsbrief)")
	v.SetDefault("scrape.seen_capacity", 1000)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.fallback_model", "gemini-2.0-flash")
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.backoff_base_seconds", 120)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("ops.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits. A missing
// required setting is a startup-time fatal configuration error, never a
// pipeline error.
func (c Config) Validate() error {
	if c.Search.APIKey == "" {
		return fmt.Errorf("search.api_key is required")
	}
	if c.Search.EngineID == "" {
		return fmt.Errorf("search.engine_id is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.Scrape.Concurrency <= 0 {
		return fmt.Errorf("scrape.concurrency must be > 0")
	}
	if c.LLM.MaxAttempts <= 0 {
		return fmt.Errorf("llm.max_attempts must be > 0")
	}
	if c.Ops.Port <= 0 {
		return fmt.Errorf("ops.port must be > 0")
	}
	return nil
}

// BatchPause converts the configured pause into a duration.
func (c Config) BatchPause() time.Duration {
	return time.Duration(c.Scrape.BatchPauseSeconds) * time.Second
}

// NavTimeout converts the configured navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Scrape.NavTimeoutSec) * time.Second
}

// RetryDelay converts the configured extraction retry delay into a duration.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Scrape.RetryDelaySeconds) * time.Second
}

// BackoffBase converts the configured provider backoff into a duration.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.LLM.BackoffBaseSecs) * time.Second
}
