// Package config loads gotdoc settings from a config file, the environment
// and command line flags.
//
// Files are looked up as config.json, config.yaml or config.toml in the
// current directory and then in $HOME/.gotdoc, unless an explicit path is
// given. Every key can be overridden with a GOTDOC_ environment variable
// (GOTDOC_MODEL, GOTDOC_RETRY_MAX_RETRIES, ...). The API key is also read
// from OPENAI_API_KEY.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ZaguanLabs/gotdoc"
	"github.com/ZaguanLabs/gotdoc/cache"
	"github.com/ZaguanLabs/gotdoc/provider"
	"github.com/ZaguanLabs/gotdoc/tokenizer"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "GOTDOC"

// Log formats.
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the complete runtime configuration.
type Config struct {
	OpenAIAPIKey        string        `mapstructure:"openai_api_key"`
	Model               string        `mapstructure:"model"`
	BaseURL             string        `mapstructure:"base_url"`
	Temperature         float32       `mapstructure:"temperature"`
	MaxCompletionTokens int           `mapstructure:"max_completion_tokens"`
	ContextWindow       int           `mapstructure:"context_window"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxTokens           int           `mapstructure:"max_tokens"`
	RequestsPerMinute   int           `mapstructure:"requests_per_minute"`
	Style               string        `mapstructure:"style"`
	Instructions        string        `mapstructure:"instructions"`
	Tokenizer           string        `mapstructure:"tokenizer"`
	LogFormat           string        `mapstructure:"log_format"`
	Retry               RetryConfig   `mapstructure:"retry"`
	Cache               CacheConfig   `mapstructure:"cache"`
}

// RetryConfig mirrors gotdoc.RetryConfig.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
	Backoff    bool          `mapstructure:"backoff"`
}

// CacheConfig selects the chunk cache backend.
type CacheConfig struct {
	Backend    string        `mapstructure:"backend"`
	TTL        time.Duration `mapstructure:"ttl"`
	RedisURL   string        `mapstructure:"redis_url"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
}

// SetDefaults registers the default of every key on v. Keys need a default
// to be overridable from the environment.
func SetDefaults(v *viper.Viper) {
	retry := gotdoc.DefaultRetryConfig()

	v.SetDefault("openai_api_key", "")
	v.SetDefault("model", provider.DefaultModel)
	v.SetDefault("base_url", "")
	v.SetDefault("temperature", provider.DefaultTemperature)
	v.SetDefault("max_completion_tokens", gotdoc.DefaultMaxCompletionTokens)
	v.SetDefault("context_window", 0)
	v.SetDefault("timeout", provider.DefaultTimeout)
	v.SetDefault("max_tokens", gotdoc.DefaultMaxTokens)
	v.SetDefault("requests_per_minute", 0)
	v.SetDefault("style", string(gotdoc.StyleFormal))
	v.SetDefault("instructions", "")
	v.SetDefault("tokenizer", tokenizer.KindTiktoken)
	v.SetDefault("log_format", LogFormatAuto)

	v.SetDefault("retry.max_retries", retry.MaxRetries)
	v.SetDefault("retry.base_delay", retry.BaseDelay)
	v.SetDefault("retry.max_delay", retry.MaxDelay)
	v.SetDefault("retry.backoff", retry.Backoff)

	v.SetDefault("cache.backend", cache.BackendNone)
	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.sqlite_path", "gotdoc-cache.db")
	v.SetDefault("cache.key_prefix", cache.DefaultKeyPrefix)
}

// Load reads the configuration into v and decodes it. When path is empty a
// missing config file is not an error. Flags bound to v with BindPFlag
// before the call take precedence over every other source.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("openai_api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, &gotdoc.ConfigError{Key: "openai_api_key", Message: "cannot bind environment", Cause: err}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".gotdoc"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, &gotdoc.ConfigError{Message: "cannot read config file", Cause: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &gotdoc.ConfigError{Message: "cannot decode config", Cause: err}
	}

	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)
	return &cfg, nil
}

// Validate checks the values that do not depend on the command being run.
func (c *Config) Validate() error {
	if c.MaxTokens <= 0 {
		return &gotdoc.ConfigError{Key: "max_tokens", Message: fmt.Sprintf("must be positive, got %d", c.MaxTokens)}
	}
	// A zero temperature is dropped from the request body and the API
	// falls back to its own default.
	if c.Temperature <= 0 || c.Temperature > 2 {
		return &gotdoc.ConfigError{Key: "temperature", Message: fmt.Sprintf("must be above 0 and at most 2, got %g", c.Temperature)}
	}
	if c.MaxCompletionTokens < 0 {
		return &gotdoc.ConfigError{Key: "max_completion_tokens", Message: "must not be negative"}
	}
	if c.RequestsPerMinute < 0 {
		return &gotdoc.ConfigError{Key: "requests_per_minute", Message: "must not be negative"}
	}
	if c.Retry.MaxRetries < 0 {
		return &gotdoc.ConfigError{Key: "retry.max_retries", Message: "must not be negative"}
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		return &gotdoc.ConfigError{Key: "retry", Message: "delays must not be negative"}
	}
	if _, ok := gotdoc.ParseStyle(c.Style); !ok {
		return &gotdoc.ConfigError{Key: "style", Message: fmt.Sprintf("unknown style %q", c.Style)}
	}

	switch strings.ToLower(c.Tokenizer) {
	case "", tokenizer.KindTiktoken, tokenizer.KindEstimate:
	default:
		return &gotdoc.ConfigError{Key: "tokenizer", Message: fmt.Sprintf("unknown tokenizer %q", c.Tokenizer)}
	}

	switch strings.ToLower(c.LogFormat) {
	case "", LogFormatAuto, LogFormatText, LogFormatJSON:
	default:
		return &gotdoc.ConfigError{Key: "log_format", Message: fmt.Sprintf("unknown log format %q", c.LogFormat)}
	}

	switch strings.ToLower(c.Cache.Backend) {
	case "", cache.BackendNone:
	case cache.BackendMemory:
		return &gotdoc.ConfigError{Key: "cache.backend", Message: "the memory cache does not outlive the process; use sqlite or redis"}
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return &gotdoc.ConfigError{Key: "cache.redis_url", Message: "required for the redis backend"}
		}
	case cache.BackendSQLite:
		if c.Cache.SQLitePath == "" {
			return &gotdoc.ConfigError{Key: "cache.sqlite_path", Message: "required for the sqlite backend"}
		}
	default:
		return &gotdoc.ConfigError{Key: "cache.backend", Message: fmt.Sprintf("unknown backend %q", c.Cache.Backend)}
	}

	return nil
}

// RequireAPIKey fails when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.OpenAIAPIKey == "" {
		return &gotdoc.ConfigError{
			Key:     "openai_api_key",
			Message: "OpenAI API key is required (set OPENAI_API_KEY or add OPENAI_API_KEY to config.json)",
		}
	}
	return nil
}

// RetryPolicy converts the retry section for gotdoc.WithRetryConfig.
func (c *Config) RetryPolicy() gotdoc.RetryConfig {
	return gotdoc.RetryConfig{
		MaxRetries: c.Retry.MaxRetries,
		BaseDelay:  c.Retry.BaseDelay,
		MaxDelay:   c.Retry.MaxDelay,
		Backoff:    c.Retry.Backoff,
	}
}

// CacheOptions converts the cache section for cache.Open.
func (c *Config) CacheOptions() cache.Config {
	return cache.Config{
		Backend:    c.Cache.Backend,
		TTL:        c.Cache.TTL,
		RedisURL:   c.Cache.RedisURL,
		SQLitePath: c.Cache.SQLitePath,
		KeyPrefix:  c.Cache.KeyPrefix,
	}
}

// ProviderOptions converts the model settings for provider.NewOpenAIProvider.
// The tokenizer and logger are left for the caller to fill in.
func (c *Config) ProviderOptions() provider.OpenAIConfig {
	return provider.OpenAIConfig{
		APIKey:              c.OpenAIAPIKey,
		Model:               c.Model,
		Temperature:         c.Temperature,
		BaseURL:             c.BaseURL,
		MaxCompletionTokens: c.MaxCompletionTokens,
		ContextWindow:       c.ContextWindow,
		Timeout:             c.Timeout,
	}
}

// TranslationStyle returns the parsed style, StyleFormal when unset.
func (c *Config) TranslationStyle() gotdoc.TranslationStyle {
	style, _ := gotdoc.ParseStyle(c.Style)
	return style
}
