package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Port      string `mapstructure:"PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Model provider.
	AIProvider       string        `mapstructure:"AI_PROVIDER"`
	OpenAIKey        string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel      string        `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL    string        `mapstructure:"OPENAI_BASE_URL"`
	GeminiKey        string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel      string        `mapstructure:"GEMINI_MODEL"`
	ModelTimeout     time.Duration `mapstructure:"MODEL_TIMEOUT"`
	ModelTemperature float64       `mapstructure:"MODEL_TEMPERATURE"`
	ModelMaxTokens   int           `mapstructure:"MODEL_MAX_TOKENS"`

	// Optional backing stores; empty disables them.
	RedisURL    string        `mapstructure:"REDIS_URL"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL"`
	DatabaseURL string        `mapstructure:"DATABASE_URL"`

	// Dialogue policy.
	RequireName        bool   `mapstructure:"REQUIRE_NAME"`
	RequirePhoneClinic bool   `mapstructure:"REQUIRE_PHONE_CLINIC"`
	HistoryWindow      int    `mapstructure:"HISTORY_WINDOW"`
	HistoryUserTurns   int    `mapstructure:"HISTORY_USER_TURNS"`
	ContextByteBudget  int    `mapstructure:"CONTEXT_BYTE_BUDGET"`
	CTAURL             string `mapstructure:"CTA_URL"`

	// HTTP.
	CORSOrigins        string `mapstructure:"CORS_ORIGINS"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RateLimitBurst     int    `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]any{
	"PORT":                  "8080",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "console",
	"AI_PROVIDER":           "auto",
	"OPENAI_API_KEY":        "",
	"OPENAI_MODEL":          "gpt-4o-mini",
	"OPENAI_BASE_URL":       "",
	"GEMINI_API_KEY":        "",
	"GEMINI_MODEL":          "gemini-1.5-flash",
	"MODEL_TIMEOUT":         "8s",
	"MODEL_TEMPERATURE":     0.3,
	"MODEL_MAX_TOKENS":      300,
	"REDIS_URL":             "",
	"CACHE_TTL":             "10m",
	"DATABASE_URL":          "",
	"REQUIRE_NAME":          true,
	"REQUIRE_PHONE_CLINIC":  false,
	"HISTORY_WINDOW":        8,
	"HISTORY_USER_TURNS":    3,
	"CONTEXT_BYTE_BUDGET":   2000,
	"CTA_URL":               "",
	"CORS_ORIGINS":          "*",
	"RATE_LIMIT_PER_MINUTE": 60,
	"RATE_LIMIT_BURST":      10,
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.AIProvider) {
	case "auto", "openai", "gemini", "none":
	default:
		errs = append(errs, fmt.Errorf("AI_PROVIDER %q is not one of auto|openai|gemini|none", c.AIProvider))
	}
	if c.HistoryWindow < 1 {
		errs = append(errs, errors.New("HISTORY_WINDOW must be >= 1"))
	}
	if c.HistoryUserTurns < 1 {
		errs = append(errs, errors.New("HISTORY_USER_TURNS must be >= 1"))
	}
	if c.ContextByteBudget < 0 {
		errs = append(errs, errors.New("CONTEXT_BYTE_BUDGET must be >= 0"))
	}
	if c.ModelTemperature < 0 || c.ModelTemperature > 2 {
		errs = append(errs, errors.New("MODEL_TEMPERATURE must be within [0,2]"))
	}
	if c.ModelTimeout <= 0 {
		errs = append(errs, errors.New("MODEL_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Origins splits CORS_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
