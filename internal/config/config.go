// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// CORS modes.
const (
	CORSModeAllowlist  = "allowlist"
	CORSModePermissive = "permissive"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev" validate:"oneof=dev test prod"`
	Port   int    `env:"PORT" envDefault:"8080" validate:"min=1,max=65535"`

	// Logging
	LogLevel          string `env:"LOG_LEVEL"`
	LogOutput         string `env:"LOG_OUTPUT" envDefault:"stdout" validate:"oneof=stdout file"`
	LogFilePath       string `env:"LOG_FILE_PATH" envDefault:"logs/gateway.log"`
	LogFileMaxSizeMB  int    `env:"LOG_FILE_MAX_SIZE_MB" envDefault:"50" validate:"min=1"`
	LogFileMaxBackups int    `env:"LOG_FILE_MAX_BACKUPS" envDefault:"5" validate:"min=0"`
	LogFileMaxAgeDays int    `env:"LOG_FILE_MAX_AGE_DAYS" envDefault:"14" validate:"min=0"`

	// Upstream completion API
	OpenRouterAPIKey  string        `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1" validate:"url"`
	OpenRouterReferer string        `env:"OPENROUTER_REFERER" envDefault:"https://bot-demo-2.vercel.app"`
	OpenRouterTitle   string        `env:"OPENROUTER_TITLE" envDefault:"Assistant IA Démo"`
	ChatModel         string        `env:"CHAT_MODEL" envDefault:"mistralai/mistral-7b-instruct" validate:"required"`
	ChatTemperature   float64       `env:"CHAT_TEMPERATURE" envDefault:"0.5" validate:"gte=0,lte=2"`
	ChatMaxTokens     int           `env:"CHAT_MAX_TOKENS" envDefault:"512" validate:"min=1"`
	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s" validate:"gt=0"`

	// Access gate. The client tag is a coarse deterrent, not authentication.
	ClientTagHeader   string `env:"CLIENT_TAG_HEADER" envDefault:"X-Syntrava-Client" validate:"required"`
	ClientTag         string `env:"CLIENT_TAG" envDefault:"syntrava-vitrine-1" validate:"required_if=ClientTagEnforced true"`
	ClientTagEnforced bool   `env:"CLIENT_TAG_ENFORCED" envDefault:"true"`
	CORSMode          string `env:"CORS_MODE" envDefault:"allowlist" validate:"oneof=allowlist permissive"`
	CORSAllowOrigins  string `env:"CORS_ALLOW_ORIGINS" envDefault:"https://syntrava-ai-assistant.vercel.app,http://localhost:3000"`
	CORSEnforceOrigin bool   `env:"CORS_ENFORCE_ORIGIN" envDefault:"true"`

	// Per-client sliding window
	RateLimitMaxRequests   int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"20" validate:"min=1"`
	RateLimitWindow        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s" validate:"gt=0"`
	RateLimitSweepInterval time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL" envDefault:"5m"`
	// GlobalRateLimitPerMin caps the whole process; 0 disables it.
	GlobalRateLimitPerMin int  `env:"GLOBAL_RATE_LIMIT_PER_MIN" envDefault:"0" validate:"min=0"`
	TrustForwardedFor     bool `env:"TRUST_FORWARDED_FOR" envDefault:"true"`

	// Context bounding and output shaping
	HistoryMaxTurns    int    `env:"HISTORY_MAX_TURNS" envDefault:"10" validate:"min=0"`
	MaxContentChars    int    `env:"MAX_CONTENT_CHARS" envDefault:"2000" validate:"min=1"`
	SentenceTruncation bool   `env:"SENTENCE_TRUNCATION" envDefault:"true"`
	MaxBodyBytes       int64  `env:"MAX_BODY_BYTES" envDefault:"65536" validate:"min=1"`
	Language           string `env:"LANGUAGE" envDefault:"fr" validate:"oneof=fr en"`

	// Server
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"45s" validate:"gt=0"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"assistant-gateway"`
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c Config) Validate() error {
	return getValidator().Struct(c)
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// PermissiveCORS reports whether every origin is allowed.
func (c Config) PermissiveCORS() bool { return c.CORSMode == CORSModePermissive }

// AllowedOrigins returns the normalized allow-list. Trailing slashes are
// dropped since browsers never send them in the Origin header.
func (c Config) AllowedOrigins() []string {
	return ParseOrigins(c.CORSAllowOrigins)
}

// ParseOrigins splits a comma-separated origin list, trimming spaces and trailing slashes.
func ParseOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
