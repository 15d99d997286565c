package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	AdminEmail        string `env:"ADMIN_EMAIL,required" validate:"required,email"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH,required" validate:"required"`
	TokenSigningKey   string `env:"TOKEN_SIGNING_KEY,required" validate:"required,min=32"`
	EncryptionKey     string `env:"ENCRYPTION_KEY,required" validate:"required,len=32"`

	CacheProvider        string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisAddr            string `env:"REDIS_ADDR" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`

	RuleCacheTTL      time.Duration `env:"RULE_CACHE_TTL" envDefault:"5m"`
	PricingDebounce   time.Duration `env:"PRICING_DEBOUNCE" envDefault:"250ms"`
	PricingTimeout    time.Duration `env:"PRICING_TIMEOUT" envDefault:"5s"`
	MonogramSurcharge string        `env:"MONOGRAM_SURCHARGE" envDefault:"50.00"`

	CatalogFile string `env:"CATALOG_FILE"`

	EmailProvider string `env:"EMAIL_PROVIDER" validate:"omitempty,oneof=resend"`
	ResendAPIKey  string `env:"RESEND_API_KEY" validate:"required_if=EmailProvider resend"`
	EmailFrom     string `env:"EMAIL_FROM" validate:"required_if=EmailProvider resend,omitempty,email"`

	StoreName string `env:"STORE_NAME" envDefault:"Atelier"`
	SentryDSN string `env:"SENTRY_DSN"`
	BaseURL   string `env:"BASE_URL" validate:"omitempty,url"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	surcharge, err := decimal.NewFromString(strings.TrimSpace(c.MonogramSurcharge))
	if err != nil {
		return fmt.Errorf("MONOGRAM_SURCHARGE must be a decimal amount: %w", err)
	}
	if surcharge.IsNegative() {
		return fmt.Errorf("MONOGRAM_SURCHARGE must be zero or positive")
	}

	if c.RuleCacheTTL <= 0 {
		return fmt.Errorf("RULE_CACHE_TTL must be positive")
	}
	if c.PricingDebounce < 0 {
		return fmt.Errorf("PRICING_DEBOUNCE must be zero or positive")
	}
	if c.PricingTimeout <= 0 {
		return fmt.Errorf("PRICING_TIMEOUT must be positive")
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	return nil
}

// Surcharge returns the parsed monogram surcharge. validate guarantees the
// value parses, so the zero fallback is unreachable after Load.
func (c *Config) Surcharge() decimal.Decimal {
	surcharge, err := decimal.NewFromString(strings.TrimSpace(c.MonogramSurcharge))
	if err != nil {
		return decimal.Zero
	}
	return surcharge
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
