package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/clinickit/pkg/redis"
)

const (
	GuardMemory = "memory"
	GuardRedis  = "redis"
)

// Config is the complete clinicpay configuration.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"` // overrides the APP_ENV default level

	API      API
	Checkout Checkout
	Redis    redis.Config
}

// API describes the billing backend.
type API struct {
	URL                string        `env:"CLINIC_API_URL,required"`
	Token              string        `env:"CLINIC_API_TOKEN"`
	Timeout            time.Duration `env:"CLINIC_API_TIMEOUT" envDefault:"30s"`
	SessionRefreshPath string        `env:"CLINIC_SESSION_REFRESH_PATH" envDefault:"/auth/me"`
}

// Checkout tunes the activation flow.
type Checkout struct {
	PollAttempts int           `env:"CHECKOUT_POLL_ATTEMPTS" envDefault:"3"`
	PollInterval time.Duration `env:"CHECKOUT_POLL_INTERVAL" envDefault:"5s"`
	Currency     string        `env:"CHECKOUT_CURRENCY" envDefault:"BRL"`
	Locale       string        `env:"CHECKOUT_LOCALE" envDefault:"pt-BR"`
	Guard        string        `env:"CHECKOUT_GUARD" envDefault:"memory"` // memory | redis
	GuardTTL     time.Duration `env:"CHECKOUT_GUARD_TTL" envDefault:"2m"`
	GuardKey     string        `env:"CHECKOUT_GUARD_KEY"`                 // usually the paying user's ID
}

// CurrencyUnit parses the configured ISO 4217 code.
func (c Checkout) CurrencyUnit() (currency.Unit, error) {
	u, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("%w: currency %q: %w", ErrInvalidConfig, c.Currency, err)
	}
	return u, nil
}

// Language parses the configured BCP 47 locale.
func (c Checkout) Language() (language.Tag, error) {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w: locale %q: %w", ErrInvalidConfig, c.Locale, err)
	}
	return tag, nil
}

// Validate checks values env parsing cannot express.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.API.URL, "http://") && !strings.HasPrefix(c.API.URL, "https://") {
		return fmt.Errorf("%w: CLINIC_API_URL must be an http(s) URL", ErrInvalidConfig)
	}
	if c.Checkout.PollAttempts < 1 {
		return fmt.Errorf("%w: CHECKOUT_POLL_ATTEMPTS must be at least 1", ErrInvalidConfig)
	}
	if c.Checkout.PollInterval <= 0 {
		return fmt.Errorf("%w: CHECKOUT_POLL_INTERVAL must be positive", ErrInvalidConfig)
	}
	switch c.Checkout.Guard {
	case GuardMemory, GuardRedis:
	default:
		return fmt.Errorf("%w: CHECKOUT_GUARD must be %q or %q", ErrInvalidConfig, GuardMemory, GuardRedis)
	}
	if _, err := c.Checkout.CurrencyUnit(); err != nil {
		return err
	}
	if _, err := c.Checkout.Language(); err != nil {
		return err
	}
	return nil
}
