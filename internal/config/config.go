package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Admin is the profile of the deployment's administrator account.
type Admin struct {
	Login    string `env:"ADMIN_LOGIN" envDefault:"admin"`
	Name     string `env:"ADMIN_NAME" envDefault:"Admin"`
	Surname  string `env:"ADMIN_SURNAME" envDefault:"Admin"`
	Email    string `env:"ADMIN_EMAIL" envDefault:"admin@bank.local"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Rates configures the exchange-rate provider and the refresh schedule.
type Rates struct {
	APIURL   string        `env:"RATES_API_URL" envDefault:"https://api.exchangerate.host"`
	Schedule string        `env:"RATES_REFRESH_SCHEDULE" envDefault:"0 0 * * * *"`
	Timezone string        `env:"RATES_TIMEZONE" envDefault:"Europe/Warsaw"`
	Timeout  time.Duration `env:"RATES_TIMEOUT" envDefault:"10s"`
}

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Host        string        `env:"HOST" envDefault:"0.0.0.0"`
	Port        string        `env:"PORT" envDefault:"8080"`
	DatabaseURL string        `env:"DATABASE_URL"`
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"bank-backend"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"60m"`
	CORSOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LogOutput   string        `env:"LOG_OUTPUT" envDefault:"console"`

	// LoginRatePerMinute of 0 disables login throttling.
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginRateBurst     int `env:"LOGIN_RATE_BURST" envDefault:"5"`

	Admin Admin
	Rates Rates
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.CORSOrigins = normalizeOrigins(cfg.CORSOrigins)

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if strings.TrimSpace(cfg.Admin.Login) == "" {
		return Config{}, errors.New("ADMIN_LOGIN must not be empty")
	}
	if cfg.Admin.Password == "" {
		return Config{}, errors.New("ADMIN_PASSWORD is required")
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 60 * time.Minute
	}
	if cfg.Rates.Timeout <= 0 {
		cfg.Rates.Timeout = 10 * time.Second
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func normalizeOrigins(origins []string) []string {
	var out []string
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
