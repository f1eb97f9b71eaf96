// Package config loads the server configuration from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the canonical sales tax rate applied to every item.
// It is a single named value on purpose: every split, sheet and total
// in the system is derived from this one rate, never from a literal at
// a call site.
const DefaultTaxRate = "0.10"

// Config holds the server configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite database file location.
	DBPath string

	// JWTSecret signs session tokens. Generated at startup when unset;
	// set it explicitly so sessions survive restarts.
	JWTSecret string

	// TokenDuration is how long issued tokens remain valid.
	TokenDuration time.Duration

	// TaxRate is the sales tax rate applied per item (e.g. 0.10).
	TaxRate decimal.Decimal
}

// Load reads configuration from the environment, filling in defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./data/grocy.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenDuration: 24 * time.Hour,
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = generateSecret(32)
	}

	if raw := os.Getenv("TOKEN_DURATION"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_DURATION %q: %w", raw, err)
		}
		cfg.TokenDuration = d
	}

	rate, err := decimal.NewFromString(getEnv("TAX_RATE", DefaultTaxRate))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE must not be negative, got %s", rate)
	}
	cfg.TaxRate = rate

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func generateSecret(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}
