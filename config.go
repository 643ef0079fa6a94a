package userauth

import (
	"os"
	"strconv"

	"github.com/goliatone/go-errors"
)

// DefaultTokenExpiration is the session validity window in hours.
const DefaultTokenExpiration = 24

// Config holds auth options. Constructors take the interface so hosts can
// plug their own configuration containers.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
}

// EnvConfig is the env-backed Config for the bundled server.
type EnvConfig struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	HTTPAddr        string
	DatabaseDSN     string
}

var _ Config = (*EnvConfig)(nil)

func (c *EnvConfig) GetSigningKey() string   { return c.SigningKey }
func (c *EnvConfig) GetTokenExpiration() int { return c.TokenExpiration }
func (c *EnvConfig) GetIssuer() string       { return c.Issuer }
func (c *EnvConfig) GetHTTPAddr() string     { return c.HTTPAddr }
func (c *EnvConfig) GetDatabaseDSN() string  { return c.DatabaseDSN }

// ConfigFromEnv loads process configuration once at startup. A missing
// signing key is a refusal to start, not a fallback: a silent default
// secret would make every minted token forgeable.
func ConfigFromEnv() (*EnvConfig, error) {
	cfg := &EnvConfig{
		SigningKey:      os.Getenv("AUTH_SIGNING_KEY"),
		TokenExpiration: DefaultTokenExpiration,
		Issuer:          getenv("AUTH_ISSUER", "go-userauth"),
		HTTPAddr:        getenv("HTTP_ADDR", ":3001"),
		DatabaseDSN:     getenv("DATABASE_DSN", "file:userauth.db?cache=shared"),
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("AUTH_SIGNING_KEY is required", errors.CategoryValidation).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	if raw := os.Getenv("AUTH_TOKEN_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, errors.New("AUTH_TOKEN_TTL_HOURS must be a positive integer", errors.CategoryValidation).
				WithTextCode("INVALID_TOKEN_TTL").
				WithMetadata(map[string]any{"value": raw})
		}
		cfg.TokenExpiration = hours
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
