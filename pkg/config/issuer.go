package config

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrIssuerURLMissing indicates TOKEN_ISSUER_URL is not set
	ErrIssuerURLMissing = errors.New("token issuer base URL is required")

	// ErrIssuerPathMissing indicates TOKEN_ISSUER_SET_PATH is not set
	ErrIssuerPathMissing = errors.New("token issuer set path is required")
)

// TokenIssuerConfig holds settings for the remote token manager
type TokenIssuerConfig struct {
	BaseURL string
	SetPath string
	Timeout time.Duration
}

// LoadTokenIssuerConfig loads token issuer configuration from environment variables
func LoadTokenIssuerConfig() *TokenIssuerConfig {
	return &TokenIssuerConfig{
		BaseURL: getEnv("TOKEN_ISSUER_URL", ""),
		SetPath: getEnv("TOKEN_ISSUER_SET_PATH", ""),
		Timeout: getEnvAsDuration("TOKEN_ISSUER_TIMEOUT", 10*time.Second),
	}
}

// Validate checks that the outbound URL can be built
func (c *TokenIssuerConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrIssuerURLMissing
	}
	if strings.TrimSpace(c.SetPath) == "" {
		return ErrIssuerPathMissing
	}
	return nil
}

// SetTokenURL joins the base URL and the set path with a single slash
func (c *TokenIssuerConfig) SetTokenURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.SetPath, "/")
}
