package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.AI.validate(); err != nil {
		return fmt.Errorf("ai: %w", err)
	}

	if c.Storage.PDFDir == "" {
		return fmt.Errorf("storage.pdf_dir must not be empty")
	}

	if c.Server.RateLimitPerMin < 1 {
		return fmt.Errorf("server.rate_limit_per_min must be >= 1 (got %d)", c.Server.RateLimitPerMin)
	}

	return nil
}

func (a *AIConfig) validate() error {
	if a.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if a.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0 (got %v)", a.RequestTimeout)
	}
	if a.DefaultConcurrency < 1 {
		return fmt.Errorf("default_concurrency must be >= 1 (got %d)", a.DefaultConcurrency)
	}
	if a.SourceLang == "" || a.TargetLang == "" {
		return fmt.Errorf("source_lang and target_lang must not be empty")
	}
	return nil
}
