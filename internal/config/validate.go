package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validPlatforms = map[string]bool{
	"switch": true, "ps5": true, "xbox": true, "pc": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.IGDB.ClientID == "" {
		errs = append(errs, "igdb.client_id: required")
	}
	if c.IGDB.ClientSecret == "" {
		errs = append(errs, "igdb.client_secret: required")
	}

	if !validPlatforms[c.Catalog.Platform] {
		errs = append(errs, fmt.Sprintf("catalog.platform: must be one of switch, ps5, xbox, pc; got %q", c.Catalog.Platform))
	}
	if c.Catalog.HypeThreshold < 0 {
		errs = append(errs, fmt.Sprintf("catalog.hype_threshold: must be non-negative, got %d", c.Catalog.HypeThreshold))
	}

	// LLM key is optional: translation and enrichment degrade gracefully
	// without one, listings still work.

	return errs
}
