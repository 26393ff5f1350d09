package dedup

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds configuration for the duplicate detector
type Config struct {
	// DuplicateThreshold is the minimum similarity (0.0-1.0) to report a pair as duplicate
	// Higher values = more conservative (fewer false positives)
	// Default: 0.85
	DuplicateThreshold float64

	// RelatedThreshold is the minimum similarity (0.0-1.0) used when classifying
	// issues as merely related rather than duplicate. It is intentionally lower
	// than DuplicateThreshold and the two must stay distinct settings.
	// Default: 0.6
	RelatedThreshold float64

	// MaxNeighbors is how many neighbors to request from the index per candidate.
	// Requested neighbors absorb the self-match and sub-threshold results,
	// so this should exceed the number of duplicates expected per issue.
	// Default: 10
	MaxNeighbors int

	// ActiveOnly excludes issues in terminal states from full scans.
	// A scope-narrowing optimization, not a correctness requirement.
	// Default: true
	ActiveOnly bool

	// FailOpen determines behavior when the vector index is unavailable.
	// If true: return an empty pair list so the caller's briefing pass continues.
	// If false: return the error.
	// Default: true
	FailOpen bool
}

// DefaultConfig returns the default duplicate detection configuration
func DefaultConfig() Config {
	return Config{
		DuplicateThreshold: DefaultDuplicateThreshold,
		RelatedThreshold:   DefaultRelatedThreshold,
		MaxNeighbors:       10,
		ActiveOnly:         true,
		FailOpen:           true,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.DuplicateThreshold <= 0.0 || c.DuplicateThreshold > 1.0 {
		return fmt.Errorf("duplicate_threshold must be in (0.0, 1.0] (got %.2f)", c.DuplicateThreshold)
	}
	if c.RelatedThreshold <= 0.0 || c.RelatedThreshold > 1.0 {
		return fmt.Errorf("related_threshold must be in (0.0, 1.0] (got %.2f)", c.RelatedThreshold)
	}
	if c.RelatedThreshold >= c.DuplicateThreshold {
		return fmt.Errorf("related_threshold must be below duplicate_threshold (got %.2f >= %.2f)",
			c.RelatedThreshold, c.DuplicateThreshold)
	}
	if c.MaxNeighbors <= 0 {
		return fmt.Errorf("max_neighbors must be positive (got %d)", c.MaxNeighbors)
	}
	if c.MaxNeighbors > 200 {
		return fmt.Errorf("max_neighbors too large (got %d, max 200)", c.MaxNeighbors)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf("Config{Duplicate: %.2f, Related: %.2f, Neighbors: %d, ActiveOnly: %t, FailOpen: %t}",
		c.DuplicateThreshold, c.RelatedThreshold, c.MaxNeighbors, c.ActiveOnly, c.FailOpen)
}

// ConfigFromEnv creates a Config from environment variables, falling back to defaults
//
// Environment variables:
//   - ISSUEPILOT_DEDUP_DUPLICATE_THRESHOLD: Minimum similarity to report a duplicate (default: 0.85)
//   - ISSUEPILOT_DEDUP_RELATED_THRESHOLD: Minimum similarity for related classification (default: 0.6)
//   - ISSUEPILOT_DEDUP_MAX_NEIGHBORS: Neighbors requested per candidate (default: 10)
//   - ISSUEPILOT_DEDUP_ACTIVE_ONLY: Exclude terminal-state issues from scans (default: true)
//   - ISSUEPILOT_DEDUP_FAIL_OPEN: Return empty results on index failure (default: true)
//
// Returns an error if any environment variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvFloat("ISSUEPILOT_DEDUP_DUPLICATE_THRESHOLD", &cfg.DuplicateThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("ISSUEPILOT_DEDUP_RELATED_THRESHOLD", &cfg.RelatedThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("ISSUEPILOT_DEDUP_MAX_NEIGHBORS", &cfg.MaxNeighbors); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("ISSUEPILOT_DEDUP_ACTIVE_ONLY", &cfg.ActiveOnly); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("ISSUEPILOT_DEDUP_FAIL_OPEN", &cfg.FailOpen); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}

	return cfg, nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
