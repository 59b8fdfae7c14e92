package config

import (
	"fmt"

	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// ConfigValidator validates a loaded configuration.
type ConfigValidator interface {
	Validate(cfg *Config) error
}

// validator implements ConfigValidator with the core's invariants.
type validator struct{}

// NewValidator creates a validator for loaded configurations.
func NewValidator() ConfigValidator {
	return &validator{}
}

// Validate checks the configuration for values the planning core cannot
// operate with.
func (v *validator) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	if cfg.Planner.RateLimitPerMinute < 1 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("planner.rate_limit_per_minute must be >= 1, got %d", cfg.Planner.RateLimitPerMinute))
	}
	if cfg.Planner.SessionCleanupDelay <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"planner.session_cleanup_delay must be positive")
	}
	if cfg.Security.MaxExecutionTime <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"security.max_execution_time must be positive")
	}
	if len(cfg.Security.AllowedWritePaths) == 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"security.allowed_write_paths must not be empty")
	}

	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("logging.format must be text or json, got %q", cfg.Logging.Format))
	}

	return nil
}
