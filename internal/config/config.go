// Package config holds the runtime configuration for the planning core:
// security policy, planner tuning, and logging. Configuration is loaded once
// at startup and treated as read-only afterwards.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the root configuration for the planning core.
type Config struct {
	Security SecurityConfig `mapstructure:"security" yaml:"security"`
	Planner  PlannerConfig  `mapstructure:"planner" yaml:"planner"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// SecurityConfig contains the write-confirmation policy, the write allow-list,
// and the application blocklist consumed by the plan generator and the
// guardrail rules.
type SecurityConfig struct {
	// RequireConfirmationForWrite forces confirmation for every write intent
	// regardless of template defaults.
	RequireConfirmationForWrite bool `mapstructure:"require_confirmation_for_write" yaml:"require_confirmation_for_write"`

	// AllowedWritePaths are the only roots file writes may target without
	// confirmation. Entries may start with "~".
	AllowedWritePaths []string `mapstructure:"allowed_write_paths" yaml:"allowed_write_paths"`

	// BlockedApps are case-insensitive substrings of application names that
	// must never be launched or focused.
	BlockedApps []string `mapstructure:"blocked_apps" yaml:"blocked_apps"`

	// MaxExecutionTime bounds a whole plan execution.
	MaxExecutionTime time.Duration `mapstructure:"max_execution_time" yaml:"max_execution_time"`
}

// PlannerConfig contains planner and session tuning knobs.
type PlannerConfig struct {
	// RateLimitPerMinute caps plan checks per rolling minute.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`

	// SessionCleanupDelay is how long a finished session stays in the
	// active-session registry before removal.
	SessionCleanupDelay time.Duration `mapstructure:"session_cleanup_delay" yaml:"session_cleanup_delay"`
}

// LoggingConfig controls the slog handler built at startup.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ExpandPath expands a leading "~" to the user's home directory and returns
// the cleaned absolute path. Relative paths are resolved against the working
// directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Abs(path)
}

// IsPathAllowed reports whether path resolves under one of the configured
// allowed write roots. It returns an error when the path cannot be resolved;
// callers treat that as "not allowed".
func (s *SecurityConfig) IsPathAllowed(path string) (bool, error) {
	resolved, err := ExpandPath(path)
	if err != nil {
		return false, err
	}

	for _, root := range s.AllowedWritePaths {
		allowed, err := ExpandPath(root)
		if err != nil {
			continue
		}
		if pathHasPrefix(resolved, allowed) {
			return true, nil
		}
	}
	return false, nil
}

// pathHasPrefix reports whether path is root itself or lives under root.
func pathHasPrefix(path, root string) bool {
	if path == root {
		return true
	}
	root = strings.TrimRight(root, string(filepath.Separator))
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
