package config

import "time"

// DefaultConfig returns the built-in configuration used when no config file
// is present.
func DefaultConfig() *Config {
	return &Config{
		Security: SecurityConfig{
			RequireConfirmationForWrite: true,
			AllowedWritePaths:           []string{"~/Documents", "~/Desktop", "~/Downloads"},
			BlockedApps:                 []string{"cmd", "powershell", "terminal"},
			MaxExecutionTime:            300 * time.Second,
		},
		Planner: PlannerConfig{
			RateLimitPerMinute:  10,
			SessionCleanupDelay: 300 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
