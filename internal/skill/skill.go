// Package skill defines the contract between the planning core and the
// skill-execution subsystem. Concrete skills (the code that actually clicks,
// types, and writes files) live outside this module; the planner only needs
// to know whether a skill exists, whether a parameter set is acceptable, and
// how to dispatch an invocation.
package skill

import (
	"context"
	"time"
)

// Result is the outcome of one skill invocation. Ordinary failures are
// reported via Success=false and Error; the error return of Execute is
// reserved for infrastructure problems.
type Result struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Executor dispatches skill invocations and answers registry queries.
// Implementations must enforce the timeout themselves and map a timed-out
// invocation to Result{Success: false}, not an error.
type Executor interface {
	// Execute runs the named skill with the given parameters.
	Execute(ctx context.Context, name string, params map[string]any, timeout time.Duration) (Result, error)

	// ValidateParameters reports whether params satisfy the skill's own
	// parameter schema.
	ValidateParameters(name string, params map[string]any) bool

	// Exists reports whether a skill with the given name is registered.
	Exists(name string) bool
}
