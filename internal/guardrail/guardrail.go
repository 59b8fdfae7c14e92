package guardrail

import (
	"context"

	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
)

// Severity classifies how a failing rule affects the verdict
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Rank returns the ordinal position of the severity, info lowest
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// Rule defines the interface for policy checks run against a plan
type Rule interface {
	Name() string
	Description() string
	Severity() Severity
	// AppliesTo returns the intent types the rule covers; empty means
	// the rule runs on every plan.
	AppliesTo() []intent.Type
	Check(ctx context.Context, p *plan.Plan, execCtx map[string]any) (Result, error)
}
