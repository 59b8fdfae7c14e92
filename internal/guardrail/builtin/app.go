package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/deskpilot-ai/deskpilot/internal/guardrail"
	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
)

// criticalApps are system management tools that plans may never open or
// focus, independent of the configured blocklist.
var criticalApps = []string{
	"regedit",
	"registry editor",
	"services.msc",
	"services",
	"msconfig",
	"system configuration",
	"gpedit.msc",
	"group policy",
	"secpol.msc",
	"security policy",
}

// AppSecurity fails plans that open or focus a blocked or critical system
// application.
type AppSecurity struct {
	blocked []string
}

// NewAppSecurity creates the application security rule with the configured
// blocklist. Matching is case-insensitive by substring.
func NewAppSecurity(blockedApps []string) *AppSecurity {
	blocked := make([]string, 0, len(blockedApps))
	for _, app := range blockedApps {
		blocked = append(blocked, strings.ToLower(app))
	}
	return &AppSecurity{blocked: blocked}
}

// Name returns the name of the rule.
func (r *AppSecurity) Name() string {
	return "app-security"
}

// Description returns the human-readable description of the rule.
func (r *AppSecurity) Description() string {
	return "Blocks opening or focusing blocklisted and critical system applications"
}

// Severity returns the severity of the rule.
func (r *AppSecurity) Severity() guardrail.Severity {
	return guardrail.SeverityError
}

// AppliesTo returns the intent types the rule covers.
func (r *AppSecurity) AppliesTo() []intent.Type {
	return []intent.Type{intent.TypeOpenApp, intent.TypeFocusApp}
}

// Check validates the target application name.
func (r *AppSecurity) Check(ctx context.Context, p *plan.Plan, execCtx map[string]any) (guardrail.Result, error) {
	appName := strings.ToLower(p.Intent.SlotString("app_name"))
	if appName == "" {
		return guardrail.NewPassResult(), nil
	}

	for _, blocked := range r.blocked {
		if strings.Contains(appName, blocked) {
			return guardrail.NewFailResultWithDetails(
				fmt.Sprintf("application %q matches blocked application %q", appName, blocked),
				map[string]any{"app_name": appName, "blocked": blocked},
			), nil
		}
	}

	for _, critical := range criticalApps {
		if appName == critical {
			return guardrail.NewFailResultWithDetails(
				fmt.Sprintf("application %q is a critical system tool", appName),
				map[string]any{"app_name": appName, "critical": critical},
			), nil
		}
	}

	return guardrail.NewPassResult(), nil
}
