package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/deskpilot-ai/deskpilot/internal/config"
	"github.com/deskpilot-ai/deskpilot/internal/guardrail"
	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
)

// forbiddenRoots are system locations no plan may ever write under,
// regardless of the configured allow-list.
var forbiddenRoots = []string{
	"c:/windows",
	"c:/program files",
	"c:/program files (x86)",
	"/system",
	"/usr",
	"/etc",
	"/bin",
	"/sbin",
}

// PathSecurity fails plans that write under a forbidden system root or
// outside the configured write allow-list.
type PathSecurity struct {
	security config.SecurityConfig
}

// NewPathSecurity creates the path security rule.
func NewPathSecurity(security config.SecurityConfig) *PathSecurity {
	return &PathSecurity{security: security}
}

// Name returns the name of the rule.
func (r *PathSecurity) Name() string {
	return "path-security"
}

// Description returns the human-readable description of the rule.
func (r *PathSecurity) Description() string {
	return "Blocks file writes under system roots or outside the write allow-list"
}

// Severity returns the severity of the rule.
func (r *PathSecurity) Severity() guardrail.Severity {
	return guardrail.SeverityError
}

// AppliesTo returns the intent types the rule covers.
func (r *PathSecurity) AppliesTo() []intent.Type {
	return []intent.Type{intent.TypeSaveFile, intent.TypeWriteTextFile}
}

// Check validates the plan's target path. Plans without a path slot pass;
// the destination is decided interactively in that case.
func (r *PathSecurity) Check(ctx context.Context, p *plan.Plan, execCtx map[string]any) (guardrail.Result, error) {
	path := p.Intent.SlotString("path")
	if path == "" {
		return guardrail.NewPassResult(), nil
	}

	normalized := strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
	for _, root := range forbiddenRoots {
		if pathUnder(normalized, root) {
			return guardrail.NewFailResultWithDetails(
				fmt.Sprintf("path %q is under forbidden system location %q", path, root),
				map[string]any{"path": path, "forbidden_root": root},
			), nil
		}
	}

	allowed, err := r.security.IsPathAllowed(path)
	if err != nil {
		return guardrail.NewFailResultWithDetails(
			fmt.Sprintf("path %q could not be resolved: %v", path, err),
			map[string]any{"path": path},
		), nil
	}
	if !allowed {
		return guardrail.NewFailResultWithDetails(
			fmt.Sprintf("path %q is outside the allowed write locations", path),
			map[string]any{"path": path, "allowed_paths": r.security.AllowedWritePaths},
		), nil
	}

	return guardrail.NewPassResult(), nil
}

// pathUnder reports whether the normalized path is the root itself or a
// descendant of it.
func pathUnder(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+"/")
}
