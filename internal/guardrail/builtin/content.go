package builtin

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/deskpilot-ai/deskpilot/internal/guardrail"
	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
)

// sensitivePatterns detect credential-like content in text about to be typed
// or written to disk.
var sensitivePatterns = map[string]*regexp.Regexp{
	"password":    regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`),
	"api_key":     regexp.MustCompile(`(?i)(?:api[_-]?key|token)\s*[:=]\s*[a-zA-Z0-9]+`),
	"email":       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	"credit_card": regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
	"ssn":         regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
}

// destructiveCommands are shell fragments that must never be typed blindly.
var destructiveCommands = []string{
	"rm -rf",
	"del /f",
	"format",
	"fdisk",
	"shutdown",
	"reboot",
	"halt",
	"sudo",
	"su -",
	"chmod 777",
}

// ContentSecurity scans text-entry and file-write content for credential
// shapes and destructive command fragments.
type ContentSecurity struct{}

// NewContentSecurity creates the content security rule.
func NewContentSecurity() *ContentSecurity {
	return &ContentSecurity{}
}

// Name returns the name of the rule.
func (r *ContentSecurity) Name() string {
	return "content-security"
}

// Description returns the human-readable description of the rule.
func (r *ContentSecurity) Description() string {
	return "Flags credential-like patterns and destructive commands in typed or written content"
}

// Severity returns the severity of the rule.
func (r *ContentSecurity) Severity() guardrail.Severity {
	return guardrail.SeverityWarning
}

// AppliesTo returns the intent types the rule covers.
func (r *ContentSecurity) AppliesTo() []intent.Type {
	return []intent.Type{intent.TypeTypeText, intent.TypeWriteTextFile}
}

// Check scans the text and content slots. All matches are reported in the
// result details keyed by pattern name.
func (r *ContentSecurity) Check(ctx context.Context, p *plan.Plan, execCtx map[string]any) (guardrail.Result, error) {
	content := p.Intent.SlotString("text")
	if c := p.Intent.SlotString("content"); c != "" {
		if content != "" {
			content += "\n"
		}
		content += c
	}
	if content == "" {
		return guardrail.NewPassResult(), nil
	}

	details := make(map[string]any)

	for name, pattern := range sensitivePatterns {
		if matches := pattern.FindAllString(content, -1); len(matches) > 0 {
			details[name] = matches
		}
	}

	lowered := strings.ToLower(content)
	var commands []string
	for _, cmd := range destructiveCommands {
		if strings.Contains(lowered, cmd) {
			commands = append(commands, cmd)
		}
	}
	if len(commands) > 0 {
		details["destructive_commands"] = commands
	}

	if len(details) == 0 {
		return guardrail.NewPassResult(), nil
	}

	names := make([]string, 0, len(details))
	for name := range details {
		names = append(names, name)
	}
	sort.Strings(names)

	return guardrail.NewFailResultWithDetails(
		fmt.Sprintf("potentially sensitive content detected: %s", strings.Join(names, ", ")),
		details,
	), nil
}
