package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/deskpilot-ai/deskpilot/internal/config"
	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/skill"
	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// Generator expands intents into concrete plans from static templates,
// optimizes the action sequence, and performs structural validation.
type Generator struct {
	templates map[intent.Type]Template
	skills    skill.Executor
	security  config.SecurityConfig
	logger    *slog.Logger
	tracer    trace.Tracer
}

// GeneratorOption is a functional option for configuring Generator.
type GeneratorOption func(*Generator)

// WithGeneratorLogger configures the logger for the generator.
func WithGeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = l
	}
}

// WithGeneratorTracer configures the tracer for the generator.
func WithGeneratorTracer(t trace.Tracer) GeneratorOption {
	return func(g *Generator) {
		g.tracer = t
	}
}

// NewGenerator creates a Generator using the built-in plan templates.
func NewGenerator(skills skill.Executor, security config.SecurityConfig, opts ...GeneratorOption) *Generator {
	g := &Generator{
		templates: builtinTemplates(),
		skills:    skills,
		security:  security,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate expands the intent into a concrete plan. The optional execution
// context is consumed read-only for contextual adjustments. Returns a
// PlanError with code ErrNoTemplate when the intent type has no template.
func (g *Generator) Generate(ctx context.Context, in *intent.Intent, execCtx map[string]any) (*Plan, error) {
	var span trace.Span
	if g.tracer != nil {
		_, span = g.tracer.Start(ctx, "plan.generate",
			trace.WithAttributes(attribute.String("intent.type", in.Type.String())),
		)
		defer span.End()
	}

	template, ok := g.templates[in.Type]
	if !ok {
		return nil, NewPlanError(ErrNoTemplate,
			fmt.Sprintf("no plan template for intent type %q", in.Type), nil)
	}

	actions := g.buildActions(&template, in)

	summary := summaryFor(in)
	if len(actions) > 1 {
		summary += fmt.Sprintf(" (in %d steps)", len(actions))
	}

	p := &Plan{
		ID:                   types.NewID(),
		Intent:               *in,
		Actions:              actions,
		Summary:              summary,
		RequiresConfirmation: g.requiresConfirmation(&template, in),
		EstimatedDuration:    g.estimateDuration(&template, in),
		RiskLevel:            template.RiskLevel,
		CreatedAt:            time.Now(),
	}

	if span != nil {
		span.SetAttributes(
			attribute.String("plan.id", p.ID.String()),
			attribute.Int("plan.actions", len(p.Actions)),
			attribute.String("plan.risk_level", p.RiskLevel.String()),
		)
	}

	g.logger.Info("plan generated",
		"plan_id", p.ID,
		"intent_type", in.Type,
		"actions", len(p.Actions),
		"estimated_duration", p.EstimatedDuration,
		"requires_confirmation", p.RequiresConfirmation,
	)

	return p, nil
}

// buildActions materializes the template's blueprints against the intent
// slots.
func (g *Generator) buildActions(template *Template, in *intent.Intent) []Action {
	actions := make([]Action, 0, len(template.Steps))

	for _, bp := range template.Steps {
		timeout := bp.Timeout
		if timeout <= 0 {
			timeout = DefaultActionTimeout
		}

		params := renderParameters(bp.Parameters, in.Slots)

		if bp.Skill != "" {
			// Skill blueprints receive every intent slot in addition to the
			// template-defined parameters; slot values win on conflict.
			skillParams := make(map[string]any, len(params)+len(in.Slots))
			for k, v := range params {
				skillParams[k] = v
			}
			for k, v := range in.Slots {
				skillParams[k] = v
			}

			actions = append(actions, Action{
				Type: ActionTypeSkill,
				Parameters: map[string]any{
					"skill_name":       bp.Skill,
					"skill_parameters": skillParams,
				},
				Description: Render(bp.Description, in.Slots),
				Timeout:     timeout,
			})
			continue
		}

		actions = append(actions, Action{
			Type:        bp.ActionType,
			Parameters:  params,
			Description: Render(bp.Description, in.Slots),
			Timeout:     timeout,
		})
	}

	return actions
}

// requiresConfirmation applies the template default, the global
// write-confirmation policy, and the write allow-list.
func (g *Generator) requiresConfirmation(template *Template, in *intent.Intent) bool {
	if template.RequiresConfirmation {
		return true
	}

	if !in.Type.IsWrite() {
		return false
	}

	if g.security.RequireConfirmationForWrite {
		return true
	}

	path := in.SlotString("path")
	if path == "" {
		return false
	}

	allowed, err := g.security.IsPathAllowed(path)
	if err != nil {
		// Unresolvable destination: ask rather than guess.
		return true
	}
	return !allowed
}

// estimateDuration adjusts the template's base duration for slot contents:
// 10ms per character of text to type or write, plus 2s when a file path is
// also being written.
func (g *Generator) estimateDuration(template *Template, in *intent.Intent) time.Duration {
	duration := template.EstimatedDuration

	switch in.Type {
	case intent.TypeTypeText:
		duration += time.Duration(len(in.SlotString("text"))) * 10 * time.Millisecond
	case intent.TypeWriteTextFile:
		duration += time.Duration(len(in.SlotString("content"))) * 10 * time.Millisecond
		if in.SlotString("path") != "" {
			duration += 2 * time.Second
		}
	}

	return duration
}

// Optimize returns a structurally simplified plan: consecutive screenshot
// actions collapse into one and consecutive text-entry actions merge into a
// single action with concatenated text. Optimization never changes what the
// user observes; the estimated duration is recomputed from the merged list.
func (g *Generator) Optimize(p *Plan) *Plan {
	deduped := make([]Action, 0, len(p.Actions))
	for _, action := range p.Actions {
		if action.Type == ActionTypeScreenshot &&
			len(deduped) > 0 &&
			deduped[len(deduped)-1].Type == ActionTypeScreenshot {
			continue
		}
		deduped = append(deduped, action)
	}

	merged := mergeTextActions(deduped)

	optimized := &Plan{
		ID:                   p.ID,
		Intent:               p.Intent,
		Actions:              merged,
		Summary:              p.Summary,
		RequiresConfirmation: p.RequiresConfirmation,
		EstimatedDuration:    recalculateDuration(merged),
		RiskLevel:            p.RiskLevel,
		CreatedAt:            p.CreatedAt,
	}

	if len(merged) != len(p.Actions) {
		g.logger.Info("plan optimized",
			"plan_id", p.ID,
			"original_actions", len(p.Actions),
			"optimized_actions", len(merged),
		)
	}

	return optimized
}

// isTextEntry reports whether the action types text, either as the primitive
// or through the type_text skill.
func isTextEntry(a *Action) bool {
	if a.Type == ActionTypeTypeText {
		return true
	}
	return a.IsSkill() && a.SkillName() == "type_text"
}

// entryText returns the text an entry action types.
func entryText(a *Action) string {
	if a.IsSkill() {
		text, _ := a.SkillParameters()["text"].(string)
		return text
	}
	text, _ := a.Parameters["text"].(string)
	return text
}

// mergeTextActions merges runs of consecutive text-entry actions into one
// action carrying the concatenated text.
func mergeTextActions(actions []Action) []Action {
	if len(actions) <= 1 {
		return actions
	}

	merged := make([]Action, 0, len(actions))
	for i := 0; i < len(actions); {
		current := actions[i]
		if !isTextEntry(&current) {
			merged = append(merged, current)
			i++
			continue
		}

		combined := entryText(&current)
		j := i + 1
		for j < len(actions) && isTextEntry(&actions[j]) {
			combined += entryText(&actions[j])
			j++
		}

		if j == i+1 {
			merged = append(merged, current)
			i++
			continue
		}

		description := fmt.Sprintf("Merged text entry (%d characters)", len(combined))
		if current.IsSkill() {
			merged = append(merged, Action{
				Type: ActionTypeSkill,
				Parameters: map[string]any{
					"skill_name":       "type_text",
					"skill_parameters": map[string]any{"text": combined},
				},
				Description: description,
				Timeout:     current.Timeout,
			})
		} else {
			merged = append(merged, Action{
				Type:        ActionTypeTypeText,
				Parameters:  map[string]any{"text": combined},
				Description: description,
				Timeout:     current.Timeout,
			})
		}
		i = j
	}

	return merged
}

// recalculateDuration estimates the duration of an action list: wait actions
// contribute their configured delay, text entry scales with length, and every
// other action counts one second.
func recalculateDuration(actions []Action) time.Duration {
	var total time.Duration

	for i := range actions {
		action := &actions[i]
		switch {
		case action.Type == ActionTypeWait:
			seconds, ok := action.Parameters["duration"].(float64)
			if !ok {
				seconds = 1.0
			}
			total += time.Duration(seconds * float64(time.Second))
		case isTextEntry(action):
			typing := time.Duration(len(entryText(action))) * 10 * time.Millisecond
			if typing < time.Second {
				typing = time.Second
			}
			total += typing
		default:
			total += time.Second
		}
	}

	return total
}

// Validate performs the structural checks on a plan: a non-empty action list,
// resolvable skills, and per-skill parameter schemas. It never returns an
// error; defects are reported in the Validation value, so calling it twice on
// the same plan yields identical results.
func (g *Generator) Validate(p *Plan) Validation {
	validation := Validation{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	if len(p.Actions) == 0 {
		validation.Valid = false
		validation.Errors = append(validation.Errors, "empty plan: no actions defined")
	}

	screenshots := 0
	for i := range p.Actions {
		action := &p.Actions[i]

		if action.Description == "" {
			validation.Warnings = append(validation.Warnings,
				fmt.Sprintf("action %d: missing description", i))
		}

		if action.Type == ActionTypeScreenshot {
			screenshots++
		}

		if action.Type == ActionTypeTypeText {
			if text, _ := action.Parameters["text"].(string); text == "" {
				validation.Valid = false
				validation.Errors = append(validation.Errors,
					fmt.Sprintf("action %d: missing text to type", i))
			}
		}

		if action.IsSkill() {
			name := action.SkillName()
			if !g.skills.Exists(name) {
				validation.Valid = false
				validation.Errors = append(validation.Errors,
					fmt.Sprintf("action %d: skill %q not found", i, name))
				continue
			}
			if !g.skills.ValidateParameters(name, action.SkillParameters()) {
				validation.Valid = false
				validation.Errors = append(validation.Errors,
					fmt.Sprintf("action %d: invalid parameters for skill %q", i, name))
			}
		}
	}

	if screenshots > 3 {
		validation.Warnings = append(validation.Warnings,
			fmt.Sprintf("plan captures the screen %d times; likely inefficient", screenshots))
	}

	return validation
}
