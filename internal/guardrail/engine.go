package guardrail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
)

// Engine evaluates an ordered list of rules against a plan and aggregates
// the outcomes into a Verdict
type Engine struct {
	rules  []Rule
	mu     sync.RWMutex
	logger *slog.Logger
	tracer trace.Tracer
}

// EngineOption is a functional option for configuring Engine.
type EngineOption func(*Engine)

// WithEngineLogger configures the logger for the engine.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithEngineTracer configures the tracer for the engine.
func WithEngineTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// NewEngine creates an engine with the given rules, evaluated in order.
func NewEngine(rules []Rule, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:  append([]Rule(nil), rules...),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// AddRule appends a rule; rule names are unique within an engine.
func (e *Engine) AddRule(r Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.rules {
		if existing.Name() == r.Name() {
			return NewRuleExistsError(r.Name())
		}
	}
	e.rules = append(e.rules, r)
	return nil
}

// RemoveRule removes the rule with the given name.
func (e *Engine) RemoveRule(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, existing := range e.rules {
		if existing.Name() == name {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return nil
		}
	}
	return NewRuleNotFoundError(name)
}

// RuleInfo describes a registered rule for introspection surfaces.
type RuleInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`
	AppliesTo   []intent.Type `json:"applies_to,omitempty"`
}

// RulesInfo returns a snapshot of the registered rules in evaluation order.
func (e *Engine) RulesInfo() []RuleInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	infos := make([]RuleInfo, 0, len(e.rules))
	for _, r := range e.rules {
		infos = append(infos, RuleInfo{
			Name:        r.Name(),
			Description: r.Description(),
			Severity:    r.Severity(),
			AppliesTo:   r.AppliesTo(),
		})
	}
	return infos
}

// Check runs every rule whose AppliesTo set is empty or contains the plan's
// intent type, in registration order, and aggregates the outcomes:
//
//   - a failing warning rule is added to Warnings and forces confirmation
//   - a failing error or critical rule is added to Errors and clears
//     OverallPassed
//   - only a failing critical rule clears CanExecute
//
// A rule that returns an error or panics never aborts the check; it is
// reported as a synthetic failing outcome at error severity and evaluation
// continues with the next rule. RequiresConfirmation starts from the plan's
// own confirmation flag.
func (e *Engine) Check(ctx context.Context, p *plan.Plan, execCtx map[string]any) *Verdict {
	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "guardrail.check",
			trace.WithAttributes(
				attribute.String("plan.id", p.ID.String()),
				attribute.String("intent.type", p.Intent.Type.String()),
			),
		)
		defer span.End()
	}

	verdict := &Verdict{
		OverallPassed:        true,
		CanExecute:           true,
		RequiresConfirmation: p.RequiresConfirmation,
		Outcomes:             []Outcome{},
		Errors:               []string{},
		Warnings:             []string{},
		Info:                 []string{},
	}

	e.mu.RLock()
	rules := append([]Rule(nil), e.rules...)
	e.mu.RUnlock()

	for _, rule := range rules {
		if !ruleApplies(rule, p.Intent.Type) {
			continue
		}

		outcome := e.runRule(ctx, rule, p, execCtx)
		verdict.Outcomes = append(verdict.Outcomes, outcome)

		if outcome.Result.Passed {
			continue
		}

		switch outcome.Severity {
		case SeverityCritical:
			verdict.OverallPassed = false
			verdict.CanExecute = false
			verdict.Errors = append(verdict.Errors, outcome.Result.Message)
		case SeverityError:
			verdict.OverallPassed = false
			verdict.Errors = append(verdict.Errors, outcome.Result.Message)
		case SeverityWarning:
			verdict.RequiresConfirmation = true
			verdict.Warnings = append(verdict.Warnings, outcome.Result.Message)
		default:
			verdict.Info = append(verdict.Info, outcome.Result.Message)
		}
	}

	if span != nil {
		span.SetAttributes(
			attribute.Bool("verdict.overall_passed", verdict.OverallPassed),
			attribute.Bool("verdict.can_execute", verdict.CanExecute),
			attribute.Int("verdict.rules_evaluated", len(verdict.Outcomes)),
		)
	}

	e.logger.Info("guardrail check completed",
		"plan_id", p.ID,
		"rules_evaluated", len(verdict.Outcomes),
		"overall_passed", verdict.OverallPassed,
		"can_execute", verdict.CanExecute,
		"requires_confirmation", verdict.RequiresConfirmation,
	)

	return verdict
}

// SimulateCheck runs a single rule by name against the plan without
// aggregation, for dry-run tooling. The rule's AppliesTo set is ignored.
func (e *Engine) SimulateCheck(ctx context.Context, name string, p *plan.Plan, execCtx map[string]any) (Outcome, error) {
	e.mu.RLock()
	var rule Rule
	for _, r := range e.rules {
		if r.Name() == name {
			rule = r
			break
		}
	}
	e.mu.RUnlock()

	if rule == nil {
		return Outcome{}, NewRuleNotFoundError(name)
	}
	return e.runRule(ctx, rule, p, execCtx), nil
}

// runRule executes one rule with panic containment. Internal failures are
// converted to synthetic failing outcomes at error severity.
func (e *Engine) runRule(ctx context.Context, rule Rule, p *plan.Plan, execCtx map[string]any) (outcome Outcome) {
	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "guardrail.rule",
			trace.WithAttributes(
				attribute.String("rule.name", rule.Name()),
				attribute.String("rule.severity", rule.Severity().String()),
			),
		)
		defer span.End()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "guardrail rule panicked",
				"rule", rule.Name(),
				"panic", r,
			)
			outcome = Outcome{
				RuleName: rule.Name(),
				Severity: SeverityError,
				Result:   NewFailResult(fmt.Sprintf("rule %q panicked: %v", rule.Name(), r)),
			}
		}
		if span != nil {
			span.SetAttributes(attribute.Bool("rule.passed", outcome.Result.Passed))
		}
	}()

	result, err := rule.Check(ctx, p, execCtx)
	if err != nil {
		e.logger.ErrorContext(ctx, "guardrail rule failed internally",
			"rule", rule.Name(),
			"error", err,
		)
		return Outcome{
			RuleName: rule.Name(),
			Severity: SeverityError,
			Result:   NewFailResult(fmt.Sprintf("rule %q failed: %v", rule.Name(), err)),
		}
	}

	return Outcome{
		RuleName: rule.Name(),
		Severity: rule.Severity(),
		Result:   result,
	}
}

// ruleApplies reports whether the rule covers the intent type. An empty
// AppliesTo set means universal.
func ruleApplies(rule Rule, t intent.Type) bool {
	applies := rule.AppliesTo()
	if len(applies) == 0 {
		return true
	}
	for _, it := range applies {
		if it == t {
			return true
		}
	}
	return false
}
