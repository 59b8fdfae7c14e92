package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/deskpilot-ai/deskpilot/internal/events"
	"github.com/deskpilot-ai/deskpilot/internal/guardrail"
	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// Manager owns the planning pipeline: generate, optimize, validate,
// guardrail-check, decide. Approved plans are cached by ID for later
// retrieval; rejected plans are not.
type Manager struct {
	generator *plan.Generator
	engine    *guardrail.Engine
	bus       events.Bus
	logger    *slog.Logger
	tracer    trace.Tracer

	mu             sync.RWMutex
	cache          map[types.ID]*plan.Plan
	plansGenerated int
	plansApproved  int
	plansRejected  int
}

// ManagerOption is a functional option for configuring Manager.
type ManagerOption func(*Manager)

// WithManagerBus configures the event bus for plan lifecycle events.
func WithManagerBus(bus events.Bus) ManagerOption {
	return func(m *Manager) {
		m.bus = bus
	}
}

// WithManagerLogger configures the logger for the manager.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithManagerTracer configures the tracer for the manager.
func WithManagerTracer(t trace.Tracer) ManagerOption {
	return func(m *Manager) {
		m.tracer = t
	}
}

// NewManager creates a planning manager.
func NewManager(generator *plan.Generator, engine *guardrail.Engine, opts ...ManagerOption) *Manager {
	m := &Manager{
		generator: generator,
		engine:    engine,
		logger:    slog.Default(),
		cache:     make(map[types.ID]*plan.Plan),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CreatePlan runs the full pipeline for one intent. Generation failure is
// the only error path; validation defects and guardrail failures surface in
// the returned Report instead.
func (m *Manager) CreatePlan(ctx context.Context, in *intent.Intent, execCtx map[string]any, optimize bool) (*Report, error) {
	start := time.Now()

	var span trace.Span
	if m.tracer != nil {
		ctx, span = m.tracer.Start(ctx, "planner.create_plan",
			trace.WithAttributes(attribute.String("intent.type", in.Type.String())),
		)
		defer span.End()
	}

	// Every attempt counts as a generated plan, even when generation itself
	// fails, so the rejected counter can never outrun the generated one.
	m.mu.Lock()
	m.plansGenerated++
	m.mu.Unlock()

	p, err := m.generator.Generate(ctx, in, execCtx)
	if err != nil {
		m.mu.Lock()
		m.plansRejected++
		m.mu.Unlock()

		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "plan generation failed")
		}
		m.logger.ErrorContext(ctx, "plan generation failed",
			"intent_type", in.Type,
			"error", err,
		)
		return nil, err
	}

	if optimize {
		p = m.generator.Optimize(p)
	}

	validation := m.generator.Validate(p)
	verdict := m.engine.Check(ctx, p, execCtx)
	decision := decide(validation, verdict)

	m.mu.Lock()
	if decision.Approved {
		m.plansApproved++
		m.cache[p.ID] = p
	} else {
		m.plansRejected++
	}
	m.mu.Unlock()

	m.publish(ctx, events.NewEvent(events.EventPlanCreated).
		WithPlan(p.ID).
		WithPayload("intent_type", in.Type.String()).
		WithPayload("actions", len(p.Actions)))

	if decision.Approved {
		m.publish(ctx, events.NewEvent(events.EventPlanApproved).
			WithPlan(p.ID).
			WithPayload("requires_confirmation", decision.RequiresConfirmation))
	} else {
		m.publish(ctx, events.NewEvent(events.EventPlanRejected).
			WithPlan(p.ID).
			WithPayload("blocking_reasons", decision.BlockingReasons))
	}

	if span != nil {
		span.SetAttributes(
			attribute.String("plan.id", p.ID.String()),
			attribute.Bool("decision.approved", decision.Approved),
			attribute.Bool("decision.requires_confirmation", decision.RequiresConfirmation),
		)
	}

	m.logger.InfoContext(ctx, "plan pipeline completed",
		"plan_id", p.ID,
		"approved", decision.Approved,
		"requires_confirmation", decision.RequiresConfirmation,
		"blocking_reasons", len(decision.BlockingReasons),
		"warnings", len(decision.Warnings),
		"generation_time", time.Since(start),
	)

	return &Report{
		Plan:           p,
		Validation:     validation,
		Verdict:        verdict,
		Decision:       decision,
		GenerationTime: time.Since(start),
	}, nil
}

// decide folds the validation and guardrail results into a go/no-go.
// Guardrail error messages block only when the verdict cleared CanExecute;
// a failing error-severity rule alone does not block. Confirmation is only
// meaningful for approved plans.
func decide(validation plan.Validation, verdict *guardrail.Verdict) ExecutionDecision {
	decision := ExecutionDecision{
		BlockingReasons: []string{},
		Warnings:        []string{},
	}

	decision.BlockingReasons = append(decision.BlockingReasons, validation.Errors...)
	if !verdict.CanExecute {
		decision.BlockingReasons = append(decision.BlockingReasons, verdict.Errors...)
	}

	decision.Warnings = append(decision.Warnings, validation.Warnings...)
	decision.Warnings = append(decision.Warnings, verdict.Warnings...)

	decision.Approved = len(decision.BlockingReasons) == 0
	if decision.Approved {
		decision.RequiresConfirmation = verdict.RequiresConfirmation || len(decision.Warnings) > 0
		if decision.RequiresConfirmation {
			decision.Recommendations = append(decision.Recommendations,
				"review the warnings and confirm before executing")
		}
	} else {
		decision.Recommendations = append(decision.Recommendations,
			"resolve the blocking reasons and submit the request again")
	}

	return decision
}

// ValidateIntent checks that an intent is plannable before entering the
// pipeline: a known type, confidence in range, and all required slots
// present.
func (m *Manager) ValidateIntent(in *intent.Intent) error {
	if in.Type == intent.TypeUnknown {
		return types.NewError(types.PLAN_VALIDATION_FAILED,
			"intent type could not be recognized")
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return types.NewError(types.PLAN_VALIDATION_FAILED,
			fmt.Sprintf("intent confidence %.2f is outside [0, 1]", in.Confidence))
	}
	if in.Confidence < 0.5 {
		return types.NewError(types.PLAN_VALIDATION_FAILED,
			fmt.Sprintf("intent confidence %.2f is too low to plan from", in.Confidence))
	}
	if missing := in.MissingSlots(); len(missing) > 0 {
		return types.NewError(types.PLAN_VALIDATION_FAILED,
			fmt.Sprintf("intent is missing required slots: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// GetPlanByID returns a previously approved plan from the cache.
func (m *Manager) GetPlanByID(id types.ID) (*plan.Plan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.cache[id]
	return p, ok
}

// FindSimilarPlans returns cached plans for the same intent type whose
// required slots match the given intent, newest first, up to limit.
func (m *Manager) FindSimilarPlans(in *intent.Intent, limit int) []*plan.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var similar []*plan.Plan
	for _, p := range m.cache {
		if p.Intent.Type != in.Type {
			continue
		}
		if !slotsMatch(&p.Intent, in) {
			continue
		}
		similar = append(similar, p)
	}

	for i := 1; i < len(similar); i++ {
		for j := i; j > 0 && similar[j].CreatedAt.After(similar[j-1].CreatedAt); j-- {
			similar[j], similar[j-1] = similar[j-1], similar[j]
		}
	}

	if limit > 0 && len(similar) > limit {
		similar = similar[:limit]
	}
	return similar
}

// slotsMatch reports whether both intents agree on every required slot of
// the type.
func slotsMatch(a, b *intent.Intent) bool {
	for _, name := range intent.RequiredSlots(a.Type) {
		if a.SlotString(name) != b.SlotString(name) {
			return false
		}
	}
	return true
}

// ClearPlanCache drops all cached plans. Counters are unaffected.
func (m *Manager) ClearPlanCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[types.ID]*plan.Plan)
}

// ResetStats zeroes the running counters. The cache is unaffected.
func (m *Manager) ResetStats() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plansGenerated = 0
	m.plansApproved = 0
	m.plansRejected = 0
}

// Stats returns a snapshot of the running counters.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{
		PlansGenerated: m.plansGenerated,
		PlansApproved:  m.plansApproved,
		PlansRejected:  m.plansRejected,
		CachedPlans:    len(m.cache),
		ActiveRules:    len(m.engine.RulesInfo()),
	}
	if stats.PlansGenerated > 0 {
		stats.ApprovalRate = float64(stats.PlansApproved) / float64(stats.PlansGenerated)
	}
	return stats
}

// publish sends an event when a bus is configured.
func (m *Manager) publish(ctx context.Context, event events.Event) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "failed to publish planner event",
			"event_type", event.Type,
			"error", err,
		)
	}
}
