package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/deskpilot-ai/deskpilot/internal/events"
	"github.com/deskpilot-ai/deskpilot/internal/retry"
	"github.com/deskpilot-ai/deskpilot/internal/skill"
)

// Runner drives a session through its plan's actions, one at a time,
// stopping at the first failed step.
type Runner struct {
	skills   skill.Executor
	registry *Registry
	bus      events.Bus
	logger   *slog.Logger
	tracer   trace.Tracer
	retry    retry.Config
}

// RunnerOption is a functional option for configuring Runner.
type RunnerOption func(*Runner)

// WithRunnerBus configures the event bus for execution events.
func WithRunnerBus(bus events.Bus) RunnerOption {
	return func(r *Runner) {
		r.bus = bus
	}
}

// WithRunnerLogger configures the logger for the runner.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithRunnerTracer configures the tracer for the runner.
func WithRunnerTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithRunnerRetry configures the retry policy applied to skill dispatch.
// Only infrastructure errors from the executor are retried; a skill that
// runs and reports failure is not.
func WithRunnerRetry(cfg retry.Config) RunnerOption {
	return func(r *Runner) {
		r.retry = cfg
	}
}

// NewRunner creates a runner dispatching to the given skill executor and
// recording sessions in the registry.
func NewRunner(skills skill.Executor, registry *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		skills:   skills,
		registry: registry,
		logger:   slog.Default(),
		retry:    retry.Config{MaxAttempts: 1},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the session's plan. Each action gets a StepResult; skill
// actions dispatch to the executor, primitive actions are marked skipped.
// The loop stops at the first failed step. The session ends in success when
// its success rate exceeds 0.8, and cleanup is scheduled regardless of
// outcome. A panic escaping the step loop marks the session failed, emits an
// execution error event, and is re-raised after bookkeeping.
func (r *Runner) Run(ctx context.Context, s *Session) error {
	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.Start(ctx, "session.run",
			trace.WithAttributes(
				attribute.String("session.id", s.ID.String()),
				attribute.String("plan.id", s.Plan.ID.String()),
			),
		)
		defer span.End()
	}

	s.Status = StatusRunning
	s.StartTime = time.Now()
	r.registry.Add(s)

	r.publish(ctx, events.NewEvent(events.EventExecutionStarted).
		WithSession(s.ID).
		WithPlan(s.Plan.ID).
		WithPayload("actions_count", len(s.Plan.Actions)))

	defer func() {
		if rec := recover(); rec != nil {
			s.Status = StatusFailed
			s.EndTime = time.Now()

			r.logger.ErrorContext(ctx, "execution panicked",
				"session_id", s.ID,
				"panic", rec,
			)
			r.publish(ctx, events.NewEvent(events.EventExecutionError).
				WithSession(s.ID).
				WithPayload("error", fmt.Sprint(rec)))
			if span != nil {
				span.SetStatus(codes.Error, "execution panicked")
			}

			r.registry.ScheduleCleanup(s.ID)
			panic(rec)
		}
	}()

	for i := range s.Plan.Actions {
		step := r.executeStep(ctx, s, i)
		s.StepResults = append(s.StepResults, step)

		message := step.Error
		if message == "" {
			message = "success"
		}
		r.publish(ctx, events.NewEvent(events.EventStepCompleted).
			WithSession(s.ID).
			WithPayload("step_index", i).
			WithPayload("status", step.Status.String()).
			WithPayload("message", message).
			WithPayload("duration", step.Duration().Seconds()))

		if step.Status == StepFailed {
			break
		}
	}

	if s.SuccessRate() > 0.8 {
		s.Status = StatusSuccess
	} else {
		s.Status = StatusFailed
	}
	s.EndTime = time.Now()

	r.publish(ctx, events.NewEvent(events.EventExecutionCompleted).
		WithSession(s.ID).
		WithPayload("success", s.Status == StatusSuccess).
		WithPayload("duration", s.Duration().Seconds()).
		WithPayload("success_rate", s.SuccessRate()).
		WithPayload("steps_completed", len(s.StepResults)))

	if span != nil {
		span.SetAttributes(
			attribute.String("session.status", s.Status.String()),
			attribute.Int("session.steps", len(s.StepResults)),
			attribute.Float64("session.success_rate", s.SuccessRate()),
		)
	}

	r.logger.InfoContext(ctx, "execution completed",
		"session_id", s.ID,
		"status", s.Status,
		"steps_completed", len(s.StepResults),
		"success_rate", s.SuccessRate(),
		"duration", s.Duration(),
	)

	r.registry.ScheduleCleanup(s.ID)
	return nil
}

// executeStep runs one action. A panic inside the skill executor is
// contained here and recorded as a failed step; it does not abort the
// session's bookkeeping.
func (r *Runner) executeStep(ctx context.Context, s *Session, index int) (step StepResult) {
	action := &s.Plan.Actions[index]

	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.Start(ctx, "session.step",
			trace.WithAttributes(
				attribute.Int("step.index", index),
				attribute.String("step.action_type", action.Type.String()),
			),
		)
		defer span.End()
	}

	step = StepResult{
		StepID:    fmt.Sprintf("%s_%d", s.ID, index),
		Status:    StepRunning,
		StartTime: time.Now(),
	}

	defer func() {
		if rec := recover(); rec != nil {
			step.Status = StepFailed
			step.Error = fmt.Sprint(rec)
		}
		step.EndTime = time.Now()
		if span != nil {
			span.SetAttributes(attribute.String("step.status", step.Status.String()))
		}
	}()

	if !action.IsSkill() {
		// Primitive actions are dispatched elsewhere in a full agent; here
		// they are intentionally bypassed.
		step.Status = StepSkipped
		step.Error = "primitive actions not implemented"
		return step
	}

	var result skill.Result
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		var execErr error
		result, execErr = r.skills.Execute(ctx, action.SkillName(), action.SkillParameters(), action.Timeout)
		return execErr
	})
	if err != nil {
		step.Status = StepFailed
		step.Error = err.Error()
		return step
	}

	if result.Success {
		step.Status = StepSuccess
		step.Output = result.Data
	} else {
		step.Status = StepFailed
		step.Error = result.Error
	}
	return step
}

// publish sends an event when a bus is configured.
func (r *Runner) publish(ctx context.Context, event events.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "failed to publish execution event",
			"event_type", event.Type,
			"error", err,
		)
	}
}
