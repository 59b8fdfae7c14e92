// Package session holds the execution state machine for approved plans: one
// Session per run, a registry of active sessions, and the runner that drives
// a plan's actions through the skill executor.
package session

import (
	"time"

	"github.com/deskpilot-ai/deskpilot/internal/plan"
	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// Status is the lifecycle state of a session. Success and Failed are
// terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// StepStatus is the state of a single step. Skipped is reserved for actions
// whose execution path is intentionally bypassed, such as primitive actions
// with no implementation; steps never attempted due to fail-fast get no
// StepResult at all.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepSuccess StepStatus = "success"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// String returns the string representation of the step status.
func (s StepStatus) String() string {
	return string(s)
}

// StepResult records the execution of one plan action.
type StepResult struct {
	StepID    string         `json:"step_id"`
	Status    StepStatus     `json:"status"`
	Output    map[string]any `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time,omitempty"`
}

// Duration returns the elapsed time of the step, zero while it is running.
func (r *StepResult) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Session is one execution run of an approved plan.
//
// StepResults never exceeds the plan's action count: the runner stops at the
// first failed step and later actions receive no entry.
type Session struct {
	ID          types.ID     `json:"id"`
	Plan        *plan.Plan   `json:"plan"`
	Status      Status       `json:"status"`
	StepResults []StepResult `json:"step_results"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time,omitempty"`
}

// New creates a pending session for the plan.
func New(p *plan.Plan) *Session {
	return &Session{
		ID:          types.NewID(),
		Plan:        p,
		Status:      StatusPending,
		StepResults: []StepResult{},
	}
}

// SuccessRate is the fraction of recorded steps that succeeded, in [0, 1].
// Skipped steps count against the rate; an empty result list yields 0.
func (s *Session) SuccessRate() float64 {
	if len(s.StepResults) == 0 {
		return 0.0
	}
	successful := 0
	for i := range s.StepResults {
		if s.StepResults[i].Status == StepSuccess {
			successful++
		}
	}
	return float64(successful) / float64(len(s.StepResults))
}

// Duration returns the elapsed time of the session, zero until it ends.
func (s *Session) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}
