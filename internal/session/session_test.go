package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
	"github.com/deskpilot-ai/deskpilot/internal/types"
)

func TestNewSession(t *testing.T) {
	p := &plan.Plan{ID: types.NewID(), Intent: intent.Intent{Type: intent.TypeOpenApp}}

	s := New(p)

	assert.False(t, s.ID.IsZero())
	assert.Equal(t, StatusPending, s.Status)
	assert.Empty(t, s.StepResults)
	assert.Equal(t, p, s.Plan)
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []StepStatus
		expected float64
	}{
		{"no steps", nil, 0.0},
		{"all success", []StepStatus{StepSuccess, StepSuccess}, 1.0},
		{"half success", []StepStatus{StepSuccess, StepFailed}, 0.5},
		{"all failed", []StepStatus{StepFailed, StepFailed}, 0.0},
		{"skipped counts against the rate", []StepStatus{StepSuccess, StepSkipped, StepSuccess}, 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{}
			for i, status := range tt.statuses {
				s.StepResults = append(s.StepResults, StepResult{
					StepID: string(rune('a' + i)),
					Status: status,
				})
			}
			assert.InDelta(t, tt.expected, s.SuccessRate(), 1e-9)
		})
	}
}

func TestSessionDuration(t *testing.T) {
	s := &Session{StartTime: time.Now()}
	assert.Zero(t, s.Duration())

	s.EndTime = s.StartTime.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, s.Duration())
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.True(t, StatusSuccess.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}
