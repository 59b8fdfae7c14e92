package events

import (
	"time"

	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// EventType identifies the kind of lifecycle event.
type EventType string

// Planning lifecycle events
const (
	EventPlanCreated  EventType = "plan.created"
	EventPlanApproved EventType = "plan.approved"
	EventPlanRejected EventType = "plan.rejected"
)

// Execution lifecycle events
const (
	EventExecutionStarted   EventType = "execution.started"
	EventStepCompleted      EventType = "step.completed"
	EventExecutionCompleted EventType = "execution.completed"
	EventExecutionError     EventType = "execution.error"
	EventSessionRemoved     EventType = "session.removed"
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// Event is a single lifecycle notification. SessionID and PlanID are zero
// when the event is not tied to a session or plan.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID types.ID       `json:"session_id,omitempty"`
	PlanID    types.ID       `json:"plan_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   make(map[string]any),
	}
}

// WithSession attaches a session ID to the event.
func (e Event) WithSession(id types.ID) Event {
	e.SessionID = id
	return e
}

// WithPlan attaches a plan ID to the event.
func (e Event) WithPlan(id types.ID) Event {
	e.PlanID = id
	return e
}

// WithPayload sets a payload entry on the event.
func (e Event) WithPayload(key string, value any) Event {
	if e.Payload == nil {
		e.Payload = make(map[string]any)
	}
	e.Payload[key] = value
	return e
}

// Filter restricts which events a subscriber receives. Zero-valued fields
// match everything.
type Filter struct {
	Types     []EventType
	SessionID types.ID
	PlanID    types.ID
}

// Matches reports whether the event passes the filter.
func (f Filter) Matches(event Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if event.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if !f.SessionID.IsZero() && event.SessionID != f.SessionID {
		return false
	}

	if !f.PlanID.IsZero() && event.PlanID != f.PlanID {
		return false
	}

	return true
}
