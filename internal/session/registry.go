package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/deskpilot-ai/deskpilot/internal/events"
	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// DefaultCleanupDelay is how long a finished session stays in the registry
// before removal.
const DefaultCleanupDelay = 300 * time.Second

// Registry owns the active-session map. All access goes through its
// methods; cleanup after the configured delay bounds memory growth from
// completed sessions without requiring callers to release them.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[types.ID]*Session
	cleanupDelay time.Duration
	bus          events.Bus
	logger       *slog.Logger
}

// RegistryOption is a functional option for configuring Registry.
type RegistryOption func(*Registry)

// WithCleanupDelay overrides the delay before finished sessions are removed.
func WithCleanupDelay(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.cleanupDelay = d
		}
	}
}

// WithRegistryBus configures the event bus for removal notifications.
func WithRegistryBus(bus events.Bus) RegistryOption {
	return func(r *Registry) {
		r.bus = bus
	}
}

// WithRegistryLogger configures the logger for the registry.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty session registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions:     make(map[types.ID]*Session),
		cleanupDelay: DefaultCleanupDelay,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Add registers a session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get returns the session with the given ID.
func (r *Registry) Get(id types.ID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, types.NewError(types.SESSION_NOT_FOUND,
			fmt.Sprintf("session %s not found", id))
	}
	return s, nil
}

// Remove deletes a session and reports whether it was present.
func (r *Registry) Remove(id types.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return ok
}

// List returns a snapshot of the registered sessions.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ScheduleCleanup removes the session after the configured delay. The timer
// is not cancellable; a session re-registered under the same ID before the
// timer fires will be removed with it.
func (r *Registry) ScheduleCleanup(id types.ID) {
	time.AfterFunc(r.cleanupDelay, func() {
		if !r.Remove(id) {
			return
		}

		r.logger.Debug("session removed after cleanup delay",
			"session_id", id,
			"delay", r.cleanupDelay,
		)

		if r.bus != nil {
			event := events.NewEvent(events.EventSessionRemoved).WithSession(id)
			if err := r.bus.Publish(context.Background(), event); err != nil {
				r.logger.Warn("failed to publish session removal event",
					"session_id", id,
					"error", err,
				)
			}
		}
	})
}
