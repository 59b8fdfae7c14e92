package builtin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deskpilot-ai/deskpilot/internal/guardrail"
	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
)

const (
	// DefaultRateLimit is the maximum number of plan checks per window.
	DefaultRateLimit = 10

	// DefaultRateWindow is the sliding window length.
	DefaultRateWindow = 60 * time.Second
)

// RateLimit fails plan checks once a sliding time window already holds the
// configured maximum of invocations. Unlike a token bucket it counts exact
// timestamps: the Nth call inside the window passes, the N+1th fails.
type RateLimit struct {
	limit  int
	window time.Duration

	mu         sync.Mutex
	timestamps []time.Time

	now func() time.Time
}

// NewRateLimit creates the rate limit rule. Non-positive arguments fall back
// to the defaults.
func NewRateLimit(limit int, window time.Duration) *RateLimit {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &RateLimit{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Name returns the name of the rule.
func (r *RateLimit) Name() string {
	return "rate-limit"
}

// Description returns the human-readable description of the rule.
func (r *RateLimit) Description() string {
	return fmt.Sprintf("Limits plan checks to %d per %s", r.limit, r.window)
}

// Severity returns the severity of the rule.
func (r *RateLimit) Severity() guardrail.Severity {
	return guardrail.SeverityWarning
}

// AppliesTo returns nil: the rule runs on every plan.
func (r *RateLimit) AppliesTo() []intent.Type {
	return nil
}

// Check prunes expired timestamps, then either records the current
// invocation or fails when the window is full. The prune-then-append
// sequence holds the mutex throughout, so concurrent bursts cannot
// under-count the window.
func (r *RateLimit) Check(ctx context.Context, p *plan.Plan, execCtx map[string]any) (guardrail.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)

	kept := r.timestamps[:0]
	for _, ts := range r.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	r.timestamps = kept

	if len(r.timestamps) >= r.limit {
		oldest := r.timestamps[0]
		retryAfter := r.window - now.Sub(oldest)
		return guardrail.NewFailResultWithDetails(
			fmt.Sprintf("rate limit exceeded: %d plan checks in the last %s (limit %d)",
				len(r.timestamps), r.window, r.limit),
			map[string]any{
				"count":               len(r.timestamps),
				"limit":               r.limit,
				"retry_after_seconds": retryAfter.Seconds(),
			},
		), nil
	}

	r.timestamps = append(r.timestamps, now)
	return guardrail.NewPassResult(), nil
}
