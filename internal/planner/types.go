package planner

import (
	"time"

	"github.com/deskpilot-ai/deskpilot/internal/guardrail"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
)

// ExecutionDecision is the final go/no-go produced from the validation and
// guardrail results.
//
// BlockingReasons collects validation errors plus guardrail error messages,
// the latter only when the verdict cleared CanExecute. A failing
// error-severity rule therefore flips the verdict's OverallPassed without
// blocking the decision; only critical rules block outright.
type ExecutionDecision struct {
	Approved             bool     `json:"approved"`
	RequiresConfirmation bool     `json:"requires_confirmation"`
	BlockingReasons      []string `json:"blocking_reasons"`
	Warnings             []string `json:"warnings"`
	Recommendations      []string `json:"recommendations,omitempty"`
}

// Report is the complete result of one planning pipeline run.
type Report struct {
	Plan           *plan.Plan         `json:"plan"`
	Validation     plan.Validation    `json:"validation"`
	Verdict        *guardrail.Verdict `json:"verdict"`
	Decision       ExecutionDecision  `json:"decision"`
	GenerationTime time.Duration      `json:"generation_time"`
}

// Stats holds the manager's running counters. ApprovalRate is zero until at
// least one plan has been generated.
type Stats struct {
	PlansGenerated int     `json:"plans_generated"`
	PlansApproved  int     `json:"plans_approved"`
	PlansRejected  int     `json:"plans_rejected"`
	ApprovalRate   float64 `json:"approval_rate"`
	CachedPlans    int     `json:"cached_plans"`
	ActiveRules    int     `json:"active_rules"`
}
