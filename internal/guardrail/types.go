package guardrail

// Result represents the outcome of a single rule check
type Result struct {
	Passed  bool           `json:"passed"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Outcome pairs a rule's result with its identity and severity
type Outcome struct {
	RuleName string   `json:"rule_name"`
	Severity Severity `json:"severity"`
	Result   Result   `json:"result"`
}

// Verdict aggregates every rule outcome for a plan.
//
// Only a failing critical rule clears CanExecute. Failing error rules
// clear OverallPassed without stopping execution, and failing warning
// rules force confirmation without affecting OverallPassed.
type Verdict struct {
	OverallPassed        bool      `json:"overall_passed"`
	CanExecute           bool      `json:"can_execute"`
	RequiresConfirmation bool      `json:"requires_confirmation"`
	Outcomes             []Outcome `json:"outcomes"`
	Errors               []string  `json:"errors"`
	Warnings             []string  `json:"warnings"`
	Info                 []string  `json:"info"`
}

// NewPassResult creates a result for a rule that found nothing
func NewPassResult() Result {
	return Result{Passed: true}
}

// NewFailResult creates a failing result with the given reason
func NewFailResult(message string) Result {
	return Result{Passed: false, Message: message}
}

// NewFailResultWithDetails creates a failing result carrying structured
// detail entries for the caller
func NewFailResultWithDetails(message string, details map[string]any) Result {
	return Result{Passed: false, Message: message, Details: details}
}
