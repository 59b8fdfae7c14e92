package plan

import "fmt"

// PlanErrorCode classifies a planning failure.
type PlanErrorCode string

const (
	ErrPlanGenerationFailed PlanErrorCode = "plan_generation_failed"
	ErrNoTemplate           PlanErrorCode = "no_template"
)

// PlanError is an error raised by the planning pipeline. Execution and
// session failures use the AgentError taxonomy instead.
type PlanError struct {
	Code    PlanErrorCode `json:"code"`
	Message string        `json:"message"`
	Cause   error         `json:"-"`
}

func (e *PlanError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PlanError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewPlanError creates a new PlanError with the given code, message, and cause.
func NewPlanError(code PlanErrorCode, message string, cause error) *PlanError {
	return &PlanError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsGenerationError reports whether err is a PlanError raised during plan
// generation (no template, or a blueprint could not be materialized).
func IsGenerationError(err error) bool {
	pe, ok := err.(*PlanError)
	if !ok {
		return false
	}
	return pe.Code == ErrPlanGenerationFailed || pe.Code == ErrNoTemplate
}
