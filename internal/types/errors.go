package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for agent core errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Planning error codes
const (
	PLAN_GENERATION_FAILED ErrorCode = "PLAN_GENERATION_FAILED"
	PLAN_VALIDATION_FAILED ErrorCode = "PLAN_VALIDATION_FAILED"
	PLAN_NOT_FOUND         ErrorCode = "PLAN_NOT_FOUND"
)

// Guardrail error codes
const (
	GUARDRAIL_RULE_FAILED    ErrorCode = "GUARDRAIL_RULE_FAILED"
	GUARDRAIL_RULE_EXISTS    ErrorCode = "GUARDRAIL_RULE_EXISTS"
	GUARDRAIL_RULE_NOT_FOUND ErrorCode = "GUARDRAIL_RULE_NOT_FOUND"
	GUARDRAIL_CONFIG_INVALID ErrorCode = "GUARDRAIL_CONFIG_INVALID"
)

// Execution error codes
const (
	SKILL_EXECUTION_FAILED ErrorCode = "SKILL_EXECUTION_FAILED"
	SKILL_NOT_FOUND        ErrorCode = "SKILL_NOT_FOUND"
	SKILL_TIMEOUT          ErrorCode = "SKILL_TIMEOUT"
	SESSION_NOT_FOUND      ErrorCode = "SESSION_NOT_FOUND"
)

// AgentError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type AgentError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *AgentError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is an AgentError with the same Code.
func (e *AgentError) Is(target error) bool {
	var agentErr *AgentError
	if errors.As(target, &agentErr) {
		return e.Code == agentErr.Code
	}
	return false
}

// NewError creates a new non-retryable AgentError with the given code and message.
func NewError(code ErrorCode, message string) *AgentError {
	return &AgentError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable AgentError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., timeouts).
func NewRetryableError(code ErrorCode, message string) *AgentError {
	return &AgentError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable AgentError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *AgentError {
	return &AgentError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRetryable reports whether err or any error in its chain is a retryable
// AgentError. Errors outside the AgentError taxonomy are considered retryable
// by default; callers that want stricter behavior should classify first.
func IsRetryable(err error) bool {
	var agentErr *AgentError
	if errors.As(err, &agentErr) {
		return agentErr.Retryable
	}
	return true
}
