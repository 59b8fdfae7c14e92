package guardrail

import (
	"fmt"

	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// NewRuleExistsError reports an attempt to register a duplicate rule name
func NewRuleExistsError(name string) *types.AgentError {
	return types.NewError(types.GUARDRAIL_RULE_EXISTS,
		fmt.Sprintf("guardrail rule %q is already registered", name))
}

// NewRuleNotFoundError reports a lookup for an unregistered rule name
func NewRuleNotFoundError(name string) *types.AgentError {
	return types.NewError(types.GUARDRAIL_RULE_NOT_FOUND,
		fmt.Sprintf("guardrail rule %q is not registered", name))
}
