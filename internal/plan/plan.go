package plan

import (
	"time"

	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// ActionType identifies a primitive desktop action, or a skill invocation
// when it equals ActionTypeSkill.
type ActionType string

const (
	ActionTypeMoveMouse   ActionType = "move_mouse"
	ActionTypeClick       ActionType = "click"
	ActionTypeDoubleClick ActionType = "double_click"
	ActionTypeRightClick  ActionType = "right_click"
	ActionTypeTypeText    ActionType = "type_text"
	ActionTypeKeyPress    ActionType = "key_press"
	ActionTypeHotkey      ActionType = "hotkey"
	ActionTypeScroll      ActionType = "scroll"
	ActionTypeWait        ActionType = "wait"
	ActionTypeScreenshot  ActionType = "screenshot"

	// ActionTypeSkill marks an action that dispatches to a named skill
	// rather than a primitive. The skill name and its parameters live in
	// Parameters under "skill_name" and "skill_parameters".
	ActionTypeSkill ActionType = "skill"
)

// String returns the string representation of the action type.
func (t ActionType) String() string {
	return string(t)
}

// DefaultActionTimeout bounds a single action's execution when the template
// does not specify one.
const DefaultActionTimeout = 5 * time.Second

// Action is one concrete, parameterized step of a plan. Immutable after
// creation.
type Action struct {
	Type        ActionType     `json:"type"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Description string         `json:"description"`
	Timeout     time.Duration  `json:"timeout"`
}

// IsSkill reports whether the action dispatches to a skill.
func (a *Action) IsSkill() bool {
	return a.Type == ActionTypeSkill
}

// SkillName returns the target skill name for a skill action, or "".
func (a *Action) SkillName() string {
	name, _ := a.Parameters["skill_name"].(string)
	return name
}

// SkillParameters returns the parameter map passed to the skill. Never nil
// for a skill action built by the generator.
func (a *Action) SkillParameters() map[string]any {
	params, _ := a.Parameters["skill_parameters"].(map[string]any)
	return params
}

// RiskLevel classifies how much damage a plan could do if it misbehaves.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	return string(r)
}

// Plan is a concrete, ordered action sequence derived from an intent. Once
// approved it is stored read-only in the planner's cache; nothing mutates a
// plan after generation.
type Plan struct {
	// ID uniquely identifies the plan for cache lookup and session tracking.
	ID types.ID `json:"id"`

	// Intent is the recognized intent this plan was derived from.
	Intent intent.Intent `json:"intent"`

	// Actions is the ordered step sequence.
	Actions []Action `json:"actions"`

	// Summary is a short human-readable description of what the plan does.
	Summary string `json:"summary"`

	// RequiresConfirmation marks plans that must be surfaced to the user
	// before execution.
	RequiresConfirmation bool `json:"requires_confirmation"`

	// EstimatedDuration is the expected wall-clock execution time.
	EstimatedDuration time.Duration `json:"estimated_duration"`

	// RiskLevel is the template's base risk classification.
	RiskLevel RiskLevel `json:"risk_level"`

	// CreatedAt is the timestamp when the plan was generated.
	CreatedAt time.Time `json:"created_at"`
}

// Validation is the structural check result for a plan. Validation never
// fails with an error; defects are reported in Errors and Warnings.
type Validation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
