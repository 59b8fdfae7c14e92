package plan

import (
	"time"

	"github.com/deskpilot-ai/deskpilot/internal/intent"
)

// StepBlueprint is one templated step of a plan template. Exactly one of
// Skill or ActionType is set: a skill blueprint dispatches to a named skill,
// a primitive blueprint emits a raw desktop action.
type StepBlueprint struct {
	// Skill names the target skill; empty for primitive blueprints.
	Skill string

	// ActionType is the primitive action; ignored when Skill is set.
	ActionType ActionType

	// Description may contain {slot} placeholders.
	Description string

	// Parameters are template-defined action parameters; string values may
	// contain {slot} placeholders.
	Parameters map[string]any

	// Timeout overrides DefaultActionTimeout when positive.
	Timeout time.Duration
}

// Template is the static blueprint for turning one intent type into a plan.
// Templates are loaded once and read-only thereafter.
type Template struct {
	IntentType           intent.Type
	Steps                []StepBlueprint
	RequiresConfirmation bool
	EstimatedDuration    time.Duration
	RiskLevel            RiskLevel
}

// builtinTemplates returns the per-intent-type plan blueprints.
func builtinTemplates() map[intent.Type]Template {
	return map[intent.Type]Template{
		intent.TypeOpenApp: {
			IntentType: intent.TypeOpenApp,
			Steps: []StepBlueprint{
				{ActionType: ActionTypeScreenshot, Description: "Capture initial state"},
				{Skill: "open_app", Description: "Open application {app_name}"},
				{ActionType: ActionTypeWait, Parameters: map[string]any{"duration": 2.0}, Description: "Wait for the application to launch"},
			},
			EstimatedDuration: 5 * time.Second,
			RiskLevel:         RiskLevelLow,
		},
		intent.TypeFocusApp: {
			IntentType: intent.TypeFocusApp,
			Steps: []StepBlueprint{
				{Skill: "focus_app", Description: "Focus application {app_name}"},
			},
			EstimatedDuration: 2 * time.Second,
			RiskLevel:         RiskLevelLow,
		},
		intent.TypeClickText: {
			IntentType: intent.TypeClickText,
			Steps: []StepBlueprint{
				{ActionType: ActionTypeScreenshot, Description: "Capture screen to locate the text"},
				{Skill: "click_text", Description: "Click on '{text}'"},
			},
			EstimatedDuration: 3 * time.Second,
			RiskLevel:         RiskLevelLow,
		},
		intent.TypeTypeText: {
			IntentType: intent.TypeTypeText,
			Steps: []StepBlueprint{
				{Skill: "type_text", Description: "Type the text"},
			},
			EstimatedDuration: 2 * time.Second,
			RiskLevel:         RiskLevelLow,
		},
		intent.TypeSaveFile: {
			IntentType: intent.TypeSaveFile,
			Steps: []StepBlueprint{
				{Skill: "save_file", Description: "Save the file"},
			},
			EstimatedDuration:    3 * time.Second,
			RiskLevel:            RiskLevelMedium,
			RequiresConfirmation: true,
		},
		intent.TypeWebSearch: {
			IntentType: intent.TypeWebSearch,
			Steps: []StepBlueprint{
				{Skill: "open_app", Parameters: map[string]any{"app_name": "Google Chrome"}, Description: "Open the browser"},
				{ActionType: ActionTypeWait, Parameters: map[string]any{"duration": 3.0}, Description: "Wait for the browser to load"},
				{Skill: "click_text", Parameters: map[string]any{"text": "address bar", "fuzzy": true}, Description: "Click the address bar"},
				{Skill: "type_text", Parameters: map[string]any{"text": "https://www.google.com/search?q={query}"}, Description: "Type the search URL"},
				{ActionType: ActionTypeKeyPress, Parameters: map[string]any{"key": "enter"}, Description: "Submit the search"},
			},
			EstimatedDuration: 8 * time.Second,
			RiskLevel:         RiskLevelLow,
		},
		intent.TypeWriteTextFile: {
			IntentType: intent.TypeWriteTextFile,
			Steps: []StepBlueprint{
				{Skill: "write_text_file", Description: "Create and write the text file"},
			},
			EstimatedDuration:    5 * time.Second,
			RiskLevel:            RiskLevelMedium,
			RequiresConfirmation: true,
		},
	}
}

// summaryFor builds the human-readable plan summary for an intent. Slot
// values fall back to generic placeholders when absent.
func summaryFor(in *intent.Intent) string {
	slot := func(name, fallback string) string {
		if v := in.SlotString(name); v != "" {
			return v
		}
		return fallback
	}

	switch in.Type {
	case intent.TypeOpenApp:
		return "Open application " + slot("app_name", "unknown")
	case intent.TypeFocusApp:
		return "Focus application " + slot("app_name", "unknown")
	case intent.TypeClickText:
		return "Click on '" + slot("text", "text") + "'"
	case intent.TypeTypeText:
		text := in.SlotString("text")
		if len(text) > 50 {
			text = text[:50]
		}
		return "Type text: " + text + "..."
	case intent.TypeSaveFile:
		return "Save the current file"
	case intent.TypeWebSearch:
		return "Search the web for '" + slot("query", "query") + "'"
	case intent.TypeWriteTextFile:
		return "Write a text file with the provided content"
	default:
		return "Execute " + in.Type.String()
	}
}
