// Package intent defines the structured interpretation of a user request as
// produced by the upstream language-understanding subsystem. The planning core
// consumes intents read-only; it never parses natural language itself.
package intent

import "fmt"

// Type identifies the category of a recognized user intent.
type Type string

const (
	TypeOpenApp       Type = "open_app"
	TypeFocusApp      Type = "focus_app"
	TypeClickText     Type = "click_text"
	TypeTypeText      Type = "type_text"
	TypeSaveFile      Type = "save_file"
	TypeWebSearch     Type = "web_search"
	TypeWriteTextFile Type = "write_text_file"
	TypeUnknown       Type = "unknown"
)

// String returns the string representation of the intent type.
func (t Type) String() string {
	return string(t)
}

// IsWrite reports whether the intent type performs a file write.
// Write intents are subject to the write-confirmation policy and the
// path security guardrail.
func (t Type) IsWrite() bool {
	return t == TypeSaveFile || t == TypeWriteTextFile
}

// Intent is a structured interpretation of a user request. It is immutable
// once created: the planner reads slots but never mutates them.
type Intent struct {
	// Type is the recognized intent category.
	Type Type `json:"type"`

	// Confidence is the parser's confidence in the interpretation, in [0, 1].
	Confidence float64 `json:"confidence"`

	// Slots holds the named parameters extracted from the user input,
	// e.g. app_name, text, path, query, content.
	Slots map[string]any `json:"slots,omitempty"`

	// OriginalText is the raw user input this intent was derived from.
	OriginalText string `json:"original_text"`

	// NormalizedText is the cleaned-up form of the input, when available.
	NormalizedText string `json:"normalized_text,omitempty"`
}

// SlotString returns the named slot rendered as a string, or the empty string
// if the slot is absent.
func (i *Intent) SlotString(name string) string {
	v, ok := i.Slots[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// requiredSlots maps each intent type to the slots a plan cannot be built
// without. Types absent from the map have no required slots.
var requiredSlots = map[Type][]string{
	TypeOpenApp:       {"app_name"},
	TypeFocusApp:      {"app_name"},
	TypeClickText:     {"text"},
	TypeTypeText:      {"text"},
	TypeWebSearch:     {"query"},
	TypeWriteTextFile: {"content"},
}

// RequiredSlots returns the slot names that must be present and non-empty for
// the given intent type to be planned.
func RequiredSlots(t Type) []string {
	return requiredSlots[t]
}

// MissingSlots returns the required slots that are absent or empty on the
// intent, in declaration order.
func (i *Intent) MissingSlots() []string {
	var missing []string
	for _, name := range RequiredSlots(i.Type) {
		if i.SlotString(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
