package plan

import (
	"fmt"
	"strings"
)

// Render substitutes {slotName} placeholders in template with the
// corresponding slot values. Placeholders with no matching slot are left
// verbatim; this permissiveness is deliberate (a template may carry
// placeholders for slots the user did not supply).
func Render(template string, slots map[string]any) string {
	if template == "" || len(slots) == 0 {
		return template
	}

	rendered := template
	for key, value := range slots {
		placeholder := "{" + key + "}"
		if strings.Contains(rendered, placeholder) {
			rendered = strings.ReplaceAll(rendered, placeholder, fmt.Sprint(value))
		}
	}
	return rendered
}

// renderParameters returns a copy of params with every string value rendered
// against slots. Non-string values are copied as-is.
func renderParameters(params map[string]any, slots map[string]any) map[string]any {
	rendered := make(map[string]any, len(params))
	for key, value := range params {
		if s, ok := value.(string); ok {
			rendered[key] = Render(s, slots)
			continue
		}
		rendered[key] = value
	}
	return rendered
}
