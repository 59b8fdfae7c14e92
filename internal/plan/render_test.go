package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		slots    map[string]any
		expected string
	}{
		{
			name:     "single placeholder",
			template: "Open application {app_name}",
			slots:    map[string]any{"app_name": "Notepad"},
			expected: "Open application Notepad",
		},
		{
			name:     "multiple placeholders",
			template: "Write {content} to {path}",
			slots:    map[string]any{"content": "hello", "path": "~/note.txt"},
			expected: "Write hello to ~/note.txt",
		},
		{
			name:     "unknown placeholder left verbatim",
			template: "Search for {query}",
			slots:    map[string]any{"app_name": "Chrome"},
			expected: "Search for {query}",
		},
		{
			name:     "no placeholders",
			template: "Capture screen",
			slots:    map[string]any{"text": "unused"},
			expected: "Capture screen",
		},
		{
			name:     "nil slots",
			template: "Type {text}",
			slots:    nil,
			expected: "Type {text}",
		},
		{
			name:     "non-string slot value",
			template: "Wait {duration}s",
			slots:    map[string]any{"duration": 3},
			expected: "Wait 3s",
		},
		{
			name:     "same placeholder twice",
			template: "{text} and {text}",
			slots:    map[string]any{"text": "abc"},
			expected: "abc and abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.template, tt.slots))
		})
	}
}

func TestRenderParameters(t *testing.T) {
	params := map[string]any{
		"text":     "https://www.google.com/search?q={query}",
		"fuzzy":    true,
		"duration": 2.0,
	}
	slots := map[string]any{"query": "golang"}

	rendered := renderParameters(params, slots)

	assert.Equal(t, "https://www.google.com/search?q=golang", rendered["text"])
	assert.Equal(t, true, rendered["fuzzy"])
	assert.Equal(t, 2.0, rendered["duration"])

	// Input map is not mutated
	assert.Equal(t, "https://www.google.com/search?q={query}", params["text"])
}
