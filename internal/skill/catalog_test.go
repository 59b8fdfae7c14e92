package skill

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogExists(t *testing.T) {
	c := NewCatalog()

	for _, name := range []string{
		"open_app", "focus_app", "click_text", "type_text",
		"save_file", "write_text_file", "press_hotkey",
	} {
		assert.True(t, c.Exists(name), "expected %s to be catalogued", name)
	}
	assert.False(t, c.Exists("teleport"))
}

func TestCatalogValidateParameters(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		name   string
		skill  string
		params map[string]any
		valid  bool
	}{
		{"open_app with name", "open_app", map[string]any{"app_name": "Notepad"}, true},
		{"open_app missing name", "open_app", map[string]any{}, false},
		{"open_app blank name", "open_app", map[string]any{"app_name": "  "}, false},
		{"open_app wrong type", "open_app", map[string]any{"app_name": 7}, false},
		{"focus_app with name", "focus_app", map[string]any{"app_name": "Editor"}, true},
		{"click_text with text", "click_text", map[string]any{"text": "Save"}, true},
		{"click_text blank text", "click_text", map[string]any{"text": ""}, false},
		{"type_text empty allowed", "type_text", map[string]any{"text": ""}, true},
		{"type_text missing text", "type_text", map[string]any{}, false},
		{"save_file no params", "save_file", nil, true},
		{"write_text_file empty content allowed", "write_text_file", map[string]any{"content": ""}, true},
		{"write_text_file missing content", "write_text_file", nil, false},
		{"press_hotkey string keys", "press_hotkey", map[string]any{"keys": "ctrl+s"}, true},
		{"press_hotkey blank string", "press_hotkey", map[string]any{"keys": " "}, false},
		{"press_hotkey string slice", "press_hotkey", map[string]any{"keys": []string{"ctrl", "s"}}, true},
		{"press_hotkey any slice", "press_hotkey", map[string]any{"keys": []any{"ctrl", "s"}}, true},
		{"press_hotkey empty slice", "press_hotkey", map[string]any{"keys": []string{}}, false},
		{"press_hotkey missing keys", "press_hotkey", map[string]any{}, false},
		{"unknown skill", "teleport", map[string]any{"x": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, c.ValidateParameters(tt.skill, tt.params))
		})
	}
}

func TestCatalogExecuteUnavailable(t *testing.T) {
	c := NewCatalog()

	result, err := c.Execute(context.Background(), "open_app", map[string]any{"app_name": "Notepad"}, time.Second)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "skill execution unavailable: open_app", result.Error)

	result, err = c.Execute(context.Background(), "teleport", nil, time.Second)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "unknown skill: teleport", result.Error)
}

func TestCatalogNames(t *testing.T) {
	names := NewCatalog().Names()
	assert.Len(t, names, 7)
	assert.Contains(t, names, "open_app")
	assert.Contains(t, names, "press_hotkey")
}
