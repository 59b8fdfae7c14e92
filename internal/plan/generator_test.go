package plan

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskpilot-ai/deskpilot/internal/config"
	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/skill"
)

func testSecurity() config.SecurityConfig {
	return config.DefaultConfig().Security
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	return NewGenerator(skill.NewCatalog(), testSecurity())
}

func TestGenerateOpenApp(t *testing.T) {
	g := newTestGenerator(t)

	in := &intent.Intent{
		Type:       intent.TypeOpenApp,
		Confidence: 0.95,
		Slots:      map[string]any{"app_name": "Notepad"},
	}

	p, err := g.Generate(context.Background(), in, nil)
	require.NoError(t, err)

	assert.False(t, p.ID.IsZero())
	assert.NotEmpty(t, p.Actions)
	assert.Equal(t, RiskLevelLow, p.RiskLevel)
	assert.False(t, p.RequiresConfirmation)
	assert.Contains(t, p.Summary, "Notepad")

	var skillAction *Action
	for i := range p.Actions {
		if p.Actions[i].IsSkill() {
			skillAction = &p.Actions[i]
			break
		}
	}
	require.NotNil(t, skillAction, "expected a skill action")
	assert.Equal(t, "open_app", skillAction.SkillName())
	assert.Equal(t, "Notepad", skillAction.SkillParameters()["app_name"])
	assert.Equal(t, "Open application Notepad", skillAction.Description)
}

func TestGenerateNoTemplate(t *testing.T) {
	g := newTestGenerator(t)

	in := &intent.Intent{Type: intent.TypeUnknown, Confidence: 0.2}

	_, err := g.Generate(context.Background(), in, nil)
	require.Error(t, err)

	pe, ok := err.(*PlanError)
	require.True(t, ok, "expected a PlanError, got %T", err)
	assert.Equal(t, ErrNoTemplate, pe.Code)
	assert.True(t, IsGenerationError(err))
}

func TestGenerateDurationAdjustments(t *testing.T) {
	g := newTestGenerator(t)

	tests := []struct {
		name     string
		in       *intent.Intent
		expected time.Duration
	}{
		{
			name: "type_text scales with text length",
			in: &intent.Intent{
				Type:  intent.TypeTypeText,
				Slots: map[string]any{"text": strings.Repeat("a", 100)},
			},
			expected: 2*time.Second + 1000*time.Millisecond,
		},
		{
			name: "write_text_file scales with content length",
			in: &intent.Intent{
				Type:  intent.TypeWriteTextFile,
				Slots: map[string]any{"content": strings.Repeat("b", 50)},
			},
			expected: 5*time.Second + 500*time.Millisecond,
		},
		{
			name: "write_text_file with path adds two seconds",
			in: &intent.Intent{
				Type: intent.TypeWriteTextFile,
				Slots: map[string]any{
					"content": strings.Repeat("b", 50),
					"path":    "~/Documents/note.txt",
				},
			},
			expected: 7*time.Second + 500*time.Millisecond,
		},
		{
			name: "open_app keeps the template base",
			in: &intent.Intent{
				Type:  intent.TypeOpenApp,
				Slots: map[string]any{"app_name": "Notepad"},
			},
			expected: 5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := g.Generate(context.Background(), tt.in, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.EstimatedDuration)
		})
	}
}

func TestGenerateWriteConfirmation(t *testing.T) {
	in := &intent.Intent{
		Type:  intent.TypeWriteTextFile,
		Slots: map[string]any{"content": "hello", "path": "~/Documents/note.txt"},
	}

	// Template default forces confirmation for write_text_file regardless
	// of policy
	g := newTestGenerator(t)
	p, err := g.Generate(context.Background(), in, nil)
	require.NoError(t, err)
	assert.True(t, p.RequiresConfirmation)

	// Non-write intents never pick up the write policy
	g2 := newTestGenerator(t)
	p2, err := g2.Generate(context.Background(), &intent.Intent{
		Type:  intent.TypeClickText,
		Slots: map[string]any{"text": "OK"},
	}, nil)
	require.NoError(t, err)
	assert.False(t, p2.RequiresConfirmation)
}

func TestOptimizeCollapsesScreenshots(t *testing.T) {
	g := newTestGenerator(t)

	p := &Plan{
		Actions: []Action{
			{Type: ActionTypeScreenshot, Description: "one"},
			{Type: ActionTypeScreenshot, Description: "two"},
			{Type: ActionTypeScreenshot, Description: "three"},
			{Type: ActionTypeClick, Parameters: map[string]any{"x": 1, "y": 2}, Description: "click"},
			{Type: ActionTypeScreenshot, Description: "four"},
		},
	}

	optimized := g.Optimize(p)

	require.Len(t, optimized.Actions, 3)
	assert.Equal(t, ActionTypeScreenshot, optimized.Actions[0].Type)
	assert.Equal(t, "one", optimized.Actions[0].Description)
	assert.Equal(t, ActionTypeClick, optimized.Actions[1].Type)
	assert.Equal(t, ActionTypeScreenshot, optimized.Actions[2].Type)
}

func TestOptimizeMergesTextEntry(t *testing.T) {
	g := newTestGenerator(t)

	p := &Plan{
		Actions: []Action{
			{Type: ActionTypeTypeText, Parameters: map[string]any{"text": "hello "}, Description: "a", Timeout: DefaultActionTimeout},
			{Type: ActionTypeTypeText, Parameters: map[string]any{"text": "world"}, Description: "b", Timeout: DefaultActionTimeout},
			{Type: ActionTypeWait, Parameters: map[string]any{"duration": 2.0}, Description: "wait"},
		},
	}

	optimized := g.Optimize(p)

	require.Len(t, optimized.Actions, 2)
	merged := optimized.Actions[0]
	assert.Equal(t, ActionTypeTypeText, merged.Type)
	assert.Equal(t, "hello world", merged.Parameters["text"])
	assert.Equal(t, "Merged text entry (11 characters)", merged.Description)

	// Recomputed: max(1s, 11*10ms) + 2s wait
	assert.Equal(t, 3*time.Second, optimized.EstimatedDuration)
}

func TestOptimizeMergesSkillTextEntry(t *testing.T) {
	g := newTestGenerator(t)

	mkSkill := func(text string) Action {
		return Action{
			Type: ActionTypeSkill,
			Parameters: map[string]any{
				"skill_name":       "type_text",
				"skill_parameters": map[string]any{"text": text},
			},
			Description: "type",
			Timeout:     DefaultActionTimeout,
		}
	}

	p := &Plan{Actions: []Action{mkSkill("foo"), mkSkill("bar")}}

	optimized := g.Optimize(p)

	require.Len(t, optimized.Actions, 1)
	merged := optimized.Actions[0]
	require.True(t, merged.IsSkill())
	assert.Equal(t, "type_text", merged.SkillName())
	assert.Equal(t, "foobar", merged.SkillParameters()["text"])
}

func TestOptimizePreservesSingleActions(t *testing.T) {
	g := newTestGenerator(t)

	in := &intent.Intent{
		Type:  intent.TypeOpenApp,
		Slots: map[string]any{"app_name": "Notepad"},
	}
	p, err := g.Generate(context.Background(), in, nil)
	require.NoError(t, err)

	optimized := g.Optimize(p)
	assert.Len(t, optimized.Actions, len(p.Actions))
	assert.Equal(t, p.ID, optimized.ID)
	assert.Equal(t, p.RequiresConfirmation, optimized.RequiresConfirmation)
}

func TestValidate(t *testing.T) {
	g := newTestGenerator(t)

	tests := []struct {
		name         string
		plan         *Plan
		valid        bool
		wantError    string
		wantWarning  string
	}{
		{
			name:      "empty plan",
			plan:      &Plan{},
			valid:     false,
			wantError: "no actions",
		},
		{
			name: "missing description",
			plan: &Plan{Actions: []Action{
				{Type: ActionTypeScreenshot},
			}},
			valid:       true,
			wantWarning: "missing description",
		},
		{
			name: "primitive type_text without text",
			plan: &Plan{Actions: []Action{
				{Type: ActionTypeTypeText, Parameters: map[string]any{}, Description: "type"},
			}},
			valid:     false,
			wantError: "missing text",
		},
		{
			name: "unknown skill",
			plan: &Plan{Actions: []Action{
				{
					Type: ActionTypeSkill,
					Parameters: map[string]any{
						"skill_name":       "teleport",
						"skill_parameters": map[string]any{},
					},
					Description: "teleport",
				},
			}},
			valid:     false,
			wantError: `skill "teleport" not found`,
		},
		{
			name: "invalid skill parameters",
			plan: &Plan{Actions: []Action{
				{
					Type: ActionTypeSkill,
					Parameters: map[string]any{
						"skill_name":       "open_app",
						"skill_parameters": map[string]any{},
					},
					Description: "open",
				},
			}},
			valid:     false,
			wantError: "invalid parameters",
		},
		{
			name: "too many screenshots",
			plan: &Plan{Actions: []Action{
				{Type: ActionTypeScreenshot, Description: "1"},
				{Type: ActionTypeScreenshot, Description: "2"},
				{Type: ActionTypeScreenshot, Description: "3"},
				{Type: ActionTypeScreenshot, Description: "4"},
			}},
			valid:       true,
			wantWarning: "4 times",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.Validate(tt.plan)
			assert.Equal(t, tt.valid, v.Valid)
			if tt.wantError != "" {
				require.NotEmpty(t, v.Errors)
				assert.Contains(t, strings.Join(v.Errors, "\n"), tt.wantError)
			}
			if tt.wantWarning != "" {
				require.NotEmpty(t, v.Warnings)
				assert.Contains(t, strings.Join(v.Warnings, "\n"), tt.wantWarning)
			}
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	g := newTestGenerator(t)

	in := &intent.Intent{
		Type:  intent.TypeWebSearch,
		Slots: map[string]any{"query": "golang slices"},
	}
	p, err := g.Generate(context.Background(), in, nil)
	require.NoError(t, err)

	first := g.Validate(p)
	second := g.Validate(p)
	assert.Equal(t, first, second)
	assert.True(t, first.Valid)
}
