package guardrail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// stubRule is a configurable rule for engine tests.
type stubRule struct {
	name      string
	severity  Severity
	appliesTo []intent.Type
	result    Result
	err       error
	panicMsg  string
	calls     int
}

func (r *stubRule) Name() string             { return r.name }
func (r *stubRule) Description() string      { return "stub rule " + r.name }
func (r *stubRule) Severity() Severity       { return r.severity }
func (r *stubRule) AppliesTo() []intent.Type { return r.appliesTo }

func (r *stubRule) Check(ctx context.Context, p *plan.Plan, execCtx map[string]any) (Result, error) {
	r.calls++
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	if r.err != nil {
		return Result{}, r.err
	}
	return r.result, nil
}

func testPlan(t intent.Type) *plan.Plan {
	return &plan.Plan{
		ID:     types.NewID(),
		Intent: intent.Intent{Type: t, Confidence: 1.0},
	}
}

func TestCheckAllPass(t *testing.T) {
	engine := NewEngine([]Rule{
		&stubRule{name: "a", severity: SeverityError, result: NewPassResult()},
		&stubRule{name: "b", severity: SeverityWarning, result: NewPassResult()},
	})

	verdict := engine.Check(context.Background(), testPlan(intent.TypeOpenApp), nil)

	assert.True(t, verdict.OverallPassed)
	assert.True(t, verdict.CanExecute)
	assert.False(t, verdict.RequiresConfirmation)
	assert.Len(t, verdict.Outcomes, 2)
	assert.Empty(t, verdict.Errors)
	assert.Empty(t, verdict.Warnings)
}

// Severity aggregation: only critical failures block execution, error
// failures only clear the overall pass, warning failures only force
// confirmation.
func TestCheckSeverityAggregation(t *testing.T) {
	tests := []struct {
		name                 string
		severity             Severity
		overallPassed        bool
		canExecute           bool
		requiresConfirmation bool
		inErrors             bool
		inWarnings           bool
	}{
		{
			name:                 "critical failure blocks execution",
			severity:             SeverityCritical,
			overallPassed:        false,
			canExecute:           false,
			requiresConfirmation: false,
			inErrors:             true,
		},
		{
			name:                 "error failure does not block execution",
			severity:             SeverityError,
			overallPassed:        false,
			canExecute:           true,
			requiresConfirmation: false,
			inErrors:             true,
		},
		{
			name:                 "warning failure forces confirmation",
			severity:             SeverityWarning,
			overallPassed:        true,
			canExecute:           true,
			requiresConfirmation: true,
			inWarnings:           true,
		},
		{
			name:                 "info failure changes nothing",
			severity:             SeverityInfo,
			overallPassed:        true,
			canExecute:           true,
			requiresConfirmation: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine([]Rule{
				&stubRule{name: "failing", severity: tt.severity, result: NewFailResult("nope")},
			})

			verdict := engine.Check(context.Background(), testPlan(intent.TypeOpenApp), nil)

			assert.Equal(t, tt.overallPassed, verdict.OverallPassed, "OverallPassed")
			assert.Equal(t, tt.canExecute, verdict.CanExecute, "CanExecute")
			assert.Equal(t, tt.requiresConfirmation, verdict.RequiresConfirmation, "RequiresConfirmation")
			if tt.inErrors {
				assert.Contains(t, verdict.Errors, "nope")
			} else {
				assert.Empty(t, verdict.Errors)
			}
			if tt.inWarnings {
				assert.Contains(t, verdict.Warnings, "nope")
			} else {
				assert.Empty(t, verdict.Warnings)
			}
		})
	}
}

func TestCheckSeedsConfirmationFromPlan(t *testing.T) {
	engine := NewEngine(nil)

	p := testPlan(intent.TypeSaveFile)
	p.RequiresConfirmation = true

	verdict := engine.Check(context.Background(), p, nil)
	assert.True(t, verdict.RequiresConfirmation)
	assert.True(t, verdict.OverallPassed)
}

func TestCheckAppliesToFiltering(t *testing.T) {
	writeOnly := &stubRule{
		name:      "write-only",
		severity:  SeverityError,
		appliesTo: []intent.Type{intent.TypeWriteTextFile},
		result:    NewFailResult("write problem"),
	}
	universal := &stubRule{name: "universal", severity: SeverityInfo, result: NewPassResult()}
	engine := NewEngine([]Rule{writeOnly, universal})

	verdict := engine.Check(context.Background(), testPlan(intent.TypeOpenApp), nil)

	assert.Equal(t, 0, writeOnly.calls)
	assert.Equal(t, 1, universal.calls)
	assert.True(t, verdict.OverallPassed)
	assert.Len(t, verdict.Outcomes, 1)
}

func TestCheckRuleErrorBecomesErrorOutcome(t *testing.T) {
	failing := &stubRule{name: "broken", severity: SeverityWarning, err: errors.New("boom")}
	after := &stubRule{name: "after", severity: SeverityInfo, result: NewPassResult()}
	engine := NewEngine([]Rule{failing, after})

	verdict := engine.Check(context.Background(), testPlan(intent.TypeOpenApp), nil)

	// The rule's own warning severity is replaced by error severity for
	// internal failures
	require.Len(t, verdict.Outcomes, 2)
	assert.Equal(t, SeverityError, verdict.Outcomes[0].Severity)
	assert.False(t, verdict.Outcomes[0].Result.Passed)
	assert.False(t, verdict.OverallPassed)
	assert.True(t, verdict.CanExecute)

	// Evaluation continued past the broken rule
	assert.Equal(t, 1, after.calls)
}

func TestCheckRulePanicIsContained(t *testing.T) {
	panicking := &stubRule{name: "panicky", severity: SeverityWarning, panicMsg: "kaboom"}
	after := &stubRule{name: "after", severity: SeverityInfo, result: NewPassResult()}
	engine := NewEngine([]Rule{panicking, after})

	var verdict *Verdict
	require.NotPanics(t, func() {
		verdict = engine.Check(context.Background(), testPlan(intent.TypeOpenApp), nil)
	})

	require.Len(t, verdict.Outcomes, 2)
	assert.Equal(t, SeverityError, verdict.Outcomes[0].Severity)
	assert.Contains(t, verdict.Outcomes[0].Result.Message, "kaboom")
	assert.Equal(t, 1, after.calls)
}

func TestAddRemoveRule(t *testing.T) {
	engine := NewEngine([]Rule{
		&stubRule{name: "a", severity: SeverityInfo, result: NewPassResult()},
	})

	require.NoError(t, engine.AddRule(&stubRule{name: "b", severity: SeverityInfo, result: NewPassResult()}))

	err := engine.AddRule(&stubRule{name: "a", severity: SeverityInfo})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.GUARDRAIL_RULE_EXISTS, ""))

	require.NoError(t, engine.RemoveRule("a"))
	err = engine.RemoveRule("a")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.GUARDRAIL_RULE_NOT_FOUND, ""))

	infos := engine.RulesInfo()
	require.Len(t, infos, 1)
	assert.Equal(t, "b", infos[0].Name)
}

func TestRulesInfoPreservesOrder(t *testing.T) {
	engine := NewEngine([]Rule{
		&stubRule{name: "first", severity: SeverityError},
		&stubRule{name: "second", severity: SeverityWarning},
		&stubRule{name: "third", severity: SeverityInfo},
	})

	infos := engine.RulesInfo()
	require.Len(t, infos, 3)
	assert.Equal(t, "first", infos[0].Name)
	assert.Equal(t, "second", infos[1].Name)
	assert.Equal(t, "third", infos[2].Name)
	assert.Equal(t, SeverityWarning, infos[1].Severity)
}

func TestSimulateCheck(t *testing.T) {
	writeOnly := &stubRule{
		name:      "write-only",
		severity:  SeverityError,
		appliesTo: []intent.Type{intent.TypeWriteTextFile},
		result:    NewFailResult("write problem"),
	}
	engine := NewEngine([]Rule{writeOnly})

	// AppliesTo is ignored for simulation
	outcome, err := engine.SimulateCheck(context.Background(), "write-only", testPlan(intent.TypeOpenApp), nil)
	require.NoError(t, err)
	assert.Equal(t, "write-only", outcome.RuleName)
	assert.False(t, outcome.Result.Passed)

	_, err = engine.SimulateCheck(context.Background(), "missing", testPlan(intent.TypeOpenApp), nil)
	require.Error(t, err)
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityInfo.Rank(), SeverityWarning.Rank())
	assert.Less(t, SeverityWarning.Rank(), SeverityError.Rank())
	assert.Less(t, SeverityError.Rank(), SeverityCritical.Rank())
	assert.Equal(t, -1, Severity("bogus").Rank())
}
