package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsValid(t *testing.T) {
	id := NewID()
	require.NoError(t, id.Validate())
	assert.False(t, id.IsZero())

	other := NewID()
	assert.NotEqual(t, id, other)
}

func TestParseID(t *testing.T) {
	id := NewID()
	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("")
	assert.Error(t, err)

	_, err = ParseID("not-a-uuid")
	assert.Error(t, err)
}

func TestIDJSON(t *testing.T) {
	id := NewID()

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%q", id.String()), string(data))

	var decoded ID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)

	var zero ID
	data, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var bad ID
	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &bad))
}

func TestAgentErrorFormatting(t *testing.T) {
	err := NewError(PLAN_VALIDATION_FAILED, "missing slot")
	assert.Equal(t, "[PLAN_VALIDATION_FAILED] missing slot", err.Error())

	cause := errors.New("disk full")
	wrapped := WrapError(CONFIG_LOAD_FAILED, "cannot read config", cause)
	assert.Equal(t, "[CONFIG_LOAD_FAILED] cannot read config: disk full", wrapped.Error())
	assert.Equal(t, cause, errors.Unwrap(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
}

func TestAgentErrorIsMatchesByCode(t *testing.T) {
	err := NewError(SESSION_NOT_FOUND, "session abc not found")

	assert.True(t, errors.Is(err, NewError(SESSION_NOT_FOUND, "")))
	assert.False(t, errors.Is(err, NewError(PLAN_VALIDATION_FAILED, "")))
	assert.False(t, errors.Is(err, errors.New("session abc not found")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewRetryableError(SKILL_TIMEOUT, "transient")))
	assert.False(t, IsRetryable(NewError(SKILL_EXECUTION_FAILED, "permanent")))

	wrapped := fmt.Errorf("outer: %w", NewError(CONFIG_LOAD_FAILED, "inner"))
	assert.False(t, IsRetryable(wrapped))

	assert.True(t, IsRetryable(errors.New("unclassified")))
}
