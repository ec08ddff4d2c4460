package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction_Names(t *testing.T) {
	for _, a := range Actions() {
		parsed, ok := ParseAction(a.String())
		require.True(t, ok, a.String())
		assert.Equal(t, a, parsed)
	}
	a, ok := ParseAction(" Toggle_Map ")
	assert.True(t, ok)
	assert.Equal(t, ToggleMap, a)

	_, ok = ParseAction("jump")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Action(99).String())
	assert.True(t, Forward.IsContinuous())
	assert.False(t, ToggleRays.IsContinuous())
}

func TestBindings(t *testing.T) {
	b, err := BindingsFromConfig(map[string]string{"forward": "ArrowUp", "exit": "X"})
	require.NoError(t, err)
	assert.Equal(t, Forward, b.ActionForKey("ArrowUp"))
	assert.Equal(t, ActionNone, b.ActionForKey("W"))
	assert.Equal(t, Exit, b.ActionForKey("X"))
	assert.Len(t, b.Keys(), len(Actions()))

	_, err = BindingsFromConfig(map[string]string{"fly": "F"})
	assert.Error(t, err)
}

func TestTracker_Poll(t *testing.T) {
	tr := NewTracker(DefaultBindings())
	held := map[string]bool{}
	pressed := func(k string) bool { return held[k] }

	assert.Empty(t, tr.Poll(pressed))

	held["W"] = true
	held["Tab"] = true
	assert.Equal(t, []Action{Forward, ToggleMap}, tr.Poll(pressed))
	// Held toggle does not repeat, held movement does.
	assert.Equal(t, []Action{Forward}, tr.Poll(pressed))

	held["Tab"] = false
	held["W"] = false
	assert.Empty(t, tr.Poll(pressed))

	held["Tab"] = true
	assert.Equal(t, []Action{ToggleMap}, tr.Poll(pressed))
}
