package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raycaster/internal/geometry"
	"raycaster/internal/input"
)

func TestNullBackend_Lifecycle(t *testing.T) {
	b := NewNullBackend(DefaultSettings(), 3)
	assert.Equal(t, Uninitialized, b.Status())
	assert.Equal(t, TypeNull, b.Type())
	assert.ErrorIs(t, b.Run(), ErrNotReady)

	// Draw calls outside Run are dropped.
	b.DrawPoint(geometry.V(1, 1), 2, color.RGBA{})
	assert.Equal(t, int64(0), b.DrawCalls())

	require.NoError(t, b.Init())
	assert.Equal(t, Ready, b.Status())

	frames := 0
	b.SetDrawCallback(func() {
		frames++
		assert.Equal(t, Running, b.Status())
		b.DrawQuad(geometry.Rect(0, 0, 10, 10), color.RGBA{})
		b.DrawTexturedColumn(5, 0, 10, nil, 0, true)
	})
	require.NoError(t, b.Run())
	assert.Equal(t, 3, frames)
	assert.Equal(t, int64(6), b.DrawCalls())
	assert.Equal(t, Ready, b.Status())
}

func TestNullBackend_Actions(t *testing.T) {
	b := NewNullBackend(DefaultSettings(), 0)
	var got []input.Action
	b.Send(input.Forward) // no callback yet
	b.SetActionCallback(func(a input.Action) { got = append(got, a) })
	b.Send(input.ToggleMap)
	assert.Equal(t, []input.Action{input.ToggleMap}, got)
}

func TestSettingsAndTypes(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 1024.0, s.Bounds().Width())
	assert.Equal(t, 512.0, s.Bounds().Height())

	assert.Equal(t, TypeEbiten, ParseBackendType("ebiten"))
	assert.Equal(t, TypeNull, ParseBackendType(TypeNull.String()))
	assert.Equal(t, TypeUnknown, ParseBackendType("opengl"))
	assert.Equal(t, "bad initialization", BadInitialization.String())

	assert.Equal(t, color.RGBA{70, 140, 0, 200}, Shade(color.RGBA{100, 200, 0, 200}))
}
