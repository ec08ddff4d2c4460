package player

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"raycaster/internal/geometry"
)

func assertVec(t *testing.T, want, got geometry.Vec2) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5, "x of %v", got)
	assert.InDelta(t, want.Y, got.Y, 1e-5, "y of %v", got)
}

func TestPlayer_Defaults(t *testing.T) {
	p := New()
	assert.Equal(t, geometry.V(0, 0), p.Position())
	assert.Equal(t, geometry.V(1, 0), p.Direction())
}

func TestPlayer_SetDirection(t *testing.T) {
	p := New()
	p.SetDirection(geometry.V(5, 10))
	assertVec(t, geometry.V(0.447214, 0.894427), p.Direction())

	p.SetDirection(geometry.Vec2{})
	assertVec(t, geometry.V(0.447214, 0.894427), p.Direction())

	// Already unit length within tolerance: kept as given.
	nearly := geometry.V(0, 1.00001)
	p.SetDirection(nearly)
	assert.Equal(t, nearly, p.Direction())
}

func TestPlayer_Movement(t *testing.T) {
	p := New()
	p.Walk(50)
	assertVec(t, geometry.V(50, 0), p.Position())

	p.Rotate(geometry.Degrees(-90))
	assertVec(t, geometry.V(0, -1), p.Direction())
	p.Walk(50)
	assertVec(t, geometry.V(50, -50), p.Position())

	p.Rotate(geometry.Degrees(-90))
	p.Walk(50)
	assertVec(t, geometry.V(0, -50), p.Position())

	p.Move(geometry.V(0, 50))
	assertVec(t, geometry.V(0, 0), p.Position())
}

func TestPlayer_Right(t *testing.T) {
	p := NewAt(geometry.V(3, 4), geometry.V(0, -2))
	assertVec(t, geometry.V(3, 4), p.Position())
	assertVec(t, geometry.V(1, 0), p.Right())
	assertVec(t, geometry.V(0, 5), p.Step(-5))
}
