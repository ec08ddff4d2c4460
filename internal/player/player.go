package player

import (
	"math"

	"raycaster/internal/geometry"
)

// directionTolerance is how far |dir|² may drift from 1 before SetDirection renormalises.
const directionTolerance = 1e-4

// Player is the viewer pose: a world position and a unit facing direction.
type Player struct {
	position  geometry.Vec2
	direction geometry.Vec2
}

// New returns a player at the origin facing +X.
func New() *Player {
	return &Player{direction: geometry.V(1, 0)}
}

// NewAt returns a player at pos facing dir. dir is normalised.
func NewAt(pos, dir geometry.Vec2) *Player {
	p := New()
	p.SetPosition(pos)
	p.SetDirection(dir)
	return p
}

// Position returns the player's current position
func (p *Player) Position() geometry.Vec2 {
	return p.position
}

// SetPosition sets the player's position
func (p *Player) SetPosition(pos geometry.Vec2) {
	p.position = pos
}

// Direction returns the facing direction as a unit vector
func (p *Player) Direction() geometry.Vec2 {
	return p.direction
}

// SetDirection sets the facing direction, renormalising when it is not
// already unit length. A zero vector is ignored.
func (p *Player) SetDirection(dir geometry.Vec2) {
	if dir.IsZero() {
		return
	}
	if math.Abs(dir.LengthSQ()-1) > directionTolerance {
		dir = dir.Normalized()
	}
	p.direction = dir
}

// Right returns the unit vector 90 degrees clockwise from the facing direction
// in screen space (Y down).
func (p *Player) Right() geometry.Vec2 {
	return geometry.V(-p.direction.Y, p.direction.X)
}

// Rotate turns the facing direction by angle.
func (p *Player) Rotate(angle geometry.Angle) {
	p.SetDirection(p.direction.Rotated(angle))
}

// Move adds delta to the position unconditionally. Callers clamp delta
// against the map first, see world.Map.PossibleMove.
func (p *Player) Move(delta geometry.Vec2) {
	p.position = p.position.Add(delta)
}

// Step returns the displacement of walking step units along the facing
// direction; negative steps walk backwards.
func (p *Player) Step(step float64) geometry.Vec2 {
	return p.direction.Mul(step)
}

// Walk moves step units along the facing direction.
func (p *Player) Walk(step float64) {
	p.Move(p.Step(step))
}
