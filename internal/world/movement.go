package world

import "raycaster/internal/geometry"

// PossibleMove returns the part of delta an actor at start may actually
// travel. The full move is tried first, then sliding along X alone, then
// along Y alone; if all three land outside passable cells the result is zero.
func (m *Map) PossibleMove(start, delta geometry.Vec2) geometry.Vec2 {
	if m.IsPassableAt(start.Add(delta)) {
		return delta
	}
	if slideX := geometry.V(delta.X, 0); m.IsPassableAt(start.Add(slideX)) {
		return slideX
	}
	if slideY := geometry.V(0, delta.Y); m.IsPassableAt(start.Add(slideY)) {
		return slideY
	}
	return geometry.Vec2{}
}
