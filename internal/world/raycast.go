package world

import (
	"math"

	"raycaster/internal/geometry"
	"raycaster/internal/mathutil"
)

const (
	// gridEpsilon pushes a gridline crossing into the cell beyond the line.
	gridEpsilon = 0.001
	// parallelThreshold below which a direction component never reaches the next gridline.
	parallelThreshold = 0.001
	// skippedFamily marks a family that was not evaluated.
	skippedFamily = -1
)

// RayCastResult describes the first wall struck by a ray.
type RayCastResult struct {
	// Distance is the Euclidean distance from the origin to WallPoint.
	// No view-angle correction is applied.
	Distance float64
	// WallPoint lies just past the struck gridline, inside the wall cell.
	WallPoint geometry.Vec2
	// HitVertical is true when the wall face lies on a vertical (x = const) gridline.
	HitVertical bool
	// HitXRatio is the position along the struck face in [0,1], oriented so
	// that textures are not mirrored between opposite faces.
	HitXRatio float64
	// Hit is false when the ray left the map without striking a wall.
	Hit bool
}

// Cell returns the cell containing the wall point.
func (r RayCastResult) Cell(m *Map) (CellCoord, bool) {
	return m.WorldToCell(r.WallPoint)
}

// familyHit is the outcome of stepping along one gridline family.
type familyHit struct {
	point  geometry.Vec2
	distSQ float64 // skippedFamily when the family was not evaluated
	hit    bool
}

// CastRay traces a ray from origin along dir and returns the first wall struck.
//
// origin must lie strictly inside a valid map and dir must be a unit vector;
// neither precondition is checked.
func (m *Map) CastRay(origin, dir geometry.Vec2) RayCastResult {
	cell, _ := m.WorldToCell(origin)
	vertical := m.castVertical(origin, dir, cell)
	horizontal := m.castHorizontal(origin, dir, cell)

	switch {
	case vertical.distSQ < 0 && horizontal.distSQ < 0:
		// Zero-length direction.
		return RayCastResult{WallPoint: origin}
	case vertical.distSQ < 0:
		return m.result(origin, dir, horizontal, false)
	case horizontal.distSQ < 0:
		return m.result(origin, dir, vertical, true)
	case vertical.hit != horizontal.hit:
		// A family that left the map never beats one that struck a wall.
		if vertical.hit {
			return m.result(origin, dir, vertical, true)
		}
		return m.result(origin, dir, horizontal, false)
	case horizontal.distSQ < vertical.distSQ:
		return m.result(origin, dir, horizontal, false)
	default:
		return m.result(origin, dir, vertical, true)
	}
}

// castVertical steps across the x = k*cellSize gridlines.
func (m *Map) castVertical(origin, dir geometry.Vec2, cell CellCoord) familyHit {
	cs := float64(m.cellSize)
	var p, step geometry.Vec2
	switch {
	case dir.X > parallelThreshold:
		step.X = cs
		p.X = cs*float64(cell.X+1) + gridEpsilon
	case dir.X < -parallelThreshold:
		step.X = -cs
		p.X = cs*float64(cell.X) - gridEpsilon
	default:
		return familyHit{point: origin, distSQ: skippedFamily}
	}
	slope := dir.Y / dir.X
	step.Y = step.X * slope
	p.Y = origin.Y + slope*(p.X-origin.X)

	for m.IsVisibleAt(p) {
		p = p.Add(step)
	}
	return m.closeFamily(origin, p)
}

// castHorizontal steps across the y = k*cellSize gridlines.
func (m *Map) castHorizontal(origin, dir geometry.Vec2, cell CellCoord) familyHit {
	cs := float64(m.cellSize)
	var p, step geometry.Vec2
	switch {
	case dir.Y > parallelThreshold:
		step.Y = cs
		p.Y = cs*float64(cell.Y+1) + gridEpsilon
	case dir.Y < -parallelThreshold:
		step.Y = -cs
		p.Y = cs*float64(cell.Y) - gridEpsilon
	default:
		return familyHit{point: origin, distSQ: skippedFamily}
	}
	slope := dir.X / dir.Y
	step.X = step.Y * slope
	p.X = origin.X + slope*(p.Y-origin.Y)

	for m.IsVisibleAt(p) {
		p = p.Add(step)
	}
	return m.closeFamily(origin, p)
}

// closeFamily classifies the point where stepping stopped: inside the grid it
// is a wall, anywhere else the ray left the map.
func (m *Map) closeFamily(origin, p geometry.Vec2) familyHit {
	c, ok := m.WorldToCell(p)
	return familyHit{
		point:  p,
		distSQ: p.Sub(origin).LengthSQ(),
		hit:    ok && m.IsInWorld(p) && m.IsInGrid(c),
	}
}

func (m *Map) result(origin, dir geometry.Vec2, f familyHit, vertical bool) RayCastResult {
	return RayCastResult{
		Distance:    math.Sqrt(f.distSQ),
		WallPoint:   f.point,
		HitVertical: vertical,
		HitXRatio:   m.hitRatio(f.point, dir, vertical),
		Hit:         f.hit,
	}
}

// hitRatio returns the offset of p along the struck face, normalized by the cell size.
func (m *Map) hitRatio(p, dir geometry.Vec2, vertical bool) float64 {
	cs := float64(m.cellSize)
	var offset float64
	if vertical {
		offset = math.Mod(p.Y, cs)
		if dir.X < 0 {
			offset = cs - offset
		}
	} else {
		offset = math.Mod(p.X, cs)
		if dir.Y > 0 {
			offset = cs - offset
		}
	}
	if offset < 0 {
		offset += cs
	}
	return mathutil.Clamp(offset/cs, 0, 1)
}

// CastRayTouched casts like CastRay and marks every cell crossed between the
// origin and the wall point in touched, the struck cell included.
func (m *Map) CastRayTouched(origin, dir geometry.Vec2, touched *TouchedSet) RayCastResult {
	res := m.CastRay(origin, dir)
	if touched != nil {
		m.Traverse(origin, res.WallPoint, touched.Mark)
	}
	return res
}

// Traverse visits, in order, every grid cell crossed by the segment from
// a to b. Cells outside the grid are skipped.
func (m *Map) Traverse(a, b geometry.Vec2, visit func(CellCoord)) {
	cs := float64(m.cellSize)
	cx, cy := int(math.Floor(a.X/cs)), int(math.Floor(a.Y/cs))
	ex, ey := int(math.Floor(b.X/cs)), int(math.Floor(b.Y/cs))
	d := b.Sub(a)

	stepX, tMaxX, tDeltaX := traverseAxis(a.X, d.X, cs, cx)
	stepY, tMaxY, tDeltaY := traverseAxis(a.Y, d.Y, cs, cy)

	n := mathutil.IntAbs(ex-cx) + mathutil.IntAbs(ey-cy)
	c := CellCoord{cx, cy}
	if m.IsInGrid(c) {
		visit(c)
	}
	for i := 0; i < n; i++ {
		if tMaxX < tMaxY {
			c.X += stepX
			tMaxX += tDeltaX
		} else {
			c.Y += stepY
			tMaxY += tDeltaY
		}
		if m.IsInGrid(c) {
			visit(c)
		}
	}
}

// traverseAxis returns the step sign, the parametric distance to the first
// gridline and the parametric distance between gridlines along one axis.
func traverseAxis(start, delta, cs float64, cell int) (step int, tMax, tDelta float64) {
	switch {
	case delta > 0:
		return 1, (float64(cell+1)*cs - start) / delta, cs / delta
	case delta < 0:
		return -1, (float64(cell)*cs - start) / delta, -cs / delta
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}
