package geometry

// Line is a segment between two points.
type Line struct {
	P1, P2 Vec2
}

// NewLine builds a segment from two end points.
func NewLine(p1, p2 Vec2) Line {
	return Line{P1: p1, P2: p2}
}

// Ray builds the segment that starts at origin and runs length units along dir.
// dir is not normalized, so a non-unit dir scales the result.
func Ray(origin, dir Vec2, length float64) Line {
	return Line{P1: origin, P2: origin.Add(dir.Mul(length))}
}

func (l Line) Length() float64 {
	return l.P1.DistanceTo(l.P2)
}

// Point returns P1 for idx 0 and P2 otherwise.
func (l Line) Point(idx int) Vec2 {
	if idx == 0 {
		return l.P1
	}
	return l.P2
}

// Quad is a four-vertex polygon given in drawing order.
type Quad [4]Vec2

// NewQuad builds a quad from its four corners in drawing order.
func NewQuad(p1, p2, p3, p4 Vec2) Quad {
	return Quad{p1, p2, p3, p4}
}

// Rect returns the axis-aligned quad with top-left corner (x, y).
func Rect(x, y, w, h float64) Quad {
	return Quad{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
}

// Bounds returns the axis-aligned box enclosing the quad.
func (q Quad) Bounds() Box {
	b := Box{Min: q[0], Max: q[0]}
	for _, p := range q[1:] {
		b.Min.X = min(b.Min.X, p.X)
		b.Min.Y = min(b.Min.Y, p.Y)
		b.Max.X = max(b.Max.X, p.X)
		b.Max.Y = max(b.Max.Y, p.Y)
	}
	return b
}

// Box is an axis-aligned rectangle with Min the top-left and Max the bottom-right corner.
type Box struct {
	Min, Max Vec2
}

// IsValid reports whether the box has a strictly positive extent on both axes.
func (b Box) IsValid() bool {
	return b.Min.X < b.Max.X && b.Min.Y < b.Max.Y
}

func (b Box) Width() float64  { return b.Max.X - b.Min.X }
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }

// Area returns the surface of a valid box and 0 otherwise.
func (b Box) Area() float64 {
	if !b.IsValid() {
		return 0
	}
	return b.Width() * b.Height()
}

func (b Box) Center() Vec2 {
	return Vec2{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2}
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Vec2) bool {
	return b.Min.X <= p.X && p.X <= b.Max.X && b.Min.Y <= p.Y && p.Y <= b.Max.Y
}

// ContainsBox reports whether o lies entirely inside b.
func (b Box) ContainsBox(o Box) bool {
	return b.Contains(o.Min) && b.Contains(o.Max)
}

// Intersects reports whether the two boxes overlap, touching edges included.
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X && b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

// Quad returns the box corners clockwise from the top-left one.
func (b Box) Quad() Quad {
	return Rect(b.Min.X, b.Min.Y, b.Width(), b.Height())
}
