package world

import "sync/atomic"

// TouchedSet records which cells the latest cast sweep crossed. It is kept
// apart from the grid so that casting never mutates map data, and every
// operation is safe for concurrent use.
type TouchedSet struct {
	width, height int
	flags         []atomic.Bool
	count         atomic.Int64
}

// NewTouchedSet returns an empty set sized for a width x height grid.
func NewTouchedSet(width, height int) *TouchedSet {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &TouchedSet{
		width:  width,
		height: height,
		flags:  make([]atomic.Bool, width*height),
	}
}

// NewTouchedSetFor returns an empty set sized for m.
func NewTouchedSetFor(m *Map) *TouchedSet {
	return NewTouchedSet(m.Width(), m.Height())
}

// Fits reports whether the set was sized for m.
func (t *TouchedSet) Fits(m *Map) bool {
	return t.width == m.Width() && t.height == m.Height()
}

func (t *TouchedSet) index(c CellCoord) (int, bool) {
	if c.X < 0 || c.Y < 0 || c.X >= t.width || c.Y >= t.height {
		return 0, false
	}
	return c.Y*t.width + c.X, true
}

// Mark flags c. Cells outside the set are ignored.
func (t *TouchedSet) Mark(c CellCoord) {
	if i, ok := t.index(c); ok {
		if !t.flags[i].Swap(true) {
			t.count.Add(1)
		}
	}
}

// IsTouched reports whether c was marked since the last Clear.
func (t *TouchedSet) IsTouched(c CellCoord) bool {
	i, ok := t.index(c)
	return ok && t.flags[i].Load()
}

// Count returns the number of distinct marked cells.
func (t *TouchedSet) Count() int {
	return int(t.count.Load())
}

// Clear unmarks every cell. It must not run concurrently with Mark.
func (t *TouchedSet) Clear() {
	for i := range t.flags {
		t.flags[i].Store(false)
	}
	t.count.Store(0)
}
