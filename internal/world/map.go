package world

import (
	"errors"
	"fmt"
	"math"

	"raycaster/internal/geometry"
)

// DefaultCellSize is the edge length of a cell in world units.
const DefaultCellSize = 64

var (
	// ErrInvalidMap is returned for empty, ragged or mis-sized grids.
	ErrInvalidMap = errors.New("invalid map")
)

// CellCoord addresses a cell by column (X) and row (Y).
type CellCoord struct {
	X, Y int
}

// Map is a rectangular grid of cells addressed [row][col], i.e. cells[y][x].
// Width is the number of columns and Height the number of rows.
type Map struct {
	cells    [][]Cell
	cellSize int

	playerStart    geometry.Vec2
	playerStartDir geometry.Vec2

	fullWidth  float64
	fullHeight float64
}

// NewMap builds a map over cells, which is used as is (not copied).
// A non-positive cellSize selects DefaultCellSize.
func NewMap(cells [][]Cell, cellSize int) *Map {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	m := &Map{
		cells:          cells,
		cellSize:       cellSize,
		playerStartDir: geometry.V(0, 1),
	}
	m.updateSize()
	return m
}

// NewEmptyMap returns a width x height map of empty cells.
func NewEmptyMap(width, height, cellSize int) (*Map, error) {
	m := NewMap(nil, cellSize)
	if err := m.Reset(width, height); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map) updateSize() {
	m.fullWidth = float64(m.Width() * m.cellSize)
	m.fullHeight = float64(m.Height() * m.cellSize)
}

// Width returns the number of columns, taken from the first row.
func (m *Map) Width() int {
	if len(m.cells) == 0 {
		return 0
	}
	return len(m.cells[0])
}

// Height returns the number of rows.
func (m *Map) Height() int {
	return len(m.cells)
}

func (m *Map) CellSize() int { return m.cellSize }

// SetCellSize changes the cell edge length. Non-positive sizes are rejected.
func (m *Map) SetCellSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: cell size %d", ErrInvalidMap, size)
	}
	m.cellSize = size
	m.updateSize()
	return nil
}

// FullWidth is the map extent along X in world units.
func (m *Map) FullWidth() float64 { return m.fullWidth }

// FullHeight is the map extent along Y in world units.
func (m *Map) FullHeight() float64 { return m.fullHeight }

// IsValid reports whether the grid is non-empty and rectangular.
func (m *Map) IsValid() bool {
	if len(m.cells) == 0 {
		return false
	}
	w := len(m.cells[0])
	if w == 0 {
		return false
	}
	for _, row := range m.cells {
		if len(row) != w {
			return false
		}
	}
	return m.cellSize > 0
}

// SetCells replaces the whole grid.
func (m *Map) SetCells(cells [][]Cell) {
	m.cells = cells
	m.updateSize()
}

// Cells returns a deep copy of the grid.
func (m *Map) Cells() [][]Cell {
	out := make([][]Cell, len(m.cells))
	for y, row := range m.cells {
		out[y] = append([]Cell(nil), row...)
	}
	return out
}

// Reset reinitialises the map to width x height empty cells and resets the
// player start to the origin facing +Y.
func (m *Map) Reset(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidMap, width, height)
	}
	cells := make([][]Cell, height)
	for y := range cells {
		row := make([]Cell, width)
		for x := range row {
			row[x] = EmptyCell
		}
		cells[y] = row
	}
	m.cells = cells
	m.playerStart = geometry.Vec2{}
	m.playerStartDir = geometry.V(0, 1)
	m.updateSize()
	return nil
}

// PlayerStart returns the spawn position and facing direction stored with the map.
func (m *Map) PlayerStart() (pos, dir geometry.Vec2) {
	return m.playerStart, m.playerStartDir
}

func (m *Map) SetPlayerStart(pos, dir geometry.Vec2) {
	m.playerStart = pos
	m.playerStartDir = dir
}

// At returns the cell at c. ok is false when c is outside the grid.
func (m *Map) At(c CellCoord) (cell Cell, ok bool) {
	if !m.IsInGrid(c) {
		return Cell{}, false
	}
	return m.cells[c.Y][c.X], true
}

// Set replaces the cell at c.
func (m *Map) Set(c CellCoord, cell Cell) error {
	if !m.IsInGrid(c) {
		return fmt.Errorf("cell %d,%d outside %dx%d map", c.X, c.Y, m.Width(), m.Height())
	}
	m.cells[c.Y][c.X] = cell
	return nil
}

// WorldToCell returns the cell containing p. Negative and non-finite
// coordinates are outside the map and yield ok=false.
func (m *Map) WorldToCell(p geometry.Vec2) (CellCoord, bool) {
	if !(p.X >= 0 && p.Y >= 0) || math.IsInf(p.X, 1) || math.IsInf(p.Y, 1) {
		return CellCoord{}, false
	}
	cs := float64(m.cellSize)
	return CellCoord{X: int(p.X / cs), Y: int(p.Y / cs)}, true
}

// CellOrigin returns the world position of the top-left corner of c.
func (m *Map) CellOrigin(c CellCoord) geometry.Vec2 {
	cs := float64(m.cellSize)
	return geometry.V(float64(c.X)*cs, float64(c.Y)*cs)
}

// CellCenter returns the world position of the centre of c.
func (m *Map) CellCenter(c CellCoord) geometry.Vec2 {
	half := float64(m.cellSize) / 2
	return m.CellOrigin(c).Add(geometry.V(half, half))
}

// IsInWorld reports whether p lies within the world extents, edges included.
func (m *Map) IsInWorld(p geometry.Vec2) bool {
	return p.X >= 0 && p.X <= m.fullWidth && p.Y >= 0 && p.Y <= m.fullHeight
}

// IsInGrid reports whether c addresses an existing cell.
func (m *Map) IsInGrid(c CellCoord) bool {
	return c.X >= 0 && c.Y >= 0 && c.Y < len(m.cells) && c.X < len(m.cells[c.Y])
}

// IsPassableCell is false outside the grid.
func (m *Map) IsPassableCell(c CellCoord) bool {
	return m.IsInGrid(c) && m.cells[c.Y][c.X].Passable
}

// IsVisibleCell is false outside the grid.
func (m *Map) IsVisibleCell(c CellCoord) bool {
	return m.IsInGrid(c) && m.cells[c.Y][c.X].Visible
}

// IsPassableAt reports whether the cell under world point p is passable.
// Points outside the world are never passable.
func (m *Map) IsPassableAt(p geometry.Vec2) bool {
	if !m.IsInWorld(p) {
		return false
	}
	c, ok := m.WorldToCell(p)
	return ok && m.IsPassableCell(c)
}

// IsVisibleAt reports whether rays continue through the cell under p.
// Points outside the world are never visible.
func (m *Map) IsVisibleAt(p geometry.Vec2) bool {
	if !m.IsInWorld(p) {
		return false
	}
	c, ok := m.WorldToCell(p)
	return ok && m.IsVisibleCell(c)
}
