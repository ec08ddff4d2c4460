package world

import "raycaster/internal/geometry"

// baseMapLayout is the built-in demo room: '#' wall, '.' floor.
var baseMapLayout = [...]string{
	"########",
	"#.#....#",
	"#.#....#",
	"#......#",
	"#......#",
	"#....#.#",
	"#......#",
	"########",
}

const baseMapWallTexture = 10

// ConstructBaseMap returns the cells of the built-in demo room.
func ConstructBaseMap() [][]Cell {
	cells := make([][]Cell, len(baseMapLayout))
	for y, line := range baseMapLayout {
		row := make([]Cell, len(line))
		for x, ch := range line {
			if ch == '#' {
				row[x] = WallCell(baseMapWallTexture)
			} else {
				row[x] = EmptyCell
			}
		}
		cells[y] = row
	}
	return cells
}

// NewBaseMap returns the demo room with its player start, used when no map
// file is configured.
func NewBaseMap() *Map {
	m := NewMap(ConstructBaseMap(), DefaultCellSize)
	m.SetPlayerStart(geometry.V(245, 125), geometry.V(0, -1))
	return m
}
