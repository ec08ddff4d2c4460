package world

import "image/color"

// Cell is one grid square of the map.
//
// A cell that is not Passable is drawn with the colour or texture selected by
// TextureID; the TextureID of a passable cell is ignored by wall rendering.
type Cell struct {
	Passable  bool  // an actor may stand in the cell
	Visible   bool  // rays continue through the cell
	TextureID uint8 // 0..MaxTextureID
}

const (
	cellPassableBit = 1 << 7
	cellVisibleBit  = 1 << 6
	textureIDMask   = 0x3f

	// MaxTextureID is the largest texture id that fits in a packed cell.
	MaxTextureID = textureIDMask
)

// EmptyCell is the default floor cell: passable, see-through, texture 0.
var EmptyCell = Cell{Passable: true, Visible: true}

// WallCell returns an opaque, blocking cell using texture tex.
func WallCell(tex uint8) Cell {
	return Cell{TextureID: tex & textureIDMask}
}

// Pack encodes the cell in one byte: bit7 passable, bit6 visible, bits0-5 texture id.
func (c Cell) Pack() uint8 {
	b := c.TextureID & textureIDMask
	if c.Passable {
		b |= cellPassableBit
	}
	if c.Visible {
		b |= cellVisibleBit
	}
	return b
}

// UnpackCell decodes a byte produced by Pack.
func UnpackCell(b uint8) Cell {
	return Cell{
		Passable:  b&cellPassableBit != 0,
		Visible:   b&cellVisibleBit != 0,
		TextureID: b & textureIDMask,
	}
}

// CellFromLegacy decodes a version 1 map value: 0 is an empty floor cell,
// any other value N is a wall using texture N.
func CellFromLegacy(v int) Cell {
	if v == 0 {
		return EmptyCell
	}
	return WallCell(uint8(v))
}

// Legacy returns the version 1 value of the cell. Passable cells become 0,
// anything else its texture id (at least 1, so the cell stays a wall).
func (c Cell) Legacy() int {
	if c.Passable {
		return 0
	}
	return max(int(c.TextureID), 1)
}

// IsWall reports whether the cell blocks movement.
func (c Cell) IsWall() bool {
	return !c.Passable
}

var mapColors = [...]color.RGBA{
	{255, 0, 255, 255},
	{255, 0, 255, 255},
	{0x60, 0x60, 0x60, 255},
	{0x40, 0x40, 0x40, 255},
	{0x19, 0x19, 0x8c, 255},
	{0x0a, 0x0a, 0x64, 255},
	{0x80, 0x40, 0x10, 255},
	{0x64, 0x32, 0x08, 255},
}

var rayColors = [...]color.RGBA{
	{0, 0, 0, 255},
	{0, 0, 0, 255},
	{0x80, 0x80, 0x80, 255},
	{0x70, 0x70, 0x70, 255},
	{0x39, 0x39, 0xbc, 255},
	{0x3a, 0x3a, 0x94, 255},
	{0xb0, 0x70, 0x40, 255},
	{0x94, 0x62, 0x38, 255},
}

// MapColor returns the colour used for the cell on the top-down overlay.
// Texture ids past the palette reuse its last entry.
func (c Cell) MapColor() color.RGBA {
	return mapColors[min(int(c.TextureID), len(mapColors)-1)]
}

// RayColor returns the flat colour used for untextured wall columns.
func (c Cell) RayColor() color.RGBA {
	return rayColors[min(int(c.TextureID), len(rayColors)-1)]
}
