package world

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell_PackRoundTrip(t *testing.T) {
	for _, passable := range []bool{false, true} {
		for _, visible := range []bool{false, true} {
			for tex := uint8(0); tex <= MaxTextureID; tex++ {
				c := Cell{Passable: passable, Visible: visible, TextureID: tex}
				assert.Equal(t, c, UnpackCell(c.Pack()))
			}
		}
	}
}

func TestCell_PackBits(t *testing.T) {
	assert.Equal(t, uint8(0xC0), EmptyCell.Pack())
	assert.Equal(t, uint8(0x05), WallCell(5).Pack())
	assert.Equal(t, uint8(0xBF), Cell{Passable: true, TextureID: 63}.Pack())
	assert.Equal(t, Cell{Passable: true, TextureID: 1}, UnpackCell(0x81))
}

func TestCell_Legacy(t *testing.T) {
	assert.Equal(t, EmptyCell, CellFromLegacy(0))
	assert.Equal(t, Cell{TextureID: 7}, CellFromLegacy(7))
	assert.True(t, CellFromLegacy(7).IsWall())
	assert.False(t, CellFromLegacy(0).IsWall())
	// Only six bits of texture survive.
	assert.Equal(t, uint8(1), CellFromLegacy(65).TextureID)

	assert.Equal(t, 0, EmptyCell.Legacy())
	assert.Equal(t, 7, WallCell(7).Legacy())
	assert.Equal(t, 1, WallCell(0).Legacy())
}

func TestCell_Palette(t *testing.T) {
	assert.Equal(t, color.RGBA{255, 0, 255, 255}, WallCell(0).MapColor())
	assert.Equal(t, color.RGBA{0x19, 0x19, 0x8c, 255}, WallCell(4).MapColor())
	assert.Equal(t, color.RGBA{0x64, 0x32, 0x08, 255}, WallCell(7).MapColor())
	assert.Equal(t, WallCell(7).MapColor(), WallCell(40).MapColor())

	assert.Equal(t, color.RGBA{0, 0, 0, 255}, WallCell(1).RayColor())
	assert.Equal(t, color.RGBA{0x80, 0x80, 0x80, 255}, WallCell(2).RayColor())
	assert.Equal(t, WallCell(7).RayColor(), WallCell(10).RayColor())
}
