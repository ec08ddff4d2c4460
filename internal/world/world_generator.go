package world

import (
	"fmt"

	"github.com/aquilax/go-perlin"

	"raycaster/internal/geometry"
	"raycaster/internal/mathutil"
)

// GeneratorOptions drives GenerateMap.
type GeneratorOptions struct {
	Width, Height int
	CellSize      int
	Seed          int64
	// Threshold in [0,1]: noise values above it become pillars. Higher is emptier.
	Threshold float64
	// Scale is the noise frequency per cell.
	Scale float64
	// BorderTexture and PillarTexture select the wall textures.
	BorderTexture uint8
	PillarTexture uint8
}

// DefaultGeneratorOptions returns settings that produce a readable 16x16 room.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Width:         16,
		Height:        16,
		CellSize:      DefaultCellSize,
		Seed:          1,
		Threshold:     0.62,
		Scale:         0.35,
		BorderTexture: 2,
		PillarTexture: 4,
	}
}

// GenerateMap builds a walled room with Perlin-noise pillars. The player
// starts in the centre cell facing +X, and that cell with its neighbours is
// kept clear. The same options always give the same map.
func GenerateMap(opts GeneratorOptions) (*Map, error) {
	if opts.Width < 3 || opts.Height < 3 {
		return nil, fmt.Errorf("%w: generated map must be at least 3x3, got %dx%d",
			ErrInvalidMap, opts.Width, opts.Height)
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultGeneratorOptions().Scale
	}

	m, err := NewEmptyMap(opts.Width, opts.Height, opts.CellSize)
	if err != nil {
		return nil, err
	}

	// alpha 2, beta 2, 3 octaves, as used for terrain noise elsewhere
	noise := perlin.NewPerlin(2, 2, 3, opts.Seed)
	start := CellCoord{X: opts.Width / 2, Y: opts.Height / 2}

	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			c := CellCoord{X: x, Y: y}
			switch {
			case x == 0 || y == 0 || x == opts.Width-1 || y == opts.Height-1:
				m.cells[y][x] = WallCell(opts.BorderTexture)
			case mathutil.IntAbs(x-start.X) <= 1 && mathutil.IntAbs(y-start.Y) <= 1:
				m.cells[y][x] = EmptyCell
			default:
				// Noise2D is roughly in [-1,1]; bring it to [0,1].
				v := (noise.Noise2D(float64(c.X)*opts.Scale, float64(c.Y)*opts.Scale) + 1) / 2
				if v > opts.Threshold {
					m.cells[y][x] = WallCell(opts.PillarTexture)
				}
			}
		}
	}

	m.SetPlayerStart(m.CellCenter(start), geometry.V(1, 0))
	return m, nil
}
