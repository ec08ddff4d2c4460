package graphics

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"

	"raycaster/internal/mathutil"
)

// Texture is a decoded RGBA image kept in row-major order.
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []color.RGBA
}

var transparent = color.RGBA{}

// NewTexture returns a fully transparent width x height texture.
func NewTexture(name string, width, height int) *Texture {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Texture{
		Name:   name,
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// FromImage converts any image to a texture.
func FromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	t := NewTexture(name, b.Dx(), b.Dy())
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			i := rgba.PixOffset(x, y)
			p := rgba.Pix[i : i+4 : i+4]
			t.Pixels[y*t.Width+x] = color.RGBA{p[0], p[1], p[2], p[3]}
		}
	}
	return t
}

// LoadTexture decodes a PNG or BMP file.
func LoadTexture(path string) (*Texture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	return FromImage(filepath.Base(path), img), nil
}

// SaveFile writes the texture as PNG.
func (t *Texture) SaveFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create texture file %s: %w", path, err)
	}
	if err := png.Encode(file, t.Image()); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode texture %s: %w", path, err)
	}
	return file.Close()
}

// Image returns a copy of the texture as an *image.RGBA.
func (t *Texture) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, c := range t.Pixels {
		img.Pix[i*4+0] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = c.A
	}
	return img
}

// IsEmpty reports whether the texture has no pixels.
func (t *Texture) IsEmpty() bool {
	return t.Width == 0 || t.Height == 0
}

// MemorySize is the number of bytes held by the pixel data.
func (t *Texture) MemorySize() int64 {
	return int64(t.Width) * int64(t.Height) * 4
}

// Pixel returns the colour at (u, v). Coordinates outside the texture are transparent.
func (t *Texture) Pixel(u, v int) color.RGBA {
	if u < 0 || v < 0 || u >= t.Width || v >= t.Height {
		return transparent
	}
	return t.Pixels[v*t.Width+u]
}

// PixelAveraged box-filters the pixels within radius of (u, v). Averages with
// less than half coverage come back fully transparent, everything else opaque.
func (t *Texture) PixelAveraged(u, v, radius int) color.RGBA {
	if u < 0 || v < 0 || u >= t.Width || v >= t.Height {
		return transparent
	}
	var r, g, b, a float64
	n := 0
	for j := v - radius; j <= v+radius; j++ {
		for i := u - radius; i <= u+radius; i++ {
			if i < 0 || j < 0 || i >= t.Width || j >= t.Height {
				continue
			}
			p := t.Pixels[j*t.Width+i]
			r += float64(p.R)
			g += float64(p.G)
			b += float64(p.B)
			a += float64(p.A)
			n++
		}
	}
	fn := float64(n)
	if a/fn < 127.5 {
		return transparent
	}
	return color.RGBA{uint8(r/fn + 0.5), uint8(g/fn + 0.5), uint8(b/fn + 0.5), 255}
}

// Column returns the pixels of column u from top to bottom; u is clamped to
// the texture. An empty texture has no columns.
func (t *Texture) Column(u int) []color.RGBA {
	if t.IsEmpty() {
		return nil
	}
	u = mathutil.ClampInt(u, 0, t.Width-1)
	col := make([]color.RGBA, t.Height)
	for v := range col {
		col[v] = t.Pixels[v*t.Width+u]
	}
	return col
}

// ColumnIndex maps a ratio in [0,1] to a column index.
func (t *Texture) ColumnIndex(ratio float64) int {
	return mathutil.ClampInt(int(ratio*float64(t.Width)), 0, max(t.Width-1, 0))
}

// ColumnAtRatio returns the column at ratio across the texture width.
func (t *Texture) ColumnAtRatio(ratio float64) []color.RGBA {
	return t.Column(t.ColumnIndex(ratio))
}
