package render

import (
	"image/color"

	"raycaster/internal/geometry"
	"raycaster/internal/graphics"
	"raycaster/internal/input"
)

// Status is the lifecycle state of a drawing back end.
type Status int

const (
	Uninitialized Status = iota
	Ready
	BadInitialization
	Running
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case BadInitialization:
		return "bad initialization"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// BackendType identifies a back end implementation.
type BackendType int

const (
	TypeUnknown BackendType = iota
	TypeNull
	TypeEbiten
)

func (t BackendType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeEbiten:
		return "ebiten"
	default:
		return "unknown"
	}
}

// ParseBackendType maps a configuration name to a BackendType.
func ParseBackendType(name string) BackendType {
	switch name {
	case "null":
		return TypeNull
	case "ebiten":
		return TypeEbiten
	default:
		return TypeUnknown
	}
}

// Settings are shared by every back end.
type Settings struct {
	ScreenWidth  int
	ScreenHeight int
	Background   color.RGBA
	Title        string
	Resizable    bool
}

// DefaultSettings returns a 1024x512 window on a 30% grey background.
func DefaultSettings() Settings {
	return Settings{
		ScreenWidth:  1024,
		ScreenHeight: 512,
		Background:   color.RGBA{76, 76, 76, 255},
		Title:        "Raycaster",
	}
}

// Bounds is the screen rectangle.
func (s Settings) Bounds() geometry.Box {
	return geometry.Box{Max: geometry.V(float64(s.ScreenWidth), float64(s.ScreenHeight))}
}

// Backend draws primitives in screen space (origin top-left, Y down) and
// reports player input as actions. Draw calls are ignored unless the back
// end is Running, and they are only issued from the draw callback.
type Backend interface {
	// Init prepares the back end and moves it to Ready or BadInitialization.
	Init() error
	// Run blocks while frames are produced, calling the draw callback once
	// per frame, and is Running for that time.
	Run() error
	// Update requests a redraw.
	Update()

	Status() Status
	Type() BackendType
	Settings() *Settings

	SetDrawCallback(func())
	SetActionCallback(func(input.Action))

	DrawPoint(p geometry.Vec2, size float64, c color.RGBA)
	DrawLine(l geometry.Line, width float64, c color.RGBA)
	DrawQuad(q geometry.Quad, c color.RGBA)
	// DrawTexturedColumn stretches column u of tex over the one pixel wide
	// strip at x from yTop to yTop+height, darkened when shaded.
	DrawTexturedColumn(x, yTop, height float64, tex *graphics.Texture, u int, shaded bool)
	DrawText(text string, p geometry.Vec2, c color.RGBA)
}

// Shade returns c at 70% intensity, used for faces lit from the side.
func Shade(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(c.R) * 7 / 10),
		G: uint8(uint16(c.G) * 7 / 10),
		B: uint8(uint16(c.B) * 7 / 10),
		A: c.A,
	}
}
