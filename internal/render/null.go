package render

import (
	"image/color"
	"sync/atomic"

	"raycaster/internal/geometry"
	"raycaster/internal/graphics"
	"raycaster/internal/input"
)

// NullBackend draws nothing. Run produces a fixed number of frames without
// a window, which makes it usable headless and in tests.
type NullBackend struct {
	settings Settings
	status   Status
	frames   int
	draw     func()
	action   func(input.Action)

	drawCalls atomic.Int64
}

// NewNullBackend returns a back end whose Run renders frames frames.
func NewNullBackend(settings Settings, frames int) *NullBackend {
	return &NullBackend{settings: settings, frames: frames}
}

func (n *NullBackend) Init() error {
	n.status = Ready
	return nil
}

func (n *NullBackend) Run() error {
	if n.status != Ready {
		return ErrNotReady
	}
	n.status = Running
	defer func() { n.status = Ready }()
	for i := 0; i < n.frames; i++ {
		if n.draw != nil {
			n.draw()
		}
	}
	return nil
}

func (n *NullBackend) Update() {}

func (n *NullBackend) Status() Status { return n.status }
func (n *NullBackend) Type() BackendType { return TypeNull }
func (n *NullBackend) Settings() *Settings { return &n.settings }
func (n *NullBackend) SetDrawCallback(f func()) { n.draw = f }

func (n *NullBackend) SetActionCallback(f func(input.Action)) { n.action = f }

// Send delivers a to the action callback as if a key had been pressed.
func (n *NullBackend) Send(a input.Action) {
	if n.action != nil {
		n.action(a)
	}
}

// DrawCalls counts draw calls accepted while Running.
func (n *NullBackend) DrawCalls() int64 {
	return n.drawCalls.Load()
}

func (n *NullBackend) count() {
	if n.status == Running {
		n.drawCalls.Add(1)
	}
}

func (n *NullBackend) DrawPoint(geometry.Vec2, float64, color.RGBA) { n.count() }
func (n *NullBackend) DrawLine(geometry.Line, float64, color.RGBA) { n.count() }
func (n *NullBackend) DrawQuad(geometry.Quad, color.RGBA) { n.count() }
func (n *NullBackend) DrawText(string, geometry.Vec2, color.RGBA) { n.count() }

func (n *NullBackend) DrawTexturedColumn(float64, float64, float64, *graphics.Texture, int, bool) {
	n.count()
}
