// Package ebiten draws the engine's primitives in an ebiten window.
package ebiten

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"raycaster/internal/geometry"
	"raycaster/internal/graphics"
	"raycaster/internal/input"
	"raycaster/internal/logger"
	"raycaster/internal/render"
	"raycaster/internal/threading/rendering"

	"github.com/hajimehoshi/ebiten/v2"
	ebitext "github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"
)

// Backend implements render.Backend on top of ebiten.RunGame.
type Backend struct {
	settings render.Settings
	status   render.Status
	bindings input.Bindings
	tracker  *input.Tracker
	keys     map[string]ebiten.Key
	draw     func()
	action   func(input.Action)
	columns  *rendering.ColumnCache[*ebiten.Image]
	log      logrus.FieldLogger

	// screen is only set while the draw callback runs.
	screen *ebiten.Image
	exit   bool

	// white is the source of solid filled triangles, created on first use.
	white    *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
}

// New creates a back end that polls the given key bindings. columnCache
// bounds the number of texture column images kept on the GPU.
func New(settings render.Settings, bindings input.Bindings, columnCache int) *Backend {
	return &Backend{
		settings: settings,
		bindings: bindings,
		columns: rendering.NewColumnCache(columnCache, func(img *ebiten.Image) {
			img.Deallocate()
		}),
		log: logger.Component("ebiten"),
	}
}

// Init resolves the key bindings and configures the window.
func (b *Backend) Init() error {
	keys, err := resolveKeys(b.bindings)
	if err != nil {
		b.status = render.BadInitialization
		return err
	}
	if b.settings.ScreenWidth <= 0 || b.settings.ScreenHeight <= 0 {
		b.status = render.BadInitialization
		return fmt.Errorf("invalid screen size %dx%d", b.settings.ScreenWidth, b.settings.ScreenHeight)
	}
	b.keys = keys
	b.tracker = input.NewTracker(b.bindings)

	ebiten.SetWindowSize(b.settings.ScreenWidth, b.settings.ScreenHeight)
	ebiten.SetWindowTitle(b.settings.Title)
	if b.settings.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	b.status = render.Ready
	b.log.WithFields(logrus.Fields{
		"width":  b.settings.ScreenWidth,
		"height": b.settings.ScreenHeight,
	}).Info("window configured")
	return nil
}

// resolveKeys maps every bound key name to an ebiten key.
func resolveKeys(bindings input.Bindings) (map[string]ebiten.Key, error) {
	keys := make(map[string]ebiten.Key, len(bindings))
	var errs []error
	for action, name := range bindings {
		if name == "" {
			continue
		}
		var k ebiten.Key
		if err := k.UnmarshalText([]byte(name)); err != nil {
			errs = append(errs, fmt.Errorf("binding %s: unknown key %q", action, name))
			continue
		}
		keys[name] = k
	}
	return keys, errors.Join(errs...)
}

// Run opens the window and blocks until it is closed or the Exit action fires.
func (b *Backend) Run() error {
	if b.status != render.Ready {
		return render.ErrNotReady
	}
	b.status = render.Running
	b.exit = false
	defer func() { b.status = render.Ready }()

	err := ebiten.RunGame(&game{b: b})
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update polls the keyboard and delivers the resulting actions.
func (b *Backend) Update() {
	if b.tracker == nil {
		return
	}
	actions := b.tracker.Poll(func(key string) bool {
		k, ok := b.keys[key]
		return ok && ebiten.IsKeyPressed(k)
	})
	for _, a := range actions {
		if a == input.Exit {
			b.exit = true
		}
		if b.action != nil {
			b.action(a)
		}
	}
}

func (b *Backend) Status() render.Status { return b.status }
func (b *Backend) Type() render.BackendType { return render.TypeEbiten }
func (b *Backend) Settings() *render.Settings { return &b.settings }
func (b *Backend) SetDrawCallback(f func()) { b.draw = f }
func (b *Backend) SetActionCallback(f func(input.Action)) { b.action = f }

func (b *Backend) target() *ebiten.Image {
	if b.status != render.Running {
		return nil
	}
	return b.screen
}

func (b *Backend) DrawPoint(p geometry.Vec2, size float64, c color.RGBA) {
	dst := b.target()
	if dst == nil {
		return
	}
	vector.DrawFilledCircle(dst, float32(p.X), float32(p.Y), float32(size/2), c, true)
}

func (b *Backend) DrawLine(l geometry.Line, width float64, c color.RGBA) {
	dst := b.target()
	if dst == nil {
		return
	}
	vector.StrokeLine(dst, float32(l.P1.X), float32(l.P1.Y), float32(l.P2.X), float32(l.P2.Y), float32(width), c, true)
}

func (b *Backend) DrawQuad(q geometry.Quad, c color.RGBA) {
	dst := b.target()
	if dst == nil {
		return
	}

	var path vector.Path
	path.MoveTo(float32(q[0].X), float32(q[0].Y))
	for _, p := range q[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()

	b.vertices, b.indices = path.AppendVerticesAndIndicesForFilling(b.vertices[:0], b.indices[:0])
	r, g, bl, a := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255
	for i := range b.vertices {
		v := &b.vertices[i]
		v.SrcX, v.SrcY = 1, 1
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = r*a, g*a, bl*a, a
	}
	dst.DrawTriangles(b.vertices, b.indices, b.whiteSubImage(), &ebiten.DrawTrianglesOptions{})
}

func (b *Backend) whiteSubImage() *ebiten.Image {
	if b.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		b.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return b.white
}

func (b *Backend) DrawTexturedColumn(x, yTop, height float64, tex *graphics.Texture, u int, shaded bool) {
	dst := b.target()
	if dst == nil || tex == nil || tex.IsEmpty() || height <= 0 {
		return
	}

	key := rendering.ColumnKey{Texture: tex.Name, Column: u, Shaded: shaded}
	img := b.columns.GetOrCreate(key, func() *ebiten.Image {
		return columnImage(tex.Column(u), shaded)
	})

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1, height/float64(tex.Height))
	op.GeoM.Translate(x, yTop)
	dst.DrawImage(img, op)
}

// columnImage uploads a texture column as a 1 pixel wide image.
func columnImage(column []color.RGBA, shaded bool) *ebiten.Image {
	rgba := image.NewRGBA(image.Rect(0, 0, 1, len(column)))
	for v, c := range column {
		if shaded {
			c = render.Shade(c)
		}
		rgba.SetRGBA(0, v, c)
	}
	return ebiten.NewImageFromImage(rgba)
}

func (b *Backend) DrawText(text string, p geometry.Vec2, c color.RGBA) {
	dst := b.target()
	if dst == nil {
		return
	}
	face := basicfont.Face7x13
	ebitext.Draw(dst, text, face, int(p.X), int(p.Y)+face.Ascent, c)
}

// game adapts the back end to ebiten.Game.
type game struct {
	b *Backend
}

func (g *game) Update() error {
	g.b.Update()
	if g.b.exit {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.b.settings.Background)
	if g.b.draw == nil {
		return
	}
	g.b.screen = screen
	g.b.draw()
	g.b.screen = nil
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.b.settings.ScreenWidth, g.b.settings.ScreenHeight
}
