package engine

import (
	"fmt"
	"image/color"
	"math"

	"raycaster/internal/geometry"
	"raycaster/internal/render"
	"raycaster/internal/world"
)

var (
	skyColor        = color.RGBA{65, 65, 65, 255}
	floorColor      = color.RGBA{105, 105, 105, 255}
	passableColor   = color.RGBA{0, 0, 0, 255}
	seeThroughColor = color.RGBA{40, 40, 40, 255}
	playerColor     = color.RGBA{255, 255, 0, 255}
	fpsColor        = color.RGBA{200, 20, 0, 255}
)

const (
	playerMarkerSize   = 32
	playerMarkerLength = 60
	playerMarkerWidth  = 8
)

// Display renders one frame: the sweep is cast first, then every draw call
// is issued from the calling goroutine.
func (e *Engine) Display() {
	if e.backend == nil || e.world == nil || e.player == nil {
		return
	}
	monitor := e.components.PerformanceMonitor
	frame := monitor.StartFrame()
	defer frame.EndFrame()

	columns := e.CastColumns()
	monitor.ProfiledFunction("draw", func() {
		e.drawView(columns)
		if e.settings.DrawMap {
			e.drawMap(columns)
		}
		if e.settings.ShowFPS {
			e.drawFPS()
		}
	})
}

// drawView draws the sky, the floor and one wall strip per ray.
func (e *Engine) drawView(columns []Column) {
	view := e.settings.Layout3D
	if !view.IsValid() || len(columns) == 0 {
		return
	}
	centerY := view.Min.Y + view.Height()/2
	e.backend.DrawQuad(geometry.Rect(view.Min.X, view.Min.Y, view.Width(), view.Height()/2), skyColor)
	e.backend.DrawQuad(geometry.Rect(view.Min.X, centerY, view.Width(), view.Height()/2), floorColor)

	forward := e.player.Direction()
	cs := float64(e.world.CellSize())
	rayWidth := view.Width() / float64(len(columns))

	for i, col := range columns {
		if !col.Result.Hit {
			continue
		}
		// a ray narrower than a pixel only draws when it reaches a new pixel
		x0 := math.Floor(float64(i) * rayWidth)
		x1 := math.Floor(float64(i+1) * rayWidth)
		if x1 <= x0 {
			continue
		}

		// perpendicular distance removes the fisheye effect
		dist := col.Result.Distance * forward.Dot(col.Dir)
		if dist <= 0 {
			continue
		}
		lineH := min(cs*view.Height()/dist, view.Height())
		top := centerY - lineH/2

		cell, _ := e.world.At(cellOf(e.world, col.Result))
		if e.drawTexturedStrip(view.Min.X+x0, view.Min.X+x1, top, lineH, cell, col.Result) {
			continue
		}

		c := cell.RayColor()
		if !col.Result.HitVertical {
			c = render.Shade(c)
		}
		x := view.Min.X + (x0+x1)/2
		e.backend.DrawLine(geometry.NewLine(geometry.V(x, top), geometry.V(x, top+lineH)), x1-x0, c)
	}
}

// drawTexturedStrip draws the wall column textured and reports whether it did.
func (e *Engine) drawTexturedStrip(x0, x1, top, lineH float64, cell world.Cell, res world.RayCastResult) bool {
	if !e.settings.DrawTexture || e.textures == nil {
		return false
	}
	name := e.settings.textureName(cell.TextureID)
	if name == "" {
		return false
	}
	tex := e.textures.GetTexture(name)
	if tex.IsEmpty() {
		return false
	}
	u := tex.ColumnIndex(res.HitXRatio)
	for x := x0; x < x1; x++ {
		e.backend.DrawTexturedColumn(x, top, lineH, tex, u, !res.HitVertical)
	}
	return true
}

func cellOf(m *world.Map, res world.RayCastResult) world.CellCoord {
	c, _ := res.Cell(m)
	return c
}

// mapTransform returns the scale and offset that fit the whole map,
// centred, into LayoutMap.
func (e *Engine) mapTransform() (scale float64, offset geometry.Vec2) {
	box := e.settings.LayoutMap
	fw, fh := e.world.FullWidth(), e.world.FullHeight()
	if fw <= 0 || fh <= 0 {
		return 0, box.Min
	}
	scale = min(box.Width()/fw, box.Height()/fh)
	offset = box.Min.Add(geometry.V(box.Width()-fw*scale, box.Height()-fh*scale).Mul(0.5))
	return scale, offset
}

// drawMap draws the cells crossed by the sweep, the rays and the player.
func (e *Engine) drawMap(columns []Column) {
	if !e.settings.LayoutMap.IsValid() {
		return
	}
	scale, offset := e.mapTransform()
	if scale <= 0 {
		return
	}
	toMap := func(p geometry.Vec2) geometry.Vec2 { return p.Mul(scale).Add(offset) }
	cs := float64(e.world.CellSize()) * scale

	for y := 0; y < e.world.Height(); y++ {
		for x := 0; x < e.world.Width(); x++ {
			c := world.CellCoord{X: x, Y: y}
			if !e.touched.IsTouched(c) {
				continue
			}
			cell, _ := e.world.At(c)
			p := toMap(e.world.CellOrigin(c))
			e.backend.DrawQuad(geometry.Rect(p.X, p.Y, cs, cs), overlayColor(cell))
		}
	}

	origin := e.player.Position()
	if e.settings.DrawRays {
		for _, col := range columns {
			cell, _ := e.world.At(cellOf(e.world, col.Result))
			c := cell.RayColor()
			if col.Result.HitVertical {
				c = render.Shade(c)
			}
			ray := geometry.Ray(toMap(origin), col.Dir, col.Result.Distance*scale)
			e.backend.DrawLine(ray, 1, c)
		}
	}

	pos := toMap(origin)
	e.backend.DrawPoint(pos, playerMarkerSize*scale, playerColor)
	e.backend.DrawLine(geometry.Ray(pos, e.player.Direction(), playerMarkerLength*scale),
		max(1, playerMarkerWidth*scale), playerColor)
}

func overlayColor(cell world.Cell) color.RGBA {
	switch {
	case cell.Passable:
		return passableColor
	case cell.Visible:
		return seeThroughColor
	default:
		return cell.MapColor()
	}
}

func (e *Engine) drawFPS() {
	view := e.settings.Layout3D
	text := fmt.Sprintf("%.0f fps", e.components.PerformanceMonitor.FPS())
	e.backend.DrawText(text, geometry.V(view.Max.X-150, view.Min.Y+50), fpsColor)
}
