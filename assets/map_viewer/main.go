package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"raycaster/internal/config"
	"raycaster/internal/geometry"
	"raycaster/internal/logger"
	"raycaster/internal/storage"
	"raycaster/internal/world"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"
)

const (
	windowWidth  = 1200
	windowHeight = 800
	sidebarWidth = 300
)

const (
	sourceDataDir = "data dir"
	sourceArchive = "archive"
	sourceBuiltin = "built-in"
	sourceNew     = "generated"
)

type mapInfo struct {
	Key    string
	Source string
	Map    *world.Map
	Err    error
}

type viewer struct {
	cfg      *config.Config
	store    *storage.MapStore
	log      logrus.FieldLogger
	maps     []mapInfo
	mapIndex int
	showGrid bool
	seed     int64
	status   string
}

func main() {
	ensureRuntimeCWD()

	cfg := config.MustLoadConfig("config.yaml")
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Component("map_viewer")

	v := &viewer{
		cfg:      cfg,
		log:      log,
		showGrid: true,
		seed:     cfg.World.Generator.Seed,
	}
	if cfg.Storage.ArchiveDir != "" {
		store, err := storage.Open(cfg.Storage.ArchiveDir, storage.WithLogger(log))
		if err != nil {
			log.WithError(err).Warn("map archive unavailable")
		} else {
			v.store = store
			defer store.Close()
		}
	}

	maps, err := loadMaps(cfg, v.store)
	if err != nil {
		log.WithError(err).Warn("some maps could not be listed")
	}
	v.maps = maps

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("Raycaster Map Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(v); err != nil {
		log.WithError(err).Fatal("viewer stopped")
	}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		if len(v.maps) > 0 {
			v.mapIndex = (v.mapIndex + 1) % len(v.maps)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		if len(v.maps) > 0 {
			v.mapIndex--
			if v.mapIndex < 0 {
				v.mapIndex = len(v.maps) - 1
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		v.generate()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		v.archiveCurrent()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		v.importDataDir()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.showGrid = !v.showGrid
	}
	return nil
}

// generate appends a new Perlin map and selects it. Each press uses the next seed.
func (v *viewer) generate() {
	g := v.cfg.World.Generator
	opts := world.DefaultGeneratorOptions()
	opts.Width, opts.Height = g.Width, g.Height
	opts.CellSize = v.cfg.GetCellSize()
	opts.Seed = v.seed
	opts.Threshold = g.Threshold
	opts.Scale = g.Scale

	m, err := world.GenerateMap(opts)
	key := fmt.Sprintf("generated-%d", v.seed)
	v.seed++
	v.maps = append(v.maps, mapInfo{Key: key, Source: sourceNew, Map: m, Err: err})
	v.mapIndex = len(v.maps) - 1
	v.status = "generated " + key
}

func (v *viewer) archiveCurrent() {
	if len(v.maps) == 0 {
		return
	}
	m := v.maps[v.mapIndex]
	if m.Map == nil {
		v.status = "nothing to save"
		return
	}

	if v.store == nil {
		path := world.MapPath(world.FindDataDir(v.cfg.World.DataDir), m.Key)
		if err := m.Map.SaveFile(path); err != nil {
			v.status = err.Error()
			return
		}
		v.status = "saved " + path
		return
	}

	entry, err := v.store.Save(m.Key, m.Map)
	if err != nil {
		v.status = err.Error()
		return
	}
	v.maps[v.mapIndex].Source = sourceArchive
	v.status = fmt.Sprintf("archived %s rev %s", entry.Name, entry.Revision.String()[:8])
}

func (v *viewer) importDataDir() {
	if v.store == nil {
		v.status = "no archive configured"
		return
	}
	dir := world.MapsDir(world.FindDataDir(v.cfg.World.DataDir))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	saved, err := v.store.ImportDir(ctx, dir)
	if err != nil {
		v.log.WithError(err).Warn("import incomplete")
	}
	v.status = fmt.Sprintf("imported %d maps from %s", saved, dir)
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{15, 15, 22, 255})

	if len(v.maps) == 0 {
		ebitenutil.DebugPrintAt(screen, "no maps loaded, press G to generate one", 16, 16)
		return
	}

	m := v.maps[v.mapIndex]
	if m.Err != nil {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("map %s failed to load: %v", m.Key, m.Err), 16, 16)
		return
	}

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()

	padding := 16
	mapAreaW := screenW - sidebarWidth - padding*3
	mapAreaH := screenH - padding*2
	mapAreaX := padding
	mapAreaY := padding
	sidebarX := mapAreaX + mapAreaW + padding
	sidebarY := padding

	drawMapPanel(screen, m, mapAreaX, mapAreaY, mapAreaW, mapAreaH, v.showGrid)
	drawSidebar(screen, m, sidebarX, sidebarY, sidebarWidth, mapAreaH, v.mapIndex, len(v.maps), v.status)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return windowWidth, windowHeight
}

func drawMapPanel(screen *ebiten.Image, m mapInfo, x, y, w, h int, grid bool) {
	drawFilledRect(screen, x, y, w, h, color.RGBA{22, 22, 30, 255})
	drawRectBorder(screen, x, y, w, h, 2, color.RGBA{70, 70, 90, 255})
	drawMapHeader(screen, m, x, y)

	headerH := 44
	cols, rows := m.Map.Width(), m.Map.Height()
	if cols == 0 || rows == 0 {
		return
	}
	tileSize := min((w-24)/cols, (h-headerH-12)/rows)
	if tileSize < 1 {
		tileSize = 1
	}
	originX := x + (w-tileSize*cols)/2
	originY := y + headerH + (h-headerH-tileSize*rows)/2

	floor := color.RGBA{60, 60, 60, 255}
	for cy, row := range m.Map.Cells() {
		for cx, cell := range row {
			clr := floor
			if !cell.Passable {
				clr = cell.MapColor()
			} else if !cell.Visible {
				clr = color.RGBA{40, 40, 40, 255}
			}
			drawFilledRect(screen, originX+cx*tileSize, originY+cy*tileSize, tileSize, tileSize, clr)
		}
	}
	if grid && tileSize >= 6 {
		lineClr := color.RGBA{30, 30, 38, 255}
		for cx := 0; cx <= cols; cx++ {
			drawFilledRect(screen, originX+cx*tileSize, originY, 1, rows*tileSize, lineClr)
		}
		for cy := 0; cy <= rows; cy++ {
			drawFilledRect(screen, originX, originY+cy*tileSize, cols*tileSize, 1, lineClr)
		}
	}

	drawStartMarker(screen, m.Map, originX, originY, tileSize)
}

func drawMapHeader(screen *ebiten.Image, m mapInfo, x, y int) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s (%s)", m.Key, m.Source), x+12, y+8)
	ebitenutil.DebugPrintAt(screen, "Left/Right (or A/D) switch, G generate, S save, I import, H grid, Esc quit", x+12, y+24)
}

// drawStartMarker draws the player start as a circle with a heading line,
// converting world units to panel pixels.
func drawStartMarker(screen *ebiten.Image, m *world.Map, originX, originY, tileSize int) {
	pos, dir := m.PlayerStart()
	scale := float64(tileSize) / float64(m.CellSize())
	cx := float32(float64(originX) + pos.X*scale)
	cy := float32(float64(originY) + pos.Y*scale)
	r := float32(max(3, tileSize/3))

	vector.DrawFilledCircle(screen, cx, cy, r, color.RGBA{50, 200, 255, 255}, true)
	if dir.IsZero() {
		return
	}
	tip := dir.Normalized().Mul(float64(tileSize))
	vector.StrokeLine(screen, cx, cy, cx+float32(tip.X), cy+float32(tip.Y), 2, color.RGBA{255, 255, 0, 255}, true)
}

func drawSidebar(screen *ebiten.Image, m mapInfo, x, y, w, h, index, total int, status string) {
	drawFilledRect(screen, x, y, w, h, color.RGBA{18, 18, 26, 255})
	drawRectBorder(screen, x, y, w, h, 2, color.RGBA{70, 70, 90, 255})

	row := y + 12
	st := collectStats(m.Map)
	pos, dir := m.Map.PlayerStart()
	heading := geometry.Radians(math.Atan2(dir.Y, dir.X)).Degrees()

	lines := []string{
		fmt.Sprintf("Map %d of %d", index+1, total),
		fmt.Sprintf("Cells: %dx%d", m.Map.Width(), m.Map.Height()),
		fmt.Sprintf("Cell size: %d", m.Map.CellSize()),
		fmt.Sprintf("World: %.0fx%.0f", m.Map.FullWidth(), m.Map.FullHeight()),
		fmt.Sprintf("Walls: %d", st.walls),
		fmt.Sprintf("Floor: %d", st.floor),
		fmt.Sprintf("See-through blockers: %d", st.seeThrough),
		fmt.Sprintf("Textures: %s", st.textureList()),
		fmt.Sprintf("Start: %.0f, %.0f", pos.X, pos.Y),
		fmt.Sprintf("Heading: %.0f deg", heading),
	}
	if !m.Map.IsValid() {
		lines = append(lines, "Map is not valid")
	}
	for _, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, x+12, row)
		row += 16
	}

	row += 8
	ebitenutil.DebugPrintAt(screen, "Markers:", x+12, row)
	row += 16
	ebitenutil.DebugPrintAt(screen, "Cyan: start  Yellow: heading", x+12, row)

	if status != "" {
		ebitenutil.DebugPrintAt(screen, status, x+12, y+h-24)
	}
}

type mapStats struct {
	walls, floor, seeThrough int
	textures                 map[uint8]int
}

func collectStats(m *world.Map) mapStats {
	st := mapStats{textures: make(map[uint8]int)}
	for _, row := range m.Cells() {
		for _, cell := range row {
			switch {
			case cell.Passable:
				st.floor++
			case cell.Visible:
				st.seeThrough++
			default:
				st.walls++
			}
			if cell.IsWall() {
				st.textures[cell.TextureID]++
			}
		}
	}
	return st
}

func (s mapStats) textureList() string {
	ids := make([]int, 0, len(s.textures))
	for id := range s.textures {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// loadMaps lists the maps of the data directory, then the archive entries
// not already shown. The built-in room is always available.
func loadMaps(cfg *config.Config, store *storage.MapStore) ([]mapInfo, error) {
	maps := []mapInfo{{Key: "base", Source: sourceBuiltin, Map: world.NewBaseMap()}}
	seen := map[string]bool{}

	var errs []error
	dir := world.MapsDir(world.FindDataDir(cfg.World.DataDir))
	paths, err := filepath.Glob(filepath.Join(dir, "*"+world.MapFileExt))
	if err != nil {
		errs = append(errs, err)
	}
	sort.Strings(paths)
	for _, path := range paths {
		key := strings.TrimSuffix(filepath.Base(path), world.MapFileExt)
		m, err := world.LoadMapFile(path)
		maps = append(maps, mapInfo{Key: key, Source: sourceDataDir, Map: m, Err: err})
		seen[key] = true
	}

	if store != nil {
		entries, err := store.List()
		if err != nil {
			errs = append(errs, err)
		}
		for _, e := range entries {
			if seen[e.Name] {
				continue
			}
			m, err := store.Load(e.Name)
			maps = append(maps, mapInfo{Key: e.Name, Source: sourceArchive, Map: m, Err: err})
		}
	}
	return maps, errors.Join(errs...)
}

func drawFilledRect(screen *ebiten.Image, x, y, w, h int, clr color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), clr, false)
}

func drawRectBorder(screen *ebiten.Image, x, y, w, h, thickness int, clr color.RGBA) {
	t := float32(thickness)
	fx := float32(x)
	fy := float32(y)
	fw := float32(w)
	fh := float32(h)
	vector.DrawFilledRect(screen, fx, fy, fw, t, clr, false)
	vector.DrawFilledRect(screen, fx, fy+fh-t, fw, t, clr, false)
	vector.DrawFilledRect(screen, fx, fy, t, fh, clr, false)
	vector.DrawFilledRect(screen, fx+fw-t, fy, t, fh, clr, false)
}

func ensureRuntimeCWD() {
	if _, err := os.Stat("config.yaml"); err == nil {
		return
	}
	exe, err := os.Executable()
	if err != nil {
		return
	}
	execDir := filepath.Dir(exe)
	_ = os.Chdir(execDir)
}
