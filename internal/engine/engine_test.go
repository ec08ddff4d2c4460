package engine

import (
	"image/color"
	"path/filepath"
	"testing"

	"raycaster/internal/geometry"
	"raycaster/internal/graphics"
	"raycaster/internal/input"
	"raycaster/internal/player"
	"raycaster/internal/render"
	"raycaster/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a back end that keeps every draw call of the last frame.
type recorder struct {
	settings render.Settings
	status   render.Status
	draw     func()
	action   func(input.Action)

	points   []geometry.Vec2
	lines    []geometry.Line
	quads    []geometry.Quad
	columns  []float64
	texts    []string
	initErr  error
	initDone int
}

func newRecorder() *recorder {
	return &recorder{settings: render.Settings{ScreenWidth: 128, ScreenHeight: 64}}
}

func (r *recorder) Init() error {
	r.initDone++
	if r.initErr != nil {
		r.status = render.BadInitialization
		return r.initErr
	}
	r.status = render.Ready
	return nil
}

func (r *recorder) Run() error {
	r.status = render.Running
	defer func() { r.status = render.Ready }()
	r.frame()
	return nil
}

func (r *recorder) frame() {
	r.points, r.lines, r.quads, r.columns, r.texts = nil, nil, nil, nil, nil
	if r.draw != nil {
		r.draw()
	}
}

func (r *recorder) Update() {}
func (r *recorder) Status() render.Status { return r.status }
func (r *recorder) Type() render.BackendType { return render.TypeUnknown }
func (r *recorder) Settings() *render.Settings { return &r.settings }
func (r *recorder) SetDrawCallback(f func()) { r.draw = f }
func (r *recorder) SetActionCallback(f func(input.Action)) { r.action = f }

func (r *recorder) DrawPoint(p geometry.Vec2, _ float64, _ color.RGBA) {
	r.points = append(r.points, p)
}

func (r *recorder) DrawLine(l geometry.Line, _ float64, _ color.RGBA) {
	r.lines = append(r.lines, l)
}

func (r *recorder) DrawQuad(q geometry.Quad, _ color.RGBA) {
	r.quads = append(r.quads, q)
}

func (r *recorder) DrawTexturedColumn(x, _, _ float64, _ *graphics.Texture, _ int, _ bool) {
	r.columns = append(r.columns, x)
}

func (r *recorder) DrawText(text string, _ geometry.Vec2, _ color.RGBA) {
	r.texts = append(r.texts, text)
}

// testSettings casts 64 rays, one per pixel of the 64 pixel wide 3D view.
func testSettings(b *recorder) Settings {
	s := DefaultSettings(b.settings)
	s.RayStep = geometry.Degrees(60.0 / 64)
	s.DrawTexture = false
	s.DrawMap = false
	s.DrawRays = false
	s.ShowFPS = false
	return s
}

func newTestEngine(t *testing.T) (*Engine, *recorder) {
	t.Helper()
	b := newRecorder()
	e := New(testSettings(b), b, nil)
	t.Cleanup(e.Close)
	require.NoError(t, e.Init())
	require.NoError(t, e.LoadMap(world.NewBaseMap()))
	return e, b
}

func TestInitWithoutBackend(t *testing.T) {
	e := New(DefaultSettings(render.DefaultSettings()), nil, nil)
	defer e.Close()

	assert.ErrorIs(t, e.Init(), ErrNoBackend)
	assert.ErrorIs(t, e.RegisterMap(world.NewBaseMap()), ErrNoBackend)
	assert.ErrorIs(t, e.CheckState(), ErrNoBackend)
}

func TestInitFailure(t *testing.T) {
	b := newRecorder()
	b.initErr = assert.AnError
	e := New(testSettings(b), b, nil)
	defer e.Close()

	assert.ErrorIs(t, e.Init(), assert.AnError)
	assert.Equal(t, render.BadInitialization, b.Status())
}

func TestCheckState(t *testing.T) {
	b := newRecorder()
	e := New(testSettings(b), b, nil)
	defer e.Close()
	require.NoError(t, e.Init())

	assert.ErrorIs(t, e.CheckState(), ErrInvalidMap)
	assert.ErrorIs(t, e.Run(), ErrInvalidMap)

	require.NoError(t, e.RegisterMap(world.NewBaseMap()))
	assert.ErrorIs(t, e.CheckState(), ErrPlayerOutside)

	require.NoError(t, e.RegisterPlayer(player.NewAt(geometry.V(-5, 10), geometry.V(1, 0))))
	assert.ErrorIs(t, e.CheckState(), ErrPlayerOutside)

	e.Player().SetPosition(geometry.V(96, 96))
	assert.NoError(t, e.CheckState())
}

func TestRegistrationRefusedWhileRunning(t *testing.T) {
	e, b := newTestEngine(t)

	b.status = render.Running
	assert.ErrorIs(t, e.RegisterMap(world.NewBaseMap()), ErrRunning)
	assert.ErrorIs(t, e.RegisterPlayer(player.New()), ErrRunning)
	assert.ErrorIs(t, e.LoadMap(world.NewBaseMap()), ErrRunning)
	assert.ErrorIs(t, e.Init(), ErrRunning)
}

func TestLoadMapPlacesPlayer(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.Equal(t, geometry.V(245, 125), e.Player().Position())
	assert.Equal(t, geometry.V(0, -1), e.Player().Direction())

	e.Player().SetPosition(geometry.V(96, 96))
	require.NoError(t, e.LoadMap(world.NewBaseMap()))
	assert.Equal(t, geometry.V(245, 125), e.Player().Position())
}

func TestHandleMovement(t *testing.T) {
	e, _ := newTestEngine(t)

	e.HandleAction(input.Forward)
	assert.InDelta(t, 245, e.Player().Position().X, 1e-9)
	assert.InDelta(t, 120, e.Player().Position().Y, 1e-9)

	e.HandleAction(input.Backward)
	assert.InDelta(t, 125, e.Player().Position().Y, 1e-9)

	e.HandleAction(input.StrafeRight)
	assert.InDelta(t, 250, e.Player().Position().X, 1e-9)
	e.HandleAction(input.StrafeLeft)
	assert.InDelta(t, 245, e.Player().Position().X, 1e-9)

	e.HandleAction(input.TurnRight)
	dir := e.Player().Direction()
	assert.InDelta(t, 0.0871557, dir.X, 1e-6)
	assert.InDelta(t, -0.9961947, dir.Y, 1e-6)

	e.HandleAction(input.TurnLeft)
	dir = e.Player().Direction()
	assert.InDelta(t, 0, dir.X, 1e-9)
	assert.InDelta(t, -1, dir.Y, 1e-9)
}

func TestHandleMovementBlockedByWall(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Settings().WalkStep = 10
	e.Player().SetPosition(geometry.V(120, 96))
	e.Player().SetDirection(geometry.V(1, 0))

	// cell (2,1) is a wall; the move has no free axis to slide along
	e.HandleAction(input.Forward)
	assert.Equal(t, geometry.V(120, 96), e.Player().Position())
}

func TestHandleToggles(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Settings()

	e.HandleAction(input.ToggleMap)
	e.HandleAction(input.ToggleRays)
	e.HandleAction(input.ToggleTexture)
	assert.True(t, s.DrawMap)
	assert.True(t, s.DrawRays)
	assert.True(t, s.DrawTexture)

	e.HandleAction(input.ToggleMap)
	assert.False(t, s.DrawMap)

	// not moving actions leave the player alone
	pos := e.Player().Position()
	e.HandleAction(input.Use)
	e.HandleAction(input.Exit)
	assert.Equal(t, pos, e.Player().Position())
}

func TestActionsWithoutMap(t *testing.T) {
	b := newRecorder()
	e := New(testSettings(b), b, nil)
	defer e.Close()

	e.HandleAction(input.Forward)
	e.HandleAction(input.ToggleMap)
	assert.True(t, e.Settings().DrawMap)
	assert.Nil(t, e.CastColumns())
}

func TestCastColumnsSweep(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Player().SetPosition(geometry.V(96, 224))
	e.Player().SetDirection(geometry.V(1, 0))

	columns := e.CastColumns()
	require.Len(t, columns, 64)
	for i, c := range columns {
		assert.True(t, c.Result.Hit, "column %d left the closed room", i)
	}

	// the middle ray looks straight ahead at the east wall
	mid := columns[32]
	assert.InDelta(t, 1, mid.Dir.X, 1e-9)
	assert.InDelta(t, 352.001, mid.Result.Distance, 1e-6)
	assert.True(t, mid.Result.HitVertical)

	// the sweep runs left to right
	assert.Less(t, columns[0].Dir.Y, 0.0)
	assert.Greater(t, columns[63].Dir.Y, 0.0)

	assert.True(t, e.Touched(world.CellCoord{X: 1, Y: 3}))
	assert.True(t, e.Touched(world.CellCoord{X: 7, Y: 3}))
	assert.False(t, e.Touched(world.CellCoord{X: 1, Y: 1}))

	metrics := e.Components().GetPerformanceMetrics()
	assert.Equal(t, uint64(64), metrics.RaysCast)
	assert.Zero(t, metrics.MissedRays)
	assert.Positive(t, metrics.TouchedCells)

	stats := e.Components().GetDetailedPerformanceStats()
	assert.Equal(t, int32(0), stats["queued_jobs"])
}

func TestDisplayWallsOnly(t *testing.T) {
	e, b := newTestEngine(t)
	e.Player().SetPosition(geometry.V(96, 224))
	e.Player().SetDirection(geometry.V(1, 0))
	require.NoError(t, e.Run())

	assert.Len(t, b.quads, 2, "sky and floor")
	require.Len(t, b.lines, 64)
	assert.Empty(t, b.points)
	assert.Empty(t, b.texts)

	// projected height of the straight-ahead wall: cellSize * viewHeight / distance
	mid := b.lines[32]
	assert.InDelta(t, 64+32.5, mid.P1.X, 1e-9)
	assert.InDelta(t, 64.0*64/352.001, mid.P2.Y-mid.P1.Y, 1e-6)
	assert.InDelta(t, 32, (mid.P1.Y+mid.P2.Y)/2, 1e-9)
}

func TestDisplayClampsCloseWalls(t *testing.T) {
	e, b := newTestEngine(t)
	e.Player().SetPosition(geometry.V(440, 224))
	e.Player().SetDirection(geometry.V(1, 0))
	require.NoError(t, e.Run())

	require.Len(t, b.lines, 64)
	mid := b.lines[32]
	assert.InDelta(t, 64, mid.P2.Y-mid.P1.Y, 1e-9)
}

func TestDisplayOverlay(t *testing.T) {
	e, b := newTestEngine(t)
	e.Settings().DrawMap = true
	e.Settings().ShowFPS = true
	require.NoError(t, e.Run())

	touched := int(e.Components().GetPerformanceMetrics().TouchedCells)
	assert.Len(t, b.quads, 2+touched)
	assert.Len(t, b.points, 1)
	assert.Len(t, b.lines, 64+1, "walls and the player's heading")
	assert.Len(t, b.texts, 1)

	// the 512x512 map is scaled into the 64x64 map layout
	assert.InDelta(t, 245.0/8, b.points[0].X, 1e-9)
	assert.InDelta(t, 125.0/8, b.points[0].Y, 1e-9)

	e.Settings().DrawRays = true
	require.NoError(t, e.Run())
	assert.Len(t, b.lines, 64+64+1)
}

func TestDisplayTextured(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, graphics.NewTexture("wall", 4, 4).SaveFile(filepath.Join(dir, "wall.png")))

	b := newRecorder()
	s := testSettings(b)
	s.DrawTexture = true
	s.Textures = make([]string, 11)
	s.Textures[10] = "wall.png"

	e := New(s, b, graphics.NewTextureManager(dir))
	defer e.Close()
	require.NoError(t, e.Init())
	require.NoError(t, e.LoadMap(world.NewBaseMap()))
	require.NoError(t, e.Run())

	assert.Len(t, b.columns, 64)
	assert.Empty(t, b.lines)
	assert.Equal(t, 64.0, b.columns[0])

	// without a texture name the walls fall back to flat colours
	e.Settings().Textures = nil
	require.NoError(t, e.Run())
	assert.Empty(t, b.columns)
	assert.Len(t, b.lines, 64)
}

func TestRunOnNullBackend(t *testing.T) {
	screen := render.Settings{ScreenWidth: 128, ScreenHeight: 64}
	backend := render.NewNullBackend(screen, 3)
	s := DefaultSettings(screen)
	s.RayStep = geometry.Degrees(60.0 / 64)

	e := New(s, backend, nil)
	defer e.Close()
	require.NoError(t, e.Init())
	require.NoError(t, e.LoadMap(world.NewBaseMap()))
	require.NoError(t, e.Run())

	stats := e.Components().GetDetailedPerformanceStats()
	assert.Equal(t, uint64(3), stats["frame_count"])
	assert.Positive(t, backend.DrawCalls())

	backend.Send(input.Forward)
	assert.InDelta(t, 120, e.Player().Position().Y, 1e-9)
}

func TestRayCount(t *testing.T) {
	s := DefaultSettings(render.DefaultSettings())
	assert.Equal(t, 600, s.RayCount())

	s.RayStep = geometry.Degrees(0)
	assert.Equal(t, 512, s.RayCount())
}
