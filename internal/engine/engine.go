// Package engine ties a map, a player, a texture provider and a drawing
// back end together and renders one frame per back end callback.
package engine

import (
	"fmt"

	"raycaster/internal/geometry"
	"raycaster/internal/graphics"
	"raycaster/internal/input"
	"raycaster/internal/logger"
	"raycaster/internal/player"
	"raycaster/internal/render"
	"raycaster/internal/threading"
	"raycaster/internal/threading/rendering"
	"raycaster/internal/world"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Engine is the render context. It is owned by the caller; nothing about it
// is global. Display and HandleAction run on the back end's goroutine.
type Engine struct {
	settings   Settings
	backend    render.Backend
	textures   *graphics.TextureManager
	components *threading.Components
	ownsPool   bool

	world   *world.Map
	player  *player.Player
	touched *world.TouchedSet

	session uuid.UUID
	log     logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger replaces the engine's logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithComponents makes the engine cast on an existing worker pool and
// report to its monitor. The caller keeps ownership of tc.
func WithComponents(tc *threading.Components) Option {
	return func(e *Engine) { e.components = tc }
}

// New creates an engine drawing through backend. textures may be nil, in
// which case every wall is drawn in flat colours.
func New(settings Settings, backend render.Backend, textures *graphics.TextureManager, opts ...Option) *Engine {
	e := &Engine{
		settings: settings,
		backend:  backend,
		textures: textures,
		session:  uuid.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Component("engine")
	}
	e.log = e.log.WithField("session", e.session.String())
	if e.components == nil {
		// the pool cannot fail without a registry
		e.components, _ = threading.NewComponents(0, nil)
		e.ownsPool = true
	}
	return e
}

// Init initialises the back end and hooks the engine's callbacks into it.
func (e *Engine) Init() error {
	if e.backend == nil {
		return ErrNoBackend
	}
	if e.backend.Status() == render.Running {
		return ErrRunning
	}
	if err := e.backend.Init(); err != nil {
		return fmt.Errorf("failed to initialise %s backend: %w", e.backend.Type(), err)
	}
	e.backend.SetDrawCallback(e.Display)
	e.backend.SetActionCallback(e.HandleAction)
	e.log.WithField("backend", e.backend.Type().String()).Info("engine initialised")
	return nil
}

// Run checks the engine state and blocks in the back end's frame loop.
func (e *Engine) Run() error {
	if err := e.CheckState(); err != nil {
		return err
	}
	e.log.Info("engine running")
	defer e.log.Info("engine stopped")
	return e.backend.Run()
}

// Close releases the worker pool the engine created for itself.
func (e *Engine) Close() {
	if e.ownsPool {
		e.components.Shutdown()
	}
}

// CheckState reports why Run would refuse to start, or nil.
func (e *Engine) CheckState() error {
	switch {
	case e.backend == nil:
		return ErrNoBackend
	case e.world == nil || !e.world.IsValid():
		return ErrInvalidMap
	case e.player == nil || !e.world.IsInWorld(e.player.Position()):
		return ErrPlayerOutside
	}
	return nil
}

func (e *Engine) checkMutable() error {
	if e.backend == nil {
		return ErrNoBackend
	}
	if e.backend.Status() == render.Running {
		return ErrRunning
	}
	return nil
}

// RegisterMap makes m the map to render. It is refused while running.
func (e *Engine) RegisterMap(m *world.Map) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: nil map", ErrInvalidMap)
	}
	e.world = m
	e.touched = world.NewTouchedSetFor(m)
	e.log.WithFields(logrus.Fields{
		"width":    m.Width(),
		"height":   m.Height(),
		"cellSize": m.CellSize(),
	}).Debug("map registered")
	return nil
}

// RegisterPlayer makes p the viewer. It is refused while running.
func (e *Engine) RegisterPlayer(p *player.Player) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	e.player = p
	return nil
}

// LoadMap registers m and places the player on the map's start pose,
// creating the player if none is registered yet.
func (e *Engine) LoadMap(m *world.Map) error {
	if err := e.RegisterMap(m); err != nil {
		return err
	}
	pos, dir := m.PlayerStart()
	if e.player == nil {
		return e.RegisterPlayer(player.NewAt(pos, dir))
	}
	e.player.SetPosition(pos)
	e.player.SetDirection(dir)
	return nil
}

// Map returns the registered map.
func (e *Engine) Map() *world.Map { return e.world }

// Player returns the registered player.
func (e *Engine) Player() *player.Player { return e.player }

// Settings returns the live settings; toggles change them.
func (e *Engine) Settings() *Settings { return &e.settings }

// Session identifies this engine in logs.
func (e *Engine) Session() uuid.UUID { return e.session }

// Components returns the threading components the engine casts with.
func (e *Engine) Components() *threading.Components { return e.components }

// HandleAction applies one player command.
func (e *Engine) HandleAction(a input.Action) {
	switch a {
	case input.ToggleTexture:
		e.settings.DrawTexture = !e.settings.DrawTexture
		return
	case input.ToggleMap:
		e.settings.DrawMap = !e.settings.DrawMap
		return
	case input.ToggleRays:
		e.settings.DrawRays = !e.settings.DrawRays
		return
	case input.Exit:
		e.log.Debug("exit requested")
		return
	}

	if e.world == nil || e.player == nil {
		return
	}
	switch a {
	case input.TurnLeft:
		e.player.Rotate(e.settings.RotateStep.Neg())
	case input.TurnRight:
		e.player.Rotate(e.settings.RotateStep)
	case input.Forward:
		e.walk(e.player.Step(e.settings.WalkStep))
	case input.Backward:
		e.walk(e.player.Step(-e.settings.WalkStep))
	case input.StrafeLeft:
		e.walk(e.player.Right().Mul(-e.settings.WalkStep))
	case input.StrafeRight:
		e.walk(e.player.Right().Mul(e.settings.WalkStep))
	case input.Use:
		if cell, ok := e.world.WorldToCell(e.player.Position().Add(e.player.Step(float64(e.world.CellSize())))); ok {
			e.log.WithFields(logrus.Fields{"x": cell.X, "y": cell.Y}).Debug("use")
		}
	}
}

func (e *Engine) walk(delta geometry.Vec2) {
	e.player.Move(e.world.PossibleMove(e.player.Position(), delta))
}

// Column is the cast of one ray of the sweep.
type Column struct {
	Dir    geometry.Vec2
	Result world.RayCastResult
}

// CastColumns casts the frame's rays, left to right, on the worker pool and
// records the cells they cross. It returns nil when no map or player is
// registered.
func (e *Engine) CastColumns() []Column {
	if e.world == nil || e.player == nil {
		return nil
	}
	if e.touched == nil || !e.touched.Fits(e.world) {
		e.touched = world.NewTouchedSetFor(e.world)
	}
	e.touched.Clear()

	monitor := e.components.PerformanceMonitor
	n := e.settings.RayCount()
	origin := e.player.Position()
	forward := e.player.Direction()
	fov := e.settings.FieldOfView
	half := fov.Scale(-0.5)

	timer := monitor.StartRaycast()
	columns := rendering.CastColumns(e.components.ParallelRenderer, n, func(i int) Column {
		dir := forward.Rotated(half.Add(fov.Scale(float64(i) / float64(n))))
		return Column{Dir: dir, Result: e.world.CastRayTouched(origin, dir, e.touched)}
	})
	timer.EndRaycast()

	var missed uint64
	for _, c := range columns {
		if !c.Result.Hit {
			missed++
		}
	}
	monitor.UpdateRaycastMetrics(uint64(n), missed, int32(e.touched.Count()))
	pool := e.components.ParallelRenderer.PoolStats()
	monitor.UpdateWorkerMetrics(pool.Active, pool.Queued, pool.Completed)
	return columns
}

// Touched reports whether the latest sweep crossed cell c.
func (e *Engine) Touched(c world.CellCoord) bool {
	return e.touched != nil && e.touched.IsTouched(c)
}
