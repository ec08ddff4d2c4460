package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"raycaster/internal/config"
	"raycaster/internal/engine"
	"raycaster/internal/graphics"
	"raycaster/internal/input"
	"raycaster/internal/logger"
	"raycaster/internal/render"
	ebitenbackend "raycaster/internal/render/ebiten"
	"raycaster/internal/storage"
	"raycaster/internal/threading"
	"raycaster/internal/world"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// nullFrames is the number of frames the headless back end renders.
const nullFrames = 120

func main() {
	// Load configuration
	cfg := config.MustLoadConfig("config.yaml")
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Component("main")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	components, err := threading.NewComponents(cfg.Threading.Workers, reg)
	if err != nil {
		log.WithError(err).Fatal("failed to create worker pool")
	}
	defer components.Shutdown()
	if cfg.Metrics.ListenAddr != "" {
		startMetrics(cfg.Metrics.ListenAddr, reg, log)
	}

	var store *storage.MapStore
	if cfg.Storage.ArchiveDir != "" {
		store, err = storage.Open(cfg.Storage.ArchiveDir)
		if err != nil {
			log.WithError(err).Fatal("failed to open map archive")
		}
		defer store.Close()
	}

	m, err := loadMap(cfg, store, log)
	if err != nil {
		log.WithError(err).Fatal("failed to load map")
	}

	textures := graphics.NewTextureManager(cfg.Graphics.TextureDir,
		graphics.WithMemoryLimit(cfg.GetTextureMemoryLimit()))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := textures.Preload(ctx, textureNames(cfg)); err != nil {
		log.WithError(err).Warn("texture preload incomplete")
	}
	cancel()

	screen := render.Settings{
		ScreenWidth:  cfg.GetScreenWidth(),
		ScreenHeight: cfg.GetScreenHeight(),
		Background:   cfg.GetBackgroundColor(),
		Title:        cfg.Display.WindowTitle,
		Resizable:    cfg.Display.Resizable,
	}
	backend, err := newBackend(cfg, screen)
	if err != nil {
		log.WithError(err).Fatal("failed to create backend")
	}

	eng := engine.New(engine.SettingsFromConfig(cfg, screen), backend, textures,
		engine.WithComponents(components))
	defer eng.Close()

	if err := eng.Init(); err != nil {
		log.WithError(err).Fatal("failed to initialise engine")
	}
	if err := eng.LoadMap(m); err != nil {
		log.WithError(err).Fatal("failed to register map")
	}
	if err := eng.Run(); err != nil {
		log.WithError(err).Fatal("engine stopped with an error")
	}

	log.WithFields(logrus.Fields{
		"textures_mb": textures.MemoryUsage() >> 20,
		"stats":       components.GetDetailedPerformanceStats(),
	}).Info("bye")
}

func newBackend(cfg *config.Config, screen render.Settings) (render.Backend, error) {
	switch render.ParseBackendType(cfg.Display.Backend) {
	case render.TypeNull:
		return render.NewNullBackend(screen, nullFrames), nil
	case render.TypeEbiten:
		bindings, err := input.BindingsFromConfig(cfg.Input.Bindings)
		if err != nil {
			return nil, err
		}
		return ebitenbackend.New(screen, bindings, cfg.Graphics.ColumnCacheSize), nil
	}
	return nil, errors.New("unknown backend " + cfg.Display.Backend)
}

// loadMap picks the map to play: the configured file, then the named map
// from the archive or the data directory, then a generated map, and finally
// the built-in room.
func loadMap(cfg *config.Config, store *storage.MapStore, log logrus.FieldLogger) (*world.Map, error) {
	switch {
	case cfg.World.MapFile != "":
		log.WithField("file", cfg.World.MapFile).Info("loading map file")
		return world.LoadMapFile(cfg.World.MapFile)

	case cfg.World.MapName != "":
		name := cfg.World.MapName
		if store != nil {
			m, err := store.Load(name)
			if err == nil {
				log.WithField("map", name).Info("map loaded from archive")
				return m, nil
			}
			if !errors.Is(err, storage.ErrMapNotFound) {
				return nil, err
			}
		}
		path := world.MapPath(world.FindDataDir(cfg.World.DataDir), name)
		m, err := world.LoadMapFile(path)
		if err != nil {
			return nil, err
		}
		if store != nil {
			if _, err := store.Save(name, m); err != nil {
				log.WithError(err).Warn("failed to archive map")
			}
		}
		log.WithField("file", path).Info("map loaded from data directory")
		return m, nil

	case cfg.World.Generate:
		g := cfg.World.Generator
		opts := world.DefaultGeneratorOptions()
		opts.Width, opts.Height = g.Width, g.Height
		opts.CellSize = cfg.GetCellSize()
		opts.Seed = g.Seed
		opts.Threshold = g.Threshold
		opts.Scale = g.Scale
		log.WithFields(logrus.Fields{"seed": g.Seed, "width": g.Width, "height": g.Height}).Info("generating map")
		return world.GenerateMap(opts)
	}

	log.Info("using the built-in room")
	return world.NewBaseMap(), nil
}

func textureNames(cfg *config.Config) []string {
	var names []string
	for _, name := range cfg.Graphics.Textures {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func startMetrics(addr string, reg *prometheus.Registry, log logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	go func() {
		log.WithField("addr", addr).Info("metrics endpoint listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
}
