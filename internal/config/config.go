package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all engine configuration values
type Config struct {
	Display   DisplayConfig   `yaml:"display"`
	Camera    CameraConfig    `yaml:"camera"`
	Movement  MovementConfig  `yaml:"movement"`
	World     WorldConfig     `yaml:"world"`
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Input     InputConfig     `yaml:"input"`
	Threading ThreadingConfig `yaml:"threading"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Storage   StorageConfig   `yaml:"storage"`
}

type DisplayConfig struct {
	ScreenWidth  int    `yaml:"screen_width"`
	ScreenHeight int    `yaml:"screen_height"`
	WindowTitle  string `yaml:"window_title"`
	Resizable    bool   `yaml:"resizable"`
	// Backend selects the drawing back end: "ebiten" or "null".
	Backend         string `yaml:"backend"`
	BackgroundColor [3]int `yaml:"background_color"`
	ShowOverlay     bool   `yaml:"show_overlay"`
}

type CameraConfig struct {
	FieldOfView float64 `yaml:"field_of_view"` // degrees
	RayStep     float64 `yaml:"ray_step"`      // degrees between two cast rays
}

type MovementConfig struct {
	MoveSpeed     float64 `yaml:"move_speed"`     // world units per step
	RotationSpeed float64 `yaml:"rotation_speed"` // degrees per step
}

// WorldConfig selects the map to play. The first non-empty source wins:
// MapFile, then MapName (looked up in the archive, then in the data
// directory), then the generator when Generate is set, then the built-in room.
type WorldConfig struct {
	CellSize  int             `yaml:"cell_size"`
	DataDir   string          `yaml:"data_dir"`
	MapFile   string          `yaml:"map_file"`
	MapName   string          `yaml:"map_name"`
	Generate  bool            `yaml:"generate"`
	Generator GeneratorConfig `yaml:"generator"`
}

type GeneratorConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Seed      int64   `yaml:"seed"`
	Threshold float64 `yaml:"threshold"`
	Scale     float64 `yaml:"scale"`
}

type GraphicsConfig struct {
	TextureDir string `yaml:"texture_dir"`
	// Textures maps a cell texture id (the list index) to an image file name.
	Textures             []string `yaml:"textures"`
	TextureMemoryLimitMB int      `yaml:"texture_memory_limit_mb"`
	ColumnCacheSize      int      `yaml:"column_cache_size"`
}

type InputConfig struct {
	// Bindings overrides the default key for an action, e.g. forward: "ArrowUp".
	Bindings map[string]string `yaml:"bindings"`
}

type ThreadingConfig struct {
	Workers int `yaml:"workers"` // 0 selects one worker per CPU
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"` // empty disables the /metrics endpoint
}

type StorageConfig struct {
	ArchiveDir string `yaml:"archive_dir"` // empty disables the map archive
}

var GlobalConfig *Config

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			ScreenWidth:     1024,
			ScreenHeight:    512,
			WindowTitle:     "Raycaster",
			Backend:         "ebiten",
			BackgroundColor: [3]int{77, 77, 77},
			ShowOverlay:     true,
		},
		Camera: CameraConfig{
			FieldOfView: 60,
			RayStep:     0.1,
		},
		Movement: MovementConfig{
			MoveSpeed:     5,
			RotationSpeed: 5,
		},
		World: WorldConfig{
			CellSize: 64,
			DataDir:  ".",
			Generator: GeneratorConfig{
				Width:     16,
				Height:    16,
				Seed:      1,
				Threshold: 0.62,
				Scale:     0.35,
			},
		},
		Graphics: GraphicsConfig{
			TextureDir:           "assets/textures",
			TextureMemoryLimitMB: 64,
			ColumnCacheSize:      512,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads the configuration from a YAML file. Keys missing from the
// file keep their Default value.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}

	// Set global config for easy access
	GlobalConfig = config

	return config, nil
}

// MustLoadConfig loads the configuration and panics on error
func MustLoadConfig(filename string) *Config {
	config, err := LoadConfig(filename)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return config
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Display.ScreenWidth <= 0 || c.Display.ScreenHeight <= 0 {
		errs = append(errs, fmt.Errorf("display: screen size %dx%d must be positive",
			c.Display.ScreenWidth, c.Display.ScreenHeight))
	}
	switch c.Display.Backend {
	case "ebiten", "null":
	default:
		errs = append(errs, fmt.Errorf("display: unknown backend %q", c.Display.Backend))
	}
	for i, v := range c.Display.BackgroundColor {
		if v < 0 || v > 255 {
			errs = append(errs, fmt.Errorf("display: background_color[%d]=%d out of range", i, v))
		}
	}
	if c.Camera.FieldOfView <= 0 || c.Camera.FieldOfView >= 180 {
		errs = append(errs, fmt.Errorf("camera: field_of_view %v must be in (0,180)", c.Camera.FieldOfView))
	}
	if c.Camera.RayStep <= 0 {
		errs = append(errs, fmt.Errorf("camera: ray_step %v must be positive", c.Camera.RayStep))
	}
	if c.World.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("world: cell_size %d must be positive", c.World.CellSize))
	}
	if c.World.Generate && (c.World.Generator.Width < 3 || c.World.Generator.Height < 3) {
		errs = append(errs, fmt.Errorf("world: generator size %dx%d must be at least 3x3",
			c.World.Generator.Width, c.World.Generator.Height))
	}
	if c.Graphics.TextureMemoryLimitMB < 0 {
		errs = append(errs, fmt.Errorf("graphics: texture_memory_limit_mb must not be negative"))
	}
	if c.Threading.Workers < 0 {
		errs = append(errs, fmt.Errorf("threading: workers must not be negative"))
	}
	return errors.Join(errs...)
}

// Helper functions for easy access to commonly used values
func (c *Config) GetScreenWidth() int {
	return c.Display.ScreenWidth
}

func (c *Config) GetScreenHeight() int {
	return c.Display.ScreenHeight
}

func (c *Config) GetBackgroundColor() color.RGBA {
	bg := c.Display.BackgroundColor
	return color.RGBA{uint8(bg[0]), uint8(bg[1]), uint8(bg[2]), 255}
}

func (c *Config) GetCellSize() int {
	return c.World.CellSize
}

func (c *Config) GetMoveSpeed() float64 {
	return c.Movement.MoveSpeed
}

func (c *Config) GetRotSpeed() float64 {
	return c.Movement.RotationSpeed
}

func (c *Config) GetCameraFOV() float64 {
	return c.Camera.FieldOfView
}

func (c *Config) GetRayStep() float64 {
	return c.Camera.RayStep
}

// GetTextureName returns the image file bound to a cell texture id, or "" when none is.
func (c *Config) GetTextureName(id uint8) string {
	if int(id) >= len(c.Graphics.Textures) {
		return ""
	}
	return c.Graphics.Textures[id]
}

// GetTextureMemoryLimit returns the texture cache budget in bytes.
func (c *Config) GetTextureMemoryLimit() int64 {
	return int64(c.Graphics.TextureMemoryLimitMB) << 20
}
