package engine

import (
	"raycaster/internal/config"
	"raycaster/internal/geometry"
	"raycaster/internal/render"
)

// Settings controls what the engine draws and how the player moves.
type Settings struct {
	// Layout3D receives the projected walls, LayoutMap the top-down map.
	Layout3D  geometry.Box
	LayoutMap geometry.Box

	FieldOfView geometry.Angle
	// RayStep is the angle between two consecutive rays.
	RayStep geometry.Angle

	WalkStep   float64
	RotateStep geometry.Angle

	// Textures names the image of each cell texture id (the index).
	// Ids without a name are drawn in flat colours.
	Textures []string

	DrawTexture bool
	DrawMap     bool
	DrawRays    bool
	ShowFPS     bool
}

// DefaultSettings splits the screen in two: the map on the left half and
// the 3D view on the right half.
func DefaultSettings(screen render.Settings) Settings {
	w, h := float64(screen.ScreenWidth), float64(screen.ScreenHeight)
	return Settings{
		LayoutMap:   geometry.Box{Min: geometry.V(0, 0), Max: geometry.V(w/2, h)},
		Layout3D:    geometry.Box{Min: geometry.V(w/2, 0), Max: geometry.V(w, h)},
		FieldOfView: geometry.Degrees(60),
		RayStep:     geometry.Degrees(0.1),
		WalkStep:    5,
		RotateStep:  geometry.Degrees(5),
		DrawTexture: true,
		DrawMap:     true,
		DrawRays:    true,
		ShowFPS:     true,
	}
}

// SettingsFromConfig derives the engine settings from cfg.
func SettingsFromConfig(cfg *config.Config, screen render.Settings) Settings {
	s := DefaultSettings(screen)
	s.FieldOfView = geometry.Degrees(cfg.GetCameraFOV())
	s.RayStep = geometry.Degrees(cfg.GetRayStep())
	s.WalkStep = cfg.GetMoveSpeed()
	s.RotateStep = geometry.Degrees(cfg.GetRotSpeed())
	s.Textures = cfg.Graphics.Textures
	s.DrawMap = cfg.Display.ShowOverlay
	s.DrawRays = cfg.Display.ShowOverlay
	if !s.DrawMap {
		s.Layout3D = screen.Bounds()
	}
	return s
}

// RayCount is the number of rays cast per frame.
func (s Settings) RayCount() int {
	step := s.RayStep.Radians()
	if step <= 0 {
		return int(s.Layout3D.Width())
	}
	// tolerance keeps an exact division from rounding up to an extra ray
	n := int(s.FieldOfView.Radians()/step + 1 - 1e-9)
	return max(n, 1)
}

func (s Settings) textureName(id uint8) string {
	if int(id) >= len(s.Textures) {
		return ""
	}
	return s.Textures[id]
}
