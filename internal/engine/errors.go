package engine

import "errors"

var (
	// ErrNoBackend is returned when the engine has no drawing back end.
	ErrNoBackend = errors.New("engine has no backend")
	// ErrRunning is returned by operations refused while the back end runs.
	ErrRunning = errors.New("engine is running")
	// ErrInvalidMap is returned by CheckState when no valid map is registered.
	ErrInvalidMap = errors.New("no valid map registered")
	// ErrPlayerOutside is returned by CheckState when the player is not inside the map.
	ErrPlayerOutside = errors.New("player is outside the map")
)
