package input

import "fmt"

// Bindings maps each action to a key name. Key names follow the drawing
// back end, e.g. "W", "Space", "ArrowLeft", "Escape".
type Bindings map[Action]string

// DefaultBindings returns the stock QWERTY layout.
func DefaultBindings() Bindings {
	return Bindings{
		Exit:          "Escape",
		Forward:       "W",
		Backward:      "S",
		TurnLeft:      "A",
		TurnRight:     "D",
		StrafeLeft:    "Q",
		StrafeRight:   "E",
		Use:           "Space",
		ToggleTexture: "T",
		ToggleMap:     "Tab",
		ToggleRays:    "L",
	}
}

// BindingsFromConfig overlays action-name to key-name pairs on the defaults.
// Unknown action names are an error.
func BindingsFromConfig(overrides map[string]string) (Bindings, error) {
	b := DefaultBindings()
	for name, key := range overrides {
		a, ok := ParseAction(name)
		if !ok {
			return nil, fmt.Errorf("unknown input action %q", name)
		}
		b[a] = key
	}
	return b, nil
}

// ActionForKey returns the action bound to key, or ActionNone.
func (b Bindings) ActionForKey(key string) Action {
	for _, a := range Actions() {
		if k, ok := b[a]; ok && k == key {
			return a
		}
	}
	return ActionNone
}

// Keys returns the distinct bound key names.
func (b Bindings) Keys() []string {
	seen := make(map[string]bool, len(b))
	var keys []string
	for _, a := range Actions() {
		if k, ok := b[a]; ok && k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
