package input

// Tracker turns raw key states into actions once per frame. Continuous
// actions are emitted on every frame their key is held; the others only on
// the frame the key goes down.
type Tracker struct {
	bindings    Bindings
	prevPressed map[Action]bool
}

func NewTracker(b Bindings) *Tracker {
	return &Tracker{
		bindings:    b,
		prevPressed: make(map[Action]bool, len(b)),
	}
}

// Poll queries pressed for every bound key and returns the actions to run
// this frame, in declaration order.
func (t *Tracker) Poll(pressed func(key string) bool) []Action {
	var out []Action
	for _, a := range Actions() {
		key, ok := t.bindings[a]
		if !ok || key == "" {
			continue
		}
		down := pressed(key)
		justPressed := down && !t.prevPressed[a]
		t.prevPressed[a] = down
		if (a.IsContinuous() && down) || justPressed {
			out = append(out, a)
		}
	}
	return out
}

// Bindings returns the table the tracker polls.
func (t *Tracker) Bindings() Bindings {
	return t.bindings
}
