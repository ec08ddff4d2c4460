package input

import "strings"

// Action is a backend-neutral player command.
type Action int

const (
	ActionNone Action = iota
	Exit
	Forward
	Backward
	TurnLeft
	TurnRight
	StrafeLeft
	StrafeRight
	Use
	ToggleTexture
	ToggleMap
	ToggleRays
	actionCount
)

var actionNames = [...]string{
	ActionNone:    "none",
	Exit:          "exit",
	Forward:       "forward",
	Backward:      "backward",
	TurnLeft:      "turn_left",
	TurnRight:     "turn_right",
	StrafeLeft:    "strafe_left",
	StrafeRight:   "strafe_right",
	Use:           "use",
	ToggleTexture: "toggle_texture",
	ToggleMap:     "toggle_map",
	ToggleRays:    "toggle_rays",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// IsContinuous reports whether the action repeats every frame while its key
// is held. Other actions fire once per key press.
func (a Action) IsContinuous() bool {
	switch a {
	case Forward, Backward, TurnLeft, TurnRight, StrafeLeft, StrafeRight:
		return true
	}
	return false
}

// ParseAction looks an action up by its String name, case-insensitively.
func ParseAction(name string) (Action, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a := ActionNone + 1; a < actionCount; a++ {
		if actionNames[a] == name {
			return a, true
		}
	}
	return ActionNone, false
}

// Actions returns every bindable action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, actionCount-1)
	for a := ActionNone + 1; a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}
