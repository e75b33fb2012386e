package gate

import "strings"

// State is the gate's discrete operating state as reported by the controller.
type State string

const (
	StateUnknown    State = "unknown"
	StateClosed     State = "closed"
	StateOpen       State = "open"
	StateOpening    State = "opening"
	StateClosing    State = "closing"
	StateStopped    State = "stopped"
	StatePartial1   State = "partial1"
	StatePartial2   State = "partial2"
	StateReversing  State = "reversing"
	StateObstructed State = "obstructed"
)

// stateAliases maps legacy firmware state tokens to their canonical states.
// Older firmware revisions report "idle" instead of "closed" and a single
// "partial_open" instead of the partial1/partial2 pair. Every alias here is
// documented behavior of a deployed firmware; unmapped tokens must stay
// unmapped (they decode to StateUnknown, never a guess).
var stateAliases = map[string]State{
	"idle":         StateClosed,
	"partial_open": StatePartial1,
	"halted":       StateStopped,
}

var knownStates = map[string]State{
	string(StateClosed):     StateClosed,
	string(StateOpen):       StateOpen,
	string(StateOpening):    StateOpening,
	string(StateClosing):    StateClosing,
	string(StateStopped):    StateStopped,
	string(StatePartial1):   StatePartial1,
	string(StatePartial2):   StatePartial2,
	string(StateReversing):  StateReversing,
	string(StateObstructed): StateObstructed,
	string(StateUnknown):    StateUnknown,
}

// ParseState matches a wire state token case-insensitively against the
// canonical state set and the legacy alias table. Unrecognized tokens
// normalize to StateUnknown; parsing never fails.
func ParseState(token string) State {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if s, ok := knownStates[normalized]; ok {
		return s
	}
	if s, ok := stateAliases[normalized]; ok {
		return s
	}
	return StateUnknown
}

func (s State) String() string {
	return string(s)
}

// IsMoving reports whether the gate is currently driving its motors.
func (s State) IsMoving() bool {
	switch s {
	case StateOpening, StateClosing, StateReversing:
		return true
	default:
		return false
	}
}
