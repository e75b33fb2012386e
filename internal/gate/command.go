package gate

import "time"

// Command names understood by deployed controller firmware.
const (
	CommandOpen     = "open"
	CommandClose    = "close"
	CommandStop     = "stop"
	CommandPartial1 = "partial1"
	CommandPartial2 = "partial2"
	CommandLearn    = "learn" // capture current resistance as target on a channel
	CommandSetParam = "set_param"
)

// CommandIntent is a single operator command heading for the command-in
// endpoint. Construct via NewCommand and treat as immutable; it is passed by
// value everywhere.
type CommandIntent struct {
	Name      string
	Key       string
	Value     any
	Timestamp time.Time
}

// NewCommand creates a bare command intent stamped with the current time.
func NewCommand(name string) CommandIntent {
	return CommandIntent{Name: name, Timestamp: time.Now()}
}

// NewParamCommand creates a keyed command intent, e.g. set_param with a
// parameter name and value.
func NewParamCommand(name, key string, value any) CommandIntent {
	return CommandIntent{Name: name, Key: key, Value: value, Timestamp: time.Now()}
}

// CommandResult is the acknowledgement the controller exposes on the
// command-out endpoint after processing a command. Reading it is best-effort
// diagnostics; the transport write result stays authoritative.
type CommandResult struct {
	Success bool
	Message string
	Data    map[string]any
}
