package wire

import "fmt"

// MaxPayloadBytes is the largest payload the link delivers in one frame.
// Encoders must stay within it; the ultra-compact input-config encoding
// exists for exactly this reason.
const MaxPayloadBytes = 186

// DecodeError is the only error kind decoders in this package return.
// Decoders are total: malformed input yields a DecodeError, never a panic,
// and unknown enumeration tokens degrade to their documented unknown variant
// instead of failing the payload.
type DecodeError struct {
	Family string // payload family: "status", "config", "input_config", "input_states", "command_result"
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Family, e.Reason)
}

// Is matches any two DecodeErrors of the same family, so callers can test
// errors.Is(err, &DecodeError{Family: "status"}) without caring about the
// reason text.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return t.Family == "" || t.Family == e.Family
}

func decodeErrf(family, format string, args ...any) *DecodeError {
	return &DecodeError{Family: family, Reason: fmt.Sprintf(format, args...)}
}
