package transport

import (
	"errors"
	"fmt"
)

// ErrorKind classifies transport failures that callers must react to
// differently: permission problems need user action, unsupported radios are
// terminal, connection states drive retry decisions.
type ErrorKind string

const (
	PermissionDenied ErrorKind = "permission_denied"
	Unsupported      ErrorKind = "unsupported"
	NotConnected     ErrorKind = "not_connected"
	AlreadyConnected ErrorKind = "already_connected"
	ConnectTimeout   ErrorKind = "connect_timeout"
)

// Error is a typed transport failure. Compare with errors.Is against the
// sentinel values below; Is matches on Kind only.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrPermissionDenied = &Error{Kind: PermissionDenied}
	ErrUnsupported      = &Error{Kind: Unsupported}
	ErrNotConnected     = &Error{Kind: NotConnected}
	ErrAlreadyConnected = &Error{Kind: AlreadyConnected}
	ErrConnectTimeout   = &Error{Kind: ConnectTimeout}
)

// IsKind reports whether err carries the given transport error kind.
func IsKind(err error, kind ErrorKind) bool {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Kind == kind
	}
	return false
}
