package session

import "fmt"

// ErrorKind classifies session failures per the retry policy callers need:
// scan and connect failures are retryable, a required-endpoint mismatch is
// terminal for the device, an unavailable optional endpoint only downgrades
// one feature.
type ErrorKind string

const (
	ScanFailed              ErrorKind = "scan_failed"
	ConnectFailed           ErrorKind = "connect_failed"
	RequiredEndpointMissing ErrorKind = "required_endpoint_missing"
	EndpointUnavailable     ErrorKind = "endpoint_unavailable"
	UnexpectedDisconnect    ErrorKind = "unexpected_disconnect"
	InvalidState            ErrorKind = "invalid_state"
)

// Error is a typed session failure; compare with errors.Is against the
// sentinels below. Is matches on Kind only.
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
	ErrScanFailed              = &Error{Kind: ScanFailed}
	ErrConnectFailed           = &Error{Kind: ConnectFailed}
	ErrRequiredEndpointMissing = &Error{Kind: RequiredEndpointMissing}
	ErrEndpointUnavailable     = &Error{Kind: EndpointUnavailable}
	ErrUnexpectedDisconnect    = &Error{Kind: UnexpectedDisconnect}
	ErrInvalidState            = &Error{Kind: InvalidState}
)

func errf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
