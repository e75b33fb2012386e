package main

import (
	"errors"

	"github.com/srg/gatelink/internal/session"
	"github.com/srg/gatelink/internal/transport"
)

// FormatUserError rewrites the error kinds a user can act on into plain
// instructions; everything else passes through unchanged.
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, transport.ErrPermissionDenied):
		return "Bluetooth permission denied - grant Bluetooth access to this application and retry"
	case errors.Is(err, transport.ErrUnsupported):
		return "Bluetooth is unavailable - check that the adapter is present and powered on"
	case errors.Is(err, transport.ErrConnectTimeout):
		return "connection timed out - make sure the controller is in range and retry"
	case errors.Is(err, session.ErrRequiredEndpointMissing):
		return "this device does not expose the gate control service - likely a firmware mismatch"
	case errors.Is(err, session.ErrEndpointUnavailable):
		return err.Error() + " (older firmware - the feature is unavailable on this device)"
	default:
		return err.Error()
	}
}
