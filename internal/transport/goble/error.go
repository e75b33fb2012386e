package goble

import (
	"fmt"
	"strings"

	"github.com/srg/gatelink/internal/transport"
)

// NormalizeError maps known go-ble error strings to typed transport errors.
// It ensures consistent handling even if the upstream library changes
// messages slightly. Returns wrapped errors to preserve original context.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case msg == "central manager has invalid state: have=4 want=5: is Bluetooth turned on?":
		return fmt.Errorf("%w: %v", transport.ErrUnsupported, err)
	case containsIgnoreCase(msg, "bluetooth is turned off"):
		return fmt.Errorf("%w: %v", transport.ErrUnsupported, err)
	case containsIgnoreCase(msg, "not authorized"),
		containsIgnoreCase(msg, "permission denied"),
		containsIgnoreCase(msg, "operation not permitted"):
		return fmt.Errorf("%w: %v", transport.ErrPermissionDenied, err)
	case containsIgnoreCase(msg, "device not connected"),
		containsIgnoreCase(msg, "disconnected"):
		return fmt.Errorf("%w: %v", transport.ErrNotConnected, err)
	case containsIgnoreCase(msg, "device already connected"):
		return fmt.Errorf("%w: %v", transport.ErrAlreadyConnected, err)
	case containsIgnoreCase(msg, "context deadline exceeded"):
		return fmt.Errorf("%w: %v", transport.ErrConnectTimeout, err)
	default:
		return err
	}
}

// containsIgnoreCase checks the substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
