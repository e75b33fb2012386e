package goble

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/gatelink/internal/transport"
)

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want transport.ErrorKind
	}{
		{"bluetooth off", "Bluetooth is turned off", transport.Unsupported},
		{"invalid manager state", "central manager has invalid state: have=4 want=5: is Bluetooth turned on?", transport.Unsupported},
		{"not authorized", "operation not authorized", transport.PermissionDenied},
		{"permission denied", "scan failed: permission denied", transport.PermissionDenied},
		{"not permitted", "operation not permitted", transport.PermissionDenied},
		{"disconnected", "peripheral disconnected", transport.NotConnected},
		{"already connected", "device already connected", transport.AlreadyConnected},
		{"deadline", "context deadline exceeded", transport.ConnectTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NormalizeError(errors.New(tt.in))
			assert.True(t, transport.IsKind(err, tt.want), "got %v", err)
			// Original context stays in the chain for logs.
			assert.Contains(t, err.Error(), tt.in)
		})
	}

	t.Run("unknown errors pass through unchanged", func(t *testing.T) {
		in := errors.New("something else entirely")
		assert.Equal(t, in, NormalizeError(in))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, NormalizeError(nil))
	})
}
