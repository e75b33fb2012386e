// Package transport defines the radio-facing contract the session layer
// programs against. Two implementations exist: goble wraps a real BLE
// adapter, sim serves canned data for tests and radio-less demonstration.
package transport

import (
	"context"
	"time"
)

// Property is a characteristic access-mode bit set.
type Property uint8

const (
	PropRead Property = 1 << iota
	PropWrite
	PropWriteNoResponse
	PropNotify
)

// Has reports whether all bits of p are present.
func (props Property) Has(p Property) bool {
	return props&p == p
}

// Advertisement is one scan result sample.
type Advertisement interface {
	LocalName() string
	Addr() string
	RSSI() int
	Connectable() bool
	Services() []string
}

// Transport produces scan results and peripheral connections. Scan blocks
// until ctx is done or the radio fails, invoking handler for each
// advertisement; Dial connects, discovers the GATT profile, and returns a
// ready Peripheral.
type Transport interface {
	Scan(ctx context.Context, allowDup bool, handler func(Advertisement)) error
	Dial(ctx context.Context, addr string) (Peripheral, error)
}

// Peripheral is a connected device with a discovered profile.
type Peripheral interface {
	Addr() string
	Services() []Service
	// Disconnected is closed when the link drops, whether requested or not.
	Disconnected() <-chan struct{}
	Close() error
}

// Service is a discovered GATT service.
type Service interface {
	UUID() string
	Characteristics() []Characteristic
}

// Characteristic is a discovered GATT characteristic handle. Read, Write and
// Subscribe are the transport round-trips; everything above them is
// synchronous. Subscribe delivers each notification payload to handler until
// Unsubscribe or disconnect; one bad payload must not stop delivery.
type Characteristic interface {
	UUID() string
	Properties() Property
	Read(timeout time.Duration) ([]byte, error)
	Write(data []byte, withResponse bool, timeout time.Duration) error
	Subscribe(handler func(data []byte)) error
	Unsubscribe() error
}
