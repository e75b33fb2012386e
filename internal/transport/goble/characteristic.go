package goble

import (
	"fmt"
	"time"

	"github.com/go-ble/ble"

	"github.com/srg/gatelink/internal/transport"
)

// bleCharacteristic adapts a discovered ble.Characteristic handle. All
// operations go through the owning peripheral's live client so a dropped
// connection surfaces as a typed not-connected error instead of a nil deref.
type bleCharacteristic struct {
	char       *ble.Characteristic
	peripheral *blePeripheral
}

func (c *bleCharacteristic) UUID() string { return c.char.UUID.String() }

func (c *bleCharacteristic) Properties() transport.Property {
	var props transport.Property
	if c.char.Property&ble.CharRead != 0 {
		props |= transport.PropRead
	}
	if c.char.Property&ble.CharWrite != 0 {
		props |= transport.PropWrite
	}
	if c.char.Property&ble.CharWriteNR != 0 {
		props |= transport.PropWriteNoResponse
	}
	if c.char.Property&(ble.CharNotify|ble.CharIndicate) != 0 {
		props |= transport.PropNotify
	}
	return props
}

// Read fetches the current value with a timeout so an unresponsive device
// cannot block the caller indefinitely.
func (c *bleCharacteristic) Read(timeout time.Duration) ([]byte, error) {
	client, err := c.peripheral.activeClient()
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	type readResult struct {
		data []byte
		err  error
	}
	resultCh := make(chan readResult, 1)
	go func() {
		data, err := client.ReadCharacteristic(c.char)
		resultCh <- readResult{data: data, err: err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, fmt.Errorf("failed to read characteristic %s: %w", c.UUID(), NormalizeError(result.err))
		}
		return result.data, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout reading characteristic %s after %v", c.UUID(), timeout)
	}
}

func (c *bleCharacteristic) Write(data []byte, withResponse bool, timeout time.Duration) error {
	client, err := c.peripheral.activeClient()
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.WriteCharacteristic(c.char, data, !withResponse)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to write characteristic %s: %w", c.UUID(), NormalizeError(err))
		}
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout writing characteristic %s after %v", c.UUID(), timeout)
	}
}

func (c *bleCharacteristic) Subscribe(handler func(data []byte)) error {
	client, err := c.peripheral.activeClient()
	if err != nil {
		return err
	}
	if err := client.Subscribe(c.char, false, func(data []byte) {
		// go-ble reuses its notification buffer; hand subscribers their own copy.
		buf := make([]byte, len(data))
		copy(buf, data)
		handler(buf)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to characteristic %s: %w", c.UUID(), NormalizeError(err))
	}
	return nil
}

// Unsubscribe attempts both notify and indicate modes; it fails only when
// both do.
func (c *bleCharacteristic) Unsubscribe() error {
	client, err := c.peripheral.activeClient()
	if err != nil {
		return err
	}
	err1 := NormalizeError(client.Unsubscribe(c.char, false)) // notify
	err2 := NormalizeError(client.Unsubscribe(c.char, true))  // indicate
	if err1 != nil && err2 != nil {
		return fmt.Errorf("failed to unsubscribe from characteristic %s: notify=%v, indicate=%v", c.UUID(), err1, err2)
	}
	return nil
}
