// Package goble adapts the go-ble library to the transport contract.
package goble

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
	"github.com/sirupsen/logrus"

	"github.com/srg/gatelink/internal/transport"
)

// DefaultReadTimeout bounds characteristic reads so an unresponsive device
// cannot block a caller indefinitely.
const DefaultReadTimeout = 5 * time.Second

// DeviceFactory creates ble.Device instances (can be overridden in tests)
//
//nolint:revive // DeviceFactory name is intentional for test mocking
var DeviceFactory = func() (ble.Device, error) {
	return darwin.NewDevice()
}

// Transport is the real-radio transport built on go-ble.
type Transport struct {
	logger *logrus.Logger

	mu  sync.Mutex
	dev ble.Device
}

// New creates a go-ble backed transport. The underlying radio is initialized
// lazily on first use so constructing a Transport never touches hardware.
func New(logger *logrus.Logger) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	return &Transport{logger: logger}
}

func (t *Transport) device() (ble.Device, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dev != nil {
		return t.dev, nil
	}
	dev, err := DeviceFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to create BLE device: %w", NormalizeError(err))
	}
	ble.SetDefaultDevice(dev)
	t.dev = dev
	return dev, nil
}

// Scan runs radio discovery until ctx is done, forwarding each advertisement.
func (t *Transport) Scan(ctx context.Context, allowDup bool, handler func(transport.Advertisement)) error {
	dev, err := t.device()
	if err != nil {
		return err
	}

	t.logger.Debug("Starting BLE scan...")
	err = dev.Scan(ctx, allowDup, func(adv ble.Advertisement) {
		handler(newAdvertisement(adv))
	})
	if err != nil {
		return NormalizeError(err)
	}
	return nil
}

// Dial connects to the device at addr and discovers its full GATT profile.
// The returned peripheral owns the ble.Client; Close releases it.
func (t *Transport) Dial(ctx context.Context, addr string) (transport.Peripheral, error) {
	if _, err := t.device(); err != nil {
		return nil, err
	}

	t.logger.WithField("address", addr).Info("Connecting to BLE device...")
	client, err := ble.Dial(ctx, ble.NewAddr(addr))
	if err != nil {
		t.logger.WithFields(logrus.Fields{
			"address": addr,
			"error":   err,
		}).Error("Failed to dial BLE device")
		return nil, NormalizeError(err)
	}

	t.logger.WithField("address", addr).Debug("Discovering services and characteristics...")
	profile, err := client.DiscoverProfile(true)
	if err != nil {
		if cancelErr := client.CancelConnection(); cancelErr != nil {
			t.logger.WithField("cancel_error", cancelErr).Warn("Failed to cancel connection during profile discovery failure")
		}
		return nil, fmt.Errorf("failed to discover profile: %w", NormalizeError(err))
	}

	p := newPeripheral(addr, client, profile, t.logger)
	t.logger.WithFields(logrus.Fields{
		"address":  addr,
		"services": len(profile.Services),
	}).Info("BLE device connected successfully")
	return p, nil
}
