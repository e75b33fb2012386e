// Package session owns the connection lifecycle against one gate controller:
// scan, connect, endpoint binding, the status notification pipeline, and the
// command dispatcher. A Session is an explicit object owned by the caller —
// there is no package-level device state — so tests can run several sessions
// and tear each one down cleanly.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/gatelink/internal/gate"
	"github.com/srg/gatelink/internal/gatt"
	"github.com/srg/gatelink/internal/transport"
)

// State is the session's lifecycle state.
type State string

const (
	StateIdle          State = "idle"
	StateScanning      State = "scanning"
	StateConnecting    State = "connecting"
	StateConnected     State = "connected"
	StateDisconnecting State = "disconnecting"
)

// EventType marks what a session event reports.
type EventType int

const (
	EventDeviceFound EventType = iota
	EventDeviceUpdated
	EventStateChanged
	EventStatusUpdated
	EventConnectionLost
)

// Event is one entry of the session's event stream. Consumers that fall
// behind lose the oldest events, never the newest.
type Event struct {
	Type   EventType
	Device DeviceInfo
	State  State
	Err    error
}

// DeviceInfo is one scan result: opaque transport identifier, advertised
// name, and the latest signal sample.
type DeviceInfo struct {
	ID   string
	Name string
	RSSI int
}

// ScanOptions configures device discovery.
type ScanOptions struct {
	Timeout    time.Duration
	NamePrefix string // only devices whose advertised name has this prefix
}

const (
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 5 * time.Second
	eventBuffer         = 100
)

// Session drives one controller connection at a time over the given
// transport.
type Session struct {
	logger *logrus.Logger
	tr     transport.Transport
	cache  *gate.CachedModel
	events *ringChannel[Event]

	mu         sync.RWMutex
	state      State
	peripheral transport.Peripheral
	bindings   *gatt.BindingSet
	lastErr    error

	// writeMu serializes command writes so they reach the device in Send
	// invocation order.
	writeMu sync.Mutex

	subMu sync.Mutex
	sub   *StatusSubscription

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// New creates an idle session over tr.
func New(tr transport.Transport, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{
		logger:       logger,
		tr:           tr,
		cache:        gate.NewCachedModel(),
		events:       newRingChannel[Event](eventBuffer),
		state:        StateIdle,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastError returns the error that forced the last transition to idle, if
// any.
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Model returns the cached model. It outlives the connection: after an
// unexpected disconnect it still serves last-known values, marked stale.
func (s *Session) Model() *gate.CachedModel {
	return s.cache
}

// Events returns the session event stream.
func (s *Session) Events() <-chan Event {
	return s.events.C()
}

func (s *Session) setState(state State, cause error) {
	s.mu.Lock()
	s.state = state
	s.lastErr = cause
	s.mu.Unlock()
	s.events.Send(Event{Type: EventStateChanged, State: state, Err: cause})
}

// Scan discovers controllers whose advertised name matches opts.NamePrefix.
// It runs until the timeout or ctx cancellation and returns the accumulated
// snapshot; an empty result is not an error. Restartable.
func (s *Session) Scan(ctx context.Context, opts ScanOptions) (map[string]DeviceInfo, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return nil, errf(InvalidState, "cannot scan while %s", state)
	}
	s.state = StateScanning
	s.mu.Unlock()
	defer s.setState(StateIdle, nil)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	s.logger.WithFields(logrus.Fields{
		"timeout":     opts.Timeout,
		"name_prefix": opts.NamePrefix,
	}).Info("Starting device scan...")

	devices := hashmap.New[string, DeviceInfo]()
	err := s.tr.Scan(ctx, true, func(adv transport.Advertisement) {
		if !adv.Connectable() {
			return
		}
		if opts.NamePrefix != "" && !strings.HasPrefix(adv.LocalName(), opts.NamePrefix) {
			return
		}

		info := DeviceInfo{ID: adv.Addr(), Name: adv.LocalName(), RSSI: adv.RSSI()}
		_, existed := devices.Get(info.ID)
		devices.Set(info.ID, info)

		event := Event{Type: EventDeviceFound, Device: info}
		if existed {
			event.Type = EventDeviceUpdated
		} else {
			s.logger.WithFields(logrus.Fields{
				"device":  info.Name,
				"address": info.ID,
				"rssi":    info.RSSI,
			}).Info("Discovered gate controller")
		}
		s.events.Send(event)
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		// Permission and radio-support problems keep their own kind: the
		// caller must react differently (user action vs. retry).
		if transport.IsKind(err, transport.PermissionDenied) || transport.IsKind(err, transport.Unsupported) {
			return nil, err
		}
		return nil, errf(ScanFailed, "%v", err)
	}

	result := make(map[string]DeviceInfo, devices.Len())
	devices.Range(func(id string, info DeviceInfo) bool {
		result[id] = info
		return true
	})
	s.logger.WithField("device_count", len(result)).Info("Scan completed")
	return result, nil
}

// Connect dials the device, discovers its profile, and binds the endpoint
// table. Every required endpoint must bind; optional endpoints bind
// best-effort and dependent operations report unavailable instead of hanging.
func (s *Session) Connect(ctx context.Context, deviceID string, timeout time.Duration) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		if state == StateConnected {
			return transport.ErrAlreadyConnected
		}
		return errf(InvalidState, "cannot connect while %s", state)
	}
	s.state = StateConnecting
	s.mu.Unlock()
	s.events.Send(Event{Type: EventStateChanged, State: StateConnecting})

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	peripheral, err := s.tr.Dial(ctx, deviceID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = transport.ErrConnectTimeout
		} else if !transport.IsKind(err, transport.PermissionDenied) &&
			!transport.IsKind(err, transport.Unsupported) &&
			!transport.IsKind(err, transport.ConnectTimeout) {
			err = errf(ConnectFailed, "%v", err)
		}
		s.setState(StateIdle, err)
		return err
	}

	bindings, err := gatt.Resolve(peripheral.Services())
	if err != nil {
		// Firmware mismatch: the device is present but unusable. Release it.
		if closeErr := peripheral.Close(); closeErr != nil {
			s.logger.WithField("error", closeErr).Warn("Failed to release connection after binding failure")
		}
		var missing *gatt.MissingEndpointError
		if errors.As(err, &missing) {
			err = errf(RequiredEndpointMissing, "%v", err)
		}
		s.setState(StateIdle, err)
		return err
	}

	s.mu.Lock()
	s.peripheral = peripheral
	s.bindings = bindings
	s.state = StateConnected
	s.lastErr = nil
	s.mu.Unlock()
	s.events.Send(Event{Type: EventStateChanged, State: StateConnected})

	s.logger.WithFields(logrus.Fields{
		"address":   deviceID,
		"endpoints": bindings.Bound(),
	}).Info("Gate controller connected")

	go s.watchDisconnect(peripheral)
	return nil
}

// watchDisconnect turns an unsolicited link drop into a clean idle
// transition: bindings invalidated, cache kept but marked stale.
func (s *Session) watchDisconnect(peripheral transport.Peripheral) {
	<-peripheral.Disconnected()

	s.mu.Lock()
	if s.peripheral != peripheral || s.state != StateConnected {
		// Requested disconnect already handled the transition.
		s.mu.Unlock()
		return
	}
	s.peripheral = nil
	bindings := s.bindings
	s.bindings = nil
	s.state = StateIdle
	s.lastErr = ErrUnexpectedDisconnect
	s.mu.Unlock()

	if bindings != nil {
		bindings.Invalidate()
	}
	s.cancelSubscriptionLocal()
	s.cache.MarkStale()

	s.logger.Warn("Connection lost unexpectedly; cached model retained as stale")
	s.events.Send(Event{Type: EventConnectionLost, State: StateIdle, Err: ErrUnexpectedDisconnect})
}

// Disconnect releases the connection. Idempotent: disconnecting an idle
// session is a no-op.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	if s.state != StateConnected || s.peripheral == nil {
		s.mu.Unlock()
		s.logger.Debug("Disconnect called but not connected")
		return nil
	}
	s.state = StateDisconnecting
	peripheral := s.peripheral
	bindings := s.bindings
	s.peripheral = nil
	s.bindings = nil
	s.mu.Unlock()
	s.events.Send(Event{Type: EventStateChanged, State: StateDisconnecting})

	s.cancelSubscriptionLocal()
	if bindings != nil {
		bindings.Invalidate()
	}

	err := peripheral.Close()
	s.setState(StateIdle, nil)
	if err != nil {
		s.logger.WithField("error", err).Warn("Device disconnected with errors")
		return err
	}
	s.logger.Info("Device disconnected")
	return nil
}

// endpoint resolves a bound characteristic, distinguishing "not connected"
// from "this firmware never exposed that endpoint".
func (s *Session) endpoint(ep gatt.Endpoint) (transport.Characteristic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateConnected || s.bindings == nil {
		return nil, transport.ErrNotConnected
	}
	char, ok := s.bindings.Get(ep)
	if !ok {
		return nil, errf(EndpointUnavailable, "endpoint %s not provided by this device", ep)
	}
	return char, nil
}

// EndpointAvailable reports whether an optional endpoint bound on this
// connection, so UIs can disable the features that depend on it.
func (s *Session) EndpointAvailable(ep gatt.Endpoint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateConnected && s.bindings != nil && s.bindings.Available(ep)
}
