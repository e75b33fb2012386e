package session

import (
	"sync"

	"github.com/srg/gatelink/internal/gate"
	"github.com/srg/gatelink/internal/gatt"
	"github.com/srg/gatelink/internal/wire"
)

// StatusSubscription is a cancellable handle on the status push stream.
type StatusSubscription struct {
	session *Session
	once    sync.Once
}

// Cancel stops notification delivery. Immediate, idempotent, and implied by
// any disconnect.
func (sub *StatusSubscription) Cancel() {
	sub.once.Do(func() {
		sub.session.cancelStatusSubscription(sub)
	})
}

// SubscribeStatus enables push notifications on the status endpoint. Each
// frame is decoded, and on success atomically replaces the cached status and
// emits a change event. A frame that fails to decode is logged and dropped —
// one bad frame never tears down the stream.
func (s *Session) SubscribeStatus() (*StatusSubscription, error) {
	char, err := s.endpoint(gatt.EndpointStatus)
	if err != nil {
		return nil, err
	}

	sub := &StatusSubscription{session: s}

	s.subMu.Lock()
	if s.sub != nil {
		s.subMu.Unlock()
		return nil, errf(InvalidState, "status subscription already active")
	}
	s.sub = sub
	s.subMu.Unlock()

	if err := char.Subscribe(s.handleStatusFrame); err != nil {
		s.subMu.Lock()
		s.sub = nil
		s.subMu.Unlock()
		return nil, err
	}

	s.logger.Info("Subscribed to status notifications")
	return sub, nil
}

func (s *Session) handleStatusFrame(data []byte) {
	status, err := wire.DecodeStatus(data)
	if err != nil {
		// Decode failures stay out of the stream: previous cached value
		// holds, and the frame is observable in logs for firmware debugging.
		s.logger.WithFields(map[string]any{
			"error":   err,
			"payload": string(data),
		}).Debug("Dropping undecodable status frame")
		return
	}

	s.cache.SetStatus(status)
	s.events.Send(Event{Type: EventStatusUpdated, State: StateConnected})
}

// ReadStatus issues an explicit read of the status endpoint, independent of
// any push subscription. Used right after connecting so the first data does
// not wait for a push interval; safe concurrently with an active
// subscription.
func (s *Session) ReadStatus() (gate.Status, error) {
	char, err := s.endpoint(gatt.EndpointStatus)
	if err != nil {
		return gate.Status{}, err
	}

	data, err := char.Read(s.readTimeout)
	if err != nil {
		return gate.Status{}, err
	}
	status, err := wire.DecodeStatus(data)
	if err != nil {
		return gate.Status{}, err
	}

	s.cache.SetStatus(status)
	return status, nil
}

func (s *Session) cancelStatusSubscription(sub *StatusSubscription) {
	s.subMu.Lock()
	if s.sub != sub {
		s.subMu.Unlock()
		return
	}
	s.sub = nil
	s.subMu.Unlock()

	char, err := s.endpoint(gatt.EndpointStatus)
	if err != nil {
		// Connection already gone; the transport dropped the subscription
		// with it.
		return
	}
	if err := char.Unsubscribe(); err != nil {
		s.logger.WithField("error", err).Warn("Failed to unsubscribe from status notifications")
	}
}

// cancelSubscriptionLocal clears the subscription handle without a transport
// round-trip, for paths where the connection is already gone.
func (s *Session) cancelSubscriptionLocal() {
	s.subMu.Lock()
	s.sub = nil
	s.subMu.Unlock()
}
