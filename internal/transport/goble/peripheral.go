package goble

import (
	"sync"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/srg/gatelink/internal/transport"
)

// blePeripheral is a connected go-ble client plus its discovered profile.
type blePeripheral struct {
	addr     string
	logger   *logrus.Logger
	services []transport.Service

	mu           sync.Mutex
	client       ble.Client
	disconnected chan struct{}
	closed       bool
}

func newPeripheral(addr string, client ble.Client, profile *ble.Profile, logger *logrus.Logger) *blePeripheral {
	p := &blePeripheral{
		addr:         addr,
		logger:       logger,
		client:       client,
		disconnected: make(chan struct{}),
	}

	for _, svc := range profile.Services {
		s := &bleService{uuid: svc.UUID.String()}
		for _, char := range svc.Characteristics {
			s.chars = append(s.chars, &bleCharacteristic{
				char:       char,
				peripheral: p,
			})
		}
		p.services = append(p.services, s)
	}

	// Relay the client's disconnect signal so the session sees unexpected
	// drops without polling.
	go func() {
		<-client.Disconnected()
		p.logger.WithField("address", addr).Warn("BLE link reported disconnection")
		p.signalDisconnected()
	}()

	return p
}

func (p *blePeripheral) Addr() string { return p.addr }

func (p *blePeripheral) Services() []transport.Service { return p.services }

func (p *blePeripheral) Disconnected() <-chan struct{} { return p.disconnected }

func (p *blePeripheral) signalDisconnected() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.disconnected)
	}
}

// Close tears down the link. Idempotent; the disconnect channel closes either
// way.
func (p *blePeripheral) Close() error {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.mu.Unlock()

	p.signalDisconnected()
	if client == nil {
		return nil
	}

	p.logger.WithField("address", p.addr).Info("Disconnecting BLE device...")
	if err := client.CancelConnection(); err != nil {
		return NormalizeError(err)
	}
	return nil
}

// activeClient returns the live client or a typed not-connected error.
func (p *blePeripheral) activeClient() (ble.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil || p.closed {
		return nil, transport.ErrNotConnected
	}
	return p.client, nil
}

type bleService struct {
	uuid  string
	chars []transport.Characteristic
}

func (s *bleService) UUID() string { return s.uuid }

func (s *bleService) Characteristics() []transport.Characteristic { return s.chars }
