// Package sim is a radio-less transport serving internally consistent canned
// data. It satisfies the same contract as the go-ble transport, including
// notification cadence, so the session layer, the CLI demo mode, and the test
// suite run against it unchanged.
package sim

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/gatelink/internal/gate"
	"github.com/srg/gatelink/internal/transport"
)

const (
	// DeviceName is the advertised name of the simulated controller. It
	// carries the same prefix real firmware advertises so name-prefix
	// scanning finds it.
	DeviceName = "GATE-SIM"
	// DeviceAddr is the fixed address the simulated controller answers on.
	DeviceAddr = "00:11:22:33:44:55"

	defaultPushInterval = 500 * time.Millisecond
	advertiseInterval   = 200 * time.Millisecond
)

// Option configures the simulated transport.
type Option func(*Transport)

// WithRequiredOnly omits the optional configuration and diagnostics services,
// mimicking older firmware that only exposes the gate-control service.
func WithRequiredOnly() Option {
	return func(t *Transport) { t.requiredOnly = true }
}

// WithPushInterval sets the status notification cadence.
func WithPushInterval(d time.Duration) Option {
	return func(t *Transport) { t.pushInterval = d }
}

// WithStatusScript replaces the default status push sequence. The script is
// played once in order; the last frame then repeats at the push cadence.
func WithStatusScript(script []gate.Status) Option {
	return func(t *Transport) { t.script = script }
}

// Transport is the simulated radio. A single peripheral is reachable at
// DeviceAddr; Dial to any other address fails like an out-of-range device.
type Transport struct {
	logger       *logrus.Logger
	requiredOnly bool
	pushInterval time.Duration
	script       []gate.Status

	peripheral *peripheral
}

func New(logger *logrus.Logger, opts ...Option) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	t := &Transport{
		logger:       logger,
		pushInterval: defaultPushInterval,
		script:       defaultScript(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// defaultScript is a quiet gate: closed, motors parked.
func defaultScript() []gate.Status {
	return []gate.Status{
		{State: gate.StateClosed, Motor1Percent: 0, Motor2Percent: 0},
	}
}

// Scan re-advertises the simulated controller at a fixed cadence until ctx is
// done. Matches real-radio behavior where the same device appears repeatedly.
func (t *Transport) Scan(ctx context.Context, allowDup bool, handler func(transport.Advertisement)) error {
	adv := advertisement{}
	handler(adv)
	if !allowDup {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(advertiseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			handler(adv)
		}
	}
}

// Dial answers only on DeviceAddr, like a single device in range.
func (t *Transport) Dial(ctx context.Context, addr string) (transport.Peripheral, error) {
	if addr != DeviceAddr {
		return nil, &transport.Error{Kind: transport.ConnectTimeout, Msg: "no simulated device at " + addr}
	}
	select {
	case <-ctx.Done():
		return nil, transport.ErrConnectTimeout
	default:
	}

	t.logger.WithField("address", addr).Info("Simulated device connected")
	p := newPeripheral(t)
	t.peripheral = p
	return p, nil
}

// DropLink severs the current connection as if the radio link failed,
// exercising the unexpected-disconnect path.
func (t *Transport) DropLink() {
	if t.peripheral != nil {
		t.peripheral.drop()
	}
}

// PushStatusFrame injects a raw status frame into the active subscription,
// bypassing the script. Used to deliver malformed or hand-built payloads.
func (t *Transport) PushStatusFrame(frame []byte) {
	if t.peripheral != nil {
		t.peripheral.pushStatus(frame)
	}
}

type advertisement struct{}

func (advertisement) LocalName() string { return DeviceName }

func (advertisement) Addr() string { return DeviceAddr }

func (advertisement) RSSI() int { return -52 }

func (advertisement) Connectable() bool { return true }

func (advertisement) Services() []string { return nil }
