package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/gatelink/internal/gate"
	"github.com/srg/gatelink/internal/gatt"
	"github.com/srg/gatelink/internal/session"
	"github.com/srg/gatelink/internal/testutils"
	"github.com/srg/gatelink/internal/transport"
	"github.com/srg/gatelink/internal/transport/sim"
)

const (
	testPushInterval = 10 * time.Millisecond
	eventWait        = 2 * time.Second
)

// newConnected builds a session over a fresh simulated transport and connects
// it, failing the test on any setup error.
func newConnected(t *testing.T, opts ...sim.Option) (*session.Session, *sim.Transport) {
	t.Helper()
	th := testutils.NewTestHelper(t)

	opts = append([]sim.Option{sim.WithPushInterval(testPushInterval)}, opts...)
	tr := sim.New(th.Logger, opts...)
	sess := session.New(tr, th.Logger)

	require.NoError(t, sess.Connect(context.Background(), sim.DeviceAddr, 5*time.Second))
	t.Cleanup(func() { _ = sess.Disconnect() })
	return sess, tr
}

// waitForEvent consumes the event stream until match returns true.
func waitForEvent(t *testing.T, sess *session.Session, match func(session.Event) bool) session.Event {
	t.Helper()
	deadline := time.After(eventWait)
	for {
		select {
		case ev := <-sess.Events():
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for session event")
			return session.Event{}
		}
	}
}

func TestScan(t *testing.T) {
	t.Run("finds the controller by name prefix", func(t *testing.T) {
		th := testutils.NewTestHelper(t)
		sess := session.New(sim.New(th.Logger), th.Logger)

		devices, err := sess.Scan(context.Background(), session.ScanOptions{
			Timeout:    300 * time.Millisecond,
			NamePrefix: "GATE-",
		})
		require.NoError(t, err)

		require.Contains(t, devices, sim.DeviceAddr)
		assert.Equal(t, sim.DeviceName, devices[sim.DeviceAddr].Name)
		assert.Equal(t, session.StateIdle, sess.State())
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		th := testutils.NewTestHelper(t)
		sess := session.New(sim.New(th.Logger), th.Logger)

		devices, err := sess.Scan(context.Background(), session.ScanOptions{
			Timeout:    150 * time.Millisecond,
			NamePrefix: "DOOR-",
		})
		require.NoError(t, err)
		assert.Empty(t, devices)
	})

	t.Run("repeated sightings update instead of duplicating", func(t *testing.T) {
		th := testutils.NewTestHelper(t)
		sess := session.New(sim.New(th.Logger), th.Logger)

		// The simulated controller re-advertises every 200ms; half a second
		// guarantees several sightings of the same device.
		devices, err := sess.Scan(context.Background(), session.ScanOptions{
			Timeout: 500 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Len(t, devices, 1)
	})

	t.Run("scan is restartable", func(t *testing.T) {
		th := testutils.NewTestHelper(t)
		sess := session.New(sim.New(th.Logger), th.Logger)

		for i := 0; i < 2; i++ {
			devices, err := sess.Scan(context.Background(), session.ScanOptions{
				Timeout: 100 * time.Millisecond,
			})
			require.NoError(t, err)
			assert.Len(t, devices, 1)
		}
	})
}

func TestConnectLifecycle(t *testing.T) {
	t.Run("connect binds every endpoint of current firmware", func(t *testing.T) {
		sess, _ := newConnected(t)

		assert.Equal(t, session.StateConnected, sess.State())
		for _, spec := range gatt.Endpoints() {
			assert.True(t, sess.EndpointAvailable(spec.Endpoint), "endpoint %s", spec.Endpoint)
		}
	})

	t.Run("connect while connected is rejected", func(t *testing.T) {
		sess, _ := newConnected(t)

		err := sess.Connect(context.Background(), sim.DeviceAddr, time.Second)
		assert.ErrorIs(t, err, transport.ErrAlreadyConnected)
	})

	t.Run("dial to an absent device fails as a timeout", func(t *testing.T) {
		th := testutils.NewTestHelper(t)
		sess := session.New(sim.New(th.Logger), th.Logger)

		err := sess.Connect(context.Background(), "ff:ff:ff:ff:ff:ff", time.Second)
		require.Error(t, err)
		assert.True(t, transport.IsKind(err, transport.ConnectTimeout))
		assert.Equal(t, session.StateIdle, sess.State())
	})

	t.Run("disconnect is idempotent", func(t *testing.T) {
		sess, _ := newConnected(t)

		require.NoError(t, sess.Disconnect())
		require.NoError(t, sess.Disconnect())
		assert.Equal(t, session.StateIdle, sess.State())
	})

	t.Run("operations before connecting report not connected", func(t *testing.T) {
		th := testutils.NewTestHelper(t)
		sess := session.New(sim.New(th.Logger), th.Logger)

		_, err := sess.ReadStatus()
		assert.ErrorIs(t, err, transport.ErrNotConnected)
		_, err = sess.Send(gate.NewCommand(gate.CommandOpen))
		assert.ErrorIs(t, err, transport.ErrNotConnected)
	})
}

func TestRequiredOnlyFirmware(t *testing.T) {
	sess, _ := newConnected(t, sim.WithRequiredOnly())

	t.Run("optional endpoints report unavailable", func(t *testing.T) {
		_, err := sess.ReadConfig()
		assert.ErrorIs(t, err, session.ErrEndpointUnavailable)

		err = sess.WriteConfig(gate.DefaultNumericConfig())
		assert.ErrorIs(t, err, session.ErrEndpointUnavailable)

		_, err = sess.ReadInputConfigs()
		assert.ErrorIs(t, err, session.ErrEndpointUnavailable)

		_, err = sess.ReadInputStates()
		assert.ErrorIs(t, err, session.ErrEndpointUnavailable)

		assert.False(t, sess.EndpointAvailable(gatt.EndpointConfig))
	})

	t.Run("status stream still works", func(t *testing.T) {
		sub, err := sess.SubscribeStatus()
		require.NoError(t, err)
		defer sub.Cancel()

		waitForEvent(t, sess, func(ev session.Event) bool {
			return ev.Type == session.EventStatusUpdated
		})
		require.NotNil(t, sess.Model().Status())
	})

	t.Run("commands still work", func(t *testing.T) {
		result, err := sess.Send(gate.NewCommand(gate.CommandOpen))
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Success)
	})
}

func TestStatusPipeline(t *testing.T) {
	t.Run("script plays through to the commanded end state", func(t *testing.T) {
		script := []gate.Status{
			{State: gate.StateOpening, Motor1Percent: 0, Motor1Speed: 0.2},
			{State: gate.StateOpening, Motor1Percent: 12, Motor1Speed: 1},
			{State: gate.StateOpening, Motor1Percent: 25, Motor1Speed: 1},
			{State: gate.StateOpening, Motor1Percent: 87, Motor1Speed: 0.5},
			{State: gate.StateOpen, Motor1Percent: 100},
		}
		sess, _ := newConnected(t, sim.WithStatusScript(script))

		sub, err := sess.SubscribeStatus()
		require.NoError(t, err)
		defer sub.Cancel()

		waitForEvent(t, sess, func(ev session.Event) bool {
			if ev.Type != session.EventStatusUpdated {
				return false
			}
			s := sess.Model().Status()
			return s != nil && s.State == gate.StateOpen && s.Motor1Percent == 100
		})

		final := sess.Model().Status()
		require.NotNil(t, final)
		assert.True(t, final.FullyOpen())
		assert.False(t, final.State.IsMoving())
	})

	t.Run("one bad frame does not stop the stream", func(t *testing.T) {
		// The script is silenced so injected frames are the only traffic.
		sess, tr := newConnected(t, sim.WithPushInterval(time.Hour))

		sub, err := sess.SubscribeStatus()
		require.NoError(t, err)
		defer sub.Cancel()

		tr.PushStatusFrame([]byte(`{"state":"closed"}`))
		waitForEvent(t, sess, func(ev session.Event) bool {
			return ev.Type == session.EventStatusUpdated
		})
		require.NotNil(t, sess.Model().Status())
		assert.Equal(t, gate.StateClosed, sess.Model().Status().State)

		tr.PushStatusFrame([]byte(`{"state": GARBAGE`))
		tr.PushStatusFrame([]byte(`{"state":"opening","m1_percent":40}`))

		waitForEvent(t, sess, func(ev session.Event) bool {
			if ev.Type != session.EventStatusUpdated {
				return false
			}
			s := sess.Model().Status()
			return s != nil && s.State == gate.StateOpening
		})
		assert.Equal(t, 40, sess.Model().Status().Motor1Percent)
	})

	t.Run("duplicate subscription is rejected", func(t *testing.T) {
		sess, _ := newConnected(t)

		sub, err := sess.SubscribeStatus()
		require.NoError(t, err)
		defer sub.Cancel()

		_, err = sess.SubscribeStatus()
		assert.ErrorIs(t, err, session.ErrInvalidState)
	})

	t.Run("explicit read works without a subscription", func(t *testing.T) {
		sess, _ := newConnected(t)

		status, err := sess.ReadStatus()
		require.NoError(t, err)
		assert.Equal(t, gate.StateClosed, status.State)
		require.NotNil(t, sess.Model().Status())
	})
}

func TestUnexpectedDisconnect(t *testing.T) {
	sess, tr := newConnected(t)

	sub, err := sess.SubscribeStatus()
	require.NoError(t, err)
	defer sub.Cancel()

	waitForEvent(t, sess, func(ev session.Event) bool {
		return ev.Type == session.EventStatusUpdated
	})
	lastKnown := sess.Model().Status()
	require.NotNil(t, lastKnown)

	tr.DropLink()

	ev := waitForEvent(t, sess, func(ev session.Event) bool {
		return ev.Type == session.EventConnectionLost
	})
	assert.ErrorIs(t, ev.Err, session.ErrUnexpectedDisconnect)
	assert.Equal(t, session.StateIdle, sess.State())
	assert.ErrorIs(t, sess.LastError(), session.ErrUnexpectedDisconnect)

	t.Run("cached model survives marked stale", func(t *testing.T) {
		assert.True(t, sess.Model().Stale())
		require.NotNil(t, sess.Model().Status())
		assert.Equal(t, lastKnown.State, sess.Model().Status().State)
	})

	t.Run("endpoints report not connected afterwards", func(t *testing.T) {
		_, err := sess.ReadStatus()
		assert.ErrorIs(t, err, transport.ErrNotConnected)
	})
}

func TestCommands(t *testing.T) {
	sess, _ := newConnected(t)

	t.Run("open jumps the device to fully open", func(t *testing.T) {
		result, err := sess.Send(gate.NewCommand(gate.CommandOpen))
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Success)

		status, err := sess.ReadStatus()
		require.NoError(t, err)
		assert.True(t, status.FullyOpen())
	})

	t.Run("stop halts motion", func(t *testing.T) {
		_, err := sess.Send(gate.NewCommand(gate.CommandStop))
		require.NoError(t, err)

		status, err := sess.ReadStatus()
		require.NoError(t, err)
		assert.Equal(t, gate.StateStopped, status.State)
		assert.Zero(t, status.Motor1Speed)
	})

	t.Run("partial1 opens to the configured percentage", func(t *testing.T) {
		_, err := sess.Send(gate.NewCommand(gate.CommandPartial1))
		require.NoError(t, err)

		status, err := sess.ReadStatus()
		require.NoError(t, err)
		assert.Equal(t, gate.StatePartial1, status.State)
		assert.Equal(t, 50, status.Motor1Percent) // default partial1_percent
	})

	t.Run("commands apply in send order", func(t *testing.T) {
		commands := []string{
			gate.CommandOpen, gate.CommandClose, gate.CommandOpen,
			gate.CommandStop, gate.CommandClose,
		}
		for _, name := range commands {
			_, err := sess.Send(gate.NewCommand(name))
			require.NoError(t, err)
		}

		status, err := sess.ReadStatus()
		require.NoError(t, err)
		assert.Equal(t, gate.StateClosed, status.State)
	})
}

func TestConfigOperations(t *testing.T) {
	sess, _ := newConnected(t)

	t.Run("repeated reads agree across wire encodings", func(t *testing.T) {
		// The simulated firmware alternates object and array encodings.
		first, err := sess.ReadConfig()
		require.NoError(t, err)
		second, err := sess.ReadConfig()
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, gate.DefaultNumericConfig(), first)
	})

	t.Run("write round-trips", func(t *testing.T) {
		cfg := gate.DefaultNumericConfig()
		cfg.AutoCloseTime = 30
		cfg.DeadmanMode = true

		require.NoError(t, sess.WriteConfig(cfg))

		got, err := sess.ReadConfig()
		require.NoError(t, err)
		assert.Equal(t, cfg, got)

		require.NotNil(t, sess.Model().Config())
		assert.Equal(t, 30.0, sess.Model().Config().AutoCloseTime)
	})
}

func TestInputOperations(t *testing.T) {
	sess, _ := newConnected(t)

	t.Run("reads normalize across all three wire shapes", func(t *testing.T) {
		// The simulated firmware cycles the three historical shapes; the
		// fields every shape transports must come back identical each time.
		type core struct {
			Channel  int
			Name     string
			Enabled  bool
			Type     gate.InputType
			Function gate.InputFunction
		}
		extract := func(configs []gate.InputChannelConfig) []core {
			out := make([]core, len(configs))
			for i, c := range configs {
				out[i] = core{c.Channel, c.Name, c.Enabled, c.Type, c.Function}
			}
			return out
		}

		first, err := sess.ReadInputConfigs()
		require.NoError(t, err)
		require.Len(t, first, 8)

		for i := 0; i < 2; i++ {
			next, err := sess.ReadInputConfigs()
			require.NoError(t, err)
			assert.Equal(t, extract(first), extract(next), "read %d", i+2)
		}
	})

	t.Run("write round-trips through the tuple shape", func(t *testing.T) {
		configs := []gate.InputChannelConfig{
			{Channel: 0, Name: "in1", Enabled: true, Type: gate.InputTypeNC, Function: gate.FunctionOpenCommand},
			{Channel: 1, Name: "in2", Enabled: true, Type: gate.InputTypeResistive, Function: gate.FunctionEdgeStopClosing},
		}
		require.NoError(t, sess.WriteInputConfigs(configs))
		assert.Equal(t, configs, sess.Model().InputConfigs())
	})

	t.Run("input states carry voltage only on resistive channels", func(t *testing.T) {
		states, err := sess.ReadInputStates()
		require.NoError(t, err)
		require.Len(t, states, 8)

		var withVoltage int
		for _, st := range states {
			if st.HasVoltage {
				withVoltage++
				assert.Equal(t, "in7", st.Name)
				assert.Greater(t, st.Voltage, 0.0)
			}
		}
		assert.Equal(t, 1, withVoltage)
	})
}

func TestSessionErrors(t *testing.T) {
	t.Run("kinds match through errors.Is", func(t *testing.T) {
		err := error(&session.Error{Kind: session.EndpointUnavailable, Msg: "config"})
		assert.True(t, errors.Is(err, session.ErrEndpointUnavailable))
		assert.False(t, errors.Is(err, session.ErrScanFailed))
	})
}
