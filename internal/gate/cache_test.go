package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/gatelink/internal/gate"
)

func TestCachedModel(t *testing.T) {
	t.Run("starts empty and fresh", func(t *testing.T) {
		m := gate.NewCachedModel()

		assert.Nil(t, m.Status())
		assert.Nil(t, m.Config())
		assert.Nil(t, m.InputConfigs())
		assert.Nil(t, m.InputStates())
		assert.False(t, m.Stale())
	})

	t.Run("mark stale preserves values", func(t *testing.T) {
		m := gate.NewCachedModel()
		m.SetStatus(gate.Status{State: gate.StateOpen, Motor1Percent: 100})
		m.SetInputStates([]gate.InputChannelState{{Name: "in1", Active: true}})

		m.MarkStale()

		assert.True(t, m.Stale())
		require.NotNil(t, m.Status())
		assert.Equal(t, gate.StateOpen, m.Status().State)
		require.Len(t, m.InputStates(), 1)
		assert.True(t, m.InputStates()[0].Active)
	})

	t.Run("status update clears staleness", func(t *testing.T) {
		m := gate.NewCachedModel()
		m.SetStatus(gate.Status{State: gate.StateClosed})
		m.MarkStale()

		m.SetStatus(gate.Status{State: gate.StateOpening})

		assert.False(t, m.Stale())
		assert.Equal(t, gate.StateOpening, m.Status().State)
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		m := gate.NewCachedModel()
		m.SetInputConfigs([]gate.InputChannelConfig{{Channel: 0, Name: "in1"}})

		got := m.InputConfigs()
		got[0].Name = "mutated"

		assert.Equal(t, "in1", m.InputConfigs()[0].Name)
	})
}
