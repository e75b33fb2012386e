package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/gatelink/internal/wire"
)

func TestSensorResistance(t *testing.T) {
	t.Run("divider midpoint reads the pull-up value", func(t *testing.T) {
		ohms, ok := wire.SensorResistance(wire.SupplyVoltage / 2)
		assert.True(t, ok)
		assert.InDelta(t, wire.PullupOhms, ohms, 0.001)
	})

	t.Run("known divider points", func(t *testing.T) {
		// R = V * 10k / (3.3 - V)
		ohms, ok := wire.SensorResistance(1.5)
		assert.True(t, ok)
		assert.InDelta(t, 8333.333, ohms, 0.01)

		ohms, ok = wire.SensorResistance(3.0)
		assert.True(t, ok)
		assert.InDelta(t, 100000.0, ohms, 0.1)
	})

	t.Run("readings on the singularity report not ok", func(t *testing.T) {
		for _, v := range []float64{0, -0.1, wire.SupplyVoltage, wire.SupplyVoltage + 0.5} {
			ohms, ok := wire.SensorResistance(v)
			assert.False(t, ok, "voltage %v", v)
			assert.Zero(t, ohms, "voltage %v", v)
		}
	})
}
