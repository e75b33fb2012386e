package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/gatelink/internal/gate"
)

func TestInputFunctionCodes(t *testing.T) {
	t.Run("every wire code round-trips through the table", func(t *testing.T) {
		for code := 0; code <= int(gate.FunctionStepLogic); code++ {
			fn := gate.InputFunctionFromCode(code)
			assert.NotEqual(t, gate.FunctionUnknown, fn, "code %d", code)
			assert.Equal(t, code, fn.Code(), "code %d", code)
		}
	})

	t.Run("out-of-table codes degrade to unknown", func(t *testing.T) {
		assert.Equal(t, gate.FunctionUnknown, gate.InputFunctionFromCode(18))
		assert.Equal(t, gate.FunctionUnknown, gate.InputFunctionFromCode(99))
		assert.Equal(t, gate.FunctionUnknown, gate.InputFunctionFromCode(-1))
	})

	t.Run("unknown never reaches the wire", func(t *testing.T) {
		assert.Equal(t, int(gate.FunctionNone), gate.FunctionUnknown.Code())
	})

	t.Run("token names round-trip", func(t *testing.T) {
		for code := 0; code <= int(gate.FunctionStepLogic); code++ {
			fn := gate.InputFunction(code)
			assert.Equal(t, fn, gate.InputFunctionFromToken(fn.String()), "function %s", fn)
		}
		assert.Equal(t, gate.FunctionUnknown, gate.InputFunctionFromToken("no_such_function"))
	})
}

func TestInputTypeCodes(t *testing.T) {
	assert.Equal(t, gate.InputTypeNC, gate.InputTypeFromCode(1))
	assert.Equal(t, gate.InputTypeNO, gate.InputTypeFromCode(2))
	assert.Equal(t, gate.InputTypeResistive, gate.InputTypeFromCode(3))
	assert.Equal(t, gate.InputTypeUnknown, gate.InputTypeFromCode(0))
	assert.Equal(t, gate.InputTypeUnknown, gate.InputTypeFromCode(7))

	assert.Equal(t, gate.InputTypeResistive, gate.InputTypeFromToken("resistive"))
	assert.Equal(t, gate.InputTypeResistive, gate.InputTypeFromToken("resistance"))
	assert.Equal(t, gate.InputTypeUnknown, gate.InputTypeFromToken("capacitive"))
}

func TestDefaultNumericConfig(t *testing.T) {
	cfg := gate.DefaultNumericConfig()

	assert.Equal(t, 15.0, cfg.Motor1RunTime)
	assert.Equal(t, 0.5, cfg.Motor1SlowSpeed)
	assert.Equal(t, 50.0, cfg.Partial1Percent)
	assert.Equal(t, 0.0, cfg.AutoCloseTime)
	assert.False(t, cfg.BackjumpEnabled)
	assert.True(t, cfg.PhotocellStopOnClose)
	assert.True(t, cfg.PreflashEnabled)
}
