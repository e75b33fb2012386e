package wire_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/gatelink/internal/gate"
	"github.com/srg/gatelink/internal/wire"
)

func TestEncodeCommand(t *testing.T) {
	t.Run("bare command", func(t *testing.T) {
		intent := gate.CommandIntent{Name: gate.CommandOpen, Timestamp: time.Unix(1724630400, 0)}

		data, err := wire.EncodeCommand(intent)
		require.NoError(t, err)
		assert.JSONEq(t, `{"cmd":"open","timestamp":1724630400}`, string(data))
		assert.LessOrEqual(t, len(data), wire.MaxPayloadBytes)
	})

	t.Run("parameter command carries key and value", func(t *testing.T) {
		intent := gate.NewParamCommand(gate.CommandSetParam, "auto_close_time", 45.0)
		intent.Timestamp = time.Time{}

		data, err := wire.EncodeCommand(intent)
		require.NoError(t, err)
		assert.JSONEq(t, `{"cmd":"set_param","key":"auto_close_time","value":45}`, string(data))
	})
}

func TestDecodeCommandResult(t *testing.T) {
	t.Run("ack with data", func(t *testing.T) {
		result, err := wire.DecodeCommandResult([]byte(
			`{"success":true,"message":"opening","data":{"eta_s":14}}`))
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, "opening", result.Message)
		assert.Equal(t, 14.0, result.Data["eta_s"])
	})

	t.Run("nak", func(t *testing.T) {
		result, err := wire.DecodeCommandResult([]byte(`{"success":false,"message":"obstructed"}`))
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.Equal(t, "obstructed", result.Message)
	})

	t.Run("malformed ack is a command_result decode error", func(t *testing.T) {
		_, err := wire.DecodeCommandResult([]byte(`not json`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, &wire.DecodeError{Family: "command_result"}))
	})
}
