package wire_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/gatelink/internal/gate"
	"github.com/srg/gatelink/internal/wire"
)

func TestDecodeInputStatesShapes(t *testing.T) {
	expected := []gate.InputChannelState{
		{Name: "in1", Active: true},
		{Name: "in2", Active: false},
		{Name: "in7", Active: true, HasVoltage: true, Voltage: 1.65},
	}

	tests := []struct {
		name    string
		payload string
	}{
		{
			"legacy wrapped",
			`{"states":{"in1":true,"in2":false,"in7":true},"raw_values":{"in7":1.65}}`,
		},
		{
			"compact object",
			`{"in1":{"a":true},"in2":{"a":false},"in7":{"a":true,"v":1.65}}`,
		},
		{
			"mixed booleans and pairs",
			`{"in1":true,"in2":false,"in7":[true,1.65]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states, err := wire.DecodeInputStates([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, expected, states)
		})
	}
}

func TestDecodeInputStatesEdgeCases(t *testing.T) {
	t.Run("empty object reports no channels", func(t *testing.T) {
		states, err := wire.DecodeInputStates([]byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, states)
	})

	t.Run("voltage only on channels that report one", func(t *testing.T) {
		states, err := wire.DecodeInputStates([]byte(`{"in1":{"a":true},"in2":{"a":true,"v":0.0}}`))
		require.NoError(t, err)

		require.Len(t, states, 2)
		assert.False(t, states[0].HasVoltage)
		assert.True(t, states[1].HasVoltage)
		assert.Equal(t, 0.0, states[1].Voltage)
	})

	t.Run("legacy voltage without matching state is ignored", func(t *testing.T) {
		states, err := wire.DecodeInputStates([]byte(
			`{"states":{"in1":true},"raw_values":{"in9":2.5}}`))
		require.NoError(t, err)

		require.Len(t, states, 1)
		assert.Equal(t, "in1", states[0].Name)
		assert.False(t, states[0].HasVoltage)
	})
}

func TestDecodeInputStatesMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty payload", ``},
		{"array payload", `[true,false]`},
		{"truncated JSON", `{"in1":tru`},
		{"pair with one element", `{"in7":[true]}`},
		{"pair with three elements", `{"in7":[true,1.65,0]}`},
		{"pair with swapped types", `{"in7":[1.65,true]}`},
		{"non-boolean digital state", `{"in1":"on"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wire.DecodeInputStates([]byte(tt.payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, &wire.DecodeError{Family: "input_states"}),
				"want input_states decode error, got %v", err)
		})
	}
}
