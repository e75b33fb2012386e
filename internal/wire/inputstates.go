package wire

import (
	"encoding/json"
	"sort"

	"github.com/srg/gatelink/internal/gate"
)

// Input live state travels in one of three historical shapes:
//
//	legacy wrapped   {"states": {"in1": true}, "raw_values": {"in3": 1.65}}
//	compact object   {"in1": {"a": true, "v": 1.65}, "in2": {"a": false}}
//	mixed            {"in1": true, "in3": [true, 1.65]}
//
// In every shape a voltage accompanies only resistance-sensing channels.
// All three decode to the same []gate.InputChannelState, sorted by name.

type inputStateShape int

const (
	stateShapeInvalid inputStateShape = iota
	stateShapeLegacyWrapped
	stateShapeCompactObject
	stateShapeMixed
)

func detectInputStateShape(data []byte) inputStateShape {
	if sniffShape(data) != shapeObject {
		return stateShapeInvalid
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return stateShapeInvalid
	}
	if inner, ok := probe["states"]; ok && sniffShape(inner) == shapeObject {
		return stateShapeLegacyWrapped
	}
	// Compact entries are objects; the mixed shape carries bare booleans or
	// [active, voltage] pairs. One entry decides for the whole payload.
	for _, raw := range probe {
		if sniffShape(raw) == shapeObject {
			return stateShapeCompactObject
		}
		return stateShapeMixed
	}
	return stateShapeMixed // empty payload: no channels reported
}

// DecodeInputStates decodes any of the three supported shapes into a
// normalized per-channel state set sorted by channel name.
func DecodeInputStates(data []byte) ([]gate.InputChannelState, error) {
	var (
		states []gate.InputChannelState
		err    error
	)

	switch detectInputStateShape(data) {
	case stateShapeLegacyWrapped:
		states, err = decodeLegacyWrappedStates(data)
	case stateShapeCompactObject:
		states, err = decodeCompactStates(data)
	case stateShapeMixed:
		states, err = decodeMixedStates(data)
	default:
		return nil, decodeErrf("input_states", "payload is not a JSON object")
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].Name < states[j].Name
	})
	return states, nil
}

func decodeLegacyWrappedStates(data []byte) ([]gate.InputChannelState, error) {
	var wrapper struct {
		States    map[string]bool    `json:"states"`
		RawValues map[string]float64 `json:"raw_values"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, decodeErrf("input_states", "invalid legacy payload: %v", err)
	}

	states := make([]gate.InputChannelState, 0, len(wrapper.States))
	for name, active := range wrapper.States {
		state := gate.InputChannelState{Name: name, Active: active}
		if v, ok := wrapper.RawValues[name]; ok {
			state.HasVoltage = true
			state.Voltage = v
		}
		states = append(states, state)
	}
	return states, nil
}

func decodeCompactStates(data []byte) ([]gate.InputChannelState, error) {
	var channels map[string]struct {
		Active  bool     `json:"a"`
		Voltage *float64 `json:"v"`
	}
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, decodeErrf("input_states", "invalid compact payload: %v", err)
	}

	states := make([]gate.InputChannelState, 0, len(channels))
	for name, entry := range channels {
		state := gate.InputChannelState{Name: name, Active: entry.Active}
		if entry.Voltage != nil {
			state.HasVoltage = true
			state.Voltage = *entry.Voltage
		}
		states = append(states, state)
	}
	return states, nil
}

func decodeMixedStates(data []byte) ([]gate.InputChannelState, error) {
	var channels map[string]json.RawMessage
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, decodeErrf("input_states", "invalid payload: %v", err)
	}

	states := make([]gate.InputChannelState, 0, len(channels))
	for name, raw := range channels {
		state := gate.InputChannelState{Name: name}
		if sniffShape(raw) == shapeArray {
			// Resistance-sensing channel: [active, voltage]
			var pair []json.RawMessage
			if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
				return nil, decodeErrf("input_states", "channel %q: expected [active, voltage] pair", name)
			}
			if err := json.Unmarshal(pair[0], &state.Active); err != nil {
				return nil, decodeErrf("input_states", "channel %q: active flag: %v", name, err)
			}
			if err := json.Unmarshal(pair[1], &state.Voltage); err != nil {
				return nil, decodeErrf("input_states", "channel %q: voltage: %v", name, err)
			}
			state.HasVoltage = true
		} else {
			// Digital channel: bare boolean
			if err := json.Unmarshal(raw, &state.Active); err != nil {
				return nil, decodeErrf("input_states", "channel %q: expected boolean: %v", name, err)
			}
		}
		states = append(states, state)
	}
	return states, nil
}
