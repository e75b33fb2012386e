package wire

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/srg/gatelink/internal/gate"
)

// Input configuration travels in one of three historical shapes:
//
//	legacy wrapped   {"inputs": {"in1": {"channel":0, "enabled":true, "type":"nc",
//	                  "function":"open", "description":"..."}}}
//	compact object   {"in1": {"c":0, "e":true, "t":1, "f":5, "d":"...", "r":10000, "tol":10}}
//	ultra-compact    [["in1", 5, 1, 0], ...]   (name, function code, type code, channel)
//
// Decode accepts all three and normalizes to []gate.InputChannelConfig.
// Encode always emits the ultra-compact array, sorted by channel name: it is
// the only shape guaranteed to fit eight channels inside MaxPayloadBytes.
// The tuple carries no enabled flag, description, or learned resistance;
// a decoded tuple therefore reads as enabled iff a function is assigned,
// with the remaining fields zero.

type inputConfigShape int

const (
	inputShapeInvalid inputConfigShape = iota
	inputShapeLegacyWrapped
	inputShapeCompactObject
	inputShapeUltraCompact
)

// legacy long-key channel object, used inside the "inputs" wrapper
type legacyInputFrame struct {
	Channel          int     `json:"channel"`
	Enabled          bool    `json:"enabled"`
	Type             string  `json:"type"`
	Function         string  `json:"function"`
	Description      string  `json:"description"`
	TargetResistance float64 `json:"target_resistance"`
	TolerancePercent float64 `json:"tolerance_percent"`
}

// compact single-letter-key channel object; t and f may be numeric codes or
// string tokens depending on firmware revision
type compactInputFrame struct {
	Channel          int         `json:"c"`
	Enabled          bool        `json:"e"`
	Type             codeOrToken `json:"t"`
	Function         codeOrToken `json:"f"`
	Description      string      `json:"d"`
	TargetResistance float64     `json:"r"`
	TolerancePercent float64     `json:"tol"`
}

// codeOrToken unmarshals a field that historical encodings carry either as a
// short numeric code or as a string token.
type codeOrToken struct {
	code    int
	token   string
	isToken bool
}

func (c *codeOrToken) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		c.isToken = true
		return json.Unmarshal(data, &c.token)
	}
	return json.Unmarshal(data, &c.code)
}

func (c codeOrToken) inputType() gate.InputType {
	if c.isToken {
		return gate.InputTypeFromToken(c.token)
	}
	return gate.InputTypeFromCode(c.code)
}

func (c codeOrToken) inputFunction() gate.InputFunction {
	if c.isToken {
		return gate.InputFunctionFromToken(c.token)
	}
	return gate.InputFunctionFromCode(c.code)
}

// detectInputConfigShape selects the wire variant by structural inspection:
// a top-level array is ultra-compact, an object with the "inputs" wrapper key
// is legacy, any other object is the compact form.
func detectInputConfigShape(data []byte) inputConfigShape {
	switch sniffShape(data) {
	case shapeArray:
		return inputShapeUltraCompact
	case shapeObject:
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return inputShapeInvalid
		}
		if inner, ok := probe["inputs"]; ok && sniffShape(inner) == shapeObject {
			return inputShapeLegacyWrapped
		}
		return inputShapeCompactObject
	default:
		return inputShapeInvalid
	}
}

// DecodeInputConfigs decodes any of the three supported shapes into a
// normalized configuration set sorted by channel name. A duplicate or
// out-of-range channel index is malformed input.
func DecodeInputConfigs(data []byte) ([]gate.InputChannelConfig, error) {
	var (
		configs []gate.InputChannelConfig
		err     error
	)

	switch detectInputConfigShape(data) {
	case inputShapeLegacyWrapped:
		configs, err = decodeLegacyWrappedInputs(data)
	case inputShapeCompactObject:
		configs, err = decodeCompactInputs(data)
	case inputShapeUltraCompact:
		configs, err = decodeUltraCompactInputs(data)
	default:
		return nil, decodeErrf("input_config", "payload is neither array nor object")
	}
	if err != nil {
		return nil, err
	}

	if err := validateChannels(configs); err != nil {
		return nil, err
	}
	sortInputConfigs(configs)
	return configs, nil
}

func decodeLegacyWrappedInputs(data []byte) ([]gate.InputChannelConfig, error) {
	var wrapper struct {
		Inputs map[string]legacyInputFrame `json:"inputs"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, decodeErrf("input_config", "invalid legacy payload: %v", err)
	}

	configs := make([]gate.InputChannelConfig, 0, len(wrapper.Inputs))
	for name, frame := range wrapper.Inputs {
		configs = append(configs, gate.InputChannelConfig{
			Channel:          frame.Channel,
			Name:             name,
			Enabled:          frame.Enabled,
			Type:             gate.InputTypeFromToken(frame.Type),
			Function:         gate.InputFunctionFromToken(frame.Function),
			Description:      frame.Description,
			TargetResistance: frame.TargetResistance,
			TolerancePercent: frame.TolerancePercent,
		})
	}
	return configs, nil
}

func decodeCompactInputs(data []byte) ([]gate.InputChannelConfig, error) {
	var channels map[string]compactInputFrame
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, decodeErrf("input_config", "invalid compact payload: %v", err)
	}

	configs := make([]gate.InputChannelConfig, 0, len(channels))
	for name, frame := range channels {
		configs = append(configs, gate.InputChannelConfig{
			Channel:          frame.Channel,
			Name:             name,
			Enabled:          frame.Enabled,
			Type:             frame.Type.inputType(),
			Function:         frame.Function.inputFunction(),
			Description:      frame.Description,
			TargetResistance: frame.TargetResistance,
			TolerancePercent: frame.TolerancePercent,
		})
	}
	return configs, nil
}

func decodeUltraCompactInputs(data []byte) ([]gate.InputChannelConfig, error) {
	var tuples [][]json.RawMessage
	if err := json.Unmarshal(data, &tuples); err != nil {
		return nil, decodeErrf("input_config", "invalid tuple payload: %v", err)
	}

	configs := make([]gate.InputChannelConfig, 0, len(tuples))
	for i, tuple := range tuples {
		if len(tuple) != 4 {
			return nil, decodeErrf("input_config", "tuple %d has %d elements, want 4", i, len(tuple))
		}
		var (
			name                      string
			fnCode, typeCode, channel int
		)
		if err := json.Unmarshal(tuple[0], &name); err != nil {
			return nil, decodeErrf("input_config", "tuple %d: name: %v", i, err)
		}
		if err := json.Unmarshal(tuple[1], &fnCode); err != nil {
			return nil, decodeErrf("input_config", "tuple %d: function code: %v", i, err)
		}
		if err := json.Unmarshal(tuple[2], &typeCode); err != nil {
			return nil, decodeErrf("input_config", "tuple %d: type code: %v", i, err)
		}
		if err := json.Unmarshal(tuple[3], &channel); err != nil {
			return nil, decodeErrf("input_config", "tuple %d: channel: %v", i, err)
		}

		fn := gate.InputFunctionFromCode(fnCode)
		configs = append(configs, gate.InputChannelConfig{
			Channel:  channel,
			Name:     name,
			Enabled:  fn != gate.FunctionNone && fn != gate.FunctionUnknown,
			Type:     gate.InputTypeFromCode(typeCode),
			Function: fn,
		})
	}
	return configs, nil
}

// EncodeInputConfigs emits the ultra-compact array shape, sorted by channel
// name so equal configurations encode to identical bytes.
func EncodeInputConfigs(configs []gate.InputChannelConfig) ([]byte, error) {
	sorted := make([]gate.InputChannelConfig, len(configs))
	copy(sorted, configs)
	sortInputConfigs(sorted)

	tuples := make([][]any, len(sorted))
	for i, cfg := range sorted {
		tuples[i] = []any{cfg.Name, cfg.Function.Code(), int(cfg.Type), cfg.Channel}
	}
	data, err := json.Marshal(tuples)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxPayloadBytes {
		return nil, fmt.Errorf("encoded input config is %d bytes, exceeds transport limit of %d", len(data), MaxPayloadBytes)
	}
	return data, nil
}

func validateChannels(configs []gate.InputChannelConfig) error {
	seen := make(map[int]string, len(configs))
	for _, cfg := range configs {
		if cfg.Channel < 0 || cfg.Channel > 7 {
			return decodeErrf("input_config", "channel index %d out of range for input %q", cfg.Channel, cfg.Name)
		}
		if prev, dup := seen[cfg.Channel]; dup {
			return decodeErrf("input_config", "channel %d assigned to both %q and %q", cfg.Channel, prev, cfg.Name)
		}
		seen[cfg.Channel] = cfg.Name
	}
	return nil
}

func sortInputConfigs(configs []gate.InputChannelConfig) {
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
}
