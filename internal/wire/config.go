package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/gatelink/internal/gate"
)

// NumConfigParams is the parameter count of the fixed-order array encoding.
// Firmware and client must agree on it exactly; an array payload of any other
// length is rejected.
const NumConfigParams = 26

// ConfigParam is one parameter slot of the numeric configuration: its wire
// key, its array position (slice index in ConfigParams), and a view into the
// backing struct field. Exactly one of num/flag is set.
type ConfigParam struct {
	Key  string
	num  *float64
	flag *bool
}

// IsFlag reports whether the parameter is a boolean feature flag.
func (p ConfigParam) IsFlag() bool { return p.flag != nil }

// Float returns the numeric value; flags read as 0/1.
func (p ConfigParam) Float() float64 {
	if p.flag != nil {
		if *p.flag {
			return 1
		}
		return 0
	}
	return *p.num
}

func (p ConfigParam) setFloat(v float64) {
	if p.flag != nil {
		*p.flag = v != 0
		return
	}
	*p.num = v
}

// ConfigParams returns the fixed-order parameter table over c. The order is
// the wire array order and must never change; append-only.
func ConfigParams(c *gate.NumericConfig) []ConfigParam {
	return []ConfigParam{
		{Key: "m1_run_time", num: &c.Motor1RunTime},
		{Key: "m2_run_time", num: &c.Motor2RunTime},
		{Key: "m1_speed", num: &c.Motor1Speed},
		{Key: "m2_speed", num: &c.Motor2Speed},
		{Key: "m1_slow_speed", num: &c.Motor1SlowSpeed},
		{Key: "m2_slow_speed", num: &c.Motor2SlowSpeed},
		{Key: "m1_accel", num: &c.Motor1Acceleration},
		{Key: "m2_accel", num: &c.Motor2Acceleration},
		{Key: "m1_decel", num: &c.Motor1Deceleration},
		{Key: "m2_decel", num: &c.Motor2Deceleration},
		{Key: "m1_soft_start", num: &c.Motor1SoftStartTime},
		{Key: "m2_soft_start", num: &c.Motor2SoftStartTime},
		{Key: "m1_soft_stop_percent", num: &c.Motor1SoftStopPercent},
		{Key: "m2_soft_stop_percent", num: &c.Motor2SoftStopPercent},
		{Key: "partial1_percent", num: &c.Partial1Percent},
		{Key: "partial2_percent", num: &c.Partial2Percent},
		{Key: "m2_open_delay", num: &c.Motor2OpenDelay},
		{Key: "m1_close_delay", num: &c.Motor1CloseDelay},
		{Key: "auto_close_time", num: &c.AutoCloseTime},
		{Key: "pedestrian_auto_close_time", num: &c.PedestrianAutoCloseTime},
		{Key: "backjump_enabled", flag: &c.BackjumpEnabled},
		{Key: "backjump_time", num: &c.BackjumpTime},
		{Key: "photocell_stop_on_close", flag: &c.PhotocellStopOnClose},
		{Key: "deadman_mode", flag: &c.DeadmanMode},
		{Key: "step_logic_four_state", flag: &c.StepLogicFourState},
		{Key: "preflash_enabled", flag: &c.PreflashEnabled},
	}
}

// ConfigKeys returns the wire keys in array order, for CLI help and
// diagnostics output.
func ConfigKeys() []string {
	var c gate.NumericConfig
	params := ConfigParams(&c)
	keys := make([]string, len(params))
	for i, p := range params {
		keys[i] = p.Key
	}
	return keys
}

// SetConfigParam sets a single parameter by wire key from its string form,
// coercing "true"/"false" for flags and decimal numbers otherwise.
func SetConfigParam(c *gate.NumericConfig, key, value string) error {
	for _, p := range ConfigParams(c) {
		if p.Key != key {
			continue
		}
		if p.IsFlag() {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("parameter %q expects a boolean, got %q", key, value)
			}
			if b {
				p.setFloat(1)
			} else {
				p.setFloat(0)
			}
			return nil
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parameter %q expects a number, got %q", key, value)
		}
		p.setFloat(f)
		return nil
	}
	return fmt.Errorf("unknown config parameter %q", key)
}

// DecodeNumericConfig accepts both historical encodings of the parameter set:
// a fixed-order array of exactly NumConfigParams values, or an object keyed by
// parameter name. Object payloads may omit keys; omitted parameters keep their
// documented defaults.
func DecodeNumericConfig(data []byte) (gate.NumericConfig, error) {
	cfg := gate.DefaultNumericConfig()

	switch sniffShape(data) {
	case shapeArray:
		var values []any
		if err := json.Unmarshal(data, &values); err != nil {
			return cfg, decodeErrf("config", "invalid JSON array: %v", err)
		}
		if len(values) != NumConfigParams {
			return cfg, decodeErrf("config", "array form must have exactly %d values, got %d", NumConfigParams, len(values))
		}
		params := ConfigParams(&cfg)
		for i, raw := range values {
			f, ok := coerceNumber(raw)
			if !ok {
				return cfg, decodeErrf("config", "value at index %d is neither number nor boolean", i)
			}
			params[i].setFloat(f)
		}
		return cfg, nil

	case shapeObject:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return cfg, decodeErrf("config", "invalid JSON object: %v", err)
		}
		for _, p := range ConfigParams(&cfg) {
			raw, ok := fields[p.Key]
			if !ok {
				continue // documented default stands
			}
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return cfg, decodeErrf("config", "field %q: %v", p.Key, err)
			}
			f, ok := coerceNumber(v)
			if !ok {
				return cfg, decodeErrf("config", "field %q is neither number nor boolean", p.Key)
			}
			p.setFloat(f)
		}
		return cfg, nil

	default:
		return cfg, decodeErrf("config", "payload is neither array nor object")
	}
}

// EncodeNumericConfig always emits the object form with every parameter
// present, in the fixed array order for byte-for-byte determinism.
func EncodeNumericConfig(c gate.NumericConfig) ([]byte, error) {
	om := orderedmap.New[string, any]()
	for _, p := range ConfigParams(&c) {
		if p.IsFlag() {
			om.Set(p.Key, p.Float() != 0)
		} else {
			om.Set(p.Key, p.Float())
		}
	}
	return json.Marshal(om)
}

// coerceNumber accepts JSON numbers and booleans interchangeably; older
// firmware emits flags as 0/1 inside the array form.
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

type payloadShape int

const (
	shapeInvalid payloadShape = iota
	shapeArray
	shapeObject
)

// sniffShape inspects the first structural token without parsing the whole
// payload, so decoders can select the right variant up front.
func sniffShape(data []byte) payloadShape {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return shapeInvalid
	}
	switch trimmed[0] {
	case '[':
		return shapeArray
	case '{':
		return shapeObject
	default:
		return shapeInvalid
	}
}
