package gate

// InputType is the electrical wiring of an input channel.
type InputType int

const (
	InputTypeUnknown   InputType = 0
	InputTypeNC        InputType = 1 // normally closed
	InputTypeNO        InputType = 2 // normally open
	InputTypeResistive InputType = 3 // resistance-sensing (fault-detecting)
)

var inputTypeNames = map[InputType]string{
	InputTypeUnknown:   "unknown",
	InputTypeNC:        "nc",
	InputTypeNO:        "no",
	InputTypeResistive: "resistive",
}

var inputTypeTokens = map[string]InputType{
	"nc":         InputTypeNC,
	"no":         InputTypeNO,
	"resistive":  InputTypeResistive,
	"resistance": InputTypeResistive, // legacy token
}

func (t InputType) String() string {
	if name, ok := inputTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// InputTypeFromCode maps a wire type code to an InputType. Unrecognized codes
// degrade to InputTypeUnknown rather than failing the decode.
func InputTypeFromCode(code int) InputType {
	switch InputType(code) {
	case InputTypeNC, InputTypeNO, InputTypeResistive:
		return InputType(code)
	default:
		return InputTypeUnknown
	}
}

// InputTypeFromToken maps a legacy string token to an InputType.
func InputTypeFromToken(token string) InputType {
	if t, ok := inputTypeTokens[token]; ok {
		return t
	}
	return InputTypeUnknown
}

// InputFunction is the controller role assigned to an input channel.
// The numeric values are the wire function codes and must not be reordered.
type InputFunction int

const (
	FunctionNone InputFunction = iota // 0
	FunctionMotor1OpenLimit
	FunctionMotor1CloseLimit
	FunctionMotor2OpenLimit
	FunctionMotor2CloseLimit
	FunctionOpenCommand
	FunctionCloseCommand
	FunctionStopCommand
	FunctionEdgeStopOpening
	FunctionEdgeStopClosing
	FunctionPartial1
	FunctionPartial2
	FunctionPhotocellOpening
	FunctionPhotocellClosing
	FunctionDeadmanOpen
	FunctionDeadmanClose
	FunctionTimedOpen
	FunctionStepLogic // 17

	// FunctionUnknown is not a wire code; it is the degradation target for
	// codes a newer firmware may emit that this client does not know.
	FunctionUnknown InputFunction = -1
)

var inputFunctionNames = map[InputFunction]string{
	FunctionNone:             "none",
	FunctionMotor1OpenLimit:  "m1_open_limit",
	FunctionMotor1CloseLimit: "m1_close_limit",
	FunctionMotor2OpenLimit:  "m2_open_limit",
	FunctionMotor2CloseLimit: "m2_close_limit",
	FunctionOpenCommand:      "open",
	FunctionCloseCommand:     "close",
	FunctionStopCommand:      "stop",
	FunctionEdgeStopOpening:  "edge_stop_opening",
	FunctionEdgeStopClosing:  "edge_stop_closing",
	FunctionPartial1:         "partial1",
	FunctionPartial2:         "partial2",
	FunctionPhotocellOpening: "photocell_opening",
	FunctionPhotocellClosing: "photocell_closing",
	FunctionDeadmanOpen:      "deadman_open",
	FunctionDeadmanClose:     "deadman_close",
	FunctionTimedOpen:        "timed_open",
	FunctionStepLogic:        "step_logic",
	FunctionUnknown:          "unknown",
}

var inputFunctionTokens = func() map[string]InputFunction {
	m := make(map[string]InputFunction, len(inputFunctionNames))
	for fn, name := range inputFunctionNames {
		m[name] = fn
	}
	return m
}()

func (f InputFunction) String() string {
	if name, ok := inputFunctionNames[f]; ok {
		return name
	}
	return "unknown"
}

// Code returns the wire function code. Unknown maps to FunctionNone's code,
// matching the encoder's "never emit what the firmware can't parse" rule.
func (f InputFunction) Code() int {
	if f < FunctionNone || f > FunctionStepLogic {
		return int(FunctionNone)
	}
	return int(f)
}

// InputFunctionFromCode maps a wire function code (0-17) to an InputFunction.
// Out-of-table codes degrade to FunctionUnknown.
func InputFunctionFromCode(code int) InputFunction {
	if code >= int(FunctionNone) && code <= int(FunctionStepLogic) {
		return InputFunction(code)
	}
	return FunctionUnknown
}

// InputFunctionFromToken maps a legacy long-form string token to an
// InputFunction.
func InputFunctionFromToken(token string) InputFunction {
	if fn, ok := inputFunctionTokens[token]; ok {
		return fn
	}
	return FunctionUnknown
}

// InputChannelConfig describes one of the controller's eight wired inputs.
// TargetResistance and TolerancePercent are meaningful only for
// InputTypeResistive channels; they hold the learned sensor value used for
// wiring-fault detection.
type InputChannelConfig struct {
	Channel          int // 0-7, unique within a configuration set
	Name             string
	Enabled          bool
	Type             InputType
	Function         InputFunction
	Description      string
	TargetResistance float64 // ohms, resistive channels only
	TolerancePercent float64 // resistive channels only
}

// InputChannelState is the live reading of one input channel, keyed by the
// channel name the firmware reports. Voltage is set only for
// resistance-sensing channels.
type InputChannelState struct {
	Name       string
	Active     bool
	HasVoltage bool
	Voltage    float64
}
