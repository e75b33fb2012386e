package wire

import (
	"encoding/json"

	"github.com/srg/gatelink/internal/gate"
)

type commandFrame struct {
	Cmd       string `json:"cmd"`
	Key       string `json:"key,omitempty"`
	Value     any    `json:"value,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type commandResultFrame struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// EncodeCommand serializes a command intent for the command-in endpoint.
func EncodeCommand(intent gate.CommandIntent) ([]byte, error) {
	frame := commandFrame{
		Cmd:   intent.Name,
		Key:   intent.Key,
		Value: intent.Value,
	}
	if !intent.Timestamp.IsZero() {
		frame.Timestamp = intent.Timestamp.Unix()
	}
	return json.Marshal(frame)
}

// DecodeCommandResult parses an acknowledgement read from the command-out
// endpoint.
func DecodeCommandResult(data []byte) (gate.CommandResult, error) {
	var frame commandResultFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return gate.CommandResult{}, decodeErrf("command_result", "invalid JSON: %v", err)
	}
	return gate.CommandResult{
		Success: frame.Success,
		Message: frame.Message,
		Data:    frame.Data,
	}, nil
}
