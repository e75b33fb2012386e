package wire

import (
	"encoding/json"
	"time"

	"github.com/srg/gatelink/internal/gate"
)

// statusFrame is the wire form of a status push. Every field is optional on
// the wire; absent fields default to zero so the decoded Status is always
// fully populated.
type statusFrame struct {
	State              string  `json:"state"`
	Motor1Percent      int     `json:"m1_percent"`
	Motor2Percent      int     `json:"m2_percent"`
	Motor1Speed        float64 `json:"m1_speed"`
	Motor2Speed        float64 `json:"m2_speed"`
	AutoCloseCountdown int     `json:"auto_close_countdown"`
	Timestamp          int64   `json:"timestamp"` // unix seconds, 0 = not reported
}

// DecodeStatus decodes one status push. Unknown state tokens normalize to
// gate.StateUnknown; only structurally invalid JSON is an error.
func DecodeStatus(data []byte) (gate.Status, error) {
	var frame statusFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return gate.Status{}, decodeErrf("status", "invalid JSON: %v", err)
	}

	ts := time.Now()
	if frame.Timestamp > 0 {
		ts = time.Unix(frame.Timestamp, 0)
	}

	return gate.Status{
		State:              gate.ParseState(frame.State),
		Motor1Percent:      clampPercent(frame.Motor1Percent),
		Motor2Percent:      clampPercent(frame.Motor2Percent),
		Motor1Speed:        clampFraction(frame.Motor1Speed),
		Motor2Speed:        clampFraction(frame.Motor2Speed),
		AutoCloseCountdown: max(frame.AutoCloseCountdown, 0),
		Timestamp:          ts,
	}, nil
}

// EncodeStatus is the inverse of DecodeStatus; the simulated transport uses
// it to produce frames indistinguishable from firmware pushes.
func EncodeStatus(s gate.Status) ([]byte, error) {
	frame := statusFrame{
		State:              s.State.String(),
		Motor1Percent:      s.Motor1Percent,
		Motor2Percent:      s.Motor2Percent,
		Motor1Speed:        s.Motor1Speed,
		Motor2Speed:        s.Motor2Speed,
		AutoCloseCountdown: s.AutoCloseCountdown,
	}
	if !s.Timestamp.IsZero() {
		frame.Timestamp = s.Timestamp.Unix()
	}
	return json.Marshal(frame)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
