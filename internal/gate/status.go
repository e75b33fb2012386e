package gate

import "time"

// Status is a single live snapshot pushed by the controller over the status
// endpoint. Motor positions and speeds are always populated, even when zero;
// a countdown of zero means auto-close is inactive.
type Status struct {
	State              State
	Motor1Percent      int     // 0-100
	Motor2Percent      int     // 0-100
	Motor1Speed        float64 // 0.0-1.0
	Motor2Speed        float64 // 0.0-1.0
	AutoCloseCountdown int     // seconds, 0 = inactive
	Timestamp          time.Time
}

// FullyOpen reports whether both motors are at their open limit.
func (s Status) FullyOpen() bool {
	return s.State == StateOpen && s.Motor1Percent == 100
}

// AutoCloseActive reports whether an auto-close countdown is running.
func (s Status) AutoCloseActive() bool {
	return s.AutoCloseCountdown > 0
}
