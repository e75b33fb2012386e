package wire

// Resistance-sensing inputs are wired as a voltage divider against a fixed
// pull-up: the controller reports the divider midpoint voltage and the client
// recovers the sensor resistance from it.
const (
	SupplyVoltage = 3.3     // volts
	PullupOhms    = 10000.0 // fixed pull-up resistor
)

// SensorResistance converts a measured divider voltage to the estimated
// sensor resistance via R = V * R_pullup / (Vsupply - V). Readings at or
// below zero, or at or above the supply rail, sit on the division singularity
// and report ok=false instead of a number.
func SensorResistance(voltage float64) (ohms float64, ok bool) {
	if voltage <= 0 || voltage >= SupplyVoltage {
		return 0, false
	}
	return voltage * PullupOhms / (SupplyVoltage - voltage), true
}
