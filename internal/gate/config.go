package gate

import "github.com/mcuadros/go-defaults"

// NumericConfig is the controller's persisted parameter set. The wire protocol
// transfers it either as a fixed-order array of 26 values or as a keyed
// object; this struct is the normalized in-memory form. Fields absent from an
// older payload keep the defaults declared in the struct tags, so no field is
// ever undefined.
type NumericConfig struct {
	Motor1RunTime float64 `default:"15"` // seconds of travel, full stroke
	Motor2RunTime float64 `default:"15"`

	Motor1Speed     float64 `default:"1"` // cruise speed fraction
	Motor2Speed     float64 `default:"1"`
	Motor1SlowSpeed float64 `default:"0.5"` // approach speed near limits
	Motor2SlowSpeed float64 `default:"0.5"`

	Motor1Acceleration float64 `default:"0.3"` // seconds to reach cruise
	Motor2Acceleration float64 `default:"0.3"`
	Motor1Deceleration float64 `default:"0.5"`
	Motor2Deceleration float64 `default:"0.5"`

	Motor1SoftStartTime   float64 `default:"1"`
	Motor2SoftStartTime   float64 `default:"1"`
	Motor1SoftStopPercent float64 `default:"15"` // travel remaining when slowdown begins
	Motor2SoftStopPercent float64 `default:"15"`

	Partial1Percent float64 `default:"50"` // pedestrian opening
	Partial2Percent float64 `default:"25"`

	Motor2OpenDelay  float64 `default:"1"` // leaf sequencing on open
	Motor1CloseDelay float64 `default:"1"` // leaf sequencing on close

	AutoCloseTime           float64 `default:"0"` // seconds, 0 disables
	PedestrianAutoCloseTime float64 `default:"0"`

	BackjumpEnabled bool    `default:"false"` // pressure relief after close
	BackjumpTime    float64 `default:"0.2"`

	PhotocellStopOnClose bool `default:"true"`
	DeadmanMode          bool `default:"false"`
	StepLogicFourState   bool `default:"false"` // open-stop-close-stop cycling
	PreflashEnabled      bool `default:"true"`  // flash warning light before motion
}

// DefaultNumericConfig returns a config populated with every documented
// default. Decoders start from this value so partial payloads only override
// what they carry.
func DefaultNumericConfig() NumericConfig {
	var c NumericConfig
	defaults.SetDefaults(&c)
	return c
}
