// Package gatt maps the controller's logical endpoints onto the GATT
// characteristics discovered at connect time.
package gatt

import "github.com/srg/gatelink/internal/transport"

// GATT layout of the controller firmware. One mandatory gate-control service
// plus two optional services only newer firmware exposes.
const (
	ServiceGateControl   = "0000a000-0000-1000-8000-00805f9b34fb"
	ServiceConfiguration = "0000b000-0000-1000-8000-00805f9b34fb"
	ServiceDiagnostics   = "0000c000-0000-1000-8000-00805f9b34fb"

	charCommandIn   = "0000a001-0000-1000-8000-00805f9b34fb"
	charCommandOut  = "0000a002-0000-1000-8000-00805f9b34fb"
	charStatus      = "0000a003-0000-1000-8000-00805f9b34fb"
	charConfig      = "0000b001-0000-1000-8000-00805f9b34fb"
	charInputConfig = "0000b002-0000-1000-8000-00805f9b34fb"
	charInputStates = "0000c001-0000-1000-8000-00805f9b34fb"
)

// Endpoint identifies a logical read/write/notify channel of the controller.
type Endpoint string

const (
	EndpointCommandIn   Endpoint = "command_in"
	EndpointCommandOut  Endpoint = "command_out"
	EndpointStatus      Endpoint = "status"
	EndpointConfig      Endpoint = "config"
	EndpointInputConfig Endpoint = "input_config"
	EndpointInputStates Endpoint = "input_states"
)

func (e Endpoint) String() string { return string(e) }

// EndpointSpec describes where an endpoint lives and what the connection
// needs from it. Required endpoints must bind for a connection to succeed;
// optional ones degrade the features that depend on them.
type EndpointSpec struct {
	Endpoint Endpoint
	Service  string
	Char     string
	Access   transport.Property
	Required bool
}

// endpointTable is the authoritative endpoint layout, in bind order.
var endpointTable = []EndpointSpec{
	{EndpointStatus, ServiceGateControl, charStatus, transport.PropRead | transport.PropNotify, true},
	{EndpointCommandIn, ServiceGateControl, charCommandIn, transport.PropWrite, true},
	{EndpointCommandOut, ServiceGateControl, charCommandOut, transport.PropRead, true},
	{EndpointConfig, ServiceConfiguration, charConfig, transport.PropRead | transport.PropWrite, false},
	{EndpointInputConfig, ServiceConfiguration, charInputConfig, transport.PropRead | transport.PropWrite, false},
	{EndpointInputStates, ServiceDiagnostics, charInputStates, transport.PropRead, false},
}

// Endpoints returns the endpoint layout in bind order.
func Endpoints() []EndpointSpec {
	table := make([]EndpointSpec, len(endpointTable))
	copy(table, endpointTable)
	return table
}
