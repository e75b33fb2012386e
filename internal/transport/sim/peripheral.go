package sim

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/srg/gatelink/internal/gate"
	"github.com/srg/gatelink/internal/gatt"
	"github.com/srg/gatelink/internal/transport"
	"github.com/srg/gatelink/internal/wire"
)

// peripheral is the simulated controller: a mutable device model plus the
// characteristic handles exposing it. All commands are accepted; command
// effects are immediate state jumps rather than simulated motion.
type peripheral struct {
	tr *Transport

	mu           sync.Mutex
	status       gate.Status
	config       gate.NumericConfig
	inputConfigs []gate.InputChannelConfig
	inputStates  []gate.InputChannelState
	lastAck      []byte
	configReads  int // alternates array/object encodings
	inputReads   int // cycles the three input-config shapes

	services     []transport.Service
	statusChar   *simChar
	disconnected chan struct{}
	closed       bool
}

func newPeripheral(tr *Transport) *peripheral {
	p := &peripheral{
		tr:           tr,
		config:       gate.DefaultNumericConfig(),
		disconnected: make(chan struct{}),
		lastAck:      []byte(`{"success":true,"message":"ready"}`),
	}
	if len(tr.script) > 0 {
		p.status = tr.script[0]
	}
	p.inputConfigs = defaultInputConfigs()
	p.inputStates = defaultInputStates()
	p.buildServices()
	return p
}

// defaultInputConfigs wires a plausible dual-leaf installation: limit
// switches, a command trio, a photocell, and one resistive safety edge.
func defaultInputConfigs() []gate.InputChannelConfig {
	return []gate.InputChannelConfig{
		{Channel: 0, Name: "in1", Enabled: true, Type: gate.InputTypeNC, Function: gate.FunctionMotor1OpenLimit},
		{Channel: 1, Name: "in2", Enabled: true, Type: gate.InputTypeNC, Function: gate.FunctionMotor1CloseLimit},
		{Channel: 2, Name: "in3", Enabled: true, Type: gate.InputTypeNO, Function: gate.FunctionOpenCommand},
		{Channel: 3, Name: "in4", Enabled: true, Type: gate.InputTypeNO, Function: gate.FunctionCloseCommand},
		{Channel: 4, Name: "in5", Enabled: true, Type: gate.InputTypeNO, Function: gate.FunctionStopCommand},
		{Channel: 5, Name: "in6", Enabled: true, Type: gate.InputTypeNC, Function: gate.FunctionPhotocellClosing},
		{Channel: 6, Name: "in7", Enabled: true, Type: gate.InputTypeResistive, Function: gate.FunctionEdgeStopClosing,
			TargetResistance: 8200, TolerancePercent: 10},
		{Channel: 7, Name: "in8", Enabled: false, Type: gate.InputTypeNO, Function: gate.FunctionNone},
	}
}

func defaultInputStates() []gate.InputChannelState {
	return []gate.InputChannelState{
		{Name: "in1", Active: true},
		{Name: "in2", Active: false},
		{Name: "in3", Active: false},
		{Name: "in4", Active: false},
		{Name: "in5", Active: false},
		{Name: "in6", Active: true},
		{Name: "in7", Active: false, HasVoltage: true, Voltage: 1.48},
		{Name: "in8", Active: false},
	}
}

// buildServices assembles the GATT profile from the endpoint table so the
// simulated layout can never drift from the real one.
func (p *peripheral) buildServices() {
	svcChars := make(map[string][]transport.Characteristic)
	var svcOrder []string

	for _, spec := range gatt.Endpoints() {
		if p.tr.requiredOnly && !spec.Required {
			continue
		}
		char := p.newChar(spec)
		if _, seen := svcChars[spec.Service]; !seen {
			svcOrder = append(svcOrder, spec.Service)
		}
		svcChars[spec.Service] = append(svcChars[spec.Service], char)
		if spec.Endpoint == gatt.EndpointStatus {
			p.statusChar = char
		}
	}

	for _, uuid := range svcOrder {
		p.services = append(p.services, &simService{uuid: uuid, chars: svcChars[uuid]})
	}
}

func (p *peripheral) newChar(spec gatt.EndpointSpec) *simChar {
	c := &simChar{uuid: spec.Char, props: spec.Access, peripheral: p}
	switch spec.Endpoint {
	case gatt.EndpointStatus:
		c.read = p.readStatus
	case gatt.EndpointCommandIn:
		c.write = p.writeCommand
	case gatt.EndpointCommandOut:
		c.read = p.readAck
	case gatt.EndpointConfig:
		c.read = p.readConfig
		c.write = p.writeConfig
	case gatt.EndpointInputConfig:
		c.read = p.readInputConfig
		c.write = p.writeInputConfig
	case gatt.EndpointInputStates:
		c.read = p.readInputStates
	}
	return c
}

func (p *peripheral) Addr() string { return DeviceAddr }

func (p *peripheral) Services() []transport.Service { return p.services }

func (p *peripheral) Disconnected() <-chan struct{} { return p.disconnected }

func (p *peripheral) Close() error {
	p.drop()
	return nil
}

func (p *peripheral) drop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.disconnected)
	}
}

func (p *peripheral) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// pushStatus hands a raw frame to the active status subscriber, if any.
func (p *peripheral) pushStatus(frame []byte) {
	if p.statusChar != nil {
		p.statusChar.notify(frame)
	}
}

// ---- characteristic handlers ----

func (p *peripheral) readStatus() ([]byte, error) {
	p.mu.Lock()
	status := p.status
	p.mu.Unlock()
	return wire.EncodeStatus(status)
}

func (p *peripheral) readAck() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAck, nil
}

// writeCommand accepts every documented command and jumps the device model to
// the commanded end state.
func (p *peripheral) writeCommand(data []byte) error {
	var frame struct {
		Cmd   string `json:"cmd"`
		Key   string `json:"key"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		p.setAck(false, "malformed command")
		return nil // firmware acks bad commands, it does not NAK the write
	}

	p.mu.Lock()
	switch frame.Cmd {
	case gate.CommandOpen:
		p.status = gate.Status{State: gate.StateOpen, Motor1Percent: 100, Motor2Percent: 100}
	case gate.CommandClose:
		p.status = gate.Status{State: gate.StateClosed}
	case gate.CommandStop:
		p.status.State = gate.StateStopped
		p.status.Motor1Speed = 0
		p.status.Motor2Speed = 0
	case gate.CommandPartial1:
		p.status = gate.Status{State: gate.StatePartial1, Motor1Percent: int(p.config.Partial1Percent)}
	case gate.CommandPartial2:
		p.status = gate.Status{State: gate.StatePartial2, Motor1Percent: int(p.config.Partial2Percent)}
	}
	p.mu.Unlock()

	p.setAck(true, fmt.Sprintf("%s accepted", frame.Cmd))
	return nil
}

func (p *peripheral) setAck(success bool, msg string) {
	ack, _ := json.Marshal(map[string]any{"success": success, "message": msg})
	p.mu.Lock()
	p.lastAck = ack
	p.mu.Unlock()
}

// readConfig alternates the two historical encodings so integration runs
// exercise both decode paths.
func (p *peripheral) readConfig() ([]byte, error) {
	p.mu.Lock()
	cfg := p.config
	n := p.configReads
	p.configReads++
	p.mu.Unlock()

	if n%2 == 0 {
		return wire.EncodeNumericConfig(cfg)
	}
	values := make([]any, 0, wire.NumConfigParams)
	for _, param := range wire.ConfigParams(&cfg) {
		if param.IsFlag() {
			values = append(values, param.Float() != 0)
		} else {
			values = append(values, param.Float())
		}
	}
	return json.Marshal(values)
}

func (p *peripheral) writeConfig(data []byte) error {
	cfg, err := wire.DecodeNumericConfig(data)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.config = cfg
	p.mu.Unlock()
	return nil
}

// readInputConfig cycles the three historical shapes.
func (p *peripheral) readInputConfig() ([]byte, error) {
	p.mu.Lock()
	configs := make([]gate.InputChannelConfig, len(p.inputConfigs))
	copy(configs, p.inputConfigs)
	n := p.inputReads
	p.inputReads++
	p.mu.Unlock()

	switch n % 3 {
	case 0:
		return wire.EncodeInputConfigs(configs)
	case 1:
		return encodeLegacyInputConfigs(configs)
	default:
		return encodeCompactInputConfigs(configs)
	}
}

func (p *peripheral) writeInputConfig(data []byte) error {
	configs, err := wire.DecodeInputConfigs(data)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.inputConfigs = configs
	p.mu.Unlock()
	return nil
}

// readInputStates emits the mixed shape: bare booleans for digital channels,
// [active, voltage] pairs for resistance-sensing ones.
func (p *peripheral) readInputStates() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]any, len(p.inputStates))
	for _, st := range p.inputStates {
		if st.HasVoltage {
			out[st.Name] = []any{st.Active, st.Voltage}
		} else {
			out[st.Name] = st.Active
		}
	}
	return json.Marshal(out)
}

// encodeLegacyInputConfigs produces the oldest wrapped long-key shape, which
// the wire package only decodes.
func encodeLegacyInputConfigs(configs []gate.InputChannelConfig) ([]byte, error) {
	inputs := make(map[string]any, len(configs))
	for _, cfg := range configs {
		inputs[cfg.Name] = map[string]any{
			"channel":           cfg.Channel,
			"enabled":           cfg.Enabled,
			"type":              cfg.Type.String(),
			"function":          cfg.Function.String(),
			"description":       cfg.Description,
			"target_resistance": cfg.TargetResistance,
			"tolerance_percent": cfg.TolerancePercent,
		}
	}
	return json.Marshal(map[string]any{"inputs": inputs})
}

// encodeCompactInputConfigs produces the single-letter-key shape with numeric
// codes.
func encodeCompactInputConfigs(configs []gate.InputChannelConfig) ([]byte, error) {
	out := make(map[string]any, len(configs))
	for _, cfg := range configs {
		entry := map[string]any{
			"c": cfg.Channel,
			"e": cfg.Enabled,
			"t": int(cfg.Type),
			"f": cfg.Function.Code(),
		}
		if cfg.Description != "" {
			entry["d"] = cfg.Description
		}
		if cfg.Type == gate.InputTypeResistive {
			entry["r"] = cfg.TargetResistance
			entry["tol"] = cfg.TolerancePercent
		}
		out[cfg.Name] = entry
	}
	return json.Marshal(out)
}

// ---- characteristic handle ----

type simService struct {
	uuid  string
	chars []transport.Characteristic
}

func (s *simService) UUID() string { return s.uuid }

func (s *simService) Characteristics() []transport.Characteristic { return s.chars }

// simChar is one simulated characteristic. Read and write handlers are bound
// per endpoint; Subscribe plays the transport's status script at the
// configured cadence.
type simChar struct {
	uuid       string
	props      transport.Property
	peripheral *peripheral
	read       func() ([]byte, error)
	write      func(data []byte) error

	mu      sync.Mutex
	handler func(data []byte)
	stop    chan struct{}
}

func (c *simChar) UUID() string { return c.uuid }

func (c *simChar) Properties() transport.Property { return c.props }

func (c *simChar) Read(timeout time.Duration) ([]byte, error) {
	if c.peripheral.isClosed() {
		return nil, transport.ErrNotConnected
	}
	if c.read == nil {
		return nil, fmt.Errorf("characteristic %s is not readable", c.uuid)
	}
	return c.read()
}

func (c *simChar) Write(data []byte, withResponse bool, timeout time.Duration) error {
	if c.peripheral.isClosed() {
		return transport.ErrNotConnected
	}
	if c.write == nil {
		return fmt.Errorf("characteristic %s is not writable", c.uuid)
	}
	return c.write(data)
}

func (c *simChar) Subscribe(handler func(data []byte)) error {
	if c.peripheral.isClosed() {
		return transport.ErrNotConnected
	}

	c.mu.Lock()
	c.handler = handler
	c.stop = make(chan struct{})
	stop := c.stop
	c.mu.Unlock()

	go c.playScript(stop)
	return nil
}

func (c *simChar) Unsubscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.handler = nil
	return nil
}

func (c *simChar) notify(frame []byte) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler != nil {
		handler(frame)
	}
}

// playScript pushes the status script once in order, then repeats the last
// frame at the push cadence until unsubscribed or disconnected.
func (c *simChar) playScript(stop chan struct{}) {
	script := c.peripheral.tr.script
	if len(script) == 0 {
		return
	}

	ticker := time.NewTicker(c.peripheral.tr.pushInterval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-stop:
			return
		case <-c.peripheral.disconnected:
			return
		case <-ticker.C:
			status := script[i]
			if i < len(script)-1 {
				i++
			}
			c.peripheral.mu.Lock()
			c.peripheral.status = status
			c.peripheral.mu.Unlock()

			frame, err := wire.EncodeStatus(status)
			if err != nil {
				continue
			}
			c.notify(frame)
		}
	}
}
