package session

import (
	"github.com/sirupsen/logrus"

	"github.com/srg/gatelink/internal/gate"
	"github.com/srg/gatelink/internal/gatt"
	"github.com/srg/gatelink/internal/wire"
)

// Send encodes the intent and writes it to the command-in endpoint. Writes
// are applied in Send invocation order per connection. If the command-out
// endpoint is bound, the acknowledgement is read back best-effort for
// diagnostics: a missing or undecodable ack never fails the send — the
// transport write result is authoritative.
func (s *Session) Send(intent gate.CommandIntent) (*gate.CommandResult, error) {
	char, err := s.endpoint(gatt.EndpointCommandIn)
	if err != nil {
		return nil, err
	}

	data, err := wire.EncodeCommand(intent)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := char.Write(data, true, s.writeTimeout); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"cmd": intent.Name,
		"key": intent.Key,
	}).Info("Command written")

	return s.readAck(), nil
}

// readAck fetches the command acknowledgement if the endpoint exists.
// Failures are logged, never returned.
func (s *Session) readAck() *gate.CommandResult {
	char, err := s.endpoint(gatt.EndpointCommandOut)
	if err != nil {
		return nil
	}

	data, err := char.Read(s.readTimeout)
	if err != nil {
		s.logger.WithField("error", err).Debug("Command acknowledgement read failed")
		return nil
	}
	result, err := wire.DecodeCommandResult(data)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"error":   err,
			"payload": string(data),
		}).Debug("Command acknowledgement undecodable")
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"success": result.Success,
		"message": result.Message,
	}).Debug("Command acknowledged")
	return &result
}

// ReadConfig fetches and decodes the numeric configuration, updating the
// cached model on success. Unavailable on firmware without the configuration
// service.
func (s *Session) ReadConfig() (gate.NumericConfig, error) {
	char, err := s.endpoint(gatt.EndpointConfig)
	if err != nil {
		return gate.NumericConfig{}, err
	}

	data, err := char.Read(s.readTimeout)
	if err != nil {
		return gate.NumericConfig{}, err
	}
	cfg, err := wire.DecodeNumericConfig(data)
	if err != nil {
		return gate.NumericConfig{}, err
	}

	s.cache.SetConfig(cfg)
	return cfg, nil
}

// WriteConfig encodes and writes the full parameter set, updating the cached
// model once the transport confirms the write.
func (s *Session) WriteConfig(cfg gate.NumericConfig) error {
	char, err := s.endpoint(gatt.EndpointConfig)
	if err != nil {
		return err
	}

	data, err := wire.EncodeNumericConfig(cfg)
	if err != nil {
		return err
	}
	if err := char.Write(data, true, s.writeTimeout); err != nil {
		return err
	}

	s.cache.SetConfig(cfg)
	return nil
}

// ReadInputConfigs fetches the per-channel input configuration set.
func (s *Session) ReadInputConfigs() ([]gate.InputChannelConfig, error) {
	char, err := s.endpoint(gatt.EndpointInputConfig)
	if err != nil {
		return nil, err
	}

	data, err := char.Read(s.readTimeout)
	if err != nil {
		return nil, err
	}
	configs, err := wire.DecodeInputConfigs(data)
	if err != nil {
		return nil, err
	}

	s.cache.SetInputConfigs(configs)
	return configs, nil
}

// WriteInputConfigs writes the input configuration in the ultra-compact
// shape, the only one guaranteed to fit the transport payload limit.
func (s *Session) WriteInputConfigs(configs []gate.InputChannelConfig) error {
	char, err := s.endpoint(gatt.EndpointInputConfig)
	if err != nil {
		return err
	}

	data, err := wire.EncodeInputConfigs(configs)
	if err != nil {
		return err
	}
	if err := char.Write(data, true, s.writeTimeout); err != nil {
		return err
	}

	s.cache.SetInputConfigs(configs)
	return nil
}

// ReadInputStates fetches the live per-channel input states.
func (s *Session) ReadInputStates() ([]gate.InputChannelState, error) {
	char, err := s.endpoint(gatt.EndpointInputStates)
	if err != nil {
		return nil, err
	}

	data, err := char.Read(s.readTimeout)
	if err != nil {
		return nil, err
	}
	states, err := wire.DecodeInputStates(data)
	if err != nil {
		return nil, err
	}

	s.cache.SetInputStates(states)
	return states, nil
}
