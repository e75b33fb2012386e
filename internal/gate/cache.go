package gate

import (
	"sync"
	"time"
)

// CachedModel holds the most recent decoded snapshot of every payload family.
// Each field is independently nil until its first successful decode and is
// replaced atomically as a whole value. Writers are the notification pipeline
// and the dispatcher success paths; any number of readers may observe it
// concurrently. An unexpected disconnect marks the model stale without
// clearing it, so consumers can keep showing last-known data flagged as such.
type CachedModel struct {
	mu sync.RWMutex

	status       *Status
	config       *NumericConfig
	inputConfigs []InputChannelConfig
	inputStates  []InputChannelState

	stale     bool
	updatedAt time.Time
}

func NewCachedModel() *CachedModel {
	return &CachedModel{}
}

// Status returns the last decoded status, or nil if none arrived yet.
func (m *CachedModel) Status() *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *CachedModel) SetStatus(s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = &s
	m.stale = false
	m.updatedAt = time.Now()
}

func (m *CachedModel) Config() *NumericConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *CachedModel) SetConfig(c NumericConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = &c
	m.updatedAt = time.Now()
}

// InputConfigs returns a copy of the last decoded input configuration set.
func (m *CachedModel) InputConfigs() []InputChannelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.inputConfigs == nil {
		return nil
	}
	out := make([]InputChannelConfig, len(m.inputConfigs))
	copy(out, m.inputConfigs)
	return out
}

func (m *CachedModel) SetInputConfigs(cfgs []InputChannelConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputConfigs = make([]InputChannelConfig, len(cfgs))
	copy(m.inputConfigs, cfgs)
	m.updatedAt = time.Now()
}

func (m *CachedModel) InputStates() []InputChannelState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.inputStates == nil {
		return nil
	}
	out := make([]InputChannelState, len(m.inputStates))
	copy(out, m.inputStates)
	return out
}

func (m *CachedModel) SetInputStates(states []InputChannelState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputStates = make([]InputChannelState, len(states))
	copy(m.inputStates, states)
	m.updatedAt = time.Now()
}

// MarkStale flags every cached value as stale without discarding it.
func (m *CachedModel) MarkStale() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale = true
}

// Stale reports whether the cache outlived its connection.
func (m *CachedModel) Stale() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stale
}

// UpdatedAt returns the time of the most recent successful update.
func (m *CachedModel) UpdatedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updatedAt
}
