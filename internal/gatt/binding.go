package gatt

import (
	"fmt"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/gatelink/internal/transport"
)

// MissingEndpointError reports required endpoints absent from a discovered
// profile; it fails the whole connection attempt (firmware mismatch).
type MissingEndpointError struct {
	Endpoints []Endpoint
}

func (e *MissingEndpointError) Error() string {
	names := make([]string, len(e.Endpoints))
	for i, ep := range e.Endpoints {
		names[i] = string(ep)
	}
	return fmt.Sprintf("required endpoints missing from device profile: %s", strings.Join(names, ", "))
}

// BindingSet is the result of matching the endpoint table against a
// discovered GATT profile. It is built once per connection and invalidated on
// disconnect; a binding looked up after invalidation reports unavailable
// rather than touching a dead handle.
type BindingSet struct {
	mu       sync.RWMutex
	bindings *orderedmap.OrderedMap[Endpoint, transport.Characteristic]
	valid    bool
}

// Resolve walks the discovered services and binds every endpoint it can.
// Every required endpoint must resolve with at least the access bits its spec
// demands; optional endpoints bind best-effort and their absence is simply
// recorded.
func Resolve(services []transport.Service) (*BindingSet, error) {
	chars := make(map[string]transport.Characteristic)
	for _, svc := range services {
		svcUUID := normalizeUUID(svc.UUID())
		for _, char := range svc.Characteristics() {
			chars[svcUUID+"/"+normalizeUUID(char.UUID())] = char
		}
	}

	set := &BindingSet{
		bindings: orderedmap.New[Endpoint, transport.Characteristic](),
		valid:    true,
	}

	var missing []Endpoint
	for _, spec := range endpointTable {
		key := normalizeUUID(spec.Service) + "/" + normalizeUUID(spec.Char)
		char, found := chars[key]
		if found && !char.Properties().Has(spec.Access) {
			// Present but with the wrong access bits is as unusable as absent.
			found = false
		}
		if !found {
			if spec.Required {
				missing = append(missing, spec.Endpoint)
			}
			continue
		}
		set.bindings.Set(spec.Endpoint, char)
	}

	if len(missing) > 0 {
		return nil, &MissingEndpointError{Endpoints: missing}
	}
	return set, nil
}

// Get returns the bound characteristic for an endpoint, or false if the
// endpoint never bound or the set was invalidated.
func (s *BindingSet) Get(ep Endpoint) (transport.Characteristic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid {
		return nil, false
	}
	char, ok := s.bindings.Get(ep)
	return char, ok
}

// Available reports whether an endpoint is currently usable.
func (s *BindingSet) Available(ep Endpoint) bool {
	_, ok := s.Get(ep)
	return ok
}

// Invalidate drops every binding. Called on disconnect; idempotent.
func (s *BindingSet) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
}

// Bound returns the endpoints that resolved, in bind order, for diagnostics.
func (s *BindingSet) Bound() []Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eps := make([]Endpoint, 0, s.bindings.Len())
	for pair := s.bindings.Oldest(); pair != nil; pair = pair.Next() {
		eps = append(eps, pair.Key)
	}
	return eps
}

// normalizeUUID lowercases and strips dashes so lookups tolerate whatever
// form the platform library reports.
func normalizeUUID(uuid string) string {
	return strings.ToLower(strings.ReplaceAll(uuid, "-", ""))
}
