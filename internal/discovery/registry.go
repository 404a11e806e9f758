package discovery

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps source types to their connectors.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

// NewRegistry creates an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[string]Connector),
	}
}

// Register adds a connector under the given source type, replacing any
// previous registration.
func (r *Registry) Register(sourceType string, connector Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[sourceType] = connector
}

// Get returns the connector registered for sourceType.
func (r *Registry) Get(sourceType string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connector, ok := r.connectors[sourceType]
	if !ok {
		return nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
	return connector, nil
}

// Types returns the registered source types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.connectors))
	for t := range r.connectors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultRegistry returns a registry with all built-in connectors registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("postgres", NewPostgresConnector())
	r.Register("csv", NewCSVConnector())
	r.Register("http_api", NewHTTPAPIConnector())
	return r
}
