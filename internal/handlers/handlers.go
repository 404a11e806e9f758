// Package handlers implements the public configuration API: sources,
// connections and jobs.
package handlers

import (
	"github.com/lj-michale/airbyte-platform/internal/discovery"
	"github.com/lj-michale/airbyte-platform/internal/events"
	"github.com/lj-michale/airbyte-platform/internal/launcher"
)

const (
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultSortOrder = "asc"
)

// Shared handler collaborators, wired once at startup (and by tests).
var (
	Discovery *discovery.Service
	Jobs      *launcher.JobStore
	Events    events.Publisher = events.NopPublisher{}
)

// Configure wires the handler package's collaborators. publisher may be nil,
// in which case job events are discarded.
func Configure(discoveryService *discovery.Service, jobStore *launcher.JobStore, publisher events.Publisher) {
	Discovery = discoveryService
	Jobs = jobStore
	if publisher != nil {
		Events = publisher
	} else {
		Events = events.NopPublisher{}
	}
}
