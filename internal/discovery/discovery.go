// Package discovery implements connector-backed schema discovery for
// configured sources. A connector inspects the system a source points at and
// reports a catalog of streams and fields.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lj-michale/airbyte-platform/internal/models"
)

// Connector inspects an external system described by a source configuration.
type Connector interface {
	// Discover returns the catalog of streams the source exposes.
	Discover(ctx context.Context, configuration string) (*models.Catalog, error)
	// Check verifies the source is reachable with the given configuration.
	Check(ctx context.Context, configuration string) error
}

// Error is a connector failure carrying both the user-facing message the
// connector reported and the internal detail. The external message is
// preferred when surfacing the failure to API clients.
type Error struct {
	ExternalMessage string
	InternalMessage string
}

func (e *Error) Error() string {
	if e.ExternalMessage != "" {
		return e.ExternalMessage
	}
	return e.InternalMessage
}

// UserMessage returns the message that should be shown to API clients.
func (e *Error) UserMessage() string {
	if e.ExternalMessage != "" {
		return e.ExternalMessage
	}
	return e.InternalMessage
}

// AsError unwraps err into a connector *Error if it is one.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Service runs schema discovery against registered connectors, consulting the
// catalog cache first.
type Service struct {
	registry *Registry
	cache    *CatalogCache
}

// NewService creates a discovery Service. cache may be nil to disable caching.
func NewService(registry *Registry, cache *CatalogCache) *Service {
	return &Service{
		registry: registry,
		cache:    cache,
	}
}

// DiscoverSource resolves the connector for the source's type and runs
// discovery. The second return value reports whether the catalog came from
// the cache.
func (s *Service) DiscoverSource(ctx context.Context, source *models.Source) (*models.Catalog, bool, error) {
	connector, err := s.registry.Get(source.SourceType)
	if err != nil {
		return nil, false, fmt.Errorf("no connector for source %s: %w", source.ID, err)
	}

	if catalog, ok := s.cache.Get(ctx, source.SourceType, source.Configuration); ok {
		log.Printf("Discovery cache hit for source %s (%s)", source.ID, source.SourceType)
		return catalog, true, nil
	}

	catalog, err := connector.Discover(ctx, source.Configuration)
	if err != nil {
		return nil, false, err
	}

	s.cache.Set(ctx, source.SourceType, source.Configuration, catalog)
	log.Printf("Discovered %d streams for source %s (%s)", len(catalog.Streams), source.ID, source.SourceType)
	return catalog, false, nil
}

// CheckSource verifies the source is reachable via its connector.
func (s *Service) CheckSource(ctx context.Context, source *models.Source) error {
	connector, err := s.registry.Get(source.SourceType)
	if err != nil {
		return fmt.Errorf("no connector for source %s: %w", source.ID, err)
	}
	return connector.Check(ctx, source.Configuration)
}
