package mcp

import (
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs queries, suggestions, popular words and health checks.
	Search driving.SearchService

	// Content serves document text windows and metadata.
	Content driving.ContentService

	// Labels serves the merged label catalog.
	Labels driving.LabelService

	// Limiter bounds concurrent calls. Optional.
	Limiter driving.Limiter
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Content == nil {
		return ErrMissingContentService
	}
	if p.Labels == nil {
		return ErrMissingLabelService
	}
	return nil
}
