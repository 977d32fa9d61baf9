package driving

import (
	"context"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// LabelService exposes the merged label catalog.
type LabelService interface {
	// Get returns the current catalog, refreshing it when stale or forced.
	// Refresh failures are reported in the listing, never as errors.
	Get(ctx context.Context, forceRefresh bool) domain.LabelListing

	// ValidateLabel checks a label against configuration and the catalog.
	ValidateLabel(ctx context.Context, label string) error
}
