package driven

import (
	"context"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches
// based on MIME type.
type NormaliserRegistry interface {
	// Normalise extracts text using the best matching normaliser.
	// Returns domain.ErrUnsupportedType when no normaliser matches.
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
