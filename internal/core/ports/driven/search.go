package driven

import (
	"context"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// LabelSource lists the labels known to the index.
type LabelSource interface {
	// ListLabels returns the live label catalog.
	ListLabels(ctx context.Context) ([]domain.RemoteLabel, error)
}

// DocumentIndex resolves individual documents.
type DocumentIndex interface {
	// GetDocument looks a document up by its doc_id within a label scope
	// ("" for no scope). Returns domain.ErrNotFound when absent.
	GetDocument(ctx context.Context, docID, label string) (*domain.IndexedDocument, error)

	// CachedContent fetches the index's own stored copy of a document.
	// Used when the origin URL must not be fetched directly.
	CachedContent(ctx context.Context, docID string) (*domain.RawDocument, error)
}

// SearchIndex provides the full set of read-only index operations.
// Backed by the Fess REST API.
type SearchIndex interface {
	LabelSource
	DocumentIndex

	// Search performs a full-text query.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)

	// Suggest returns query suggestions for a prefix.
	Suggest(ctx context.Context, prefix string, opts domain.SuggestOptions) (map[string]any, error)

	// PopularWords returns frequently searched words.
	PopularWords(ctx context.Context, opts domain.PopularWordsOptions) (map[string]any, error)

	// Health reports the index's health status.
	Health(ctx context.Context) (map[string]any, error)
}
