package driving

import (
	"context"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search runs a scoped query and optionally attaches snippets to hits.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)

	// Suggest returns query suggestions for a prefix.
	Suggest(ctx context.Context, prefix string, num int, fields []string, lang string) (map[string]any, error)

	// PopularWords returns frequently searched words.
	PopularWords(ctx context.Context, seed *int, field string) (map[string]any, error)

	// Health reports the index's health.
	Health(ctx context.Context) (map[string]any, error)
}
