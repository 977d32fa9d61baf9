package driving

import (
	"context"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// ContentService serves document text in resumable windows.
type ContentService interface {
	// FetchChunk returns a window of a document's text.
	FetchChunk(ctx context.Context, req domain.ChunkRequest) (*domain.ChunkWindow, error)

	// FetchWhole returns the document from offset 0 up to the maximum
	// chunk size, flagging truncation.
	FetchWhole(ctx context.Context, docID string) (*domain.WholeDocument, error)

	// Metadata returns the index record for a document.
	Metadata(ctx context.Context, docID string) (*domain.IndexedDocument, error)
}
