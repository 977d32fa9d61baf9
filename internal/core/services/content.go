package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driving"
)

// Ensure ContentService implements the interface.
var _ driving.ContentService = (*ContentService)(nil)

// ContentService resolves document text and serves it in windows.
type ContentService struct {
	index    driven.DocumentIndex
	scope    string
	maxChunk int
	sources  []contentSource
	cache    driven.ContentCache
	log      *zap.Logger
}

// NewContentService creates a content service. fetcher may be nil, in which
// case documents are only served from the index.
func NewContentService(
	index driven.DocumentIndex,
	gateway *Gateway,
	fetcher driven.Fetcher,
	normalisers driven.NormaliserRegistry,
	settings domain.Settings,
	log *zap.Logger,
) *ContentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContentService{
		index:    index,
		scope:    settings.DefaultScope(),
		maxChunk: settings.Limits.MaxChunkBytes,
		sources: []contentSource{
			&indexFieldSource{log: log},
			&indexCacheSource{index: index, gateway: gateway, normalisers: normalisers, log: log},
			&remoteFetchSource{gateway: gateway, fetcher: fetcher, normalisers: normalisers, log: log},
		},
		log: log,
	}
}

// SetCache enables memoisation of resolved text.
func (s *ContentService) SetCache(cache driven.ContentCache) {
	s.cache = cache
}

// MaxChunk returns the configured window ceiling.
func (s *ContentService) MaxChunk() int {
	return s.maxChunk
}

// Metadata returns the index record for a document.
func (s *ContentService) Metadata(ctx context.Context, docID string) (*domain.IndexedDocument, error) {
	if err := requireDocID(docID); err != nil {
		return nil, err
	}
	return s.lookup(ctx, docID)
}

// Resolve produces the document's text, walking the source list in order.
func (s *ContentService) Resolve(ctx context.Context, docID string) (*domain.ContentSource, error) {
	if err := requireDocID(docID); err != nil {
		return nil, err
	}

	key := docID + "\x00" + s.scope
	if s.cache != nil {
		if src, ok := s.cache.Get(key); ok {
			return src, nil
		}
	}

	doc, err := s.lookup(ctx, docID)
	if err != nil {
		return nil, err
	}

	for _, source := range s.sources {
		if !source.applies(doc) {
			continue
		}
		src, err := source.acquire(ctx, doc)
		if err != nil {
			s.log.Debug("content source failed",
				zap.String("doc_id", docID),
				zap.String("source", source.name()),
				zap.Error(err))
			return nil, err
		}
		if src != nil {
			if s.cache != nil {
				s.cache.Add(key, src)
			}
			return src, nil
		}
	}

	if doc.URL == "" {
		return nil, domain.NotFound(
			fmt.Sprintf("document %s has no indexed text and no origin URL", docID),
			"the document cannot be retrieved; try another search result")
	}
	return nil, domain.NotFound(
		fmt.Sprintf("no content available for document %s", docID),
		"the index holds no text for this document and its origin could not be used")
}

// FetchChunk returns a window of a document's text.
func (s *ContentService) FetchChunk(ctx context.Context, req domain.ChunkRequest) (*domain.ChunkWindow, error) {
	if err := requireDocID(req.DocID); err != nil {
		return nil, err
	}

	offset := 0
	if req.Offset != nil {
		offset = *req.Offset
		if offset < 0 {
			return nil, domain.Validation(
				fmt.Sprintf("offset must be a non-negative integer, got %d", offset),
				"use offset=0 to start reading from the beginning")
		}
	}

	length := s.maxChunk
	if req.Length != nil {
		length = *req.Length
		if length <= 0 {
			return nil, domain.Validation(
				fmt.Sprintf("length must be a positive integer, got %d", length),
				fmt.Sprintf("omit length to use the server limit of %d", s.maxChunk))
		}
		if length > s.maxChunk {
			return nil, domain.Validation(
				fmt.Sprintf("requested chunk size %d exceeds server limit %d", length, s.maxChunk),
				fmt.Sprintf("request at most %d characters per chunk", s.maxChunk))
		}
	}

	src, err := s.Resolve(ctx, req.DocID)
	if err != nil {
		return nil, err
	}

	runes := []rune(src.Text)
	if offset > len(runes) {
		return nil, domain.Validation(
			fmt.Sprintf("offset %d is beyond the end of the document (%d characters)", offset, len(runes)),
			fmt.Sprintf("use an offset between 0 and %d", len(runes)))
	}

	window := sliceWindow(runes, offset, length)
	window.Source = describeSource(src)
	return &window, nil
}

// FetchWhole returns the document from the beginning up to the maximum
// chunk size.
func (s *ContentService) FetchWhole(ctx context.Context, docID string) (*domain.WholeDocument, error) {
	if err := requireDocID(docID); err != nil {
		return nil, err
	}

	src, err := s.Resolve(ctx, docID)
	if err != nil {
		return nil, err
	}

	window := sliceWindow([]rune(src.Text), 0, s.maxChunk)
	window.Source = describeSource(src)

	whole := &domain.WholeDocument{ChunkWindow: window, Truncated: window.HasMore}
	if whole.Truncated {
		whole.Message = fmt.Sprintf(
			"Content was truncated at %d characters. Full document is %d characters. "+
				"Continue from offset=%d to retrieve additional sections.",
			window.Length, window.TotalLength, window.Length)
	}
	return whole, nil
}

func (s *ContentService) lookup(ctx context.Context, docID string) (*domain.IndexedDocument, error) {
	doc, err := s.index.GetDocument(ctx, docID, s.scope)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound(
			fmt.Sprintf("document %s not found", docID),
			"docId values must come from search results; run a search to obtain a current docId")
	}
	if err != nil {
		return nil, classifyUpstream(fmt.Sprintf("looking up document %s", docID), err)
	}
	return doc, nil
}

func requireDocID(docID string) error {
	if strings.TrimSpace(docID) == "" {
		return domain.Validation(
			"docId parameter is required",
			"use the search tool first to find documents, then use the doc_id from the results")
	}
	return nil
}

func describeSource(src *domain.ContentSource) string {
	switch src.Origin {
	case domain.OriginIndexField:
		return string(src.Origin) + ":" + src.Field
	case domain.OriginRemoteFetch:
		return string(src.Origin)
	default:
		return ""
	}
}
