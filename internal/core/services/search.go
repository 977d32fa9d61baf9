package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driving"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	defaultPageSize    = 20
	defaultSuggestions = 10

	// SnippetsKey is the hit key that carries generated snippets.
	SnippetsKey = "mcp_snippets"
)

// SearchService runs label-scoped queries against the index.
type SearchService struct {
	index    driven.SearchIndex
	labels   driving.LabelService
	settings domain.Settings
	log      *zap.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(
	index driven.SearchIndex,
	labels driving.LabelService,
	settings domain.Settings,
	log *zap.Logger,
) *SearchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchService{
		index:    index,
		labels:   labels,
		settings: settings,
		log:      log,
	}
}

// Search validates the request, runs it, strips index-internal keys and
// optionally attaches snippets to the leading hits.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.Validation("query parameter is required", "pass a keyword or question to search for")
	}

	pageSize := defaultPageSize
	if req.PageSize != nil {
		pageSize = *req.PageSize
	}
	maxPage := s.settings.Limits.MaxPageSize
	if pageSize < 1 || pageSize > maxPage {
		return nil, domain.Validation(
			fmt.Sprintf("pageSize must be between 1 and %d, got %d", maxPage, pageSize),
			fmt.Sprintf("use a page size of at most %d and page with start", maxPage))
	}

	start := 0
	if req.Start != nil {
		start = *req.Start
	}
	if start < 0 {
		return nil, domain.Validation(
			fmt.Sprintf("start must be a non-negative integer, got %d", start),
			"use start=0 for the first page")
	}

	label := s.settings.DefaultLabel
	if req.Label != nil {
		label = *req.Label
	}
	if err := s.labels.ValidateLabel(ctx, label); err != nil {
		return nil, err
	}

	// Snippet arguments are checked before going to the index.
	var params domain.SnippetParams
	if req.Snippets.Enabled {
		var err error
		if params, err = ClampSnippetParams(req.Snippets, s.settings.Limits); err != nil {
			return nil, err
		}
	}

	scope := domain.LabelScope(label)
	s.log.Debug("search",
		zap.String("query", query),
		zap.String("label", label),
		zap.Int("start", start),
		zap.Int("page_size", pageSize))

	resp, err := s.index.Search(ctx, query, domain.SearchOptions{
		Label:    scope,
		Start:    start,
		PageSize: pageSize,
		Sort:     req.Sort,
		Lang:     req.Lang,
	})
	if err != nil {
		return nil, classifyUpstream("searching the index", err)
	}

	for _, hit := range resp.Hits {
		delete(hit, "_id")
	}

	if req.Snippets.Enabled {
		s.enrich(ctx, resp.Hits, query, scope, req.Snippets, params)
	}

	if len(req.IncludeFields) > 0 {
		keep := make(map[string]struct{}, len(req.IncludeFields)+1)
		for _, f := range req.IncludeFields {
			keep[f] = struct{}{}
		}
		keep[SnippetsKey] = struct{}{}
		for _, hit := range resp.Hits {
			for k := range hit {
				if _, ok := keep[k]; !ok {
					delete(hit, k)
				}
			}
		}
	}

	s.log.Debug("search complete",
		zap.Int("hits", len(resp.Hits)),
		zap.Int("record_count", resp.RecordCount))
	return resp, nil
}

// enrich attaches snippets to up to params.Docs hits. Enrichment runs
// concurrently, bounded by the in-flight limit; a failure on one hit is
// recorded on that hit and does not fail the search.
func (s *SearchService) enrich(
	ctx context.Context,
	hits []map[string]any,
	query, scope string,
	req domain.SnippetRequest,
	params domain.SnippetParams,
) {
	if len(hits) > params.Docs {
		hits = hits[:params.Docs]
	}
	terms := ExtractQueryTerms(query)
	sem := semaphore.NewWeighted(int64(max(1, s.settings.Limits.MaxInFlightRequests)))

	var wg sync.WaitGroup
	for _, hit := range hits {
		docID, _ := hit["doc_id"].(string)
		if docID == "" {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			hit[SnippetsKey] = map[string]any{"error": err.Error()}
			continue
		}
		wg.Add(1)
		go func(hit map[string]any, docID string) {
			defer wg.Done()
			defer sem.Release(1)
			hit[SnippetsKey] = s.snippetsFor(ctx, docID, scope, terms, req, params)
		}(hit, docID)
	}
	wg.Wait()
}

func (s *SearchService) snippetsFor(
	ctx context.Context,
	docID, scope string,
	terms []string,
	req domain.SnippetRequest,
	params domain.SnippetParams,
) map[string]any {
	doc, err := s.index.GetDocument(ctx, docID, scope)
	if err != nil {
		s.log.Warn("snippet generation failed", zap.String("doc_id", docID), zap.Error(err))
		return map[string]any{"error": err.Error()}
	}

	text, field := "", ""
	for _, f := range domain.TextFieldPriority {
		if text = doc.FieldText(f); text != "" {
			field = f
			break
		}
	}

	return map[string]any{
		"requested_size_chars": optionalInt(req.SizeChars),
		"effective_size_chars": params.SizeChars,
		"requested_fragments":  optionalInt(req.Fragments),
		"effective_fragments":  params.Fragments,
		"source_field":         field,
		"snippets":             nonNil(GenerateSnippets(text, terms, params)),
		"clamped":              params.Clamped,
	}
}

// Suggest returns query suggestions within the default label scope.
func (s *SearchService) Suggest(
	ctx context.Context, prefix string, num int, fields []string, lang string,
) (map[string]any, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, domain.Validation("prefix parameter is required", "pass the beginning of a word to complete")
	}
	if num == 0 {
		num = defaultSuggestions
	}
	if num < 1 {
		return nil, domain.Validation(fmt.Sprintf("num must be a positive integer, got %d", num), "omit num to use 10")
	}

	res, err := s.index.Suggest(ctx, prefix, domain.SuggestOptions{
		Label:  s.settings.DefaultScope(),
		Num:    num,
		Fields: fields,
		Lang:   lang,
	})
	if err != nil {
		return nil, classifyUpstream("fetching suggestions", err)
	}
	return res, nil
}

// PopularWords returns frequently searched words within the default scope.
func (s *SearchService) PopularWords(ctx context.Context, seed *int, field string) (map[string]any, error) {
	res, err := s.index.PopularWords(ctx, domain.PopularWordsOptions{
		Label: s.settings.DefaultScope(),
		Seed:  seed,
		Field: field,
	})
	if err != nil {
		return nil, classifyUpstream("fetching popular words", err)
	}
	return res, nil
}

// Health reports the index's health.
func (s *SearchService) Health(ctx context.Context) (map[string]any, error) {
	res, err := s.index.Health(ctx)
	if err != nil {
		return nil, classifyUpstream("checking index health", err)
	}
	return res, nil
}

func optionalInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
