package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query               string   `json:"query" jsonschema:"search term"`
	Label               *string  `json:"label,omitempty" jsonschema:"label value to scope the search; 'all' searches the whole index"`
	PageSize            *int     `json:"page_size,omitempty" jsonschema:"number of results per page"`
	Start               *int     `json:"start,omitempty" jsonschema:"starting index for pagination"`
	Sort                string   `json:"sort,omitempty" jsonschema:"sort order"`
	Lang                string   `json:"lang,omitempty" jsonschema:"search language"`
	IncludeFields       []string `json:"include_fields,omitempty" jsonschema:"fields to keep on each hit"`
	Snippets            bool     `json:"snippets,omitempty" jsonschema:"attach generated text snippets to each hit"`
	SnippetSizeChars    *int     `json:"snippet_size_chars,omitempty" jsonschema:"characters per snippet fragment"`
	SnippetFragments    *int     `json:"snippet_fragments,omitempty" jsonschema:"maximum fragments per hit"`
	SnippetDocs         *int     `json:"snippet_docs,omitempty" jsonschema:"maximum hits to enrich with snippets"`
	SnippetTagPre       string   `json:"snippet_tag_pre,omitempty" jsonschema:"opening highlight tag"`
	SnippetTagPost      string   `json:"snippet_tag_post,omitempty" jsonschema:"closing highlight tag"`
	SnippetScanMaxChars *int     `json:"snippet_scan_max_chars,omitempty" jsonschema:"characters of text scanned for matches"`
}

func (in SearchInput) request() domain.SearchRequest {
	return domain.SearchRequest{
		Query:         in.Query,
		Label:         in.Label,
		PageSize:      in.PageSize,
		Start:         in.Start,
		Sort:          in.Sort,
		Lang:          in.Lang,
		IncludeFields: in.IncludeFields,
		Snippets: domain.SnippetRequest{
			Enabled:      in.Snippets,
			SizeChars:    in.SnippetSizeChars,
			Fragments:    in.SnippetFragments,
			Docs:         in.SnippetDocs,
			ScanMaxChars: in.SnippetScanMaxChars,
			TagPre:       in.SnippetTagPre,
			TagPost:      in.SnippetTagPost,
		},
	}
}

// SuggestInput is the input schema for the suggest tool.
type SuggestInput struct {
	Prefix string   `json:"prefix" jsonschema:"search prefix for suggestions"`
	Num    *int     `json:"num,omitempty" jsonschema:"number of suggestions to return (default 10)"`
	Fields []string `json:"fields,omitempty" jsonschema:"fields to search for suggestions"`
	Lang   string   `json:"lang,omitempty" jsonschema:"search language"`
}

// PopularWordsInput is the input schema for the popular_words tool.
type PopularWordsInput struct {
	Seed  *int   `json:"seed,omitempty" jsonschema:"random seed for word selection"`
	Field string `json:"field,omitempty" jsonschema:"field to extract popular words from"`
}

// ListLabelsInput is the input schema for the list_labels tool.
type ListLabelsInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"bypass the label cache and query the index"`
}

// HealthInput is the (empty) input schema for the health tool.
type HealthInput struct{}

// FetchChunkInput is the input schema for the fetch_content_chunk tool.
type FetchChunkInput struct {
	DocID  string `json:"doc_id" jsonschema:"document ID obtained from search results"`
	Offset *int   `json:"offset,omitempty" jsonschema:"character offset into the document (default 0)"`
	Length *int   `json:"length,omitempty" jsonschema:"number of characters to return (default maximum chunk size)"`
}

// FetchWholeInput is the input schema for the fetch_content_by_id tool.
type FetchWholeInput struct {
	DocID string `json:"doc_id" jsonschema:"document ID obtained from search results"`
}

// defaultSuggestNum matches the index's own default.
const defaultSuggestNum = 10

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        s.toolName("search"),
		Description: s.searchDescription(),
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: s.toolName("suggest"),
		Description: s.describe("Get query suggestions based on the index vocabulary.\n" +
			"Use after reviewing evidence to generate grounded query expansions."),
	}, s.handleSuggest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: s.toolName("popular_words"),
		Description: s.describe("Get popular words from the index.\n" +
			"Use to discover dominant vocabulary for pivots and follow-up queries."),
	}, s.handlePopularWords)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: s.toolName("list_labels"),
		Description: s.describe("List available label scopes with descriptions, examples and whether each label exists in the index.\n" +
			"Use this first when query intent is unclear or you need a constrained search scope."),
	}, s.handleListLabels)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        s.toolName("health"),
		Description: s.describe("Check the health status of the underlying search index."),
	}, s.handleHealth)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        s.toolName("fetch_content_chunk"),
		Description: s.chunkDescription(),
	}, s.handleFetchChunk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        s.toolName("fetch_content_by_id"),
		Description: s.wholeDescription(),
	}, s.handleFetchWhole)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, any, error) {
	return s.call(ctx, "search", func(ctx context.Context) (any, error) {
		resp, err := s.ports.Search.Search(ctx, input.request())
		if err != nil {
			return nil, err
		}
		if resp.Raw != nil {
			return resp.Raw, nil
		}
		return map[string]any{"record_count": resp.RecordCount, "data": resp.Hits}, nil
	})
}

func (s *Server) handleSuggest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, any, error) {
	num := defaultSuggestNum
	if input.Num != nil {
		num = *input.Num
	}
	return s.call(ctx, "suggest", func(ctx context.Context) (any, error) {
		return s.ports.Search.Suggest(ctx, input.Prefix, num, input.Fields, input.Lang)
	})
}

func (s *Server) handlePopularWords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PopularWordsInput,
) (*mcp.CallToolResult, any, error) {
	return s.call(ctx, "popular_words", func(ctx context.Context) (any, error) {
		return s.ports.Search.PopularWords(ctx, input.Seed, input.Field)
	})
}

func (s *Server) handleListLabels(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListLabelsInput,
) (*mcp.CallToolResult, any, error) {
	return s.call(ctx, "list_labels", func(ctx context.Context) (any, error) {
		return NewLabelsOutput(s.ports.Labels.Get(ctx, input.Refresh), s.settings), nil
	})
}

func (s *Server) handleHealth(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ HealthInput,
) (*mcp.CallToolResult, any, error) {
	return s.call(ctx, "health", func(ctx context.Context) (any, error) {
		return s.ports.Search.Health(ctx)
	})
}

func (s *Server) handleFetchChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FetchChunkInput,
) (*mcp.CallToolResult, any, error) {
	return s.call(ctx, "fetch_content_chunk", func(ctx context.Context) (any, error) {
		return s.ports.Content.FetchChunk(ctx, domain.ChunkRequest{
			DocID:  input.DocID,
			Offset: input.Offset,
			Length: input.Length,
		})
	})
}

func (s *Server) handleFetchWhole(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FetchWholeInput,
) (*mcp.CallToolResult, any, error) {
	return s.call(ctx, "fetch_content_by_id", func(ctx context.Context) (any, error) {
		whole, err := s.ports.Content.FetchWhole(ctx, input.DocID)
		if err != nil {
			return nil, err
		}
		if whole.Truncated {
			whole.Message = fmt.Sprintf("Content was truncated at %d characters. Full document is %d characters. %s",
				whole.Length, whole.TotalLength, s.continuation(input.DocID, whole.Length))
		}
		return whole, nil
	})
}
