package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

func decodeError(t *testing.T, res *mcp.CallToolResult) ErrorDetail {
	t.Helper()
	require.NotNil(t, res)
	require.True(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var body ErrorBody
	require.NoError(t, json.Unmarshal([]byte(text.Text), &body))
	return body.Error
}

func intPtr(v int) *int { return &v }

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("passes arguments through", func(t *testing.T) {
		f := newFixture()
		raw := map[string]any{"record_count": 1, "data": []map[string]any{{"doc_id": "d1"}}}
		f.search.response = &domain.SearchResponse{Raw: raw, RecordCount: 1}

		label := "finance"
		res, out, err := f.server.handleSearch(ctx, nil, SearchInput{
			Query:            "travel",
			Label:            &label,
			PageSize:         intPtr(5),
			IncludeFields:    []string{"doc_id"},
			Snippets:         true,
			SnippetSizeChars: intPtr(80),
			SnippetTagPre:    "[",
		})
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, raw, out)

		req := f.search.lastRequest
		assert.Equal(t, "travel", req.Query)
		assert.Equal(t, "finance", *req.Label)
		assert.Equal(t, 5, *req.PageSize)
		assert.Nil(t, req.Start)
		assert.Equal(t, []string{"doc_id"}, req.IncludeFields)
		assert.True(t, req.Snippets.Enabled)
		assert.Equal(t, 80, *req.Snippets.SizeChars)
		assert.Nil(t, req.Snippets.Fragments)
		assert.Equal(t, "[", req.Snippets.TagPre)
	})

	t.Run("builds payload without raw body", func(t *testing.T) {
		f := newFixture()
		hits := []map[string]any{{"doc_id": "d1"}}
		f.search.response = &domain.SearchResponse{Hits: hits, RecordCount: 7}

		_, out, err := f.server.handleSearch(ctx, nil, SearchInput{Query: "x"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"record_count": 7, "data": hits}, out)
	})

	t.Run("validation error becomes tool error", func(t *testing.T) {
		f := newFixture()
		f.search.err = domain.Validation("query parameter is required", "pass a non-empty query")

		res, out, err := f.server.handleSearch(ctx, nil, SearchInput{})
		require.NoError(t, err)
		assert.Nil(t, out)

		detail := decodeError(t, res)
		assert.Equal(t, "validation", detail.Kind)
		assert.Equal(t, "query parameter is required", detail.Message)
		assert.Equal(t, "pass a non-empty query", detail.Hint)
		assert.False(t, detail.Retryable)
	})
}

func TestServer_handleSuggest(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults num to 10", func(t *testing.T) {
		f := newFixture()
		f.search.result = map[string]any{"data": []any{"travel"}}

		_, out, err := f.server.handleSuggest(ctx, nil, SuggestInput{Prefix: "tra"})
		require.NoError(t, err)
		assert.Equal(t, 10, f.search.lastNum)
		assert.Equal(t, f.search.result, out)
	})

	t.Run("explicit num", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.server.handleSuggest(ctx, nil, SuggestInput{Prefix: "tra", Num: intPtr(3)})
		require.NoError(t, err)
		assert.Equal(t, 3, f.search.lastNum)
	})
}

func TestServer_handlePopularWordsAndHealth(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.search.result = map[string]any{"data": map[string]any{"status": "green"}}

	_, out, err := f.server.handlePopularWords(ctx, nil, PopularWordsInput{Seed: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, f.search.result, out)

	_, out, err = f.server.handleHealth(ctx, nil, HealthInput{})
	require.NoError(t, err)
	assert.Equal(t, f.search.result, out)

	f.search.err = domain.Upstream("index request failed", errors.New("connection refused"))
	res, _, err := f.server.handleHealth(ctx, nil, HealthInput{})
	require.NoError(t, err)
	detail := decodeError(t, res)
	assert.Equal(t, "upstream", detail.Kind)
	assert.Contains(t, detail.Message, "connection refused")
	assert.True(t, detail.Retryable)
}

func TestServer_handleListLabels(t *testing.T) {
	f := newFixture()
	f.labels.listing = domain.LabelListing{
		Snapshot: &domain.LabelCatalogSnapshot{
			Entries: map[string]domain.LabelEntry{
				"all": {LabelDefinition: domain.DefaultAllLabel, Availability: domain.AvailabilityBoth},
				"hr": {
					LabelDefinition: domain.LabelDefinition{Value: "hr", Title: "HR", Description: "People"},
					Availability:    domain.AvailabilityConfigOnly,
				},
				"ops": {
					LabelDefinition: domain.LabelDefinition{Value: "ops", Title: "ops"},
					Name:            "Operations",
					Availability:    domain.AvailabilityRemoteOnly,
				},
			},
			Order: []string{"all", "hr", "ops"},
		},
		Stale:   true,
		Warning: "label refresh failed: timeout",
	}

	_, out, err := f.server.handleListLabels(context.Background(), nil, ListLabelsInput{Refresh: true})
	require.NoError(t, err)
	assert.True(t, f.labels.refreshed)

	labels, ok := out.(LabelsOutput)
	require.True(t, ok)
	assert.Equal(t, "hr", labels.DefaultLabel)
	assert.True(t, labels.StrictLabels)
	assert.False(t, labels.FessAvailable)
	assert.Equal(t, "label refresh failed: timeout", labels.Warning)

	require.Len(t, labels.Labels, 3)
	assert.Equal(t, "all", labels.Labels[0].Value)
	assert.True(t, labels.Labels[0].IsPresentInFess)

	hr := labels.Labels[1]
	assert.True(t, hr.IsConfigured)
	assert.False(t, hr.IsPresentInFess)
	assert.Equal(t, []string{}, hr.Examples)

	ops := labels.Labels[2]
	assert.False(t, ops.IsConfigured)
	assert.True(t, ops.IsPresentInFess)
	assert.Equal(t, "Operations", ops.Name)
}

func TestServer_handleFetchChunk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns window", func(t *testing.T) {
		f := newFixture()
		f.content.window = &domain.ChunkWindow{Content: "abc", HasMore: true, Offset: 3, Length: 3, TotalLength: 10}

		_, out, err := f.server.handleFetchChunk(ctx, nil, FetchChunkInput{DocID: "d1", Offset: intPtr(3), Length: intPtr(3)})
		require.NoError(t, err)
		assert.Equal(t, f.content.window, out)
		assert.Equal(t, "d1", f.content.lastChunk.DocID)
		assert.Equal(t, 3, *f.content.lastChunk.Offset)
	})

	t.Run("policy denial carries reason", func(t *testing.T) {
		f := newFixture()
		f.content.err = domain.PolicyDenied(domain.DenyPrivateNetwork, "10.0.0.1 is a private address")

		res, _, err := f.server.handleFetchChunk(ctx, nil, FetchChunkInput{DocID: "d1"})
		require.NoError(t, err)
		detail := decodeError(t, res)
		assert.Equal(t, "policy_denied", detail.Kind)
		assert.Equal(t, "private-network", detail.Reason)
		assert.NotEmpty(t, detail.Hint)
		assert.False(t, detail.Retryable)
	})
}

func TestServer_handleFetchWhole(t *testing.T) {
	f := newFixture()
	f.content.whole = &domain.WholeDocument{
		ChunkWindow: domain.ChunkWindow{Content: "hello", TotalLength: 5, Length: 5},
	}

	_, out, err := f.server.handleFetchWhole(context.Background(), nil, FetchWholeInput{DocID: "d9"})
	require.NoError(t, err)
	assert.Equal(t, f.content.whole, out)
	assert.Equal(t, "d9", f.content.lastDocID)

	f.content.err = domain.NotFound("document d9 not found", "")
	res, _, err := f.server.handleFetchWhole(context.Background(), nil, FetchWholeInput{DocID: "d9"})
	require.NoError(t, err)
	assert.Equal(t, "not_found", decodeError(t, res).Kind)
}

func TestServer_handleFetchWhole_TruncatedNamesChunkTool(t *testing.T) {
	f := newFixture()
	f.content.whole = &domain.WholeDocument{
		ChunkWindow: domain.ChunkWindow{Content: "0123456789", Length: 10, TotalLength: 25, HasMore: true},
		Truncated:   true,
		Message:     "Content was truncated at 10 characters.",
	}

	_, out, err := f.server.handleFetchWhole(context.Background(), nil, FetchWholeInput{DocID: "big"})
	require.NoError(t, err)
	whole, ok := out.(*domain.WholeDocument)
	require.True(t, ok)
	assert.Contains(t, whole.Message, "Full document is 25 characters.")
	assert.Contains(t, whole.Message, "Use fess_hr_fetch_content_chunk with doc_id='big' and offset=10")
	assert.NotContains(t, whole.Message, "docId=")
}

func TestServer_LimiterWrapsEveryCall(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.search.result = map[string]any{}

	_, _, err := f.server.handleHealth(ctx, nil, HealthInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.limiter.acquired)
	assert.Equal(t, 1, f.limiter.released)

	f.limiter.err = domain.Overloaded("too many concurrent requests")
	res, _, err := f.server.handleHealth(ctx, nil, HealthInput{})
	require.NoError(t, err)
	detail := decodeError(t, res)
	assert.Equal(t, "overloaded", detail.Kind)
	assert.True(t, detail.Retryable)
}

func TestNewErrorBody_PlainError(t *testing.T) {
	body := NewErrorBody(errors.New("boom"))
	assert.Equal(t, ErrorDetail{Kind: "internal", Message: "boom"}, body.Error)
}
