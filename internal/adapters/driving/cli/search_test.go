package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/services"
)

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := run("search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_PrintsHits(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.response = &domain.SearchResponse{
		RecordCount: 2,
		Hits: []map[string]any{
			{
				"doc_id": "d1", "title": "Travel policy", "url": "https://intranet/travel",
				services.SnippetsKey: map[string]any{"snippets": []string{"book *travel* early"}},
			},
			{"doc_id": "d2"},
		},
	}

	out, err := run("search", "--label", "finance", "--limit", "5", "--snippets", "travel")

	require.NoError(t, err)
	assert.Contains(t, out, "Results (2 total):")
	assert.Contains(t, out, "Travel policy")
	assert.Contains(t, out, "(d1)")
	assert.Contains(t, out, "https://intranet/travel")
	assert.Contains(t, out, "book *travel* early")
	assert.Contains(t, out, "[2] d2")

	req := ts.search.lastRequest
	assert.Equal(t, "travel", req.Query)
	require.NotNil(t, req.Label)
	assert.Equal(t, "finance", *req.Label)
	assert.Equal(t, 5, *req.PageSize)
	assert.True(t, req.Snippets.Enabled)
}

func TestSearchCmd_DefaultLabelIsUnset(t *testing.T) {
	ts := setupTestServices(t)

	out, err := run("search", "x")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
	assert.Nil(t, ts.search.lastRequest.Label)
}

func TestSearchCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.response = &domain.SearchResponse{Raw: map[string]any{"record_count": 0, "data": []any{}}}

	out, err := run("search", "--json", "x")

	require.NoError(t, err)
	assert.JSONEq(t, `{"record_count":0,"data":[]}`, out)
}

func TestSearchCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.err = errors.New("index unavailable")

	_, err := run("search", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed: index unavailable")
}
