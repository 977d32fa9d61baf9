package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_Validation(t *testing.T) {
	full := func() *Ports {
		return &Ports{
			Search:  &mockSearchService{},
			Content: &mockContentService{},
			Labels:  &mockLabelService{},
		}
	}

	tests := []struct {
		name   string
		mutate func(p *Ports)
		err    error
	}{
		{"missing search", func(p *Ports) { p.Search = nil }, ErrMissingSearchService},
		{"missing content", func(p *Ports) { p.Content = nil }, ErrMissingContentService},
		{"missing labels", func(p *Ports) { p.Labels = nil }, ErrMissingLabelService},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := full()
			tc.mutate(p)
			_, err := NewServer(p, Options{Settings: testSettings()})
			assert.ErrorIs(t, err, tc.err)
		})
	}

	t.Run("limiter is optional", func(t *testing.T) {
		_, err := NewServer(full(), Options{Settings: testSettings()})
		assert.NoError(t, err)
	})

	t.Run("domain id required", func(t *testing.T) {
		_, err := NewServer(full(), Options{})
		assert.Error(t, err)
	})
}

// connect wires a client session to f's server over in-memory transports.
func connect(t *testing.T, f *fixture) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ss, err := f.server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func TestServer_RegistersDomainTools(t *testing.T) {
	cs := connect(t, newFixture())

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.Contains(t, tool.Description, "[Knowledge Domain]\nid: hr\nname: HR Portal\n")
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"fess_hr_fetch_content_by_id",
		"fess_hr_fetch_content_chunk",
		"fess_hr_health",
		"fess_hr_list_labels",
		"fess_hr_popular_words",
		"fess_hr_search",
		"fess_hr_suggest",
	}, names)
}

func TestServer_CallToolOverProtocol(t *testing.T) {
	f := newFixture()
	f.search.result = map[string]any{"data": map[string]any{"status": "green"}}
	cs := connect(t, f)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "fess_hr_health",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "green")
}

func TestServer_Descriptions(t *testing.T) {
	s := newFixture().server

	search := s.searchDescription()
	assert.Contains(t, search, "max 100")
	assert.Contains(t, search, "[50, 1000]")
	assert.Contains(t, search, `default "hr"`)
	assert.Contains(t, search, "Efficient agent workflow")

	chunk := s.chunkDescription()
	assert.Contains(t, chunk, "**Maximum chunk size:** 262144 characters.")
	assert.Contains(t, chunk, "origin URL")

	s.settings.Fetch.Enabled = false
	assert.NotContains(t, s.wholeDescription(), "origin URL")
}

func TestRequireBearer(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		token  string
		header string
		status int
	}{
		{"disabled", "", "", http.StatusNoContent},
		{"valid", "s3cret", "Bearer s3cret", http.StatusNoContent},
		{"missing", "s3cret", "", http.StatusUnauthorized},
		{"wrong", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			requireBearer(tc.token, ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestServer_HandlerRequiresToken(t *testing.T) {
	s := newFixture().server
	srv := httptest.NewServer(s.Handler("/mcp", "s3cret"))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/mcp", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/other")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
