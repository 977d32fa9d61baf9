package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// fakeFess serves the subset of the Fess API the commands use.
func fakeFess(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/labels", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"record_count":1,"data":[{"label":"Finance","value":"finance"}]}`)
	})
	mux.HandleFunc("/api/v1/documents", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == `doc_id:"d1"` {
			fmt.Fprint(w, `{"record_count":1,"data":[{"doc_id":"d1","title":"Guide","content":"hello world"}]}`)
			return
		}
		fmt.Fprint(w, `{"record_count":0,"data":[]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeFessConfig(t *testing.T, baseURL string) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`
fessBaseUrl = %q

[domain]
id = "docs"

[labels.guides]
title = "Guides"
description = "How-to guides"
`, baseURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path, dir
}

func TestWire_LabelsAgainstFess(t *testing.T) {
	resetState(t)
	srv := fakeFess(t)
	path, dir := writeFessConfig(t, srv.URL)

	out, err := run("labels", "--json", "--config", path)
	require.NoError(t, err)

	var entries []domain.LabelEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	values := make([]string, 0, len(entries))
	for _, e := range entries {
		values = append(values, e.Value)
	}
	assert.Equal(t, []string{"all", "guides", "finance"}, values)

	// The file logger was opened next to the configuration.
	assert.FileExists(t, filepath.Join(dir, "log", "server.log"))
}

func TestWire_WholeDocumentAgainstFess(t *testing.T) {
	resetState(t)
	srv := fakeFess(t)
	path, _ := writeFessConfig(t, srv.URL)

	out, err := run("whole", "--config", path, "d1")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)

	_, err = run("whole", "--config", path, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWire_RejectsBadBaseURL(t *testing.T) {
	cfg := file.Default()
	cfg.FessBaseURL = "ftp://fess"
	cfg.Domain.ID = "docs"

	_, err := wire(&cfg, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating fess client")
}

func TestWire_ContentCacheOptional(t *testing.T) {
	cfg := file.Default()
	cfg.FessBaseURL = "http://localhost:8080"
	cfg.Domain.ID = "docs"
	cfg.Limits.ContentCacheEntries = 16
	cfg.ContentFetch.Enabled = false

	w, err := wire(&cfg, nil)

	require.NoError(t, err)
	assert.NotNil(t, w.search)
	assert.NotNil(t, w.content)
	assert.NotNil(t, w.labels)
	assert.NotNil(t, w.limiter)
}
