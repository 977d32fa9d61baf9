package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	lastRequest domain.SearchRequest
	response    *domain.SearchResponse
	err         error
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.lastRequest = req
	return m.response, m.err
}

func (m *mockSearchService) Suggest(context.Context, string, int, []string, string) (map[string]any, error) {
	return map[string]any{}, m.err
}

func (m *mockSearchService) PopularWords(context.Context, *int, string) (map[string]any, error) {
	return map[string]any{}, m.err
}

func (m *mockSearchService) Health(context.Context) (map[string]any, error) {
	return map[string]any{}, m.err
}

// mockContentService is a mock implementation of driving.ContentService.
type mockContentService struct {
	lastChunk domain.ChunkRequest
	window    *domain.ChunkWindow
	whole     *domain.WholeDocument
	err       error
}

func (m *mockContentService) FetchChunk(_ context.Context, req domain.ChunkRequest) (*domain.ChunkWindow, error) {
	m.lastChunk = req
	return m.window, m.err
}

func (m *mockContentService) FetchWhole(context.Context, string) (*domain.WholeDocument, error) {
	return m.whole, m.err
}

func (m *mockContentService) Metadata(context.Context, string) (*domain.IndexedDocument, error) {
	return nil, m.err
}

// mockLabelService is a mock implementation of driving.LabelService.
type mockLabelService struct {
	listing   domain.LabelListing
	refreshed bool
}

func (m *mockLabelService) Get(_ context.Context, forceRefresh bool) domain.LabelListing {
	m.refreshed = forceRefresh
	return m.listing
}

func (m *mockLabelService) ValidateLabel(context.Context, string) error {
	return nil
}

type testServices struct {
	search  *mockSearchService
	content *mockContentService
	labels  *mockLabelService
}

// setupTestServices installs mocks and a valid configuration, restoring
// package state when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	resetState(t)

	ts := &testServices{
		search:  &mockSearchService{response: &domain.SearchResponse{}},
		content: &mockContentService{},
		labels:  &mockLabelService{},
	}
	cfg := file.Default()
	cfg.FessBaseURL = "http://localhost:8080"
	cfg.Domain.ID = "hr"
	cfg.Domain.Name = "HR"
	cfg.DefaultLabel = "all"

	appConfig = &cfg
	searchService = ts.search
	contentService = ts.content
	labelService = ts.labels
	return ts
}

// resetState clears wired dependencies and flag values before and after t.
func resetState(t *testing.T) {
	t.Helper()
	reset := func() {
		shutdown()
		appConfig = nil
		searchService = nil
		contentService = nil
		labelService = nil
		requestLimiter = nil

		configPath = ""
		debugMode = false
		searchLabel, searchPageSize, searchStart, searchSnippets, searchJSON = "", 10, 0, false, false
		labelsRefresh, labelsJSON = false, false
		chunkOffset, chunkLength, wholeJSON = 0, 0, false
		serveTransport, servePort = "stdio", 0
		initFessURL, initDomainID, initForce = "http://localhost:8080", "", false
		clearChanged(rootCmd)
		rootCmd.SetArgs(nil)
	}
	reset()
	t.Cleanup(reset)
}

func clearChanged(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	for _, c := range cmd.Commands() {
		clearChanged(c)
	}
}

// run executes the root command with args, capturing all output.
func run(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
