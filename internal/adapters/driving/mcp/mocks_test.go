package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	lastRequest domain.SearchRequest
	lastNum     int
	response    *domain.SearchResponse
	result      map[string]any
	err         error
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.lastRequest = req
	return m.response, m.err
}

func (m *mockSearchService) Suggest(_ context.Context, _ string, num int, _ []string, _ string) (map[string]any, error) {
	m.lastNum = num
	return m.result, m.err
}

func (m *mockSearchService) PopularWords(_ context.Context, _ *int, _ string) (map[string]any, error) {
	return m.result, m.err
}

func (m *mockSearchService) Health(_ context.Context) (map[string]any, error) {
	return m.result, m.err
}

// mockContentService is a mock implementation of driving.ContentService.
type mockContentService struct {
	lastChunk domain.ChunkRequest
	lastDocID string
	window    *domain.ChunkWindow
	whole     *domain.WholeDocument
	doc       *domain.IndexedDocument
	err       error
}

func (m *mockContentService) FetchChunk(_ context.Context, req domain.ChunkRequest) (*domain.ChunkWindow, error) {
	m.lastChunk = req
	return m.window, m.err
}

func (m *mockContentService) FetchWhole(_ context.Context, docID string) (*domain.WholeDocument, error) {
	m.lastDocID = docID
	return m.whole, m.err
}

func (m *mockContentService) Metadata(_ context.Context, docID string) (*domain.IndexedDocument, error) {
	m.lastDocID = docID
	return m.doc, m.err
}

// mockLabelService is a mock implementation of driving.LabelService.
type mockLabelService struct {
	listing   domain.LabelListing
	refreshed bool
	err       error
}

func (m *mockLabelService) Get(_ context.Context, forceRefresh bool) domain.LabelListing {
	m.refreshed = forceRefresh
	return m.listing
}

func (m *mockLabelService) ValidateLabel(_ context.Context, _ string) error {
	return m.err
}

// mockLimiter is a mock implementation of driving.Limiter.
type mockLimiter struct {
	acquired int
	released int
	err      error
}

func (m *mockLimiter) Acquire(_ context.Context) (func(), error) {
	if m.err != nil {
		return nil, m.err
	}
	m.acquired++
	return func() { m.released++ }, nil
}

func testSettings() domain.Settings {
	return domain.Settings{
		Domain:       domain.KnowledgeDomain{ID: "hr", Name: "HR Portal", Description: "Policies"},
		DefaultLabel: "hr",
		StrictLabels: true,
		Limits:       domain.DefaultLimits(),
		Fetch:        domain.FetchPolicy{Enabled: true},
	}
}

type fixture struct {
	search  *mockSearchService
	content *mockContentService
	labels  *mockLabelService
	limiter *mockLimiter
	server  *Server
}

func newFixture() *fixture {
	f := &fixture{
		search:  &mockSearchService{},
		content: &mockContentService{},
		labels:  &mockLabelService{},
		limiter: &mockLimiter{},
	}
	server, err := NewServer(&Ports{
		Search:  f.search,
		Content: f.content,
		Labels:  f.labels,
		Limiter: f.limiter,
	}, Options{Settings: testSettings(), LongRunning: time.Second})
	if err != nil {
		panic(err)
	}
	f.server = server
	return f
}
