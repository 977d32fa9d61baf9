package services

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/normalisers"
	"github.com/custodia-labs/fess-mcp/internal/normalisers/html"
	"github.com/custodia-labs/fess-mcp/internal/normalisers/pdf"
	"github.com/custodia-labs/fess-mcp/internal/normalisers/plaintext"
)

// mockResolver maps host names to addresses.
type mockResolver struct {
	hosts map[string][]netip.Addr
	calls atomic.Int32
}

func newMockResolver(entries map[string]string) *mockResolver {
	r := &mockResolver{hosts: make(map[string][]netip.Addr)}
	for host, addr := range entries {
		r.hosts[host] = append(r.hosts[host], netip.MustParseAddr(addr))
	}
	return r
}

func (r *mockResolver) LookupNetIP(ctx context.Context, _, host string) ([]netip.Addr, error) {
	r.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addrs, ok := r.hosts[host]
	if !ok {
		return nil, errors.New("no such host")
	}
	return addrs, nil
}

// mockFetcher returns a canned document and records what it was asked for.
type mockFetcher struct {
	mu       sync.Mutex
	raw      *domain.RawDocument
	err      error
	requests []domain.Decision
}

func (f *mockFetcher) Fetch(_ context.Context, d domain.Decision) (*domain.RawDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, d)
	if f.err != nil {
		return nil, f.err
	}
	raw := *f.raw
	raw.URI = d.Target.URL
	return &raw, nil
}

func (f *mockFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// mapCache is a trivial driven.ContentCache.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]*domain.ContentSource
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*domain.ContentSource)}
}

func (c *mapCache) Get(key string) (*domain.ContentSource, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	src, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return src, ok
}

func (c *mapCache) Add(key string, src *domain.ContentSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = src
}

// blockingLabelSource holds every ListLabels call until release is closed.
type blockingLabelSource struct {
	release chan struct{}
	calls   atomic.Int32
	labels  []domain.RemoteLabel
	err     error
}

func (s *blockingLabelSource) ListLabels(ctx context.Context) ([]domain.RemoteLabel, error) {
	s.calls.Add(1)
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.labels, s.err
}

func testRegistry() *normalisers.Registry {
	return normalisers.NewRegistry(plaintext.New(), html.New(), pdf.New())
}

func testSettings() domain.Settings {
	limits := domain.DefaultLimits()
	limits.MaxChunkBytes = 1000
	return domain.Settings{
		Domain:          domain.KnowledgeDomain{ID: "test", Name: "Test"},
		Labels:          map[string]domain.LabelDefinition{},
		DefaultLabel:    domain.LabelAll,
		StrictLabels:    true,
		Limits:          limits,
		UpstreamTimeout: time.Second,
		Fetch: domain.FetchPolicy{
			Enabled:        true,
			AllowedSchemes: []string{"http", "https"},
			MaxBytes:       1 << 20,
			Timeout:        time.Second,
			UserAgent:      "test-agent",
		},
	}
}

// contentFixture wires a ContentService over an in-memory index.
type contentFixture struct {
	index    *memory.Index
	fetcher  *mockFetcher
	resolver *mockResolver
	svc      *ContentService
}

func newContentFixture(settings domain.Settings) *contentFixture {
	index := memory.NewIndex()
	resolver := newMockResolver(map[string]string{
		"public.example.com":   "93.184.216.34",
		"internal.example.com": "10.0.0.5",
	})
	fetcher := &mockFetcher{raw: &domain.RawDocument{
		MIMEType: "text/html; charset=utf-8",
		Content:  []byte("<html><body><h1>Remote</h1><p>Fetched body</p></body></html>"),
	}}
	gateway := NewGateway(settings.Fetch, resolver, nil)
	svc := NewContentService(index, gateway, fetcher, testRegistry(), settings, nil)
	return &contentFixture{index: index, fetcher: fetcher, resolver: resolver, svc: svc}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
