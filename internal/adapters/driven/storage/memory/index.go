package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.SearchIndex = (*Index)(nil)

type entry struct {
	doc    domain.IndexedDocument
	labels []string
}

// Index is an in-memory implementation of driven.SearchIndex.
// It backs the service tests and the offline demo mode.
type Index struct {
	mu       sync.RWMutex
	docs     map[string]entry
	order    []string
	cached   map[string]domain.RawDocument
	labels   []domain.RemoteLabel
	labelErr error
	calls    map[string]int
}

// NewIndex creates a new in-memory index.
func NewIndex() *Index {
	return &Index{
		docs:   make(map[string]entry),
		cached: make(map[string]domain.RawDocument),
		calls:  make(map[string]int),
	}
}

// Put stores or replaces a document under the given labels.
func (x *Index) Put(doc domain.IndexedDocument, labels ...string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.docs[doc.ID]; !ok {
		x.order = append(x.order, doc.ID)
	}
	x.docs[doc.ID] = entry{doc: doc, labels: labels}
}

// PutCached stores the index's cached copy of a document.
func (x *Index) PutCached(docID string, raw domain.RawDocument) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.cached[docID] = raw
}

// SetLabels replaces the label list and clears any injected failure.
func (x *Index) SetLabels(labels []domain.RemoteLabel) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.labels = labels
	x.labelErr = nil
}

// FailLabels makes ListLabels return err until SetLabels is called.
func (x *Index) FailLabels(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.labelErr = err
}

// Calls returns how often op was invoked.
func (x *Index) Calls(op string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.calls[op]
}

func (x *Index) record(op string) {
	x.calls[op]++
}

// ListLabels returns the configured remote labels.
func (x *Index) ListLabels(_ context.Context) ([]domain.RemoteLabel, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("labels")
	if x.labelErr != nil {
		return nil, x.labelErr
	}
	return append([]domain.RemoteLabel(nil), x.labels...), nil
}

// GetDocument retrieves a document by ID within a label scope.
func (x *Index) GetDocument(_ context.Context, docID, label string) (*domain.IndexedDocument, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("document")
	e, ok := x.docs[docID]
	if !ok || !e.inScope(label) {
		return nil, domain.ErrNotFound
	}
	doc := e.doc
	return &doc, nil
}

// CachedContent returns the stored cached copy of a document.
func (x *Index) CachedContent(_ context.Context, docID string) (*domain.RawDocument, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("cache")
	raw, ok := x.cached[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &raw, nil
}

// Search matches documents whose title or text contains every query word.
func (x *Index) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("search")

	words := strings.Fields(strings.ToLower(query))
	var matched []map[string]any
	for _, id := range x.order {
		e := x.docs[id]
		if !e.inScope(opts.Label) || !e.matches(words) {
			continue
		}
		matched = append(matched, e.hit())
	}

	total := len(matched)
	start := min(opts.Start, total)
	end := total
	if opts.PageSize > 0 {
		end = min(start+opts.PageSize, total)
	}
	hits := matched[start:end]
	if hits == nil {
		hits = []map[string]any{}
	}

	data := make([]any, len(hits))
	for i, h := range hits {
		data[i] = h
	}
	return &domain.SearchResponse{
		Raw: map[string]any{
			"q":            query,
			"record_count": total,
			"page_size":    opts.PageSize,
			"data":         data,
		},
		Hits:        hits,
		RecordCount: total,
	}, nil
}

// Suggest returns title words starting with prefix.
func (x *Index) Suggest(_ context.Context, prefix string, opts domain.SuggestOptions) (map[string]any, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("suggest")

	prefix = strings.ToLower(prefix)
	seen := make(map[string]struct{})
	var words []string
	for _, id := range x.order {
		e := x.docs[id]
		if !e.inScope(opts.Label) {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(e.doc.Title)) {
			if _, dup := seen[w]; dup || !strings.HasPrefix(w, prefix) {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
		}
	}
	sort.Strings(words)
	if opts.Num > 0 && len(words) > opts.Num {
		words = words[:opts.Num]
	}

	data := make([]any, 0, len(words))
	for _, w := range words {
		data = append(data, map[string]any{"text": w})
	}
	return map[string]any{"record_count": len(data), "data": data}, nil
}

// PopularWords returns title words ordered by frequency.
func (x *Index) PopularWords(_ context.Context, opts domain.PopularWordsOptions) (map[string]any, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("popular")

	counts := make(map[string]int)
	for _, id := range x.order {
		e := x.docs[id]
		if !e.inScope(opts.Label) {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(e.doc.Title)) {
			counts[w]++
		}
	}
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	data := make([]any, len(words))
	for i, w := range words {
		data[i] = w
	}
	return map[string]any{"record_count": len(data), "data": data}, nil
}

// Health always reports green.
func (x *Index) Health(_ context.Context) (map[string]any, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("health")
	return map[string]any{"data": map[string]any{"status": "green", "timezone": "UTC"}}, nil
}

func (e entry) inScope(label string) bool {
	if label == "" || label == domain.LabelAll {
		return true
	}
	for _, l := range e.labels {
		if l == label {
			return true
		}
	}
	return false
}

func (e entry) matches(words []string) bool {
	haystack := strings.ToLower(e.doc.Title)
	for _, f := range domain.TextFieldPriority {
		haystack += "\n" + strings.ToLower(e.doc.FieldText(f))
	}
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

func (e entry) hit() map[string]any {
	h := map[string]any{
		"_id":    "solr-" + e.doc.ID,
		"doc_id": e.doc.ID,
		"title":  e.doc.Title,
		"url":    e.doc.URL,
	}
	if digest := e.doc.FieldText(domain.FieldDigest); digest != "" {
		h["content_description"] = digest
	}
	if len(e.labels) > 0 {
		h["label"] = append([]string(nil), e.labels...)
	}
	return h
}
