package normalisers

import (
	"context"
	"mime"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to the highest-priority normaliser
// that supports their MIME type. A normaliser may claim a whole major type
// with a wildcard such as "text/*".
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// SupportedMIMETypes returns all MIME types that can be normalised.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// Normalise extracts text using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	n := r.lookup(MediaType(raw.MIMEType))
	if n == nil {
		return "", domain.ErrUnsupportedType
	}
	return n.Normalise(ctx, raw)
}

func (r *Registry) lookup(mediaType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	major, _, _ := strings.Cut(mediaType, "/")
	wildcard := major + "/*"

	// Exact matches win over wildcards regardless of priority.
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if t == mediaType {
				return n
			}
		}
	}
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if t == wildcard {
				return n
			}
		}
	}
	return nil
}

// MediaType strips parameters from a Content-Type value and lower-cases it.
// An empty value is treated as application/octet-stream.
func MediaType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return "application/octet-stream"
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
