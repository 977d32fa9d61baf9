package driven

import (
	"context"
	"net/netip"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// Resolver resolves host names for the fetch gateway.
// *net.Resolver satisfies this interface.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Fetcher performs a bounded transfer of an allowed target.
type Fetcher interface {
	// Fetch transfers decision.Target honouring decision.MaxBytes and
	// decision.Timeout. A body larger than MaxBytes is an error, never a
	// silently truncated result.
	Fetch(ctx context.Context, decision domain.Decision) (*domain.RawDocument, error)
}

// ContentCache memoises resolved document text across calls.
// Implementations must be safe for concurrent use.
type ContentCache interface {
	Get(key string) (*domain.ContentSource, bool)
	Add(key string, src *domain.ContentSource)
}
