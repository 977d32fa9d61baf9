package fetch

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// Ensure Resolver implements the interface.
var _ driven.Resolver = (*Resolver)(nil)

// Resolver resolves host names with a per-lookup timeout.
type Resolver struct {
	r       *net.Resolver
	timeout time.Duration
}

// NewResolver creates a resolver using the system configuration.
// A non-positive timeout leaves lookups bounded only by the caller's context.
func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{r: net.DefaultResolver, timeout: timeout}
}

// LookupNetIP resolves host to its addresses, IPv4-mapped forms unmapped.
func (r *Resolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	addrs, err := r.r.LookupNetIP(ctx, network, host)
	if err != nil {
		return nil, err
	}
	for i, a := range addrs {
		addrs[i] = a.Unmap()
	}
	return addrs, nil
}
