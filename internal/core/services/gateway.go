package services

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// schemeFile is never fetchable, whatever the configuration says.
const schemeFile = "file"

// Ranges treated as private in addition to those netip classifies.
var extraPrivatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("64:ff9b::/96"),
}

// IsPrivateAddr reports whether addr is loopback, private, link-local,
// unspecified, multicast or in another non-publicly-routable range.
// IPv4-mapped IPv6 addresses are classified by their IPv4 form.
func IsPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() {
		return true
	}
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() || addr.IsMulticast() {
		return true
	}
	for _, p := range extraPrivatePrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Gateway decides whether an outbound fetch is permitted.
// It performs no I/O other than DNS resolution.
type Gateway struct {
	policy   domain.FetchPolicy
	resolver driven.Resolver
	log      *zap.Logger
}

// NewGateway creates a gateway for policy. Schemes and hosts are
// lower-cased and "file" is removed from the allowed schemes.
func NewGateway(policy domain.FetchPolicy, resolver driven.Resolver, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}

	schemes := make([]string, 0, len(policy.AllowedSchemes))
	for _, s := range policy.AllowedSchemes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || s == schemeFile || slices.Contains(schemes, s) {
			continue
		}
		schemes = append(schemes, s)
	}
	policy.AllowedSchemes = schemes

	hosts := make([]string, 0, len(policy.HostAllowlist))
	for _, h := range policy.HostAllowlist {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.TrimPrefix(h, "*")
		h = strings.TrimPrefix(h, ".")
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	policy.HostAllowlist = hosts

	return &Gateway{policy: policy, resolver: resolver, log: log}
}

// Policy returns the normalised policy.
func (g *Gateway) Policy() domain.FetchPolicy {
	return g.policy
}

// SchemeFetchable reports whether a URL with scheme may be fetched
// directly. It is false for every scheme when fetching is disabled.
func (g *Gateway) SchemeFetchable(scheme string) bool {
	scheme = strings.ToLower(scheme)
	if !g.policy.Enabled || scheme == schemeFile {
		return false
	}
	return slices.Contains(g.policy.AllowedSchemes, scheme)
}

// Evaluate checks rawURL against the policy: scheme, host allowlist,
// then the resolved addresses. The first failing check decides.
// The error is non-nil only when ctx ended during resolution.
func (g *Gateway) Evaluate(ctx context.Context, rawURL string) (domain.Decision, error) {
	target := domain.FetchTarget{URL: rawURL}

	if !g.policy.Enabled {
		return g.deny(target, domain.DenyDisabled, "remote content fetching is disabled"), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return g.deny(target, domain.DenyScheme, fmt.Sprintf("cannot determine scheme of %q", rawURL)), nil
	}
	target.Scheme = strings.ToLower(u.Scheme)
	target.Host = strings.ToLower(u.Hostname())
	target.Port = u.Port()

	if !g.SchemeFetchable(target.Scheme) {
		return g.deny(target, domain.DenyScheme,
			fmt.Sprintf("scheme %q is not permitted for remote fetch", target.Scheme)), nil
	}

	if target.Host == "" {
		return g.deny(target, domain.DenyHost, "URL has no host"), nil
	}

	if !g.hostAllowed(target.Host) {
		return g.deny(target, domain.DenyHost,
			fmt.Sprintf("host %q is not in the allowlist", target.Host)), nil
	}

	addrs, err := g.resolve(ctx, target.Host)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return g.deny(target, domain.DenyResolution, "resolution interrupted"), ctxErr
		}
		return g.deny(target, domain.DenyResolution,
			fmt.Sprintf("cannot resolve host %q: %v", target.Host, err)), nil
	}
	target.ResolvedAddrs = addrs

	for _, addr := range addrs {
		if err := g.CheckAddress(addr); err != nil {
			return g.deny(target, domain.DenyPrivateNetwork,
				fmt.Sprintf("host %q resolves to private address %s", target.Host, addr)), nil
		}
	}

	g.log.Debug("fetch allowed",
		zap.String("url", rawURL),
		zap.Int("addresses", len(addrs)))

	return domain.Decision{
		Allowed:  true,
		Target:   target,
		MaxBytes: g.policy.MaxBytes,
		Timeout:  g.policy.Timeout,
	}, nil
}

// CheckAddress returns a policy error if addr must not be contacted.
// The fetch adapter calls it again for the address it actually dials.
func (g *Gateway) CheckAddress(addr netip.Addr) error {
	if g.policy.AllowPrivateNetworkTargets || !IsPrivateAddr(addr) {
		return nil
	}
	return domain.PolicyDenied(domain.DenyPrivateNetwork,
		fmt.Sprintf("address %s is in a private network range", addr))
}

func (g *Gateway) hostAllowed(host string) bool {
	if len(g.policy.HostAllowlist) == 0 {
		return true
	}
	for _, allowed := range g.policy.HostAllowlist {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func (g *Gateway) resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(strings.Trim(host, "[]")); err == nil {
		return []netip.Addr{addr.WithZone("")}, nil
	}
	if g.resolver == nil {
		return nil, errors.New("no resolver configured")
	}

	if g.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.policy.Timeout)
		defer cancel()
	}

	addrs, err := g.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, errors.New("no addresses")
	}
	return addrs, nil
}

func (g *Gateway) deny(target domain.FetchTarget, reason domain.DenyReason, detail string) domain.Decision {
	g.log.Info("fetch denied",
		zap.String("url", target.URL),
		zap.String("reason", string(reason)),
		zap.String("detail", detail))

	return domain.Decision{Reason: reason, Detail: detail, Target: target}
}
