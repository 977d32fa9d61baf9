package domain

import (
	"net/netip"
	"time"
)

// DenyReason is the machine-readable cause of a gateway denial.
type DenyReason string

// Deny reasons.
const (
	DenyNone           DenyReason = ""
	DenyDisabled       DenyReason = "disabled"
	DenyScheme         DenyReason = "scheme"
	DenyHost           DenyReason = "host"
	DenyResolution     DenyReason = "resolution"
	DenyPrivateNetwork DenyReason = "private-network"
)

func (r DenyReason) hint() string {
	switch r {
	case DenyDisabled:
		return "remote content fetching is disabled; rely on text stored in the index"
	case DenyScheme:
		return "only the configured schemes (http, https by default) may be fetched"
	case DenyHost:
		return "add the host to contentFetch.allowedHostAllowlist to permit it"
	case DenyResolution:
		return "the host name could not be resolved; check the document URL"
	case DenyPrivateNetwork:
		return "the target resolves to a private address; set contentFetch.allowPrivateNetworkTargets to permit it"
	default:
		return ""
	}
}

// FetchTarget is a candidate external URL evaluated by the gateway.
type FetchTarget struct {
	// URL is the original URL string.
	URL string

	// Scheme is the lower-cased URL scheme.
	Scheme string

	// Host is the lower-cased host name without port.
	Host string

	// Port is the explicit port, empty when the scheme default applies.
	Port string

	// ResolvedAddrs holds the addresses the host resolved to.
	ResolvedAddrs []netip.Addr
}

// FetchPolicy configures what outbound fetches are permitted.
type FetchPolicy struct {
	// Enabled turns remote fetching on or off entirely.
	Enabled bool

	// AllowedSchemes lists permitted URL schemes. "file" is never honoured.
	AllowedSchemes []string

	// HostAllowlist restricts fetches to these hosts and their subdomains.
	// Empty means any host.
	HostAllowlist []string

	// AllowPrivateNetworkTargets permits loopback, private and link-local targets.
	AllowPrivateNetworkTargets bool

	// MaxBytes caps the size of a transferred body.
	MaxBytes int64

	// Timeout caps the duration of a transfer.
	Timeout time.Duration

	// UserAgent identifies the client on outbound requests.
	UserAgent string

	// EnablePDF allows PDF bodies to be extracted.
	EnablePDF bool
}

// Decision is the gateway's verdict on a FetchTarget.
// An allowed decision carries the limits the transfer must honour.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Detail  string
	Target  FetchTarget

	MaxBytes int64
	Timeout  time.Duration
}

// Err converts a denial into a PolicyDenied error. Returns nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return PolicyDenied(d.Reason, d.Detail)
}
