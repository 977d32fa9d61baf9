package domain

import (
	"fmt"
	"time"
)

// KnowledgeDomain describes the slice of the index a server instance exposes.
type KnowledgeDomain struct {
	// ID is a short identifier used in tool names and resource URIs.
	ID string

	// Name is the human-readable domain name.
	Name string

	// Description is optional prose describing the domain.
	Description string

	// LabelFilter is the legacy per-domain label scope.
	LabelFilter string
}

// Block renders the domain as a text block for tool descriptions.
func (d KnowledgeDomain) Block() string {
	out := fmt.Sprintf("[Knowledge Domain]\nid: %s\nname: %s\n", d.ID, d.Name)
	if d.Description != "" {
		out += fmt.Sprintf("description: %s\n", d.Description)
	}
	if d.LabelFilter != "" {
		out += fmt.Sprintf("fessLabel: %s\n", d.LabelFilter)
	}
	return out
}

// Limits holds the numeric bounds applied by the core.
type Limits struct {
	MaxPageSize         int
	MaxChunkBytes       int
	MaxInFlightRequests int
	MaxQueuedRequests   int

	LabelCacheTTL       time.Duration
	ContentCacheEntries int
	ContentCacheTTL     time.Duration

	UpstreamRequestsPerSecond float64

	SnippetMinChars         int
	SnippetMaxChars         int
	SnippetDefaultChars     int
	SnippetMaxFragments     int
	SnippetDefaultFragments int
	SnippetMaxDocs          int
	SnippetDefaultDocs      int
	SnippetScanMaxChars     int
}

// DefaultLimits returns the limits used when configuration omits them.
func DefaultLimits() Limits {
	return Limits{
		MaxPageSize:             100,
		MaxChunkBytes:           262144,
		MaxInFlightRequests:     32,
		MaxQueuedRequests:       128,
		LabelCacheTTL:           5 * time.Minute,
		ContentCacheEntries:     0,
		ContentCacheTTL:         time.Minute,
		SnippetMinChars:         50,
		SnippetMaxChars:         1000,
		SnippetDefaultChars:     200,
		SnippetMaxFragments:     5,
		SnippetDefaultFragments: 2,
		SnippetMaxDocs:          20,
		SnippetDefaultDocs:      5,
		SnippetScanMaxChars:     100000,
	}
}

// Settings is the fixed, load-time view of configuration consumed by the core.
// The core never re-reads configuration mid-call.
type Settings struct {
	Domain KnowledgeDomain

	// Labels are the configured label definitions keyed by value.
	Labels map[string]LabelDefinition

	// DefaultLabel scopes calls that do not name a label.
	DefaultLabel string

	// StrictLabels rejects labels that are neither configured nor remote.
	StrictLabels bool

	Limits Limits

	// UpstreamTimeout bounds every call to the index.
	UpstreamTimeout time.Duration

	Fetch FetchPolicy
}

// LabelScope converts a label to the index filter value ("" for all).
func LabelScope(label string) string {
	if label == LabelAll {
		return ""
	}
	return label
}

// DefaultScope returns the index filter for the default label.
func (s Settings) DefaultScope() string {
	return LabelScope(s.DefaultLabel)
}
