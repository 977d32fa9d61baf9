package file

import (
	"time"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// Config is the on-disk configuration schema.
type Config struct {
	FessBaseURL  string `toml:"fessBaseUrl" yaml:"fessBaseUrl" json:"fessBaseUrl"`
	FessAPIToken string `toml:"fessApiToken,omitempty" yaml:"fessApiToken,omitempty" json:"fessApiToken,omitempty"`
	DefaultLabel string `toml:"defaultLabel,omitempty" yaml:"defaultLabel,omitempty" json:"defaultLabel,omitempty"`
	StrictLabels bool   `toml:"strictLabels" yaml:"strictLabels" json:"strictLabels"`

	Domain DomainConfig           `toml:"domain" yaml:"domain" json:"domain"`
	Labels map[string]LabelConfig `toml:"labels,omitempty" yaml:"labels,omitempty" json:"labels,omitempty"`

	HTTPTransport HTTPTransportConfig `toml:"httpTransport" yaml:"httpTransport" json:"httpTransport"`
	Timeouts      TimeoutsConfig      `toml:"timeouts" yaml:"timeouts" json:"timeouts"`
	Limits        LimitsConfig        `toml:"limits" yaml:"limits" json:"limits"`
	Logging       LoggingConfig       `toml:"logging" yaml:"logging" json:"logging"`
	Security      SecurityConfig      `toml:"security" yaml:"security" json:"security"`
	ContentFetch  ContentFetchConfig  `toml:"contentFetch" yaml:"contentFetch" json:"contentFetch"`
}

// DomainConfig describes the knowledge domain the server exposes.
type DomainConfig struct {
	ID          string `toml:"id" yaml:"id" json:"id"`
	Name        string `toml:"name" yaml:"name" json:"name"`
	Description string `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`

	// LabelFilter is the legacy way of choosing the default label.
	LabelFilter string `toml:"labelFilter,omitempty" yaml:"labelFilter,omitempty" json:"labelFilter,omitempty"`
}

// LabelConfig describes one configured label.
type LabelConfig struct {
	Title       string   `toml:"title" yaml:"title" json:"title"`
	Description string   `toml:"description" yaml:"description" json:"description"`
	Examples    []string `toml:"examples,omitempty" yaml:"examples,omitempty" json:"examples,omitempty"`
}

// HTTPTransportConfig configures the streamable HTTP transport.
type HTTPTransportConfig struct {
	BindAddress string `toml:"bindAddress" yaml:"bindAddress" json:"bindAddress"`
	Port        int    `toml:"port" yaml:"port" json:"port"`
	Path        string `toml:"path" yaml:"path" json:"path"`
}

// TimeoutsConfig holds request timeouts in milliseconds.
type TimeoutsConfig struct {
	FessRequestTimeoutMs   int `toml:"fessRequestTimeoutMs" yaml:"fessRequestTimeoutMs" json:"fessRequestTimeoutMs"`
	LongRunningThresholdMs int `toml:"longRunningThresholdMs" yaml:"longRunningThresholdMs" json:"longRunningThresholdMs"`
}

// LimitsConfig holds numeric bounds.
type LimitsConfig struct {
	MaxPageSize               int     `toml:"maxPageSize" yaml:"maxPageSize" json:"maxPageSize"`
	MaxChunkBytes             int     `toml:"maxChunkBytes" yaml:"maxChunkBytes" json:"maxChunkBytes"`
	MaxInFlightRequests       int     `toml:"maxInFlightRequests" yaml:"maxInFlightRequests" json:"maxInFlightRequests"`
	MaxQueuedRequests         int     `toml:"maxQueuedRequests" yaml:"maxQueuedRequests" json:"maxQueuedRequests"`
	LabelCacheTTLSeconds      int     `toml:"labelCacheTtlSeconds" yaml:"labelCacheTtlSeconds" json:"labelCacheTtlSeconds"`
	ContentCacheEntries       int     `toml:"contentCacheEntries" yaml:"contentCacheEntries" json:"contentCacheEntries"`
	ContentCacheTTLSeconds    int     `toml:"contentCacheTtlSeconds" yaml:"contentCacheTtlSeconds" json:"contentCacheTtlSeconds"`
	UpstreamRequestsPerSecond float64 `toml:"upstreamRequestsPerSecond" yaml:"upstreamRequestsPerSecond" json:"upstreamRequestsPerSecond"`

	SnippetMinChars         int `toml:"snippetMinChars" yaml:"snippetMinChars" json:"snippetMinChars"`
	SnippetMaxChars         int `toml:"snippetMaxChars" yaml:"snippetMaxChars" json:"snippetMaxChars"`
	SnippetDefaultChars     int `toml:"snippetDefaultChars" yaml:"snippetDefaultChars" json:"snippetDefaultChars"`
	SnippetMaxFragments     int `toml:"snippetMaxFragments" yaml:"snippetMaxFragments" json:"snippetMaxFragments"`
	SnippetDefaultFragments int `toml:"snippetDefaultFragments" yaml:"snippetDefaultFragments" json:"snippetDefaultFragments"`
	SnippetMaxDocs          int `toml:"snippetMaxDocs" yaml:"snippetMaxDocs" json:"snippetMaxDocs"`
	SnippetDefaultDocs      int `toml:"snippetDefaultDocs" yaml:"snippetDefaultDocs" json:"snippetDefaultDocs"`
	SnippetScanMaxChars     int `toml:"snippetScanMaxChars" yaml:"snippetScanMaxChars" json:"snippetScanMaxChars"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level" json:"level"`
	RetainDays int    `toml:"retainDays" yaml:"retainDays" json:"retainDays"`
}

// SecurityConfig configures inbound access control.
type SecurityConfig struct {
	HTTPAuthToken         string `toml:"httpAuthToken,omitempty" yaml:"httpAuthToken,omitempty" json:"httpAuthToken,omitempty"`
	AllowNonLocalhostBind bool   `toml:"allowNonLocalhostBind" yaml:"allowNonLocalhostBind" json:"allowNonLocalhostBind"`
}

// ContentFetchConfig configures outbound fetching of document origins.
type ContentFetchConfig struct {
	Enabled                    bool     `toml:"enabled" yaml:"enabled" json:"enabled"`
	MaxBytes                   int64    `toml:"maxBytes" yaml:"maxBytes" json:"maxBytes"`
	TimeoutMs                  int      `toml:"timeoutMs" yaml:"timeoutMs" json:"timeoutMs"`
	AllowedSchemes             []string `toml:"allowedSchemes" yaml:"allowedSchemes" json:"allowedSchemes"`
	AllowPrivateNetworkTargets bool     `toml:"allowPrivateNetworkTargets" yaml:"allowPrivateNetworkTargets" json:"allowPrivateNetworkTargets"`
	AllowedHostAllowlist       []string `toml:"allowedHostAllowlist,omitempty" yaml:"allowedHostAllowlist,omitempty" json:"allowedHostAllowlist,omitempty"`
	UserAgent                  string   `toml:"userAgent" yaml:"userAgent" json:"userAgent"`
	EnablePDF                  bool     `toml:"enablePdf" yaml:"enablePdf" json:"enablePdf"`
}

// Default returns a configuration with every optional field set.
// FessBaseURL and Domain.ID have no defaults.
func Default() Config {
	limits := domain.DefaultLimits()
	return Config{
		StrictLabels: true,
		HTTPTransport: HTTPTransportConfig{
			BindAddress: "127.0.0.1",
			Port:        0,
			Path:        "/mcp",
		},
		Timeouts: TimeoutsConfig{
			FessRequestTimeoutMs:   30000,
			LongRunningThresholdMs: 2000,
		},
		Limits: LimitsConfig{
			MaxPageSize:             limits.MaxPageSize,
			MaxChunkBytes:           limits.MaxChunkBytes,
			MaxInFlightRequests:     limits.MaxInFlightRequests,
			MaxQueuedRequests:       limits.MaxQueuedRequests,
			LabelCacheTTLSeconds:    int(limits.LabelCacheTTL / time.Second),
			ContentCacheEntries:     limits.ContentCacheEntries,
			ContentCacheTTLSeconds:  int(limits.ContentCacheTTL / time.Second),
			SnippetMinChars:         limits.SnippetMinChars,
			SnippetMaxChars:         limits.SnippetMaxChars,
			SnippetDefaultChars:     limits.SnippetDefaultChars,
			SnippetMaxFragments:     limits.SnippetMaxFragments,
			SnippetDefaultFragments: limits.SnippetDefaultFragments,
			SnippetMaxDocs:          limits.SnippetMaxDocs,
			SnippetDefaultDocs:      limits.SnippetDefaultDocs,
			SnippetScanMaxChars:     limits.SnippetScanMaxChars,
		},
		Logging: LoggingConfig{
			Level:      "info",
			RetainDays: 7,
		},
		ContentFetch: ContentFetchConfig{
			Enabled:        true,
			MaxBytes:       5 * 1024 * 1024,
			TimeoutMs:      20000,
			AllowedSchemes: []string{"http", "https"},
			UserAgent:      "fess-mcp/1.0",
		},
	}
}

// ToSettings converts a validated configuration into the core's view.
func (c *Config) ToSettings() domain.Settings {
	labels := make(map[string]domain.LabelDefinition, len(c.Labels))
	for value, l := range c.Labels {
		labels[value] = domain.LabelDefinition{
			Value:       value,
			Title:       l.Title,
			Description: l.Description,
			Examples:    append([]string(nil), l.Examples...),
		}
	}

	return domain.Settings{
		Domain: domain.KnowledgeDomain{
			ID:          c.Domain.ID,
			Name:        c.Domain.Name,
			Description: c.Domain.Description,
			LabelFilter: c.Domain.LabelFilter,
		},
		Labels:       labels,
		DefaultLabel: c.DefaultLabel,
		StrictLabels: c.StrictLabels,
		Limits: domain.Limits{
			MaxPageSize:               c.Limits.MaxPageSize,
			MaxChunkBytes:             c.Limits.MaxChunkBytes,
			MaxInFlightRequests:       c.Limits.MaxInFlightRequests,
			MaxQueuedRequests:         c.Limits.MaxQueuedRequests,
			LabelCacheTTL:             seconds(c.Limits.LabelCacheTTLSeconds),
			ContentCacheEntries:       c.Limits.ContentCacheEntries,
			ContentCacheTTL:           seconds(c.Limits.ContentCacheTTLSeconds),
			UpstreamRequestsPerSecond: c.Limits.UpstreamRequestsPerSecond,
			SnippetMinChars:           c.Limits.SnippetMinChars,
			SnippetMaxChars:           c.Limits.SnippetMaxChars,
			SnippetDefaultChars:       c.Limits.SnippetDefaultChars,
			SnippetMaxFragments:       c.Limits.SnippetMaxFragments,
			SnippetDefaultFragments:   c.Limits.SnippetDefaultFragments,
			SnippetMaxDocs:            c.Limits.SnippetMaxDocs,
			SnippetDefaultDocs:        c.Limits.SnippetDefaultDocs,
			SnippetScanMaxChars:       c.Limits.SnippetScanMaxChars,
		},
		UpstreamTimeout: millis(c.Timeouts.FessRequestTimeoutMs),
		Fetch: domain.FetchPolicy{
			Enabled:                    c.ContentFetch.Enabled,
			AllowedSchemes:             append([]string(nil), c.ContentFetch.AllowedSchemes...),
			HostAllowlist:              append([]string(nil), c.ContentFetch.AllowedHostAllowlist...),
			AllowPrivateNetworkTargets: c.ContentFetch.AllowPrivateNetworkTargets,
			MaxBytes:                   c.ContentFetch.MaxBytes,
			Timeout:                    millis(c.ContentFetch.TimeoutMs),
			UserAgent:                  c.ContentFetch.UserAgent,
			EnablePDF:                  c.ContentFetch.EnablePDF,
		},
	}
}

// LongRunningThreshold is the duration after which a call is logged as slow.
func (c *Config) LongRunningThreshold() time.Duration {
	return millis(c.Timeouts.LongRunningThresholdMs)
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	if c.FessAPIToken != "" {
		c.FessAPIToken = redactedSecret
	}
	if c.Security.HTTPAuthToken != "" {
		c.Security.HTTPAuthToken = redactedSecret
	}
	return c
}

const redactedSecret = "********"

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
