package file

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

var domainIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.FessBaseURL == "" {
		add("fessBaseUrl is required")
	} else if u, err := url.Parse(c.FessBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("fessBaseUrl must be an http(s) URL, got %q", c.FessBaseURL)
	}

	switch {
	case c.Domain.ID == "":
		add("domain.id is required")
	case !domainIDPattern.MatchString(c.Domain.ID):
		add("domain.id may only contain letters, digits, '-' and '_', got %q", c.Domain.ID)
	}

	for value := range c.Labels {
		if strings.TrimSpace(value) == "" {
			add("labels: label value must not be empty")
		}
	}

	positive := []struct {
		name  string
		value int
	}{
		{"timeouts.fessRequestTimeoutMs", c.Timeouts.FessRequestTimeoutMs},
		{"timeouts.longRunningThresholdMs", c.Timeouts.LongRunningThresholdMs},
		{"limits.maxPageSize", c.Limits.MaxPageSize},
		{"limits.maxChunkBytes", c.Limits.MaxChunkBytes},
		{"limits.maxInFlightRequests", c.Limits.MaxInFlightRequests},
		{"limits.labelCacheTtlSeconds", c.Limits.LabelCacheTTLSeconds},
		{"limits.snippetMinChars", c.Limits.SnippetMinChars},
		{"limits.snippetMaxFragments", c.Limits.SnippetMaxFragments},
		{"limits.snippetMaxDocs", c.Limits.SnippetMaxDocs},
		{"limits.snippetScanMaxChars", c.Limits.SnippetScanMaxChars},
		{"contentFetch.timeoutMs", c.ContentFetch.TimeoutMs},
	}
	for _, p := range positive {
		if p.value <= 0 {
			add("%s must be positive, got %d", p.name, p.value)
		}
	}

	nonNegative := []struct {
		name  string
		value int
	}{
		{"limits.maxQueuedRequests", c.Limits.MaxQueuedRequests},
		{"limits.contentCacheEntries", c.Limits.ContentCacheEntries},
		{"logging.retainDays", c.Logging.RetainDays},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			add("%s must not be negative, got %d", p.name, p.value)
		}
	}

	if c.Limits.ContentCacheEntries > 0 && c.Limits.ContentCacheTTLSeconds <= 0 {
		add("limits.contentCacheTtlSeconds must be positive when the content cache is enabled")
	}
	if c.Limits.UpstreamRequestsPerSecond < 0 {
		add("limits.upstreamRequestsPerSecond must not be negative")
	}

	l := c.Limits
	if !(l.SnippetMinChars <= l.SnippetDefaultChars && l.SnippetDefaultChars <= l.SnippetMaxChars) {
		add("limits: snippetMinChars <= snippetDefaultChars <= snippetMaxChars must hold")
	}
	if l.SnippetDefaultFragments < 1 || l.SnippetDefaultFragments > l.SnippetMaxFragments {
		add("limits.snippetDefaultFragments must be between 1 and snippetMaxFragments")
	}
	if l.SnippetDefaultDocs < 1 || l.SnippetDefaultDocs > l.SnippetMaxDocs {
		add("limits.snippetDefaultDocs must be between 1 and snippetMaxDocs")
	}

	if c.ContentFetch.MaxBytes <= 0 {
		add("contentFetch.maxBytes must be positive, got %d", c.ContentFetch.MaxBytes)
	}

	if !logLevels[c.Logging.Level] {
		add("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	if c.HTTPTransport.Port < 0 || c.HTTPTransport.Port > 65535 {
		add("httpTransport.port must be between 0 and 65535, got %d", c.HTTPTransport.Port)
	}

	return errors.Join(errs...)
}

// ValidateBind checks that the HTTP transport may listen on bindAddress.
// Binding anywhere but loopback requires security.allowNonLocalhostBind.
func (c *Config) ValidateBind() error {
	if c.Security.AllowNonLocalhostBind || IsLoopbackHost(c.HTTPTransport.BindAddress) {
		return nil
	}
	return fmt.Errorf("refusing to bind to %q: set security.allowNonLocalhostBind=true to listen on non-localhost addresses",
		c.HTTPTransport.BindAddress)
}

// IsLoopbackHost reports whether host names the local machine only.
func IsLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}
