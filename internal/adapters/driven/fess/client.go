package fess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.SearchIndex = (*Client)(nil)

const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps any response body read from Fess.
	maxResponseBytes = 64 << 20

	pathDocuments    = "/api/v1/documents"
	pathLabels       = "/api/v1/labels"
	pathSuggestWords = "/api/v1/suggest-words"
	pathPopularWords = "/api/v1/popular-words"
	pathHealth       = "/api/v1/health"
	pathCache        = "/cache/"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the Fess root, e.g. "http://localhost:8080".
	BaseURL string

	// Token is sent as a bearer token when non-empty.
	Token string

	// Timeout bounds each request. Zero selects DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond throttles outbound requests. Zero disables throttling.
	RequestsPerSecond float64

	// HTTPClient overrides the transport. Mainly for tests.
	HTTPClient *http.Client

	Logger *zap.Logger
}

// Client talks to the Fess REST API.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewClient creates a Fess client.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse fess base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("fess base url must be http or https, got %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"})
		hc = &http.Client{
			Transport: &oauth2.Transport{Source: ts, Base: hc.Transport},
			Timeout:   hc.Timeout,
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := max(1, int(opts.RequestsPerSecond))
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{base: base, http: hc, timeout: timeout, limiter: limiter, log: log}, nil
}

// Search performs a full-text query.
func (c *Client) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("start", strconv.Itoa(opts.Start))
	if opts.PageSize > 0 {
		params.Set("num", strconv.Itoa(opts.PageSize))
	}
	setScope(params, "fields.label", opts.Label)
	setIf(params, "sort", opts.Sort)
	setIf(params, "lang", opts.Lang)

	raw, err := c.getJSON(ctx, pathDocuments, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := hitsOf(raw)
	resp := &domain.SearchResponse{Raw: raw, Hits: hits, RecordCount: recordCount(raw, len(hits))}
	c.log.Debug("fess search",
		zap.String("query", query),
		zap.String("label", opts.Label),
		zap.Int("hits", len(hits)),
		zap.Int("record_count", resp.RecordCount))
	return resp, nil
}

// GetDocument looks up a single document by doc_id. The id is sent as a
// quoted phrase and the hit must carry the same id; anything else is not found.
func (c *Client) GetDocument(ctx context.Context, docID, label string) (*domain.IndexedDocument, error) {
	resp, err := c.Search(ctx, docIDQuery(docID), domain.SearchOptions{Label: label, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Hits) == 0 {
		return nil, fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
	}

	hit := resp.Hits[0]
	if got := stringField(hit, "doc_id"); got != docID {
		c.log.Warn("fess returned a different document for doc_id lookup",
			zap.String("doc_id", docID),
			zap.String("returned", got))
		return nil, fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
	}
	return &domain.IndexedDocument{
		ID:     docID,
		URL:    stringField(hit, "url"),
		Title:  stringField(hit, "title"),
		Fields: hit,
	}, nil
}

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// docIDQuery builds an exact-match query for an opaque document id.
func docIDQuery(docID string) string {
	return `doc_id:"` + phraseEscaper.Replace(docID) + `"`
}

// CachedContent fetches Fess's stored copy of a document.
func (c *Client) CachedContent(ctx context.Context, docID string) (*domain.RawDocument, error) {
	params := url.Values{}
	params.Set("docId", docID)

	res, target, err := c.do(ctx, pathCache, params)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("cached copy of %s: %w", docID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("cached content: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read cached content: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("cached copy of %s is empty: %w", docID, domain.ErrNotFound)
	}

	mimeType := "text/html"
	if ct := res.Header.Get("Content-Type"); ct != "" {
		mimeType = ct
	}
	return &domain.RawDocument{URI: target, MIMEType: mimeType, Content: body}, nil
}

// ListLabels returns the labels configured in Fess.
func (c *Client) ListLabels(ctx context.Context) ([]domain.RemoteLabel, error) {
	raw, err := c.getJSON(ctx, pathLabels, nil)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}

	data, _ := raw["data"].([]any)
	labels := make([]domain.RemoteLabel, 0, len(data))
	for _, item := range data {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		value := stringField(m, "value")
		if value == "" {
			continue
		}
		name := stringField(m, "name")
		if name == "" {
			name = stringField(m, "label")
		}
		labels = append(labels, domain.RemoteLabel{Value: value, Name: name})
	}
	c.log.Debug("fess labels", zap.Int("count", len(labels)))
	return labels, nil
}

// Suggest returns query suggestions for a prefix.
func (c *Client) Suggest(ctx context.Context, prefix string, opts domain.SuggestOptions) (map[string]any, error) {
	params := url.Values{}
	params.Set("q", prefix)
	if opts.Num > 0 {
		params.Set("num", strconv.Itoa(opts.Num))
	}
	setScope(params, "label", opts.Label)
	if len(opts.Fields) > 0 {
		params.Set("fields", strings.Join(opts.Fields, ","))
	}
	setIf(params, "lang", opts.Lang)

	raw, err := c.getJSON(ctx, pathSuggestWords, params)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return raw, nil
}

// PopularWords returns frequently searched words.
func (c *Client) PopularWords(ctx context.Context, opts domain.PopularWordsOptions) (map[string]any, error) {
	params := url.Values{}
	setScope(params, "label", opts.Label)
	if opts.Seed != nil {
		params.Set("seed", strconv.Itoa(*opts.Seed))
	}
	setIf(params, "field", opts.Field)

	raw, err := c.getJSON(ctx, pathPopularWords, params)
	if err != nil {
		return nil, fmt.Errorf("popular words: %w", err)
	}
	return raw, nil
}

// Health reports the Fess health status.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	raw, err := c.getJSON(ctx, pathHealth, nil)
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	res, target, err := c.do(ctx, path, params)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out map[string]any
	dec := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", target, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	normaliseNumbers(out)
	return out, nil
}

// do issues a GET and returns the response when the status is 2xx.
// The request context carries the per-request timeout; the body must be
// fully read before the returned response is discarded.
func (c *Client) do(ctx context.Context, path string, params url.Values) (*http.Response, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	u.RawQuery = params.Encode()
	target := u.String()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		cancel()
		return nil, target, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		cancel()
		c.log.Debug("fess request failed", zap.String("url", target), zap.Error(err))
		return nil, target, fmt.Errorf("GET %s: %w", path, err)
	}
	c.log.Debug("fess request",
		zap.String("url", target),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		res.Body.Close()
		cancel()
		return nil, target, &APIError{
			StatusCode: res.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			URL:        target,
		}
	}

	res.Body = &cancelOnClose{ReadCloser: res.Body, cancel: cancel}
	return res, target, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func setIf(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

// setScope adds a label filter unless the label means the whole index.
func setScope(params url.Values, key, label string) {
	if label != "" && label != domain.LabelAll {
		params.Set(key, label)
	}
}

func hitsOf(raw map[string]any) []map[string]any {
	data, _ := raw["data"].([]any)
	hits := make([]map[string]any, 0, len(data))
	for _, item := range data {
		if m, ok := item.(map[string]any); ok {
			hits = append(hits, m)
		}
	}
	return hits
}

func recordCount(raw map[string]any, fallback int) int {
	for _, key := range []string{"record_count", "hit_count"} {
		switch v := raw[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return fallback
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// normaliseNumbers converts json.Number values to int64 where exact,
// float64 otherwise, so callers see plain Go numbers.
func normaliseNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normaliseNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normaliseNumbers(item)
		}
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	default:
		return v
	}
}
