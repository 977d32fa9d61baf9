package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "fess-mcp"

	// maxRedirects bounds how many redirects a single fetch follows.
	maxRedirects = 5
)

// ErrTooLarge indicates the response body exceeded the transfer limit.
var ErrTooLarge = errors.New("fetch: response body exceeds limit")

// Guard is the part of the gateway the fetcher consults.
// *services.Gateway satisfies it.
type Guard interface {
	// Evaluate decides whether a URL may be fetched.
	Evaluate(ctx context.Context, rawURL string) (domain.Decision, error)

	// CheckAddress decides whether an address may be dialled.
	CheckAddress(addr netip.Addr) error
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned status %d", e.URL, e.StatusCode)
}

// Options configures a Fetcher.
type Options struct {
	Guard     Guard
	UserAgent string
	Logger    *zap.Logger
}

// Fetcher performs guarded HTTP GETs.
type Fetcher struct {
	client    *http.Client
	guard     Guard
	userAgent string
	log       *zap.Logger
}

// NewFetcher creates a fetcher whose connections are validated by opts.Guard.
func NewFetcher(opts Options) *Fetcher {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	f := &Fetcher{guard: opts.Guard, userAgent: ua, log: log}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   f.controlDial,
	}
	transport := &http.Transport{
		// No proxy: the dialled address must be the address that was checked.
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	f.client = &http.Client{
		Transport:     transport,
		CheckRedirect: f.checkRedirect,
	}
	return f
}

// Fetch transfers decision.Target.URL within decision's limits.
func (f *Fetcher) Fetch(ctx context.Context, decision domain.Decision) (*domain.RawDocument, error) {
	if !decision.Allowed {
		return nil, decision.Err()
	}
	if decision.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, decision.Timeout)
		defer cancel()
	}

	target := decision.Target.URL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,application/pdf;q=0.8,*/*;q=0.5")

	start := time.Now()
	res, err := f.client.Do(req)
	if err != nil {
		return nil, unwrapPolicy(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{StatusCode: res.StatusCode, URL: target}
	}

	body, err := readBounded(res.Body, decision.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	f.log.Debug("fetched",
		zap.String("url", target),
		zap.String("final_url", res.Request.URL.String()),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	return &domain.RawDocument{URI: target, MIMEType: contentType, Content: body}, nil
}

// readBounded reads r fully, failing if it holds more than limit bytes.
// A non-positive limit means unbounded.
func readBounded(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, limit)
	}
	return body, nil
}

// controlDial runs after DNS resolution, immediately before connecting,
// so it sees the address actually dialled.
func (f *Fetcher) controlDial(_, address string, _ syscall.RawConn) error {
	if f.guard == nil {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("invalid dial address %q: %w", address, err)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("invalid dial address %q: %w", address, err)
	}
	return f.guard.CheckAddress(addr.WithZone(""))
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if f.guard == nil {
		return nil
	}
	decision, err := f.guard.Evaluate(req.Context(), req.URL.String())
	if err != nil {
		return err
	}
	if !decision.Allowed {
		f.log.Info("redirect denied",
			zap.String("from", via[len(via)-1].URL.String()),
			zap.String("to", req.URL.String()),
			zap.String("reason", string(decision.Reason)))
		return decision.Err()
	}
	return nil
}

// unwrapPolicy surfaces a policy denial raised inside the transport so it
// is reported as a denial rather than a transfer failure.
func unwrapPolicy(err error) error {
	if derr, ok := domain.AsError(err); ok && derr.Kind == domain.KindPolicyDenied {
		return derr
	}
	return fmt.Errorf("fetch: %w", err)
}
