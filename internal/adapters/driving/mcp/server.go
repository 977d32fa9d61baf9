package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// Version is the MCP server version.
const Version = "1.0.0"

// Options configures a Server.
type Options struct {
	// Settings supplies the domain, limits and label defaults used in
	// tool names and descriptions.
	Settings domain.Settings

	// Logger receives per-call logs. Nil disables logging.
	Logger *zap.Logger

	// LongRunning is the duration after which a call is logged as slow.
	// Zero disables slow-call logging.
	LongRunning time.Duration

	// Version overrides the advertised server version.
	Version string
}

// Server is the MCP server for one knowledge domain.
type Server struct {
	ports       *Ports
	settings    domain.Settings
	log         *zap.Logger
	longRunning time.Duration
	server      *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingSearchService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if opts.Settings.Domain.ID == "" {
		return nil, errors.New("mcp: domain id is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	version := opts.Version
	if version == "" {
		version = Version
	}

	impl := &mcp.Implementation{
		Name:    "fess-mcp-" + opts.Settings.Domain.ID,
		Version: version,
	}

	s := &Server{
		ports:       ports,
		settings:    opts.Settings,
		log:         opts.Logger.Named("mcp"),
		longRunning: opts.LongRunning,
		server:      mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// toolName prefixes a tool with the domain, e.g. fess_hr_search.
func (s *Server) toolName(tool string) string {
	return "fess_" + s.settings.Domain.ID + "_" + tool
}

// continuation tells an agent how to read past a truncated document with
// the registered chunk tool.
func (s *Server) continuation(docID string, offset int) string {
	return fmt.Sprintf("Use %s with doc_id='%s' and offset=%d to retrieve additional sections.",
		s.toolName("fetch_content_chunk"), docID, offset)
}

// acquire takes a limiter slot when a limiter is configured.
func (s *Server) acquire(ctx context.Context) (func(), error) {
	if s.ports.Limiter == nil {
		return func() {}, nil
	}
	return s.ports.Limiter.Acquire(ctx)
}

// call runs fn under the limiter, tags its logs with a request id and
// converts failures into tool error results.
func (s *Server) call(
	ctx context.Context,
	tool string,
	fn func(ctx context.Context) (any, error),
) (*mcp.CallToolResult, any, error) {
	log := s.log.With(zap.String("request_id", uuid.NewString()), zap.String("tool", tool))
	start := time.Now()

	release, err := s.acquire(ctx)
	if err != nil {
		log.Warn("call rejected", zap.Error(err))
		return errorResult(err), nil, nil
	}
	defer release()

	out, err := fn(ctx)
	elapsed := time.Since(start)
	if s.longRunning > 0 && elapsed > s.longRunning {
		log.Warn("long-running call", zap.Duration("elapsed", elapsed))
	}
	if err != nil {
		log.Info("call failed",
			zap.String("kind", string(domain.KindOf(err))),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return errorResult(err), nil, nil
	}

	log.Debug("call completed", zap.Duration("elapsed", elapsed))
	return nil, out, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler mounted at path.
// When authToken is set, requests must carry it as a bearer token.
func (s *Server) Handler(path, authToken string) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{Stateless: true})

	mux := http.NewServeMux()
	mux.Handle(path, requireBearer(authToken, handler))
	return mux
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr, path, authToken string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(path, authToken),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	s.log.Info("serving streamable HTTP", zap.String("addr", addr), zap.String("path", path))
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
