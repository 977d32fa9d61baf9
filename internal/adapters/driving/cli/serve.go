package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fess-mcp/internal/adapters/driving/mcp"
)

// defaultHTTPPort is used when neither --port nor httpTransport.port is set.
const defaultHTTPPort = 3000

var (
	serveTransport string
	servePort      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for the configured knowledge domain.

By default, the server communicates over stdio and can be used with any
MCP-compatible client. Use --transport http to serve streamable HTTP at
httpTransport.bindAddress:port + path instead.

Examples:
  # Stdio mode (default)
  fess-mcp serve

  # HTTP mode
  fess-mcp serve --transport http --port 3000

Client configuration:
  {
    "mcpServers": {
      "fess-hr": {
        "command": "/path/to/fess-mcp",
        "args": ["serve", "--config", "/path/to/hr.toml"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", "stdio", "transport: stdio or http")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (overrides httpTransport.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveTransport != "stdio" && serveTransport != "http" {
		return fmt.Errorf("unknown transport %q (want stdio or http)", serveTransport)
	}
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if err := requireServices(); err != nil {
		return err
	}

	log := zap.NewNop()
	if appLogger != nil {
		log = appLogger.Logger
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:  searchService,
		Content: contentService,
		Labels:  labelService,
		Limiter: requestLimiter,
	}, mcp.Options{
		Settings:    cfg.ToSettings(),
		Logger:      log,
		LongRunning: cfg.LongRunningThreshold(),
		Version:     version,
	})
	if err != nil {
		return err
	}

	if serveTransport == "stdio" {
		log.Info("serving stdio", zap.String("domain", cfg.Domain.ID))
		return server.Run(cmd.Context())
	}

	addr, err := httpAddr(cfg, servePort)
	if err != nil {
		return err
	}
	cmd.PrintErrf("MCP server listening on http://%s%s\n", addr, cfg.HTTPTransport.Path)
	return server.RunHTTP(cmd.Context(), addr, cfg.HTTPTransport.Path, cfg.Security.HTTPAuthToken)
}

// httpAddr resolves the listen address, refusing non-loopback binds unless
// explicitly allowed.
func httpAddr(cfg *file.Config, portOverride int) (string, error) {
	if err := cfg.ValidateBind(); err != nil {
		return "", err
	}
	port := cfg.HTTPTransport.Port
	if portOverride > 0 {
		port = portOverride
	}
	if port == 0 {
		port = defaultHTTPPort
	}
	return net.JoinHostPort(cfg.HTTPTransport.BindAddress, strconv.Itoa(port)), nil
}
