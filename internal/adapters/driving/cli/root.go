// Package cli implements the fess-mcp command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/fess-mcp/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Persistent flags.
var (
	configPath string
	debugMode  bool
)

// Wired dependencies. Commands that need them call requireServices;
// tests assign mocks directly.
var (
	appConfig      *file.Config
	appLogger      *logger.Logger
	searchService  driving.SearchService
	contentService driving.ContentService
	labelService   driving.LabelService
	requestLimiter driving.Limiter
)

var rootCmd = &cobra.Command{
	Use:   "fess-mcp",
	Short: "MCP server for a Fess search index",
	Long: `fess-mcp exposes one knowledge domain of a Fess search index to
language model agents over the Model Context Protocol.

Configuration is read from ~/.fess-mcp/config.toml (or config.yaml,
config.json) unless --config is given.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command and the
// MCP server.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases wired resources afterwards.
func Execute(ctx context.Context) error {
	defer shutdown()
	return rootCmd.ExecuteContext(ctx)
}
