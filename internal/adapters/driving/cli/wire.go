package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/cache"
	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/fess"
	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/fetch"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/fess-mcp/internal/core/services"
	"github.com/custodia-labs/fess-mcp/internal/logger"
	"github.com/custodia-labs/fess-mcp/internal/normalisers"
	"github.com/custodia-labs/fess-mcp/internal/normalisers/docx"
	"github.com/custodia-labs/fess-mcp/internal/normalisers/html"
	"github.com/custodia-labs/fess-mcp/internal/normalisers/pdf"
	"github.com/custodia-labs/fess-mcp/internal/normalisers/plaintext"
)

// configDir returns the directory holding configuration and logs.
func configDir() (string, error) {
	if configPath != "" {
		return filepath.Dir(configPath), nil
	}
	return file.DefaultDir()
}

// requireConfig loads and validates the configuration once.
func requireConfig() (*file.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	dir, err := configDir()
	if err != nil {
		return nil, fmt.Errorf("locating config directory: %w", err)
	}
	cfg, err := file.Load(file.Resolve(configPath, dir))
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return cfg, nil
}

// requireServices wires the core services from configuration unless they
// were already provided.
func requireServices() error {
	if searchService != nil && contentService != nil && labelService != nil {
		return nil
	}
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	log, err := openLogger(cfg)
	if err != nil {
		return err
	}
	svcs, err := wire(cfg, log.Logger)
	if err != nil {
		return err
	}
	searchService = svcs.search
	contentService = svcs.content
	labelService = svcs.labels
	requestLimiter = svcs.limiter
	return nil
}

// openLogger creates the file logger and prunes expired log files.
func openLogger(cfg *file.Config) (*logger.Logger, error) {
	if appLogger != nil {
		return appLogger, nil
	}
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	logDir := filepath.Join(dir, "log")
	l, err := logger.New(logger.Options{
		Dir:   logDir,
		Level: cfg.Logging.Level,
		Debug: debugMode,
	})
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	removed, err := logger.Prune(logDir, cfg.Logging.RetainDays, time.Now())
	if err != nil {
		l.Warn("pruning logs failed", zap.Error(err))
	} else if len(removed) > 0 {
		l.Info("pruned expired logs", zap.Int("count", len(removed)))
	}
	appLogger = l
	return l, nil
}

// shutdown flushes and closes the logger.
func shutdown() {
	if appLogger == nil {
		return
	}
	_ = appLogger.Sync()
	_ = appLogger.Close()
	appLogger = nil
}

type wired struct {
	search  *services.SearchService
	content *services.ContentService
	labels  *services.LabelCatalog
	limiter *services.Limiter
}

// wire builds the service graph for cfg.
func wire(cfg *file.Config, log *zap.Logger) (*wired, error) {
	if log == nil {
		log = zap.NewNop()
	}
	settings := cfg.ToSettings()

	client, err := fess.NewClient(fess.Options{
		BaseURL:           cfg.FessBaseURL,
		Token:             cfg.FessAPIToken,
		Timeout:           settings.UpstreamTimeout,
		RequestsPerSecond: settings.Limits.UpstreamRequestsPerSecond,
		Logger:            log.Named("fess"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating fess client: %w", err)
	}

	gateway := services.NewGateway(settings.Fetch, fetch.NewResolver(settings.Fetch.Timeout), log.Named("gateway"))

	var fetcher driven.Fetcher
	if settings.Fetch.Enabled {
		fetcher = fetch.NewFetcher(fetch.Options{
			Guard:     gateway,
			UserAgent: settings.Fetch.UserAgent,
			Logger:    log.Named("fetch"),
		})
	}

	registry := normalisers.NewRegistry(plaintext.New(), html.New(), pdf.New(), docx.New())

	labels := services.NewLabelCatalog(client, settings, log.Named("labels"))
	content := services.NewContentService(client, gateway, fetcher, registry, settings, log.Named("content"))
	if c := cache.NewContentCache(settings.Limits.ContentCacheEntries, settings.Limits.ContentCacheTTL); c != nil {
		content.SetCache(c)
	}

	log.Info("services wired",
		zap.String("domain", settings.Domain.ID),
		zap.String("fess", cfg.FessBaseURL),
		zap.String("default_label", settings.DefaultLabel),
		zap.Bool("content_fetch", settings.Fetch.Enabled))

	return &wired{
		search:  services.NewSearchService(client, labels, settings, log.Named("search")),
		content: content,
		labels:  labels,
		limiter: services.NewLimiter(settings.Limits.MaxInFlightRequests, settings.Limits.MaxQueuedRequests),
	}, nil
}
