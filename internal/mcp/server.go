// Package mcp provides an MCP (Model Context Protocol) server for hyperscore.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/hyperscore/internal/config"
	"github.com/nvandessel/hyperscore/internal/logging"
	"github.com/nvandessel/hyperscore/internal/metrics"
	"github.com/nvandessel/hyperscore/internal/models"
	"github.com/nvandessel/hyperscore/internal/ratelimit"
	"github.com/nvandessel/hyperscore/internal/store"
)

// Server wraps the MCP SDK server and exposes hyperscore tools.
type Server struct {
	server       *sdk.Server
	store        store.ResultStore
	ownsStore    bool
	root         string
	settings     *config.HyperscoreConfig
	registry     *models.Registry
	logger       *slog.Logger
	decisions    *logging.DecisionLogger
	metrics      *metrics.Registry
	toolLimiters ratelimit.ToolLimiters
	auditLogger  *AuditLogger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "hyperscore")
	Version string // Server version
	Root    string // Project root directory

	// Settings defaults to config.Default() when nil.
	Settings *config.HyperscoreConfig

	// Store overrides the project result store. The caller keeps ownership.
	Store store.ResultStore

	// Registry defaults to models.DefaultRegistry() when nil.
	Registry *models.Registry

	Logger  *slog.Logger
	Metrics *metrics.Registry

	// Rates overrides the per-tool rate limits.
	Rates map[string]ratelimit.Rate
}

// NewServer creates a new MCP server with hyperscore tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = models.DefaultRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		store:        cfg.Store,
		root:         cfg.Root,
		settings:     settings,
		registry:     registry,
		logger:       logger.With("component", "mcp"),
		metrics:      cfg.Metrics,
		toolLimiters: ratelimit.NewToolLimiters(cfg.Rates),
	}

	if s.store == nil {
		rs, err := openResultStore(cfg.Root, settings)
		if err != nil {
			return nil, fmt.Errorf("failed to open result store: %w", err)
		}
		s.store = rs
		s.ownsStore = true
	}

	dataDir := filepath.Join(cfg.Root, ".hyperscore")
	s.decisions = logging.NewDecisionLogger(dataDir, settings.Logging.Level)
	s.auditLogger = NewAuditLogger(dataDir)

	s.server = sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s.registerTools()
	s.registerResources()

	return s, nil
}

func openResultStore(root string, settings *config.HyperscoreConfig) (store.ResultStore, error) {
	if !settings.Store.Enabled {
		return store.NewInMemoryResultStore(), nil
	}
	return store.NewSQLiteResultStore(settings.StorePath(root))
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.logger.Info("mcp server starting", "root", s.root)
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	if cerr := s.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close releases the store (when owned by the server) and log files.
func (s *Server) Close() error {
	s.decisions.Close()
	var firstErr error
	if err := s.auditLogger.Close(); err != nil {
		firstErr = err
	}
	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.store = nil
	}
	return firstErr
}
