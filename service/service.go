package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"contribgraph/cache"
	"contribgraph/config"
	"contribgraph/db"
	"contribgraph/fetcher"
	"contribgraph/github"
	"contribgraph/logger"
	"contribgraph/models"
	"contribgraph/server"
	"contribgraph/validation"
)

// Service errors
var (
	ErrServiceInit     = fmt.Errorf("service initialization error")
	ErrServiceShutdown = fmt.Errorf("service shutdown error")
)

// shutdownTimeout bounds the graceful HTTP shutdown
const shutdownTimeout = 10 * time.Second

// Service represents the main application service
type Service struct {
	config  *config.Config
	fetcher *fetcher.Fetcher
	caching *cache.CachingFetcher
	server  *http.Server
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewService creates a new service instance from loaded configuration
func NewService(cfg *config.Config) (*Service, error) {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	store, err := newStore(ctx, cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: failed to initialize cache store: %v", ErrServiceInit, err)
	}

	// Initialize GitHub client
	client, err := github.NewClient(cfg.GraphQLEndpoint, cfg.UserAgent, cfg.RequestTimeout)
	if err != nil {
		cancel()
		store.Close()
		return nil, fmt.Errorf("%w: failed to create GitHub client: %v", ErrServiceInit, err)
	}

	s := newService(ctx, cancel, cfg, client, store, client.Endpoint())

	logger.Info("Service initialized successfully",
		zap.String("listen_address", cfg.ListenAddress),
		zap.String("graphql_endpoint", client.Endpoint()),
		zap.String("cache_backend", cfg.CacheBackend))

	return s, nil
}

func newService(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, client cache.Fetcher, store cache.Store, namespace string) *Service {
	caching := cache.NewCachingFetcher(client, store, namespace)
	s := &Service{
		config:  cfg,
		fetcher: fetcher.New(caching),
		caching: caching,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.server = server.NewServer(server.ServerConfig{
		Address:      cfg.ListenAddress,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}, server.NewRouter(s))
	return s
}

// newStore builds the cache backend selected by configuration
func newStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendPostgres:
		database, err := db.New(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		database.StartJanitor(ctx, cfg.CachePurgeInterval)
		return database, nil
	default:
		return cache.NewMemoryStore(cfg.CacheCapacity), nil
	}
}

// Contributions validates raw input and fetches the user's contributions
// through the cache
func (s *Service) Contributions(ctx context.Context, raw string) (validation.Identifier, models.FetchOutcome) {
	return s.fetcher.Contributions(ctx, raw)
}

// Handler returns the HTTP handler serving pages and the API
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

// Start serves HTTP until an interrupt signal arrives or the server fails
func (s *Service) Start() error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	// Wait for interrupt signal
	if err := s.waitForShutdown(errChan); err != nil {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// waitForShutdown waits for the shutdown signal and drains the server
func (s *Service) waitForShutdown(errChan <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		s.cancel()
		return err
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
	case <-s.ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	s.cancel()
	return nil
}

// Close performs cleanup operations
func (s *Service) Close() error {
	logger.Info("Closing service")
	s.cancel()
	if err := s.caching.Close(); err != nil {
		return fmt.Errorf("%w: failed to close cache store: %v", ErrServiceShutdown, err)
	}
	return nil
}
