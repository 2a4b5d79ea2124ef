// Package server provides the HTTP API for Mitsuke.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/mitsuke/internal/config"
	"github.com/hyperjump/mitsuke/internal/ingest"
	"github.com/hyperjump/mitsuke/internal/search"
	"github.com/hyperjump/mitsuke/internal/store"
	"github.com/hyperjump/mitsuke/internal/watcher"
)

// Server is the HTTP server for the Mitsuke API.
type Server struct {
	engine   *search.Engine
	ingestor *ingest.Ingestor
	store    store.VectorStore
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server

	// watch endpoints are active only when EnableWatch was called.
	watch       *watcher.Watcher
	fullConfig  *config.Config
	configPath  string
	watchCfgMu  sync.Mutex
	storeInfo   StoreInfo
}

// StoreInfo describes the running store and embedding setup for /status.
type StoreInfo struct {
	Backend          string
	EmbeddingBackend string
	Dimensions       int
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	ingestor *ingest.Ingestor,
	vs store.VectorStore,
	cfg *config.ServerConfig,
	info StoreInfo,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:    engine,
		ingestor:  ingestor,
		store:     vs,
		config:    cfg,
		storeInfo: info,
		logger:    logger,
	}
}

// EnableWatch exposes the watch directory management endpoints. fullConfig and
// configPath are used to persist directory changes; configPath may be empty to
// skip persistence.
func (s *Server) EnableWatch(w *watcher.Watcher, fullConfig *config.Config, configPath string) {
	s.watch = w
	s.fullConfig = fullConfig
	s.configPath = configPath
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestIDHeader)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/ingest", s.handleIngest)
	r.Post("/ingest/batch", s.handleIngestBatch)
	r.Post("/search", s.handleSearch)
	r.Delete("/items", s.handleDelete)
	r.Get("/watch/directories", s.handleWatchDirectoriesList)
	r.Post("/watch/directories", s.handleWatchDirectoriesAdd)
	r.Delete("/watch/directories", s.handleWatchDirectoriesRemove)

	return r
}

// requestIDHeader echoes the request id assigned by middleware.RequestID back
// to the client, so responses can be correlated with server logs.
func requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set("X-Request-Id", id)
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
