package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/mitsuke/internal/config"
	"github.com/hyperjump/mitsuke/internal/models"
)

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "mitsuke",
		"endpoints": map[string]string{
			"ingest":       "POST /ingest",
			"ingest_batch": "POST /ingest/batch",
			"search":       "POST /search",
			"delete":       "DELETE /items",
			"health":       "GET /health",
			"status":       "GET /status",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("status: count records failed", zap.Error(err))
		s.respondStoreError(w, err)
		return
	}
	resp := map[string]any{
		"records": count,
		"config": map[string]any{
			"store_backend":        s.storeInfo.Backend,
			"embedding_backend":    s.storeInfo.EmbeddingBackend,
			"embedding_dimensions": s.storeInfo.Dimensions,
		},
	}
	if s.watch != nil {
		resp["watch_directories"] = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ingest request",
		zap.Bool("has_text", item.Text != ""),
		zap.Bool("has_image", item.Image != ""),
	)
	resp, err := s.ingestor.Ingest(r.Context(), &item)
	if err != nil {
		s.respondDomainError(w, "ingest", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		s.respondError(w, http.StatusBadRequest, "items is required")
		return
	}
	s.logger.Debug("batch ingest request", zap.Int("items", len(req.Items)))
	resp := s.ingestor.IngestBatch(r.Context(), req.Items)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query_type", query.Type()), zap.Int("top_k", query.TopK))
	resp, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		s.respondDomainError(w, "search", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("delete request", zap.Int("ids", len(req.IDs)))
	removed, err := s.ingestor.Delete(r.Context(), &req)
	if err != nil {
		s.respondDomainError(w, "delete", err)
		return
	}
	s.respondJSON(w, http.StatusOK, &models.DeleteResponse{
		DeletedCount: removed,
		Message:      "Items deleted",
	})
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("watch remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.fullConfig == nil {
		return
	}
	s.watchCfgMu.Lock()
	s.fullConfig.Watch.Directories = s.watch.Directories()
	err := config.Save(s.configPath, s.fullConfig)
	s.watchCfgMu.Unlock()
	if err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

// respondDomainError maps typed domain errors to HTTP statuses. Invalid input
// is the caller's fault (400), an unreachable store is ours (503), anything
// else is a 500.
func (s *Server) respondDomainError(w http.ResponseWriter, op string, err error) {
	var verr *models.ValidationError
	var merr *models.ModalityInputError
	var serr *models.StoreUnavailableError
	switch {
	case errors.As(err, &verr), errors.As(err, &merr):
		s.logger.Debug(op+" rejected", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &serr):
		s.logger.Error(op+" store unavailable", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error(op+" failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	var serr *models.StoreUnavailableError
	if errors.As(err, &serr) {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
