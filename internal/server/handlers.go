package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	tuning := s.tuning.Load()

	limit := tuning.DefaultLimit
	if raw := params.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}
	// The engine trusts its caller on the upper bound; clamp here.
	if limit <= 0 {
		limit = tuning.DefaultLimit
	}
	if limit > tuning.MaxLimit {
		limit = tuning.MaxLimit
	}

	query := &models.SearchQuery{
		Query:    params.Get("q"),
		Limit:    limit,
		Category: models.Category(params.Get("category")),
	}
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.Int("limit", query.Limit),
		zap.String("category", string(query.Category)),
	)

	response, err := s.engine.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			s.logger.Error("search store unavailable", zap.Error(err))
			s.respondError(w, http.StatusServiceUnavailable, "search temporarily unavailable")
			return
		}
		s.logger.Warn("search rejected", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		s.logger.Error("health: store ping failed", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, "search temporarily unavailable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.storage.CountEntities(r.Context())
	if err != nil {
		s.logger.Error("status: count entities failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	tuning := s.tuning.Load()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"entities": counts,
		"config": map[string]any{
			"default_limit":       tuning.DefaultLimit,
			"max_limit":           tuning.MaxLimit,
			"strategy_timeout_ms": tuning.StrategyTimeoutMS,
		},
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
