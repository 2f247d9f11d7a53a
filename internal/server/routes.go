package server

import (
	"encoding/json"
	"net/http"

	"github.com/zsiec/timeframe/internal/health"
	"github.com/zsiec/timeframe/internal/logger"
	"github.com/zsiec/timeframe/pkg/version"
)

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(logger.RequestLoggerMiddleware(s.logger))
	s.router.Use(s.errorHandler.Middleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.corsMiddleware)

	healthHandler := health.NewHandler(s.healthMgr)
	s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	s.router.HandleFunc("/ready", healthHandler.HandleReady).Methods("GET")
	s.router.HandleFunc("/live", healthHandler.HandleLive).Methods("GET")

	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.rateLimitMiddleware)

	api.HandleFunc("/framerates", s.handleListFramerates).Methods("GET")
	// fractions such as 30000/1001 contain a slash
	api.HandleFunc("/framerates/{spec:.+}", s.handleGetFramerate).Methods("GET")

	api.HandleFunc("/timecode/parse", s.handleParse).Methods("POST", "OPTIONS")
	api.HandleFunc("/timecode/format", s.handleFormat).Methods("POST", "OPTIONS")
	api.HandleFunc("/timecode/add", s.handleAdd).Methods("POST", "OPTIONS")
	api.HandleFunc("/timecode/subtract", s.handleSubtract).Methods("POST", "OPTIONS")

	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets/{name}", s.handleGetPreset).Methods("GET")
	api.HandleFunc("/presets/{name}", s.handlePutPreset).Methods("PUT", "OPTIONS")
	api.HandleFunc("/presets/{name}", s.handleDeletePreset).Methods("DELETE")

	s.router.NotFoundHandler = http.HandlerFunc(s.errorHandler.HandleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.errorHandler.HandleMethodNotAllowed)
}

// handleVersion handles the /version endpoint
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	s.writeJSON(w, r, http.StatusOK, version.GetInfo())
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.errorHandler.HandleError(w, r, err)
}
