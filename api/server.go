// Package api - Thin HTTP layer over sessions and the estimation engine.
// The API is ONLY responsible for: request decoding, session orchestration,
// output serialization. The API NEVER performs cost logic.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lakehouse-cost/core/catalog"
	"lakehouse-cost/core/cost"
	"lakehouse-cost/core/output"
	"lakehouse-cost/core/session"
	"lakehouse-cost/internal/errors"
	"lakehouse-cost/internal/logging"
	"lakehouse-cost/internal/metrics"
)

const (
	// RequestIDHeader carries the per-request id on responses
	RequestIDHeader = "X-Request-ID"

	shutdownTimeout = 10 * time.Second
)

// Server is the API server
type Server struct {
	router   *mux.Router
	version  string
	catalog  *catalog.RateCatalog
	sessions *session.Store
	engine   cost.Estimator
	formats  *output.Registry
	logger   *zap.Logger
}

// NewServer creates an API server over a loaded catalog and a session store
func NewServer(version string, cat *catalog.RateCatalog, store *session.Store) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		version:  version,
		catalog:  cat,
		sessions: store,
		engine:   cost.NewEngine(cat),
		formats:  output.NewRegistry(true),
		logger:   logging.Named("api"),
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.Use(s.requestLogging)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.NotFound("route", r.URL.Path))
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, errorBody("METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path), http.StatusMethodNotAllowed)
	})

	// Operational endpoints
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/v1").Subrouter()

	// Catalog endpoints
	v1.HandleFunc("/catalog", s.handleCatalogStats).Methods(http.MethodGet)
	v1.HandleFunc("/catalog/tiers/{tier}/families", s.handleTierFamilies).Methods(http.MethodGet)
	v1.HandleFunc("/catalog/instances", s.handleInstances).Methods(http.MethodGet)
	v1.HandleFunc("/catalog/storage-classes", s.handleStorageClasses).Methods(http.MethodGet)

	// Session endpoints
	v1.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	v1.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", s.handleReplaceSession).Methods(http.MethodPut)
	v1.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	v1.HandleFunc("/sessions/{id}/jobs/{tier}", s.handleAddJob).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}/jobs/{tier}/{index:[0-9]+}", s.handleUpdateJob).Methods(http.MethodPut)
	v1.HandleFunc("/sessions/{id}/jobs/{tier}/{index:[0-9]+}", s.handleRemoveJob).Methods(http.MethodDelete)
	v1.HandleFunc("/sessions/{id}/tiers/{tier}", s.handleEnableTier).Methods(http.MethodPut)

	v1.HandleFunc("/sessions/{id}/storage-mode", s.handleStorageMode).Methods(http.MethodPut)
	v1.HandleFunc("/sessions/{id}/stage-zone", s.handleStageZone).Methods(http.MethodPut)
	v1.HandleFunc("/sessions/{id}/storage-zones", s.handleSetDirectZone).Methods(http.MethodPut)
	v1.HandleFunc("/sessions/{id}/tables", s.handleAddTable).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}/tables", s.handleRemoveTable).Methods(http.MethodDelete)

	v1.HandleFunc("/sessions/{id}/warehouses", s.handleAddWarehouse).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}/warehouses/{wid}", s.handleUpdateWarehouse).Methods(http.MethodPut)
	v1.HandleFunc("/sessions/{id}/warehouses/{wid}", s.handleRemoveWarehouse).Methods(http.MethodDelete)

	v1.HandleFunc("/sessions/{id}/dev-clusters", s.handleAddDevCluster).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}/dev-clusters/{index:[0-9]+}", s.handleRemoveDevCluster).Methods(http.MethodDelete)

	v1.HandleFunc("/sessions/{id}/estimate", s.handleEstimate).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}/export", s.handleExport).Methods(http.MethodGet)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":   "healthy",
		"version":  s.version,
		"sessions": s.sessions.Len(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "lakehouse-cost",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

// writeError maps a domain error to its HTTP status
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.TypeOf(err)
	if code == "" {
		code = errors.TypeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, errorBody(string(code), err.Error()), status)
}

func statusFor(t errors.Type) int {
	switch t {
	case errors.TypeInput:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeCapacity:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched and
// reports false.
func decodeJSON(r *http.Request, v interface{}) (bool, error) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, errors.Wrap(errors.TypeInput, "invalid request body", err)
	}
	return true, nil
}

// requireJSON is decodeJSON for endpoints where an empty body has no sensible
// default
func requireJSON(r *http.Request, v interface{}) error {
	present, err := decodeJSON(r, v)
	if err != nil {
		return err
	}
	if !present {
		return errors.Input("request body is required")
	}
	return nil
}

func pathIndex(r *http.Request) (int, error) {
	raw := mux.Vars(r)["index"]
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Inputf("invalid index %q", raw)
	}
	return index, nil
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogging tags each request with an id, then logs and counts it by
// route template
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr), zap.String("version", s.version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(errors.TypeInternal, "serve "+addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
