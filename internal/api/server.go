// Package api exposes the schedule service over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"salonsked/internal/reconcile"
	"salonsked/internal/schedule"
	"salonsked/internal/store"
)

// OwnerHeader carries the owner scope of every API request.
const OwnerHeader = "X-Owner-Email"

// HTTPServer serves the schedule API.
type HTTPServer struct {
	service  *schedule.Service
	limiters *limiterStore
	logger   zerolog.Logger
	server   *http.Server
}

// RateLimit is the per-owner request budget.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

func NewHTTPServer(addr string, service *schedule.Service, limit RateLimit, logger zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		service:  service,
		limiters: newLimiterStore(limit),
		logger:   logger.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/schedule", s.handleDayView)
	mux.HandleFunc("GET /api/schedule/durations", s.handleDurations)
	mux.HandleFunc("GET /api/schedule/export", s.handleExport)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("PATCH /api/entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)
	mux.HandleFunc("GET /api/preferences/technicians", s.handleGetSelection)
	mux.HandleFunc("PUT /api/preferences/technicians", s.handlePutSelection)
	mux.HandleFunc("GET /api/technicians", s.handleTechnicians)
	mux.HandleFunc("GET /api/services", s.handleServices)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.withLogging(s.withOwner(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler returns the root handler including middleware.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("API server started")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type ownerKey struct{}

// withOwner rejects requests without an owner and applies the owner's rate limit.
func (s *HTTPServer) withOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(OwnerHeader)
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "missing "+OwnerHeader+" header")
			return
		}
		if !s.limiters.get(owner).Allow() {
			s.logger.Warn().Str("owner", owner).Msg("rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded; try again later")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

func ownerFrom(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey{}).(string)
	return owner
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors to HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *schedule.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, schedule.ErrSlotCovered), errors.Is(err, schedule.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
	case errors.Is(err, reconcile.ErrMalformedRecord):
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("malformed record from store")
		writeError(w, http.StatusBadGateway, "store returned an unusable record")
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
