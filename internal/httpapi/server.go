package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"oil-tank-monitor/internal/config"
	"oil-tank-monitor/internal/fleet"
)

// FleetReader is the coordinator surface the API exposes.
type FleetReader interface {
	Stations() int
	FleetSummary(ctx context.Context) ([]fleet.StationSummary, error)
	StationHistory(ctx context.Context, stationNo int) ([]fleet.HistoryEntry, error)
	FleetTopUpHistory(ctx context.Context) ([]fleet.TopUpEvent, error)
}

// Server exposes the fleet read API over HTTP.
type Server struct {
	cfg    config.ServerConfig
	fleet  FleetReader
	router *mux.Router
	logger zerolog.Logger
}

// NewServer wires the routes and middleware.
func NewServer(cfg config.ServerConfig, fleetReader FleetReader, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		fleet:  fleetReader,
		router: mux.NewRouter(),
		logger: logger.With().Str("component", "httpapi").Logger(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/machines", s.handleMachines).Methods(http.MethodGet)
	s.router.HandleFunc("/api/history/{stationNo}", s.handleHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/api/topup-history", s.handleTopUpHistory).Methods(http.MethodGet)

	s.router.Use(s.accessLogMiddleware)
	s.router.Use(jsonMiddleware)
}

// Router returns the configured router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("starting http server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Middleware

func (s *Server) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Response shapes, field names preserved from the legacy API.

type machineResponse struct {
	Station         string  `json:"station"`
	CurrentOilLevel float64 `json:"currentOilLevel"`
	TankCapacity    float64 `json:"tankCapacity"`
	MinimumOilLevel float64 `json:"minimumOilLevel"`
}

type historyResponse struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Shift1    float64   `json:"shift1"`
	Shift2    float64   `json:"shift2"`
	Shift3    float64   `json:"shift3"`
}

type topUpResponse struct {
	Station         string    `json:"station"`
	Timestamp       time.Time `json:"timestamp"`
	TopUp           float64   `json:"topup"`
	TotalTopUpToday float64   `json:"totalTopupToday"`
	OilReduction    float64   `json:"oilReduction"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errText, message string) {
	writeJSON(w, status, errorResponse{Error: errText, Message: message})
}

func stationName(stationNo int) string {
	return fmt.Sprintf("station_%d", stationNo)
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMachines(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.fleet.FleetSummary(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("fleet summary failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch machines", err.Error())
		return
	}

	machines := make([]machineResponse, len(summaries))
	for i, summary := range summaries {
		machines[i] = machineResponse{
			Station:         stationName(summary.StationNo),
			CurrentOilLevel: summary.CurrentOilLevel.InexactFloat64(),
			TankCapacity:    summary.TankCapacity.InexactFloat64(),
			MinimumOilLevel: summary.MinimumOilLevel.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, machines)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	invalid := fmt.Sprintf("Invalid station number. Must be between 1 and %d", s.fleet.Stations())

	stationNo, err := strconv.Atoi(mux.Vars(r)["stationNo"])
	if err != nil {
		writeError(w, http.StatusBadRequest, invalid, "")
		return
	}

	entries, err := s.fleet.StationHistory(r.Context(), stationNo)
	switch {
	case errors.Is(err, fleet.ErrStationOutOfRange):
		writeError(w, http.StatusBadRequest, invalid, "")
		return
	case errors.Is(err, fleet.ErrNoReadings):
		writeError(w, http.StatusNotFound, "No history data found for the station", "")
		return
	case err != nil:
		s.logger.Error().Err(err).Int("station", stationNo).Msg("station history failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch history", err.Error())
		return
	}

	history := make([]historyResponse, len(entries))
	for i, entry := range entries {
		history[i] = historyResponse{
			ID:        entry.ID,
			Timestamp: entry.Timestamp,
			Shift1:    entry.Shift1.InexactFloat64(),
			Shift2:    entry.Shift2.InexactFloat64(),
			Shift3:    entry.Shift3.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleTopUpHistory(w http.ResponseWriter, r *http.Request) {
	events, err := s.fleet.FleetTopUpHistory(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("topup history failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch top-up history", err.Error())
		return
	}

	history := make([]topUpResponse, len(events))
	for i, event := range events {
		history[i] = topUpResponse{
			Station:         stationName(event.StationNo),
			Timestamp:       event.Timestamp,
			TopUp:           event.TopUp.InexactFloat64(),
			TotalTopUpToday: event.TotalTopUpToday.InexactFloat64(),
			OilReduction:    event.OilReduction.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, history)
}
