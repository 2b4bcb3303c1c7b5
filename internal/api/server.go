// Package api serves reports over a local HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Reports is the report source the server exposes.
type Reports interface {
	Names() []string
	Has(name string) bool
	JSON(ctx context.Context, name string) string
	DiskUsage(ctx context.Context, path string) string
	Volume(ctx context.Context, path string) string
	DiskSpeed(ctx context.Context, path string) string
	CPUUsage(ctx context.Context) float64
	GPUUsage(ctx context.Context) float64
	FanSpeed(ctx context.Context) float64
	SnapshotJSON(ctx context.Context) string
}

// Server is the HTTP front end for a Reports source.
type Server struct {
	addr    string
	reports Reports
	logger  *zap.Logger
}

// NewServer creates a server listening on addr.
func NewServer(addr string, reports Reports, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{addr: addr, reports: reports, logger: logger}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.Handler(),
		ReadTimeout: 5 * time.Second,
		// Disk benchmarks can take tens of seconds.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving %s: %w", s.addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("HTTP API stopped")
	return nil
}

// Handler returns the routed handler wrapped in recovery and logging
// middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reports", s.handleNames).Methods(http.MethodGet)
	api.HandleFunc("/reports/{name}", s.handleReport).Methods(http.MethodGet)
	api.HandleFunc("/disk", s.handlePath(s.reports.DiskUsage)).Methods(http.MethodGet)
	api.HandleFunc("/disk/speed", s.handlePath(s.reports.DiskSpeed)).Methods(http.MethodGet)
	api.HandleFunc("/volume", s.handlePath(s.reports.Volume)).Methods(http.MethodGet)
	api.HandleFunc("/usage/{metric:cpu|gpu|fan}", s.handleUsage).Methods(http.MethodGet)
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return Recovery(s.logger, Logging(s.logger, r))
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"reports": s.reports.Names()})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !s.reports.Has(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown report %q", name))
		return
	}
	writeDocument(w, s.reports.JSON(r.Context(), name))
}

func (s *Server) handlePath(fn func(context.Context, string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeDocument(w, fn(r.Context(), r.URL.Query().Get("path")))
	}
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	var v float64
	switch mux.Vars(r)["metric"] {
	case "cpu":
		v = s.reports.CPUUsage(r.Context())
	case "gpu":
		v = s.reports.GPUUsage(r.Context())
	case "fan":
		v = s.reports.FanSpeed(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]float64{"value": v})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeDocument(w, s.reports.SnapshotJSON(r.Context()))
}

// writeDocument writes an already-encoded report document. An error
// document is sent with status 500.
func writeDocument(w http.ResponseWriter, doc string) {
	status := http.StatusOK
	if isErrorDocument(doc) {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(doc))
}

// isErrorDocument reports whether doc is exactly {"error": "..."}.
func isErrorDocument(doc string) bool {
	if !strings.HasPrefix(doc, `{"error":`) {
		return false
	}
	var v map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return false
	}
	_, ok := v["error"]
	return ok && len(v) == 1
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
