// Package httpapi serves the REST and live-update surface over
// internal/store. It never bypasses Store contracts: every handler goes
// through a *store.Store method, never raw SQL.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nielsreijers/prodlog/internal/capture"
	"github.com/nielsreijers/prodlog/internal/logger"
	"github.com/nielsreijers/prodlog/internal/store"
)

// Server serves prodlog's HTTP API over a *store.Store.
type Server struct {
	store     *store.Store
	hub       *liveHub
	startedAt time.Time
}

// New builds a Server. Its Publish method should be wired in as the
// Controller's onCommit hook so committed captures fan out to live
// subscribers.
func New(st *store.Store) *Server {
	return &Server{store: st, hub: newLiveHub(), startedAt: time.Now()}
}

// Publish notifies every live subscriber of a newly committed capture. It
// is handed to capture.Controller as its onCommit callback.
func (s *Server) Publish(c *capture.Capture) {
	s.hub.publish(liveEvent{
		UUID:        c.UUID,
		CaptureType: string(c.CaptureType),
		Cmd:         c.Cmd,
		StartTime:   c.StartTime.Format(time.RFC3339Nano),
	})
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("httpapi: listen %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("GET /api/entries/{uuid}", s.handleGetEntry)
	mux.HandleFunc("POST /api/entries/{uuid}", s.handleUpdateEntry)
	mux.HandleFunc("POST /api/entries/{uuid}/redact", s.handleRedactEntry)
	mux.HandleFunc("POST /api/redact", s.handleRedactAll)
	mux.HandleFunc("GET /api/entries/{uuid}/diff", s.handleDiff)

	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks/{id}", s.handleRenameTask)
	mux.HandleFunc("POST /api/tasks/assign", s.handleAssignTask)
	mux.HandleFunc("GET /api/active-task", s.handleGetActiveTask)
	mux.HandleFunc("POST /api/active-task", s.handleSetActiveTask)

	mux.HandleFunc("GET /api/live", s.handleLive)
	mux.HandleFunc("GET /api/status", s.handleStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("httpapi: failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
