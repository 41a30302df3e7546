package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jcdickinson/docdeck/internal/config"
	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/fetch"
	"github.com/jcdickinson/docdeck/internal/rpc"
	"github.com/jcdickinson/docdeck/internal/session"
	"github.com/jcdickinson/docdeck/internal/viewer"
)

type Server struct {
	viewer     *viewer.Viewer
	socketPath string
	started    time.Time
	expiration time.Duration

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	expTimer   *time.Timer
}

func NewServer(cfg *config.Config, v *viewer.Viewer, socketPath string) *Server {
	expSec := cfg.Daemon.ExpirationSeconds
	if expSec <= 0 {
		expSec = 600
	}

	return &Server{
		viewer:     v,
		socketPath: socketPath,
		expiration: time.Duration(expSec) * time.Second,
		started:    time.Now(),
	}
}

// Handler returns the daemon's HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects", s.withExpReset(s.handleProjects))
	mux.HandleFunc("POST /open", s.withExpReset(s.handleOpen))
	mux.HandleFunc("POST /select", s.withExpReset(s.handleSelect))
	mux.HandleFunc("POST /next", s.withExpReset(s.handleNext))
	mux.HandleFunc("POST /previous", s.withExpReset(s.handlePrevious))
	mux.HandleFunc("POST /search", s.withExpReset(s.handleSearch))
	mux.HandleFunc("POST /toggle", s.withExpReset(s.handleToggle))
	mux.HandleFunc("GET /view", s.withExpReset(s.handleView))
	mux.HandleFunc("GET /section/{id}", s.withExpReset(s.handleSection))
	mux.HandleFunc("GET /status", s.withExpReset(s.handleStatus))
	mux.HandleFunc("POST /shutdown", s.handleShutdown)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("setting socket permissions: %w", err)
	}
	httpServer := &http.Server{Handler: s.Handler()}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.expTimer = time.AfterFunc(s.expiration, s.expire)
	s.mu.Unlock()

	log.Printf("daemon: listening on %s (expires after %s of inactivity)", s.socketPath, s.expiration)

	if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.expTimer != nil {
		s.expTimer.Stop()
	}
	httpServer, listener := s.httpServer, s.listener
	s.mu.Unlock()

	var errs []error
	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("daemon: shutdown error: %v", err)
			errs = append(errs, err)
		}
	}
	if listener != nil {
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("daemon: listener close error: %v", err)
			errs = append(errs, err)
		}
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		log.Printf("daemon: socket remove error: %v", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Server) expire() {
	log.Printf("daemon: expiring due to inactivity")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	os.Exit(0)
}

func (s *Server) resetExpiration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expTimer != nil {
		s.expTimer.Stop()
		s.expTimer.Reset(s.expiration)
	}
}

func (s *Server) withExpReset(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.resetExpiration()
		handler(w, r)
	}
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.viewer.Projects(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rpc.ProjectsResponse{Index: s.viewer.IndexURI(), Projects: projects})
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req rpc.OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Project == "" {
		writeError(w, http.StatusBadRequest, "missing project")
		return
	}

	uri, err := s.viewer.ResolveProject(r.Context(), req.Project)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	log.Printf("daemon: opening %s as %s", req.Project, uri)

	view, err := s.viewer.Open(r.Context(), uri)
	writeView(w, view, false, err)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req rpc.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := s.viewer.Select(req.ID)
	writeView(w, view, false, err)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	view, moved := s.viewer.Next()
	writeView(w, view, moved, nil)
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	view, moved := s.viewer.Previous()
	writeView(w, view, moved, nil)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req rpc.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeView(w, s.viewer.Search(req.Query), false, nil)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req rpc.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := s.viewer.Toggle(req.ID)
	writeView(w, view, false, err)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeView(w, s.viewer.Current(), false, nil)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	page, project, err := s.viewer.Section(docs.ID(r.PathValue("id")))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rpc.SectionResponse{Project: project, Page: page})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	view := s.viewer.Current()
	writeJSON(w, http.StatusOK, rpc.StatusResponse{
		Index:    s.viewer.IndexURI(),
		Project:  view.Project,
		Loading:  view.Loading,
		Sections: s.viewer.Sections(),
		Query:    view.Query,
		Selected: string(view.Selected),
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "shutting down"})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(ctx)
		os.Exit(0)
	}()
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownSection):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoProject):
		return http.StatusConflict
	case errors.Is(err, fetch.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeView always sends the view, even on failure, so clients can still
// draw the error page.
func writeView(w http.ResponseWriter, view viewer.View, moved bool, err error) {
	resp := rpc.ViewResponse{View: view, Moved: moved}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = statusFor(err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
