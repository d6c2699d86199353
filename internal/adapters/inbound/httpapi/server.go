// Package httpapi exposes the audit engine over HTTP.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tagaudit/tagaudit/internal/adapters/outbound/capture"
	"github.com/tagaudit/tagaudit/internal/application"
	"github.com/tagaudit/tagaudit/internal/domain"
	"github.com/tagaudit/tagaudit/internal/domain/detect"
)

// Server handles audit requests over HTTP. The request body of /analyze is
// the same capture JSON the CLI reads from disk.
type Server struct {
	svc *application.AuditService
	log zerolog.Logger
}

func New(cfg domain.AuditConfig, log zerolog.Logger) *Server {
	return &Server{
		svc: application.NewAuditService(cfg, log),
		log: log,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/vendors", s.handleVendors)
	r.Post("/analyze", s.handleAnalyze)

	return r
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVendors(w http.ResponseWriter, r *http.Request) {
	type vendorInfo struct {
		Key        string   `json:"key"`
		Name       string   `json:"name"`
		Domains    []string `json:"domains"`
		EventNames []string `json:"event_names,omitempty"`
	}
	vendors := detect.Registry()
	infos := make([]vendorInfo, 0, len(vendors))
	for _, v := range vendors {
		infos = append(infos, vendorInfo{Key: v.Key, Name: v.Name, Domains: v.Domains, EventNames: v.EventNames})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 32<<20))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	result, err := capture.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := s.svc.Audit(result.Requests)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
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
