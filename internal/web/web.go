package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"ganttgen/internal/config"
	appLog "ganttgen/internal/log"
	"ganttgen/internal/render"
	"ganttgen/internal/report"
)

// reportTTL bounds how often an HTTP request can trigger a full
// parse+allocate pass; serve-mode refreshes are driven by cron, this
// cache only shields the handlers.
const reportTTL = 30 * time.Second

// Generator produces a report; it is a field so tests can stub the
// pipeline out.
type Generator func(ctx context.Context, cfg *config.Config, now time.Time) (*report.Report, error)

// Server provides the chart preview endpoints.
type Server struct {
	cfg      *config.Config
	generate Generator
	mux      *http.ServeMux

	mu     sync.Mutex
	cached *report.Report
	at     time.Time
}

// NewServer constructs a Server. A nil generator means the real
// pipeline.
func NewServer(cfg *config.Config, generate Generator) *Server {
	if generate == nil {
		generate = report.Generate
	}
	s := &Server{
		cfg:      cfg,
		generate: generate,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/timeline", s.handleTimeline)
	s.mux.HandleFunc("/chart", s.handleChartHTML)
	s.mux.HandleFunc("/chart.svg", s.handleChartSVG)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	return s
}

// Handler returns the http.Handler, wrapped with Basic Auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Serve runs the HTTP server until ctx is canceled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg *config.Config, generate Generator) error {
	s := NewServer(cfg, generate)
	srv := &http.Server{Addr: cfg.Listen, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware protects everything except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="ganttgen", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// currentReport returns a cached report or regenerates one.
func (s *Server) currentReport(ctx context.Context) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.at) < reportTTL {
		return s.cached, nil
	}

	rep, err := s.generate(ctx, s.cfg, time.Now())
	if err != nil {
		return nil, err
	}
	s.cached = rep
	s.at = time.Now()
	return rep, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// timelineResponse is the JSON shape for /api/timeline.
type timelineResponse struct {
	Entries     []entryDTO  `json:"entries"`
	RowKeys     []rowKeyDTO `json:"row_keys"`
	Reference   time.Time   `json:"reference"`
	GeneratedAt time.Time   `json:"generated_at"`
}

type entryDTO struct {
	Group string    `json:"group"`
	Label string    `json:"label"`
	Lane  int       `json:"lane"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type rowKeyDTO struct {
	Group string `json:"group"`
	Lane  int    `json:"lane"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	rep, err := s.currentReport(r.Context())
	if err != nil {
		appLog.Error("api timeline: generation failed", err)
		writeError(w, http.StatusInternalServerError, "failed to generate timeline")
		return
	}

	resp := timelineResponse{
		Entries:     make([]entryDTO, 0, len(rep.Chart.Placements)),
		RowKeys:     make([]rowKeyDTO, 0, len(rep.Chart.RowKeys)),
		Reference:   rep.Reference,
		GeneratedAt: rep.GeneratedAt,
	}
	for _, p := range rep.Chart.Placements {
		resp.Entries = append(resp.Entries, entryDTO{
			Group: p.Group,
			Label: p.Label,
			Lane:  p.Lane,
			Start: p.Start,
			End:   p.End,
		})
	}
	for _, k := range rep.Chart.RowKeys {
		resp.RowKeys = append(resp.RowKeys, rowKeyDTO{Group: k.Group, Lane: k.Lane})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	rep, err := s.currentReport(r.Context())
	if err != nil {
		appLog.Error("chart: generation failed", err)
		http.Error(w, "failed to generate chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WriteHTML(w, rep.Chart); err != nil {
		appLog.Error("chart: render failed", err)
	}
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	rep, err := s.currentReport(r.Context())
	if err != nil {
		appLog.Error("chart.svg: generation failed", err)
		http.Error(w, "failed to generate chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.WriteSVG(w, rep.Chart); err != nil {
		appLog.Error("chart.svg: render failed", err)
	}
}

// handlePreview serves the last captured PNG from the output directory.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.cfg.OutputDir, report.PNGFile))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
