package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"careerline/internal/config"
	"careerline/internal/ics"
	appLog "careerline/internal/log"
	"careerline/internal/model"
	"careerline/internal/render"
	"careerline/internal/source"
	"careerline/internal/timeline"
	"careerline/internal/view"
)

// Server serves the rendered timeline plus a small JSON API.
type Server struct {
	cfg     *config.Config
	loc     *time.Location
	fetcher *source.Fetcher
	view    *view.Controller
	mux     *http.ServeMux

	// now is swapped in tests.
	now func() time.Time

	// Last loaded source text. Parsing and layout run per request so that
	// "Present" always means the current month.
	srcMu sync.RWMutex
	src   source.Result
}

// NewServer constructs a Server. Call Refresh before serving to load the
// source; until then the embedded copy is used.
func NewServer(cfg *config.Config, loc *time.Location, fetcher *source.Fetcher) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg:     cfg,
		loc:     loc,
		fetcher: fetcher,
		view:    &view.Controller{},
		mux:     http.NewServeMux(),
		now:     time.Now,
		src: source.Result{
			Body:   source.Embedded(),
			Origin: source.OriginEmbedded,
		},
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// LoopbackHandler returns the routes without basic auth. Only serve it on a
// private loopback listener, as the capture mode does.
func (s *Server) LoopbackHandler() http.Handler {
	return s.mux
}

// Refresh reloads the source text. It never fails; see source.Fetcher.Load.
func (s *Server) Refresh(ctx context.Context) source.Result {
	res := s.fetcher.Load(ctx, source.Spec{URL: s.cfg.Source.URL, Path: s.cfg.Source.Path})

	s.srcMu.Lock()
	s.src = res
	s.srcMu.Unlock()

	appLog.Info("source refreshed", "origin", res.Origin, "bytes", len(res.Body))
	return res
}

// StartRefresh re-fetches the source on the configured cron schedule.
// The returned function stops the scheduler and waits for a running refresh.
func (s *Server) StartRefresh(ctx context.Context) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(s.cfg.RefreshCron, func() {
		s.Refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	appLog.Info("source refresh scheduled", "cron", s.cfg.RefreshCron)

	return func() {
		<-c.Stop().Done()
	}, nil
}

// Snapshot parses the current source and lays it out.
func (s *Server) Snapshot() (timeline.Layout, []model.Section, source.Result, error) {
	s.srcMu.RLock()
	src := s.src
	s.srcMu.RUnlock()

	now := s.now()
	p := timeline.Parser{Now: func() time.Time { return now }, Location: s.loc}
	sections := p.Parse(string(src.Body))

	opts := s.cfg.LayoutOptions(s.loc)
	opts.Now = now
	layout, err := timeline.Build(sections, opts)
	return layout, sections, src, err
}

// View exposes the presentation controller.
func (s *Server) View() *view.Controller {
	return s.view
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
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
			w.Header().Set("WWW-Authenticate", `Basic realm="careerline", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("GET /static/timeline.css", s.handleStylesheet)
	s.mux.HandleFunc("GET /api/layout", s.handleLayout)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("POST /api/stats", s.handleStats)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /timeline.ics", s.handleICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	layout, _, src, err := s.Snapshot()
	if err != nil {
		appLog.Error("layout failed", err)
		http.Error(w, "layout failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = render.Write(w, render.Page{
		Layout:    layout,
		BodyClass: s.view.BodyClass(),
		Origin:    string(src.Origin),
		Generated: src.LoadedAt,
	})
	if err != nil {
		appLog.Error("page render failed", err)
	}
}

func (s *Server) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(render.Stylesheet())
}

// layoutResponse is the JSON response shape for /api/layout.
type layoutResponse struct {
	Origin      source.Origin   `json:"origin"`
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	ShowStats   bool            `json:"show_stats"`
	Layout      timeline.Layout `json:"layout"`
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	layout, _, src, err := s.Snapshot()
	if err != nil {
		appLog.Error("api layout failed", err)
		writeError(w, http.StatusInternalServerError, "layout failed")
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Origin:      src.Origin,
		WindowStart: layout.Window.Min,
		WindowEnd:   layout.Window.Max,
		ShowStats:   s.view.ShowStats(),
		Layout:      layout,
	})
}

// statsRequest carries one trigger: a key press or a window message.
type statsRequest struct {
	Key     string `json:"key,omitempty"`
	Message string `json:"message,omitempty"`
}

type statsResponse struct {
	ShowStats bool `json:"show_stats"`
}

// handleStats reports the stats flag on GET. On POST it forwards the key or
// message trigger to the controller; unknown triggers leave it unchanged.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req statsRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		switch {
		case req.Key != "":
			s.view.HandleKey(req.Key)
		case req.Message != "":
			s.view.HandleMessage(req.Message)
		}
	}
	writeJSON(w, http.StatusOK, statsResponse{ShowStats: s.view.ShowStats()})
}

type refreshResponse struct {
	Origin source.Origin `json:"origin"`
	Bytes  int           `json:"bytes"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res := s.Refresh(r.Context())
	writeJSON(w, http.StatusOK, refreshResponse{Origin: res.Origin, Bytes: len(res.Body)})
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	_, sections, _, err := s.Snapshot()
	if err != nil {
		// sections are parsed before layout, so the feed is still usable
		appLog.Error("layout failed while exporting ICS", err)
	}
	body := ics.Export(sections, ics.ExportOptions{
		Skip:  []string{s.cfg.Layout.OverlaySection},
		Stamp: s.now(),
	})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = w.Write([]byte(body))
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

// ListenAndServe binds cfg.Listen and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, s.Handler())
}

// Serve serves h on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
