// Package http serves the web application: full pages rendered from
// embedded templates, HTMX partials for everything that updates in
// place, and a server-sent event stream that nudges open tabs when the
// books change.
package http

import (
	"context"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"vibeledger/internal/auth"
	"vibeledger/internal/cache"
	"vibeledger/internal/core"
	"vibeledger/internal/ledger"
	"vibeledger/internal/log"
	"vibeledger/internal/middleware/ratelimit"
	"vibeledger/internal/middleware/security"
	"vibeledger/internal/middleware/trace"
	syncpkg "vibeledger/internal/sync"
	appweb "vibeledger/web"
)

// Transcriber turns an uploaded recording into a transaction pre-fill.
type Transcriber interface {
	FromAudio(ctx context.Context, audio io.Reader, filename string) (core.Suggested, error)
}

// ReceiptReader turns an uploaded photo into a transaction pre-fill.
type ReceiptReader interface {
	FromImage(ctx context.Context, image []byte, contentType string) (core.Suggested, error)
}

// Server wires handlers to their collaborators.
type Server struct {
	http.Server

	templates *template.Template
	logger    *log.Logger

	auth    *auth.Service
	ledger  *ledger.Service
	hub     *syncpkg.Hub
	voice   Transcriber
	receipt ReceiptReader

	metricsCache *cache.LRU[ledger.Metrics]
	limiter      *ratelimit.Limiter
	panels       *panelRegistry

	intakeTimeout time.Duration
	shutdownOnce  sync.Once
}

// Options carries the optional collaborators. Voice and Receipt may be
// nil; their endpoints then answer 503.
type Options struct {
	Voice         Transcriber
	Receipt       ReceiptReader
	IntakeTimeout time.Duration
	PostsPerMin   int
}

// NewServer configures routes, templates and middleware.
func NewServer(addr string, authSvc *auth.Service, ledgerSvc *ledger.Service, hub *syncpkg.Hub, logger *log.Logger, opts Options) *Server {
	if opts.IntakeTimeout <= 0 {
		opts.IntakeTimeout = 30 * time.Second
	}
	if opts.PostsPerMin <= 0 {
		opts.PostsPerMin = 60
	}

	s := &Server{
		logger:        logger.WithComponent(log.ComponentHTTP),
		auth:          authSvc,
		ledger:        ledgerSvc,
		hub:           hub,
		voice:         opts.Voice,
		receipt:       opts.Receipt,
		metricsCache:  cache.NewLRU[ledger.Metrics](500, 5*time.Minute),
		limiter:       ratelimit.NewLimiter(opts.PostsPerMin),
		panels:        newPanelRegistry(),
		intakeTimeout: opts.IntakeTimeout,
	}

	s.templates = template.Must(template.New("").Funcs(template.FuncMap{
		"money":    formatAmount,
		"catLabel": func(c core.Category) string { return c.Label() },
	}).ParseFS(appweb.TemplatesFS, "templates/*.html"))

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Error("failed to mount embedded static files", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Public pages.
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /about", s.handlePage("about"))
	mux.HandleFunc("GET /pricing", s.handlePage("pricing"))

	// Auth.
	limited := s.limiter.Middleware(clientIP)
	mux.Handle("POST /auth/signup", limited(http.HandlerFunc(s.handleSignUp)))
	mux.Handle("POST /auth/signin", limited(http.HandlerFunc(s.handleSignIn)))
	mux.HandleFunc("POST /auth/signout", s.handleSignOut)
	mux.HandleFunc("POST /auth/toggle", s.handleAuthToggle)

	// Signed-in pages.
	mux.Handle("GET /dashboard", s.requireAuth(s.handleDashboard))
	mux.Handle("GET /transactions", s.requireAuth(s.handleTransactionsPage))
	mux.Handle("GET /reports", s.requireAuth(s.handleReportsPage))
	mux.Handle("GET /settings", s.requireAuth(s.handleSettingsPage))

	// Actions and partials.
	mux.Handle("POST /transactions", s.requireAuth(s.handleCreateTransaction))
	mux.Handle("POST /voice", limited(s.requireAuth(s.handleVoiceUpload)))
	mux.Handle("POST /receipt", limited(s.requireAuth(s.handleReceiptUpload)))
	mux.Handle("POST /panel/activate", s.requireAuth(s.handlePanelActivate))
	mux.Handle("POST /panel/close", s.requireAuth(s.handlePanelClose))
	mux.Handle("GET /events", s.requireAuth(s.handleEvents))
	mux.Handle("GET /ui/metrics", s.requireAuth(s.handleMetricsPartial))
	mux.Handle("GET /ui/recent", s.requireAuth(s.handleRecentPartial))

	tracer := trace.NewMiddleware(clientIP, logger)
	handler := tracer.Handler(
		log.Middleware(s.logger)(
			security.Headers(security.DefaultHeadersConfig())(mux)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// InvalidateMetrics drops the cached metrics for an owner. Called from
// the hub feed so remote changes refresh too.
func (s *Server) InvalidateMetrics(owner string) {
	s.metricsCache.Delete(owner)
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
