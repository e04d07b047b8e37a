package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finanze/internal/app"
	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/report"
	appweb "finanze/web"
)

// ReadyFunc reports whether the server's dependencies are usable.
type ReadyFunc func(ctx context.Context) error

// Options configure NewServer. Zero values pick the defaults.
type Options struct {
	Logger    *log.Logger
	Headers   *HeadersConfig
	RateLimit RateLimitConfig
	Ready     ReadyFunc
	// Heartbeat is the SSE keep-alive interval.
	Heartbeat time.Duration
}

// Server wraps http.Server with the application and its background routines.
type Server struct {
	http.Server

	app       *app.App
	logger    *log.Logger
	templates *template.Template
	limiter   *rateLimiter
	ready     ReadyFunc
	heartbeat time.Duration

	// closing ends open event streams, which would otherwise hold Shutdown.
	closing      chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, a *app.App, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	headers := DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}
	heartbeat := opts.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}

	s := &Server{
		app:       a,
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter:   newRateLimiter(opts.RateLimit),
		ready:     opts.Ready,
		heartbeat: heartbeat,
		closing:   make(chan struct{}),
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed to parse templates", log.FieldError, err)
	} else {
		s.templates = tmpl
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware)
	r.Use(log.AccessLog)
	r.Use(SecurityHeaders(headers))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	if static, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Get("/", s.handleIndex)

		r.Route("/api", func(r chi.Router) {
			r.Get("/views", s.handleViews)
			r.Get("/transactions", s.handleListTransactions)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Post("/transactions/{id}/delete", s.handleRequestDelete)
			r.Post("/delete/confirm", s.handleConfirmDelete)
			r.Post("/delete/cancel", s.handleCancelDelete)
			r.Put("/period", s.handleSetPeriod)
			r.Get("/export.csv", s.handleExport)
			r.Get("/notification", s.handleNotification)
			r.Delete("/notification", s.handleDismissNotification)
			r.Get("/stream", s.handleStream)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("risorsa non trovata").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		JSONError(http.StatusMethodNotAllowed, "metodo non consentito").Write(w)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

var templateFuncs = template.FuncMap{
	"euros": core.FormatEuros,
	"icon":  report.Icon,
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		close(s.closing)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
