// Package web serves view sessions over HTTP.
//
// Each session is a view.Table over the configured dataset. Clients create a
// session, then drive it with one request per mutation (search, filter,
// sort, page) and receive the resulting page as JSON.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/config"
	"github.com/JonMunkholm/deeptable/internal/record"
	"github.com/JonMunkholm/deeptable/internal/source"
	"github.com/JonMunkholm/deeptable/internal/view"
	"github.com/JonMunkholm/deeptable/internal/web/middleware"
)

// Dataset is the column set and the most recently loaded records every new
// session starts from.
type Dataset struct {
	Columns []column.Column
	Loader  source.Loader

	mu      sync.RWMutex
	records []record.Record
}

// NewDataset returns a dataset holding records. The loader is used by
// reloads and may be nil, in which case reloading is unavailable.
//
// The columns and records are checked the way a table checks them, so a
// dataset no session could be opened on is refused with a *view.ConfigError.
func NewDataset(cols []column.Column, loader source.Loader, records []record.Record) (*Dataset, error) {
	reg, err := column.NewRegistry(cols)
	if err != nil {
		return nil, &view.ConfigError{Op: "columns", Err: err}
	}
	owned, err := record.Ingest(reg, records)
	if err != nil {
		return nil, &view.ConfigError{Op: "records", Err: err}
	}
	return &Dataset{Columns: cols, Loader: loader, records: owned}, nil
}

// Records returns the current record set. It must not be modified.
func (d *Dataset) Records() []record.Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records
}

func (d *Dataset) setRecords(records []record.Record) {
	d.mu.Lock()
	d.records = records
	d.mu.Unlock()
}

// Server is the HTTP server for view sessions.
type Server struct {
	cfg      *config.Config
	data     *Dataset
	sessions *SessionStore
	loads    *loadLimiter
	router   *chi.Mux
	server   *http.Server

	limiters []*rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, data *Dataset) *Server {
	s := &Server{
		cfg:      cfg,
		data:     data,
		sessions: NewSessionStore(cfg.View.MaxSessions, cfg.View.SessionTTL),
		loads:    newLoadLimiter(DefaultMaxConcurrentLoads, cfg.Source.LoadTimeout),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/columns", s.handleListColumns)
		r.Post("/sessions", s.handleCreateSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleCloseSession)

			// Refinements
			r.Put("/search/{columnID}", s.handleSetSearch)
			r.Put("/filter/{columnID}", s.handleSetFilter)
			r.Delete("/filter/{columnID}", s.handleClearFilter)
			r.Get("/filter/{columnID}/candidates", s.handleCandidates)
			r.Post("/sort/{columnID}", s.handleToggleSort)
			r.Post("/clear", s.handleClear)
			r.Post("/batch", s.handleBatch)

			// Paging
			r.Put("/page", s.handleSetPage)
			r.Put("/page-size", s.handleSetPageSize)

			// Rows and hooks
			r.Post("/rows", s.handleAddRow)
			r.Get("/rows/{index}", s.handleRow)
			r.Post("/rows/{index}/edit", s.handleEditRow)
			r.Delete("/rows/{index}", s.handleDeleteRow)

			r.Get("/export", s.handleExport)

			reload := http.HandlerFunc(s.handleReload)
			if s.cfg.Rate.Enabled {
				limiter := s.newRateLimiter(s.cfg.Rate.ReloadLimit, time.Minute)
				r.With(limiter.middleware).Post("/reload", reload)
			} else {
				r.Post("/reload", reload)
			}
		})
	})
}

// Sessions returns the session store, for the sweeper.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, then waits for running reloads.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.stop()
	}
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.loads.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Responses are JSON or CSV and never load resources
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Cache-Control", "no-store")

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter implements a fixed-window rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter that is stopped on Shutdown.
func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	s.limiters = append(s.limiters, rl)
	return rl
}

// cleanup removes stale visitor entries every window until stopped.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
// RemoteAddr has already been rewritten by TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(middleware.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
