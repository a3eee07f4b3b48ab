// Package http exposes the finance service as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "gofinances/internal/log"
	"gofinances/internal/middleware/ratelimit"
	"gofinances/internal/middleware/security"
	"gofinances/internal/middleware/trace"
	"gofinances/internal/services"
	"gofinances/internal/session"
)

// Options configures NewServer.
type Options struct {
	Addr           string
	RequestTimeout time.Duration
	RateLimit      int // requests per minute per client; 0 uses the limiter default

	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	finance  *services.FinanceService
	sessions *session.Manager
	logger   *applog.Logger
	ready    func(ctx context.Context) error

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

func NewServer(opts Options, finance *services.FinanceService, sessions *session.Manager, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 7 * time.Second
	}

	s := &Server{
		finance:  finance,
		sessions: sessions,
		logger:   logger.WithComponent(applog.ComponentHTTP),
		ready:    opts.Ready,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit}),
		detector: security.NewDetector(logger),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/transactions", s.withUser(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withUser(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions", s.withUser(s.handleClearTransactions))
	mux.HandleFunc("GET /api/dashboard", s.withUser(s.handleDashboard))
	mux.HandleFunc("GET /api/resume", s.withUser(s.handleResume))

	mux.HandleFunc("GET /api/session", s.withUser(s.handleGetSession))
	mux.HandleFunc("POST /api/session", s.withUser(s.handleSignIn))
	mux.HandleFunc("DELETE /api/session", s.withUser(s.handleSignOut))

	var h http.Handler = mux
	h = withTimeout(opts.RequestTimeout)(h)
	h = s.limiter.Middleware(s.rateLimitKey, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})(h)
	h = s.detector.Middleware(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      opts.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// rateLimitKey throttles per user when known, per address otherwise.
func (s *Server) rateLimitKey(r *http.Request) string {
	if id, ok := userID(r); ok {
		return "user:" + id
	}
	return "ip:" + s.detector.ClientIP(r)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withTimeout bounds the context of every request.
func withTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
