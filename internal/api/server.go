// Package api serves the annotation catalog and the format profiles over
// a JSON REST API.
package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/FocuswithJustin/annokit/internal/catalog"
	"github.com/FocuswithJustin/annokit/internal/logging"
)

// Server answers API requests from one catalog.
type Server struct {
	cfg     Config
	catalog *catalog.Catalog
	started time.Time
}

// New returns a server over cat. The caller keeps ownership of cat.
func New(cfg Config, cat *catalog.Catalog) *Server {
	return &Server{cfg: cfg, catalog: cat, started: time.Now()}
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()

	if s.cfg.RateLimitRequests > 0 {
		burst := s.cfg.RateLimitBurst
		if burst == 0 {
			burst = 10
		}
		limiter := NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: s.cfg.RateLimitRequests,
			BurstSize:         burst,
		})
		handler = limiter.Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", s.cfg.RateLimitRequests,
			"burst_size", burst)
	}

	handler = corsMiddleware(s.cfg.AllowedOrigins, securityHeaders(handler))
	return logging.CombinedMiddleware(handler)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /formats", s.handleFormats)
	mux.HandleFunc("GET /formats/{name}", s.handleFormat)
	mux.HandleFunc("GET /documents", s.handleDocuments)
	mux.HandleFunc("DELETE /documents", s.handleRemoveDocument)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("POST /check", s.handleCheck)
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info("server_startup", "service", "rest_api", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logging.Info("server_shutdown", "service", "rest_api")
	return nil
}

// securityHeaders sets the headers of a JSON API that never loads
// resources or renders in a frame.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows every origin when allowed is empty.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(allowed) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(allowed, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
