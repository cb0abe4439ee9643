// Package http serves the dashboard API over the gateway-facing surface.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"kindra/internal/amqp"
	"kindra/internal/cache"
	"kindra/internal/dashboard"
	"kindra/internal/log"
	"kindra/internal/middleware/trace"
	"kindra/internal/refresh"
	"kindra/internal/sheets"
	"kindra/internal/store"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = 30 * time.Second
)

// RefreshPublisher queues refresh requests on the message broker so the
// worker picks them up. When no broker is configured the server falls back
// to triggering the coordinator directly.
type RefreshPublisher interface {
	PublishRefreshRequest(ctx context.Context, msg *amqp.RefreshRequestMessage) error
}

type Server struct {
	http.Server

	store       *store.Store
	coordinator *refresh.Coordinator
	publisher   RefreshPublisher
	reports     sheets.ReportWriter
	logger      *log.Logger
	rateLimiter *rateLimiter
	tracer      *trace.Middleware

	// Resolved views keyed per identity. Purged whenever a refresh commits,
	// so a hit can never outlive the snapshot it was computed from by more
	// than the TTL.
	viewCache *cache.LRUCache[dashboard.View]

	// Cache cleanup management
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once

	startedAt time.Time
	now       func() time.Time
}

type Option func(*Server)

// WithPublisher routes refresh requests through the broker.
func WithPublisher(p RefreshPublisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithReportWriter enables the report export endpoint.
func WithReportWriter(rw sheets.ReportWriter) Option {
	return func(s *Server) { s.reports = rw }
}

// WithViewCache sizes the per-identity view cache.
func WithViewCache(size int, ttl time.Duration) Option {
	return func(s *Server) { s.viewCache = cache.NewLRUCache[dashboard.View](size, ttl) }
}

// WithClock fixes the server clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, st *store.Store, coordinator *refresh.Coordinator, logger *log.Logger, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:            st,
		coordinator:      coordinator,
		logger:           logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      newRateLimiter(),
		stopCacheCleanup: make(chan struct{}),
		startedAt:        time.Now(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.viewCache == nil {
		s.viewCache = cache.NewLRUCache[dashboard.View](defaultCacheSize, defaultCacheTTL)
	}

	// A committed refresh invalidates every cached view at once; views mix
	// collections, so per-collection invalidation would be guesswork.
	if s.coordinator != nil {
		s.coordinator.OnCommit(s.viewCache.Purge)
	}

	// Start periodic cache cleanup
	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/dashboard", s.withSecurity(s.handleDashboard))
	mux.HandleFunc("/api/refresh", s.withSecurity(s.handleRefresh))
	mux.HandleFunc("/api/reports/export", s.withSecurity(s.handleExport))

	// Outermost to innermost: trace assigns the request id, the log
	// middleware seeds the context logger, and the request-id middleware
	// stamps that logger with the id trace assigned.
	s.tracer = trace.NewMiddleware(extractClientIP)
	requestID := log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})
	handler := s.tracer.Middleware(log.Middleware(s.logger)(requestID(mux)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// withSecurity adds security headers and rate limiting to API handlers.
// Request logging lives in the trace middleware.
func (s *Server) withSecurity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)

		if !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		next(w, r)
	}
}

// extractClientIP resolves the caller address, considering proxies.
func extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// startCacheCleanup runs periodic cleanup for the view cache
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.viewCache.CleanExpired(); cleaned > 0 {
				s.logger.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	// Ensure shutdown logic runs only once
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
