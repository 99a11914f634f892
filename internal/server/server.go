// Package server provides the HTTP REST API for the job recommender.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hanapwede/job-recommender/internal/config"
	"github.com/hanapwede/job-recommender/internal/logger"
	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/server/middleware"
	"github.com/hanapwede/job-recommender/internal/server/ratelimit"
	"github.com/hanapwede/job-recommender/internal/telemetry"
	"github.com/hanapwede/job-recommender/internal/types"
)

// Store is the read-only data access the API needs. *db.DB satisfies it.
type Store interface {
	ranking.CorpusReader
	ranking.ProfileReader
	GetJobPosting(ctx context.Context, postID int64) (*types.JobPosting, error)
	GetJobFair(ctx context.Context, id int64) (*types.JobFair, error)
	ListTags(ctx context.Context) ([]types.Tag, error)
	ListDisabilityTags(ctx context.Context) ([]types.Tag, error)
	GetUserPreferences(ctx context.Context, userID int64) (*types.UserPreferences, error)
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	engine      *ranking.Engine
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	logger      *zap.Logger
	tracer      trace.Tracer
}

// Config holds server configuration
type Config struct {
	Port    int
	Options ranking.Options
	// RateLimit defaults to ratelimit.DefaultConfig() when nil.
	RateLimit *ratelimit.Config
	// Auth enables /api/me/ routes when set.
	Auth *config.AuthConfig
	// RateLimitStore overrides the in-memory limiter store, e.g. with Redis.
	RateLimitStore ratelimit.Store
}

// New creates a new server instance
func New(cfg Config, store Store, log *zap.Logger) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	log = logger.OrNop(log)

	engine, err := ranking.NewEngine(store, store, cfg.Options, ranking.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create recommendation engine: %w", err)
	}

	s := &Server{
		store:  store,
		engine: engine,
		logger: log,
		tracer: telemetry.Tracer(),
	}

	// Initialize rate limiter
	rlOpts := []ratelimit.Option{
		ratelimit.WithErrorHandler(func(err error) {
			log.Warn("rate limit store unavailable, allowing request", zap.Error(err))
		}),
	}
	if cfg.RateLimitStore != nil {
		rlOpts = append(rlOpts, ratelimit.WithStore(cfg.RateLimitStore))
	}
	s.rateLimiter, err = ratelimit.NewLimiter(cfg.RateLimit, rlOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	if cfg.Auth != nil {
		s.jwtService = NewJWTService(cfg.Auth)
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Recommendation endpoints
	mux.HandleFunc("GET /api/recommend_jobs/", s.handleRecommendJobs)
	mux.HandleFunc("GET /api/jobfairs/{id}/recommend_jobs/", s.handleRecommendJobFairJobs)
	mux.HandleFunc("GET /api/employers/{id}/recommend_jobs/", s.handleRecommendEmployerJobs)
	if s.jwtService != nil {
		auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
		mux.Handle("GET /api/me/recommend_jobs/", auth(http.HandlerFunc(s.handleRecommendMyJobs)))
	}

	// Catalogue endpoints
	mux.HandleFunc("GET /api/tags/", s.handleListTags)
	mux.HandleFunc("GET /api/disability-tags/", s.handleListDisabilityTags)
	mux.HandleFunc("GET /api/user-preferences/{user_id}/", s.handleGetUserPreferences)

	// Job endpoints
	mux.HandleFunc("GET /api/job/{post_id}/", s.handleGetJob)
	mux.HandleFunc("GET /api/all-jobs/", s.handleListAllJobs)

	s.handler = middleware.RequestID(s.withTracing(s.withLogging(s.withRateLimit(s.withCORS(mux)))))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until ctx is cancelled or
// the process receives SIGINT/SIGTERM.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(r.Context(), clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String(logger.FieldRequestID, middleware.GetRequestID(r.Context())),
		)
	})
}

// withTracing starts a server span per request, continuing any propagated trace.
func (s *Server) withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := s.tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(ctx)
		next.ServeHTTP(rec, r)

		span.SetAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.Int("http.response.status_code", rec.status),
			attribute.String("request.id", middleware.GetRequestID(ctx)),
		)
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is ignored.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime),
		zap.String(logger.FieldRequestID, middleware.GetRequestID(r.Context())),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
