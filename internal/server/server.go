// Package server provides the HTTP REST API for the career portal.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/career-services/internal/config"
	"github.com/jonathan/career-services/internal/dashboard"
	"github.com/jonathan/career-services/internal/server/middleware"
	"github.com/jonathan/career-services/internal/server/ratelimit"
	"github.com/jonathan/career-services/internal/types"
	"github.com/jonathan/career-services/internal/workflow"
)

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	workflow    *workflow.Service
	dashboards  *dashboard.Loader
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	logger      *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port int
	JWT  *config.JWTConfig

	// RateLimit defaults to ratelimit.LoadConfig when nil.
	RateLimit        *ratelimit.Config
	RateLimitBackend ratelimit.Backend

	Logger *slog.Logger
}

// New creates a new server instance
func New(cfg Config, svc *workflow.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("workflow service is required")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT configuration is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		workflow:   svc,
		dashboards: dashboard.NewLoader(svc.Repository()),
		jwtService: NewJWTService(cfg.JWT),
		logger:     logger,
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		var err error
		if rlConfig, err = ratelimit.LoadConfig(); err != nil {
			return nil, fmt.Errorf("invalid rate limit settings: %w", err)
		}
	}
	var rlOpts []ratelimit.Option
	if cfg.RateLimitBackend != nil {
		rlOpts = append(rlOpts, ratelimit.WithBackend(cfg.RateLimitBackend))
	}
	s.rateLimiter = ratelimit.NewLimiter(rlConfig, rlOpts...)

	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protect := func(h http.HandlerFunc, roles ...types.Role) http.Handler {
		var next http.Handler = h
		if len(roles) > 0 {
			next = middleware.RequireRole(roles...)(next)
		}
		return auth(next)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /statuses", s.handleStatuses)

	// Jobs
	mux.Handle("POST /jobs", protect(s.handleCreateJob, types.RoleEmployer))
	mux.Handle("GET /jobs", protect(s.handleListJobs))
	mux.Handle("GET /jobs/{id}", protect(s.handleGetJob))

	// Applications
	mux.Handle("POST /jobs/{id}/applications", protect(s.handleSubmitApplication, types.RoleStudent))
	mux.Handle("GET /applications", protect(s.handleListApplications, types.RoleStudent, types.RoleEmployer))
	mux.Handle("PUT /applications/{id}/status", protect(s.handleUpdateApplicationStatus, types.RoleEmployer))

	// Interviews
	mux.Handle("POST /applications/{id}/interviews", protect(s.handleProposeInterview, types.RoleEmployer))
	mux.Handle("POST /interviews/{id}/respond", protect(s.handleRespondInterview, types.RoleStudent))
	mux.Handle("GET /interviews/{id}", protect(s.handleGetInterview))

	mux.Handle("GET /dashboard", protect(s.handleDashboard))
	mux.Handle("POST /cascades/{id}/reconcile", protect(s.handleReconcileCascade, types.RoleAdmin))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until ctx is cancelled or
// the process receives an interrupt.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.rateLimiter.Stop()
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

	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

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

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// actionError logs a failed action once and writes its one-line message.
func (s *Server) actionError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := HTTPStatus(err)
	s.logActionError(r, action, err, status)
	s.errorResponse(w, status, ErrorMessage(err))
}

func (s *Server) logActionError(r *http.Request, action string, err error, status int) {
	attrs := []any{"action", action, "path", r.URL.Path, "status", status, "error", err}
	if identity, idErr := middleware.GetIdentity(r); idErr == nil {
		attrs = append(attrs, "user_id", identity.UserID, "role", identity.Role)
	}
	var partial *workflow.PartialCascadeError
	if errors.As(err, &partial) {
		attrs = append(attrs, "cascade_id", partial.CascadeID, "failed_step", partial.Failed)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("action failed", attrs...)
		return
	}
	s.logger.Warn("action rejected", attrs...)
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrBadRequest{Message: "Invalid request body: " + err.Error()}
	}
	return nil
}

// validator is implemented by request types.
type validator interface {
	Validate() error
}

// decodeRequest decodes and validates a request body.
func decodeRequest(r *http.Request, req validator) error {
	if err := decodeJSON(r, req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return &ErrBadRequest{Message: err.Error()}
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
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
	response := map[string]interface{}{
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
		"method", r.Method,
		"path", r.URL.Path,
		"limit", info.Limit,
		"reset", info.ResetTime.Format(time.RFC3339),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
