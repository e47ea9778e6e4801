// Package server provides the HTTP server implementation
package server

// @title           Floorkeeper API
// @version         1.0
// @description     Restaurant floor reservations and blocks.
// @x-skip-model-definitions true
//
// @description.markdown
// All API endpoints are subject to rate limiting per IP address.
// When the rate limit is exceeded status 429 is returned with code RATE_LIMITED and
// the headers X-RateLimit-Limit, X-RateLimit-Reset and Retry-After.
//
// Writes that could not lock their tables in time answer 503 with code LOCK_TIMEOUT
// and may be retried unchanged.
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication
//
// @response 429 {object} models.ErrorResponse "Rate limit exceeded"

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

// Server wraps an http.Server with graceful shutdown
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

// New creates a new server listening on port
func New(port string, handler http.Handler) (*Server, error) {
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid port number: %w", err)
	}

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", p),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: 5 * time.Second,
	}, nil
}

// Run serves until ctx is cancelled, then gives outstanding requests the shutdown
// timeout to complete
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
