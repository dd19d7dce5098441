// Package api provides the read-mostly HTTP API and WebSocket server
// that sits in front of the LSH adapter.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-lsh/internal/adapter"
	"github.com/nerrad567/gray-logic-lsh/internal/audit"
	"github.com/nerrad567/gray-logic-lsh/internal/contextstore"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Logger   *logging.Logger
	Adapter  *adapter.Service
	Audit    audit.Repository    // optional: nil disables GET /api/v1/audit
	CtxStore *contextstore.Store // optional: nil disables PUT /api/v1/context/{key}
	Version  string
}

// Server is the HTTP API server fronting the LSH adapter.
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	adapter   *adapter.Service
	auditRepo audit.Repository
	ctxStore  *contextstore.Store
	version   string
	startTime time.Time

	server      *http.Server
	hub         *Hub
	cancel      context.CancelFunc
	rateLimiter *rateLimiter
}

// New creates a new API server with the given dependencies. The server
// is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Adapter == nil {
		return nil, fmt.Errorf("adapter service is required")
	}

	return &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		logger:      deps.Logger,
		adapter:     deps.Adapter,
		auditRepo:   deps.Audit,
		ctxStore:    deps.CtxStore,
		version:     deps.Version,
		startTime:   time.Now(),
		rateLimiter: newRateLimiter(),
	}, nil
}

// Start begins listening for HTTP connections. It starts the WebSocket
// hub, registers it against the adapter's onResult callback so every
// stateChanged ServiceResult is rebroadcast, and launches the HTTP
// listener in a background goroutine. The server can be stopped with
// Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)
	s.adapter.SetOnResult(s.hub.BroadcastServiceResult)

	if s.rateLimiter != nil {
		go s.rateLimiter.cleanupLoop(srvCtx, rateLimitWindow)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to
// gracefulShutdownTimeout for in-flight requests to complete.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
