package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/isp-devices/internal/device"
	"github.com/nerrad567/isp-devices/internal/infrastructure/config"
	"github.com/nerrad567/isp-devices/internal/infrastructure/logging"
	"github.com/nerrad567/isp-devices/internal/invocation"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by the optional backends reported on /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger

	Catalogue     *device.Catalogue
	DefaultNumber string // dialled by /celular and exercise routes; device.DefaultNumber if empty

	Recorder    invocation.Recorder   // optional: receives one invocation per operation served
	Invocations invocation.Repository // optional: backs GET /invocations, 404 when nil

	Health      map[string]HealthChecker // optional: component checks reported by /health
	ExternalHub *Hub                     // if set, the server uses this hub instead of creating its own
	Version     string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg           config.APIConfig
	wsCfg         config.WebSocketConfig
	secCfg        config.SecurityConfig
	logger        *logging.Logger
	catalogue     *device.Catalogue
	defaultNumber string
	recorder      invocation.Recorder
	invocations   invocation.Repository
	health        map[string]HealthChecker
	version       string
	tickets       *ticketStore
	server        *http.Server
	hub           *Hub
	externalHub   bool               // true if hub was injected externally
	cancel        context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Catalogue == nil {
		return nil, fmt.Errorf("device catalogue is required")
	}

	number := deps.DefaultNumber
	if number == "" {
		number = device.DefaultNumber
	}

	s := &Server{
		cfg:           deps.Config,
		wsCfg:         deps.WS,
		secCfg:        deps.Security,
		logger:        deps.Logger,
		catalogue:     deps.Catalogue,
		defaultNumber: number,
		recorder:      deps.Recorder,
		invocations:   deps.Invocations,
		health:        deps.Health,
		version:       deps.Version,
		tickets:       newTicketStore(),
	}

	// The hub is usually created by the caller so it can also be wired
	// into the invocation recorder as a broadcast sink.
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	}

	return s, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		go s.hub.Run(srvCtx)
	}

	go s.cleanTicketsLoop(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.Timeouts.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.Timeouts.ReadTimeout(),
		WriteTimeout:      s.cfg.Timeouts.WriteTimeout(),
		IdleTimeout:       s.cfg.Timeouts.IdleTimeout(),
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
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

// HealthCheck verifies the API server has been started.
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

// record hands one invocation per result to the recorder.
func (s *Server) record(ctx context.Context, variant device.Variant, results []device.Result) {
	if s.recorder == nil || len(results) == 0 {
		return
	}
	requestID, _ := ctx.Value(ctxKeyRequestID).(string) //nolint:errcheck // empty when middleware is bypassed
	invs := invocation.FromResults(requestID, variant, results)
	if err := invocation.RecordAll(ctx, s.recorder, invs); err != nil {
		s.logger.Warn("recording invocations failed",
			"variant", variant,
			"request_id", requestID,
			"error", err,
		)
	}
}
