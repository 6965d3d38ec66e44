// Package api provides the HTTP REST API for patra.
//
// It exposes authentication, principal management, record CRUD, and the
// audit trail as a JSON API.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: all methods are safe for concurrent use from multiple
// goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/patra-io/patra/internal/audit"
	"github.com/patra-io/patra/internal/auth"
	"github.com/patra-io/patra/internal/infrastructure/config"
	"github.com/patra-io/patra/internal/infrastructure/logging"
	"github.com/patra-io/patra/internal/record"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config        config.APIConfig
	Security      config.SecurityConfig
	Logger        *logging.Logger
	Principals    auth.PrincipalRepository
	Records       record.Repository
	Audit         audit.Repository // optional: denials are still enforced without it
	Tokens        *auth.TokenService
	Gate          *auth.Gate
	Authenticator *auth.Authenticator
	Version       string
}

// Server is the HTTP API server for patra.
//
// It manages the HTTP listener, routes, middleware, and the asynchronous
// audit writer. The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	secCfg     config.SecurityConfig
	logger     *logging.Logger
	principals auth.PrincipalRepository
	records    record.Repository
	auditRepo  audit.Repository
	tokens     *auth.TokenService
	gate       *auth.Gate
	authn      *auth.Authenticator
	version    string
	server     *http.Server
	auditCh    chan *audit.Entry
	cancel     context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Principals == nil {
		return nil, fmt.Errorf("principal repository is required")
	}
	if deps.Records == nil {
		return nil, fmt.Errorf("record repository is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	if deps.Gate == nil {
		return nil, fmt.Errorf("access gate is required")
	}
	if deps.Authenticator == nil {
		return nil, fmt.Errorf("authenticator is required")
	}

	s := &Server{
		cfg:        deps.Config,
		secCfg:     deps.Security,
		logger:     deps.Logger,
		principals: deps.Principals,
		records:    deps.Records,
		auditRepo:  deps.Audit,
		tokens:     deps.Tokens,
		gate:       deps.Gate,
		authn:      deps.Authenticator,
		version:    deps.Version,
	}

	if s.auditRepo != nil {
		s.auditCh = make(chan *audit.Entry, auditChanSize)
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It launches the async audit writer and the HTTP listener in background
// goroutines. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.auditCh != nil {
		go s.drainAuditLog(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to gracefulShutdownTimeout for in-flight requests to
// complete, then forcefully closes remaining connections. The audit
// writer drains pending entries before exiting.
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
