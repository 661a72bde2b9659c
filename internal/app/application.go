package app

import (
	"context"
	"fmt"

	"github.com/infrademo/infrademo/internal/app/httpapi"
	"github.com/infrademo/infrademo/internal/app/metrics"
	"github.com/infrademo/infrademo/internal/app/system"
	"github.com/infrademo/infrademo/internal/config"
	"github.com/infrademo/infrademo/internal/connections"
	"github.com/infrademo/infrademo/internal/httpserver"
	"github.com/infrademo/infrademo/internal/mail"
	"github.com/infrademo/infrademo/internal/middleware"
	"github.com/infrademo/infrademo/pkg/logger"
)

// Application ties the connection manager, the mail sender, and the HTTP
// surface together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Connections *connections.Manager
	Mailer      *mail.Sender
	Server      *httpserver.Server
}

// New builds a fully initialised application from the configuration.
func New(cfg *config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("infra-demo")
	}

	conns := connections.NewManager(cfg, log)
	mailer := mail.NewSender(cfg.Mail, log)

	handler := httpapi.NewHandler(conns, mailer, log)
	chain := middleware.NewTracing(log).Handler(metrics.InstrumentHandler(handler))
	server := httpserver.New(cfg.Server, log, chain)

	manager := system.NewManager()
	if err := manager.Register(system.NoopService{ServiceName: "mailer"}); err != nil {
		return nil, fmt.Errorf("register mailer: %w", err)
	}
	// Connections come up before the listener and go down after it, so
	// requests in flight during shutdown still find live handles.
	if err := manager.Register(&connectionsService{conns: conns}); err != nil {
		return nil, fmt.Errorf("register connections: %w", err)
	}
	if err := manager.Register(server); err != nil {
		return nil, fmt.Errorf("register http server: %w", err)
	}

	return &Application{
		manager:     manager,
		log:         log,
		Connections: conns,
		Mailer:      mailer,
		Server:      server,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(svc system.Service) error {
	return a.manager.Register(svc)
}

// Start brings the application up: eager dependency warm-up, then the HTTP
// listener.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop shuts the application down in reverse start order.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}

// connectionsService adapts the connection manager to the service lifecycle.
// Warm-up failures are logged inside the manager and never abort startup;
// teardown never raises.
type connectionsService struct {
	conns *connections.Manager
}

func (s *connectionsService) Name() string { return "connections" }

func (s *connectionsService) Start(ctx context.Context) error {
	s.conns.WarmUp(ctx)
	return nil
}

func (s *connectionsService) Stop(context.Context) error {
	s.conns.CloseAll()
	return nil
}
