// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"fmt"

	"github.com/gorilla/mux"

	"github.com/fd1az/slippage-sentinel/internal/config"
	"github.com/fd1az/slippage-sentinel/internal/di"
	"github.com/fd1az/slippage-sentinel/internal/health"
	"github.com/fd1az/slippage-sentinel/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Router() *mux.Router
	Health() *health.Server
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	router    *mux.Router
	health    *health.Server
	container di.Container
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface, router *mux.Router, healthServer *health.Server) (*app, error) {
	if cfg == nil {
		return nil, fmt.Errorf("monolith: config is required")
	}
	if router == nil {
		return nil, fmt.Errorf("monolith: router is required")
	}

	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)

	return &app{
		config:    cfg,
		logger:    log,
		router:    router,
		health:    healthServer,
		container: container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Router() *mux.Router {
	return a.router
}

func (a *app) Health() *health.Server {
	return a.health
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
