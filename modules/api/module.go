// Package api serves the task manager over HTTP with Fiber.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/example/task-manager/middleware/ratelimit"
	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/database"
	"github.com/example/task-manager/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Config configures the HTTP server.
type Config struct {
	Addr            string
	Development     bool
	RateLimit       int
	RateLimitWindow time.Duration

	// LocalRateLimit limits the credential routes in-process when no
	// ratelimit plugin is registered.
	LocalRateLimit bool
	CORSOrigins    string
}

// APIModule provides the HTTP REST API.
type APIModule struct {
	config    Config
	app       *fiber.App
	authPort  auth.AuthPort
	taskPort  task.TaskPort
	db        *database.PluginModule
	limiter   *ratelimit.PluginModule
	startTime time.Time
	logger    types.Logger
}

var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.UsePluginModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule.
func NewModule(config Config, logger types.Logger) *APIModule {
	return &APIModule{
		config: config,
		logger: logger.WithModule("api"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the modules whose services the API calls.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task"}
}

// SetDependencyServiceContainer receives the service containers of dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAuthAdapter(container)
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	}
}

// SetPlugin receives the database plugin for health checks and, optionally,
// the rate limiter.
func (m *APIModule) SetPlugin(alias string, plugin mono.PluginModule) {
	switch alias {
	case "database":
		if p, ok := plugin.(*database.PluginModule); ok {
			m.db = p
		}
	case "ratelimit":
		if p, ok := plugin.(*ratelimit.PluginModule); ok {
			m.limiter = p
		}
	}
}

// Start builds the Fiber app and starts listening.
func (m *APIModule) Start(_ context.Context) error {
	if m.authPort == nil || m.taskPort == nil {
		return fmt.Errorf("api module requires the auth and task modules")
	}

	checks := map[string]HealthChecker{}
	if m.db != nil {
		checks["database"] = m.db
	}

	var limiter ratelimit.Allower
	switch {
	case m.limiter != nil:
		limiter = m.limiter.Port()
		checks["redis"] = m.limiter
	case m.config.LocalRateLimit:
		limiter = ratelimit.NewLocalLimiter()
	}

	m.app = NewApp(AppConfig{
		AuthPort:        m.authPort,
		TaskPort:        m.taskPort,
		Logger:          m.logger,
		Limiter:         limiter,
		RateLimit:       m.config.RateLimit,
		RateLimitWindow: m.config.RateLimitWindow,
		Checks:          checks,
		Development:     m.config.Development,
		AccessLog:       true,
		CORSOrigins:     m.config.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.config.Addr); err != nil {
			errCh <- err
		}
	}()

	// Catch immediate failures such as a port already in use.
	select {
	case err := <-errCh:
		return listenErr(m.config.Addr, err)
	case <-time.After(100 * time.Millisecond):
	}

	m.startTime = time.Now()
	m.logger.Info("HTTP server started", "addr", m.config.Addr, "rate_limit", limiter != nil)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health reports whether the server is running.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.startTime.IsZero() {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr":   m.config.Addr,
			"uptime": time.Since(m.startTime).Round(time.Second).String(),
		},
	}
}
