// Package database provides the user and task stores as a mono plugin module.
package database

import (
	"context"
	"fmt"

	"github.com/example/task-manager/config"
	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/store/gormstore"
	"github.com/example/task-manager/store/pgxstore"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// Stores bundles the repositories handed to consumers.
type Stores struct {
	Users user.Repository
	Tasks task.Repository
}

// Options selects and locates the backing database.
type Options struct {
	Driver      string
	Path        string
	DatabaseURL string
}

// PluginModule owns the database connection. Plugins start before and stop
// after regular modules, so the stores outlive every consumer.
type PluginModule struct {
	container types.ServiceContainer
	opts      Options
	logger    types.Logger

	gormDB *gorm.DB
	pool   *pgxpool.Pool
	stores Stores
}

var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
)

// NewPluginModule creates a database plugin for the given options.
func NewPluginModule(opts Options, logger types.Logger) *PluginModule {
	return &PluginModule{
		opts:   opts,
		logger: logger.WithModule("database"),
	}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "database"
}

// Start opens the configured database and migrates the schema.
func (m *PluginModule) Start(ctx context.Context) error {
	switch m.opts.Driver {
	case config.DriverPostgres:
		pool, err := pgxstore.Open(ctx, m.opts.DatabaseURL)
		if err != nil {
			return err
		}
		m.pool = pool
		m.stores = Stores{
			Users: pgxstore.NewUserRepository(pool),
			Tasks: pgxstore.NewTaskRepository(pool),
		}
	case config.DriverSQLite, "":
		db, err := gormstore.Open(m.opts.Path)
		if err != nil {
			return err
		}
		m.gormDB = db
		m.stores = Stores{
			Users: gormstore.NewUserRepository(db),
			Tasks: gormstore.NewTaskRepository(db),
		}
	default:
		return fmt.Errorf("unsupported database driver %q", m.opts.Driver)
	}

	m.logger.Info("Plugin started", "driver", m.driver())
	return nil
}

// Stop closes the database connection.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.pool != nil {
		m.pool.Close()
	}
	if m.gormDB != nil {
		if err := gormstore.Close(m.gormDB); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	m.logger.Info("Plugin stopped")
	return nil
}

// SetContainer sets the service container for this plugin.
func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

// Container returns the service container for this plugin.
func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// Port returns the repositories. Both are nil before Start.
func (m *PluginModule) Port() Stores {
	return m.stores
}

// Health pings the database.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	var err error
	switch {
	case m.pool != nil:
		err = m.pool.Ping(ctx)
	case m.gormDB != nil:
		sqlDB, dbErr := m.gormDB.DB()
		if dbErr != nil {
			err = dbErr
		} else {
			err = sqlDB.PingContext(ctx)
		}
	default:
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}

	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.driver(),
		},
	}
}

func (m *PluginModule) driver() string {
	if m.opts.Driver == "" {
		return config.DriverSQLite
	}
	return m.opts.Driver
}
