package main

import (
	"context"
	"log"
	"os"

	"github.com/example/task-manager/config"
	"github.com/example/task-manager/middleware/ratelimit"
	"github.com/example/task-manager/modules/api"
	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/cache"
	"github.com/example/task-manager/modules/database"
	"github.com/example/task-manager/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logLevel := mono.LogLevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = mono.LogLevelDebug
	case "warn":
		logLevel = mono.LogLevelWarn
	case "error":
		logLevel = mono.LogLevelError
	}
	logFormat := mono.LogFormatText
	if cfg.LogFormat == "json" {
		logFormat = mono.LogFormatJSON
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(logFormat),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}
	logger := app.Logger()

	if cfg.UsingDevKeys {
		logger.Warn("JWT_SECRET is not set, signing tokens with the development key", "env", cfg.Env)
	}

	dbPlugin := database.NewPluginModule(database.Options{
		Driver:      cfg.DBDriver,
		Path:        cfg.DBPath,
		DatabaseURL: cfg.DatabaseURL,
	}, logger)
	if err := app.RegisterPlugin(dbPlugin, "database"); err != nil {
		log.Fatalf("Failed to register database plugin: %v", err)
	}

	if cfg.RedisEnabled() {
		cachePlugin := cache.NewPluginModule(cfg.RedisAddr, "profile:", cfg.ProfileCacheTTL, logger)
		if err := app.RegisterPlugin(cachePlugin, "cache"); err != nil {
			log.Fatalf("Failed to register cache plugin: %v", err)
		}
		limiterPlugin := ratelimit.NewPluginModule(cfg.RedisAddr, logger)
		if err := app.RegisterPlugin(limiterPlugin, "ratelimit"); err != nil {
			log.Fatalf("Failed to register ratelimit plugin: %v", err)
		}
	}

	authModule := auth.NewModule(auth.Config{
		JWT: auth.JWTConfig{
			SecretKey: cfg.JWTSecret,
			TTL:       cfg.JWTTTL,
			Issuer:    cfg.JWTIssuer,
		},
		BcryptCost: cfg.BcryptCost,
	}, logger)
	taskModule := task.NewModule(cfg.AllowCompletedAtOverride, logger)
	apiModule := api.NewModule(api.Config{
		Addr:            cfg.HTTPAddr,
		Development:     cfg.IsDevelopment(),
		RateLimit:       cfg.RateLimitAuth,
		RateLimitWindow: cfg.RateLimitWindow,
		LocalRateLimit:  !cfg.RedisEnabled(),
		CORSOrigins:     cfg.CORSOrigins,
	}, logger)

	app.Register(authModule)
	app.Register(taskModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	logger.Info("Task manager started",
		"addr", cfg.HTTPAddr,
		"env", cfg.Env,
		"db_driver", cfg.DBDriver,
		"redis", cfg.RedisEnabled())

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info("Application exited", "code", exitCode)
	os.Exit(exitCode)
}
