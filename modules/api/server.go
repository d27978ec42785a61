package api

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/example/task-manager/domain/apperror"
	"github.com/example/task-manager/middleware/ratelimit"
	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// AppConfig holds everything NewApp needs to build the HTTP application.
type AppConfig struct {
	AuthPort auth.AuthPort
	TaskPort task.TaskPort
	Logger   types.Logger

	// Limiter guards register and login when set.
	Limiter         ratelimit.Allower
	RateLimit       int
	RateLimitWindow time.Duration

	// Checks are reported by GET /health, keyed by dependency name.
	Checks map[string]HealthChecker

	// Development exposes internal error details and panic stack traces.
	Development bool
	AccessLog   bool
	CORSOrigins string
}

// NewApp builds the fiber application with every route mounted.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task Manager",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(cfg.Logger, cfg.Development),
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace:  cfg.Development,
		StackTraceHandler: stackTraceHandler(cfg.Logger),
	}))
	if cfg.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(helmet.New())

	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	registerRoutes(app, cfg)
	return app
}

func registerRoutes(app *fiber.App, cfg AppConfig) {
	h := NewHandlers(cfg.AuthPort, cfg.TaskPort, cfg.Checks)
	guard := AuthMiddleware(cfg.AuthPort)

	app.Get("/health", h.Health)

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	credentials := []fiber.Handler{}
	if cfg.Limiter != nil {
		opts := []ratelimit.Option{}
		if cfg.RateLimit > 0 && cfg.RateLimitWindow > 0 {
			opts = append(opts, ratelimit.WithLimit(cfg.RateLimit, cfg.RateLimitWindow))
		}
		credentials = append(credentials, ratelimit.New(cfg.Limiter, cfg.Logger, "auth", opts...))
	}
	authRoutes.Post("/register", append(credentials, h.Register)...)
	authRoutes.Post("/login", append(credentials, h.Login)...)
	authRoutes.Get("/me", guard, h.Me)

	tasks := api.Group("/tasks", guard)
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(Envelope{
			Success: false,
			Error:   "Endpoint not found",
			Path:    c.OriginalURL(),
		})
	})
}

const stackKey = "panicStack"

// stackTraceHandler keeps the stack of a recovered panic for the error handler.
func stackTraceHandler(logger types.Logger) func(*fiber.Ctx, any) {
	return func(c *fiber.Ctx, e any) {
		stack := string(debug.Stack())
		c.Locals(stackKey, stack)
		if logger != nil {
			logger.Error("Panic recovered", "panic", fmt.Sprint(e), "path", c.Path(), "stack", stack)
		}
	}
}

// errorHandler renders every error as an Envelope with the status its kind maps to.
func errorHandler(logger types.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(Envelope{
				Success: false,
				Error:   fiberErr.Message,
			})
		}

		appErr := apperror.From(err)
		status := StatusFor(appErr.Kind)
		body := Envelope{Success: false, Error: appErr.Message}

		if appErr.Kind == apperror.KindInternal {
			if logger != nil {
				logger.Error("Request failed",
					"method", c.Method(),
					"path", c.Path(),
					"error", appErr.Detail)
			}
			if development {
				body.Detail = appErr.Detail
				if stack, ok := c.Locals(stackKey).(string); ok {
					body.Stack = stack
				}
			}
		}

		return c.Status(status).JSON(body)
	}
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

func listenErr(addr string, err error) error {
	return fmt.Errorf("HTTP server failed to listen on %s: %w", addr, err)
}
