// Package auth provides registration, login and session verification as a mono module.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/task-manager/domain/apperror"
	"github.com/example/task-manager/modules/cache"
	"github.com/example/task-manager/modules/database"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Config configures the auth module.
type Config struct {
	JWT        JWTConfig
	BcryptCost int
}

// AuthModule provides authentication services.
type AuthModule struct {
	config  Config
	logger  types.Logger
	db      *database.PluginModule
	cache   *cache.PluginModule
	service *AuthService
}

var (
	_ mono.Module                = (*AuthModule)(nil)
	_ mono.ServiceProviderModule = (*AuthModule)(nil)
	_ mono.UsePluginModule       = (*AuthModule)(nil)
)

// NewModule creates a new AuthModule.
func NewModule(config Config, logger types.Logger) *AuthModule {
	return &AuthModule{
		config: config,
		logger: logger.WithModule("auth"),
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// SetPlugin receives the database and, optionally, the cache plugin.
func (m *AuthModule) SetPlugin(alias string, plugin mono.PluginModule) {
	switch alias {
	case "database":
		if p, ok := plugin.(*database.PluginModule); ok {
			m.db = p
		}
	case "cache":
		if p, ok := plugin.(*cache.PluginModule); ok {
			m.cache = p
		}
	}
}

// Start wires the service to the stores.
func (m *AuthModule) Start(_ context.Context) error {
	if m.db == nil || m.db.Port().Users == nil {
		return errors.New("database plugin not set - ensure 'database' plugin is registered")
	}

	var profiles cache.CacheService
	if m.cache != nil {
		profiles = m.cache.Port()
	}

	m.service = NewAuthService(
		m.db.Port().Users,
		NewPasswordHasher(m.config.BcryptCost),
		NewJWTManager(m.config.JWT),
		profiles,
		m.logger,
	)

	m.logger.Info("Module started", "profile_cache", profiles != nil, "token_ttl", m.config.JWT.TTL.String())
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	m.logger.Info("Registered services", "services", "register, login, validate-token, get-user")
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return SessionResponse{Error: m.replyError("register", err)}, nil
	}
	return SessionResponse{Session: session}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return SessionResponse{Error: m.replyError("login", err)}, nil
	}
	return SessionResponse{Session: session}, nil
}

func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		return ValidateTokenResponse{Error: m.replyError("validate-token", err)}, nil
	}
	return ValidateTokenResponse{Claims: claims}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	profile, err := m.service.GetProfile(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{Error: m.replyError("get-user", err)}, nil
	}
	return GetUserResponse{Profile: profile}, nil
}

// replyError classifies err for the reply payload and logs internal failures.
func (m *AuthModule) replyError(service string, err error) *apperror.Error {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		m.logger.Error("Service failed", "service", service, "error", appErr.Detail)
	}
	return appErr
}
