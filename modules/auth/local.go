package auth

import (
	"context"

	"github.com/example/task-manager/domain/apperror"
	domain "github.com/example/task-manager/domain/user"
)

// LocalPort implements AuthPort by calling an AuthService in-process.
type LocalPort struct {
	service *AuthService
}

var _ AuthPort = (*LocalPort)(nil)

// NewLocalPort returns an AuthPort backed directly by service.
func NewLocalPort(service *AuthService) *LocalPort {
	return &LocalPort{service: service}
}

// Register creates an account.
func (p *LocalPort) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	session, err := p.service.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, apperror.From(err)
	}
	return session, nil
}

// Login authenticates an account.
func (p *LocalPort) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	session, err := p.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, apperror.From(err)
	}
	return session, nil
}

// ValidateToken validates a session token and returns its claims.
func (p *LocalPort) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	claims, err := p.service.ValidateToken(ctx, token)
	if err != nil {
		return nil, apperror.From(err)
	}
	return claims, nil
}

// GetProfile retrieves a user's public profile.
func (p *LocalPort) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := p.service.GetProfile(ctx, userID)
	if err != nil {
		return nil, apperror.From(err)
	}
	return profile, nil
}
