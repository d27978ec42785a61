package auth

import (
	"github.com/example/task-manager/domain/apperror"
	domain "github.com/example/task-manager/domain/user"
)

// Domain failures travel in the Error field of each reply so their kind
// survives the request-reply transport.

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the reply to register and login.
type SessionResponse struct {
	Session *Session        `json:"session,omitempty"`
	Error   *apperror.Error `json:"error,omitempty"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Claims *domain.Claims  `json:"claims,omitempty"`
	Error  *apperror.Error `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"userId"`
}

// GetUserResponse represents a get user response.
type GetUserResponse struct {
	Profile *domain.Profile `json:"profile,omitempty"`
	Error   *apperror.Error `json:"error,omitempty"`
}
