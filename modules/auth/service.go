package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/task-manager/domain/apperror"
	domain "github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/modules/cache"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Client-facing messages.
const (
	msgCredentialsRequired = "Email and password are required"
	msgInvalidEmail        = "Invalid email format"
	msgPasswordTooShort    = "Password must be at least 6 characters"
	msgPasswordTooLong     = "Password must be at most 72 bytes"
	msgUserExists          = "User already exists"
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidToken        = "Invalid token"
	msgExpiredToken        = "Token expired"
	msgUserNotFound        = "User not found"
)

// Session is the result of a successful register or login.
type Session struct {
	User  domain.Profile `json:"user"`
	Token string         `json:"token"`
}

// AuthService handles authentication business logic.
type AuthService struct {
	users    domain.Repository
	hasher   *PasswordHasher
	jwt      *JWTManager
	profiles cache.CacheService
	sfGroup  singleflight.Group
	now      func() time.Time
	logger   types.Logger
}

// NewAuthService creates a new AuthService. profiles may be nil, in which
// case every profile lookup goes to the store.
func NewAuthService(users domain.Repository, hasher *PasswordHasher, jwt *JWTManager, profiles cache.CacheService, logger types.Logger) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		jwt:      jwt,
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// Register creates a new account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, email, password string, name *string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Validation(msgCredentialsRequired)
	}
	if !emailPattern.MatchString(email) {
		return nil, apperror.Validation(msgInvalidEmail)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, apperror.Validation(msgPasswordTooShort)
	}
	if len(password) > MaxPasswordBytes {
		return nil, apperror.Validation(msgPasswordTooLong)
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to check email existence: %w", err))
	}
	if exists {
		return nil, apperror.Conflict(msgUserExists)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         normalizeName(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, apperror.Conflict(msgUserExists)
		}
		return nil, apperror.Internal(fmt.Errorf("failed to create user: %w", err))
	}

	s.logger.Info("User registered", "user_id", user.ID)
	return s.newSession(user)
}

// Login authenticates a user. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Validation(msgCredentialsRequired)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, apperror.Unauthenticated(msgInvalidCredentials)
		}
		return nil, apperror.Internal(fmt.Errorf("failed to find user: %w", err))
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperror.Unauthenticated(msgInvalidCredentials)
	}
	return s.newSession(user)
}

// ValidateToken verifies a session token and returns its identity.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.VerifyToken(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperror.Unauthenticated(msgExpiredToken)
		}
		return nil, apperror.Unauthenticated(msgInvalidToken)
	}
	return &domain.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// GetProfile loads the public profile of a user. Concurrent lookups of the
// same user share one store query; results are cached when a cache is set.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	key := "user:" + userID

	if s.profiles != nil {
		var cached domain.Profile
		found, err := s.profiles.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Profile cache read failed", "user_id", userID, "error", err)
		}
		if found {
			return &cached, nil
		}
	}

	// Waiters share the flight, so one caller's cancellation must not fail it.
	flightCtx := context.WithoutCancel(ctx)
	result, err, _ := s.sfGroup.Do(key, func() (any, error) {
		user, err := s.users.FindByID(flightCtx, userID)
		if err != nil {
			return nil, err
		}
		profile := user.Profile()

		if s.profiles != nil {
			if err := s.profiles.Set(flightCtx, key, profile); err != nil {
				s.logger.Warn("Profile cache write failed", "user_id", userID, "error", err)
			}
		}
		return &profile, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Unauthenticated(msgUserNotFound)
		}
		return nil, apperror.Internal(fmt.Errorf("failed to find user: %w", err))
	}
	return result.(*domain.Profile), nil
}

func (s *AuthService) newSession(user *domain.User) (*Session, error) {
	token, err := s.jwt.IssueToken(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to issue token: %w", err))
	}
	return &Session{User: user.Profile(), Token: token}, nil
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
