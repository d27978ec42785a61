package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey: "test-secret-key",
		TTL:       DefaultTokenTTL,
		Issuer:    "test-issuer",
	}
}

func TestJWTManager_IssueAndVerify(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	token, err := manager.IssueToken("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("IssueToken() returned empty token")
	}

	claims, err := manager.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("claims.UserID = %v, want %v", claims.UserID, "user-123")
	}
	if claims.Email != "test@example.com" {
		t.Errorf("claims.Email = %v, want %v", claims.Email, "test@example.com")
	}
	if claims.Subject != "user-123" {
		t.Errorf("claims.Subject = %v, want %v", claims.Subject, "user-123")
	}
	if claims.Issuer != "test-issuer" {
		t.Errorf("claims.Issuer = %v, want %v", claims.Issuer, "test-issuer")
	}

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != 7*24*time.Hour {
		t.Errorf("token lifetime = %v, want 7 days", lifetime)
	}
}

func TestJWTManager_DefaultTTL(t *testing.T) {
	manager := NewJWTManager(JWTConfig{SecretKey: "k"})
	if manager.TTL() != DefaultTokenTTL {
		t.Errorf("TTL() = %v, want %v", manager.TTL(), DefaultTokenTTL)
	}
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	manager.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }

	token, err := manager.IssueToken("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	manager.now = time.Now
	if _, err := manager.VerifyToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("VerifyToken() error = %v, want %v", err, ErrExpiredToken)
	}
}

func TestJWTManager_RejectsBadTokens(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	valid, err := manager.IssueToken("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	otherKey, err := NewJWTManager(JWTConfig{SecretKey: "another-key"}).IssueToken("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, JWTClaims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: "user-123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered", valid[:len(valid)-2] + "xx"},
		{"wrong key", otherKey},
		{"other algorithm", hs512},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.VerifyToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("VerifyToken() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}
