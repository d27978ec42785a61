package auth

import (
	"context"
	"testing"

	"github.com/example/task-manager/domain/apperror"
	"github.com/example/task-manager/modules/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthModule_StartRequiresDatabase(t *testing.T) {
	m := NewModule(Config{JWT: testJWTConfig(), BcryptCost: bcrypt.MinCost}, &mockLogger{})
	assert.Equal(t, "auth", m.Name())
	assert.Error(t, m.Start(context.Background()))
}

func TestAuthModule_Handlers(t *testing.T) {
	ctx := context.Background()

	db := database.NewPluginModule(database.Options{Driver: "sqlite", Path: ":memory:"}, &mockLogger{})
	require.NoError(t, db.Start(ctx))
	t.Cleanup(func() { _ = db.Stop(ctx) })

	m := NewModule(Config{JWT: testJWTConfig(), BcryptCost: bcrypt.MinCost}, &mockLogger{})
	m.SetPlugin("database", db)
	require.NoError(t, m.Start(ctx))

	reg, err := m.handleRegister(ctx, RegisterRequest{Email: "eve@example.com", Password: "secret1"}, nil)
	require.NoError(t, err)
	require.Nil(t, reg.Error)
	require.NotNil(t, reg.Session)

	dup, err := m.handleRegister(ctx, RegisterRequest{Email: "eve@example.com", Password: "secret1"}, nil)
	require.NoError(t, err, "domain failures travel in the reply")
	require.NotNil(t, dup.Error)
	assert.Equal(t, apperror.KindConflict, dup.Error.Kind)

	validated, err := m.handleValidateToken(ctx, ValidateTokenRequest{Token: reg.Session.Token}, nil)
	require.NoError(t, err)
	require.NotNil(t, validated.Claims)
	assert.Equal(t, reg.Session.User.ID, validated.Claims.UserID)

	user, err := m.handleGetUser(ctx, GetUserRequest{UserID: validated.Claims.UserID}, nil)
	require.NoError(t, err)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "eve@example.com", user.Profile.Email)

	login, err := m.handleLogin(ctx, LoginRequest{Email: "eve@example.com", Password: "nope"}, nil)
	require.NoError(t, err)
	require.NotNil(t, login.Error)
	assert.Equal(t, apperror.KindUnauthenticated, login.Error.Kind)
}
