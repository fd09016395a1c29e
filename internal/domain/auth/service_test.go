package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/domain/auth"
	"prodsupply/internal/infrastructure/storage/memory"
)

func newService() *auth.Service {
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	return auth.NewService(memory.NewUserRepo(), jwtService, auth.DefaultServiceConfig())
}

func TestService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	user, err := svc.Register(ctx, "dev@example.com", "long-enough-password", "Dev")
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", user.Email)
	assert.NotEqual(t, "long-enough-password", user.PasswordHash)

	token, logged, err := svc.Login(ctx, auth.Credentials{
		Email:    "dev@example.com",
		Password: "long-enough-password",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)
	assert.NotNil(t, logged.LastLoginAt)
}

func TestService_RegisterRejectsShortPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Register(ctx, "dev@example.com", "short", "Dev")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_RegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Register(ctx, "dev@example.com", "long-enough-password", "Dev")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "dev@example.com", "another-password-1", "Dev")
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
}

func TestService_LoginRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Register(ctx, "dev@example.com", "long-enough-password", "Dev")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, auth.Credentials{Email: "dev@example.com", Password: "wrong-password"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestService_LoginRejectsUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, _, err := svc.Login(ctx, auth.Credentials{Email: "nobody@example.com", Password: "whatever"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestJWTService_RoundTrip(t *testing.T) {
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))

	token, expiresAt, err := jwtService.GenerateAccessToken("user-1", "dev@example.com", []string{"sales"}, true)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	uc, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uc.UserID)
	assert.Equal(t, "dev@example.com", uc.Email)
	assert.Equal(t, []string{"sales"}, uc.Roles)
	assert.True(t, uc.IsAdmin)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	signer := auth.NewJWTService(auth.DefaultJWTConfig("secret-a"))
	verifier := auth.NewJWTService(auth.DefaultJWTConfig("secret-b"))

	token, _, err := signer.GenerateAccessToken("user-1", "dev@example.com", nil, false)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	cfg := auth.DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	jwtService := auth.NewJWTService(cfg)

	token, _, err := jwtService.GenerateAccessToken("user-1", "dev@example.com", nil, false)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.Error(t, err)
}
