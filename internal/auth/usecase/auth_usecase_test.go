package usecase

import (
	"testing"
	"time"

	authdomain "migralog-backend/internal/auth/domain"
	authdto "migralog-backend/internal/auth/dto"
	"migralog-backend/internal/auth/repository"
	"migralog-backend/pkg/config"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthUsecase(t *testing.T) AuthUsecase {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.FCMToken{}))

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
	}
	return NewAuthUsecase(repository.NewUserRepository(db), repository.NewFCMTokenRepository(db), cfg)
}

func register(t *testing.T, uc AuthUsecase) *authdto.TokenResponse {
	t.Helper()
	resp, err := uc.Register(&authdto.RegisterRequest{
		Email: "ana@example.com", Password: "hunter22", Name: "Ana",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	uc := newAuthUsecase(t)
	register(t, uc)

	_, err := uc.Register(&authdto.RegisterRequest{
		Email: "ana@example.com", Password: "other", Name: "Ana Again",
	})
	assert.ErrorContains(t, err, "already registered")
}

func TestLoginVerifiesPassword(t *testing.T) {
	uc := newAuthUsecase(t)
	register(t, uc)

	_, err := uc.Login(&authdto.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorContains(t, err, "invalid email or password")

	resp, err := uc.Login(&authdto.LoginRequest{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestValidateTokenAcceptsAccessOnly(t *testing.T) {
	uc := newAuthUsecase(t)
	resp := register(t, uc)

	user, err := uc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)

	// Refresh tokens must not pass as access tokens.
	_, err = uc.ValidateToken(resp.RefreshToken)
	assert.ErrorContains(t, err, "not an access token")
}

func TestRefreshTokenRotatesPair(t *testing.T) {
	uc := newAuthUsecase(t)
	resp := register(t, uc)

	rotated, err := uc.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	uc := newAuthUsecase(t)
	resp := register(t, uc)

	require.NoError(t, uc.Logout(resp.RefreshToken))

	_, err := uc.RefreshToken(resp.RefreshToken)
	assert.ErrorContains(t, err, "expired")
}

func TestConnectAndDisconnectHealthSource(t *testing.T) {
	uc := newAuthUsecase(t)
	resp := register(t, uc)

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, uc.ConnectHealthSource(resp.User.ID, &authdto.ConnectHealthSourceRequest{
		AccessToken: "at", RefreshToken: "rt", Expiry: &expiry,
	}))

	user, err := uc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, user.HealthConnected())
	assert.NotNil(t, user.HealthConnectedAt)

	require.NoError(t, uc.DisconnectHealthSource(resp.User.ID))
	user, err = uc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, user.HealthConnected())
}
