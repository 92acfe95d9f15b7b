package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bittutor/bittutor-api/internal/models"
	"github.com/bittutor/bittutor-api/pkg/config"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "bittutor-test"}
}

func seedCredentials(t *testing.T) *userRepoStub {
	t.Helper()
	repo := newUserRepoStub()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &models.User{
		Mail: "ada@example.com", Name: "Ada", Password: string(hash), Age: 28, StudyLevel: "graduate",
	}))
	return repo
}

func TestLoginIssuesToken(t *testing.T) {
	svc := NewAuthService(seedCredentials(t), authTestConfig(), nil, nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Mail: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "ada@example.com", resp.User.Mail)

	claims, err := svc.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "bittutor-test", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(seedCredentials(t), authTestConfig(), nil, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Mail: "ada@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownMail(t *testing.T) {
	svc := NewAuthService(seedCredentials(t), authTestConfig(), nil, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Mail: "ghost@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	svc := NewAuthService(seedCredentials(t), authTestConfig(), nil, nil)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Mail: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	other := NewAuthService(seedCredentials(t), config.JWTConfig{Secret: "different", Expiration: time.Hour}, nil, nil)
	_, err = other.ParseToken(resp.AccessToken)
	require.Error(t, err)
}
