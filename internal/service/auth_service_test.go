package service

import (
	"context"
	"testing"
	"time"

	"realtime-chat-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestAuthService() (IAuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewAuthService(repo, testSecret, time.Hour), repo
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)
	// DisplayName defaults to the username.
	assert.Equal(t, "alice", registered.User.DisplayName)

	loggedIn, err := svc.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.Id, loggedIn.User.Id)

	// Email works as the identifier too.
	byEmail, err := svc.Login(ctx, &dto.LoginRequest{Identifier: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.Id, byEmail.User.Id)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Identifier: "nobody", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenVerifierRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	verifier := NewTokenVerifier(testSecret)
	claims, err := verifier.Verify(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.Id.String(), claims.UserId)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestTokenVerifierRejectsWrongSecret(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	verifier := NewTokenVerifier("other-secret")
	_, err = verifier.Verify(registered.Token)
	assert.Error(t, err)
}

func TestTokenVerifierRejectsGarbage(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)
	_, err := verifier.Verify("not-a-jwt")
	assert.Error(t, err)
}
