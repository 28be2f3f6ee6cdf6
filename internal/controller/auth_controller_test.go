package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/serverutils"
	"realtime-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	registerRes *dto.AuthResponse
	registerErr error
	loginRes    *dto.AuthResponse
	loginErr    error
}

func (s *stubAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	return s.registerRes, s.registerErr
}

func (s *stubAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	return s.loginRes, s.loginErr
}

func newAuthTestApp(svc service.IAuthService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewAuthController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rec.Code = res.StatusCode
	_, err = rec.Body.ReadFrom(res.Body)
	require.NoError(t, err)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	svc := &stubAuthService{
		registerRes: &dto.AuthResponse{
			Token: "a.b.c",
			User:  entity.PublicProfile{Username: "alice"},
		},
	}
	app := newAuthTestApp(svc)

	rec := postJSON(t, app, "/api/auth/register", dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	assert.Equal(t, fiber.StatusCreated, rec.Code)

	var body serverutils.BaseResponse[dto.AuthResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "a.b.c", body.Data.Token)
	assert.Equal(t, "alice", body.Data.User.Username)
}

func TestRegisterEndpointValidation(t *testing.T) {
	app := newAuthTestApp(&stubAuthService{})

	// Missing email and too-short password.
	rec := postJSON(t, app, "/api/auth/register", dto.RegisterRequest{
		Username: "alice",
		Password: "short",
	})
	assert.Equal(t, fiber.StatusBadRequest, rec.Code)
}

func TestRegisterEndpointConflict(t *testing.T) {
	app := newAuthTestApp(&stubAuthService{registerErr: service.ErrUserAlreadyExists})

	rec := postJSON(t, app, "/api/auth/register", dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	assert.Equal(t, fiber.StatusConflict, rec.Code)
}

func TestLoginEndpointUnauthorized(t *testing.T) {
	app := newAuthTestApp(&stubAuthService{loginErr: service.ErrInvalidCredentials})

	rec := postJSON(t, app, "/api/auth/login", dto.LoginRequest{
		Identifier: "alice",
		Password:   "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, rec.Code)

	var body serverutils.BaseResponse[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, 401, body.Code)
}
