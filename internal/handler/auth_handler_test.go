package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/turmas-api/internal/dto"
)

func TestAuthRegisterAndSession(t *testing.T) {
	api := newTestAPI(t)

	auth := api.register(t, "Prof Ana", "Ana@Escola.com", "professor")
	require.Equal(t, "Bearer", auth.TokenType)
	require.NotEmpty(t, auth.AccessToken)
	require.Equal(t, "ana@escola.com", auth.User.Email)
	require.Equal(t, "professor", auth.User.Type)

	status, env := api.do(t, http.MethodGet, "/api/v1/auth/session", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	var session dto.SessionResponse
	decode(t, env, &session)
	require.Equal(t, auth.User.ID, session.User.ID)
	require.WithinDuration(t, auth.ExpiresAt, session.ExpiresAt, time.Second)
}

func TestAuthRegisterErrors(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Prof Ana", "ana@escola.com", "professor")

	status, env := api.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Name: "Outra", Email: "ANA@escola.com", Password: "123456", Type: "aluno",
	})
	require.Equal(t, http.StatusConflict, status)
	require.False(t, env.Success)

	status, env = api.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Name: "Bia", Email: "not-an-email", Password: "1", Type: "admin",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, env.Details, "email")
	require.Contains(t, env.Details, "password")
	require.Contains(t, env.Details, "type")
}

func TestAuthLoginFailures(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Prof Ana", "ana@escola.com", "professor")

	status, _ := api.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "ana@escola.com", Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "nobody@escola.com", Password: "123456"})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginReplacesPreviousSession(t *testing.T) {
	api := newTestAPI(t)
	professor := api.register(t, "Prof Ana", "ana@escola.com", "professor")
	api.register(t, "Bia", "bia@escola.com", "aluno")

	status, _ := api.do(t, http.MethodGet, "/api/v1/auth/session", professor.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	token := api.login(t, "ana@escola.com")
	status, _ = api.do(t, http.MethodGet, "/api/v1/auth/session", token, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	api := newTestAPI(t)
	auth := api.register(t, "Prof Ana", "ana@escola.com", "professor")

	status, _ := api.do(t, http.MethodPost, "/api/v1/auth/logout", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(t, http.MethodGet, "/api/v1/auth/session", auth.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRefreshAndProfile(t *testing.T) {
	api := newTestAPI(t)
	auth := api.register(t, "Prof Ana", "ana@escola.com", "professor")

	status, env := api.do(t, http.MethodPost, "/api/v1/auth/refresh", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	var refreshed dto.AuthResponse
	decode(t, env, &refreshed)
	require.NotEmpty(t, refreshed.AccessToken)

	name := "Ana Souza"
	status, env = api.do(t, http.MethodPatch, "/api/v1/auth/profile", refreshed.AccessToken, dto.UpdateProfileRequest{Name: &name})
	require.Equal(t, http.StatusOK, status, env.Message)
	var user dto.UserResponse
	decode(t, env, &user)
	require.Equal(t, "Ana Souza", user.Name)

	newPassword := "654321"
	status, _ = api.do(t, http.MethodPatch, "/api/v1/auth/profile", refreshed.AccessToken, dto.UpdateProfileRequest{
		NewPassword:     &newPassword,
		CurrentPassword: "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthRateLimit(t *testing.T) {
	api := newTestAPI(t)

	var last int
	for i := 0; i < 11; i++ {
		last, _ = api.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "x@escola.com", Password: "123456"})
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}
