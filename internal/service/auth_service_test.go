package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/storage"
)

func TestAuthRegisterCreatesUserAndSession(t *testing.T) {
	store, _ := newTestStore(t)
	clock := newTestClock()
	auth := newTestAuth(store, clock)
	ctx := context.Background()

	result, err := auth.Register(ctx, dto.RegisterRequest{Name: " Ana ", Email: "Ana@Escola.com", Password: "segredo", Type: "aluno"})
	require.NoError(t, err)
	require.Equal(t, "Ana", result.User.Name)
	require.Equal(t, "ana@escola.com", result.User.Email)
	require.Equal(t, "aluno", result.User.Type)
	require.NotEmpty(t, result.Session.Token)
	require.Equal(t, clock.Now().Add(DefaultSessionTTL).UnixMilli(), result.Session.ExpiresAt)

	stored, err := store.Users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	require.NotEqual(t, "segredo", stored.PasswordHash)
	require.NotContains(t, stored.PasswordHash, "segredo")

	session, err := auth.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, result.User.ID, session.User.ID)
	require.Equal(t, models.UserTypeStudent, session.User.Type)
}

func TestAuthRegisterValidation(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newTestAuth(store, nil)

	cases := []dto.RegisterRequest{
		{Name: "", Email: "a@b.com", Password: "123456", Type: "aluno"},
		{Name: "A", Email: "not-an-email", Password: "123456", Type: "aluno"},
		{Name: "A", Email: "a@b.com", Password: "12345", Type: "aluno"},
		{Name: "A", Email: "a@b.com", Password: "123456", Type: "admin"},
	}
	for _, payload := range cases {
		_, err := auth.Register(context.Background(), payload)
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs, "%+v", payload)
	}
	require.Empty(t, store.Users.List(context.Background()))
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newTestAuth(store, nil)
	ctx := context.Background()

	mustRegister(t, auth, "Ana", "ana@x.com", models.UserTypeStudent)

	_, err := auth.Register(ctx, dto.RegisterRequest{Name: "Ana 2", Email: "ANA@x.com", Password: "123456", Type: "professor"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.Len(t, store.Users.List(ctx), 1)
}

func TestAuthConcurrentDuplicateRegistration(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newTestAuth(store, nil)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := auth.Register(context.Background(), dto.RegisterRequest{Name: "Dup", Email: "dup@x.com", Password: "123456", Type: "aluno"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			assert.ErrorIs(t, err, ErrDuplicateEmail)
			duplicates++
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, 1, duplicates)
	require.Len(t, store.Users.List(context.Background()), 1)
}

func TestAuthLogin(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newTestAuth(store, nil)
	ctx := context.Background()

	registered, err := auth.Register(ctx, dto.RegisterRequest{Name: "Prof", Email: "prof@x.com", Password: "123456", Type: "professor"})
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx))

	_, err = auth.Login(ctx, dto.LoginRequest{Email: "nobody@x.com", Password: "123456"})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = auth.Login(ctx, dto.LoginRequest{Email: "prof@x.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	session, err := auth.CurrentSession(ctx)
	require.NoError(t, err)
	require.Nil(t, session, "a failed login must not create a session")

	result, err := auth.Login(ctx, dto.LoginRequest{Email: " PROF@x.com", Password: "123456"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, result.User.ID)
	require.NotEqual(t, registered.Session.Token, result.Session.Token)

	session, err = auth.CurrentSession(ctx)
	require.NoError(t, err)
	require.Equal(t, result.Session.Token, session.Token)
}

func TestAuthSessionExpiresLazily(t *testing.T) {
	store, server := newTestStore(t)
	clock := newTestClock()
	auth := newTestAuth(store, clock)
	ctx := context.Background()

	mustRegister(t, auth, "Ana", "ana@x.com", models.UserTypeStudent)
	require.True(t, server.Exists(store.Keys().Session))

	clock.Advance(23 * time.Hour)
	session, err := auth.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)

	clock.Advance(2 * time.Hour)
	session, err = auth.CurrentSession(ctx)
	require.NoError(t, err)
	require.Nil(t, session)
	require.False(t, server.Exists(store.Keys().Session), "expired session is removed on read")
}

func TestAuthRefreshSession(t *testing.T) {
	store, _ := newTestStore(t)
	clock := newTestClock()
	auth := newTestAuth(store, clock)
	ctx := context.Background()

	refreshed, err := auth.RefreshSession(ctx)
	require.NoError(t, err)
	require.Nil(t, refreshed)

	mustRegister(t, auth, "Ana", "ana@x.com", models.UserTypeStudent)
	clock.Advance(20 * time.Hour)

	refreshed, err = auth.RefreshSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	require.Equal(t, clock.Now().Add(DefaultSessionTTL).UnixMilli(), refreshed.ExpiresAt)

	clock.Advance(10 * time.Hour)
	session, err := auth.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
}

func TestAuthLogoutIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newTestAuth(store, nil)
	ctx := context.Background()

	mustRegister(t, auth, "Ana", "ana@x.com", models.UserTypeStudent)
	require.NoError(t, auth.Logout(ctx))
	require.NoError(t, auth.Logout(ctx))

	session, err := auth.CurrentSession(ctx)
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestAuthAuthenticate(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newTestAuth(store, nil)
	ctx := context.Background()

	_, err := auth.Authenticate(ctx, "anything")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	result, err := auth.Register(ctx, dto.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "123456", Type: "aluno"})
	require.NoError(t, err)

	session, err := auth.Authenticate(ctx, result.Session.Token)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, session.User.ID)

	_, err = auth.Authenticate(ctx, "other-token")
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = auth.Authenticate(ctx, "")
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthUpdateProfile(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newTestAuth(store, nil)
	ctx := context.Background()

	mustRegister(t, auth, "Bob", "bob@x.com", models.UserTypeProfessor)
	ana := mustRegister(t, auth, "Ana", "ana@x.com", models.UserTypeStudent)

	updated, err := auth.UpdateProfile(ctx, ana, dto.UpdateProfileRequest{Name: stringPtr("Ana Maria")})
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", updated.Name)
	require.Equal(t, "ana@x.com", updated.Email)

	session, err := auth.CurrentSession(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ana", session.User.Name, "snapshot refreshes on next login")

	_, err = auth.UpdateProfile(ctx, ana, dto.UpdateProfileRequest{Email: stringPtr("BOB@x.com")})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = auth.UpdateProfile(ctx, ana, dto.UpdateProfileRequest{NewPassword: stringPtr("novasenha")})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs, "new password needs the current one")

	_, err = auth.UpdateProfile(ctx, ana, dto.UpdateProfileRequest{CurrentPassword: "errada", NewPassword: stringPtr("novasenha")})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.UpdateProfile(ctx, ana, dto.UpdateProfileRequest{CurrentPassword: "123456", NewPassword: stringPtr("novasenha")})
	require.NoError(t, err)

	_, err = auth.Login(ctx, dto.LoginRequest{Email: "ana@x.com", Password: "123456"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	relogged, err := auth.Login(ctx, dto.LoginRequest{Email: "ana@x.com", Password: "novasenha"})
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", relogged.Session.User.Name)

	_, err = auth.UpdateProfile(ctx, models.Principal{ID: "ghost", Role: models.UserTypeStudent}, dto.UpdateProfileRequest{Name: stringPtr("x")})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthStorageFailureSurfaces(t *testing.T) {
	store, server := newTestStore(t)
	auth := newTestAuth(store, nil)
	server.Close()

	_, err := auth.Register(context.Background(), dto.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "123456", Type: "aluno"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthRegisterKeepsUnreadableUsers(t *testing.T) {
	store, server := newTestStore(t)
	auth := newTestAuth(store, nil)

	const truncated = `[{"id":"u-old","name":"Old","email":"old@x.com","passwordHash":"h","type":"aluno","createdAt":"2026-03-01T10:00:00Z","updatedAt":"2026-03-01T10:00:00Z"},`
	require.NoError(t, server.Set(store.Keys().Users, truncated))

	_, err := auth.Register(context.Background(), dto.RegisterRequest{Name: "New", Email: "new@x.com", Password: "123456", Type: "aluno"})
	require.ErrorIs(t, err, storage.ErrSerialization)

	raw, err := server.Get(store.Keys().Users)
	require.NoError(t, err)
	require.Equal(t, truncated, raw)

	session, err := auth.CurrentSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, session)
}
