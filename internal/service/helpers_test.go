package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/kvstore"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*repository.Store, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	kv := kvstore.NewRedisStore(redis.NewClient(&redis.Options{Addr: server.Addr()}), "")
	t.Cleanup(func() { _ = kv.Close() })
	return repository.NewStore(kv, testLogger()), server
}

func newTestAuth(store *repository.Store, clock *testClock) *authService {
	svc := NewAuthService(store.Users, store.Session, newValidator(), AuthConfig{BcryptCost: bcrypt.MinCost}, testLogger()).(*authService)
	if clock != nil {
		svc.now = clock.Now
	}
	return svc
}

func mustRegister(t *testing.T, auth AuthService, name, email string, userType models.UserType) models.Principal {
	t.Helper()
	result, err := auth.Register(context.Background(), dto.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "123456",
		Type:     string(userType),
	})
	require.NoError(t, err)
	return result.Session.User.Principal()
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func stringPtr(v string) *string { return &v }
