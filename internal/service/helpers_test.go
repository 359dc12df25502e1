package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/model"
	"eventease/internal/repository"
	"eventease/internal/testutil"
)

// MockIdentityProvider is a mock implementation of auth.IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, string, error) {
	args := m.Called(ctx, email, password, displayName)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) CreateSessionToken(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, idToken, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) VerifySessionToken(ctx context.Context, sessionToken string) (string, error) {
	args := m.Called(ctx, sessionToken)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) RevokeSessionToken(ctx context.Context, sessionToken string) error {
	args := m.Called(ctx, sessionToken)
	return args.Error(0)
}

func (m *MockIdentityProvider) DeleteUser(ctx context.Context, subject string) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

type fixture struct {
	db       *gorm.DB
	store    repository.Store
	enforcer *authz.Enforcer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)
	return &fixture{db: gdb, store: repository.NewStore(gdb), enforcer: enforcer}
}

// user inserts a user row and returns a session for it.
func (f *fixture) user(t *testing.T, id string, role model.Role) *auth.Session {
	t.Helper()
	u := &model.User{ID: id, Email: id + "@example.com", Name: "User " + id, Role: role}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return &auth.Session{User: u.Summary()}
}

func (f *fixture) event(t *testing.T, ownerID string, capacity *int) *model.Event {
	t.Helper()
	e := &model.Event{
		Title:       "Go Meetup",
		Description: "Talks and pizza",
		Date:        time.Now().Add(7 * 24 * time.Hour),
		Location:    "Berlin",
		Capacity:    capacity,
		OwnerID:     ownerID,
		Status:      model.EventStatusPendingReview,
	}
	require.NoError(t, f.store.Events().Create(context.Background(), e))
	return e
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func intPtr(n int) *int { return &n }
