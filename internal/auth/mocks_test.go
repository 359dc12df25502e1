package auth

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"eventease/internal/model"
)

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockIdentityProvider is a mock implementation of IdentityProvider.
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

// MockUserLookup is a mock implementation of UserLookup.
type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
