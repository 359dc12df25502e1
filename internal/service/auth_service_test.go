package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eventease/internal/config"
	"eventease/internal/errors"
	"eventease/internal/model"
)

func newAuthService(f *fixture, idp *MockIdentityProvider) AuthService {
	return NewAuthService(idp, f.store.Users(), f.enforcer, &config.Config{SessionTTL: 120 * time.Hour})
}

func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name     string
		role     model.Role
		wantRole model.Role
		wantErr  error
	}{
		{"defaults to event owner", "", model.RoleEventOwner, nil},
		{"staff", model.RoleStaff, model.RoleStaff, nil},
		{"admin not self-service", model.RoleAdmin, "", errors.ErrInvalidRole},
		{"unknown role", model.Role("GUEST"), "", errors.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			idp := new(MockIdentityProvider)
			idp.On("CreateUser", mock.Anything, "new@example.com", "secret1", "New User").Return("subj-1", "id-token", nil)
			svc := newAuthService(f, idp)

			token, err := svc.SignUp(context.Background(), "New User", " New@Example.com ", "secret1", tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				idp.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "id-token", token)

			user, err := f.store.Users().FindByID(context.Background(), "subj-1")
			require.NoError(t, err)
			assert.Equal(t, "new@example.com", user.Email)
			assert.Equal(t, tt.wantRole, user.Role)
		})
	}
}

func TestAuthService_SignUp_MissingFields(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, new(MockIdentityProvider))

	_, err := svc.SignUp(context.Background(), "", "a@example.com", "secret1", "")
	assert.ErrorIs(t, err, errors.ErrMissingFields)
	_, err = svc.SignUp(context.Background(), "A", "", "secret1", "")
	assert.ErrorIs(t, err, errors.ErrMissingFields)
	_, err = svc.SignUp(context.Background(), "A", "a@example.com", "", "")
	assert.ErrorIs(t, err, errors.ErrMissingFields)
}

func TestAuthService_SignUp_CompensatesWhenMirrorFails(t *testing.T) {
	f := newFixture(t)
	f.user(t, "existing", model.RoleEventOwner)

	idp := new(MockIdentityProvider)
	idp.On("CreateUser", mock.Anything, "existing@example.com", "secret1", "Dup").Return("subj-2", "id-token", nil)
	idp.On("DeleteUser", mock.Anything, "subj-2").Return(nil)
	svc := newAuthService(f, idp)

	_, err := svc.SignUp(context.Background(), "Dup", "existing@example.com", "secret1", "")
	assert.Error(t, err)
	idp.AssertCalled(t, "DeleteUser", mock.Anything, "subj-2")
	assert.EqualValues(t, 1, f.count(t, &model.User{}))
}

func TestAuthService_SignUp_PropagatesProviderErrors(t *testing.T) {
	f := newFixture(t)
	idp := new(MockIdentityProvider)
	idp.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", "", errors.ErrEmailTaken)
	svc := newAuthService(f, idp)

	_, err := svc.SignUp(context.Background(), "A", "a@example.com", "secret1", "")
	assert.ErrorIs(t, err, errors.ErrEmailTaken)
	assert.EqualValues(t, 0, f.count(t, &model.User{}))
}

func TestAuthService_CreateSession(t *testing.T) {
	f := newFixture(t)
	idp := new(MockIdentityProvider)
	idp.On("CreateSessionToken", mock.Anything, "id-token", 120*time.Hour).Return("session-token", nil)
	svc := newAuthService(f, idp)

	_, err := svc.CreateSession(context.Background(), "")
	assert.ErrorIs(t, err, errors.ErrMissingFields)

	token, err := svc.CreateSession(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
}

func TestAuthService_SignOut(t *testing.T) {
	f := newFixture(t)
	idp := new(MockIdentityProvider)
	idp.On("RevokeSessionToken", mock.Anything, "session-token").Return(nil)
	svc := newAuthService(f, idp)

	assert.NoError(t, svc.SignOut(context.Background(), ""))
	assert.NoError(t, svc.SignOut(context.Background(), "session-token"))
	idp.AssertNumberOfCalls(t, "RevokeSessionToken", 1)
}

func TestAuthService_GetUser(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", model.RoleEventOwner)
	other := f.user(t, "other", model.RoleEventOwner)
	admin := f.user(t, "admin", model.RoleAdmin)
	svc := newAuthService(f, new(MockIdentityProvider))
	ctx := context.Background()

	u, err := svc.GetUser(ctx, owner, "owner")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", u.Email)

	_, err = svc.GetUser(ctx, other, "owner")
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = svc.GetUser(ctx, admin, "owner")
	assert.NoError(t, err)

	_, err = svc.GetUser(ctx, admin, "missing")
	assert.ErrorIs(t, err, errors.ErrUserNotFound)

	_, err = svc.GetUser(ctx, nil, "owner")
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}
