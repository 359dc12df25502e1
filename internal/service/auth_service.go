package service

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/config"
	"eventease/internal/errors"
	"eventease/internal/logging"
	"eventease/internal/model"
	"eventease/internal/repository"
)

// AuthService handles sign-up, sign-in and session lifecycle.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string, role model.Role) (idToken string, err error)
	SignIn(ctx context.Context, email, password string) (idToken string, err error)
	CreateSession(ctx context.Context, idToken string) (sessionToken string, err error)
	SignOut(ctx context.Context, sessionToken string) error
	GetUser(ctx context.Context, caller *auth.Session, id string) (*model.User, error)
}

type authService struct {
	idp        auth.IdentityProvider
	users      repository.UserRepository
	authorizer authz.Authorizer
	cfg        *config.Config
}

// NewAuthService creates a new authentication service.
func NewAuthService(idp auth.IdentityProvider, users repository.UserRepository, authorizer authz.Authorizer, cfg *config.Config) AuthService {
	return &authService{
		idp:        idp,
		users:      users,
		authorizer: authorizer,
		cfg:        cfg,
	}
}

// SignUp registers the account with the identity provider and mirrors it
// into the users table. If the mirror row cannot be written the credential
// is removed again so the two never drift apart.
func (s *authService) SignUp(ctx context.Context, name, email, password string, role model.Role) (string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return "", errors.ErrMissingFields
	}
	if role == "" {
		role = model.RoleEventOwner
	}
	if !role.SelfServiceRole() {
		return "", errors.ErrInvalidRole
	}

	subject, idToken, err := s.idp.CreateUser(ctx, email, password, name)
	if err != nil {
		return "", err
	}

	user := &model.User{
		ID:    subject,
		Email: email,
		Name:  name,
		Role:  role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if derr := s.idp.DeleteUser(ctx, subject); derr != nil {
			logging.Ctx(ctx).Error().Err(derr).Str("subject", subject).Msg("failed to roll back credential after sign-up failure")
		}
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return "", errors.ErrEmailTaken
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", subject).Str("role", string(role)).Msg("user signed up")
	return idToken, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", errors.ErrMissingFields
	}
	return s.idp.SignIn(ctx, email, password)
}

// CreateSession exchanges an id token for a session token valid for SESSION_TTL.
func (s *authService) CreateSession(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", errors.ErrMissingFields
	}
	return s.idp.CreateSessionToken(ctx, idToken, s.cfg.SessionTTL)
}

// SignOut revokes the session token. An empty token is a no-op.
func (s *authService) SignOut(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	return s.idp.RevokeSessionToken(ctx, sessionToken)
}

// GetUser returns a user to that user or to a role allowed to read users.
func (s *authService) GetUser(ctx context.Context, caller *auth.Session, id string) (*model.User, error) {
	if caller == nil {
		return nil, errors.ErrUnauthenticated
	}
	if caller.UserID() != id && !s.authorizer.Allowed(caller.Role(), authz.ObjectUsers, authz.ActionRead) {
		return nil, errors.ErrForbidden
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound, "find user")
	}
	return user, nil
}
