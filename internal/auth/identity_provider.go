package auth

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"eventease/internal/errors"
	"eventease/internal/model"
	"eventease/internal/repository"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

// IdentityProvider verifies credentials and issues and verifies tokens.
// Callers treat it as an external service: the rest of the system only sees
// subject ids and opaque tokens.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (subject, idToken string, err error)
	SignIn(ctx context.Context, email, password string) (idToken string, err error)
	CreateSessionToken(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	VerifySessionToken(ctx context.Context, sessionToken string) (subject string, err error)
	RevokeSessionToken(ctx context.Context, sessionToken string) error
	DeleteUser(ctx context.Context, subject string) error
}

type localIdentityProvider struct {
	credentials repository.CredentialRepository
	tokens      *JWTService
	revocations TokenStoreInterface
	idTokenTTL  time.Duration
}

// NewLocalIdentityProvider builds an IdentityProvider backed by the credentials
// table, bcrypt hashes and HS256 tokens.
func NewLocalIdentityProvider(
	credentials repository.CredentialRepository,
	tokens *JWTService,
	revocations TokenStoreInterface,
	idTokenTTL time.Duration,
) IdentityProvider {
	return &localIdentityProvider{
		credentials: credentials,
		tokens:      tokens,
		revocations: revocations,
		idTokenTTL:  idTokenTTL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a credential and returns its subject and a fresh id token.
func (p *localIdentityProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", "", errors.ErrMissingFields
	}
	if len(password) < minPasswordLength {
		return "", "", errors.ErrWeakPassword
	}

	existing, err := p.credentials.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", "", errors.ErrEmailTaken
	}
	if err != nil && !goerrors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", fmt.Errorf("check credential existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}

	cred := &model.Credential{
		Subject:      uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := p.credentials.Create(ctx, cred); err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return "", "", errors.ErrEmailTaken
		}
		return "", "", fmt.Errorf("create credential: %w", err)
	}

	idToken, _, err := p.tokens.Issue(cred.Subject, cred.Email, KindIDToken, p.idTokenTTL)
	if err != nil {
		return "", "", fmt.Errorf("issue id token: %w", err)
	}
	return cred.Subject, idToken, nil
}

// SignIn checks the password and returns an id token.
func (p *localIdentityProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	cred, err := p.credentials.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find credential: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", errors.ErrInvalidCredentials
	}

	idToken, _, err := p.tokens.Issue(cred.Subject, cred.Email, KindIDToken, p.idTokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue id token: %w", err)
	}
	return idToken, nil
}

// CreateSessionToken exchanges a valid id token for a session token.
func (p *localIdentityProvider) CreateSessionToken(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	claims, err := p.tokens.Validate(idToken, KindIDToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
	token, _, err := p.tokens.Issue(claims.Subject, claims.Email, KindSessionToken, ttl)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	return token, nil
}

// VerifySessionToken returns the subject of a valid, unrevoked session token.
func (p *localIdentityProvider) VerifySessionToken(ctx context.Context, sessionToken string) (string, error) {
	claims, err := p.tokens.Validate(sessionToken, KindSessionToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
	revoked, err := p.revocations.IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return "", fmt.Errorf("%w: session revoked", errors.ErrUnauthenticated)
	}
	return claims.Subject, nil
}

// RevokeSessionToken revokes a session token until its natural expiry.
func (p *localIdentityProvider) RevokeSessionToken(ctx context.Context, sessionToken string) error {
	claims, err := p.tokens.Validate(sessionToken, KindSessionToken)
	if err != nil {
		// Already unusable.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return p.revocations.RevokeSession(ctx, claims.ID, ttl)
}

// DeleteUser removes the credential so the account can no longer sign in.
func (p *localIdentityProvider) DeleteUser(ctx context.Context, subject string) error {
	return p.credentials.Delete(ctx, subject)
}
