package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenKind separates short-lived id tokens from session tokens. A token of
// one kind is never accepted where the other is expected.
type TokenKind string

const (
	KindIDToken      TokenKind = "id"
	KindSessionToken TokenKind = "session"
)

const issuer = "eventease"

var errWrongKind = errors.New("unexpected token kind")

// Claims represents JWT claims. The subject is the user id.
type Claims struct {
	Email string    `json:"email"`
	Kind  TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs a token of kind for subject, valid for ttl. Every token gets a
// unique ID so session tokens can be revoked individually.
func (s *JWTService) Issue(subject, email string, kind TokenKind, ttl time.Duration) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Email: email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Validate checks signature, expiry and kind and returns the claims.
func (s *JWTService) Validate(tokenString string, kind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Kind != kind {
		return nil, errWrongKind
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("token missing subject or id")
	}
	return claims, nil
}
