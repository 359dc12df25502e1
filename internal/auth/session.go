package auth

import (
	"context"
	goerrors "errors"
	"net/http"

	"gorm.io/gorm"

	"eventease/internal/logging"
	"eventease/internal/metrics"
	"eventease/internal/model"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// Session is a resolved, verified caller.
type Session struct {
	User model.UserSummary
}

// Role is shorthand for s.User.Role.
func (s *Session) Role() model.Role { return s.User.Role }

// UserID is shorthand for s.User.ID.
func (s *Session) UserID() string { return s.User.ID }

// UserLookup is the part of the user repository the resolver needs.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// SessionResolver turns a session token into a Session. It is shared in-process
// by the route guard and every handler.
type SessionResolver interface {
	// Resolve returns false for any failure: bad or revoked token, unknown
	// user, unrecognized role or lookup error. Failures are never distinguished
	// to the caller.
	Resolve(ctx context.Context, token string) (*Session, bool)
	// Lookup behaves like Resolve but reports a verified token whose user
	// row is missing separately, for GET /api/auth/me.
	Lookup(ctx context.Context, token string) (*Session, LookupResult)
}

// LookupResult classifies a failed resolution for the one endpoint that needs it.
type LookupResult int

const (
	LookupOK LookupResult = iota
	LookupUnauthenticated
	LookupUserMissing
)

type sessionResolver struct {
	idp   IdentityProvider
	users UserLookup
}

// NewSessionResolver creates the session resolver.
func NewSessionResolver(idp IdentityProvider, users UserLookup) SessionResolver {
	return &sessionResolver{idp: idp, users: users}
}

func (r *sessionResolver) Resolve(ctx context.Context, token string) (*Session, bool) {
	s, res := r.Lookup(ctx, token)
	return s, res == LookupOK
}

func (r *sessionResolver) Lookup(ctx context.Context, token string) (*Session, LookupResult) {
	if token == "" {
		metrics.SessionResolutions.WithLabelValues("no_token").Inc()
		return nil, LookupUnauthenticated
	}

	subject, err := r.idp.VerifySessionToken(ctx, token)
	if err != nil {
		metrics.SessionResolutions.WithLabelValues("invalid_token").Inc()
		logging.Ctx(ctx).Debug().Err(err).Msg("session token rejected")
		return nil, LookupUnauthenticated
	}

	user, err := r.users.FindByID(ctx, subject)
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			metrics.SessionResolutions.WithLabelValues("unknown_user").Inc()
			return nil, LookupUserMissing
		}
		metrics.SessionResolutions.WithLabelValues("lookup_error").Inc()
		logging.Ctx(ctx).Error().Err(err).Str("subject", subject).Msg("session user lookup failed")
		return nil, LookupUnauthenticated
	}

	if !user.Role.Valid() {
		metrics.SessionResolutions.WithLabelValues("invalid_role").Inc()
		logging.Ctx(ctx).Warn().Str("subject", subject).Str("role", string(user.Role)).Msg("user has unrecognized role")
		return nil, LookupUnauthenticated
	}

	metrics.SessionResolutions.WithLabelValues("ok").Inc()
	return &Session{User: user.Summary()}, LookupOK
}

// TokenFromRequest returns the session cookie value or "".
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
