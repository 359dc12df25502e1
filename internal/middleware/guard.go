package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/logging"
	"eventease/internal/metrics"
)

// SessionContextKey is where the guard stores the resolved *auth.Session.
const SessionContextKey = "session"

const (
	signInPath = "/auth/signin"
	homePath   = "/"
)

// Paths the guard never looks at: the API (handlers resolve sessions
// themselves), docs, probes and static assets.
var excludedPrefixes = []string{
	"/api",
	"/swagger",
	"/metrics",
	"/healthz",
	"/_next/static",
	"/_next/image",
	"/static",
	"/favicon.ico",
}

var publicPaths = map[string]bool{
	"/":            true,
	"/auth/signin": true,
	"/auth/signup": true,
}


func excluded(path string) bool {
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// protectedEventPath reports the /events/ sub-pages that need a session even
// though event pages are public: the create page and any edit page.
func protectedEventPath(path string) bool {
	if !strings.HasPrefix(path, "/events/") {
		return false
	}
	path = strings.TrimSuffix(path, "/")
	return path == "/events/create" ||
		strings.HasSuffix(path, "/edit") ||
		strings.Contains(path, "/events/edit")
}

// RouteGuard redirects page requests that lack a session to sign-in and
// requests whose role may not open the page to home. Every request is
// verified again; nothing is cached between requests.
func RouteGuard(resolver auth.SessionResolver, authorizer authz.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if excluded(path) {
				return next(c)
			}
			if publicPaths[path] {
				metrics.GuardDecisions.WithLabelValues("public").Inc()
				return next(c)
			}
			if strings.HasPrefix(path, "/events/") && !protectedEventPath(path) {
				metrics.GuardDecisions.WithLabelValues("public").Inc()
				return next(c)
			}

			session, ok := resolver.Resolve(req.Context(), auth.TokenFromRequest(req))
			if !ok {
				metrics.GuardDecisions.WithLabelValues("signin_redirect").Inc()
				return c.Redirect(http.StatusFound, signInPath+"?callbackUrl="+url.QueryEscape(path))
			}

			if !authorizer.CanViewPath(session.Role(), path) {
				metrics.GuardDecisions.WithLabelValues("home_redirect").Inc()
				logging.Ctx(req.Context()).Debug().
					Str("path", path).
					Str("role", string(session.Role())).
					Msg("role may not view page")
				return c.Redirect(http.StatusFound, homePath)
			}

			metrics.GuardDecisions.WithLabelValues("allowed").Inc()
			c.Set(SessionContextKey, session)
			return next(c)
		}
	}
}
