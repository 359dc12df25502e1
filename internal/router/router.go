package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/config"
	"eventease/internal/errors"
	"eventease/internal/handler"
	"eventease/internal/middleware"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth     *handler.AuthHandler
	Events   *handler.EventHandler
	RSVPs    *handler.RSVPHandler
	Comments *handler.CommentHandler
	Staff    *handler.StaffHandler
	Admin    *handler.AdminHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	resolver auth.SessionResolver,
	authorizer authz.Authorizer,
	h Handlers,
) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestContext())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Page requests only; /api resolves sessions in each handler.
	e.Use(middleware.RouteGuard(resolver, authorizer))

	if cfg.WebDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  cfg.WebDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, "/api")
			},
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	api := e.Group("/api")

	// Auth routes
	limited := api.Group("/auth", authRateLimiter(cfg.AuthRateLimit))
	limited.POST("/signup", h.Auth.SignUp)
	limited.POST("/signin", h.Auth.SignIn)

	api.POST("/auth/session", h.Auth.Session)
	api.POST("/auth/signout", h.Auth.SignOut)
	api.GET("/auth/me", h.Auth.Me)
	api.GET("/auth/user/:id", h.Auth.GetUser)

	// Event routes
	api.GET("/events", h.Events.List)
	api.POST("/events", h.Events.Create)
	api.GET("/events/:id", h.Events.Get)
	api.PUT("/events/:id", h.Events.Update)
	api.DELETE("/events/:id", h.Events.Delete)

	// RSVP routes
	api.POST("/events/:id/rsvp", h.RSVPs.Create)
	api.PATCH("/events/:id/rsvp/:rsvpId", h.RSVPs.UpdateStatus)

	// Comment and report routes
	api.GET("/events/:id/comments", h.Comments.List)
	api.POST("/events/:id/comments", h.Comments.Create)
	api.POST("/reports", h.Comments.Report)

	// Staff routes
	staff := api.Group("/staff")
	staff.GET("/events/pending", h.Staff.PendingEvents)
	staff.PUT("/events/:eventId/moderate", h.Staff.ModerateEvent)
	staff.GET("/comments/flagged", h.Staff.FlaggedComments)
	staff.PUT("/comments/:commentId/hide", h.Staff.HideComment)
	staff.GET("/reports/pending", h.Staff.PendingReports)
	staff.PUT("/reports/:reportId", h.Staff.UpdateReport)

	// Admin routes
	admin := api.Group("/admin")
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/users", h.Admin.ListUsers)
	admin.PUT("/users/:id", h.Admin.UpdateRole)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
}

// authRateLimiter limits sign-up and sign-in per client IP.
// A non-positive limit disables it.
func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many requests",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
