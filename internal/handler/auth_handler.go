package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventease/internal/auth"
	"eventease/internal/config"
	"eventease/internal/errors"
	"eventease/internal/logging"
	"eventease/internal/model"
	"eventease/internal/service"
)

// AuthHandler handles sign-up, sign-in and the session cookie.
type AuthHandler struct {
	sessions
	authService service.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, resolver auth.SessionResolver, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		sessions:    sessions{resolver: resolver},
		authService: authService,
		cfg:         cfg,
	}
}

// SignUpRequest represents a sign-up request. Role defaults to EVENT_OWNER.
type SignUpRequest struct {
	Name     string     `json:"name" validate:"max=255"`
	Email    string     `json:"email" validate:"omitempty,email,max=255"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// SignInRequest represents a sign-in request.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionRequest exchanges an id token for a session cookie.
type SessionRequest struct {
	IDToken string `json:"idToken"`
}

// TokenResponse carries an identity provider id token.
type TokenResponse struct {
	IDToken string `json:"idToken"`
}

// UserResponse wraps the caller's user record.
type UserResponse struct {
	User model.UserSummary `json:"user"`
}

// SignUp godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Account data"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	idToken, err := h.authService.SignUp(c.Request().Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, TokenResponse{IDToken: idToken})
}

// SignIn godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	idToken, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, TokenResponse{IDToken: idToken})
}

// Session godoc
// @Summary Exchange an id token for a session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Id token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/session [post]
func (h *AuthHandler) Session(c echo.Context) error {
	var req SessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.IDToken == "" {
		return badRequest("missing idToken", "MISSING_FIELDS")
	}

	sessionToken, err := h.authService.CreateSession(c.Request().Context(), req.IDToken)
	if err != nil {
		logging.Ctx(c.Request().Context()).Debug().Err(err).Msg("session exchange rejected")
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: errors.ErrUnauthenticated.Error(),
			Code:  "UNAUTHORIZED",
		})
	}

	c.SetCookie(h.sessionCookie(sessionToken, int(h.cfg.SessionTTL.Seconds())))
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

// SignOut godoc
// @Summary Sign out and clear the session cookie
// @Tags auth
// @Success 303
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.authService.SignOut(ctx, auth.TokenFromRequest(c.Request())); err != nil {
		// The cookie is cleared either way.
		logging.Ctx(ctx).Warn().Err(err).Msg("session revocation failed")
	}

	c.SetCookie(h.sessionCookie("", -1))
	return c.Redirect(http.StatusSeeOther, h.cfg.BaseURL)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security SessionCookie
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	req := c.Request()
	session, res := h.resolver.Lookup(req.Context(), auth.TokenFromRequest(req))
	switch res {
	case auth.LookupOK:
		return c.JSON(http.StatusOK, UserResponse{User: session.User})
	case auth.LookupUserMissing:
		return fail(c, errors.ErrUserNotFound)
	default:
		return fail(c, errors.ErrUnauthenticated)
	}
}

// GetUser godoc
// @Summary Get a user
// @Tags auth
// @Produce json
// @Security SessionCookie
// @Param id path string true "User ID"
// @Success 200 {object} model.UserSummary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/user/{id} [get]
func (h *AuthHandler) GetUser(c echo.Context) error {
	user, err := h.authService.GetUser(c.Request().Context(), h.caller(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user.Summary())
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}
