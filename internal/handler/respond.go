package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"eventease/internal/auth"
	"eventease/internal/errors"
	"eventease/internal/logging"
)

// sessions gives handlers their own in-process view of the caller. Handlers
// never rely on the route guard having run.
type sessions struct {
	resolver auth.SessionResolver
}

// caller returns the resolved session or nil. Services reject a nil caller
// with errors.ErrUnauthenticated where a session is required.
func (s sessions) caller(c echo.Context) *auth.Session {
	req := c.Request()
	session, ok := s.resolver.Resolve(req.Context(), auth.TokenFromRequest(req))
	if !ok {
		return nil
	}
	return session
}

// fail converts a service error into the JSON error body. Server errors are
// logged with their detail and answered with a generic message.
func fail(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logging.Ctx(c.Request().Context()).Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// bind decodes and validates the request body.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body", "INVALID_BODY")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error(), "VALIDATION_FAILED")
	}
	return nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, badRequest("invalid "+name, "INVALID_UUID")
	}
	return id, nil
}
