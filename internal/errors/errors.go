package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no valid session is present.
	ErrUnauthenticated = errors.New("unauthorized")
	// ErrForbidden is returned when the caller's role or ownership does not allow the action.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with an email that already has an account.
	ErrEmailTaken = errors.New("email already in use")
	// ErrWeakPassword is returned when a password is shorter than six characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters")

	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEventNotFound is returned when an event is not found.
	ErrEventNotFound = errors.New("event not found")
	// ErrRSVPNotFound is returned when an RSVP is not found.
	ErrRSVPNotFound = errors.New("RSVP not found")
	// ErrCommentNotFound is returned when a comment is not found.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrReportNotFound is returned when a report is not found.
	ErrReportNotFound = errors.New("report not found")

	// ErrMissingFields is returned when a required field is empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidRole is returned for a role outside the allowed set.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidStatus is returned for a status outside the allowed set or an undefined transition.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidEvent is returned when event fields fail validation.
	ErrInvalidEvent = errors.New("invalid event")
	// ErrInvalidReportTarget is returned unless a report names exactly one of event or comment.
	ErrInvalidReportTarget = errors.New("report must reference exactly one of event or comment")

	// ErrEventFull is returned when confirmed RSVPs have reached the event's capacity.
	ErrEventFull = errors.New("event is at full capacity")
	// ErrDuplicateRSVP is returned when the attendee email already holds an RSVP for the event.
	ErrDuplicateRSVP = errors.New("you have already RSVP'd to this event")
	// ErrRSVPEventMismatch is returned when the RSVP belongs to another event.
	ErrRSVPEventMismatch = errors.New("RSVP does not belong to this event")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrEventNotFound, http.StatusNotFound, "EVENT_NOT_FOUND"},
	{ErrRSVPNotFound, http.StatusNotFound, "RSVP_NOT_FOUND"},
	{ErrCommentNotFound, http.StatusNotFound, "COMMENT_NOT_FOUND"},
	{ErrReportNotFound, http.StatusNotFound, "REPORT_NOT_FOUND"},
	{ErrMissingFields, http.StatusBadRequest, "MISSING_FIELDS"},
	{ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
	{ErrWeakPassword, http.StatusBadRequest, "WEAK_PASSWORD"},
	{ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrInvalidEvent, http.StatusBadRequest, "INVALID_EVENT"},
	{ErrInvalidReportTarget, http.StatusBadRequest, "INVALID_REPORT_TARGET"},
	{ErrEventFull, http.StatusBadRequest, "EVENT_FULL"},
	{ErrDuplicateRSVP, http.StatusBadRequest, "DUPLICATE_RSVP"},
	{ErrRSVPEventMismatch, http.StatusBadRequest, "RSVP_EVENT_MISMATCH"},
}

// MapErrorToHTTP maps domain errors, including wrapped ones, to HTTP errors.
// Anything unrecognised becomes a generic 500.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return NewHTTPError(m.status, m.target.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
