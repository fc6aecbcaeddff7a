package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Sentinel domain errors. Services return these (possibly wrapped); handlers
// and the top-level error handler map them to HTTP statuses.
var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenInvalid is returned when a bearer token is missing, malformed or expired.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrForbidden is returned when the caller's role does not permit the operation.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrInvalidRole is returned when a registration names an unknown role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken is returned when the username is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrDuplicateUser is returned when a create races another registration
	// and the store's unique index rejects it.
	ErrDuplicateUser = errors.New("email or username already in use")
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreUnavailable is returned when the credential store cannot be reached.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Unavailable wraps a low-level store failure so it maps to 503 while keeping
// the cause in the message chain for logs.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// ErrorResponse is the JSON body for every error status.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MapErrorToHTTP maps domain errors to an HTTP status and client-safe message.
// Unclassified errors become a generic 500 so internals never leak.
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrForbidden.Error()
	case errors.Is(err, ErrInvalidRole):
		return http.StatusBadRequest, ErrInvalidRole.Error()
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrDuplicateUser):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, ErrUserNotFound.Error()
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrStoreUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HTTPErrorHandler is the top-level echo error handler. It renders every
// error as {"message": ...} with the mapped status.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var status int
	var message string
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case ErrorResponse:
			message = m.Message
		default:
			message = http.StatusText(status)
		}
	} else {
		status, message = MapErrorToHTTP(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Message: message})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
