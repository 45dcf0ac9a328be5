package functions

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a dispatch failure with the HTTP status it maps to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

var (
	ErrInvalidRequest         = &Error{Status: http.StatusBadRequest, Message: "Invalid request format"}
	ErrInvalidSquareArgument  = &Error{Status: http.StatusBadRequest, Message: "Invalid argument for square"}
	ErrInvalidWeatherArgument = &Error{Status: http.StatusBadRequest, Message: "Invalid argument for get_weather"}
	ErrFunctionNotFound       = &Error{Status: http.StatusNotFound, Message: "Function not found"}
	ErrInternal               = &Error{Status: http.StatusInternalServerError, Message: "Internal server error"}
)

// FetchWeatherFailed is the error payload returned, with status 200, when the
// weather provider fails.
const FetchWeatherFailed = "Failed to fetch weather data"

func internal(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// StatusOf maps err to its HTTP status and response payload. Errors that are
// not an *Error are reported as internal failures.
func StatusOf(err error) (int, Result) {
	var e *Error
	if !errors.As(err, &e) {
		e = ErrInternal
	}
	return e.Status, Result{Error: e.Message}
}
