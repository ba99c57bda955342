package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/MissDaze/Sassclub/models"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindProvider      Kind = "provider"
	KindVerification  Kind = "verification"
	KindValidation    Kind = "validation"
	KindInternal      Kind = "internal"
)

// Error represents an application error
type Error struct {
	Code    int
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, kind Kind, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Configuration reports a missing credential or secret.
func Configuration(message string) *Error {
	return New(http.StatusInternalServerError, KindConfiguration, message, nil)
}

// Provider wraps a failure returned by the payment provider. message is shown
// to the client as-is.
func Provider(message string, err error) *Error {
	return New(http.StatusInternalServerError, KindProvider, message, err)
}

// Verification reports a webhook whose signature could not be verified.
func Verification(err error) *Error {
	return New(http.StatusBadRequest, KindVerification, "webhook signature verification failed", err)
}

// Validation reports a request that failed input checks.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}

// From converts any error into an application error. Unknown errors become a
// generic 500 so internal details never reach the client.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return New(http.StatusInternalServerError, KindInternal, "Internal server error", err)
}

// ErrorMiddleware renders the last error attached to the gin context as
// {"error": message} when the handler has not written a response itself.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := From(c.Errors.Last().Err)
		c.JSON(appErr.Code, models.ErrorResponse{Error: appErr.Message})
	}
}
