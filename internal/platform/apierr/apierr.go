package apierr

import (
	"fmt"
	"net/http"

	"github.com/yungbote/cbl-backend/internal/domain/errs"
)

// Error pins an HTTP status on a failure whose status does not follow from
// its domain code, such as a rejected bearer token.
type Error struct {
	Status int
	Code   errs.Code
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return string(e.Code)
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code errs.Code, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, errs.CodeUnauthorized, err)
}

func Forbidden(err error) *Error {
	return New(http.StatusForbidden, errs.CodeForbidden, err)
}
