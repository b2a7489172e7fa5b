package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code standardizes failure semantics across services and handlers.
type Code string

const (
	CodeValidation         Code = "validation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodePreconditionFailed Code = "precondition_failed"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInternal           Code = "internal"
)

// Error is the canonical coded error. Details carries machine readable
// context such as the list of missing requirements.
type Error struct {
	Code    Code
	Op      string
	Message string
	Details []string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string) error {
	return &Error{Code: code, Op: strings.TrimSpace(op), Message: strings.TrimSpace(message)}
}

// WithDetails builds a coded error carrying details.
func WithDetails(code Code, op, message string, details []string) error {
	return &Error{Code: code, Op: strings.TrimSpace(op), Message: strings.TrimSpace(message), Details: details}
}

// Wrap annotates an existing error with a code. Already coded errors pass through.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}
	return &Error{Code: code, Op: strings.TrimSpace(op), Message: err.Error(), Cause: err}
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func CodeOf(err error) Code {
	var coded *Error
	if !errors.As(err, &coded) {
		return ""
	}
	return coded.Code
}

func DetailsOf(err error) []string {
	var coded *Error
	if !errors.As(err, &coded) {
		return nil
	}
	return coded.Details
}
