// Package apierr lets a service pin the HTTP status and machine-readable
// code for an error it returns. Handlers unwrap it when rendering the
// {"error": {"message", "code"}} envelope instead of switching on sentinel
// errors; anything not carrying one falls back to an opaque 500.
package apierr

import "fmt"

// Error pairs an HTTP status and code with the underlying cause. The cause
// may be nil when the status and code say everything.
type Error struct {
	Status int
	Code   string
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
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}
