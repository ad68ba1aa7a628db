package api

import "fmt"

// Error represents an API error with a JSON-RPC error code
type Error struct {
	Code    int
	Message string
	Err     error
}

// NewError creates a new API error
func NewError(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("API error %d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}
