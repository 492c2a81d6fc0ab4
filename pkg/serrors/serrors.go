package serrors

import "fmt"

// Base is implemented by errors that carry a stable code and a locale key.
type Base interface {
	error
	Code() string
	Message() string
	LocaleKey() string
}

type BaseError struct {
	code      string
	message   string
	localeKey string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{code: code, message: message, localeKey: localeKey}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *BaseError) Code() string      { return e.code }
func (e *BaseError) Message() string   { return e.message }
func (e *BaseError) LocaleKey() string { return e.localeKey }
