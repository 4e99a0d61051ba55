package config

import "errors"

// Sentinel kinds carried by *Error, for use with errors.Is.
var (
	ErrMissing = errors.New("config: missing setting")
	ErrInvalid = errors.New("config: invalid setting")
)

// Error reports a setting that is missing or fails validation.
type Error struct {
	// Name is the config field or environment variable at fault.
	Name string
	// Value is the offending raw value, if one was supplied.
	Value string
	// Kind is ErrMissing or ErrInvalid.
	Kind error

	msg string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func missing(name, msg string) *Error {
	return &Error{Name: name, Kind: ErrMissing, msg: msg}
}

func invalid(name, value, msg string) *Error {
	return &Error{Name: name, Value: value, Kind: ErrInvalid, msg: msg}
}
