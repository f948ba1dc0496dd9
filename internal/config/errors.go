package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFormat is returned for config files with an unsupported
	// extension.
	ErrUnknownFormat = errors.New("unknown config file format")

	// ErrInvalidPath indicates a setting path that names no setting.
	ErrInvalidPath = errors.New("invalid setting path")

	// ErrValidationFailed wraps every validation failure.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError is a failure to decode a config file or value.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError lists every invalid setting.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
