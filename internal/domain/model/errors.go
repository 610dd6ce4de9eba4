package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Typed errors below unwrap to one of these.
var (
	ErrDataIntegrity = errors.New("data integrity")
	ErrMissingInput  = errors.New("missing input")
	ErrConfiguration = errors.New("invalid configuration")
)

// DataIntegrityError describes a malformed row that was skipped.
type DataIntegrityError struct {
	Source string `json:"source"`
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s: source %q row %d: %s: %s", ErrDataIntegrity, e.Source, e.Row, e.Field, e.Reason)
}

func (e *DataIntegrityError) Unwrap() error { return ErrDataIntegrity }

// MissingInputError names the fields a metric needed but did not get.
type MissingInputError struct {
	Metric string   `json:"metric"`
	Fields []string `json:"fields"`
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: %s needs %s", ErrMissingInput, e.Metric, strings.Join(e.Fields, ", "))
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// ConfigurationError is fatal and reported before any computation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
