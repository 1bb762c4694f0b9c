package models

import (
	"errors"
	"fmt"
)

// ErrNotComputable marks a metric that has no real-valued result for otherwise valid
// inputs. It is scoped to a single metric and never aborts a batch.
var ErrNotComputable = errors.New("metric not computable for these inputs")

// ValidationError reports an input the caller has to fix before any result is usable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports a malformed threshold table. Tables are static data, so
// this is a programming error caught when the tables are registered.
type ConfigurationError struct {
	Table  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("threshold table %q: %s", e.Table, e.Reason)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConfiguration reports whether err wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
