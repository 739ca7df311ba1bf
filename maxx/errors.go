package maxx

import (
	"fmt"
)

// ConfigurationError reports a bounded-setter violation: an administrative
// change that would take a parameter outside the range permitted by the
// rules. It carries enough structure for a caller to present the violated
// bound ("consumer protection" style) rather than a bare string.
type ConfigurationError struct {
	// Parameter is the rules field that was being changed.
	Parameter string
	// Value is a human-readable rendering of the rejected value.
	Value string
	// Bound describes the violated constraint.
	Bound string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s = %s violates bound %s", e.Parameter, e.Value, e.Bound)
}

// NewConfigurationError builds a ConfigurationError from formatted values.
func NewConfigurationError(parameter string, value interface{}, bound string) *ConfigurationError {
	return &ConfigurationError{
		Parameter: parameter,
		Value:     fmt.Sprint(value),
		Bound:     bound,
	}
}
