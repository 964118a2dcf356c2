package config

import "fmt"

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidatePort checks 1..65535.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidateLogLevel accepts the level names understood by the logger package.
func ValidateLogLevel(field, level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: field, Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// ValidateUnitInterval checks 0 <= v <= 1.
func ValidateUnitInterval(field string, v float64) error {
	if v < 0 || v > 1 {
		return &ValidationError{Field: field, Message: "must be within [0, 1]"}
	}
	return nil
}

// ValidatePositive checks v >= 1.
func ValidatePositive(field string, v int) error {
	if v < 1 {
		return &ValidationError{Field: field, Message: "must be at least 1"}
	}
	return nil
}
