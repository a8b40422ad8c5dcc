// Package clierr classifies errors and formats them with actionable hints
// for the CLI and the wizard's notifications.
package clierr

import (
	"errors"
	"fmt"
	"strings"
)

// Error types used for CLI output.
const (
	TypeAuth       = "auth"       // Credentials rejected by the database
	TypeNotFound   = "not_found"  // Database, table or record missing
	TypeNetwork    = "network"    // Connection/network errors
	TypeValidation = "validation" // Input validation errors
	TypeInternal   = "internal"   // Internal/unexpected errors
)

// ErrValidation marks errors caused by invalid user input.
var ErrValidation = errors.New("invalid input")

// Validation wraps err so that IsValidation reports true for it.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// IsValidation checks if the error was produced by input validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAuth checks if the error is a rejected login.
func IsAuth(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password authentication failed") ||
		strings.Contains(msg, "authentication failed") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "permission denied")
}

// IsNotFound checks if the error indicates a missing database, table or record.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "not found")
}

// IsNetworkError checks if the error is a connection/network error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "dial tcp") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "context deadline exceeded")
}

// ClassifyError determines the type of error for appropriate handling.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return TypeValidation
	case IsAuth(err):
		return TypeAuth
	case IsNotFound(err):
		return TypeNotFound
	case IsNetworkError(err):
		return TypeNetwork
	default:
		return TypeInternal
	}
}

// IsPermanent reports whether retrying the operation cannot succeed.
func IsPermanent(err error) bool {
	switch ClassifyError(err) {
	case TypeAuth, TypeNotFound, TypeValidation:
		return true
	default:
		return false
	}
}

// Pretty formats an error with a user-friendly message and actionable hints.
func Pretty(err error) string {
	if err == nil {
		return ""
	}

	baseMsg := err.Error()

	switch ClassifyError(err) {
	case TypeValidation:
		return fmt.Sprintf("Invalid input: %s", strings.TrimPrefix(baseMsg, ErrValidation.Error()+": "))

	case TypeAuth:
		return fmt.Sprintf("Authentication failed: %s\n\nHint: Check the user and password of the data source.\n"+
			"  - Secrets are read from .env.<source>\n"+
			"  - tdg sources test <source> to retry", baseMsg)

	case TypeNotFound:
		return fmt.Sprintf("Not found: %s", baseMsg)

	case TypeNetwork:
		return fmt.Sprintf("Connection error: %s\n\nHint: Check that the database is reachable:\n"+
			"  - Verify host and port of the data source\n"+
			"  - Ensure the database server is running", baseMsg)

	default:
		return fmt.Sprintf("Error: %s", baseMsg)
	}
}

// WrapWithHint wraps an error with an additional hint message.
func WrapWithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w\n\nHint: %s", err, hint)
}
