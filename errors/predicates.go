package errors

import (
	"errors"
	"strings"

	pkhttp "github.com/randalmurphal/pipekit/http"
)

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotAuthenticated) || pkhttp.IsUnauthorized(err) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unauthenticated") ||
		strings.Contains(errStr, "unauthorized")
}

// IsConnectionError checks if an error is connection-related.
// This includes TLS errors, timeouts, and network connectivity issues.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConnectionFailed) {
		return true
	}

	// An HTTP status means the connection worked.
	if pkhttp.StatusCode(err) != 0 {
		return false
	}

	return connectionKind(strings.ToLower(err.Error())) != connNone
}

// IsConfigError checks if an error comes from missing or invalid settings.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingConfig) || errors.Is(err, ErrInvalidConfig)
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrPermissionDenied) || pkhttp.IsForbidden(err) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "permission denied") ||
		strings.Contains(errStr, "forbidden")
}

// ExitCode maps an error returned by a command to the process exit status.
// Scripts driven by CI only distinguish success from failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// IsSilent reports whether the error has already been reported to the user
// and needs no further printing.
func IsSilent(err error) bool {
	return errors.Is(err, ErrChecksFailed)
}

type connKind int

const (
	connNone connKind = iota
	connRefused
	connTLS
	connTimeout
)

func connectionKind(errStr string) connKind {
	switch {
	case strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "no such host"),
		strings.Contains(errStr, "network is unreachable"),
		strings.Contains(errStr, "dial tcp"):
		return connRefused
	case strings.Contains(errStr, "certificate"),
		strings.Contains(errStr, "tls"),
		strings.Contains(errStr, "x509"):
		return connTLS
	case strings.Contains(errStr, "timeout"),
		strings.Contains(errStr, "deadline exceeded"):
		return connTimeout
	default:
		return connNone
	}
}
