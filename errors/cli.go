package errors

import (
	"errors"
	"fmt"
	"strings"

	pkhttp "github.com/randalmurphal/pipekit/http"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
type ErrorMessenger interface {
	// AuthErrorMessage returns the message and suggestion when service
	// rejected the credentials.
	AuthErrorMessage(service string) (message, suggestion string)

	// PermissionDeniedMessage returns the message and suggestion when the
	// token is valid but lacks access.
	PermissionDeniedMessage(service string) (message, suggestion string)

	// ConnectionErrorMessage returns the message and suggestion for connection errors.
	ConnectionErrorMessage(serverURL string) (message, suggestion string)

	// TLSErrorMessage returns the message and suggestion for TLS/certificate errors.
	TLSErrorMessage(serverURL string) (message, suggestion string)

	// TimeoutErrorMessage returns the message and suggestion for timeout errors.
	TimeoutErrorMessage(serverURL string) (message, suggestion string)

	// NotInGitRepoMessage returns the message and suggestion for git repo errors.
	NotInGitRepoMessage() (message, suggestion string)

	// MissingConfigMessage returns the message and suggestion when a
	// required setting is empty. envVar is the variable CI usually sets.
	MissingConfigMessage(key, envVar string) (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) AuthErrorMessage(service string) (string, string) {
	switch service {
	case "github":
		return "GitHub rejected the token.", "Check that GITHUB_TOKEN is set and has not expired."
	default:
		return "GitLab rejected the token.", "Check that GITLAB_TOKEN is set and has not expired."
	}
}

func (m DefaultMessenger) PermissionDeniedMessage(service string) (string, string) {
	return fmt.Sprintf("The %s token does not have access to this resource.", serviceName(service)),
		"Use a token with the read_api scope on the upstream project."
}

func (m DefaultMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to server at %s", serverURL),
		"Check that:\n  - The URL is correct\n  - Your network connection is working"
}

func (m DefaultMessenger) TLSErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("TLS/certificate error connecting to %s", serverURL),
		"Check that the server certificate is valid, or set insecure_skip_verify for self-signed instances."
}

func (m DefaultMessenger) TimeoutErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Connection to %s timed out", serverURL),
		"The server may be overloaded or the artifact very large.\nRaise the timeout setting or try again."
}

func (m DefaultMessenger) NotInGitRepoMessage() (string, string) {
	return "This command must be run from within a git repository.",
		"Run it from inside a git checkout."
}

func (m DefaultMessenger) MissingConfigMessage(key, envVar string) (string, string) {
	if envVar == "" {
		return fmt.Sprintf("%s not provided, aborting", key),
			fmt.Sprintf("Set %s in .pipekit.yaml or pass it as a flag.", key)
	}
	return fmt.Sprintf("%s not provided, aborting", envVar),
		fmt.Sprintf("Export %s or set %s in .pipekit.yaml.", envVar, key)
}

func serviceName(service string) string {
	switch service {
	case "github":
		return "GitHub"
	case "gitlab", "":
		return "GitLab"
	default:
		return service
	}
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// WrapAuthError wraps authentication and authorization failures with
// helpful guidance. Other errors are returned unchanged.
func WrapAuthError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	if wrapped := wrapAuth(err, getMessenger(opts)); wrapped != nil {
		return wrapped
	}
	return err
}

func wrapAuth(err error, messenger ErrorMessenger) *CLIError {
	var service string
	var apiErr *pkhttp.APIError
	if errors.As(err, &apiErr) {
		service = apiErr.Service
	}

	switch {
	case pkhttp.IsUnauthorized(err):
		msg, suggestion := messenger.AuthErrorMessage(service)
		return &CLIError{
			Err:        errors.Join(ErrNotAuthenticated, err),
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	case pkhttp.IsForbidden(err):
		msg, suggestion := messenger.PermissionDeniedMessage(service)
		return &CLIError{
			Err:        errors.Join(ErrPermissionDenied, err),
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}
	return nil
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
// Errors that carry an HTTP status are returned unchanged.
func WrapConnectionError(err error, serverURL string, opts ...Option) error {
	if err == nil || pkhttp.StatusCode(err) != 0 {
		return err
	}

	messenger := getMessenger(opts)

	var msg, suggestion, details string
	switch connectionKind(strings.ToLower(err.Error())) {
	case connRefused:
		msg, suggestion = messenger.ConnectionErrorMessage(serverURL)
	case connTLS:
		msg, suggestion = messenger.TLSErrorMessage(serverURL)
		details = err.Error()
	case connTimeout:
		msg, suggestion = messenger.TimeoutErrorMessage(serverURL)
	default:
		return err
	}

	return &CLIError{
		Err:        errors.Join(ErrConnectionFailed, err),
		Message:    msg,
		Details:    details,
		Suggestion: suggestion,
	}
}

// Wrap applies WrapAuthError and WrapConnectionError in turn.
func Wrap(err error, serverURL string, opts ...Option) error {
	if err == nil {
		return nil
	}
	if wrapped := wrapAuth(err, getMessenger(opts)); wrapped != nil {
		return wrapped
	}
	return WrapConnectionError(err, serverURL, opts...)
}

// NewMissingConfigError creates an error for a required setting that is empty.
func NewMissingConfigError(key, envVar string, opts ...Option) error {
	messenger := getMessenger(opts)
	msg, suggestion := messenger.MissingConfigMessage(key, envVar)
	return &CLIError{
		Err:        ErrMissingConfig,
		Message:    msg,
		Suggestion: suggestion,
	}
}

// NewInvalidConfigError creates an error for a setting that could not be used.
func NewInvalidConfigError(key, value, reason string) error {
	return &CLIError{
		Err:     ErrInvalidConfig,
		Message: fmt.Sprintf("invalid value %q for %s: %s", value, key, reason),
	}
}

// NewNotInGitRepoError creates an error for commands that require a git repository.
func NewNotInGitRepoError(opts ...Option) error {
	messenger := getMessenger(opts)
	msg, suggestion := messenger.NotInGitRepoMessage()
	return &CLIError{
		Err:        ErrNotInGitRepo,
		Message:    msg,
		Suggestion: suggestion,
	}
}
