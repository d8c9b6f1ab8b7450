package errors

import "errors"

// Common CLI errors with actionable guidance.
var (
	// ErrMissingConfig indicates a required setting was not provided.
	ErrMissingConfig = errors.New("missing configuration")

	// ErrInvalidConfig indicates a setting has an unusable value.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotAuthenticated indicates the API rejected the token.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotInGitRepo indicates the command requires a git repository.
	ErrNotInGitRepo = errors.New("not in a git repository")

	// ErrConnectionFailed indicates the server is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrPermissionDenied indicates insufficient permissions.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrChecksFailed indicates a check ran to completion and found problems.
	// The findings have already been reported, so callers print nothing more.
	ErrChecksFailed = errors.New("checks failed")
)
