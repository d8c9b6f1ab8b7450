// Package errors provides CLI error patterns with user-friendly messaging.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// Sentinel errors for common scenarios:
//   - ErrMissingConfig: A required setting (token, pipeline ID) is empty
//   - ErrInvalidConfig: A setting could not be parsed
//   - ErrNotAuthenticated: The API rejected the token
//   - ErrNotInGitRepo: Command requires a git repository
//   - ErrConnectionFailed: Server is unreachable
//   - ErrPermissionDenied: Insufficient permissions
//   - ErrChecksFailed: Lint or commit checks reported failures
//
// Example usage:
//
//	if token == "" {
//	    return errors.NewMissingConfigError("gitlab_token", "GITLAB_TOKEN")
//	}
//
//	if err := source.Download(ctx, job, path); err != nil {
//	    return errors.WrapAuthError(err)
//	}
//
//	os.Exit(errors.ExitCode(err))
package errors
