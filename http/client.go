package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/xanzy/go-gitlab"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 5 * time.Minute

// DefaultGitLabURL is used when no GitLab instance is configured.
const DefaultGitLabURL = "https://gitlab.com"

// ClientOptions holds transport settings shared by every integration client.
type ClientOptions struct {
	// BaseURL overrides the API host (self-hosted GitLab, GitHub Enterprise,
	// or a test server). Empty means the public service.
	BaseURL string

	// Timeout bounds a whole request including the body download.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Retries is the number of retries for 429 and 5xx answers.
	// Zero disables retries.
	Retries int
}

// NewClient returns a pooled *http.Client configured from opts.
func NewClient(opts ClientOptions) *http.Client {
	client := cleanhttp.DefaultPooledClient()

	client.Timeout = opts.Timeout
	if client.Timeout <= 0 {
		client.Timeout = DefaultTimeout
	}

	if opts.InsecureSkipVerify {
		if transport, ok := client.Transport.(*http.Transport); ok {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via insecure_skip_verify
		}
	}

	return client
}

// NewGitLabClient creates a go-gitlab client authenticating with a private
// token. The token may be empty for endpoints that allow anonymous access.
func NewGitLabClient(token string, opts ClientOptions) (*gitlab.Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultGitLabURL
	}

	clientOpts := []gitlab.ClientOptionFunc{
		gitlab.WithBaseURL(baseURL),
		gitlab.WithHTTPClient(NewClient(opts)),
	}
	if opts.Retries > 0 {
		clientOpts = append(clientOpts, gitlab.WithCustomRetryMax(opts.Retries))
	} else {
		clientOpts = append(clientOpts, gitlab.WithoutRetries())
	}

	client, err := gitlab.NewClient(token, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}
	return client, nil
}

// GitLabError converts a go-gitlab error into an *APIError when the server
// answered. Transport errors are returned unchanged.
func GitLabError(resp *gitlab.Response, err error) error {
	if err == nil {
		return nil
	}
	if resp == nil || resp.Response == nil {
		return err
	}

	var message string
	var errResp *gitlab.ErrorResponse
	if errors.As(err, &errResp) {
		message = errResp.Message
	}
	return FromResponse("gitlab", resp.Response, message)
}

// NewGitHubClient creates a go-github client. A non-empty token is sent as
// an OAuth2 bearer token.
func NewGitHubClient(token string, opts ClientOptions) (*github.Client, error) {
	httpClient := NewClient(opts)

	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = httpClient.Timeout
		httpClient = tc
	}

	client := github.NewClient(httpClient)

	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse GitHub base URL: %w", err)
		}
		client.BaseURL = u
	}

	return client, nil
}

// GitHubError converts a go-github error into an *APIError when the server
// answered. Transport errors are returned unchanged.
func GitHubError(resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	if resp == nil || resp.Response == nil {
		return err
	}

	var message string
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		message = errResp.Message
	}
	return FromResponse("github", resp.Response, message)
}
