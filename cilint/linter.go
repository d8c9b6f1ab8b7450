package cilint

import (
	"context"
	"fmt"

	"github.com/xanzy/go-gitlab"

	pkhttp "github.com/randalmurphal/pipekit/http"
)

// Linter validates the content of one CI configuration file.
//
// When the lint endpoint answers with a non-2xx status, Lint returns an
// error carrying that status (see pkhttp.StatusCode). Errors without a
// status are transport failures.
type Linter interface {
	Lint(ctx context.Context, content string) (*Result, error)
}

// Result is the verdict of the lint endpoint for one file.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// GitLabLinter implements Linter using the GitLab CI lint API.
type GitLabLinter struct {
	client    *gitlab.Client
	projectID string
}

// LinterOption configures a GitLabLinter.
type LinterOption func(*GitLabLinter)

// WithProject lints in the context of a project, which lets GitLab resolve
// include: local entries against the project's repository.
func WithProject(projectID string) LinterOption {
	return func(l *GitLabLinter) {
		l.projectID = projectID
	}
}

// NewGitLabLinter creates a linter for the GitLab instance at opts.BaseURL
// (gitlab.com when empty). The token may be empty for the global endpoint
// on instances that allow anonymous lint requests.
func NewGitLabLinter(token string, opts pkhttp.ClientOptions, lopts ...LinterOption) (*GitLabLinter, error) {
	client, err := pkhttp.NewGitLabClient(token, opts)
	if err != nil {
		return nil, err
	}

	l := &GitLabLinter{client: client}
	for _, opt := range lopts {
		opt(l)
	}
	return l, nil
}

// Lint implements Linter.
func (l *GitLabLinter) Lint(ctx context.Context, content string) (*Result, error) {
	if l.projectID != "" {
		return l.lintProject(ctx, content)
	}

	res, resp, err := l.client.Validate.Lint(&gitlab.LintOptions{
		Content: content,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("lint: %w", pkhttp.GitLabError(resp, err))
	}

	return &Result{
		Valid:    res.Status == "valid",
		Errors:   res.Errors,
		Warnings: res.Warnings,
	}, nil
}

func (l *GitLabLinter) lintProject(ctx context.Context, content string) (*Result, error) {
	res, resp, err := l.client.Validate.ProjectNamespaceLint(l.projectID, &gitlab.ProjectNamespaceLintOptions{
		Content: gitlab.Ptr(content),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("lint in project %s: %w", l.projectID, pkhttp.GitLabError(resp, err))
	}

	return &Result{
		Valid:    res.Valid,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	}, nil
}
