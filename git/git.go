package git

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Context manages git operations for a repository.
type Context struct {
	repoPath string        // Path given to NewContext, made absolute
	runner   CommandRunner // Command runner (defaults to ExecRunner)
}

// Option configures Context.
type Option func(*Context)

// NewContext creates a new git context for the repository.
// It validates that the path is inside a git repository.
func NewContext(repoPath string, opts ...Option) (*Context, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	g := &Context{
		repoPath: absPath,
		runner:   NewExecRunner(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if _, err := g.runGit("rev-parse", "--git-dir"); err != nil {
		return nil, ErrNotGitRepo
	}

	return g, nil
}

// WithRunner sets a custom command runner for git operations.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) {
		g.runner = runner
	}
}

// RepoPath returns the path the context was created for.
func (g *Context) RepoPath() string {
	return g.repoPath
}

// Root returns the top-level directory of the working tree.
func (g *Context) Root() (string, error) {
	root, err := g.runGit("rev-parse", "--show-toplevel")
	if err != nil {
		return "", &Error{Op: "find repository root", Err: err}
	}
	return root, nil
}

// HeadCommit returns the current HEAD commit SHA.
func (g *Context) HeadCommit() (string, error) {
	sha, err := g.runGit("rev-parse", "HEAD")
	if err != nil {
		return "", &Error{Op: "get HEAD commit", Err: err}
	}
	return sha, nil
}

// Commits lists the commits in revRange (anything git log accepts, such as
// "origin/master..HEAD" or a single SHA), newest first.
func (g *Context) Commits(revRange string) ([]Commit, error) {
	if revRange == "" {
		return nil, fmt.Errorf("%w: empty range", ErrBadRevision)
	}

	out, err := g.runGit("log", "--format="+logFormat, revRange, "--")
	if err != nil {
		if strings.Contains(err.Error(), "unknown revision") ||
			strings.Contains(err.Error(), "bad revision") ||
			strings.Contains(err.Error(), "ambiguous argument") {
			return nil, fmt.Errorf("%w: %s", ErrBadRevision, revRange)
		}
		return nil, &Error{Op: "list commits", Cmd: "git log " + revRange, Err: err}
	}
	return parseLog(out), nil
}

// runGit executes a git command in the repository and returns stdout.
func (g *Context) runGit(args ...string) (string, error) {
	return g.runner.Run(g.repoPath, "git", args...)
}
