package commitcheck

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/randalmurphal/pipekit/git"
)

// Finding is one rule violation.
type Finding struct {
	Rule     string
	Severity Severity
	Message  string
}

// CommitResult holds the findings for one commit.
type CommitResult struct {
	Commit   git.Commit
	Findings []Finding
	Ignored  bool
}

// Errors counts error-severity findings.
func (c CommitResult) Errors() int {
	return countSeverity(c.Findings, SeverityError)
}

// Warnings counts warning-severity findings.
func (c CommitResult) Warnings() int {
	return countSeverity(c.Findings, SeverityWarning)
}

func countSeverity(findings []Finding, s Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Report aggregates the results of a range check.
type Report struct {
	Range   string
	Commits []CommitResult
}

// HasErrors reports whether any commit has an error-severity finding.
func (r *Report) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount sums error findings across commits.
func (r *Report) ErrorCount() int {
	n := 0
	for _, c := range r.Commits {
		n += c.Errors()
	}
	return n
}

// WarningCount sums warning findings across commits.
func (r *Report) WarningCount() int {
	n := 0
	for _, c := range r.Commits {
		n += c.Warnings()
	}
	return n
}

// ExitCode is 1 when any error was found, 0 otherwise.
func (r *Report) ExitCode() int {
	if r.HasErrors() {
		return 1
	}
	return 0
}

// Write prints every commit with findings, commitlint style.
func (r *Report) Write(w io.Writer) {
	for _, c := range r.Commits {
		if len(c.Findings) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", c.Commit.ShortSHA(), c.Commit.Header())
		for _, f := range c.Findings {
			mark := "⚠"
			if f.Severity == SeverityError {
				mark = "✖"
			}
			fmt.Fprintf(w, "  %s   %s [%s]\n", mark, f.Message, f.Rule)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d commits checked, %d errors, %d warnings\n",
		len(r.Commits), r.ErrorCount(), r.WarningCount())
}

// Checker runs rules over commits of a repository.
type Checker struct {
	repo   *git.Context
	rules  []Rule
	cfg    Config
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithConfig replaces the rule limits.
func WithConfig(cfg Config) Option {
	return func(c *Checker) {
		c.cfg = cfg
	}
}

// WithRules replaces the rule table.
func WithRules(rules []Rule) Option {
	return func(c *Checker) {
		c.rules = rules
	}
}

// NewChecker creates a Checker for repo. repo may be nil when only Check
// is used.
func NewChecker(repo *git.Context, opts ...Option) *Checker {
	c := &Checker{
		repo:   repo,
		rules:  DefaultRules(),
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check runs every rule against a raw message.
func (c *Checker) Check(raw string) []Finding {
	m := Parse(raw)

	var findings []Finding
	for _, rule := range c.rules {
		if msg := rule.Check(m, c.cfg); msg != "" {
			findings = append(findings, Finding{
				Rule:     rule.Name,
				Severity: rule.Severity,
				Message:  msg,
			})
		}
	}
	return findings
}

// CheckCommit checks one commit, skipping merges and exempt messages.
func (c *Checker) CheckCommit(commit git.Commit) CommitResult {
	if commit.IsMerge() || Ignored(commit.Message) {
		return CommitResult{Commit: commit, Ignored: true}
	}
	return CommitResult{Commit: commit, Findings: c.Check(commit.Message)}
}

// CheckRange checks every commit in revRange.
func (c *Checker) CheckRange(revRange string) (*Report, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("check range %s: no repository", revRange)
	}

	commits, err := c.repo.Commits(revRange)
	if err != nil {
		return nil, fmt.Errorf("check range %s: %w", revRange, err)
	}

	report := &Report{Range: revRange}
	for _, commit := range commits {
		result := c.CheckCommit(commit)
		if result.Ignored {
			c.logger.Debug("skipping commit", "sha", commit.ShortSHA(), "header", commit.Header())
		}
		report.Commits = append(report.Commits, result)
	}

	c.logger.Info("commits checked",
		"range", revRange,
		"commits", len(report.Commits),
		"errors", report.ErrorCount(),
		"warnings", report.WarningCount(),
	)
	return report, nil
}
