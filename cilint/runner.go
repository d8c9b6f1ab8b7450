package cilint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	pkhttp "github.com/randalmurphal/pipekit/http"
)

// ErrYAMLSyntax marks a file that is not well-formed YAML. Such files are
// reported without contacting the lint endpoint.
var ErrYAMLSyntax = errors.New("invalid YAML")

// Runner lints CI files sequentially.
type Runner struct {
	linter   Linter
	out      io.Writer
	logger   *slog.Logger
	precheck bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOutput sets where lint failures are printed. Defaults to os.Stdout.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.out = w
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithPrecheck enables parsing each file as YAML before sending it.
func WithPrecheck(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.precheck = enabled
	}
}

// NewRunner creates a Runner using linter.
func NewRunner(linter Linter, opts ...RunnerOption) *Runner {
	r := &Runner{
		linter: linter,
		out:    os.Stdout,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run lints files in order. Relative names are resolved against dir and
// absolute names are read as given. A file that fails to lint does not
// stop the run. An error is returned only when the run could not
// continue: a file could not be read, the endpoint was unreachable, or ctx
// was cancelled. The report covers the files handled up to that point.
func (r *Runner) Run(ctx context.Context, dir string, files []string) (*Report, error) {
	report := &Report{}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		fr, err := r.lintFile(ctx, dir, name)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, fr)
	}

	r.logger.Info("lint finished",
		"files", len(report.Files),
		"failed", len(report.Failed()),
	)
	return report, nil
}

func (r *Runner) lintFile(ctx context.Context, dir, name string) (FileResult, error) {
	fr := FileResult{Path: name}
	log := r.logger.With("file", name)

	content, err := os.ReadFile(resolvePath(dir, name))
	if err != nil {
		return fr, fmt.Errorf("read %s: %w", name, err)
	}

	if r.precheck {
		var doc yaml.Node
		if err := yaml.Unmarshal(content, &doc); err != nil {
			fr.Err = fmt.Errorf("%w: %w", ErrYAMLSyntax, err)
			fr.Result = &Result{Errors: []string{err.Error()}}
			r.printErrors(name, fr.Result.Errors)
			log.Debug("yaml precheck failed", "error", err)
			return fr, nil
		}
	}

	log.Debug("linting")
	res, err := r.linter.Lint(ctx, string(content))
	if err != nil {
		status := pkhttp.StatusCode(err)
		if status == 0 {
			return fr, fmt.Errorf("lint %s: %w", name, err)
		}
		fr.StatusCode = status
		fr.Err = err
		fmt.Fprintf(r.out, "POST returned status code %d\n", status)
		log.Debug("lint request rejected", "status", status, "error", err)
		return fr, nil
	}

	fr.Result = res
	for _, w := range res.Warnings {
		log.Warn("lint warning", "warning", w)
	}
	if !res.Valid {
		r.printErrors(name, res.Errors)
		return fr, nil
	}

	log.Debug("valid")
	return fr, nil
}

func resolvePath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func (r *Runner) printErrors(name string, errs []string) {
	fmt.Fprintf(r.out, "File %s returned the following errors:\n", name)
	for _, e := range errs {
		fmt.Fprintln(r.out, e)
	}
}
