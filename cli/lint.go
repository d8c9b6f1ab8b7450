package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/pipekit/cilint"
	"github.com/randalmurphal/pipekit/config"
	clierrors "github.com/randalmurphal/pipekit/errors"
	"github.com/randalmurphal/pipekit/notify"
)

func lintCICmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "lint-ci [file...]",
		Short: "Validate GitLab CI files with the CI lint API",
		Long: `Sends every .yml file directly inside --dir, minus the excluded ones, to
the GitLab CI lint endpoint. Named files are linted instead when given.

Exits with status 1 when any file fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLint(cmd, args)
		},
	}

	bindString(c, "dir", config.KeyLintDir, "directory holding the CI files")
	bindString(c, "exclude", config.KeyLintExclude, "comma separated file names or globs to skip")
	bindString(c, "project-id", config.KeyLintProjectID, "lint in the context of this project")
	bindString(c, "precheck", config.KeyLintPrecheck, "parse files as YAML before sending them (true/false)")
	bindBool(c, "insecure", config.KeyInsecureSkipVerify, "skip TLS certificate verification")
	return c
}

func (a *app) runLint(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := a.cfg.LintSettings()
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		files, err = cilint.Discover(s.Dir, s.Excludes)
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		a.logger.Warn("no CI files to lint", "dir", s.Dir)
		return nil
	}

	var lopts []cilint.LinterOption
	if s.ProjectID != "" {
		lopts = append(lopts, cilint.WithProject(s.ProjectID))
	}
	linter, err := cilint.NewGitLabLinter(s.Token, s.Client.Options(), lopts...)
	if err != nil {
		return err
	}

	runner := cilint.NewRunner(linter,
		cilint.WithOutput(a.stdout),
		cilint.WithLogger(a.logger),
		cilint.WithPrecheck(s.Precheck),
	)
	report, err := runner.Run(ctx, s.Dir, files)
	if err != nil {
		return clierrors.Wrap(err, s.Client.BaseURL)
	}

	if !report.OK() {
		failed := report.FailedPaths()
		event := notify.NewEvent(notify.EventLintFailed, notify.SeverityError,
			fmt.Sprintf("%d of %d CI files failed lint", len(failed), len(report.Files)))
		event.Metadata = map[string]any{"failed": strings.Join(failed, ", ")}
		a.notify(ctx, cmd.Name(), event)
		return checksFailed("%d of %d CI files failed lint", len(failed), len(report.Files))
	}

	a.notify(ctx, cmd.Name(), notify.NewEvent(notify.EventLintPassed, notify.SeverityInfo,
		fmt.Sprintf("%d CI files passed lint", len(report.Files))))
	return nil
}
