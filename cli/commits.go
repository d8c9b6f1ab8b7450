package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/pipekit/commitcheck"
	"github.com/randalmurphal/pipekit/config"
	clierrors "github.com/randalmurphal/pipekit/errors"
	"github.com/randalmurphal/pipekit/git"
	"github.com/randalmurphal/pipekit/notify"
)

func checkCommitsCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "check-commits [range]",
		Short: "Check commit messages for conventional format and sign-off",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheckCommits(cmd, args)
		},
	}

	bindString(c, "range", config.KeyCommitRange, "revision range to check, e.g. origin/master..HEAD")
	return c
}

func (a *app) runCheckCommits(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := a.cfg.CommitSettings()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		s.Range = args[0]
	}

	repo, err := git.NewContext(".")
	if err != nil {
		if errors.Is(err, git.ErrNotGitRepo) {
			return clierrors.NewNotInGitRepoError()
		}
		return err
	}

	report, err := commitcheck.NewChecker(repo, commitcheck.WithLogger(a.logger)).CheckRange(s.Range)
	if err != nil {
		return err
	}
	report.Write(a.stdout)

	if report.HasErrors() {
		event := notify.NewEvent(notify.EventCommitsFailed, notify.SeverityError,
			fmt.Sprintf("%d problems in commits %s", report.ErrorCount(), s.Range))
		a.notify(ctx, cmd.Name(), event)
		return checksFailed("%d errors in %d commits", report.ErrorCount(), len(report.Commits))
	}
	return nil
}
