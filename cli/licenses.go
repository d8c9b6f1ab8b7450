package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/pipekit/config"
	"github.com/randalmurphal/pipekit/license"
	"github.com/randalmurphal/pipekit/notify"
)

func checkLicensesCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "check-licenses",
		Short: "Check source files for license headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCheckLicenses(cmd)
		},
	}

	bindString(c, "dir", config.KeyLicenseDir, "directory to check")
	bindString(c, "marker", config.KeyLicenseMarker, "text every header must contain")
	bindString(c, "include", config.KeyLicenseInclude, "comma separated globs of files to check")
	bindString(c, "exclude", config.KeyLicenseExclude, "comma separated globs to skip")
	return c
}

func (a *app) runCheckLicenses(cmd *cobra.Command) error {
	ctx := cmd.Context()

	s, err := a.cfg.LicenseSettings()
	if err != nil {
		return err
	}

	opts := license.DefaultOptions()
	opts.Marker = s.Marker
	if len(s.Include) > 0 {
		opts.Include = s.Include
	}
	if s.Exclude != nil {
		opts.Exclude = s.Exclude
	}

	report, err := license.Check(s.Dir, opts)
	if err != nil {
		return err
	}

	for _, p := range report.Problems {
		fmt.Fprintln(a.stdout, p)
	}
	a.logger.Info("licenses checked", "files", report.Checked, "problems", len(report.Problems))

	if !report.OK() {
		event := notify.NewEvent(notify.EventLicensesFailed, notify.SeverityError,
			fmt.Sprintf("%d license problems in %s", len(report.Problems), s.Dir))
		a.notify(ctx, cmd.Name(), event)
		return checksFailed("%d license problems", len(report.Problems))
	}
	return nil
}
