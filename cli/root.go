// Package cli implements the pipekit command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/randalmurphal/pipekit/config"
	clierrors "github.com/randalmurphal/pipekit/errors"
	"github.com/randalmurphal/pipekit/notify"
)

// configKeyAnnotation marks a flag as an override for a config key.
const configKeyAnnotation = "pipekit/config-key"

// app carries what every subcommand needs after the root pre-run.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
	resolver *config.Resolver
	cfg      *config.Resolved
	notifier notify.Notifier

	debug      bool
	configPath string
}

// Execute runs the command line with args and returns the command's error.
// Errors are printed to stderr unless the command already reported them.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil && !clierrors.IsSilent(err) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return err
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:           "pipekit",
		Short:         "CI helpers: fetch upstream artifacts, lint GitLab CI files, check commits and licenses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: .pipekit.yaml in the git root)")

	cmd.AddCommand(
		fetchArtifactCmd(a),
		lintCICmd(a),
		checkCommitsCmd(a),
		checkLicensesCmd(a),
		configCmd(a),
		versionCmd(a),
	)
	return cmd
}

// setup installs the logger, resolves configuration and builds notifiers.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: a.debug,
	}))

	a.resolver = config.NewDefaultResolver(a.configPath, a.stderr)
	a.cfg = a.resolver.ResolveWithFlags(flagOverrides(cmd.Flags()))
	a.logger.Debug("configuration resolved",
		"global", a.resolver.GlobalPath(),
		"local", a.resolver.LocalPath(),
	)

	notifier, err := buildNotifier(a.cfg.NotifySettings(), a.logger)
	if err != nil {
		return err
	}
	a.notifier = notifier
	return nil
}

// flagOverrides collects the values of changed flags bound to config keys.
func flagOverrides(flags *pflag.FlagSet) map[string]string {
	overrides := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) {
		if keys := f.Annotations[configKeyAnnotation]; len(keys) == 1 {
			overrides[keys[0]] = f.Value.String()
		}
	})
	return overrides
}

// bindString adds a string flag that overrides config key.
func bindString(cmd *cobra.Command, name, key, usage string) {
	cmd.Flags().String(name, "", usage)
	_ = cmd.Flags().SetAnnotation(name, configKeyAnnotation, []string{key})
}

// bindBool adds a bool flag that overrides config key.
func bindBool(cmd *cobra.Command, name, key, usage string) {
	cmd.Flags().Bool(name, false, usage)
	_ = cmd.Flags().SetAnnotation(name, configKeyAnnotation, []string{key})
}

func buildNotifier(s config.NotifySettings, logger *slog.Logger) (notify.Notifier, error) {
	level, err := notify.ParseSeverity(s.Level)
	if err != nil {
		return nil, clierrors.NewInvalidConfigError(config.KeyNotifyLevel, s.Level, "must be info, warning or error")
	}

	n := notify.Multi{notify.NewLogNotifier(logger)}
	if s.SlackWebhook != "" {
		var opts []notify.SlackOption
		if s.SlackChannel != "" {
			opts = append(opts, notify.WithSlackChannel(s.SlackChannel))
		}
		n = append(n, notify.Threshold(level, notify.NewSlackNotifier(s.SlackWebhook, opts...)))
	}
	if s.WebhookURL != "" {
		n = append(n, notify.Threshold(level, notify.NewWebhookNotifier(s.WebhookURL)))
	}
	return n, nil
}

// notify sends event. Failures are logged and otherwise ignored.
func (a *app) notify(ctx context.Context, command string, event notify.Event) {
	event.Command = command
	event.PipelineURL = os.Getenv("CI_PIPELINE_URL")
	if err := a.notifier.Notify(ctx, event); err != nil {
		a.logger.Warn("notification failed", "type", event.Type, "error", err)
	}
}

// checksFailed builds the error returned when a check found problems that
// were already printed.
func checksFailed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", clierrors.ErrChecksFailed, fmt.Sprintf(format, args...))
}
