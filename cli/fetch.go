package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/pipekit/artifact"
	"github.com/randalmurphal/pipekit/config"
	clierrors "github.com/randalmurphal/pipekit/errors"
	"github.com/randalmurphal/pipekit/git"
	"github.com/randalmurphal/pipekit/notify"
)

func fetchArtifactCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "fetch-artifact",
		Short: "Download an artifact of an upstream pipeline job",
		Long: `Finds the job named --job-name in the upstream pipeline and writes its
artifact file to --output.

The pipeline ID and token are usually taken from UPSTREAM_PIPELINE_ID and
GITLAB_TOKEN (GITHUB_TOKEN with --provider github).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFetch(cmd)
		},
	}

	bindString(c, "provider", config.KeyProvider, "artifact host: gitlab or github")
	bindString(c, "pipeline-id", config.KeyPipelineID, "upstream pipeline ID (GitHub: workflow run ID)")
	bindString(c, "project-id", config.KeyProjectID, "GitLab project holding the pipeline")
	bindString(c, "repo", config.KeyGitHubRepo, "GitHub repository as owner/repo")
	bindString(c, "job-name", config.KeyJobName, "job name (GitHub: artifact name)")
	bindString(c, "artifact-path", config.KeyArtifactPath, "file inside the job's artifacts")
	bindString(c, "output", config.KeyOutputPath, "where to write the artifact")
	return c
}

func (a *app) runFetch(cmd *cobra.Command) error {
	ctx := cmd.Context()

	if strings.EqualFold(a.cfg.Get(config.KeyProvider), config.ProviderGitHub) {
		a.detectRepository()
	}

	s, err := a.cfg.FetchSettings()
	if err != nil {
		return err
	}

	var source artifact.Source
	switch s.Provider {
	case config.ProviderGitHub:
		source, err = artifact.NewGitHubSource(s.Token, s.Repository, s.Client.Options())
	default:
		source, err = artifact.NewGitLabSource(s.Token, s.ProjectID, s.Client.Options())
	}
	if err != nil {
		return err
	}

	fetcher := artifact.NewFetcher(source, artifact.WithLogger(a.logger))
	result, err := fetcher.Fetch(ctx, artifact.Request{
		PipelineID:   s.PipelineID,
		JobName:      s.JobName,
		ArtifactPath: s.ArtifactPath,
	}, s.OutputPath)
	if err != nil {
		event := notify.NewEvent(notify.EventArtifactFailed, notify.SeverityError,
			fmt.Sprintf("fetching %s from %s in pipeline %d failed: %v", s.ArtifactPath, s.JobName, s.PipelineID, err))
		a.notify(ctx, cmd.Name(), event)
		return clierrors.Wrap(err, s.Client.BaseURL)
	}

	fmt.Fprintf(a.stdout, "Downloaded %s (%d bytes, sha256 %s)\n", result.Path, result.Size, result.SHA256)

	event := notify.NewEvent(notify.EventArtifactFetched, notify.SeverityInfo,
		fmt.Sprintf("fetched %s from job %d", s.ArtifactPath, result.Job.ID))
	event.Metadata = map[string]any{
		"pipeline_id": s.PipelineID,
		"job_id":      result.Job.ID,
		"bytes":       result.Size,
		"sha256":      result.SHA256,
	}
	a.notify(ctx, cmd.Name(), event)
	return nil
}

// detectRepository fills github_repo from the origin remote when it is
// unset and origin points at GitHub.
func (a *app) detectRepository() {
	if a.cfg.Get(config.KeyGitHubRepo) != "" {
		return
	}
	repo, err := git.NewContext(".")
	if err != nil {
		return
	}
	url, err := repo.RemoteURL("origin")
	if err != nil {
		a.logger.Debug("no origin remote", "error", err)
		return
	}
	remote, err := git.ParseRemote(url)
	if err != nil || remote.Provider != git.ProviderGitHub {
		return
	}
	if a.cfg.Fill(config.KeyGitHubRepo, remote.Path, config.SourceGit) {
		a.logger.Debug("repository detected from origin", "repo", remote.Path)
	}
}
