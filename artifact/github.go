package artifact

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/go-github/v57/github"

	pkhttp "github.com/randalmurphal/pipekit/http"
)

// GitHubSource implements Source for GitHub Actions workflow runs.
// The pipeline ID is the workflow run ID and the job name is the name of
// an artifact uploaded by that run.
type GitHubSource struct {
	client   *github.Client
	download *http.Client // Unauthenticated, for signed archive URLs
	owner    string
	repo     string
}

// NewGitHubSource creates a GitHub source for repository "owner/repo".
func NewGitHubSource(token, repository string, opts pkhttp.ClientOptions) (*GitHubSource, error) {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return nil, err
	}

	client, err := pkhttp.NewGitHubClient(token, opts)
	if err != nil {
		return nil, err
	}

	return &GitHubSource{
		client:   client,
		download: pkhttp.NewClient(opts),
		owner:    owner,
		repo:     repo,
	}, nil
}

// Name implements Source.
func (s *GitHubSource) Name() string {
	return "github"
}

// FindJob implements Source. Expired artifacts do not count as matches;
// when only expired ones carry the name, ErrArtifactExpired is returned.
func (s *GitHubSource) FindJob(ctx context.Context, runID int64, name string) (*Job, error) {
	iter := pkhttp.NewPageIterator(func(ctx context.Context, page int) ([]*github.Artifact, int, error) {
		list, resp, err := s.client.Actions.ListWorkflowRunArtifacts(ctx, s.owner, s.repo, runID, &github.ListOptions{
			Page:    page,
			PerPage: jobsPerPage,
		})
		if err != nil {
			return nil, 0, pkhttp.GitHubError(resp, err)
		}
		return list.Artifacts, resp.NextPage, nil
	})

	matched, err := iter.Filter(ctx, func(a *github.Artifact) bool {
		return a.GetName() == name
	})
	if err != nil {
		return nil, fmt.Errorf("list workflow run artifacts: %w", err)
	}

	var candidates []*Job
	expired := 0
	for _, a := range matched {
		if a.GetExpired() {
			expired++
			continue
		}
		candidates = append(candidates, &Job{
			ID:          a.GetID(),
			Name:        a.GetName(),
			Status:      "available",
			DownloadURL: a.GetArchiveDownloadURL(),
		})
	}
	if len(candidates) == 0 && expired > 0 {
		return nil, fmt.Errorf("%w: %q", ErrArtifactExpired, name)
	}
	return selectJob(candidates, name)
}

// Download implements Source. GitHub answers the archive endpoint with a
// redirect to a short-lived signed URL, which is fetched without the API
// token. The zip is spooled to a temporary file and the member named
// artifactPath is read from it.
func (s *GitHubSource) Download(ctx context.Context, job *Job, artifactPath string) (io.ReadCloser, error) {
	location, resp, err := s.client.Actions.DownloadArtifact(ctx, s.owner, s.repo, job.ID, 1)
	if err != nil {
		return nil, pkhttp.GitHubError(resp, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	blob, err := s.download.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download artifact archive: %w", err)
	}
	defer blob.Body.Close()

	if blob.StatusCode < 200 || blob.StatusCode > 299 {
		return nil, pkhttp.FromResponse("github", blob, "")
	}

	archive, err := spool(func(w io.Writer) error {
		if _, err := io.Copy(w, blob.Body); err != nil {
			return fmt.Errorf("read artifact archive: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	rc, err := extractMember(archive, artifactPath)
	if err != nil {
		archive.Close()
		return nil, err
	}
	return &memberReader{ReadCloser: rc, archive: archive}, nil
}

// extractMember opens the file named member inside a spooled zip archive.
func extractMember(archive *spoolFile, member string) (io.ReadCloser, error) {
	size, err := archive.Size()
	if err != nil {
		return nil, fmt.Errorf("stat artifact archive: %w", err)
	}
	zr, err := zip.NewReader(archive, size)
	if err != nil {
		return nil, fmt.Errorf("open artifact archive: %w", err)
	}

	want := path.Clean(strings.TrimPrefix(member, "/"))
	for _, f := range zr.File {
		if path.Clean(f.Name) == want && !f.FileInfo().IsDir() {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s in archive: %w", member, err)
			}
			return rc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s not in archive", ErrArtifactNotFound, member)
}

func parseRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(strings.Trim(repository, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: repository %q must be owner/repo", ErrInvalidRequest, repository)
	}
	return parts[0], parts[1], nil
}
