package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xanzy/go-gitlab"

	pkhttp "github.com/randalmurphal/pipekit/http"
)

// jobsPerPage is the page size used when listing pipeline jobs.
// GitLab caps per_page at 100.
const jobsPerPage = 100

// GitLabSource implements Source for GitLab pipelines.
type GitLabSource struct {
	client    *gitlab.Client
	projectID string // Numeric ID or "namespace/project"
}

// NewGitLabSource creates a GitLab source for the project holding the
// upstream pipeline. opts.BaseURL selects a self-hosted instance.
func NewGitLabSource(token, projectID string, opts pkhttp.ClientOptions) (*GitLabSource, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: missing project ID", ErrInvalidRequest)
	}

	client, err := pkhttp.NewGitLabClient(token, opts)
	if err != nil {
		return nil, err
	}

	return &GitLabSource{
		client:    client,
		projectID: projectID,
	}, nil
}

// Name implements Source.
func (s *GitLabSource) Name() string {
	return "gitlab"
}

// FindJob implements Source. Every page of the pipeline's job list is
// read. Retried jobs are left out so only the latest attempt can match.
func (s *GitLabSource) FindJob(ctx context.Context, pipelineID int64, jobName string) (*Job, error) {
	iter := pkhttp.NewPageIterator(func(ctx context.Context, page int) ([]*gitlab.Job, int, error) {
		jobs, resp, err := s.client.Jobs.ListPipelineJobs(s.projectID, int(pipelineID), &gitlab.ListJobsOptions{
			ListOptions: gitlab.ListOptions{
				Page:    page,
				PerPage: jobsPerPage,
			},
			IncludeRetried: gitlab.Ptr(false),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, 0, pkhttp.GitLabError(resp, err)
		}
		return jobs, resp.NextPage, nil
	})

	matched, err := iter.Filter(ctx, func(j *gitlab.Job) bool {
		return j.Name == jobName
	})
	if err != nil {
		return nil, fmt.Errorf("list pipeline jobs: %w", err)
	}

	candidates := make([]*Job, len(matched))
	for i, j := range matched {
		candidates[i] = convertGitLabJob(j)
	}
	return selectJob(candidates, jobName)
}

// Download implements Source. The file is spooled to a temporary file as
// it arrives; closing the returned reader removes it.
func (s *GitLabSource) Download(ctx context.Context, job *Job, artifactPath string) (io.ReadCloser, error) {
	u := fmt.Sprintf("projects/%s/jobs/%d/artifacts/%s",
		gitlab.PathEscape(s.projectID), job.ID, strings.TrimPrefix(artifactPath, "/"))
	req, err := s.client.NewRequest(http.MethodGet, u, nil, []gitlab.RequestOptionFunc{gitlab.WithContext(ctx)})
	if err != nil {
		return nil, fmt.Errorf("build artifact request: %w", err)
	}

	body, err := spool(func(w io.Writer) error {
		resp, err := s.client.Do(req, w)
		if err != nil {
			return pkhttp.GitLabError(resp, err)
		}
		return nil
	})
	if err != nil {
		if pkhttp.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrArtifactNotFound, artifactPath, err)
		}
		return nil, err
	}
	return body, nil
}

func convertGitLabJob(j *gitlab.Job) *Job {
	return &Job{
		ID:     int64(j.ID),
		Name:   j.Name,
		Stage:  j.Stage,
		Status: j.Status,
		WebURL: j.WebURL,
	}
}
