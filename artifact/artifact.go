package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Source locates jobs of an upstream pipeline and downloads their artifacts.
// Implementations exist for GitLab and GitHub.
type Source interface {
	// FindJob returns the single job named jobName in the pipeline.
	FindJob(ctx context.Context, pipelineID int64, jobName string) (*Job, error)

	// Download opens the artifact file at artifactPath produced by job.
	// The caller closes the returned reader.
	Download(ctx context.Context, job *Job, artifactPath string) (io.ReadCloser, error)

	// Name identifies the provider in logs ("gitlab", "github").
	Name() string
}

// Job is a pipeline job (GitLab) or workflow run artifact (GitHub).
type Job struct {
	ID          int64
	Name        string
	Stage       string
	Status      string
	WebURL      string
	DownloadURL string
}

// Request describes the artifact to fetch.
type Request struct {
	PipelineID   int64  // Upstream pipeline (GitLab) or workflow run (GitHub)
	JobName      string // Job name (GitLab) or artifact name (GitHub)
	ArtifactPath string // File inside the job's artifacts
}

// Validate checks that every field is set.
func (r Request) Validate() error {
	var missing []string
	if r.PipelineID <= 0 {
		missing = append(missing, "pipeline ID")
	}
	if r.JobName == "" {
		missing = append(missing, "job name")
	}
	if r.ArtifactPath == "" {
		missing = append(missing, "artifact path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// Result describes a fetched artifact.
type Result struct {
	Path     string
	Size     int64
	SHA256   string
	Job      *Job
	Duration time.Duration
}

// Fetcher downloads artifacts from a Source to local disk.
type Fetcher struct {
	source Source
	logger *slog.Logger
	mode   uint32
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithFileMode sets the permission bits of the written file. Defaults to 0644.
func WithFileMode(mode uint32) Option {
	return func(f *Fetcher) {
		f.mode = mode
	}
}

// NewFetcher creates a Fetcher for source.
func NewFetcher(source Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		source: source,
		logger: slog.Default(),
		mode:   0o644,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch finds the job named in req, downloads its artifact and writes it to
// outputPath. Nothing is left at outputPath when any step fails.
func (f *Fetcher) Fetch(ctx context.Context, req Request, outputPath string) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if outputPath == "" {
		return nil, fmt.Errorf("%w: missing output path", ErrInvalidRequest)
	}

	start := time.Now()
	log := f.logger.With(
		"provider", f.source.Name(),
		"pipeline_id", req.PipelineID,
		"job_name", req.JobName,
	)

	log.Debug("listing pipeline jobs")
	job, err := f.source.FindJob(ctx, req.PipelineID, req.JobName)
	if err != nil {
		return nil, fmt.Errorf("find job %q in pipeline %d: %w", req.JobName, req.PipelineID, err)
	}
	log.Info("found job", "job_id", job.ID, "status", job.Status)

	body, err := f.source.Download(ctx, job, req.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("download %s from job %d: %w", req.ArtifactPath, job.ID, err)
	}
	defer body.Close()

	size, digest, err := writeFileAtomic(outputPath, body, f.mode)
	if err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	result := &Result{
		Path:     outputPath,
		Size:     size,
		SHA256:   digest,
		Job:      job,
		Duration: time.Since(start),
	}
	log.Info("artifact written",
		"path", result.Path,
		"bytes", result.Size,
		"sha256", result.SHA256,
		"duration", result.Duration,
	)
	return result, nil
}

// selectJob returns the only job in candidates, or the matching error.
func selectJob(candidates []*Job, name string) (*Job, error) {
	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrJobNotFound, name)
	case 1:
		return candidates[0], nil
	default:
		ids := make([]string, len(candidates))
		for i, j := range candidates {
			ids[i] = fmt.Sprint(j.ID)
		}
		return nil, fmt.Errorf("%w: %d jobs named %q (ids %s)",
			ErrAmbiguousJob, len(candidates), name, strings.Join(ids, ", "))
	}
}
