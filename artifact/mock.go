package artifact

import (
	"context"
	"io"
	"strings"
)

// MockSource is a mock implementation of Source for testing.
type MockSource struct {
	FindJobFunc  func(ctx context.Context, pipelineID int64, jobName string) (*Job, error)
	DownloadFunc func(ctx context.Context, job *Job, artifactPath string) (io.ReadCloser, error)
}

// Name implements Source.
func (m *MockSource) Name() string {
	return "mock"
}

// FindJob implements Source.
func (m *MockSource) FindJob(ctx context.Context, pipelineID int64, jobName string) (*Job, error) {
	if m.FindJobFunc != nil {
		return m.FindJobFunc(ctx, pipelineID, jobName)
	}
	return &Job{ID: 1, Name: jobName, Status: "success"}, nil
}

// Download implements Source.
func (m *MockSource) Download(ctx context.Context, job *Job, artifactPath string) (io.ReadCloser, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, job, artifactPath)
	}
	return io.NopCloser(strings.NewReader("")), nil
}
