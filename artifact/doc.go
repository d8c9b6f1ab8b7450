// Package artifact fetches build artifacts produced by an upstream CI
// pipeline and writes them to local disk.
//
// Core types:
//   - Source: Interface for locating a pipeline job and downloading one of
//     its artifact files
//   - Request: Pipeline ID, job name and artifact path to fetch
//   - Fetcher: Runs find, download and write for a Request
//   - Result: Where the artifact landed, its size and SHA-256 digest
//
// Implementations:
//   - GitLabSource: GitLab pipeline jobs and job artifacts using go-gitlab
//   - GitHubSource: GitHub Actions workflow run artifacts using go-github
//   - MockSource: Function-field mock for tests
//
// Example usage:
//
//	source, _ := artifact.NewGitLabSource(token, "13172542", pkhttp.ClientOptions{})
//	result, err := artifact.NewFetcher(source).Fetch(ctx, artifact.Request{
//	    PipelineID:   pipelineID,
//	    JobName:      "build:testing",
//	    ArtifactPath: "testingImage.tar",
//	}, "/tmp/mendertesting/testingImage.tar")
package artifact
