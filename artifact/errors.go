package artifact

import "errors"

// Artifact fetch errors
var (
	// ErrInvalidRequest indicates a Request is missing a required field.
	ErrInvalidRequest = errors.New("invalid artifact request")

	// ErrJobNotFound indicates no job in the pipeline has the requested name.
	ErrJobNotFound = errors.New("job not found in pipeline")

	// ErrAmbiguousJob indicates more than one job has the requested name.
	ErrAmbiguousJob = errors.New("more than one job matches")

	// ErrArtifactNotFound indicates the job has no such artifact file.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrArtifactExpired indicates the artifact existed but was removed by
	// the provider's retention policy.
	ErrArtifactExpired = errors.New("artifact expired")
)
