package cilint

// FileResult is the outcome of linting one file.
type FileResult struct {
	Path       string
	Result     *Result // Nil when the file never got a verdict
	StatusCode int     // Non-zero when the endpoint answered with an error status
	Err        error
}

// Passed reports whether the file was linted and found valid.
func (f FileResult) Passed() bool {
	return f.Err == nil && f.Result != nil && f.Result.Valid
}

// Report aggregates the results of a lint run.
type Report struct {
	Files []FileResult
}

// Failed returns the files that did not pass.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if !f.Passed() {
			failed = append(failed, f)
		}
	}
	return failed
}

// OK reports whether every file passed.
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

// ExitCode is 0 when every file passed and 1 otherwise.
func (r *Report) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// FailedPaths returns the paths of the files that did not pass.
func (r *Report) FailedPaths() []string {
	var paths []string
	for _, f := range r.Failed() {
		paths = append(paths, f.Path)
	}
	return paths
}
