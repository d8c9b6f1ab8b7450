// Package cilint validates GitLab CI configuration files against a lint
// endpoint.
//
// Files are discovered with Discover, which lists the .yml files directly
// inside a directory minus an exclusion list. A Runner lints them one after
// another through a Linter and collects a Report. Output printed while
// linting matches what CI jobs have historically grepped for:
//
//	POST returned status code 500
//	File build.yml returned the following errors:
//	jobs:build config should implement a script: or a trigger: keyword
//
// GitLabLinter talks to the /ci/lint endpoint of a GitLab instance, or to
// the project-scoped /projects/:id/ci/lint endpoint when a project is set.
package cilint
