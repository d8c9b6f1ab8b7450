package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randalmurphal/pipekit/config"
	clierrors "github.com/randalmurphal/pipekit/errors"
	"github.com/randalmurphal/pipekit/testutil"
)

// isolate keeps the user's environment and config files out of a test and
// returns the path of an explicit config file holding yaml.
func isolate(t *testing.T, yaml string) string {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"UPSTREAM_PIPELINE_ID", "PIPEKIT_UPSTREAM_PIPELINE_ID",
		"GITLAB_TOKEN", "PIPEKIT_GITLAB_TOKEN",
		"GITHUB_TOKEN", "GH_TOKEN", "PIPEKIT_GITHUB_TOKEN",
		"SLACK_WEBHOOK_URL", "PIPEKIT_SLACK_WEBHOOK", "PIPEKIT_WEBHOOK_URL",
		"CI_PIPELINE_URL",
	} {
		t.Setenv(name, "")
	}

	path := filepath.Join(t.TempDir(), "pipekit.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	cfg := isolate(t, "")

	stdout, _, err := run(t, "--config", cfg, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(stdout, "pipekit dev (commit=none") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestFetchArtifact_MissingPipelineID(t *testing.T) {
	cfg := isolate(t, "gitlab_token: secret\n")

	_, stderr, err := run(t, "--config", cfg, "fetch-artifact")
	if !errors.Is(err, clierrors.ErrMissingConfig) {
		t.Fatalf("error = %v, want ErrMissingConfig", err)
	}
	if !strings.Contains(stderr, "UPSTREAM_PIPELINE_ID not provided, aborting") {
		t.Errorf("stderr = %q", stderr)
	}
	if clierrors.ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", clierrors.ExitCode(err))
	}
}

func TestFetchArtifact_MissingToken(t *testing.T) {
	cfg := isolate(t, "")
	t.Setenv("UPSTREAM_PIPELINE_ID", "42")

	_, stderr, err := run(t, "--config", cfg, "fetch-artifact")
	if !errors.Is(err, clierrors.ErrMissingConfig) {
		t.Fatalf("error = %v, want ErrMissingConfig", err)
	}
	if !strings.Contains(stderr, "GITLAB_TOKEN not provided, aborting") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestFetchArtifact_GitLab(t *testing.T) {
	server := testutil.NewServer(t, map[string]http.HandlerFunc{
		"/api/v4/projects/123/pipelines/42/jobs": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("PRIVATE-TOKEN") != "secret" {
				testutil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "401 Unauthorized"})
				return
			}
			testutil.WriteJSON(w, http.StatusOK, []map[string]any{
				{"id": 6, "name": "test", "stage": "test", "status": "success"},
				{"id": 7, "name": "build:testing", "stage": "build", "status": "success"},
			})
		},
		"/api/v4/projects/123/jobs/7/artifacts/testingImage.tar": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "image bytes")
		},
	})

	output := filepath.Join(t.TempDir(), "out", "testingImage.tar")
	cfg := isolate(t, fmt.Sprintf("gitlab_url: %s\nproject_id: \"123\"\n", server.URL))
	t.Setenv("UPSTREAM_PIPELINE_ID", "42")
	t.Setenv("GITLAB_TOKEN", "secret")

	stdout, stderr, err := run(t, "--config", cfg, "fetch-artifact", "--output", output)
	if err != nil {
		t.Fatalf("fetch-artifact error = %v\nstderr: %s", err, stderr)
	}
	if !strings.HasPrefix(stdout, "Downloaded "+output+" (11 bytes, sha256 ") {
		t.Errorf("stdout = %q", stdout)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "image bytes" {
		t.Errorf("artifact = %q", got)
	}
}

func TestFetchArtifact_Unauthorized(t *testing.T) {
	server := testutil.NewServer(t, map[string]http.HandlerFunc{
		"/api/v4/projects/123/pipelines/42/jobs": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "401 Unauthorized"})
		},
	})

	cfg := isolate(t, fmt.Sprintf("gitlab_url: %s\nproject_id: \"123\"\n", server.URL))
	t.Setenv("UPSTREAM_PIPELINE_ID", "42")
	t.Setenv("GITLAB_TOKEN", "wrong")

	_, _, err := run(t, "--config", cfg, "fetch-artifact", "--output", filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, clierrors.ErrNotAuthenticated) {
		t.Fatalf("error = %v, want ErrNotAuthenticated", err)
	}
}

func fakeLint(t *testing.T) string {
	t.Helper()

	server := testutil.NewServer(t, map[string]http.HandlerFunc{
		"/api/v4/ci/lint": func(w http.ResponseWriter, r *http.Request) {
			var buf bytes.Buffer
			buf.ReadFrom(r.Body)
			if strings.Contains(buf.String(), "broken") {
				testutil.WriteJSON(w, http.StatusOK, map[string]any{
					"status": "invalid",
					"errors": []string{"jobs:build config should implement a script: or a trigger: keyword"},
				})
				return
			}
			testutil.WriteJSON(w, http.StatusOK, map[string]any{"status": "valid"})
		},
	})
	return server.URL
}

func TestLintCI(t *testing.T) {
	url := fakeLint(t)
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		".gitlab-ci.yml": "broken: true\n",
		"a.yml":          "build:\n  script: make\n",
		"b.yml":          "build:\n  image: broken\n",
		"notes.txt":      "broken",
	})
	cfg := isolate(t, fmt.Sprintf("gitlab_url: %s\nlint_dir: %s\n", url, dir))

	stdout, stderr, err := run(t, "--config", cfg, "lint-ci")
	if !errors.Is(err, clierrors.ErrChecksFailed) {
		t.Fatalf("error = %v, want ErrChecksFailed", err)
	}
	if clierrors.ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", clierrors.ExitCode(err))
	}

	want := "File b.yml returned the following errors:\njobs:build config should implement a script: or a trigger: keyword\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if strings.Contains(stderr, "Error:") {
		t.Errorf("failed checks should not be printed again, stderr = %q", stderr)
	}
}

func TestLintCI_ExplicitFiles(t *testing.T) {
	url := fakeLint(t)
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.yml": "build:\n  script: make\n",
		"b.yml": "build:\n  image: broken\n",
	})
	cfg := isolate(t, fmt.Sprintf("gitlab_url: %s\n", url))

	stdout, _, err := run(t, "--config", cfg, "lint-ci", "--dir", dir, "a.yml")
	if err != nil {
		t.Fatalf("lint-ci error = %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
}

func TestLintCI_AbsolutePath(t *testing.T) {
	url := fakeLint(t)
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"b.yml": "build:\n  image: broken\n",
	})
	cfg := isolate(t, fmt.Sprintf("gitlab_url: %s\n", url))
	path := filepath.Join(dir, "b.yml")

	stdout, _, err := run(t, "--config", cfg, "lint-ci", path)
	if !errors.Is(err, clierrors.ErrChecksFailed) {
		t.Fatalf("error = %v, want ErrChecksFailed", err)
	}
	if !strings.HasPrefix(stdout, "File "+path+" returned the following errors:\n") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestLintCI_PrecheckCatchesBadYAML(t *testing.T) {
	url := fakeLint(t)
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.yml": "build: [unclosed\n",
	})
	cfg := isolate(t, fmt.Sprintf("gitlab_url: %s\nlint_dir: %s\n", url, dir))

	stdout, _, err := run(t, "--config", cfg, "lint-ci")
	if !errors.Is(err, clierrors.ErrChecksFailed) {
		t.Fatalf("error = %v, want ErrChecksFailed", err)
	}
	if !strings.HasPrefix(stdout, "File a.yml returned the following errors:\n") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCheckLicenses(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"good.go":      "// Licensed under the Apache License, Version 2.0\npackage x\n",
		"bad.go":       "package x\n",
		"docs/read.md": "no header needed",
	})
	cfg := isolate(t, "")

	stdout, _, err := run(t, "--config", cfg, "check-licenses", "--dir", dir)
	if !errors.Is(err, clierrors.ErrChecksFailed) {
		t.Fatalf("error = %v, want ErrChecksFailed", err)
	}
	if stdout != "bad.go: missing-header\n" {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = run(t, "--config", cfg, "check-licenses", "--dir", dir, "--exclude", "bad.go")
	if err != nil {
		t.Fatalf("check-licenses with exclude error = %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
}

func TestCheckLicenses_ClearExcludes(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"good.go":       "// Licensed under the Apache License, Version 2.0\npackage x\n",
		"_tools/gen.go": "package tools\n",
	})

	cfg := isolate(t, "")
	stdout, _, err := run(t, "--config", cfg, "check-licenses", "--dir", dir)
	if err != nil || stdout != "" {
		t.Fatalf("default excludes: stdout = %q, error = %v", stdout, err)
	}

	cfg = isolate(t, "license_exclude: []\n")
	stdout, _, err = run(t, "--config", cfg, "check-licenses", "--dir", dir)
	if !errors.Is(err, clierrors.ErrChecksFailed) {
		t.Fatalf("error = %v, want ErrChecksFailed", err)
	}
	if stdout != "_tools/gen.go: missing-header\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCheckCommits(t *testing.T) {
	repo := testutil.SetupTestRepo(t)
	cfg := isolate(t, "")
	chdir(t, repo)

	testutil.CommitWithMessage(t, repo, "feat: add fetcher\n\nSigned-off-by: "+testutil.TestUser+"\n")
	stdout, _, err := run(t, "--config", cfg, "check-commits", "HEAD~1..HEAD")
	if err != nil {
		t.Fatalf("check-commits error = %v\nstdout: %s", err, stdout)
	}
	if !strings.Contains(stdout, "1 commits checked, 0 errors") {
		t.Errorf("stdout = %q", stdout)
	}

	testutil.CommitWithMessage(t, repo, "Added things")
	stdout, _, err = run(t, "--config", cfg, "check-commits", "--range", "HEAD~1..HEAD")
	if !errors.Is(err, clierrors.ErrChecksFailed) {
		t.Fatalf("error = %v, want ErrChecksFailed", err)
	}
	if !strings.Contains(stdout, "[signed-off-anywhere]") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCheckCommits_NotInRepo(t *testing.T) {
	cfg := isolate(t, "")
	chdir(t, t.TempDir())

	_, _, err := run(t, "--config", cfg, "check-commits")
	if !errors.Is(err, clierrors.ErrNotInGitRepo) {
		t.Fatalf("error = %v, want ErrNotInGitRepo", err)
	}
}

func TestConfig_MasksSecrets(t *testing.T) {
	cfg := isolate(t, "job_name: build:custom\nslack_webhook: https://hooks.example.com/x\n")
	t.Setenv("GITLAB_TOKEN", "glpat-secret")

	stdout, _, err := run(t, "--config", cfg, "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if strings.Contains(stdout, "glpat-secret") || strings.Contains(stdout, "hooks.example.com") {
		t.Errorf("secret leaked:\n%s", stdout)
	}

	for _, want := range []string{"gitlab_token", "(env)", "build:custom", "(local)", "(default)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestFlagOverridesConfig(t *testing.T) {
	cfg := isolate(t, "job_name: from-file\n")

	stdout, _, err := run(t, "--config", cfg, "config")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "from-file") {
		t.Errorf("stdout = %q", stdout)
	}

	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	fetch, _, err := cmd.Find([]string{"fetch-artifact"})
	if err != nil {
		t.Fatal(err)
	}
	if err := fetch.Flags().Set("job-name", "from-flag"); err != nil {
		t.Fatal(err)
	}
	overrides := flagOverrides(fetch.Flags())
	if overrides["job_name"] != "from-flag" {
		t.Errorf("overrides = %v", overrides)
	}
	if _, ok := overrides["output_path"]; ok {
		t.Errorf("unchanged flag should not override: %v", overrides)
	}
}

func TestDetectRepository(t *testing.T) {
	repo := testutil.SetupTestRepo(t)
	testutil.Git(t, repo, "remote", "add", "origin", "git@github.com:mendersoftware/mender.git")
	cfg := isolate(t, "provider: github\n")
	chdir(t, repo)

	a := &app{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:    config.NewDefaultResolver(cfg, io.Discard).Resolve(),
	}
	a.detectRepository()

	if got, src := a.cfg.GetWithSource(config.KeyGitHubRepo); got != "mendersoftware/mender" || src != config.SourceGit {
		t.Errorf("github_repo = %q (%s)", got, src)
	}
}

func TestLintCI_NotifiesWebhookOnFailure(t *testing.T) {
	url := fakeLint(t)

	var events []map[string]any
	hook := testutil.NewServer(t, map[string]http.HandlerFunc{
		"/hook": func(w http.ResponseWriter, r *http.Request) {
			var event map[string]any
			if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
				t.Errorf("decode event: %v", err)
			}
			events = append(events, event)
		},
	})

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.yml": "build:\n  script: make\n",
		"b.yml": "build:\n  image: broken\n",
	})
	cfg := isolate(t, fmt.Sprintf("gitlab_url: %s\nwebhook_url: %s/hook\n", url, hook.URL))
	t.Setenv("CI_PIPELINE_URL", "https://gitlab.com/p/-/pipelines/42")

	if _, _, err := run(t, "--config", cfg, "lint-ci", "--dir", dir, "a.yml"); err != nil {
		t.Fatalf("lint-ci a.yml error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("passing lint should stay below the notify level, got %v", events)
	}

	if _, _, err := run(t, "--config", cfg, "lint-ci", "--dir", dir); !errors.Is(err, clierrors.ErrChecksFailed) {
		t.Fatalf("lint-ci error = %v, want ErrChecksFailed", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0]["type"] != "lint_failed" || events[0]["command"] != "lint-ci" {
		t.Errorf("event = %v", events[0])
	}
	if events[0]["pipeline_url"] != "https://gitlab.com/p/-/pipelines/42" {
		t.Errorf("pipeline_url = %v", events[0]["pipeline_url"])
	}
}

func TestInvalidNotifyLevel(t *testing.T) {
	cfg := isolate(t, "notify_level: loud\n")

	_, _, err := run(t, "--config", cfg, "version")
	if !errors.Is(err, clierrors.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir (Go 1.24+), and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
