package config

import (
	"io"
	"strconv"
	"strings"
	"time"

	clierrors "github.com/randalmurphal/pipekit/errors"
	pkhttp "github.com/randalmurphal/pipekit/http"
)

// Configuration keys.
const (
	KeyProvider           = "provider"
	KeyGitLabURL          = "gitlab_url"
	KeyGitLabToken        = "gitlab_token"
	KeyGitHubURL          = "github_url"
	KeyGitHubToken        = "github_token"
	KeyGitHubRepo         = "github_repo"
	KeyProjectID          = "project_id"
	KeyPipelineID         = "upstream_pipeline_id"
	KeyJobName            = "job_name"
	KeyArtifactPath       = "artifact_path"
	KeyOutputPath         = "output_path"
	KeyLintDir            = "lint_dir"
	KeyLintExclude        = "lint_exclude"
	KeyLintProjectID      = "lint_project_id"
	KeyLintPrecheck       = "lint_precheck"
	KeyInsecureSkipVerify = "insecure_skip_verify"
	KeyRetries            = "retries"
	KeyTimeout            = "timeout"
	KeyCommitRange        = "commit_range"
	KeyLicenseDir         = "license_dir"
	KeyLicenseMarker      = "license_marker"
	KeyLicenseInclude     = "license_include"
	KeyLicenseExclude     = "license_exclude"
	KeySlackWebhook       = "slack_webhook"
	KeySlackChannel       = "slack_channel"
	KeyWebhookURL         = "webhook_url"
	KeyNotifyLevel        = "notify_level"
)

// Provider names accepted by the provider key.
const (
	ProviderGitLab = "gitlab"
	ProviderGitHub = "github"
)

// EnvPrefix is the prefix for every key's environment variable.
const EnvPrefix = "PIPEKIT_"

// Defaults returns the built-in defaults. The artifact defaults follow the
// upstream pipeline this tool was written for.
func Defaults() map[string]string {
	return map[string]string{
		KeyProvider:           ProviderGitLab,
		KeyGitLabURL:          pkhttp.DefaultGitLabURL,
		KeyProjectID:          "13172542",
		KeyJobName:            "build:testing",
		KeyArtifactPath:       "testingImage.tar",
		KeyOutputPath:         "/tmp/mendertesting/testingImage.tar",
		KeyLintDir:            ".",
		KeyLintExclude:        ".gitlab-ci.yml,.gitlab-ci-template-k8s-test.yml",
		KeyLintPrecheck:       "true",
		KeyInsecureSkipVerify: "false",
		KeyRetries:            "0",
		KeyTimeout:            pkhttp.DefaultTimeout.String(),
		KeyCommitRange:        "HEAD~1..HEAD",
		KeyLicenseDir:         ".",
		KeyLicenseMarker:      "Licensed under the Apache License, Version 2.0",
		KeyLicenseInclude:     "**/*.go,**/*.py",
		KeyLicenseExclude:     "vendor/**,_*/**,.git/**",
		KeyNotifyLevel:        "warning",
	}
}

// AllKeys lists every key the CLI understands.
func AllKeys() []string {
	return []string{
		KeyProvider, KeyGitLabURL, KeyGitLabToken, KeyGitHubURL, KeyGitHubToken,
		KeyGitHubRepo, KeyProjectID, KeyPipelineID, KeyJobName, KeyArtifactPath,
		KeyOutputPath, KeyLintDir, KeyLintExclude, KeyLintProjectID, KeyLintPrecheck,
		KeyInsecureSkipVerify, KeyRetries, KeyTimeout, KeyCommitRange, KeyLicenseDir,
		KeyLicenseMarker, KeyLicenseInclude, KeyLicenseExclude, KeySlackWebhook,
		KeySlackChannel, KeyWebhookURL, KeyNotifyLevel,
	}
}

// EnvAliases returns the unprefixed environment variables honoured per key.
func EnvAliases() map[string][]string {
	return map[string][]string{
		KeyPipelineID:   {"UPSTREAM_PIPELINE_ID"},
		KeyGitLabToken:  {"GITLAB_TOKEN"},
		KeyGitHubToken:  {"GITHUB_TOKEN", "GH_TOKEN"},
		KeySlackWebhook: {"SLACK_WEBHOOK_URL"},
	}
}

// envVarFor names the variable a user is most likely to set for key.
func envVarFor(key string) string {
	if aliases := EnvAliases()[key]; len(aliases) > 0 {
		return aliases[0]
	}
	return EnvPrefix + strings.ToUpper(key)
}

// NewDefaultResolver returns the resolver used by the pipekit CLI.
// explicitPath replaces the .pipekit.yaml lookup when non-empty.
func NewDefaultResolver(explicitPath string, errWriter io.Writer) *Resolver {
	return NewResolver(ResolverConfig{
		EnvPrefix:       EnvPrefix,
		EnvAliases:      EnvAliases(),
		GlobalConfigDir: "pipekit",
		LocalConfigName: ".pipekit.yaml",
		ExplicitPath:    explicitPath,
		Defaults:        Defaults(),
		ValidKeys:       AllKeys(),
		ErrWriter:       errWriter,
	})
}

// ClientSettings are the transport settings shared by API clients.
type ClientSettings struct {
	BaseURL            string
	InsecureSkipVerify bool
	Retries            int
	Timeout            time.Duration
}

// Options converts the settings for the http package.
func (s ClientSettings) Options() pkhttp.ClientOptions {
	return pkhttp.ClientOptions{
		BaseURL:            s.BaseURL,
		Timeout:            s.Timeout,
		InsecureSkipVerify: s.InsecureSkipVerify,
		Retries:            s.Retries,
	}
}

// FetchSettings configures the artifact fetcher.
type FetchSettings struct {
	Provider     string
	Token        string
	ProjectID    string
	Repository   string
	PipelineID   int64
	JobName      string
	ArtifactPath string
	OutputPath   string
	Client       ClientSettings
}

// LintSettings configures the CI lint runner.
type LintSettings struct {
	Dir       string
	Excludes  []string
	ProjectID string
	Token     string
	Precheck  bool
	Client    ClientSettings
}

// CommitSettings configures the commit message checker.
type CommitSettings struct {
	Range string
}

// LicenseSettings configures the license header checker.
type LicenseSettings struct {
	Dir     string
	Marker  string
	Include []string
	Exclude []string
}

// NotifySettings configures failure notifications.
type NotifySettings struct {
	SlackWebhook string
	SlackChannel string
	WebhookURL   string
	Level        string // Minimum severity sent to Slack and webhooks
}

// FetchSettings validates and returns the artifact fetcher settings.
// The pipeline ID is checked before the token.
func (c *Resolved) FetchSettings() (FetchSettings, error) {
	provider := strings.ToLower(c.Get(KeyProvider))
	s := FetchSettings{
		Provider:     provider,
		ProjectID:    c.Get(KeyProjectID),
		Repository:   c.Get(KeyGitHubRepo),
		JobName:      c.Get(KeyJobName),
		ArtifactPath: c.Get(KeyArtifactPath),
		OutputPath:   c.Get(KeyOutputPath),
	}

	rawID := strings.TrimSpace(c.Get(KeyPipelineID))
	if rawID == "" {
		return s, clierrors.NewMissingConfigError(KeyPipelineID, envVarFor(KeyPipelineID))
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return s, clierrors.NewInvalidConfigError(KeyPipelineID, rawID, "must be a positive integer")
	}
	s.PipelineID = id

	var tokenKey string
	switch provider {
	case ProviderGitLab:
		tokenKey = KeyGitLabToken
		if s.ProjectID == "" {
			return s, clierrors.NewMissingConfigError(KeyProjectID, "")
		}
	case ProviderGitHub:
		tokenKey = KeyGitHubToken
		if s.Repository == "" {
			return s, clierrors.NewMissingConfigError(KeyGitHubRepo, "")
		}
	default:
		return s, clierrors.NewInvalidConfigError(KeyProvider, provider, "must be gitlab or github")
	}

	s.Token = c.Get(tokenKey)
	if s.Token == "" {
		return s, clierrors.NewMissingConfigError(tokenKey, envVarFor(tokenKey))
	}

	for _, key := range []string{KeyJobName, KeyArtifactPath, KeyOutputPath} {
		if c.Get(key) == "" {
			return s, clierrors.NewMissingConfigError(key, "")
		}
	}

	s.Client, err = c.clientSettings(provider)
	return s, err
}

// LintSettings validates and returns the CI lint settings.
// The GitLab token is optional for the lint endpoint.
func (c *Resolved) LintSettings() (LintSettings, error) {
	s := LintSettings{
		Dir:       c.Get(KeyLintDir),
		Excludes:  SplitList(c.Get(KeyLintExclude)),
		ProjectID: c.Get(KeyLintProjectID),
		Token:     c.Get(KeyGitLabToken),
	}
	if s.Dir == "" {
		s.Dir = "."
	}

	var err error
	if s.Precheck, err = c.boolValue(KeyLintPrecheck); err != nil {
		return s, err
	}
	s.Client, err = c.clientSettings(ProviderGitLab)
	return s, err
}

// CommitSettings returns the commit checker settings.
func (c *Resolved) CommitSettings() (CommitSettings, error) {
	s := CommitSettings{Range: c.Get(KeyCommitRange)}
	if s.Range == "" {
		return s, clierrors.NewMissingConfigError(KeyCommitRange, "")
	}
	return s, nil
}

// LicenseSettings returns the license checker settings.
func (c *Resolved) LicenseSettings() (LicenseSettings, error) {
	s := LicenseSettings{
		Dir:     c.Get(KeyLicenseDir),
		Marker:  c.Get(KeyLicenseMarker),
		Include: SplitList(c.Get(KeyLicenseInclude)),
		Exclude: SplitList(c.Get(KeyLicenseExclude)),
	}
	if s.Dir == "" {
		s.Dir = "."
	}
	if s.Marker == "" {
		return s, clierrors.NewMissingConfigError(KeyLicenseMarker, "")
	}
	return s, nil
}

// NotifySettings returns the notification settings. All fields are optional.
func (c *Resolved) NotifySettings() NotifySettings {
	return NotifySettings{
		SlackWebhook: c.Get(KeySlackWebhook),
		SlackChannel: c.Get(KeySlackChannel),
		WebhookURL:   c.Get(KeyWebhookURL),
		Level:        c.Get(KeyNotifyLevel),
	}
}

func (c *Resolved) clientSettings(provider string) (ClientSettings, error) {
	var s ClientSettings
	var err error

	if provider == ProviderGitHub {
		s.BaseURL = c.Get(KeyGitHubURL)
	} else {
		s.BaseURL = c.Get(KeyGitLabURL)
	}

	if s.InsecureSkipVerify, err = c.boolValue(KeyInsecureSkipVerify); err != nil {
		return s, err
	}

	if raw := c.Get(KeyRetries); raw != "" {
		s.Retries, err = strconv.Atoi(raw)
		if err != nil || s.Retries < 0 {
			return s, clierrors.NewInvalidConfigError(KeyRetries, raw, "must be a non-negative integer")
		}
	}

	if raw := c.Get(KeyTimeout); raw != "" {
		s.Timeout, err = time.ParseDuration(raw)
		if err != nil || s.Timeout <= 0 {
			return s, clierrors.NewInvalidConfigError(KeyTimeout, raw, "must be a positive duration such as 30s or 5m")
		}
	}

	return s, nil
}

func (c *Resolved) boolValue(key string) (bool, error) {
	raw := c.Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, clierrors.NewInvalidConfigError(key, raw, "must be true or false")
	}
	return v, nil
}

// ListNone sets a list key to an empty list. An empty value means unset,
// so it cannot override a lower layer or a default.
const ListNone = "none"

// SplitList splits a comma separated value, dropping empty entries. It
// returns nil for an empty value and an empty, non-nil list for ListNone.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == ListNone {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
