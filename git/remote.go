package git

import (
	"fmt"
	"strings"
)

// Hosting providers recognised from remote URLs.
const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
)

// Remote describes where a git remote is hosted.
type Remote struct {
	Host     string
	Provider string // ProviderGitHub, ProviderGitLab, or empty when unknown
	Path     string // "owner/repo"; GitLab paths may hold nested groups
}

// RemoteURL returns the URL of the named remote.
func (g *Context) RemoteURL(remote string) (string, error) {
	url, err := g.runGit("remote", "get-url", remote)
	if err != nil {
		return "", &Error{Op: "get remote URL", Cmd: "git remote get-url " + remote, Err: err}
	}
	return url, nil
}

// ParseRemote extracts the host and repository path from an SSH
// (git@host:owner/repo.git) or HTTP(S) remote URL.
func ParseRemote(remoteURL string) (Remote, error) {
	var host, path string

	switch {
	case strings.HasPrefix(remoteURL, "git@"):
		var ok bool
		host, path, ok = strings.Cut(strings.TrimPrefix(remoteURL, "git@"), ":")
		if !ok {
			return Remote{}, fmt.Errorf("invalid SSH remote %q", remoteURL)
		}
	case strings.Contains(remoteURL, "://"):
		_, rest, _ := strings.Cut(remoteURL, "://")
		host, path, _ = strings.Cut(rest, "/")
		if i := strings.LastIndex(host, "@"); i >= 0 {
			host = host[i+1:]
		}
	default:
		return Remote{}, fmt.Errorf("unsupported remote %q", remoteURL)
	}

	path = strings.Trim(strings.TrimSuffix(path, ".git"), "/")
	if host == "" || strings.Count(path, "/") < 1 {
		return Remote{}, fmt.Errorf("invalid repository path in remote %q", remoteURL)
	}

	return Remote{Host: host, Provider: detectProvider(host), Path: path}, nil
}

func detectProvider(host string) string {
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "github"):
		return ProviderGitHub
	case strings.Contains(host, "gitlab"):
		return ProviderGitLab
	}
	return ""
}
