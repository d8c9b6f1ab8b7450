package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestUser is the identity used for commits in test repositories.
const TestUser = "Test User <test@test.com>"

// gitEnv pins the identity and keeps the user's git configuration out of
// test repositories.
var gitEnv = []string{
	"GIT_AUTHOR_NAME=Test User",
	"GIT_AUTHOR_EMAIL=test@test.com",
	"GIT_COMMITTER_NAME=Test User",
	"GIT_COMMITTER_EMAIL=test@test.com",
	"GIT_CONFIG_GLOBAL=" + os.DevNull,
	"GIT_CONFIG_NOSYSTEM=1",
}

// Git runs git in dir and returns its trimmed stdout. The test fails if
// git exits non-zero.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-c", "commit.gpgsign=false"}, args...)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), gitEnv...)

	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(string(out))
}

// SetupTestRepo creates a repository in a temporary directory with one
// signed-off commit adding README.md, and returns its path.
func SetupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	Git(t, dir, "init", "--initial-branch=master")

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repository\n"), 0o644); err != nil {
		t.Fatalf("write README.md: %v", err)
	}
	Git(t, dir, "add", "README.md")
	Git(t, dir, "commit", "-m", "chore: initial commit\n\nSigned-off-by: "+TestUser)

	return dir
}

// CommitWithMessage creates an empty commit whose message is kept verbatim.
func CommitWithMessage(t *testing.T, repoDir, message string) {
	t.Helper()
	Git(t, repoDir, "commit", "--allow-empty", "--cleanup=verbatim", "-m", message)
}

// CreateBranch creates branch and checks it out.
func CreateBranch(t *testing.T, repoDir, branch string) {
	t.Helper()
	Git(t, repoDir, "checkout", "-q", "-b", branch)
}

// SwitchBranch checks out an existing branch.
func SwitchBranch(t *testing.T, repoDir, branch string) {
	t.Helper()
	Git(t, repoDir, "checkout", "-q", branch)
}

// MergeBranch merges branch with a merge commit, even when a fast-forward
// is possible.
func MergeBranch(t *testing.T, repoDir, branch string) {
	t.Helper()
	Git(t, repoDir, "merge", "--no-ff", "-m", "Merge "+branch, branch)
}

// GetCurrentBranch returns the checked out branch.
func GetCurrentBranch(t *testing.T, repoDir string) string {
	t.Helper()
	return Git(t, repoDir, "branch", "--show-current")
}
