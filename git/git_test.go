package git

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func newMockContext(t *testing.T, runner *MockRunner) *Context {
	t.Helper()
	runner.AddOutput(".git", nil) // git rev-parse --git-dir
	ctx, err := NewContext(t.TempDir(), WithRunner(runner))
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	return ctx
}

func TestNewContext_NotGitRepo(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutputError("", "fatal: not a git repository", nil)

	_, err := NewContext(t.TempDir(), WithRunner(runner))
	if !errors.Is(err, ErrNotGitRepo) {
		t.Errorf("NewContext() = %v, want ErrNotGitRepo", err)
	}
}

func TestCommits(t *testing.T) {
	runner := NewSequentialMockRunner()
	ctx := newMockContext(t, runner)

	out := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\x1fbbbb\x1ffeat: add thing\n\nBody line\n\nSigned-off-by: A <a@b.c>\n\x1e\n" +
		"cccccccccccccccccccccccccccccccccccccccc\x1fdddd eeee\x1fMerge branch 'x'\n\x1e"
	runner.AddOutput(out, nil)

	commits, err := ctx.Commits("origin/master..HEAD")
	if err != nil {
		t.Fatalf("Commits failed: %v", err)
	}

	if got := runner.CallString(1); got != "git log --format=%H%x1f%P%x1f%B%x1e origin/master..HEAD --" {
		t.Errorf("command = %q", got)
	}
	if len(commits) != 2 {
		t.Fatalf("got %d commits, want 2", len(commits))
	}

	first := commits[0]
	if first.Header() != "feat: add thing" {
		t.Errorf("Header() = %q", first.Header())
	}
	if first.Message != "feat: add thing\n\nBody line\n\nSigned-off-by: A <a@b.c>" {
		t.Errorf("Message = %q", first.Message)
	}
	if first.IsMerge() {
		t.Error("first commit is not a merge")
	}
	if first.ShortSHA() != "aaaaaaaaaaaa" {
		t.Errorf("ShortSHA() = %q", first.ShortSHA())
	}

	second := commits[1]
	if !second.IsMerge() {
		t.Error("second commit should be a merge")
	}
	if !reflect.DeepEqual(second.Parents, []string{"dddd", "eeee"}) {
		t.Errorf("Parents = %v", second.Parents)
	}
}

func TestCommits_BadRevision(t *testing.T) {
	runner := NewSequentialMockRunner()
	ctx := newMockContext(t, runner)
	runner.AddOutputError("", "fatal: ambiguous argument 'nope': unknown revision or path not in the working tree.", nil)

	_, err := ctx.Commits("nope")
	if !errors.Is(err, ErrBadRevision) {
		t.Errorf("Commits() = %v, want ErrBadRevision", err)
	}

	if _, err := ctx.Commits(""); !errors.Is(err, ErrBadRevision) {
		t.Errorf("Commits(\"\") = %v, want ErrBadRevision", err)
	}
}

func TestRoot(t *testing.T) {
	runner := NewSequentialMockRunner()
	ctx := newMockContext(t, runner)
	runner.AddOutput("/src/repo", nil)

	root, err := ctx.Root()
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}
	if root != "/src/repo" {
		t.Errorf("Root() = %q", root)
	}
}

func TestCommitMessage_String(t *testing.T) {
	tests := []struct {
		name string
		msg  *CommitMessage
		want string
	}{
		{
			name: "header only",
			msg:  NewCommitMessage(CommitTypeFix, "handle empty pipeline"),
			want: "fix: handle empty pipeline",
		},
		{
			name: "scope and breaking",
			msg:  NewCommitMessage(CommitTypeFeat, "drop v1 api").WithScope("api").WithBreaking(),
			want: "feat(api)!: drop v1 api",
		},
		{
			name: "body and trailers",
			msg: NewCommitMessage(CommitTypeCI, "lint templates").
				WithBody("Adds a job.").
				WithChangelog("None").
				WithSignOff("Jane Doe <jane@example.com>"),
			want: "ci: lint templates\n\nAdds a job.\n\nChangelog: None\nSigned-off-by: Jane Doe <jane@example.com>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	long := strings.Repeat("word ", 30)
	for _, line := range strings.Split(wrapText(long, 72), "\n") {
		if len(line) > 72 {
			t.Errorf("line longer than 72: %q", line)
		}
	}
	if got := wrapText("short\nlines", 72); got != "short\nlines" {
		t.Errorf("wrapText() = %q", got)
	}
}

func TestCommitTypes(t *testing.T) {
	types := CommitTypes()
	if len(types) != 11 {
		t.Errorf("CommitTypes() has %d entries, want 11", len(types))
	}
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Errorf("CommitTypes() not sorted at %d: %s >= %s", i, types[i-1], types[i])
		}
	}
}
