package commitcheck

import (
	"bytes"
	"strings"
	"testing"

	"github.com/randalmurphal/pipekit/git"
	"github.com/randalmurphal/pipekit/testutil"
)

const signOff = "Signed-off-by: Jane Doe <jane@example.com>"

func TestParse(t *testing.T) {
	m := Parse("feat(cli)!: add lint command\r\n\r\nBody text\r\n\r\n" + signOff + "\n\n")

	if !m.Parsed {
		t.Fatal("Parsed = false")
	}
	if m.Type != "feat" || m.Scope != "cli" || !m.Breaking || m.Subject != "add lint command" {
		t.Errorf("Parse() = %+v", m)
	}
	if !m.HasBody() {
		t.Error("HasBody() = false")
	}
	if last := m.Lines()[len(m.Lines())-1]; last != signOff {
		t.Errorf("last line = %q", last)
	}

	if Parse("just words").Parsed {
		t.Error("plain header should not parse")
	}
}

func rulesHit(findings []Finding) []string {
	var names []string
	for _, f := range findings {
		names = append(names, f.Rule)
	}
	return names
}

func TestChecker_Check(t *testing.T) {
	longHeader := "fix: " + strings.Repeat("a", 100)
	longBody := strings.Repeat("b", 101)

	tests := []struct {
		name string
		msg  string
		want []string
	}{
		{
			name: "valid",
			msg:  "feat: add artifact fetcher\n\n" + signOff,
		},
		{
			name: "valid sentence case with scope",
			msg:  "fix(lint): Handle empty files\n\nDetails.\n\n" + signOff,
		},
		{
			name: "missing sign-off",
			msg:  "feat: add artifact fetcher",
			want: []string{"signed-off-anywhere"},
		},
		{
			name: "sign-off without email",
			msg:  "feat: add artifact fetcher\n\nSigned-off-by: Jane Doe",
			want: []string{"signed-off-anywhere"},
		},
		{
			name: "bad header",
			msg:  "Add artifact fetcher\n\n" + signOff,
			want: []string{"header-format"},
		},
		{
			name: "unknown type",
			msg:  "feature: add thing\n\n" + signOff,
			want: []string{"type-enum"},
		},
		{
			name: "upper-case type",
			msg:  "FEAT: add thing\n\n" + signOff,
			want: []string{"type-case"},
		},
		{
			name: "empty subject",
			msg:  "fix: \n\n" + signOff,
			want: []string{"subject-empty"},
		},
		{
			name: "full stop",
			msg:  "fix: add thing.\n\n" + signOff,
			want: []string{"subject-full-stop"},
		},
		{
			name: "mixed case subject",
			msg:  "fix: add Some Thing\n\n" + signOff,
			want: []string{"subject-case"},
		},
		{
			name: "sentence case keeps proper nouns",
			msg:  "feat: Add GitHub artifact source\n\n" + signOff,
		},
		{
			name: "quoted words ignored for case",
			msg:  "fix: handle `PIPEKIT_Debug` and \"Foo\"\n\n" + signOff,
		},
		{
			name: "leading digit",
			msg:  "chore: 2FA Support\n\n" + signOff,
		},
		{
			name: "header too long",
			msg:  longHeader + "\n\n" + signOff,
			want: []string{"header-max-length"},
		},
		{
			name: "no blank line before body",
			msg:  "fix: add thing\nbody starts here\n\n" + signOff,
			want: []string{"body-leading-blank"},
		},
		{
			name: "long body line",
			msg:  "fix: add thing\n\n" + longBody + "\n\n" + signOff,
			want: []string{"body-max-line-length"},
		},
		{
			name: "long url line is fine",
			msg:  "fix: add thing\n\nhttps://example.com/" + longBody + "\n\n" + signOff,
		},
		{
			name: "cherry-pick at end",
			msg:  "fix: add thing\n\n" + signOff + "\n(cherry picked from commit 0123456789abcdef)",
		},
		{
			name: "cherry-pick not at end",
			msg:  "fix: add thing\n\n(cherry picked from commit 0123456789abcdef)\n" + signOff,
			want: []string{"cherry-pick-at-end"},
		},
	}

	checker := NewChecker(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rulesHit(checker.Check(tt.msg))
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Check() rules = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChecker_Severity(t *testing.T) {
	findings := NewChecker(nil).Check("fix: add Some Thing\n\n" + signOff)
	if len(findings) != 1 || findings[0].Severity != SeverityWarning {
		t.Fatalf("findings = %+v", findings)
	}

	result := CommitResult{Findings: findings}
	if result.Errors() != 0 || result.Warnings() != 1 {
		t.Errorf("Errors() = %d, Warnings() = %d", result.Errors(), result.Warnings())
	}
}

func TestIgnored(t *testing.T) {
	ignored := []string{
		"Merge branch 'feature' into master",
		"Merge branch 'hotfix'",
		"Merge 1a2b3c4 into 5d6e7f8",
		"Merge tag 'v3.1.0'",
		"Merge pull request #12 from mendersoftware/x",
		"Merge remote-tracking branch 'origin/master'",
		"Revert \"feat: add thing\"",
		"fixup! feat: add thing",
		"squash! feat: add thing",
		"Automatic merge from master",
	}
	for _, msg := range ignored {
		if !Ignored(msg) {
			t.Errorf("Ignored(%q) = false", msg)
		}
	}
	if Ignored("feat: merge configs") {
		t.Error("regular commit should not be ignored")
	}
}

func TestCheckCommit_Merge(t *testing.T) {
	result := NewChecker(nil).CheckCommit(git.Commit{
		SHA:     "abc",
		Parents: []string{"p1", "p2"},
		Message: "whatever",
	})
	if !result.Ignored || len(result.Findings) != 0 {
		t.Errorf("CheckCommit(merge) = %+v", result)
	}
}

func TestCheckRange(t *testing.T) {
	dir := testutil.SetupTestRepo(t)
	base := testutil.GetCurrentBranch(t, dir)

	testutil.CreateBranch(t, dir, "feature")
	testutil.CommitWithMessage(t, dir, "feat: add artifact fetcher\n\nSigned-off-by: "+testutil.TestUser)
	testutil.CommitWithMessage(t, dir, "Add lint runner")
	testutil.SwitchBranch(t, dir, base)
	testutil.MergeBranch(t, dir, "feature")

	repo, err := git.NewContext(dir)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}

	report, err := NewChecker(repo).CheckRange("HEAD~1..HEAD")
	if err != nil {
		t.Fatalf("CheckRange failed: %v", err)
	}

	// Merge commit plus the two feature commits.
	if len(report.Commits) != 3 {
		t.Fatalf("checked %d commits, want 3", len(report.Commits))
	}
	if !report.HasErrors() || report.ExitCode() != 1 {
		t.Error("report should fail")
	}

	byHeader := map[string]CommitResult{}
	for _, c := range report.Commits {
		byHeader[c.Commit.Header()] = c
	}
	if !byHeader["Merge feature"].Ignored {
		t.Error("merge commit should be ignored")
	}
	if len(byHeader["feat: add artifact fetcher"].Findings) != 0 {
		t.Errorf("good commit findings = %+v", byHeader["feat: add artifact fetcher"].Findings)
	}
	bad := byHeader["Add lint runner"]
	if got := rulesHit(bad.Findings); strings.Join(got, ",") != "header-format,signed-off-anywhere" {
		t.Errorf("bad commit rules = %v", got)
	}

	var out bytes.Buffer
	report.Write(&out)
	if !strings.Contains(out.String(), "✖   Signed-off-by: is missing in the commit message [signed-off-anywhere]") {
		t.Errorf("output missing finding:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "3 commits checked, 2 errors, 0 warnings") {
		t.Errorf("output missing summary:\n%s", out.String())
	}
}

func TestCheckRange_BadRevision(t *testing.T) {
	repo, err := git.NewContext(testutil.SetupTestRepo(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewChecker(repo).CheckRange("no-such-branch..HEAD"); err == nil {
		t.Error("CheckRange(bad range) should fail")
	}
}
