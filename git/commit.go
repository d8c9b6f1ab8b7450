package git

import (
	"fmt"
	"strings"
)

// Separators used in the git log format. Unit separator between fields,
// record separator between commits.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	logFormat = "%H%x1f%P%x1f%B%x1e"
)

// Commit is a commit as read from git log.
type Commit struct {
	SHA     string
	Parents []string
	Message string // Raw message, trailing newlines removed
}

// ShortSHA returns the first 12 characters of the SHA.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 12 {
		return c.SHA[:12]
	}
	return c.SHA
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Header returns the first line of the message.
func (c Commit) Header() string {
	header, _, _ := strings.Cut(c.Message, "\n")
	return header
}

// parseLog splits git log output produced with logFormat.
func parseLog(out string) []Commit {
	var commits []Commit
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 3)
		if len(fields) != 3 {
			continue
		}
		commits = append(commits, Commit{
			SHA:     fields[0],
			Parents: strings.Fields(fields[1]),
			Message: strings.TrimRight(fields[2], "\n"),
		})
	}
	return commits
}

// CommitType represents the type of change in a commit.
type CommitType string

const (
	CommitTypeBuild    CommitType = "build"
	CommitTypeChore    CommitType = "chore"
	CommitTypeCI       CommitType = "ci"
	CommitTypeDocs     CommitType = "docs"
	CommitTypeFeat     CommitType = "feat"
	CommitTypeFix      CommitType = "fix"
	CommitTypePerf     CommitType = "perf"
	CommitTypeRefactor CommitType = "refactor"
	CommitTypeRevert   CommitType = "revert"
	CommitTypeStyle    CommitType = "style"
	CommitTypeTest     CommitType = "test"
)

// CommitTypes lists every conventional commit type, sorted.
func CommitTypes() []CommitType {
	return []CommitType{
		CommitTypeBuild,
		CommitTypeChore,
		CommitTypeCI,
		CommitTypeDocs,
		CommitTypeFeat,
		CommitTypeFix,
		CommitTypePerf,
		CommitTypeRefactor,
		CommitTypeRevert,
		CommitTypeStyle,
		CommitTypeTest,
	}
}

// CommitMessage represents a structured commit message following conventional commits.
type CommitMessage struct {
	Type        CommitType // Required: type of change (feat, fix, etc.)
	Scope       string     // Optional: area of codebase affected
	Subject     string     // Required: short description (imperative mood)
	Body        string     // Optional: detailed explanation
	Changelog   string     // Optional: "Changelog:" trailer value
	SignedOffBy string     // Optional: "Name <email>" for the sign-off trailer
	Breaking    bool       // Whether this is a breaking change
}

// NewCommitMessage creates a commit message.
func NewCommitMessage(typ CommitType, subject string) *CommitMessage {
	return &CommitMessage{
		Type:    typ,
		Subject: subject,
	}
}

// WithScope adds a scope to the commit message.
func (c *CommitMessage) WithScope(scope string) *CommitMessage {
	c.Scope = scope
	return c
}

// WithBody adds a body to the commit message.
func (c *CommitMessage) WithBody(body string) *CommitMessage {
	c.Body = body
	return c
}

// WithChangelog adds a Changelog trailer.
func (c *CommitMessage) WithChangelog(entry string) *CommitMessage {
	c.Changelog = entry
	return c
}

// WithSignOff adds a Signed-off-by trailer for "Name <email>".
func (c *CommitMessage) WithSignOff(identity string) *CommitMessage {
	c.SignedOffBy = identity
	return c
}

// WithBreaking marks this as a breaking change.
func (c *CommitMessage) WithBreaking() *CommitMessage {
	c.Breaking = true
	return c
}

// String formats the commit message following conventional commit format.
func (c *CommitMessage) String() string {
	var b strings.Builder

	// Subject line: type(scope)!: subject
	b.WriteString(string(c.Type))
	if c.Scope != "" {
		b.WriteString("(")
		b.WriteString(c.Scope)
		b.WriteString(")")
	}
	if c.Breaking {
		b.WriteString("!")
	}
	b.WriteString(": ")
	b.WriteString(c.Subject)

	if c.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(wrapText(c.Body, 72))
	}

	var footer []string
	if c.Changelog != "" {
		footer = append(footer, fmt.Sprintf("Changelog: %s", c.Changelog))
	}
	if c.SignedOffBy != "" {
		footer = append(footer, fmt.Sprintf("Signed-off-by: %s", c.SignedOffBy))
	}

	if len(footer) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(footer, "\n"))
	}

	return b.String()
}

// wrapText wraps text at the specified width, preserving existing newlines.
func wrapText(text string, width int) string {
	var result []string

	for _, paragraph := range strings.Split(text, "\n") {
		if len(paragraph) <= width {
			result = append(result, paragraph)
			continue
		}

		var line string
		for _, word := range strings.Fields(paragraph) {
			if line == "" {
				line = word
			} else if len(line)+1+len(word) > width {
				result = append(result, line)
				line = word
			} else {
				line += " " + word
			}
		}
		if line != "" {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
