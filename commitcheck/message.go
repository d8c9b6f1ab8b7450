package commitcheck

import (
	"regexp"
	"strings"
)

// headerPattern matches "type(scope)!: subject".
var headerPattern = regexp.MustCompile(`^(\w+)(?:\(([^()\r\n]*)\))?(!)?: (.*)$`)

// Message is a parsed commit message.
type Message struct {
	Raw      string
	Header   string
	Type     string
	Scope    string
	Subject  string
	Breaking bool
	Body     []string // Lines after the header, including blank ones
	Parsed   bool     // Header matched the conventional format
}

// Parse splits a raw commit message into its parts.
func Parse(raw string) *Message {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimRight(raw, "\n")

	lines := strings.Split(raw, "\n")
	m := &Message{
		Raw:    raw,
		Header: lines[0],
		Body:   lines[1:],
	}

	if match := headerPattern.FindStringSubmatch(m.Header); match != nil {
		m.Type = match[1]
		m.Scope = match[2]
		m.Breaking = match[3] == "!"
		m.Subject = match[4]
		m.Parsed = true
	}
	return m
}

// HasBody reports whether there is any non-blank line after the header.
func (m *Message) HasBody() bool {
	for _, line := range m.Body {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

// Lines returns the trimmed message split into lines.
func (m *Message) Lines() []string {
	return strings.Split(strings.TrimSpace(m.Raw), "\n")
}

// ignorePatterns match commits that are not checked, mirroring the
// defaults of commitlint.
var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^((Merge pull request)|(Merge (.*?) into (.*?))|(Merge branch (.*?)))(?:\r?\n)*`),
	regexp.MustCompile(`^(Merge tag (.*?))(?:\r?\n)*`),
	regexp.MustCompile(`^Merge remote-tracking branch(\s*)(.*)`),
	regexp.MustCompile(`^(R|r)evert (.*)`),
	regexp.MustCompile(`^(fixup|squash)!`),
	regexp.MustCompile(`^(Merged (.*?)(in|into) (.*)|Merged PR (.*): (.*))`),
	regexp.MustCompile(`^Automatic merge(.*)`),
	regexp.MustCompile(`^Auto-merged (.*?) into (.*)`),
}

// Ignored reports whether a message is exempt from checking.
func Ignored(raw string) bool {
	for _, re := range ignorePatterns {
		if re.MatchString(raw) {
			return true
		}
	}
	return false
}
