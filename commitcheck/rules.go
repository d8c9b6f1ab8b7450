package commitcheck

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/randalmurphal/pipekit/git"
)

// Severity of a rule finding.
type Severity int

const (
	SeverityWarning Severity = 1
	SeverityError   Severity = 2
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Config holds the limits used by the rules.
type Config struct {
	Types             []string
	MaxHeaderLength   int
	MaxBodyLineLength int
}

// DefaultConfig returns the limits of the conventional commit preset.
func DefaultConfig() Config {
	types := make([]string, 0, len(git.CommitTypes()))
	for _, t := range git.CommitTypes() {
		types = append(types, string(t))
	}
	return Config{
		Types:             types,
		MaxHeaderLength:   100,
		MaxBodyLineLength: 100,
	}
}

// Rule checks one property of a message. Check returns an empty string
// when the message passes.
type Rule struct {
	Name     string
	Severity Severity
	Check    func(m *Message, cfg Config) string
}

var (
	signedOffPattern  = regexp.MustCompile(`^Signed-off-by:\s.+\s<[^<>]+>$`)
	cherryPickPattern = regexp.MustCompile(`^\(cherry picked from commit [0-9a-f]{7,40}\)$`)
	urlOnlyPattern    = regexp.MustCompile(`^\s*(\[\d+\]:?\s*)?\S+://\S+\s*$`)
	quotedPattern     = regexp.MustCompile("`.*?`|\".*?\"|'.*?'")
)

// Casers keep state, so each call builds its own.
func toLower(s string) string { return cases.Lower(language.Und).String(s) }
func toUpper(s string) string { return cases.Upper(language.Und).String(s) }

// DefaultRules returns the rule table applied to every commit.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "header-format", Severity: SeverityError, Check: checkHeaderFormat},
		{Name: "type-enum", Severity: SeverityError, Check: checkTypeEnum},
		{Name: "type-case", Severity: SeverityError, Check: checkTypeCase},
		{Name: "subject-empty", Severity: SeverityError, Check: checkSubjectEmpty},
		{Name: "subject-full-stop", Severity: SeverityError, Check: checkSubjectFullStop},
		{Name: "subject-case", Severity: SeverityWarning, Check: checkSubjectCase},
		{Name: "header-max-length", Severity: SeverityError, Check: checkHeaderLength},
		{Name: "body-leading-blank", Severity: SeverityError, Check: checkBodyLeadingBlank},
		{Name: "body-max-line-length", Severity: SeverityWarning, Check: checkBodyLineLength},
		{Name: "signed-off-anywhere", Severity: SeverityError, Check: checkSignedOff},
		{Name: "cherry-pick-at-end", Severity: SeverityError, Check: checkCherryPickAtEnd},
	}
}

func checkHeaderFormat(m *Message, _ Config) string {
	if m.Parsed {
		return ""
	}
	return "header must be in format 'type(scope): subject'"
}

func checkTypeEnum(m *Message, cfg Config) string {
	if !m.Parsed || slices.Contains(cfg.Types, toLower(m.Type)) {
		return ""
	}
	return fmt.Sprintf("type must be one of [%s]", strings.Join(cfg.Types, ", "))
}

func checkTypeCase(m *Message, _ Config) string {
	if !m.Parsed || m.Type == toLower(m.Type) {
		return ""
	}
	return "type must be lower-case"
}

func checkSubjectEmpty(m *Message, _ Config) string {
	if !m.Parsed || strings.TrimSpace(m.Subject) != "" {
		return ""
	}
	return "subject may not be empty"
}

func checkSubjectFullStop(m *Message, _ Config) string {
	if !m.Parsed || !strings.HasSuffix(m.Subject, ".") {
		return ""
	}
	return "subject may not end with full stop"
}

// checkSubjectCase ignores quoted and backticked spans. A subject that is
// empty after that, or starts with a digit, passes.
func checkSubjectCase(m *Message, _ Config) string {
	if !m.Parsed || m.Subject == "" {
		return ""
	}
	subject := strings.TrimSpace(quotedPattern.ReplaceAllString(m.Subject, ""))
	if subject == "" || unicode.IsDigit(firstRune(subject)) {
		return ""
	}
	if isLowerCase(subject) || isSentenceCase(subject) {
		return ""
	}
	return "subject must be lower-case or sentence-case"
}

func isLowerCase(s string) bool {
	return toLower(s) == s
}

// isSentenceCase reports whether the first letter is upper-case. The rest
// of the subject is not checked, so names like GitHub are allowed.
func isSentenceCase(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	return toUpper(string(first))+s[size:] == s
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func checkHeaderLength(m *Message, cfg Config) string {
	if n := utf8.RuneCountInString(m.Header); n > cfg.MaxHeaderLength {
		return fmt.Sprintf("header must not be longer than %d characters, current length is %d", cfg.MaxHeaderLength, n)
	}
	return ""
}

func checkBodyLeadingBlank(m *Message, _ Config) string {
	if !m.HasBody() || strings.TrimSpace(m.Body[0]) == "" {
		return ""
	}
	return "body must have leading blank line"
}

func checkBodyLineLength(m *Message, cfg Config) string {
	for _, line := range m.Body {
		if utf8.RuneCountInString(line) > cfg.MaxBodyLineLength && !urlOnlyPattern.MatchString(line) {
			return fmt.Sprintf("body's lines must not be longer than %d characters", cfg.MaxBodyLineLength)
		}
	}
	return ""
}

func checkSignedOff(m *Message, _ Config) string {
	for _, line := range m.Lines() {
		if signedOffPattern.MatchString(strings.TrimSpace(line)) {
			return ""
		}
	}
	return "Signed-off-by: is missing in the commit message"
}

func checkCherryPickAtEnd(m *Message, _ Config) string {
	lines := m.Lines()
	for i, line := range lines {
		if cherryPickPattern.MatchString(strings.TrimSpace(line)) {
			if i != len(lines)-1 {
				return "Cherry-pick line must be the last one in the commit message"
			}
			return ""
		}
	}
	return ""
}
