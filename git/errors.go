package git

import (
	"errors"
	"strings"
)

var (
	// ErrNotGitRepo is returned by NewContext outside a working tree.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrBadRevision is returned when git cannot resolve a revision or range.
	ErrBadRevision = errors.New("unknown revision")
)

// Error is a failed git invocation. Output holds what git printed on
// stderr, which is usually more useful than the exit status.
type Error struct {
	Op     string
	Cmd    string
	Output string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Cmd != "" {
		b.WriteString(" (" + e.Cmd + ")")
	}
	b.WriteString(": ")
	if e.Output != "" {
		b.WriteString(e.Output)
	} else {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
