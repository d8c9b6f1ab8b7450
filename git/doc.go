// Package git provides the read-only git operations pipekit needs:
// locating the repository root and listing commits in a revision range.
//
// Core types:
//   - Context: Git repository context
//   - CommandRunner: Interface for executing git commands (with mock for testing)
//   - Commit: A commit's SHA, parents and raw message
//   - CommitMessage: Conventional commit message builder
//
// Example usage:
//
//	repo, err := git.NewContext(".")
//	commits, err := repo.Commits("origin/master..HEAD")
//	for _, c := range commits {
//	    fmt.Println(c.ShortSHA(), c.Header())
//	}
package git
