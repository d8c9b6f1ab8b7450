// Package commitcheck validates commit messages against the conventional
// commit format and the repository's sign-off policy.
//
// Each commit in a revision range is parsed into a Message and run through
// a table of rules. A rule finding has a severity: errors fail the check,
// warnings are reported only. Merge, revert, fixup and squash commits are
// skipped.
//
// Example usage:
//
//	repo, _ := git.NewContext(".")
//	report, err := commitcheck.NewChecker(repo).CheckRange("origin/master..HEAD")
//	report.Write(os.Stdout)
//	os.Exit(report.ExitCode())
package commitcheck
