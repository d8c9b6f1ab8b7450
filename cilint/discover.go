package cilint

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are CI files that are known not to lint on their own.
// .gitlab-ci.yml includes local files that the global lint endpoint cannot
// resolve, and the k8s template has no visible jobs.
var DefaultExcludes = []string{
	".gitlab-ci.yml",
	".gitlab-ci-template-k8s-test.yml",
}

// Discover returns the sorted names of regular files directly inside dir
// whose names end in ".yml" and match none of excludes. An exclusion is a
// file name or a doublestar glob matched against the file name.
func Discover(dir string, excludes []string) ([]string, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasSuffix(name, ".yml") {
			continue
		}
		if excluded(name, excludes) {
			continue
		}
		files = append(files, name)
	}

	sort.Strings(files)
	return files, nil
}

func excluded(name string, excludes []string) bool {
	for _, pattern := range excludes {
		if pattern == name {
			return true
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
