package license

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMarker is the text a license header must contain.
const DefaultMarker = "Licensed under the Apache License, Version 2.0"

// ProblemKind classifies a Problem.
type ProblemKind string

const (
	MissingHeader     ProblemKind = "missing-header"
	UnexpectedLicense ProblemKind = "unexpected-license"
	VendorUnlicensed  ProblemKind = "vendor-unlicensed"
)

// Problem is one file or directory that fails the check.
type Problem struct {
	Path string // Slash-separated, relative to the checked root
	Kind ProblemKind
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Path, p.Kind)
}

// Options controls Check.
type Options struct {
	Include      []string // Globs of files whose header is checked
	Exclude      []string // Globs of files and directories to skip
	Marker       string   // Required header text
	HeaderLines  int      // Number of leading lines searched for Marker
	LicenseFiles []string // License files allowed at the root
	VendorDir    string   // Vendored code directory; empty disables the vendor check
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Include:      []string{"**/*.go", "**/*.py"},
		Exclude:      []string{"vendor/**", "_*/**", ".git/**"},
		Marker:       DefaultMarker,
		HeaderLines:  20,
		LicenseFiles: []string{"LICENSE"},
		VendorDir:    "vendor",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if len(o.Include) == 0 {
		o.Include = def.Include
	}
	if o.Marker == "" {
		o.Marker = def.Marker
	}
	if o.HeaderLines <= 0 {
		o.HeaderLines = def.HeaderLines
	}
	if o.LicenseFiles == nil {
		o.LicenseFiles = def.LicenseFiles
	}
	return o
}

// Report is the result of Check.
type Report struct {
	Checked  int // Files whose header was inspected
	Problems []Problem
}

// OK reports whether no problem was found.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// ByKind returns the problems of one kind.
func (r *Report) ByKind(kind ProblemKind) []Problem {
	var out []Problem
	for _, p := range r.Problems {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// Check inspects the tree rooted at root.
func Check(root string, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	for _, pattern := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("check %s: not a directory", root)
	}

	c := &checker{
		root:      root,
		opts:      opts,
		report:    &Report{},
		licensed:  map[string]bool{},
		unlicense: map[string]bool{},
	}
	if err := filepath.WalkDir(root, c.visit); err != nil {
		return nil, err
	}

	sort.Slice(c.report.Problems, func(i, j int) bool {
		if c.report.Problems[i].Path != c.report.Problems[j].Path {
			return c.report.Problems[i].Path < c.report.Problems[j].Path
		}
		return c.report.Problems[i].Kind < c.report.Problems[j].Kind
	})
	return c.report, nil
}

type checker struct {
	root      string
	opts      Options
	report    *Report
	licensed  map[string]bool // Vendor directory -> has a license file somewhere up to the vendor root
	unlicense map[string]bool // Vendor directories already reported
}

func (c *checker) visit(p string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(c.root, p)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return nil
	}

	if d.IsDir() {
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if !c.inVendor(rel) && !c.isVendorAncestor(rel) && matchAny(c.opts.Exclude, rel) {
			return filepath.SkipDir
		}
		return nil
	}
	if !d.Type().IsRegular() {
		return nil
	}

	if path.Dir(rel) == "." && isLicenseFile(d.Name()) && !slices.Contains(c.opts.LicenseFiles, d.Name()) {
		c.addProblem(rel, UnexpectedLicense)
	}

	if !matchAny(c.opts.Include, rel) {
		return nil
	}

	if c.inVendor(rel) {
		return c.checkVendored(rel)
	}
	if matchAny(c.opts.Exclude, rel) {
		return nil
	}
	return c.checkHeader(p, rel)
}

func (c *checker) checkHeader(p, rel string) error {
	found, err := containsMarker(p, c.opts.Marker, c.opts.HeaderLines)
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}
	c.report.Checked++
	if !found {
		c.addProblem(rel, MissingHeader)
	}
	return nil
}

// checkVendored reports the directory of rel when neither it nor any parent
// up to the vendor root has a license file.
func (c *checker) checkVendored(rel string) error {
	dir := path.Dir(rel)
	ok, err := c.dirLicensed(dir)
	if err != nil {
		return err
	}
	if !ok && !c.unlicense[dir] {
		c.unlicense[dir] = true
		c.addProblem(dir, VendorUnlicensed)
	}
	return nil
}

func (c *checker) dirLicensed(dir string) (bool, error) {
	if ok, seen := c.licensed[dir]; seen {
		return ok, nil
	}

	entries, err := os.ReadDir(filepath.Join(c.root, filepath.FromSlash(dir)))
	if err != nil {
		return false, fmt.Errorf("read %s: %w", dir, err)
	}
	ok := false
	for _, e := range entries {
		if !e.IsDir() && (isLicenseFile(e.Name()) || strings.HasPrefix(strings.ToUpper(e.Name()), "COPYING")) {
			ok = true
			break
		}
	}
	if !ok && dir != c.opts.VendorDir {
		ok, err = c.dirLicensed(path.Dir(dir))
		if err != nil {
			return false, err
		}
	}

	c.licensed[dir] = ok
	return ok, nil
}

func (c *checker) inVendor(rel string) bool {
	v := c.opts.VendorDir
	return v != "" && (rel == v || strings.HasPrefix(rel, v+"/"))
}

func (c *checker) isVendorAncestor(rel string) bool {
	v := c.opts.VendorDir
	return v != "" && strings.HasPrefix(v, rel+"/")
}

func (c *checker) addProblem(p string, kind ProblemKind) {
	c.report.Problems = append(c.report.Problems, Problem{Path: p, Kind: kind})
}

// containsMarker reports whether marker appears in the first n lines.
func containsMarker(p, marker string, n int) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 0; i < n && scanner.Scan(); i++ {
		if strings.Contains(scanner.Text(), marker) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, bufio.ErrTooLong) {
		return false, err
	}
	return false, nil
}

func isLicenseFile(name string) bool {
	upper := strings.ToUpper(name)
	return strings.HasPrefix(upper, "LICENSE") || strings.HasPrefix(upper, "LICENCE")
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
