package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResolverConfig describes where configuration comes from.
type ResolverConfig struct {
	EnvPrefix string // "PIPEKIT_" maps key job_name to PIPEKIT_JOB_NAME

	// EnvAliases lists extra variables per key, consulted in order after
	// the prefixed one, so the names CI jobs already export keep working.
	EnvAliases map[string][]string

	GlobalConfigDir  string // Directory under ~/.config
	GlobalConfigFile string // Defaults to config.yaml
	LocalConfigName  string // File looked up in the git root

	// ExplicitPath replaces the local file lookup. Unlike the other files
	// it is expected to exist, so a missing one is warned about.
	ExplicitPath string

	Defaults map[string]string

	// ValidKeys restricts the keys accepted from files and adds them to the
	// environment lookup. Nil accepts every key.
	ValidKeys []string

	GitRootFinder func(startDir string) (string, error) // Defaults to walking up to a .git entry
	ErrWriter     io.Writer                             // Warnings; defaults to os.Stderr
}

func (c ResolverConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// Resolver merges configuration layers. Later layers override earlier ones:
// defaults, the global file, the local file, the environment, then flags.
type Resolver struct {
	config     ResolverConfig
	globalPath string
	localPath  string
	gitRoot    string

	// Warnings collects non-fatal problems found while resolving, such as
	// unreadable files or unknown keys.
	Warnings []string
}

// NewResolver creates a resolver, locating the global file under
// ~/.config and the local file in the enclosing git root.
func NewResolver(cfg ResolverConfig) *Resolver {
	r := NewResolverWithPaths(cfg, "", "")

	find := cfg.GitRootFinder
	if find == nil {
		find = func(dir string) (string, error) { return findGitRoot(dir), nil }
	}
	if root, err := find("."); err == nil {
		r.gitRoot = root
	}

	if cfg.ExplicitPath != "" {
		r.localPath = cfg.ExplicitPath
	} else if r.gitRoot != "" && cfg.LocalConfigName != "" {
		r.localPath = filepath.Join(r.gitRoot, cfg.LocalConfigName)
	}

	if cfg.GlobalConfigDir != "" {
		if home, err := os.UserHomeDir(); err == nil {
			r.globalPath = filepath.Join(home, ".config", cfg.GlobalConfigDir, cfg.globalConfigFile())
		}
	}
	return r
}

// NewResolverWithPaths creates a resolver reading the given files. Empty
// paths are skipped.
func NewResolverWithPaths(cfg ResolverConfig, globalPath, localPath string) *Resolver {
	if cfg.ErrWriter == nil {
		cfg.ErrWriter = os.Stderr
	}
	return &Resolver{
		config:     cfg,
		globalPath: globalPath,
		localPath:  localPath,
	}
}

func (r *Resolver) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	fmt.Fprintf(r.config.ErrWriter, "Warning: %s\n", msg)
}

// Resolved holds the final merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// Fill sets key to a value derived from source when nothing else set it.
// It reports whether the value was used.
func (c *Resolved) Fill(key, value string, source Source) bool {
	if c.values[key] != "" || value == "" {
		return false
	}
	c.values[key] = value
	c.sources[key] = source
	return true
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Keys returns all configuration keys, sorted.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Resolve merges defaults, files and environment.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	cfg.merge(SourceDefault, r.config.Defaults)
	cfg.merge(SourceGlobal, r.readFile(r.globalPath, false))
	cfg.merge(SourceLocal, r.readFile(r.localPath, r.config.ExplicitPath != ""))
	cfg.merge(SourceEnv, r.readEnv(cfg))

	return cfg
}

// ResolveWithFlags resolves config and applies flag overrides.
// Empty flag values are ignored.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	cfg.merge(SourceFlag, flags)
	return cfg
}

// merge applies a layer. Empty values never override.
func (c *Resolved) merge(source Source, layer map[string]string) {
	for key, value := range layer {
		if value == "" {
			continue
		}
		c.values[key] = value
		c.sources[key] = source
	}
}

// readFile parses a flat YAML mapping. Values may be scalars or lists of
// scalars; lists are joined with commas and an empty list reads as
// ListNone. A missing file is silently skipped unless required.
func (r *Resolver) readFile(path string, required bool) map[string]string {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if required {
			r.warnf("could not read %s: %v", path, err)
		}
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		r.warnf("could not parse %s: %v", path, err)
		return nil
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		r.warnf("could not parse %s: top level must be a mapping", path)
		return nil
	}

	values := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, node := root.Content[i], root.Content[i+1]
		if len(r.config.ValidKeys) > 0 && !slices.Contains(r.config.ValidKeys, key.Value) {
			r.warnf("unknown key %q in %s:%d", key.Value, path, key.Line)
			continue
		}
		value, ok := nodeValue(node)
		if !ok {
			r.warnf("%s:%d: %s must be a value or a list of values", path, node.Line, key.Value)
			continue
		}
		values[key.Value] = value
	}
	return values
}

func nodeValue(n *yaml.Node) (string, bool) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", true
		}
		return n.Value, true
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			v, ok := nodeValue(item)
			if !ok || item.Kind != yaml.ScalarNode && item.Kind != yaml.AliasNode {
				return "", false
			}
			if v != "" {
				parts = append(parts, v)
			}
		}
		if len(n.Content) == 0 {
			return ListNone, true
		}
		return strings.Join(parts, ","), true
	}
	return "", false
}

// readEnv looks up every key known to the resolver or already set by an
// earlier layer.
func (r *Resolver) readEnv(cfg *Resolved) map[string]string {
	keys := make(map[string]struct{})
	for k := range r.config.Defaults {
		keys[k] = struct{}{}
	}
	for k := range r.config.EnvAliases {
		keys[k] = struct{}{}
	}
	for _, k := range r.config.ValidKeys {
		keys[k] = struct{}{}
	}
	for k := range cfg.values {
		keys[k] = struct{}{}
	}

	values := make(map[string]string)
	for key := range keys {
		if value, ok := r.lookupEnv(key); ok {
			values[key] = value
		}
	}
	return values
}

// lookupEnv tries the prefixed variable, then the aliases in order.
func (r *Resolver) lookupEnv(key string) (string, bool) {
	names := r.config.EnvAliases[key]
	if r.config.EnvPrefix != "" {
		prefixed := r.config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		names = append([]string{prefixed}, names...)
	}
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			return value, true
		}
	}
	return "", false
}

// GitRoot returns the detected git root, or "" outside a repository.
func (r *Resolver) GitRoot() string { return r.gitRoot }

// GlobalPath returns the global config file path.
func (r *Resolver) GlobalPath() string { return r.globalPath }

// LocalPath returns the local config file path, which is the explicit
// path when one was given.
func (r *Resolver) LocalPath() string { return r.localPath }

// findGitRoot walks up from startDir to the first directory holding a .git
// entry. Worktrees and submodules use a .git file, so any entry counts.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
