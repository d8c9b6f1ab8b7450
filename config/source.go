package config

// Source records which layer supplied a value. Later layers win:
// default, global, local, env, flag. SourceGit only fills keys that no
// layer set.
type Source string

const (
	SourceDefault Source = "default" // built into pipekit
	SourceGlobal  Source = "global"  // ~/.config/pipekit/config.yaml
	SourceLocal   Source = "local"   // .pipekit.yaml in the git root, or --config
	SourceGit     Source = "git"     // derived from the checkout, e.g. the origin remote
	SourceEnv     Source = "env"     // PIPEKIT_* or a historic variable name
	SourceFlag    Source = "flag"    // command-line flag
)
