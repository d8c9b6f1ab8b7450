// Package config provides hierarchical configuration resolution for the
// pipekit commands.
//
// Values are layered with clear precedence:
//  1. Command-line flags (highest priority)
//  2. Environment variables (PIPEKIT_<KEY>, then per-key aliases)
//  3. Local config (.pipekit.yaml in the git root, or the --config file)
//  4. Global config (~/.config/pipekit/config.yaml)
//  5. Built-in defaults (lowest priority)
//
// # Basic Usage
//
//	resolver := config.NewDefaultResolver("", os.Stderr)
//	cfg := resolver.ResolveWithFlags(map[string]string{
//	    config.KeyJobName: jobFlag,
//	})
//
//	fetch, err := cfg.FetchSettings()
//	if err != nil {
//	    return err // "UPSTREAM_PIPELINE_ID not provided, aborting"
//	}
//
// # Environment Variables
//
// Every key maps to PIPEKIT_<KEY>. A few keys also honour the names CI jobs
// already export:
//
//	UPSTREAM_PIPELINE_ID   -> upstream_pipeline_id
//	GITLAB_TOKEN           -> gitlab_token
//	GITHUB_TOKEN, GH_TOKEN -> github_token
//	SLACK_WEBHOOK_URL      -> slack_webhook
//
// # Config Sources
//
// Each resolved value tracks where it came from ("default", "global",
// "local", "env", "flag"), which the CLI prints with --debug.
package config
