package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, key := range a.cfg.Keys() {
				value, source := a.cfg.GetWithSource(key)
				if isSecret(key) && value != "" {
					value = "********"
				}
				fmt.Fprintf(w, "%s\t%s\t(%s)\n", key, value, source)
			}
			return w.Flush()
		},
	}
}

func isSecret(key string) bool {
	return strings.HasSuffix(key, "_token") || strings.HasSuffix(key, "_webhook") || key == "webhook_url"
}
