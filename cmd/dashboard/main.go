// Command dashboard serves the AI transformation dashboard and runs one-shot
// report, ranking and polling jobs against the analysis backend.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:   "dashboard",
		Short: "AI transformation dashboard",
		Long: `dashboard serves the AI transformation dashboard on top of the analysis
backend and renders transformation plan reports.

Configuration comes from an optional YAML file (--config) overridden by
DASHBOARD_-prefixed environment variables, for example DASHBOARD_SERVER_ADDR.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newRenderCmd(&configPath),
		newPrioritizeCmd(),
		newWaitCmd(&configPath),
	)
	return root
}
