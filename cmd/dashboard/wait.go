package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/joelkehle/transformation-dashboard/internal/backend"
)

func newWaitCmd(configPath *string) *cobra.Command {
	var (
		company  string
		interval time.Duration
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Poll the backend until a company's analysis is finished",
		Long: `Poll the backend cache status until the company's final proposal exists,
printing a progress line after every check.

Examples:
  dashboard wait --company acme
  dashboard wait --company acme --interval 10s --timeout 20m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return runWait(ctx, *configPath, company, interval, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company name")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default: poll.interval)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 waits indefinitely)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func runWait(ctx context.Context, configPath, company string, interval time.Duration, out io.Writer) error {
	a, err := loadApp(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()
	if interval <= 0 {
		interval = a.cfg.Poll.Interval
	}
	return a.client.WaitForAnalysis(ctx, company, interval, func(p backend.Progress) {
		fmt.Fprintf(out, "%3d%% %s\n", p.Percent, p.Status)
	})
}
