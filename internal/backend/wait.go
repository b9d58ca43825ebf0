package backend

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultPollInterval = 5 * time.Second
	progressStart       = 10
	progressStep        = 5
	progressCap         = 95
)

// Progress is one tick of the analysis loading poll.
type Progress struct {
	Percent int    `json:"percent"`
	Status  string `json:"status"`
	Done    bool   `json:"done"`
}

// NextProgress advances an unfinished progress value by one step, capped below 100.
func NextProgress(current int) int {
	return min(current+progressStep, progressCap)
}

// WaitForAnalysis polls the cache status every interval until the final proposal
// exists. onProgress, when set, is called after every check. A failed status
// check stops the loop with its error.
func (c *Client) WaitForAnalysis(ctx context.Context, company string, interval time.Duration, onProgress func(Progress)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	percent := progressStart
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		status, err := c.CacheStatus(ctx, company)
		if err != nil {
			return fmt.Errorf("failed to check analysis status: %w", err)
		}
		if status.Exists && status.HasFinalProposal() {
			report(Progress{Percent: 100, Status: "Analysis complete", Done: true})
			return nil
		}
		percent = NextProgress(percent)
		report(Progress{
			Percent: percent,
			Status:  "We're analyzing the website and generating AI strategies. This process may take several minutes to complete.",
		})
		timer.Reset(interval)
	}
}
