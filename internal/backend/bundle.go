package backend

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
)

// Bundle fetches the final proposal, industry insights and business challenges
// concurrently. Only a final proposal failure fails the bundle.
func (c *Client) Bundle(ctx context.Context, company string) (analysis.Bundle, error) {
	var out analysis.Bundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := c.FinalProposal(gctx, company)
		if err != nil {
			return err
		}
		out.Company = data
		return nil
	})
	g.Go(func() error {
		out.Insights = c.IndustryInsights(gctx, company)
		return nil
	})
	g.Go(func() error {
		out.Challenges = c.BusinessChallenges(gctx, company)
		return nil
	})
	if err := g.Wait(); err != nil {
		return analysis.Bundle{}, err
	}
	return out, nil
}
