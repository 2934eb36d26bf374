package main

import (
	"fmt"

	"github.com/poozantata/pagelens"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	summary, err := deps.Scrapes.Scrape(deps.Ctx, c.URL)
	if err != nil {
		return fail(deps, err)
	}
	return writeJSON(deps.Stdout, summary)
}

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	for _, u := range c.URLs {
		if _, err := pagelens.ParsePageURL(u); err != nil {
			return fail(deps, err)
		}
	}

	result, err := deps.Scrapes.ScrapeBatch(deps.Ctx, c.URLs)
	if err != nil {
		return fail(deps, err)
	}
	return finishBatch(deps, result)
}

// Run executes the site command.
func (c *SiteCmd) Run(deps *Dependencies) error {
	if c.MaxPages <= 0 {
		return fail(deps, pagelens.Errorf(pagelens.EINVALID, "max pages must be positive"))
	}

	result, err := deps.Sites.ScrapeSite(deps.Ctx, c.URL, c.MaxPages)
	if err != nil {
		return fail(deps, err)
	}
	return finishBatch(deps, result)
}

// finishBatch prints the batch result and a one-line tally. It fails only
// when nothing succeeded.
func finishBatch(deps *Dependencies, result *pagelens.BatchResult) error {
	if err := writeJSON(deps.Stdout, result); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stderr, "Scraped %d pages (%d failed, %d skipped)\n", result.Succeeded, result.Failed, result.Skipped)
	if result.Succeeded == 0 && len(result.Items) > 0 {
		return pagelens.Errorf(pagelens.EUNAVAILABLE, "no pages scraped")
	}
	return nil
}
