package main

import (
	"fmt"
	"strings"

	"github.com/poozantata/pagelens"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	if strings.TrimSpace(c.Query) == "" {
		return fail(deps, pagelens.Errorf(pagelens.EINVALID, "search query required"))
	}
	if c.Limit <= 0 {
		return fail(deps, pagelens.Errorf(pagelens.EINVALID, "limit must be positive"))
	}

	pages, err := deps.Pages.SearchPages(deps.Ctx, c.Query, c.Limit)
	if err != nil {
		return fail(deps, err)
	}

	if len(pages) == 0 {
		fmt.Fprintf(deps.Stdout, "No pages match %q.\n", c.Query)
		return nil
	}

	for _, p := range pages {
		hit := pagelens.NewSearchHit(p)
		fmt.Fprintf(deps.Stdout, "%s  [%s]  %s\n", hit.URL, hit.ContentType, hit.Title)
		if hit.Summary != "" {
			fmt.Fprintf(deps.Stdout, "    %s\n", hit.Summary)
		}
	}
	return nil
}
