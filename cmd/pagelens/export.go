package main

import (
	"fmt"

	"github.com/poozantata/pagelens"
	"github.com/poozantata/pagelens/fs"
)

// exportPageSize is the number of records read per query.
const exportPageSize = 100

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	exporter := fs.NewExporter(c.Dir, deps.Converter)

	filter := pagelens.PageFilter{Limit: exportPageSize}
	if c.Domain != "" {
		filter.Domain = &c.Domain
	}

	var n int
	for {
		pages, err := deps.Pages.FindPages(deps.Ctx, filter)
		if err != nil {
			return fail(deps, err)
		}
		for _, p := range pages {
			view, err := pagelens.LoadPageView(deps.Ctx, deps.Pages, deps.Graph, p.URL)
			if err != nil {
				return fail(deps, err)
			}
			path, err := exporter.ExportPage(view)
			if err != nil {
				return fail(deps, err)
			}
			fmt.Fprintln(deps.Stdout, path)
			n++
		}
		if len(pages) < filter.Limit {
			break
		}
		filter.Offset += len(pages)
	}

	fmt.Fprintf(deps.Stderr, "Exported %d pages to %s\n", n, c.Dir)
	return nil
}
