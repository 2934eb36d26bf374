package main

import (
	"fmt"

	"github.com/poozantata/pagelens"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	view, err := pagelens.LoadPageView(deps.Ctx, deps.Pages, deps.Graph, c.URL)
	if err != nil {
		return fail(deps, err)
	}

	if !c.LLM && !c.Markdown {
		return writeJSON(deps.Stdout, view)
	}

	ready := pagelens.RenderLLMReady(view, deps.Converter)
	if c.Markdown {
		fmt.Fprint(deps.Stdout, pagelens.FormatLLMMarkdown(ready))
		return nil
	}
	return writeJSON(deps.Stdout, ready)
}
