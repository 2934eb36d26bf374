package main

import (
	"fmt"

	pagehttp "github.com/poozantata/pagelens/http"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := pagehttp.NewServer()
	s.Addr = c.Addr
	if s.Addr == "" {
		s.Addr = deps.Config.Server.Addr
	}
	s.Scraper = deps.Scrapes
	s.Pages = deps.Pages
	s.Graph = deps.Graph
	s.Converter = deps.Converter
	s.Metrics = deps.Metrics
	if deps.Logger != nil {
		s.Logger = deps.Logger
	}

	if err := s.Open(); err != nil {
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stderr, "Listening on http://localhost:%d\n", s.Port())

	<-deps.Ctx.Done()
	return s.Close()
}
