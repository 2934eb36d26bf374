package main

import "fmt"

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	n, err := deps.Pages.CountPages(deps.Ctx)
	if err != nil {
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Pages: %d\n", n)
	return nil
}
