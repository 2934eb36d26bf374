package main

import (
	"os"
	"time"

	"github.com/poozantata/pagelens"
)

// Run executes the analyze command. The document is processed as if it
// had just been fetched from URL; nothing is stored.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fail(deps, pagelens.Errorf(pagelens.EINVALID, "read %s: %v", c.File, err))
	}

	result, err := deps.Pipeline.Run(&pagelens.RawDocument{
		HTML:      string(data),
		URL:       c.URL,
		FetchedAt: time.Now().UTC(),
	})
	if err != nil {
		return fail(deps, err)
	}
	return writeJSON(deps.Stdout, result)
}
