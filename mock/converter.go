package mock

import "github.com/poozantata/pagelens"

var _ pagelens.Converter = (*Converter)(nil)

// Converter is a mock implementation of pagelens.Converter.
type Converter struct {
	ConvertFn func(html, pageURL string) (string, error)
}

func (c *Converter) Convert(html, pageURL string) (string, error) {
	return c.ConvertFn(html, pageURL)
}
