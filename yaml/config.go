// Package yaml loads pagelens configuration files.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poozantata/pagelens"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the YAML file at path over pagelens.DefaultConfig and
// validates the result. Keys absent from the file keep their defaults;
// lists in the file replace the default lists. Unknown keys are rejected.
func LoadConfig(path string) (*pagelens.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pagelens.Errorf(pagelens.ENOTFOUND, "config file not found: %s", path)
		}
		return nil, err
	}
	defer f.Close()

	return DecodeConfig(f)
}

// DecodeConfig is LoadConfig for an open reader.
func DecodeConfig(r io.Reader) (*pagelens.Config, error) {
	cfg := pagelens.DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, pagelens.Errorf(pagelens.EINVALID, "parse config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
