package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/poozantata/pagelens"
)

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail reports err on stderr and returns it.
func fail(deps *Dependencies, err error) error {
	fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
	return err
}

// message returns a user-facing message for err. Coded errors carry their
// own message; anything else is shown verbatim.
func message(err error) string {
	if pagelens.ErrorStage(err) == "" && pagelens.ErrorCode(err) == pagelens.EINTERNAL {
		return err.Error()
	}
	return pagelens.ErrorMessage(err)
}
