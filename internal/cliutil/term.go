package cliutil

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Interactive reports whether w is attached to a terminal. Non-file
// writers (buffers, pipes wrapped by cobra) never count.
func Interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
