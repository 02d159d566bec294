// Package progress renders UpdateStatus streams. It is the external
// collaborator on the other side of the status-sink contract: the core
// encoder/decoder never know what, if anything, is drawing.
package progress

import (
	"os"

	"github.com/muesli/termenv"

	"swissarchive/driver"
)

// Renderer turns a stream of status updates into terminal output.
type Renderer interface {
	// Updater returns the sink to hand to encoder/decoder operations.
	// It must only be invoked from one goroutine at a time.
	Updater() driver.Updater
	// Stop flushes and tears down the renderer. No Updater calls may
	// follow.
	Stop()
}

// New picks a renderer for the given terminal: the live bar when out
// supports ANSI, plain log lines otherwise (pipes, dumb terminals).
func New(out *os.File) Renderer {
	output := termenv.NewOutput(out)
	if output.ColorProfile() == termenv.Ascii {
		return NewPlain()
	}
	return NewTUI()
}
