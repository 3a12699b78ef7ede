// Package diag renders the "PRODLOG: ..." diagnostic messages the wrapper
// prints on its own controlling terminal, as opposed to structured logs
// (see internal/logger) which are for operators, not the interactive user.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiBoldGreen  = "[1;32m"
	ansiBoldYellow = "[1;33m"
	ansiBoldRed    = "[1;31m"
	ansiReset      = "[0m"
)

// Printer writes colored PRODLOG: messages to an underlying writer, the way
// the original wrapper used termion to bold and color its own status lines
// on the real terminal, never on the captured child output.
type Printer struct {
	w           io.Writer
	enableColor bool
}

// New builds a Printer writing to w. Color is enabled only when fd looks
// like a real terminal and the environment doesn't ask for plain output.
func New(w io.Writer, fd uintptr) *Printer {
	enable := isatty.IsTerminal(fd) && os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"
	return &Printer{w: w, enableColor: enable}
}

func (p *Printer) write(color, msg string) {
	line := "PRODLOG: " + msg
	if p.enableColor {
		line = color + line + ansiReset
	}
	fmt.Fprint(p.w, line+"\n\r")
}

// Info reports routine status (startup, import results, status checks).
func (p *Printer) Info(msg string) {
	p.write(ansiBoldGreen, msg)
}

// Warn reports a recoverable problem in yellow.
func (p *Printer) Warn(msg string) {
	p.write(ansiBoldYellow, msg)
}

// Fatal reports an unrecoverable startup or runtime error and exits 1.
func (p *Printer) Fatal(msg string) {
	p.write(ansiBoldRed, msg)
	os.Exit(1)
}

// FatalAfter is like Fatal but runs cleanup (e.g. restoring terminal raw
// mode) before exiting, for callers that can't let os.Exit skip their
// deferred restores.
func (p *Printer) FatalAfter(msg string, cleanup func()) {
	p.write(ansiBoldRed, msg)
	if cleanup != nil {
		cleanup()
	}
	os.Exit(1)
}
