package ptysession

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/nielsreijers/prodlog/internal/logger"
)

// runResizeFlow applies the controlling terminal's current size to ptmx
// once at startup and again on every SIGWINCH, until ctx is cancelled.
func runResizeFlow(ctx context.Context, tty *os.File, ptmx *os.File) {
	applySize(tty, ptmx)

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-winch:
			applySize(tty, ptmx)
		}
	}
}

func applySize(tty *os.File, ptmx *os.File) {
	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		logger.Warn("ptysession: failed to read terminal size", "error", err)
		return
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(h), Cols: uint16(w)}); err != nil {
		logger.Warn("ptysession: failed to apply terminal size", "error", err)
	}
}

// currentSize reports the controlling terminal's current rows/cols, used
// by capture.Controller to stamp TerminalRows/TerminalCols at capture
// stop. Falls back to 0,0 when tty is not a terminal.
func currentSize(tty *os.File) (rows, cols uint16) {
	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return 0, 0
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return 0, 0
	}
	return uint16(h), uint16(w)
}
