package ptysession

import (
	"os"

	"golang.org/x/term"
)

// acquireRawMode puts tty into raw mode if it is a terminal and returns a
// restore func that is safe to call multiple times (and safe to call when
// raw mode was never acquired, e.g. when stdin is a pipe in tests).
func acquireRawMode(tty *os.File) (restore func(), err error) {
	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, err
	}
	restored := false
	return func() {
		if restored {
			return
		}
		restored = true
		term.Restore(fd, oldState)
	}, nil
}
