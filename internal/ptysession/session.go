// Package ptysession forks a child shell under a PTY and mediates between
// it and the controlling terminal, running the child's stdout through a
// protocol.Scanner and exposing the child's stdin as a capture.Controller
// back-channel.
package ptysession

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/nielsreijers/prodlog/internal/protocol"
)

// Config describes the child process to fork and the real terminal to
// mediate for.
type Config struct {
	// Cmd is the initial command line, split by whitespace; the first
	// element is the executable.
	Cmd []string
	Dir string
	Env []string

	// Stdin/Stdout are the controlling terminal's ends. Defaulted to
	// os.Stdin/os.Stdout by New when left nil.
	Stdin  *os.File
	Stdout *os.File

	// NewSink builds the scanner's sink once the session's back-channel
	// writer is available. Kept as a factory rather than a value so the
	// sink (typically a capture.Controller) can be constructed with a
	// SizeFunc that reads this session's controlling terminal size. restore puts the
	// controlling terminal back into cooked mode; the sink should thread
	// it into any fatal-exit path it owns so a raw-mode restore is never
	// skipped by an os.Exit.
	NewSink func(backchannel io.Writer, userOut *os.File, size func() (rows, cols uint16), restore func()) protocol.Sink
}

// Session owns one forked child and its PTY master.
type Session struct {
	cfg  Config
	cmd  *exec.Cmd
	ptmx *os.File

	sink protocol.Sink
}

// New validates cfg and forks the child under a fresh PTY sized from the
// controlling terminal. It does not start the mediation flows; call Run
// for that.
func New(cfg Config) (*Session, error) {
	if len(cfg.Cmd) == 0 {
		return nil, fmt.Errorf("ptysession: empty initial command")
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}

	cmd := exec.Command(cfg.Cmd[0], cfg.Cmd[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = cfg.Env

	size := ptySizeFromTerminal(cfg.Stdin)
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, fmt.Errorf("ptysession: start pty: %w", err)
	}

	s := &Session{cfg: cfg, cmd: cmd, ptmx: ptmx}
	return s, nil
}

func ptySizeFromTerminal(tty *os.File) *pty.Winsize {
	fd := int(tty.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			return &pty.Winsize{Rows: uint16(h), Cols: uint16(w)}
		}
	}
	return &pty.Winsize{Rows: 24, Cols: 80}
}

// SplitCmd splits a shell command line into its argv form, first element
// the executable. Used by cmd/prodlog when turning the --cmd flag into a
// Config.Cmd.
func SplitCmd(line string) []string {
	return strings.Fields(line)
}
