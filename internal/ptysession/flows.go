package ptysession

import (
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nielsreijers/prodlog/internal/logger"
	"github.com/nielsreijers/prodlog/internal/protocol"
)

// stdinChanCap is the bounded channel capacity between the stdin-reader
// and stdin-writer flows.
const stdinChanCap = 100

// Run starts the four flows and blocks until the child exits. Cancelling
// ctx stops the stdin-reader and resize flows but does not signal the
// child, so Run still returns only once the child has exited. It always
// restores the controlling terminal's cooked mode before returning,
// including on panic.
func (s *Session) Run(ctx context.Context) (err error) {
	restore, rmErr := acquireRawMode(s.cfg.Stdin)
	if rmErr != nil {
		logger.Warn("ptysession: failed to enter raw mode", "error", rmErr)
	}
	defer func() {
		if r := recover(); r != nil {
			restore()
			panic(r)
		}
		restore()
	}()

	stdinCh := make(chan []byte, stdinChanCap)
	backchannel := &stdinWriter{ch: stdinCh}

	sizeFn := func() (rows, cols uint16) { return currentSize(s.cfg.Stdin) }
	s.sink = s.cfg.NewSink(backchannel, s.cfg.Stdout, sizeFn, restore)
	scanner := protocol.NewScanner(s.sink)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	resizeCtx, cancelResize := context.WithCancel(gctx)
	defer cancelResize()

	// Flow 3: SIGWINCH propagation.
	g.Go(func() error {
		runResizeFlow(resizeCtx, s.cfg.Stdin, s.ptmx)
		return nil
	})

	// Flow 1a: user-stdin reader → bounded channel. tty.Read blocks on the
	// real kernel fd and will not notice gctx being cancelled on its own;
	// the wakeup goroutine below is what actually interrupts it.
	g.Go(func() error {
		defer close(stdinCh)
		return readStdinLoop(gctx, s.cfg.Stdin, stdinCh)
	})

	// Wakes the blocking stdin read the instant gctx is cancelled, whether
	// that's from the child exiting (flow 4, below) or ctx being cancelled
	// by the caller. Without this, g.Wait() would not return until the
	// user pressed one more key.
	g.Go(func() error {
		<-gctx.Done()
		if err := s.cfg.Stdin.SetReadDeadline(time.Now()); err != nil {
			logger.Warn("ptysession: failed to interrupt stdin read", "error", err)
		}
		return nil
	})

	// Flow 1b: stdin-writer drains the channel into the PTY master.
	g.Go(func() error {
		return writeStdinLoop(s.ptmx, stdinCh)
	})

	// Flow 2: child-stdout → scanner → user-stdout + capture.
	g.Go(func() error {
		return readPTYLoop(s.ptmx, scanner)
	})

	// Flow 4: child reaper. cancel unblocks flow 1a (via the wakeup
	// goroutine above) and flow 3 even on a clean exit, since errgroup
	// only cancels gctx itself when a flow returns a non-nil error.
	g.Go(func() error {
		waitErr := s.cmd.Wait()
		cancel()
		cancelResize()
		s.ptmx.Close()
		return waitErr
	})

	if err := g.Wait(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			return nil
		}
		return err
	}
	return nil
}

func readStdinLoop(ctx context.Context, tty io.Reader, out chan<- []byte) error {
	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := tty.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case out <- chunk:
			case <-ctx.Done():
				return nil
			}
		}
		if err != nil {
			return nil
		}
	}
}

func writeStdinLoop(ptmx io.Writer, in <-chan []byte) error {
	for chunk := range in {
		if _, err := ptmx.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

func readPTYLoop(ptmx io.Reader, scanner *protocol.Scanner) error {
	buf := make([]byte, 1024)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			if procErr := scanner.Process(buf[:n]); procErr != nil {
				return procErr
			}
		}
		if err != nil {
			return nil // EOF or read error both end the flow cleanly
		}
	}
}
