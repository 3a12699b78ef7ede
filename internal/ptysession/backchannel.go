package ptysession

// stdinWriter is the back-channel handed to the sink: writes are enqueued
// onto the same bounded channel the real stdin-reader flow feeds, so
// synthetic bytes (the heartbeat reply) and real keystrokes share one
// serialization point into the PTY master.
type stdinWriter struct {
	ch chan []byte
}

func (w *stdinWriter) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	w.ch <- cp
	return len(p), nil
}
