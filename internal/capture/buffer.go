package capture

import (
	"bytes"
	"time"
)

// Buffer is the in-flight capture: a Capture's fields plus growable byte
// buffers for the payload the scanner is still streaming in. It becomes a
// Capture only at commit time, once the matching STOP event arrives.
type Buffer struct {
	UUID        string
	CaptureType Type
	Host        string
	Cwd         string
	Cmd         string
	Message     string
	Filename    string
	LocalUser   string
	RemoteUser  string
	StartTime   time.Time

	output   bytes.Buffer // Run: captured_output
	original bytes.Buffer // Edit: original_content set at start, not streamed
}

// AppendOutput is called by the scanner for every pass-through span while
// this buffer is the active Run capture.
func (b *Buffer) AppendOutput(p []byte) {
	b.output.Write(p)
}

// SetOriginal stores an Edit capture's before-content, provided whole at
// START CAPTURE EDIT rather than streamed.
func (b *Buffer) SetOriginal(p []byte) {
	b.original.Write(p)
}

// Commit finalizes the buffer into a Capture given the stop-time arguments.
// TaskID is left nil: the store stamps it from the active task at insert.
func (b *Buffer) Commit(exitCode int32, edited []byte, rows, cols uint16) *Capture {
	now := time.Now().UTC()
	c := &Capture{
		UUID:         b.UUID,
		CaptureType:  b.CaptureType,
		Host:         b.Host,
		Cwd:          b.Cwd,
		Cmd:          b.Cmd,
		Message:      b.Message,
		Filename:     b.Filename,
		LocalUser:    b.LocalUser,
		RemoteUser:   b.RemoteUser,
		StartTime:    b.StartTime,
		DurationMs:   now.Sub(b.StartTime).Milliseconds(),
		ExitCode:     exitCode,
		TerminalRows: rows,
		TerminalCols: cols,
	}
	switch b.CaptureType {
	case TypeRun:
		c.CapturedOutput = b.output.Bytes()
	case TypeEdit:
		c.OriginalContent = b.original.Bytes()
		c.EditedContent = edited
	}
	return c
}
