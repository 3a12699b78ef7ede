// Package capture defines the Capture record and the in-flight buffer that
// accumulates one before it is committed to the store.
package capture

import (
	"fmt"
	"log/slog"
	"time"
)

// Type distinguishes a captured shell command from a captured file edit.
type Type string

const (
	TypeRun  Type = "run"
	TypeEdit Type = "edit"
)

// ExitCodeNotStopped is the sentinel exit code of a Capture before its
// matching STOP event arrives.
const ExitCodeNotStopped int32 = -1

// Capture is the committed, immutable-except-by-annotation record of one
// observed command or edit.
type Capture struct {
	UUID         string
	CaptureType  Type
	Host         string
	Cwd          string
	Cmd          string
	Message      string
	Filename     string
	LocalUser    string
	RemoteUser   string
	StartTime    time.Time
	DurationMs   int64
	ExitCode     int32
	IsNoop       bool
	TerminalRows uint16
	TerminalCols uint16
	TaskID       *int64

	CapturedOutput  []byte // Run only
	OriginalContent []byte // Edit only
	EditedContent   []byte // Edit only
}

// Validate enforces the Run/Edit field-exclusivity invariant before a
// record reaches the store; the store itself trusts its caller.
func (c *Capture) Validate() error {
	switch c.CaptureType {
	case TypeRun:
		if len(c.OriginalContent) != 0 || len(c.EditedContent) != 0 {
			return fmt.Errorf("capture %s: run captures must not carry edit content", c.UUID)
		}
	case TypeEdit:
		if len(c.CapturedOutput) != 0 {
			return fmt.Errorf("capture %s: edit captures must not carry output", c.UUID)
		}
		if c.Filename == "" {
			return fmt.Errorf("capture %s: edit captures require a filename", c.UUID)
		}
	default:
		return fmt.Errorf("capture %s: unknown capture type %q", c.UUID, c.CaptureType)
	}
	return nil
}

// LogValue renders a Capture for structured logging without its
// potentially large byte payloads.
func (c *Capture) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("uuid", c.UUID),
		slog.String("type", string(c.CaptureType)),
		slog.String("cmd", c.Cmd),
		slog.Int("exit_code", int(c.ExitCode)),
		slog.Int64("duration_ms", c.DurationMs),
	)
}
