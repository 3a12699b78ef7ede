package capture

import (
	"fmt"
	"io"
	"os/user"

	"github.com/google/uuid"
	"github.com/nielsreijers/prodlog/internal/diag"
	"github.com/nielsreijers/prodlog/internal/logger"
	"github.com/nielsreijers/prodlog/internal/protocol"
)

// heartbeatReply is the fixed back-channel reply to a compatible
// PRODLOG_ARE_YOU_RUNNING heartbeat.
const heartbeatReply = "PRODLOG IS RUNNING\n"

// Store is the subset of internal/store.Store the controller needs. It is
// expressed as an interface so controller tests can run against a fake
// store without pulling in database/sql.
type Store interface {
	AddEntry(c *Capture) error
	CreateTask(name string) (int64, error)
	TaskExists(id int64) (bool, error)
	SetActiveTask(id *int64) error
	GetActiveTask() (*int64, error)
	GetTaskName(id int64) (string, error)
}

// SizeFunc reports the current controlling-terminal size, used to stamp
// TerminalRows/TerminalCols at capture stop.
type SizeFunc func() (rows, cols uint16)

// Controller translates protocol events into Store mutations and
// back-channel replies. It runs single-threaded, driven synchronously by
// the scanner from the PTY-read flow, and is the sole writer of captures
// during a session.
type Controller struct {
	store       Store
	backchannel io.Writer // child stdin, for heartbeat replies
	userOut     io.Writer // the user's real terminal
	printer     *diag.Printer
	majorMinor  string
	hostname    string
	localUser   string
	size        SizeFunc
	onCommit    func(*Capture) // optional: notifies e.g. a live websocket hub
	restoreTTY  func()         // restores the controlling terminal's cooked mode before a fatal exit

	active *Buffer
}

// New builds a Controller. onCommit may be nil. restoreTTY, if non-nil, is
// run before any fatal exit the controller triggers (e.g. a failed
// back-channel write), so the user's real terminal is never left stuck in
// raw mode (spec.md §9: "all fatal paths... converge on a single exit
// routine that restores the TTY").
func New(st Store, backchannel, userOut io.Writer, printer *diag.Printer, majorMinor, hostname string, size SizeFunc, onCommit func(*Capture), restoreTTY func()) *Controller {
	localUser := ""
	if u, err := user.Current(); err == nil {
		localUser = u.Username
	}
	return &Controller{
		store:       st,
		backchannel: backchannel,
		userOut:     userOut,
		printer:     printer,
		majorMinor:  majorMinor,
		hostname:    hostname,
		localUser:   localUser,
		size:        size,
		onCommit:    onCommit,
		restoreTTY:  restoreTTY,
	}
}

// WritePassthrough satisfies protocol.Sink: it appends output to the
// active Run capture (if any) and always forwards to the user's terminal.
func (c *Controller) WritePassthrough(p []byte) error {
	if c.active != nil && c.active.CaptureType == TypeRun {
		c.active.AppendOutput(p)
	}
	_, err := c.userOut.Write(p)
	return err
}

// HandleEvent satisfies protocol.Sink.
func (c *Controller) HandleEvent(ev protocol.Event) {
	switch ev.Kind {
	case protocol.KindHeartbeatRequested:
		c.onHeartbeat(ev.Version)
	case protocol.KindStatusCheckRequested:
		c.onStatusCheck()
	case protocol.KindRunCaptureStarted:
		c.onRunStarted(ev)
	case protocol.KindRunCaptureStopped:
		c.onRunStopped(ev)
	case protocol.KindEditCaptureStarted:
		c.onEditStarted(ev)
	case protocol.KindEditCaptureStopped:
		c.onEditStopped(ev)
	case protocol.KindTaskCreateAndActivate:
		c.onTaskCreateAndActivate(ev.TaskName)
	case protocol.KindTaskActivate:
		c.onTaskActivate(ev.TaskID)
	case protocol.KindTaskDeactivate:
		c.onTaskDeactivate()
	case protocol.KindTaskListRequested:
		// Listing is served by the HTTP surface; nothing to do in-band.
	}
}

func (c *Controller) onHeartbeat(version string) {
	if !compareMajorMinor(version, c.majorMinor) {
		logger.Warn("heartbeat version mismatch", "received", version, "want", c.majorMinor)
		return
	}
	if _, err := io.WriteString(c.backchannel, heartbeatReply); err != nil {
		c.printer.FatalAfter(fmt.Sprintf("failed to reply to child: %v", err), c.restoreTTY)
	}
}

func (c *Controller) onStatusCheck() {
	msg := "Prodlog is currently active!"
	if active, err := c.store.GetActiveTask(); err == nil && active != nil {
		if name, err := c.store.GetTaskName(*active); err == nil && name != "" {
			msg = fmt.Sprintf("Prodlog is currently active! (active task: %s)", name)
		}
	}
	c.printer.Info(msg)
}

func (c *Controller) onRunStarted(ev protocol.Event) {
	if c.active != nil {
		logger.Warn("starting run capture over an orphaned prior capture", "prior_uuid", c.active.UUID)
	}
	c.active = &Buffer{
		UUID:        uuid.NewString(),
		CaptureType: TypeRun,
		Host:        ev.Host,
		Cwd:         ev.Cwd,
		Cmd:         ev.RawCmd,
		Message:     ev.Message,
		LocalUser:   c.localUser,
		RemoteUser:  ev.RemoteUser,
		StartTime:   nowUTC(),
	}
}

func (c *Controller) onRunStopped(ev protocol.Event) {
	if c.active == nil || c.active.CaptureType != TypeRun {
		logger.Warn("STOP CAPTURE RUN with no active run capture")
		return
	}
	c.commit(ev.ExitCode, nil)
}

func (c *Controller) onEditStarted(ev protocol.Event) {
	if c.active != nil {
		logger.Warn("starting edit capture over an orphaned prior capture", "prior_uuid", c.active.UUID)
	}
	b := &Buffer{
		UUID:        uuid.NewString(),
		CaptureType: TypeEdit,
		Host:        ev.Host,
		Cwd:         ev.Cwd,
		Cmd:         ev.Cmd,
		Message:     ev.Message,
		Filename:    ev.Filename,
		LocalUser:   c.localUser,
		RemoteUser:  ev.RemoteUser,
		StartTime:   nowUTC(),
	}
	b.SetOriginal(ev.Original)
	c.active = b
}

func (c *Controller) onEditStopped(ev protocol.Event) {
	if c.active == nil || c.active.CaptureType != TypeEdit {
		logger.Warn("STOP CAPTURE EDIT with no active edit capture")
		return
	}
	c.commit(ev.ExitCode, ev.Edited)
}

func (c *Controller) commit(exitCode int32, edited []byte) {
	rows, cols := uint16(0), uint16(0)
	if c.size != nil {
		rows, cols = c.size()
	}
	entry := c.active.Commit(exitCode, edited, rows, cols)
	c.active = nil

	if err := entry.Validate(); err != nil {
		logger.Warn("dropping invalid capture", "error", err)
		return
	}
	if err := c.store.AddEntry(entry); err != nil {
		logger.Warn("failed to store capture", "uuid", entry.UUID, "error", err)
		return
	}
	if c.onCommit != nil {
		c.onCommit(entry)
	}
}

func (c *Controller) onTaskCreateAndActivate(name string) {
	id, err := c.store.CreateTask(name)
	if err != nil {
		logger.Warn("failed to create task", "name", name, "error", err)
		return
	}
	if err := c.store.SetActiveTask(&id); err != nil {
		logger.Warn("failed to activate new task", "id", id, "error", err)
	}
}

func (c *Controller) onTaskActivate(idText string) {
	id, err := parseTaskID(idText)
	if err != nil {
		logger.Warn("TASK SET ACTIVE: bad task id", "id", idText, "error", err)
		return
	}
	exists, err := c.store.TaskExists(id)
	if err != nil {
		logger.Warn("failed to look up task", "id", id, "error", err)
		return
	}
	if !exists {
		logger.Warn("TASK SET ACTIVE: no such task", "id", id)
		return
	}
	if err := c.store.SetActiveTask(&id); err != nil {
		logger.Warn("failed to activate task", "id", id, "error", err)
	}
}

func (c *Controller) onTaskDeactivate() {
	if err := c.store.SetActiveTask(nil); err != nil {
		logger.Warn("failed to deactivate task", "error", err)
	}
}
