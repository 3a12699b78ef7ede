package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nielsreijers/prodlog/internal/capture"
)

const captureTimeFmt = time.RFC3339Nano

// AddEntry inserts or fully replaces a capture by uuid. duration_ms is
// taken from the capture as given (the caller derives it at commit time)
// and end_time is derived here as start_time + duration_ms; task_id is
// always stamped from the current active task, independent of whatever the
// caller set.
func (s *Store) AddEntry(c *capture.Capture) error {
	taskID, err := s.GetActiveTask()
	if err != nil {
		return fmt.Errorf("add_entry: read active task: %w", err)
	}
	endTime := c.StartTime.Add(time.Duration(c.DurationMs) * time.Millisecond)

	_, err = s.db.Exec(`INSERT OR REPLACE INTO captures
		(uuid, capture_type, host, cwd, cmd, start_time, end_time, duration_ms, message, is_noop,
		 exit_code, local_user, remote_user, filename, terminal_rows, terminal_cols, task_id,
		 output, original_content, edited_content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UUID, string(c.CaptureType), c.Host, c.Cwd, c.Cmd,
		c.StartTime.Format(captureTimeFmt), endTime.Format(captureTimeFmt), c.DurationMs,
		c.Message, boolToInt(c.IsNoop), c.ExitCode, c.LocalUser, c.RemoteUser, c.Filename,
		c.TerminalRows, c.TerminalCols, taskID, c.CapturedOutput, c.OriginalContent, c.EditedContent)
	if err != nil {
		return fmt.Errorf("add_entry: %w", err)
	}
	return nil
}

// UpdateEntry has identical semantics to AddEntry; the distinction exists
// for call-site readability (annotation updates vs. first commit), not
// behavior.
func (s *Store) UpdateEntry(c *capture.Capture) error {
	return s.AddEntry(c)
}

// GetEntries returns every capture matching all of f's predicates, newest
// first.
func (s *Store) GetEntries(f Filters) ([]*capture.Capture, error) {
	where, args := f.whereClause()
	rows, err := s.db.Query(`SELECT `+captureColumns+` FROM captures`+where+` ORDER BY start_time DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("get_entries: %w", err)
	}
	defer rows.Close()

	var out []*capture.Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, fmt.Errorf("get_entries: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetEntryByID returns a single capture, or nil if uuid is unknown.
func (s *Store) GetEntryByID(uuid string) (*capture.Capture, error) {
	row := s.db.QueryRow(`SELECT `+captureColumns+` FROM captures WHERE uuid = ?`, uuid)
	c, err := scanCaptureRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get_entry_by_id: %w", err)
	}
	return c, nil
}

const captureColumns = `uuid, capture_type, host, cwd, cmd, start_time, duration_ms, message, is_noop,
	exit_code, local_user, remote_user, filename, terminal_rows, terminal_cols, task_id,
	output, original_content, edited_content`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCapture(rows *sql.Rows) (*capture.Capture, error) {
	return scanCaptureRow(rows)
}

func scanCaptureRow(row rowScanner) (*capture.Capture, error) {
	c := &capture.Capture{}
	var captureType, startTime string
	var isNoop int
	var taskID sql.NullInt64

	if err := row.Scan(
		&c.UUID, &captureType, &c.Host, &c.Cwd, &c.Cmd, &startTime, &c.DurationMs, &c.Message, &isNoop,
		&c.ExitCode, &c.LocalUser, &c.RemoteUser, &c.Filename, &c.TerminalRows, &c.TerminalCols, &taskID,
		&c.CapturedOutput, &c.OriginalContent, &c.EditedContent,
	); err != nil {
		return nil, err
	}

	c.CaptureType = capture.Type(captureType)
	c.IsNoop = isNoop != 0
	if t, err := time.Parse(captureTimeFmt, startTime); err == nil {
		c.StartTime = t
	}
	if taskID.Valid {
		c.TaskID = &taskID.Int64
	}
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
