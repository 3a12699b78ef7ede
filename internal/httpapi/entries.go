package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nielsreijers/prodlog/internal/capture"
	"github.com/nielsreijers/prodlog/internal/store"
)

// entrySummary is every Capture field except the three BLOB payloads,
// per spec.md §4.5's "summary projection without heavy BLOBs" requirement.
type entrySummary struct {
	UUID         string  `json:"uuid"`
	CaptureType  string  `json:"capture_type"`
	Host         string  `json:"host"`
	Cwd          string  `json:"cwd"`
	Cmd          string  `json:"cmd"`
	Message      string  `json:"message"`
	Filename     string  `json:"filename,omitempty"`
	LocalUser    string  `json:"local_user"`
	RemoteUser   string  `json:"remote_user"`
	StartTime    string  `json:"start_time"`
	DurationMs   int64   `json:"duration_ms"`
	ExitCode     int32   `json:"exit_code"`
	IsNoop       bool    `json:"is_noop"`
	TerminalRows uint16  `json:"terminal_rows"`
	TerminalCols uint16  `json:"terminal_cols"`
	TaskID       *int64  `json:"task_id,omitempty"`
}

// entryDetail is the full projection, BLOBs base64-encoded for JSON.
type entryDetail struct {
	entrySummary
	CapturedOutput  string `json:"captured_output,omitempty"`
	OriginalContent string `json:"original_content,omitempty"`
	EditedContent   string `json:"edited_content,omitempty"`
}

func toSummary(c *capture.Capture) entrySummary {
	return entrySummary{
		UUID:         c.UUID,
		CaptureType:  string(c.CaptureType),
		Host:         c.Host,
		Cwd:          c.Cwd,
		Cmd:          c.Cmd,
		Message:      c.Message,
		Filename:     c.Filename,
		LocalUser:    c.LocalUser,
		RemoteUser:   c.RemoteUser,
		StartTime:    c.StartTime.Format(time.RFC3339Nano),
		DurationMs:   c.DurationMs,
		ExitCode:     c.ExitCode,
		IsNoop:       c.IsNoop,
		TerminalRows: c.TerminalRows,
		TerminalCols: c.TerminalCols,
		TaskID:       c.TaskID,
	}
}

func toDetail(c *capture.Capture) entryDetail {
	return entryDetail{
		entrySummary:    toSummary(c),
		CapturedOutput:  base64.StdEncoding.EncodeToString(c.CapturedOutput),
		OriginalContent: base64.StdEncoding.EncodeToString(c.OriginalContent),
		EditedContent:   base64.StdEncoding.EncodeToString(c.EditedContent),
	}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.Filters{
		DateFrom:      q.Get("date_from"),
		DateTo:        q.Get("date_to"),
		Host:          q.Get("host"),
		Search:        q.Get("search"),
		SearchContent: q.Get("search_content"),
		ShowNoop:      q.Get("show_noop") == "true" || q.Get("show_noop") == "1",
	}
	entries, err := s.store.GetEntries(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]entrySummary, 0, len(entries))
	for _, c := range entries {
		out = append(out, toSummary(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")
	c, err := s.store.GetEntryByID(uuid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "no such entry")
		return
	}
	writeJSON(w, http.StatusOK, toDetail(c))
}

type updateEntryRequest struct {
	Message *string `json:"message"`
	IsNoop  *bool   `json:"is_noop"`
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")
	c, err := s.store.GetEntryByID(uuid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "no such entry")
		return
	}
	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Message != nil {
		c.Message = *req.Message
	}
	if req.IsNoop != nil {
		c.IsNoop = *req.IsNoop
	}
	if err := s.store.UpdateEntry(c); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toDetail(c))
}

type redactRequest struct {
	Passwords []string `json:"passwords"`
}

func (s *Server) handleRedactEntry(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")
	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	changed, err := s.store.RedactEntry(uuid, req.Passwords)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (s *Server) handleRedactAll(w http.ResponseWriter, r *http.Request) {
	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	count, err := s.store.RedactAll(req.Passwords)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"entries_changed": count})
}
