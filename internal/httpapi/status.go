package httpapi

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nielsreijers/prodlog/internal/store"
)

type statusResponse struct {
	Uptime         string `json:"uptime"`
	ActiveTaskID   *int64 `json:"active_task_id,omitempty"`
	ActiveTaskName string `json:"active_task_name,omitempty"`
	RunCaptures    int    `json:"run_captures"`
	EditCaptures   int    `json:"edit_captures"`
	TotalCaptures  int    `json:"total_captures"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.GetEntries(store.Filters{ShowNoop: true})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := statusResponse{
		Uptime: humanize.RelTime(s.startedAt, time.Now(), "ago", "from now"),
	}
	for _, c := range entries {
		resp.TotalCaptures++
		if c.CaptureType == "run" {
			resp.RunCaptures++
		} else {
			resp.EditCaptures++
		}
	}

	if id, err := s.store.GetActiveTask(); err == nil && id != nil {
		resp.ActiveTaskID = id
		if t, err := s.store.GetTaskByID(*id); err == nil && t != nil {
			resp.ActiveTaskName = t.Name
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
