package store

import (
	"testing"
	"time"

	"github.com/nielsreijers/prodlog/internal/capture"
)

func sampleRun(uuid string, start time.Time) *capture.Capture {
	return &capture.Capture{
		UUID:           uuid,
		CaptureType:    capture.TypeRun,
		Host:           "devbox",
		Cwd:            "/tmp",
		Cmd:            "ls -l",
		Message:        "",
		StartTime:      start,
		DurationMs:     12,
		ExitCode:       0,
		CapturedOutput: []byte("hello\n"),
	}
}

func TestAddEntryIdempotentOnUUID(t *testing.T) {
	s := openTestStore(t)
	c := sampleRun("u1", time.Now().UTC())
	if err := s.AddEntry(c); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	c2 := sampleRun("u1", time.Now().UTC())
	c2.Cmd = "ls -la"
	if err := s.AddEntry(c2); err != nil {
		t.Fatalf("AddEntry (replace): %v", err)
	}

	entries, err := s.GetEntries(Filters{ShowNoop: true})
	if err != nil {
		t.Fatalf("GetEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 row after re-insert, got %d", len(entries))
	}
	if entries[0].Cmd != "ls -la" {
		t.Errorf("expected second insert's contents to win, got %q", entries[0].Cmd)
	}
}

func TestGetEntriesDateRangeIsSubset(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	for i, offset := range []int{-5, -1, 0, 1, 5} {
		c := sampleRun(string(rune('a'+i)), base.AddDate(0, 0, offset))
		if err := s.AddEntry(c); err != nil {
			t.Fatalf("AddEntry: %v", err)
		}
	}

	all, err := s.GetEntries(Filters{ShowNoop: true})
	if err != nil {
		t.Fatalf("GetEntries(all): %v", err)
	}
	ranged, err := s.GetEntries(Filters{DateFrom: "2026-01-09", DateTo: "2026-01-11", ShowNoop: true})
	if err != nil {
		t.Fatalf("GetEntries(range): %v", err)
	}
	if len(ranged) >= len(all) {
		t.Fatalf("expected a proper subset: all=%d ranged=%d", len(all), len(ranged))
	}
	for _, c := range ranged {
		day := c.StartTime.Format("2006-01-02")
		if day < "2026-01-09" || day > "2026-01-11" {
			t.Errorf("entry %s start_time %s outside requested range", c.UUID, day)
		}
	}
}

func TestActiveTaskStampedOnAddEntry(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateTask("sprint-1")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := s.SetActiveTask(&id); err != nil {
		t.Fatalf("SetActiveTask: %v", err)
	}

	c := sampleRun("u1", time.Now().UTC())
	if err := s.AddEntry(c); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	got, err := s.GetEntryByID("u1")
	if err != nil {
		t.Fatalf("GetEntryByID: %v", err)
	}
	if got.TaskID == nil || *got.TaskID != id {
		t.Errorf("TaskID = %v, want %d", got.TaskID, id)
	}

	if err := s.SetActiveTask(nil); err != nil {
		t.Fatalf("SetActiveTask(nil): %v", err)
	}
	c2 := sampleRun("u2", time.Now().UTC())
	if err := s.AddEntry(c2); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	got2, err := s.GetEntryByID("u2")
	if err != nil {
		t.Fatalf("GetEntryByID: %v", err)
	}
	if got2.TaskID != nil {
		t.Errorf("TaskID = %v, want nil after deactivate", *got2.TaskID)
	}
}

func TestRedactEntry(t *testing.T) {
	s := openTestStore(t)
	c := sampleRun("u1", time.Now().UTC())
	c.Cmd = "mysql -p hunter2"
	c.CapturedOutput = []byte("connecting with hunter2\n")
	if err := s.AddEntry(c); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	changed, err := s.RedactEntry("u1", []string{"hunter2"})
	if err != nil {
		t.Fatalf("RedactEntry: %v", err)
	}
	if !changed {
		t.Fatal("expected RedactEntry to report a change")
	}

	got, err := s.GetEntryByID("u1")
	if err != nil {
		t.Fatalf("GetEntryByID: %v", err)
	}
	if got.Cmd != "mysql -p [REDACTED]" {
		t.Errorf("Cmd = %q", got.Cmd)
	}
	if string(got.CapturedOutput) != "connecting with [REDACTED]\n" {
		t.Errorf("CapturedOutput = %q", got.CapturedOutput)
	}
}
