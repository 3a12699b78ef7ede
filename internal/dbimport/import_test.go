package dbimport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nielsreijers/prodlog/internal/capture"
	"github.com/nielsreijers/prodlog/internal/store"
)

func TestImportCopiesCapturesAndTasks(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "old.sqlite")

	src, err := store.Open(srcPath)
	if err != nil {
		t.Fatalf("open src: %v", err)
	}
	taskID, err := src.CreateTask("migration")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := src.SetActiveTask(&taskID); err != nil {
		t.Fatalf("SetActiveTask: %v", err)
	}
	c := &capture.Capture{
		UUID:           "u1",
		CaptureType:    capture.TypeRun,
		Host:           "old-box",
		Cwd:            "/tmp",
		Cmd:            "echo hi",
		StartTime:      time.Now().UTC(),
		DurationMs:     5,
		CapturedOutput: []byte("hi\n"),
	}
	if err := src.AddEntry(c); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	src.Close()

	dst, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open dst: %v", err)
	}
	defer dst.Close()

	captures, tasks, err := Import(dst, srcPath)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if captures != 1 {
		t.Errorf("captures = %d, want 1", captures)
	}
	if tasks != 1 {
		t.Errorf("tasks = %d, want 1", tasks)
	}

	got, err := dst.GetEntryByID("u1")
	if err != nil {
		t.Fatalf("GetEntryByID: %v", err)
	}
	if got == nil {
		t.Fatal("imported capture not found in dst")
	}
	if got.Cmd != "echo hi" {
		t.Errorf("Cmd = %q", got.Cmd)
	}
	if got.TaskID == nil {
		t.Fatal("expected imported capture to carry its remapped task_id")
	}

	dstTask, err := dst.GetTaskByID(*got.TaskID)
	if err != nil || dstTask == nil {
		t.Fatalf("GetTaskByID(%d): %v", *got.TaskID, err)
	}
	if dstTask.Name != "migration" {
		t.Errorf("task name = %q, want migration", dstTask.Name)
	}

	if _, err := os.Stat(srcPath); err != nil {
		t.Errorf("source db should still exist: %v", err)
	}
}
