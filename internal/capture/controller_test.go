package capture

import (
	"bytes"
	"testing"

	"github.com/nielsreijers/prodlog/internal/diag"
	"github.com/nielsreijers/prodlog/internal/protocol"
)

type fakeStore struct {
	entries    []*Capture
	tasks      map[int64]string
	nextTaskID int64
	activeTask *int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: map[int64]string{}, nextTaskID: 1}
}

func (f *fakeStore) AddEntry(c *Capture) error {
	f.entries = append(f.entries, c)
	return nil
}

func (f *fakeStore) CreateTask(name string) (int64, error) {
	id := f.nextTaskID
	f.nextTaskID++
	f.tasks[id] = name
	return id, nil
}

func (f *fakeStore) TaskExists(id int64) (bool, error) {
	_, ok := f.tasks[id]
	return ok, nil
}

func (f *fakeStore) SetActiveTask(id *int64) error {
	f.activeTask = id
	return nil
}

func (f *fakeStore) GetActiveTask() (*int64, error) {
	return f.activeTask, nil
}

func (f *fakeStore) GetTaskName(id int64) (string, error) {
	return f.tasks[id], nil
}

func newTestController(st Store) (*Controller, *bytes.Buffer, *bytes.Buffer) {
	var backchannel, userOut bytes.Buffer
	printer := diag.New(&userOut, 0)
	size := func() (uint16, uint16) { return 24, 80 }
	ctrl := New(st, &backchannel, &userOut, printer, "2.6", "testhost", size, nil, nil)
	return ctrl, &backchannel, &userOut
}

func TestRunCaptureRoundTrip(t *testing.T) {
	st := newFakeStore()
	ctrl, _, _ := newTestController(st)

	ctrl.HandleEvent(protocol.Event{
		Kind:       protocol.KindRunCaptureStarted,
		Host:       "h",
		Cwd:        "/tmp",
		RawCmd:     "ls -l",
		RemoteUser: "u",
	})
	if err := ctrl.WritePassthrough([]byte("hello\n")); err != nil {
		t.Fatalf("WritePassthrough: %v", err)
	}
	ctrl.HandleEvent(protocol.Event{Kind: protocol.KindRunCaptureStopped, ExitCode: 0})

	if len(st.entries) != 1 {
		t.Fatalf("expected 1 stored capture, got %d", len(st.entries))
	}
	e := st.entries[0]
	if e.CaptureType != TypeRun || e.ExitCode != 0 || string(e.CapturedOutput) != "hello\n" {
		t.Errorf("unexpected stored capture: %+v", e)
	}
	if e.DurationMs < 0 {
		t.Errorf("DurationMs = %d, want >= 0", e.DurationMs)
	}
}

func TestEditCaptureRoundTrip(t *testing.T) {
	st := newFakeStore()
	ctrl, _, _ := newTestController(st)

	ctrl.HandleEvent(protocol.Event{
		Kind:     protocol.KindEditCaptureStarted,
		Filename: "a.txt",
		Original: []byte("a\nb\n"),
	})
	ctrl.HandleEvent(protocol.Event{
		Kind:     protocol.KindEditCaptureStopped,
		ExitCode: 0,
		Edited:   []byte("a\nc\n"),
	})

	if len(st.entries) != 1 {
		t.Fatalf("expected 1 stored capture, got %d", len(st.entries))
	}
	e := st.entries[0]
	if e.CaptureType != TypeEdit || string(e.OriginalContent) != "a\nb\n" || string(e.EditedContent) != "a\nc\n" {
		t.Errorf("unexpected stored capture: %+v", e)
	}
	if len(e.CapturedOutput) != 0 {
		t.Errorf("edit capture must not carry output, got %q", e.CapturedOutput)
	}
}

func TestHeartbeatVersionMismatchSendsNoReply(t *testing.T) {
	st := newFakeStore()
	ctrl, backchannel, _ := newTestController(st)

	ctrl.HandleEvent(protocol.Event{Kind: protocol.KindHeartbeatRequested, Version: "2.5.0"})

	if backchannel.Len() != 0 {
		t.Errorf("expected no back-channel write on version mismatch, got %q", backchannel.String())
	}
}

func TestHeartbeatVersionMatchSendsReply(t *testing.T) {
	st := newFakeStore()
	ctrl, backchannel, _ := newTestController(st)

	ctrl.HandleEvent(protocol.Event{Kind: protocol.KindHeartbeatRequested, Version: "2.6.1"})

	if got := backchannel.String(); got != heartbeatReply {
		t.Errorf("backchannel = %q, want %q", got, heartbeatReply)
	}
}

func TestTaskCreateAndActivate(t *testing.T) {
	st := newFakeStore()
	ctrl, _, _ := newTestController(st)

	ctrl.HandleEvent(protocol.Event{Kind: protocol.KindTaskCreateAndActivate, TaskName: "sprint-1"})

	if st.activeTask == nil || *st.activeTask != 1 {
		t.Errorf("active task = %v, want 1", st.activeTask)
	}

	ctrl.HandleEvent(protocol.Event{Kind: protocol.KindTaskDeactivate})
	if st.activeTask != nil {
		t.Errorf("active task = %v, want nil after deactivate", st.activeTask)
	}
}

func TestRunCaptureStoppedWithoutActiveIsIgnored(t *testing.T) {
	st := newFakeStore()
	ctrl, _, _ := newTestController(st)

	ctrl.HandleEvent(protocol.Event{Kind: protocol.KindRunCaptureStopped, ExitCode: 0})

	if len(st.entries) != 0 {
		t.Errorf("expected no stored captures, got %d", len(st.entries))
	}
}
