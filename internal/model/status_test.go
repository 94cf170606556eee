package model

import "testing"

var allStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusStarting,
	TaskStatusDownloading,
	TaskStatusConverting,
	TaskStatusStopping,
	TaskStatusStopped,
	TaskStatusCompleted,
	TaskStatusSkipped,
	TaskStatusError,
}

func TestTaskStatus_Lifecycle(t *testing.T) {
	active := map[TaskStatus]bool{
		TaskStatusStarting:    true,
		TaskStatusDownloading: true,
		TaskStatusConverting:  true,
		TaskStatusStopping:    true,
	}
	finished := map[TaskStatus]bool{
		TaskStatusStopped:   true,
		TaskStatusCompleted: true,
		TaskStatusSkipped:   true,
		TaskStatusError:     true,
	}

	for _, s := range allStatuses {
		if got := s.IsActive(); got != active[s] {
			t.Errorf("%s.IsActive() = %v, want %v", s, got, active[s])
		}
		if got := s.IsFinished(); got != finished[s] {
			t.Errorf("%s.IsFinished() = %v, want %v", s, got, finished[s])
		}
		if s.IsActive() && s.IsFinished() {
			t.Errorf("%s is both active and finished", s)
		}
	}

	if TaskStatusPending.IsActive() || TaskStatusPending.IsFinished() {
		t.Error("pending tasks are neither active nor finished")
	}
}

func TestTaskStatus_String(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range allStatuses {
		name := s.String()
		if name == "" {
			t.Errorf("empty name for status %#v", s)
		}
		if seen[name] {
			t.Errorf("duplicate status name %q", name)
		}
		seen[name] = true
	}
	if TaskStatusSkipped.String() != "Skipped" {
		t.Errorf("Skipped.String() = %q", TaskStatusSkipped.String())
	}
}
